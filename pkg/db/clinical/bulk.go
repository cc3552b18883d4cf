package clinical

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// batchUpsert commits the given write models as one atomic ordered batch.
// Callers must respect BATCH_WRITE_LIMIT; splitting a larger set into
// sequential commits is their responsibility.
func (dbService *ClinicalDBService) batchUpsert(ctx context.Context, collection *mongo.Collection, models []mongo.WriteModel) (int64, error) {
	if len(models) == 0 {
		return 0, nil
	}
	if len(models) > clinicalTypes.BATCH_WRITE_LIMIT {
		return 0, fmt.Errorf("batch of %d exceeds the %d operation limit", len(models), clinicalTypes.BATCH_WRITE_LIMIT)
	}

	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()

	_, err := collection.BulkWrite(ctx, models)
	if err != nil {
		return 0, err
	}
	return int64(len(models)), nil
}

func replaceUpsertModel(id interface{}, doc interface{}) mongo.WriteModel {
	return mongo.NewReplaceOneModel().
		SetFilter(bson.M{"_id": id}).
		SetReplacement(doc).
		SetUpsert(true)
}

// BulkUpsertChildren writes every child under its original id in one atomic
// commit, creating missing documents and overwriting existing ones.
func (dbService *ClinicalDBService) BulkUpsertChildren(ctx context.Context, children []clinicalTypes.Child) (int64, error) {
	models := make([]mongo.WriteModel, len(children))
	for i, child := range children {
		models[i] = replaceUpsertModel(child.ID, child)
	}
	return dbService.batchUpsert(ctx, dbService.collectionChildren(), models)
}

func (dbService *ClinicalDBService) BulkUpsertSessions(ctx context.Context, sessions []clinicalTypes.Session) (int64, error) {
	models := make([]mongo.WriteModel, len(sessions))
	for i, session := range sessions {
		models[i] = replaceUpsertModel(session.ID, session)
	}
	return dbService.batchUpsert(ctx, dbService.collectionSessions(), models)
}

func (dbService *ClinicalDBService) BulkUpsertTrials(ctx context.Context, trials []clinicalTypes.Trial) (int64, error) {
	models := make([]mongo.WriteModel, len(trials))
	for i, trial := range trials {
		models[i] = replaceUpsertModel(trial.ID, trial)
	}
	return dbService.batchUpsert(ctx, dbService.collectionTrials(), models)
}

func (dbService *ClinicalDBService) BulkUpsertClinicians(ctx context.Context, clinicians []clinicalTypes.Clinician) (int64, error) {
	models := make([]mongo.WriteModel, len(clinicians))
	for i, clinician := range clinicians {
		models[i] = replaceUpsertModel(clinician.ID, clinician)
	}
	return dbService.batchUpsert(ctx, dbService.collectionClinicians(), models)
}
