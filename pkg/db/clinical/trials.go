package clinical

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

func (dbService *ClinicalDBService) GetAllTrials(ctx context.Context) (trials []clinicalTypes.Trial, err error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()

	opts := options.Find()
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}
	cursor, err := dbService.collectionTrials().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trials = []clinicalTypes.Trial{}
	err = cursor.All(ctx, &trials)
	if err != nil {
		return nil, err
	}
	return trials, nil
}

func (dbService *ClinicalDBService) GetTrialByID(trialID string) (trial clinicalTypes.Trial, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(trialID)
	if err != nil {
		return trial, errors.New("invalid trial id")
	}

	err = dbService.collectionTrials().FindOne(ctx, bson.M{"_id": _id}).Decode(&trial)
	return trial, err
}

func (dbService *ClinicalDBService) FindTrialsBySessionID(sessionID string) (trials []clinicalTypes.Trial, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionTrials().Find(
		ctx,
		bson.M{"sessionID": sessionID},
		options.Find().SetSort(bson.D{{Key: "trialNumber", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trials = []clinicalTypes.Trial{}
	err = cursor.All(ctx, &trials)
	return trials, err
}

func (dbService *ClinicalDBService) CountTrialsBySessionID(sessionID string) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()
	return dbService.collectionTrials().CountDocuments(ctx, bson.M{"sessionID": sessionID})
}

func (dbService *ClinicalDBService) AddTrial(trial clinicalTypes.Trial) (clinicalTypes.Trial, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionTrials().InsertOne(ctx, trial)
	if err != nil {
		return trial, err
	}
	trial.ID = res.InsertedID.(primitive.ObjectID)
	return trial, nil
}

func (dbService *ClinicalDBService) DeleteTrial(trialID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(trialID)
	if err != nil {
		return errors.New("invalid trial id")
	}

	res, err := dbService.collectionTrials().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("trial not found")
	}
	return nil
}

func (dbService *ClinicalDBService) CountTrials(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()
	return dbService.collectionTrials().CountDocuments(ctx, bson.M{})
}
