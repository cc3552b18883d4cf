package clinical

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

func (dbService *ClinicalDBService) GetAllClinicians(ctx context.Context) (clinicians []clinicalTypes.Clinician, err error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()

	opts := options.Find()
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}
	cursor, err := dbService.collectionClinicians().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clinicians = []clinicalTypes.Clinician{}
	err = cursor.All(ctx, &clinicians)
	if err != nil {
		return nil, err
	}
	return clinicians, nil
}

func (dbService *ClinicalDBService) GetClinicianByID(clinicianID string) (clinician clinicalTypes.Clinician, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(clinicianID)
	if err != nil {
		return clinician, errors.New("invalid clinician id")
	}

	err = dbService.collectionClinicians().FindOne(ctx, bson.M{"_id": _id}).Decode(&clinician)
	return clinician, err
}

func (dbService *ClinicalDBService) FindClinicianByName(name string) (clinician clinicalTypes.Clinician, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	err = dbService.collectionClinicians().FindOne(ctx, bson.M{"name": name}).Decode(&clinician)
	return clinician, err
}

func (dbService *ClinicalDBService) AddClinician(clinician clinicalTypes.Clinician) (clinicalTypes.Clinician, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	clinician.CreatedAt = time.Now().UnixMilli()
	res, err := dbService.collectionClinicians().InsertOne(ctx, clinician)
	if err != nil {
		return clinician, err
	}
	clinician.ID = res.InsertedID.(primitive.ObjectID)
	return clinician, nil
}

func (dbService *ClinicalDBService) DeleteClinician(clinicianID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(clinicianID)
	if err != nil {
		return errors.New("invalid clinician id")
	}

	res, err := dbService.collectionClinicians().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("clinician not found")
	}
	return nil
}

func (dbService *ClinicalDBService) CountClinicians(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()
	return dbService.collectionClinicians().CountDocuments(ctx, bson.M{})
}
