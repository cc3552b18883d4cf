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

func (dbService *ClinicalDBService) GetAllChildren(ctx context.Context) (children []clinicalTypes.Child, err error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()

	opts := options.Find()
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}
	cursor, err := dbService.collectionChildren().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	children = []clinicalTypes.Child{}
	err = cursor.All(ctx, &children)
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (dbService *ClinicalDBService) GetChildByID(childID string) (child clinicalTypes.Child, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(childID)
	if err != nil {
		return child, errors.New("invalid child id")
	}

	err = dbService.collectionChildren().FindOne(ctx, bson.M{"_id": _id}).Decode(&child)
	return child, err
}

func (dbService *ClinicalDBService) FindChildrenByChildCode(childCode string) (children []clinicalTypes.Child, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionChildren().Find(ctx, bson.M{"childCode": childCode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	children = []clinicalTypes.Child{}
	err = cursor.All(ctx, &children)
	return children, err
}

func (dbService *ClinicalDBService) AddChild(child clinicalTypes.Child) (clinicalTypes.Child, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	child.CreatedAt = time.Now().UnixMilli()
	res, err := dbService.collectionChildren().InsertOne(ctx, child)
	if err != nil {
		return child, err
	}
	child.ID = res.InsertedID.(primitive.ObjectID)
	return child, nil
}

func (dbService *ClinicalDBService) ReplaceChild(child clinicalTypes.Child) (clinicalTypes.Child, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if child.ID.IsZero() {
		return child, errors.New("child id must be set")
	}
	child.UpdatedAt = time.Now().UnixMilli()

	elem := clinicalTypes.Child{}
	rd := options.After
	err := dbService.collectionChildren().FindOneAndReplace(
		ctx,
		bson.M{"_id": child.ID},
		child,
		&options.FindOneAndReplaceOptions{ReturnDocument: &rd},
	).Decode(&elem)
	return elem, err
}

func (dbService *ClinicalDBService) DeleteChild(childID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(childID)
	if err != nil {
		return errors.New("invalid child id")
	}

	res, err := dbService.collectionChildren().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return errors.New("child not found")
	}
	return nil
}

func (dbService *ClinicalDBService) CountChildren(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()
	return dbService.collectionChildren().CountDocuments(ctx, bson.M{})
}
