package clinical

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

func (dbService *ClinicalDBService) GetAllSessions(ctx context.Context) (sessions []clinicalTypes.Session, err error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()

	opts := options.Find()
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}
	cursor, err := dbService.collectionSessions().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions = []clinicalTypes.Session{}
	err = cursor.All(ctx, &sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (dbService *ClinicalDBService) GetSessionByID(sessionID string) (session clinicalTypes.Session, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return session, errors.New("invalid session id")
	}

	err = dbService.collectionSessions().FindOne(ctx, bson.M{"_id": _id}).Decode(&session)
	return session, err
}

func (dbService *ClinicalDBService) FindSessionsByChildID(childID string) (sessions []clinicalTypes.Session, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionSessions().Find(ctx, bson.M{"childID": childID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions = []clinicalTypes.Session{}
	err = cursor.All(ctx, &sessions)
	return sessions, err
}

func (dbService *ClinicalDBService) AddSession(session clinicalTypes.Session) (clinicalTypes.Session, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	session.CreatedAt = time.Now().UnixMilli()
	res, err := dbService.collectionSessions().InsertOne(ctx, session)
	if err != nil {
		return session, err
	}
	session.ID = res.InsertedID.(primitive.ObjectID)
	return session, nil
}

func (dbService *ClinicalDBService) ReplaceSession(session clinicalTypes.Session) (clinicalTypes.Session, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if session.ID.IsZero() {
		return session, errors.New("session id must be set")
	}
	session.UpdatedAt = time.Now().UnixMilli()

	elem := clinicalTypes.Session{}
	rd := options.After
	err := dbService.collectionSessions().FindOneAndReplace(
		ctx,
		bson.M{"_id": session.ID},
		session,
		&options.FindOneAndReplaceOptions{ReturnDocument: &rd},
	).Decode(&elem)
	return elem, err
}

// DeleteSessionWithTrials removes a session together with all of its trials,
// so that no trial is left referencing a dead session. Returns the number of
// deleted trials.
func (dbService *ClinicalDBService) DeleteSessionWithTrials(sessionID string) (deletedTrials int64, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return 0, errors.New("invalid session id")
	}

	trialRes, err := dbService.collectionTrials().DeleteMany(ctx, bson.M{"sessionID": sessionID})
	if err != nil {
		return 0, err
	}
	deletedTrials = trialRes.DeletedCount

	res, err := dbService.collectionSessions().DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return deletedTrials, err
	}
	if res.DeletedCount < 1 {
		slog.Warn("session to delete not found, trials cleaned up anyway", slog.String("sessionID", sessionID))
		return deletedTrials, errors.New("session not found")
	}
	return deletedTrials, nil
}

func (dbService *ClinicalDBService) CountSessions(ctx context.Context) (int64, error) {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()
	return dbService.collectionSessions().CountDocuments(ctx, bson.M{})
}
