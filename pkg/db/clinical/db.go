package clinical

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/early-steps/screening-backend/pkg/db"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

type ClinicalDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
}

func NewClinicalDBService(configs db.DBConfig) (*ClinicalDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()
	if err != nil {
		return nil, err
	}

	clinicalDBSc := &ClinicalDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
	}

	if err := clinicalDBSc.ensureIndexes(); err != nil {
		slog.Error("Error ensuring indexes for clinical DB", slog.String("error", err.Error()))
	}

	return clinicalDBSc, nil
}

func (dbService *ClinicalDBService) getDBName() string {
	return dbService.DBNamePrefix + "clinicalDB"
}

func (dbService *ClinicalDBService) collectionChildren() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(clinicalTypes.COLLECTION_CHILDREN)
}

func (dbService *ClinicalDBService) collectionSessions() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(clinicalTypes.COLLECTION_SESSIONS)
}

func (dbService *ClinicalDBService) collectionTrials() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(clinicalTypes.COLLECTION_TRIALS)
}

func (dbService *ClinicalDBService) collectionClinicians() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(clinicalTypes.COLLECTION_CLINICIANS)
}

func (dbService *ClinicalDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

// getScanContext derives a timeout context from the caller's context so that
// full-collection reads stay cancellable.
func (dbService *ClinicalDBService) getScanContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

func (dbService *ClinicalDBService) Ping(ctx context.Context) error {
	ctx, cancel := dbService.getScanContext(ctx)
	defer cancel()
	return dbService.DBClient.Ping(ctx, nil)
}

func (dbService *ClinicalDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for clinical DB")
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionChildren().Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{{Key: "childCode", Value: 1}},
		},
	)
	if err != nil {
		slog.Error("Error creating index for childCode in children", slog.String("error", err.Error()))
	}

	_, err = dbService.collectionSessions().Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{{Key: "childID", Value: 1}},
		},
	)
	if err != nil {
		slog.Error("Error creating index for childID in sessions", slog.String("error", err.Error()))
	}

	_, err = dbService.collectionTrials().Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.D{{Key: "sessionID", Value: 1}},
			},
			{
				Keys: bson.D{
					{Key: "sessionID", Value: 1},
					{Key: "trialNumber", Value: 1},
				},
			},
		},
	)
	if err != nil {
		slog.Error("Error creating indexes for trials", slog.String("error", err.Error()))
	}
	return nil
}
