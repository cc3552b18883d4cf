package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// Store is the subset of the clinical store the engine snapshots from and
// restores into.
type Store interface {
	GetAllChildren(ctx context.Context) ([]clinicalTypes.Child, error)
	GetAllSessions(ctx context.Context) ([]clinicalTypes.Session, error)
	GetAllTrials(ctx context.Context) ([]clinicalTypes.Trial, error)
	GetAllClinicians(ctx context.Context) ([]clinicalTypes.Clinician, error)

	BulkUpsertChildren(ctx context.Context, children []clinicalTypes.Child) (int64, error)
	BulkUpsertSessions(ctx context.Context, sessions []clinicalTypes.Session) (int64, error)
	BulkUpsertTrials(ctx context.Context, trials []clinicalTypes.Trial) (int64, error)
	BulkUpsertClinicians(ctx context.Context, clinicians []clinicalTypes.Clinician) (int64, error)

	Ping(ctx context.Context) error
}

// Engine creates, lists, restores and deletes store snapshots.
//
// There is no lock between a restore and concurrent live writes, or between
// two engine invocations: the store adapter's per-batch atomicity is the only
// guarantee. This is an accepted limitation of the deployment scale, not an
// oversight.
type Engine struct {
	store     Store
	artifacts ArtifactStore
	version   string

	// overridable in tests
	now   func() time.Time
	newID func() string
}

func NewEngine(store Store, artifacts ArtifactStore, version string) *Engine {
	return &Engine{
		store:     store,
		artifacts: artifacts,
		version:   version,
		now:       time.Now,
		newID:     func() string { return uuid.New().String()[:8] },
	}
}

// Health reports whether both the record store and the artifact store are
// reachable. The API layer gates backup routes on this instead of keeping a
// global availability flag.
func (e *Engine) Health(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("record store unreachable: %w", err)
	}
	if err := e.artifacts.Ping(); err != nil {
		return fmt.Errorf("artifact store unreachable: %w", err)
	}
	return nil
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeBackupID(name string) string {
	return unsafeIDChars.ReplaceAllString(name, "_")
}

// CreateBackup reads every collection in full and writes the snapshot as one
// artifact. With an empty name a timestamp-derived id is used; reusing a name
// overwrites the previous artifact of that name.
func (e *Engine) CreateBackup(ctx context.Context, name string) BackupResult {
	backupID := sanitizeBackupID(name)
	if backupID == "" {
		backupID = fmt.Sprintf("backup_%d_%s", e.now().Unix(), e.newID())
	}
	return e.createWithID(ctx, backupID)
}

// CreatePreOperationBackup is called synchronously before a risky mutating
// operation, so that the operation can be undone with a single rollback.
func (e *Engine) CreatePreOperationBackup(ctx context.Context, operationName string) BackupResult {
	backupID := fmt.Sprintf("pre_%s_%d", sanitizeBackupID(operationName), e.now().Unix())
	return e.createWithID(ctx, backupID)
}

func (e *Engine) createWithID(ctx context.Context, backupID string) BackupResult {
	data := clinicalTypes.BackupData{}
	var err error

	if data.Children, err = e.store.GetAllChildren(ctx); err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not read children: %s", err.Error()))
	}
	if data.Sessions, err = e.store.GetAllSessions(ctx); err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not read sessions: %s", err.Error()))
	}
	if data.Trials, err = e.store.GetAllTrials(ctx); err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not read trials: %s", err.Error()))
	}
	if data.Clinicians, err = e.store.GetAllClinicians(ctx); err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not read clinicians: %s", err.Error()))
	}

	timestamp := e.now().UnixMilli()
	artifact := clinicalTypes.Backup{
		Metadata: clinicalTypes.BackupMetadata{
			BackupID:  backupID,
			Timestamp: timestamp,
			Version:   e.version,
		},
		Data:  data,
		Stats: data.StatsFromData(),
	}

	payload, err := json.Marshal(artifact)
	if err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not encode backup: %s", err.Error()))
	}
	if err := e.artifacts.Write(backupID, payload); err != nil {
		return failedBackup(backupID, fmt.Sprintf("could not persist backup: %s", err.Error()))
	}

	slog.Info("backup created",
		slog.String("backupID", backupID),
		slog.Int("children", artifact.Stats.Children),
		slog.Int("sessions", artifact.Stats.Sessions),
		slog.Int("trials", artifact.Stats.Trials),
		slog.Int("clinicians", artifact.Stats.Clinicians))

	return BackupResult{
		Success:   true,
		BackupID:  backupID,
		Stats:     artifact.Stats,
		Timestamp: timestamp,
	}
}

// ListBackups returns all readable backup summaries, newest first. A corrupt
// or unreadable artifact is skipped with a warning instead of failing the
// whole listing.
func (e *Engine) ListBackups(ctx context.Context) ([]BackupSummary, error) {
	ids, err := e.artifacts.ListIDs()
	if err != nil {
		return nil, err
	}

	summaries := []BackupSummary{}
	for _, id := range ids {
		artifact, err := e.readArtifact(id)
		if err != nil {
			slog.Warn("skipping unreadable backup artifact", slog.String("backupID", id), slog.String("error", err.Error()))
			continue
		}
		summaries = append(summaries, BackupSummary{
			Metadata: artifact.Metadata,
			Stats:    artifact.Stats,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Metadata.Timestamp > summaries[j].Metadata.Timestamp
	})
	return summaries, nil
}

// DeleteBackup removes the artifact; deleting an unknown id is an error.
func (e *Engine) DeleteBackup(ctx context.Context, backupID string) error {
	if err := e.artifacts.Delete(backupID); err != nil {
		return err
	}
	slog.Info("backup deleted", slog.String("backupID", backupID))
	return nil
}

func (e *Engine) readArtifact(backupID string) (clinicalTypes.Backup, error) {
	artifact := clinicalTypes.Backup{}

	payload, err := e.artifacts.Read(backupID)
	if err != nil {
		return artifact, err
	}
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return artifact, fmt.Errorf("could not decode backup artifact: %w", err)
	}
	if !artifact.StatsMatchData() {
		return artifact, fmt.Errorf("backup artifact %s is corrupt: stats do not match data", backupID)
	}
	return artifact, nil
}
