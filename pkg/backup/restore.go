package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// RestoreBackup loads the artifact and upserts its records under their
// original ids. Restore is additive and overwriting, never subtractive:
// records deleted since the backup are recreated, records created since are
// left untouched.
//
// Batches are committed strictly in sequence and each batch is atomic on its
// own; a failure partway through a multi-batch restore leaves a
// partially-restored state, reported via Partial on the result.
func (e *Engine) RestoreBackup(ctx context.Context, backupID string, opts RestoreOptions) RestoreResult {
	artifact, err := e.readArtifact(backupID)
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			return failedRestore(backupID, "backup not found")
		}
		return failedRestore(backupID, err.Error())
	}

	collections := opts.Collections
	if len(collections) == 0 {
		collections = clinicalTypes.AllCollections
	}
	for _, collection := range collections {
		if !clinicalTypes.IsKnownCollection(collection) {
			return failedRestore(backupID, fmt.Sprintf("unknown collection: %s", collection))
		}
	}

	if opts.DryRun {
		slog.Info("dry run restore, no writes performed", slog.String("backupID", backupID))
		return RestoreResult{
			Success:  true,
			BackupID: backupID,
			DryRun:   true,
			Stats:    artifact.Stats,
		}
	}

	var restored int64
	for _, collection := range collections {
		var written int64
		var err error
		switch collection {
		case clinicalTypes.COLLECTION_CHILDREN:
			written, err = restoreCollection(ctx, artifact.Data.Children, e.store.BulkUpsertChildren)
		case clinicalTypes.COLLECTION_SESSIONS:
			written, err = restoreCollection(ctx, artifact.Data.Sessions, e.store.BulkUpsertSessions)
		case clinicalTypes.COLLECTION_TRIALS:
			written, err = restoreCollection(ctx, artifact.Data.Trials, e.store.BulkUpsertTrials)
		case clinicalTypes.COLLECTION_CLINICIANS:
			written, err = restoreCollection(ctx, artifact.Data.Clinicians, e.store.BulkUpsertClinicians)
		}
		restored += written
		if err != nil {
			slog.Error("restore failed partway",
				slog.String("backupID", backupID),
				slog.String("collection", collection),
				slog.Int64("restored", restored),
				slog.String("error", err.Error()))
			return RestoreResult{
				BackupID:      backupID,
				Error:         fmt.Sprintf("restore of %s failed: %s", collection, err.Error()),
				Stats:         artifact.Stats,
				RestoredCount: restored,
				Partial:       restored > 0,
			}
		}
	}

	slog.Info("backup restored", slog.String("backupID", backupID), slog.Int64("restored", restored))
	return RestoreResult{
		Success:       true,
		BackupID:      backupID,
		Stats:         artifact.Stats,
		RestoredCount: restored,
	}
}

// restoreCollection upserts the records of one collection in sequential
// commits of at most BATCH_WRITE_LIMIT operations. Batch N+1 is never
// attempted once batch N failed.
func restoreCollection[T any](ctx context.Context, records []T, upsert func(context.Context, []T) (int64, error)) (written int64, err error) {
	for start := 0; start < len(records); start += clinicalTypes.BATCH_WRITE_LIMIT {
		end := start + clinicalTypes.BATCH_WRITE_LIMIT
		if end > len(records) {
			end = len(records)
		}
		n, err := upsert(ctx, records[start:end])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Rollback restores the most recent backup in full. With no backups present
// it fails with an explanatory error instead of panicking.
func (e *Engine) Rollback(ctx context.Context) RestoreResult {
	summaries, err := e.ListBackups(ctx)
	if err != nil {
		return failedRestore("", fmt.Sprintf("could not list backups: %s", err.Error()))
	}
	if len(summaries) == 0 {
		return failedRestore("", "no backups available")
	}

	latest := summaries[0].Metadata.BackupID
	slog.Info("rolling back to most recent backup", slog.String("backupID", latest))
	return e.RestoreBackup(ctx, latest, RestoreOptions{})
}
