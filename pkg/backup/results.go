package backup

import (
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// BackupResult is the outcome of creating one snapshot. Failures are carried
// in the result instead of raised to the caller.
type BackupResult struct {
	Success   bool                      `json:"success"`
	Error     string                    `json:"error,omitempty"`
	BackupID  string                    `json:"backupID,omitempty"`
	Stats     clinicalTypes.BackupStats `json:"stats"`
	Timestamp int64                     `json:"timestamp,omitempty"`
}

func failedBackup(backupID string, errMsg string) BackupResult {
	return BackupResult{
		BackupID: backupID,
		Error:    errMsg,
	}
}

// RestoreOptions selects what a restore touches. An empty collection list
// means all collections.
type RestoreOptions struct {
	DryRun      bool     `json:"dryRun"`
	Collections []string `json:"collections,omitempty"`
}

// RestoreResult is the outcome of one restore (or rollback) invocation.
// Partial marks the documented multi-batch failure mode: some batches were
// committed before a later one failed.
type RestoreResult struct {
	Success       bool                      `json:"success"`
	Error         string                    `json:"error,omitempty"`
	BackupID      string                    `json:"backupID,omitempty"`
	DryRun        bool                      `json:"dryRun,omitempty"`
	Stats         clinicalTypes.BackupStats `json:"stats"`
	RestoredCount int64                     `json:"restoredCount"`
	Partial       bool                      `json:"partial,omitempty"`
}

func failedRestore(backupID string, errMsg string) RestoreResult {
	return RestoreResult{
		BackupID: backupID,
		Error:    errMsg,
	}
}

// BackupSummary is one entry of the backup listing.
type BackupSummary struct {
	Metadata clinicalTypes.BackupMetadata `json:"metadata"`
	Stats    clinicalTypes.BackupStats    `json:"stats"`
}
