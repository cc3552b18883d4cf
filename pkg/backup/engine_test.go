package backup

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

type memStore struct {
	children   map[string]clinicalTypes.Child
	sessions   map[string]clinicalTypes.Session
	trials     map[string]clinicalTypes.Trial
	clinicians map[string]clinicalTypes.Clinician

	trialBatchSizes []int
	failTrialBatch  int // 1-based index of the trial batch that fails, 0 = never
}

func newMemStore() *memStore {
	return &memStore{
		children:   map[string]clinicalTypes.Child{},
		sessions:   map[string]clinicalTypes.Session{},
		trials:     map[string]clinicalTypes.Trial{},
		clinicians: map[string]clinicalTypes.Clinician{},
	}
}

func (m *memStore) GetAllChildren(ctx context.Context) ([]clinicalTypes.Child, error) {
	all := []clinicalTypes.Child{}
	for _, child := range m.children {
		all = append(all, child)
	}
	return all, nil
}

func (m *memStore) GetAllSessions(ctx context.Context) ([]clinicalTypes.Session, error) {
	all := []clinicalTypes.Session{}
	for _, session := range m.sessions {
		all = append(all, session)
	}
	return all, nil
}

func (m *memStore) GetAllTrials(ctx context.Context) ([]clinicalTypes.Trial, error) {
	all := []clinicalTypes.Trial{}
	for _, trial := range m.trials {
		all = append(all, trial)
	}
	return all, nil
}

func (m *memStore) GetAllClinicians(ctx context.Context) ([]clinicalTypes.Clinician, error) {
	all := []clinicalTypes.Clinician{}
	for _, clinician := range m.clinicians {
		all = append(all, clinician)
	}
	return all, nil
}

func (m *memStore) BulkUpsertChildren(ctx context.Context, children []clinicalTypes.Child) (int64, error) {
	if len(children) > clinicalTypes.BATCH_WRITE_LIMIT {
		return 0, fmt.Errorf("batch of %d exceeds the operation limit", len(children))
	}
	for _, child := range children {
		m.children[child.ID.Hex()] = child
	}
	return int64(len(children)), nil
}

func (m *memStore) BulkUpsertSessions(ctx context.Context, sessions []clinicalTypes.Session) (int64, error) {
	if len(sessions) > clinicalTypes.BATCH_WRITE_LIMIT {
		return 0, fmt.Errorf("batch of %d exceeds the operation limit", len(sessions))
	}
	for _, session := range sessions {
		m.sessions[session.ID.Hex()] = session
	}
	return int64(len(sessions)), nil
}

func (m *memStore) BulkUpsertTrials(ctx context.Context, trials []clinicalTypes.Trial) (int64, error) {
	if len(trials) > clinicalTypes.BATCH_WRITE_LIMIT {
		return 0, fmt.Errorf("batch of %d exceeds the operation limit", len(trials))
	}
	m.trialBatchSizes = append(m.trialBatchSizes, len(trials))
	if m.failTrialBatch > 0 && len(m.trialBatchSizes) == m.failTrialBatch {
		return 0, fmt.Errorf("simulated batch failure")
	}
	for _, trial := range trials {
		m.trials[trial.ID.Hex()] = trial
	}
	return int64(len(trials)), nil
}

func (m *memStore) BulkUpsertClinicians(ctx context.Context, clinicians []clinicalTypes.Clinician) (int64, error) {
	if len(clinicians) > clinicalTypes.BATCH_WRITE_LIMIT {
		return 0, fmt.Errorf("batch of %d exceeds the operation limit", len(clinicians))
	}
	for _, clinician := range clinicians {
		m.clinicians[clinician.ID.Hex()] = clinician
	}
	return int64(len(clinicians)), nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func seedStore(store *memStore, childCount int, sessionCount int, trialCount int) {
	for i := 0; i < childCount; i++ {
		child := clinicalTypes.Child{ID: primitive.NewObjectID(), Name: fmt.Sprintf("Child %d", i), DateOfBirth: 1500000000000, Gender: "female", Language: "sinhala"}
		store.children[child.ID.Hex()] = child
	}
	for i := 0; i < sessionCount; i++ {
		session := clinicalTypes.Session{ID: primitive.NewObjectID(), SessionType: clinicalTypes.SESSION_TYPE_MANUAL, StartTime: 1700000000000}
		store.sessions[session.ID.Hex()] = session
	}
	for i := 0; i < trialCount; i++ {
		trial := clinicalTypes.Trial{ID: primitive.NewObjectID(), TrialNumber: i + 1, ReactionTimeMS: 500}
		store.trials[trial.ID.Hex()] = trial
	}
}

func newTestEngine(t *testing.T, store *memStore) *Engine {
	t.Helper()
	artifacts, err := NewFileArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("could not create artifact store: %v", err)
	}
	e := NewEngine(store, artifacts, "test")
	fakeClock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time {
		fakeClock = fakeClock.Add(time.Second)
		return fakeClock
	}
	counter := 0
	e.newID = func() string {
		counter++
		return fmt.Sprintf("id%04d", counter)
	}
	return e
}

func TestCreateAndRestoreRoundTrip(t *testing.T) {
	store := newMemStore()
	seedStore(store, 3, 5, 20)
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "")
	if !created.Success {
		t.Fatalf("backup failed: %s", created.Error)
	}
	if created.Stats.Children != 3 || created.Stats.Sessions != 5 || created.Stats.Trials != 20 {
		t.Fatalf("unexpected stats: %+v", created.Stats)
	}

	// wipe the live store, then restore into it
	store.children = map[string]clinicalTypes.Child{}
	store.sessions = map[string]clinicalTypes.Session{}
	store.trials = map[string]clinicalTypes.Trial{}

	restored := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{})
	if !restored.Success {
		t.Fatalf("restore failed: %s", restored.Error)
	}
	if len(store.children) != 3 || len(store.sessions) != 5 || len(store.trials) != 20 {
		t.Errorf("round trip lost records: %d children, %d sessions, %d trials", len(store.children), len(store.sessions), len(store.trials))
	}
	if restored.RestoredCount != 28 {
		t.Errorf("expected 28 restored records, got %d", restored.RestoredCount)
	}
}

func TestDryRunPerformsNoWrites(t *testing.T) {
	store := newMemStore()
	seedStore(store, 2, 2, 2)
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "before-cleanup")
	if !created.Success {
		t.Fatalf("backup failed: %s", created.Error)
	}

	// diverge the live store from the snapshot
	for id := range store.trials {
		delete(store.trials, id)
	}

	result := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{DryRun: true})
	if !result.Success || !result.DryRun {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Stats.Trials != 2 {
		t.Errorf("expected stats from artifact, got %+v", result.Stats)
	}
	if len(store.trials) != 0 {
		t.Errorf("dry run must not write, found %d trials", len(store.trials))
	}
	if len(store.trialBatchSizes) != 0 {
		t.Errorf("dry run issued %d batches", len(store.trialBatchSizes))
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	e := newTestEngine(t, newMemStore())

	result := e.RestoreBackup(context.Background(), "missing", RestoreOptions{})
	if result.Success {
		t.Error("expected failure")
	}
	if result.Error != "backup not found" {
		t.Errorf("expected distinguishable not-found error, got %q", result.Error)
	}
}

func TestRestoreSplitsLargeCollections(t *testing.T) {
	store := newMemStore()
	seedStore(store, 0, 0, 1200)
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "")
	if !created.Success {
		t.Fatalf("backup failed: %s", created.Error)
	}

	store.trials = map[string]clinicalTypes.Trial{}
	store.trialBatchSizes = nil

	result := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{Collections: []string{clinicalTypes.COLLECTION_TRIALS}})
	if !result.Success {
		t.Fatalf("restore failed: %s", result.Error)
	}
	if len(store.trialBatchSizes) < 3 {
		t.Errorf("expected at least 3 batches for 1200 trials, got %v", store.trialBatchSizes)
	}
	if len(store.trials) != 1200 {
		t.Errorf("expected 1200 live trials, got %d", len(store.trials))
	}
}

func TestRestorePartialFailure(t *testing.T) {
	store := newMemStore()
	seedStore(store, 0, 0, 1200)
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "")
	if !created.Success {
		t.Fatalf("backup failed: %s", created.Error)
	}

	store.trials = map[string]clinicalTypes.Trial{}
	store.trialBatchSizes = nil
	store.failTrialBatch = 2

	result := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{Collections: []string{clinicalTypes.COLLECTION_TRIALS}})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !result.Partial {
		t.Error("expected partial restore to be reported")
	}
	if result.RestoredCount != clinicalTypes.BATCH_WRITE_LIMIT {
		t.Errorf("expected %d restored before failure, got %d", clinicalTypes.BATCH_WRITE_LIMIT, result.RestoredCount)
	}
	// batch 3 must never be attempted after batch 2 failed
	if len(store.trialBatchSizes) != 2 {
		t.Errorf("expected exactly 2 attempted batches, got %v", store.trialBatchSizes)
	}
}

func TestRestoreScopedToCollections(t *testing.T) {
	store := newMemStore()
	seedStore(store, 2, 3, 6)
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "")
	if !created.Success {
		t.Fatalf("backup failed: %s", created.Error)
	}

	store.sessions = map[string]clinicalTypes.Session{}
	store.trials = map[string]clinicalTypes.Trial{}

	result := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{Collections: []string{clinicalTypes.COLLECTION_SESSIONS}})
	if !result.Success {
		t.Fatalf("restore failed: %s", result.Error)
	}
	if len(store.sessions) != 3 {
		t.Errorf("expected sessions restored, got %d", len(store.sessions))
	}
	// restoring a session without its trials leaves it without trials
	if len(store.trials) != 0 {
		t.Errorf("trials must not be restored, got %d", len(store.trials))
	}
}

func TestRestoreUnknownCollection(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)

	created := e.CreateBackup(context.Background(), "")
	result := e.RestoreBackup(context.Background(), created.BackupID, RestoreOptions{Collections: []string{"surveys"}})
	if result.Success {
		t.Error("expected failure for unknown collection")
	}
}

func TestListBackupsNewestFirstSkippingCorrupt(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)

	first := e.CreateBackup(context.Background(), "")
	second := e.CreateBackup(context.Background(), "")
	if !first.Success || !second.Success {
		t.Fatal("backups failed")
	}
	if err := e.artifacts.Write("broken", []byte("{not json")); err != nil {
		t.Fatalf("could not write corrupt artifact: %v", err)
	}

	summaries, err := e.ListBackups(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected corrupt artifact to be skipped, got %d entries", len(summaries))
	}
	if summaries[0].Metadata.BackupID != second.BackupID {
		t.Errorf("expected newest first, got %s", summaries[0].Metadata.BackupID)
	}
}

func TestDeleteBackup(t *testing.T) {
	e := newTestEngine(t, newMemStore())

	created := e.CreateBackup(context.Background(), "to-delete")
	if err := e.DeleteBackup(context.Background(), created.BackupID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := e.DeleteBackup(context.Background(), created.BackupID); err == nil {
		t.Error("expected error deleting unknown backup")
	}
}

func TestPreOperationBackupNaming(t *testing.T) {
	e := newTestEngine(t, newMemStore())

	result := e.CreatePreOperationBackup(context.Background(), "delete session")
	if !result.Success {
		t.Fatalf("backup failed: %s", result.Error)
	}
	if !strings.HasPrefix(result.BackupID, "pre_delete_session_") {
		t.Errorf("unexpected backup id: %s", result.BackupID)
	}
}

func TestRollback(t *testing.T) {
	t.Run("fails without backups", func(t *testing.T) {
		e := newTestEngine(t, newMemStore())
		result := e.Rollback(context.Background())
		if result.Success {
			t.Error("expected failure")
		}
		if result.Error != "no backups available" {
			t.Errorf("expected explanatory error, got %q", result.Error)
		}
	})

	t.Run("restores the most recent backup", func(t *testing.T) {
		store := newMemStore()
		seedStore(store, 1, 1, 4)
		e := newTestEngine(t, store)

		e.CreateBackup(context.Background(), "")
		trial := clinicalTypes.Trial{ID: primitive.NewObjectID(), TrialNumber: 5, ReactionTimeMS: 400}
		store.trials[trial.ID.Hex()] = trial
		latest := e.CreateBackup(context.Background(), "")

		store.trials = map[string]clinicalTypes.Trial{}

		result := e.Rollback(context.Background())
		if !result.Success {
			t.Fatalf("rollback failed: %s", result.Error)
		}
		if result.BackupID != latest.BackupID {
			t.Errorf("expected rollback to %s, got %s", latest.BackupID, result.BackupID)
		}
		if len(store.trials) != 5 {
			t.Errorf("expected 5 trials after rollback, got %d", len(store.trials))
		}
	})
}

func TestCorruptStatsRejectedOnRestore(t *testing.T) {
	e := newTestEngine(t, newMemStore())

	payload := []byte(`{"metadata":{"backupID":"bad","timestamp":1,"version":"test"},"data":{"children":[],"sessions":[],"trials":[],"clinicians":[]},"stats":{"children":7,"sessions":0,"trials":0,"clinicians":0}}`)
	if err := e.artifacts.Write("bad", payload); err != nil {
		t.Fatalf("could not write artifact: %v", err)
	}

	result := e.RestoreBackup(context.Background(), "bad", RestoreOptions{})
	if result.Success {
		t.Error("expected restore of corrupt artifact to fail")
	}
}
