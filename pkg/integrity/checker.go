package integrity

import (
	"context"
	"fmt"
	"time"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

const (
	AGE_DRIFT_TOLERANCE_YEARS  = 0.1
	FUTURE_TIMESTAMP_ALLOWANCE = 5 * time.Minute

	MS_PER_YEAR = 365.25 * 24 * 60 * 60 * 1000
)

// check names as reported in the scan result
const (
	CHECK_ORPHANED_SESSIONS    = "orphanedSessions"
	CHECK_ORPHANED_TRIALS      = "orphanedTrials"
	CHECK_CLINICIAN_REFERENCES = "clinicianReferences"
	CHECK_CONSISTENCY          = "consistency"
	CHECK_MISSING_DATA         = "missingData"
)

// StoreReader provides the full-collection reads the checker scans over.
type StoreReader interface {
	GetAllChildren(ctx context.Context) ([]clinicalTypes.Child, error)
	GetAllSessions(ctx context.Context) ([]clinicalTypes.Session, error)
	GetAllTrials(ctx context.Context) ([]clinicalTypes.Trial, error)
	GetAllClinicians(ctx context.Context) ([]clinicalTypes.Clinician, error)
}

type Checker struct {
	store StoreReader
	risk  clinicalTypes.RiskThresholds

	// overridable in tests
	now func() time.Time
}

func NewChecker(store StoreReader, risk clinicalTypes.RiskThresholds) *Checker {
	return &Checker{
		store: store,
		risk:  risk,
		now:   time.Now,
	}
}

// snapshot holds each collection read once, plus the id sets the membership
// tests run against. Collections that failed to load are recorded in
// loadFailures and the checks depending on them are skipped.
type snapshot struct {
	children   []clinicalTypes.Child
	sessions   []clinicalTypes.Session
	trials     []clinicalTypes.Trial
	clinicians []clinicalTypes.Clinician

	childIDs     map[string]struct{}
	sessionIDs   map[string]struct{}
	clinicianIDs map[string]struct{}

	loadFailures map[string]error
}

func (s *snapshot) loaded(collection string) bool {
	_, failed := s.loadFailures[collection]
	return !failed
}

func (c *Checker) loadSnapshot(ctx context.Context) *snapshot {
	snap := &snapshot{
		childIDs:     map[string]struct{}{},
		sessionIDs:   map[string]struct{}{},
		clinicianIDs: map[string]struct{}{},
		loadFailures: map[string]error{},
	}

	var err error
	snap.children, err = c.store.GetAllChildren(ctx)
	if err != nil {
		snap.loadFailures[clinicalTypes.COLLECTION_CHILDREN] = err
	}
	snap.sessions, err = c.store.GetAllSessions(ctx)
	if err != nil {
		snap.loadFailures[clinicalTypes.COLLECTION_SESSIONS] = err
	}
	snap.trials, err = c.store.GetAllTrials(ctx)
	if err != nil {
		snap.loadFailures[clinicalTypes.COLLECTION_TRIALS] = err
	}
	snap.clinicians, err = c.store.GetAllClinicians(ctx)
	if err != nil {
		snap.loadFailures[clinicalTypes.COLLECTION_CLINICIANS] = err
	}

	for _, child := range snap.children {
		snap.childIDs[child.ID.Hex()] = struct{}{}
	}
	for _, session := range snap.sessions {
		snap.sessionIDs[session.ID.Hex()] = struct{}{}
	}
	for _, clinician := range snap.clinicians {
		snap.clinicianIDs[clinician.ID.Hex()] = struct{}{}
	}
	return snap
}

// loadFailureIssues converts failed collection reads into critical findings
// so a partial store outage surfaces in the report instead of aborting it.
func (s *snapshot) loadFailureIssues(collections ...string) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}
	for _, collection := range collections {
		if err, failed := s.loadFailures[collection]; failed {
			issues = append(issues, clinicalTypes.IntegrityIssue{
				Type:     clinicalTypes.ISSUE_TYPE_CHECK_FAILURE,
				Severity: clinicalTypes.SEVERITY_CRITICAL,
				Message:  fmt.Sprintf("could not read collection %s: %s", collection, err.Error()),
				Field:    collection,
			})
		}
	}
	return issues
}
