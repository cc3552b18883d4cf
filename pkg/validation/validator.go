package validation

import (
	"time"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// validation bounds
const (
	MIN_NAME_LENGTH = 2
	MAX_NAME_LENGTH = 100

	MIN_SESSION_DURATION_SEC = 10
	MAX_SESSION_DURATION_SEC = 3600

	MIN_PLAUSIBLE_REACTION_TIME_MS = 100
	MAX_PLAUSIBLE_REACTION_TIME_MS = 30000

	MAX_PLAUSIBLE_TRIAL_NUMBER = 1000

	AGE_MONTHS_TOLERANCE = 1

	// small allowance before a timestamp counts as "in the future"
	FUTURE_TIMESTAMP_ALLOWANCE = 5 * time.Minute

	MS_PER_YEAR = 365.25 * 24 * 60 * 60 * 1000
)

// StoreReader is the subset of the clinical store the validator consults for
// cross-entity facts. Lookups may fail when the store is degraded; the
// validator downgrades such failures to warnings wherever the product
// tolerates eventually-consistent data.
type StoreReader interface {
	GetChildByID(childID string) (clinicalTypes.Child, error)
	FindChildrenByChildCode(childCode string) ([]clinicalTypes.Child, error)
	GetSessionByID(sessionID string) (clinicalTypes.Session, error)
	GetClinicianByID(clinicianID string) (clinicalTypes.Clinician, error)
}

type Service struct {
	store StoreReader
	risk  clinicalTypes.RiskThresholds

	// overridable in tests
	now func() time.Time
}

func NewService(store StoreReader, risk clinicalTypes.RiskThresholds) *Service {
	return &Service{
		store: store,
		risk:  risk,
		now:   time.Now,
	}
}

// AgeFromDateOfBirth computes the age in years (fractional) for a date of
// birth given in epoch millis.
func AgeFromDateOfBirth(dateOfBirth int64, now time.Time) float64 {
	return float64(now.UnixMilli()-dateOfBirth) / MS_PER_YEAR
}
