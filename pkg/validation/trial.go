package validation

import (
	"fmt"
	"time"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// ValidateTrial classifies a trial submission. Unlike the session-to-child
// edge, the trial-to-session reference is always fatal when broken: trials
// are cascade-deleted with their session, so a dangling reference can never
// be "pending sync".
func (s *Service) ValidateTrial(trial clinicalTypes.Trial) clinicalTypes.ValidationResult {
	result := clinicalTypes.NewValidationResult()
	now := s.now()

	if trial.SessionID == "" {
		result.AddError("session id is required")
	} else if _, err := s.store.GetSessionByID(trial.SessionID); err != nil {
		result.AddError(fmt.Sprintf("referenced session %s does not exist", trial.SessionID))
	}

	if trial.TrialNumber < 1 {
		result.AddError("trial number must be at least 1")
	} else if trial.TrialNumber > MAX_PLAUSIBLE_TRIAL_NUMBER {
		result.AddWarning(fmt.Sprintf("trial number %d is improbably large", trial.TrialNumber))
	}

	if trial.ReactionTimeMS < 0 {
		result.AddError("reaction time must not be negative")
	} else if trial.ReactionTimeMS > MAX_PLAUSIBLE_REACTION_TIME_MS {
		result.AddWarning(fmt.Sprintf("reaction time %.0fms is implausibly high", trial.ReactionTimeMS))
	} else if trial.ReactionTimeMS < MIN_PLAUSIBLE_REACTION_TIME_MS {
		result.AddWarning(fmt.Sprintf("reaction time %.0fms is implausibly low", trial.ReactionTimeMS))
	}

	if trial.Timestamp > 0 {
		if trial.Timestamp > now.Add(FUTURE_TIMESTAMP_ALLOWANCE).UnixMilli() {
			result.AddWarning("trial timestamp is in the future")
		} else if trial.Timestamp < now.Add(-365*24*time.Hour).UnixMilli() {
			result.AddWarning("trial timestamp is more than a year old")
		}
	}

	return result
}
