package validation

import (
	"fmt"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// ValidateSession classifies a session submission. A dangling child reference
// is deliberately a warning, not an error: offline-first clients write
// sessions before the corresponding child record has propagated to the shared
// store, and a degraded store must not block the clinical workflow.
func (s *Service) ValidateSession(session clinicalTypes.Session, isUpdate bool) clinicalTypes.ValidationResult {
	result := clinicalTypes.NewValidationResult()
	now := s.now()

	// session type
	sessionType := clinicalTypes.NormalizeSessionType(session.SessionType)
	if sessionType == "" {
		if !isUpdate {
			result.AddError("session type is required")
		}
	} else if !clinicalTypes.IsKnownSessionType(sessionType) {
		result.AddError(fmt.Sprintf("unrecognized session type: %s", session.SessionType))
	} else {
		s.checkExpectedResults(sessionType, session, &result)
	}

	// child reference
	var childAge float64
	childFound := false
	if session.ChildID == "" {
		if !isUpdate {
			result.AddError("child id is required")
		}
	} else {
		child, err := s.store.GetChildByID(session.ChildID)
		if err != nil {
			result.AddWarning(fmt.Sprintf("child %s not found, may not be synced yet", session.ChildID))
		} else {
			childFound = true
			if child.DateOfBirth > 0 {
				childAge = AgeFromDateOfBirth(child.DateOfBirth, now)
			}
		}
	}

	// age-appropriate assessment band, only for the banded assessment types
	if childFound && childAge > 0 && isBandedSessionType(sessionType) {
		expected := clinicalTypes.SessionTypeForAge(childAge)
		if expected != sessionType {
			result.AddWarning(fmt.Sprintf("session type %s is outside the age-appropriate band for age %.1f", sessionType, childAge))
		}
	}

	// timestamps
	if session.StartTime == 0 {
		if !isUpdate {
			result.AddError("start time is required")
		}
	} else {
		if session.StartTime > now.Add(FUTURE_TIMESTAMP_ALLOWANCE).UnixMilli() {
			result.AddWarning("start time is in the future")
		}
		if session.EndTime > 0 {
			if session.EndTime < session.StartTime {
				result.AddError("end time is before start time")
			} else {
				durationSec := float64(session.EndTime-session.StartTime) / 1000
				if durationSec < MIN_SESSION_DURATION_SEC {
					result.AddWarning(fmt.Sprintf("session duration %.1fs is too short to be genuine", durationSec))
				} else if durationSec > MAX_SESSION_DURATION_SEC {
					result.AddWarning(fmt.Sprintf("session duration %.0fs exceeds one hour", durationSec))
				}
			}
		}
	}

	// risk score and level
	if session.RiskScore != nil {
		score := *session.RiskScore
		if score < 0 || score > 100 {
			result.AddError(fmt.Sprintf("risk score %.1f is outside [0, 100]", score))
		} else if session.RiskLevel != "" {
			expected := s.risk.LevelForScore(score)
			if session.RiskLevel != expected {
				result.AddWarning(fmt.Sprintf("risk level %s disagrees with score %.1f (expected %s)", session.RiskLevel, score, expected))
			}
		}
	}

	return result
}

func isBandedSessionType(sessionType string) bool {
	for _, band := range clinicalTypes.AgeBands {
		if band.SessionType == sessionType {
			return true
		}
	}
	return false
}

// checkExpectedResults warns when a session lacks the payload section its
// type is expected to carry.
func (s *Service) checkExpectedResults(sessionType string, session clinicalTypes.Session, result *clinicalTypes.ValidationResult) {
	switch sessionType {
	case clinicalTypes.SESSION_TYPE_INHIBITION_GAME, clinicalTypes.SESSION_TYPE_RULE_SWITCH_GAME:
		if len(session.GameResults) == 0 {
			result.AddWarning(fmt.Sprintf("%s session without game results", sessionType))
		}
	case clinicalTypes.SESSION_TYPE_BEHAVIORAL_QUESTIONNAIRE:
		if len(session.QuestionnaireResults) == 0 {
			result.AddWarning("questionnaire session without questionnaire results")
		}
	case clinicalTypes.SESSION_TYPE_REFLECTION:
		if len(session.ReflectionResults) == 0 {
			result.AddWarning("reflection session without reflection results")
		}
	}
}
