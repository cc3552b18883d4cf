package clinical

import "strings"

// session types produced by the assessment clients
const (
	SESSION_TYPE_BEHAVIORAL_QUESTIONNAIRE = "behavioral_questionnaire"
	SESSION_TYPE_INHIBITION_GAME          = "inhibition_game"
	SESSION_TYPE_RULE_SWITCH_GAME         = "rule_switch_game"
	SESSION_TYPE_REFLECTION               = "reflection"
	SESSION_TYPE_MANUAL                   = "manual"
)

var SessionTypes = []string{
	SESSION_TYPE_BEHAVIORAL_QUESTIONNAIRE,
	SESSION_TYPE_INHIBITION_GAME,
	SESSION_TYPE_RULE_SWITCH_GAME,
	SESSION_TYPE_REFLECTION,
	SESSION_TYPE_MANUAL,
}

// NormalizeSessionType folds spellings that differ only by separator
// character ("rule-switch-game", "Rule Switch Game") into the canonical
// snake_case form before membership tests.
func NormalizeSessionType(sessionType string) string {
	normalized := strings.ToLower(strings.TrimSpace(sessionType))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return normalized
}

func IsKnownSessionType(sessionType string) bool {
	for _, t := range SessionTypes {
		if t == sessionType {
			return true
		}
	}
	return false
}

// AgeBand maps an age range (years, half-open interval) to the assessment
// type designed for it.
type AgeBand struct {
	MinAge      float64
	MaxAge      float64
	SessionType string
}

// Screening range and per-assessment age bands of the study protocol.
const (
	SCREENING_MIN_AGE = 2.0
	SCREENING_MAX_AGE = 7.0
)

var AgeBands = []AgeBand{
	{MinAge: 2.0, MaxAge: 3.5, SessionType: SESSION_TYPE_BEHAVIORAL_QUESTIONNAIRE},
	{MinAge: 3.5, MaxAge: 5.0, SessionType: SESSION_TYPE_INHIBITION_GAME},
	{MinAge: 5.0, MaxAge: 7.0, SessionType: SESSION_TYPE_RULE_SWITCH_GAME},
}

// SessionTypeForAge returns the assessment type appropriate for the given
// age, or empty string if the age is outside all bands.
func SessionTypeForAge(age float64) string {
	for _, band := range AgeBands {
		if age >= band.MinAge && age < band.MaxAge {
			return band.SessionType
		}
	}
	return ""
}
