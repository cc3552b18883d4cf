package clinical

const (
	SEVERITY_CRITICAL = "critical"
	SEVERITY_HIGH     = "high"
	SEVERITY_MEDIUM   = "medium"
	SEVERITY_LOW      = "low"
)

// issue types reported by the integrity checker
const (
	ISSUE_TYPE_ORPHANED_SESSION            = "orphaned_session"
	ISSUE_TYPE_ORPHANED_TRIAL              = "orphaned_trial"
	ISSUE_TYPE_INVALID_CLINICIAN_REFERENCE = "invalid_clinician_reference"
	ISSUE_TYPE_CONSISTENCY                 = "consistency"
	ISSUE_TYPE_MISSING_DATA                = "missing_data"
	ISSUE_TYPE_CHECK_FAILURE               = "check_failure"
)

// IntegrityIssue is a single severity-tagged finding of an integrity scan.
// Issues are reported, never auto-corrected.
type IntegrityIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`

	ChildID     string `json:"childID,omitempty"`
	SessionID   string `json:"sessionID,omitempty"`
	TrialID     string `json:"trialID,omitempty"`
	ClinicianID string `json:"clinicianID,omitempty"`
	Field       string `json:"field,omitempty"`
}

// IntegritySummary is the severity histogram over all findings of one run.
type IntegritySummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (s *IntegritySummary) Count(issue IntegrityIssue) {
	s.Total++
	switch issue.Severity {
	case SEVERITY_CRITICAL:
		s.Critical++
	case SEVERITY_HIGH:
		s.High++
	case SEVERITY_MEDIUM:
		s.Medium++
	case SEVERITY_LOW:
		s.Low++
	}
}
