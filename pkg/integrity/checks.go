package integrity

import (
	"context"
	"fmt"
	"math"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// CheckOrphanedSessions reports sessions whose child reference is not a live
// child id.
func (c *Checker) CheckOrphanedSessions(ctx context.Context) []clinicalTypes.IntegrityIssue {
	snap := c.loadSnapshot(ctx)
	issues := snap.loadFailureIssues(clinicalTypes.COLLECTION_CHILDREN, clinicalTypes.COLLECTION_SESSIONS)
	return append(issues, c.orphanedSessions(snap)...)
}

func (c *Checker) orphanedSessions(snap *snapshot) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}
	if !snap.loaded(clinicalTypes.COLLECTION_CHILDREN) || !snap.loaded(clinicalTypes.COLLECTION_SESSIONS) {
		return issues
	}
	for _, session := range snap.sessions {
		if session.ChildID == "" {
			continue // reported by the missing data check
		}
		if _, ok := snap.childIDs[session.ChildID]; !ok {
			issues = append(issues, clinicalTypes.IntegrityIssue{
				Type:      clinicalTypes.ISSUE_TYPE_ORPHANED_SESSION,
				Severity:  clinicalTypes.SEVERITY_HIGH,
				Message:   fmt.Sprintf("session references missing child %s", session.ChildID),
				SessionID: session.ID.Hex(),
				ChildID:   session.ChildID,
			})
		}
	}
	return issues
}

// CheckOrphanedTrials reports trials whose session reference is not a live
// session id.
func (c *Checker) CheckOrphanedTrials(ctx context.Context) []clinicalTypes.IntegrityIssue {
	snap := c.loadSnapshot(ctx)
	issues := snap.loadFailureIssues(clinicalTypes.COLLECTION_SESSIONS, clinicalTypes.COLLECTION_TRIALS)
	return append(issues, c.orphanedTrials(snap)...)
}

func (c *Checker) orphanedTrials(snap *snapshot) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}
	if !snap.loaded(clinicalTypes.COLLECTION_SESSIONS) || !snap.loaded(clinicalTypes.COLLECTION_TRIALS) {
		return issues
	}
	for _, trial := range snap.trials {
		if _, ok := snap.sessionIDs[trial.SessionID]; !ok {
			issues = append(issues, clinicalTypes.IntegrityIssue{
				Type:      clinicalTypes.ISSUE_TYPE_ORPHANED_TRIAL,
				Severity:  clinicalTypes.SEVERITY_HIGH,
				Message:   fmt.Sprintf("trial references missing session %s", trial.SessionID),
				TrialID:   trial.ID.Hex(),
				SessionID: trial.SessionID,
			})
		}
	}
	return issues
}

// CheckInvalidClinicianReferences reports children whose optional clinician
// reference does not resolve.
func (c *Checker) CheckInvalidClinicianReferences(ctx context.Context) []clinicalTypes.IntegrityIssue {
	snap := c.loadSnapshot(ctx)
	issues := snap.loadFailureIssues(clinicalTypes.COLLECTION_CHILDREN, clinicalTypes.COLLECTION_CLINICIANS)
	return append(issues, c.invalidClinicianReferences(snap)...)
}

func (c *Checker) invalidClinicianReferences(snap *snapshot) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}
	if !snap.loaded(clinicalTypes.COLLECTION_CHILDREN) || !snap.loaded(clinicalTypes.COLLECTION_CLINICIANS) {
		return issues
	}
	for _, child := range snap.children {
		if child.ClinicianID == "" {
			continue
		}
		if _, ok := snap.clinicianIDs[child.ClinicianID]; !ok {
			issues = append(issues, clinicalTypes.IntegrityIssue{
				Type:        clinicalTypes.ISSUE_TYPE_INVALID_CLINICIAN_REFERENCE,
				Severity:    clinicalTypes.SEVERITY_MEDIUM,
				Message:     fmt.Sprintf("child references missing clinician %s", child.ClinicianID),
				ChildID:     child.ID.Hex(),
				ClinicianID: child.ClinicianID,
			})
		}
	}
	return issues
}

// CheckDataConsistency reports timestamp sanity violations, risk band
// disagreements and drifted derived ages.
func (c *Checker) CheckDataConsistency(ctx context.Context) []clinicalTypes.IntegrityIssue {
	snap := c.loadSnapshot(ctx)
	issues := snap.loadFailureIssues(clinicalTypes.COLLECTION_CHILDREN, clinicalTypes.COLLECTION_SESSIONS)
	return append(issues, c.dataConsistency(snap)...)
}

func (c *Checker) dataConsistency(snap *snapshot) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}
	now := c.now()

	if snap.loaded(clinicalTypes.COLLECTION_SESSIONS) {
		for _, session := range snap.sessions {
			if session.StartTime > now.Add(FUTURE_TIMESTAMP_ALLOWANCE).UnixMilli() {
				issues = append(issues, clinicalTypes.IntegrityIssue{
					Type:      clinicalTypes.ISSUE_TYPE_CONSISTENCY,
					Severity:  clinicalTypes.SEVERITY_MEDIUM,
					Message:   "session start time is in the future",
					SessionID: session.ID.Hex(),
					Field:     "startTime",
				})
			}
			if session.EndTime > 0 && session.EndTime < session.StartTime {
				issues = append(issues, clinicalTypes.IntegrityIssue{
					Type:      clinicalTypes.ISSUE_TYPE_CONSISTENCY,
					Severity:  clinicalTypes.SEVERITY_HIGH,
					Message:   "session end time is before start time",
					SessionID: session.ID.Hex(),
					Field:     "endTime",
				})
			}
			if session.RiskScore != nil && session.RiskLevel != "" {
				expected := c.risk.LevelForScore(*session.RiskScore)
				if session.RiskLevel != expected {
					issues = append(issues, clinicalTypes.IntegrityIssue{
						Type:      clinicalTypes.ISSUE_TYPE_CONSISTENCY,
						Severity:  clinicalTypes.SEVERITY_MEDIUM,
						Message:   fmt.Sprintf("risk level %s disagrees with score %.1f (expected %s)", session.RiskLevel, *session.RiskScore, expected),
						SessionID: session.ID.Hex(),
						Field:     "riskLevel",
					})
				}
			}
		}
	}

	if snap.loaded(clinicalTypes.COLLECTION_CHILDREN) {
		for _, child := range snap.children {
			if child.Age <= 0 || child.DateOfBirth <= 0 {
				continue
			}
			computed := float64(now.UnixMilli()-child.DateOfBirth) / MS_PER_YEAR
			if math.Abs(computed-child.Age) > AGE_DRIFT_TOLERANCE_YEARS {
				issues = append(issues, clinicalTypes.IntegrityIssue{
					Type:     clinicalTypes.ISSUE_TYPE_CONSISTENCY,
					Severity: clinicalTypes.SEVERITY_LOW,
					Message:  fmt.Sprintf("stored age %.2f drifted from computed age %.2f", child.Age, computed),
					ChildID:  child.ID.Hex(),
					Field:    "age",
				})
			}
		}
	}

	return issues
}

// CheckMissingData reports required fields absent from children and sessions.
func (c *Checker) CheckMissingData(ctx context.Context) []clinicalTypes.IntegrityIssue {
	snap := c.loadSnapshot(ctx)
	issues := snap.loadFailureIssues(clinicalTypes.COLLECTION_CHILDREN, clinicalTypes.COLLECTION_SESSIONS)
	return append(issues, c.missingData(snap)...)
}

func (c *Checker) missingData(snap *snapshot) []clinicalTypes.IntegrityIssue {
	issues := []clinicalTypes.IntegrityIssue{}

	if snap.loaded(clinicalTypes.COLLECTION_CHILDREN) {
		for _, child := range snap.children {
			missing := []string{}
			if child.Name == "" {
				missing = append(missing, "name")
			}
			if child.DateOfBirth == 0 {
				missing = append(missing, "dateOfBirth")
			}
			if child.Gender == "" {
				missing = append(missing, "gender")
			}
			if child.Language == "" {
				missing = append(missing, "language")
			}
			for _, field := range missing {
				issues = append(issues, clinicalTypes.IntegrityIssue{
					Type:     clinicalTypes.ISSUE_TYPE_MISSING_DATA,
					Severity: clinicalTypes.SEVERITY_HIGH,
					Message:  fmt.Sprintf("child record is missing required field %s", field),
					ChildID:  child.ID.Hex(),
					Field:    field,
				})
			}
		}
	}

	if snap.loaded(clinicalTypes.COLLECTION_SESSIONS) {
		for _, session := range snap.sessions {
			missing := []string{}
			if session.ChildID == "" {
				missing = append(missing, "childID")
			}
			if session.SessionType == "" {
				missing = append(missing, "sessionType")
			}
			if session.StartTime == 0 {
				missing = append(missing, "startTime")
			}
			for _, field := range missing {
				issues = append(issues, clinicalTypes.IntegrityIssue{
					Type:      clinicalTypes.ISSUE_TYPE_MISSING_DATA,
					Severity:  clinicalTypes.SEVERITY_HIGH,
					Message:   fmt.Sprintf("session record is missing required field %s", field),
					SessionID: session.ID.Hex(),
					Field:     field,
				})
			}
		}
	}

	return issues
}
