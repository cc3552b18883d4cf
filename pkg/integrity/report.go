package integrity

import (
	"context"

	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

// Report is the aggregated outcome of one full integrity scan.
type Report struct {
	Summary   clinicalTypes.IntegritySummary            `json:"summary"`
	Checks    map[string][]clinicalTypes.IntegrityIssue `json:"checks"`
	CheckedAt int64                                     `json:"checkedAt"`
}

// RunAllChecks loads every collection once and runs all checks against the
// shared snapshot. Collection read failures become critical findings under
// their own key; the remaining checks still run and report independently.
func (c *Checker) RunAllChecks(ctx context.Context) Report {
	snap := c.loadSnapshot(ctx)

	report := Report{
		Checks:    map[string][]clinicalTypes.IntegrityIssue{},
		CheckedAt: c.now().UnixMilli(),
	}

	report.Checks[CHECK_ORPHANED_SESSIONS] = c.orphanedSessions(snap)
	report.Checks[CHECK_ORPHANED_TRIALS] = c.orphanedTrials(snap)
	report.Checks[CHECK_CLINICIAN_REFERENCES] = c.invalidClinicianReferences(snap)
	report.Checks[CHECK_CONSISTENCY] = c.dataConsistency(snap)
	report.Checks[CHECK_MISSING_DATA] = c.missingData(snap)

	if loadIssues := snap.loadFailureIssues(clinicalTypes.AllCollections...); len(loadIssues) > 0 {
		report.Checks[clinicalTypes.ISSUE_TYPE_CHECK_FAILURE] = loadIssues
	}

	for _, issues := range report.Checks {
		for _, issue := range issues {
			report.Summary.Count(issue)
		}
	}
	return report
}
