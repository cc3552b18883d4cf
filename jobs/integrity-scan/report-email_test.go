package main

import (
	"strings"
	"testing"

	"github.com/early-steps/screening-backend/pkg/integrity"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

func TestBuildReportEmail(t *testing.T) {
	report := integrity.Report{
		Checks: map[string][]clinicalTypes.IntegrityIssue{
			"orphanedSessions": {
				{
					Type:      clinicalTypes.ISSUE_TYPE_ORPHANED_SESSION,
					Severity:  clinicalTypes.SEVERITY_HIGH,
					Message:   "session references unknown child",
					SessionID: "s1",
				},
			},
			"consistency": {},
		},
		CheckedAt: 1700000000000,
	}
	for _, issues := range report.Checks {
		for _, issue := range issues {
			report.Summary.Count(issue)
		}
	}

	subject, body, err := buildReportEmail(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(subject, "1 high") {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "session references unknown child") {
		t.Error("expected issue message in body")
	}
	if !strings.Contains(body, "orphanedSessions (1)") {
		t.Error("expected check section in body")
	}
	if strings.Contains(body, "consistency (0)") {
		t.Error("empty checks should be omitted")
	}
}
