package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/early-steps/screening-backend/pkg/integrity"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

func main() {
	slog.Info("Starting integrity scan job")
	start := time.Now()

	report := integrityChecker.RunAllChecks(context.Background())

	for checkName, issues := range report.Checks {
		for _, issue := range issues {
			logIssue(checkName, issue)
		}
	}

	slog.Info("Integrity scan finished",
		slog.Int("total", report.Summary.Total),
		slog.Int("critical", report.Summary.Critical),
		slog.Int("high", report.Summary.High),
		slog.Int("medium", report.Summary.Medium),
		slog.Int("low", report.Summary.Low),
	)

	if conf.ReportConfig.EmailOnFindings && report.Summary.Critical+report.Summary.High > 0 {
		sendReportEmail(report)
	}

	slog.Info("Integrity scan job completed", slog.String("duration", time.Since(start).String()))
}

func logIssue(checkName string, issue clinicalTypes.IntegrityIssue) {
	attrs := []any{
		slog.String("check", checkName),
		slog.String("type", issue.Type),
		slog.String("severity", issue.Severity),
	}
	if issue.ChildID != "" {
		attrs = append(attrs, slog.String("childID", issue.ChildID))
	}
	if issue.SessionID != "" {
		attrs = append(attrs, slog.String("sessionID", issue.SessionID))
	}
	if issue.TrialID != "" {
		attrs = append(attrs, slog.String("trialID", issue.TrialID))
	}
	if issue.ClinicianID != "" {
		attrs = append(attrs, slog.String("clinicianID", issue.ClinicianID))
	}
	if issue.Field != "" {
		attrs = append(attrs, slog.String("field", issue.Field))
	}

	switch issue.Severity {
	case clinicalTypes.SEVERITY_CRITICAL, clinicalTypes.SEVERITY_HIGH:
		slog.Error(issue.Message, attrs...)
	case clinicalTypes.SEVERITY_MEDIUM:
		slog.Warn(issue.Message, attrs...)
	default:
		slog.Info(issue.Message, attrs...)
	}
}

func sendReportEmail(report integrity.Report) {
	subject, body, err := buildReportEmail(report)
	if err != nil {
		slog.Error("Failed to build report email", slog.String("error", err.Error()))
		return
	}

	err = smtpClients.SendMail(
		conf.ReportConfig.RecipientEmails,
		subject,
		body,
		nil,
	)
	if err != nil {
		slog.Error("Failed to send report email", slog.String("error", err.Error()))
		return
	}
	slog.Info("Report email sent", slog.Int("recipients", len(conf.ReportConfig.RecipientEmails)))
}
