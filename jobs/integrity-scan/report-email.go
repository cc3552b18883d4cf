package main

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/early-steps/screening-backend/pkg/integrity"
	clinicalTypes "github.com/early-steps/screening-backend/pkg/types/clinical"
)

const reportEmailTemplate = `
<html>
<body>
<h2>Data integrity scan report</h2>
<p>Scanned at: {{.CheckedAt}}</p>
<table border="1" cellpadding="4" cellspacing="0">
	<tr><th>Severity</th><th>Count</th></tr>
	<tr><td>Critical</td><td>{{.Summary.Critical}}</td></tr>
	<tr><td>High</td><td>{{.Summary.High}}</td></tr>
	<tr><td>Medium</td><td>{{.Summary.Medium}}</td></tr>
	<tr><td>Low</td><td>{{.Summary.Low}}</td></tr>
	<tr><td><b>Total</b></td><td><b>{{.Summary.Total}}</b></td></tr>
</table>
{{range $check, $issues := .Checks}}{{if $issues}}
<h3>{{$check}} ({{len $issues}})</h3>
<ul>
{{range $issues}}<li>[{{.Severity}}] {{.Message}}</li>
{{end}}</ul>
{{end}}{{end}}
</body>
</html>`

type reportEmailData struct {
	CheckedAt string
	Summary   clinicalTypes.IntegritySummary
	Checks    map[string][]clinicalTypes.IntegrityIssue
}

func buildReportEmail(report integrity.Report) (subject string, body string, err error) {
	tmpl, err := template.New("integrity-report").Parse(reportEmailTemplate)
	if err != nil {
		return "", "", err
	}

	data := reportEmailData{
		CheckedAt: time.UnixMilli(report.CheckedAt).UTC().Format(time.RFC3339),
		Summary:   report.Summary,
		Checks:    report.Checks,
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", "", err
	}

	subject = fmt.Sprintf("Integrity scan: %d critical, %d high findings", report.Summary.Critical, report.Summary.High)
	return subject, content.String(), nil
}
