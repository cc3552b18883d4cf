package utils

import (
	"regexp"
	"strings"
)

// GenerateEnvVarName generates a standardized environment variable name from a given string.
// It converts the input to uppercase and replaces any non-alphanumeric characters with underscores.
// Leading and trailing underscores are removed.
func GenerateEnvVarName(input string) string {
	// Convert to uppercase
	normalized := strings.ToUpper(input)

	// Replace any non-alphanumeric characters with underscores
	reg := regexp.MustCompile(`[^A-Z0-9]+`)
	normalized = reg.ReplaceAllString(normalized, "_")

	// Remove leading/trailing underscores
	normalized = strings.Trim(normalized, "_")

	return normalized
}

// GenerateSMTPPasswordEnvVarName generates the environment variable name that
// holds the password of a configured SMTP server, based on the server's host.
// Format: SMTP_PASSWORD_FOR_{NORMALIZED_HOST}
func GenerateSMTPPasswordEnvVarName(host string) string {
	normalizedHost := GenerateEnvVarName(host)
	return "SMTP_PASSWORD_FOR_" + normalizedHost
}
