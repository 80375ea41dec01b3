package reports

import (
	"strings"

	"medcompanion-server/internal/models"
)

// ParseSummary pulls date, diagnosis, recommendation and symptoms lines out
// of report text. Prefixes match case-insensitively at the start of a trimmed
// line; a later line with the same prefix overwrites an earlier one. Fields
// never matched keep their defaults.
func ParseSummary(content string) models.Summary {
	summary := models.DefaultSummary()

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "date:"):
			summary.Date = valueAfterColon(line)
		case strings.HasPrefix(lower, "diagnosis:"):
			summary.Diagnosis = valueAfterColon(line)
		case strings.HasPrefix(lower, "recommendation:"):
			summary.Medicines = valueAfterColon(line)
		case strings.HasPrefix(lower, "symptoms:"):
			// whole line, label included
			summary.Other = line
		}
	}

	return summary
}

func valueAfterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
