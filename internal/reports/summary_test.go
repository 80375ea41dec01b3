package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medcompanion-server/internal/models"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.Summary
	}{
		{
			name:    "last matching line wins",
			content: "Date: 2024-01-01\nDiagnosis: Flu\nDiagnosis: Cold\nRecommendation: Rest",
			want:    models.Summary{Date: "2024-01-01", Diagnosis: "Cold", Medicines: "Rest", Other: ""},
		},
		{
			name:    "no recognized prefixes keeps defaults",
			content: "Patient felt fine.\nNo remarks.",
			want:    models.DefaultSummary(),
		},
		{
			name:    "case insensitive with surrounding whitespace",
			content: "   DATE:   2023-12-24  \r\n\tdiagnosis: Migraine\nRECOMMENDATION: Ibuprofen: 200mg",
			want:    models.Summary{Date: "2023-12-24", Diagnosis: "Migraine", Medicines: "Ibuprofen: 200mg", Other: ""},
		},
		{
			name:    "symptoms keep the whole line",
			content: "Symptoms: cough, fever\nsymptoms: headache",
			want:    models.Summary{Date: "Unknown", Diagnosis: "Unknown", Medicines: "None mentioned", Other: "symptoms: headache"},
		},
		{
			name:    "prefix must start the line",
			content: "Follow-up date: 2024-02-02\nFinal diagnosis: Asthma",
			want:    models.DefaultSummary(),
		},
		{
			name:    "empty value overrides default",
			content: "Diagnosis:",
			want:    models.Summary{Date: "Unknown", Diagnosis: "", Medicines: "None mentioned", Other: ""},
		},
		{
			name:    "empty content",
			content: "",
			want:    models.DefaultSummary(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSummary(tt.content))
		})
	}
}
