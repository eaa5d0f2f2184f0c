package utils

import "time"

// GeneratedLayout is the layout of the "Generated:" line in the report header.
const GeneratedLayout = "2006-01-02 15:04:05"

// FormatGenerated renders the generation time of a report in local time.
// A zero time falls back to the current time so the header line is never empty.
func FormatGenerated(generatedAt time.Time) string {
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	return generatedAt.Local().Format(GeneratedLayout)
}
