package api

import "strings"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"

	DefaultSeverity = SeverityMedium
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

var severityDescriptions = map[Severity]string{
	SeverityLow:      "Few trees affected",
	SeverityMedium:   "Moderate damage",
	SeverityHigh:     "Extensive damage",
	SeverityCritical: "Large scale destruction",
}

// Severities lists all levels in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := severityRank[sev]; !ok {
		return "", &ValidationError{Field: "severity", Message: "Please choose a severity level: low, medium, high or critical"}
	}
	return sev, nil
}

func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Compare orders severities; unknown levels sort below low.
func (s Severity) Compare(o Severity) int {
	return severityRank[s] - severityRank[o]
}

func (s Severity) Description() string {
	return severityDescriptions[s]
}
