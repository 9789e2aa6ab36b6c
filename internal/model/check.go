package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaVersion identifies the layout of Result and Check.
const SchemaVersion = "1"

// Status of a single check as reported by the analyzer. The analyzer
// reports success or failed, any other string is accepted as well.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Passed reports whether the check succeeded, case insensitive.
func (s Status) Passed() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusSuccess))
}

// Severity of a single check as reported by the analyzer. Like Status it
// is an open set.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders the known severities, unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ParseSeverity accepts the known severities, case insensitive.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("unknown severity %q, expected low, medium, high or critical", s)
	}
	return sev, nil
}

// Request is a single inspection request.
type Request struct {
	ImageID string
}

// RawFinding is the wire shape of one element of the analyzer JSON report.
type RawFinding struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Check is a normalized finding as consumed by the host.
type Check struct {
	Name                string   `json:"name"`
	Status              Status   `json:"status"`
	MarkdownDescription string   `json:"markdownDescription"`
	Severity            Severity `json:"severity"`
}

// Result holds the checks of one image in analyzer order.
type Result struct {
	Checks []Check `json:"checks"`
}

// MarshalJSON encodes a nil Checks as an empty array.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	if r.Checks == nil {
		r.Checks = []Check{}
	}
	return json.Marshal(alias(r))
}

// Failing returns the checks which did not pass and whose severity ranks
// at least as threshold.
func (r Result) Failing(threshold Severity) []Check {
	var ret []Check
	for _, c := range r.Checks {
		if c.Status.Passed() {
			continue
		}
		if Severity(strings.ToLower(string(c.Severity))).Rank() >= threshold.Rank() {
			ret = append(ret, c)
		}
	}
	return ret
}

// NewResult maps the raw findings 1:1 and in order.
func NewResult(raw []RawFinding) Result {
	checks := make([]Check, 0, len(raw))
	for _, f := range raw {
		checks = append(checks, Check{
			Name:                f.Name,
			Status:              Status(f.Status),
			MarkdownDescription: f.Description,
			Severity:            Severity(f.Severity),
		})
	}
	return Result{Checks: checks}
}

// ProviderInfo describes the check provider to a host registry.
type ProviderInfo struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}
