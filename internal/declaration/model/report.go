package model

import (
	"encoding/json"
	"time"
)

// OverallStatus is the verdict of a validation run.
type OverallStatus string

const (
	StatusPass    OverallStatus = "pass"
	StatusWarning OverallStatus = "warning"
	StatusError   OverallStatus = "error"
)

// ValidationReport is the aggregate output of validating one declaration.
type ValidationReport struct {
	OverallStatus  OverallStatus `json:"overallStatus"`
	ValidationTime time.Duration `json:"-"`
	Errors         []Finding     `json:"errors"`
	Warnings       []Finding     `json:"warnings"`
	Suggestions    []Finding     `json:"suggestions"`
	PassedCount    int           `json:"passedCount"`
	TotalChecks    int           `json:"totalChecks"`
	CustomsReady   bool          `json:"customsReady"`
}

// Findings returns all findings in presentation order: errors, warnings, suggestions.
func (r *ValidationReport) Findings() []Finding {
	all := make([]Finding, 0, len(r.Errors)+len(r.Warnings)+len(r.Suggestions))
	all = append(all, r.Errors...)
	all = append(all, r.Warnings...)
	return append(all, r.Suggestions...)
}

// FindingCount returns the total number of findings across all severities.
func (r *ValidationReport) FindingCount() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Suggestions)
}

// MarshalJSON renders the validation time in milliseconds.
func (r ValidationReport) MarshalJSON() ([]byte, error) {
	type plain ValidationReport
	return json.Marshal(struct {
		plain
		ValidationTimeMs float64 `json:"validationTimeMs"`
	}{plain(r), float64(r.ValidationTime.Microseconds()) / 1000})
}

// UnmarshalJSON restores the validation time from milliseconds.
func (r *ValidationReport) UnmarshalJSON(data []byte) error {
	type plain ValidationReport
	var aux struct {
		plain
		ValidationTimeMs float64 `json:"validationTimeMs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ValidationReport(aux.plain)
	r.ValidationTime = time.Duration(aux.ValidationTimeMs * float64(time.Millisecond))
	return nil
}
