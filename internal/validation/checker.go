package validation

import (
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// Checker is one stage of declaration validation.
//
// Checkers must be pure: they read the record, never modify it, and keep no
// state between calls, so the Validator may run them concurrently.
type Checker interface {
	// Name returns the unique identifier for this checker.
	Name() string

	// Check returns the findings for rec in a stable order.
	Check(rec *model.DeclarationRecord) []model.Finding
}

// Checker names.
const (
	CheckerFieldIntegrity = "field-integrity"
	CheckerDataLogic      = "data-logic"
	CheckerCompliance     = "compliance"
)

// findingBuilder provides a fluent API for building findings.
type findingBuilder struct {
	finding model.Finding
}

func newFinding(severity model.Severity, field model.FieldRef, rule string) *findingBuilder {
	return &findingBuilder{finding: model.Finding{
		Field:    field,
		Severity: severity,
		Rule:     rule,
	}}
}

func critical(field model.FieldRef, rule string) *findingBuilder {
	return newFinding(model.SeverityCritical, field, rule)
}

func warning(field model.FieldRef, rule string) *findingBuilder {
	return newFinding(model.SeverityWarning, field, rule)
}

func suggestion(field model.FieldRef, rule string) *findingBuilder {
	return newFinding(model.SeveritySuggestion, field, rule)
}

func (b *findingBuilder) Message(msg string) *findingBuilder {
	b.finding.Message = msg
	return b
}

func (b *findingBuilder) Suggest(text string) *findingBuilder {
	b.finding.Suggestion = text
	return b
}

// Fix marks the finding as automatically correctable with value.
func (b *findingBuilder) Fix(value any) *findingBuilder {
	b.finding.AutoFix = true
	b.finding.FixValue = value
	return b
}

func (b *findingBuilder) Build() model.Finding {
	return b.finding
}
