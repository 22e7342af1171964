package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Severity classifies how a finding affects submission.
type Severity string

const (
	// SeverityCritical blocks submission.
	SeverityCritical Severity = "critical"
	// SeverityWarning is surfaced to the declarant but does not block submission.
	SeverityWarning Severity = "warning"
	// SeveritySuggestion is advisory only.
	SeveritySuggestion Severity = "suggestion"
)

// ErrInvalidFieldPath is returned when a field path is neither a top-level
// field name nor a goods[<index>].<field> reference.
var ErrInvalidFieldPath = errors.New("invalid field path")

// FieldKind distinguishes the two shapes a field reference may take.
type FieldKind int

const (
	FieldTopLevel FieldKind = iota
	FieldGoodsLine
)

// goodsPrefix is the collection name used in goods line paths.
const goodsPrefix = "goods"

// FieldRef points at a single field of a DeclarationRecord.
type FieldRef struct {
	Kind  FieldKind
	Name  string // top-level field name, or goods line sub-field
	Index int    // goods line index; only meaningful for FieldGoodsLine
}

// TopLevel returns a reference to a top-level record field.
func TopLevel(name string) FieldRef {
	return FieldRef{Kind: FieldTopLevel, Name: name}
}

// GoodsField returns a reference to a field of the goods line at index.
func GoodsField(index int, name string) FieldRef {
	return FieldRef{Kind: FieldGoodsLine, Name: name, Index: index}
}

// String renders the reference as "name" or "goods[i].name".
func (f FieldRef) String() string {
	if f.Kind == FieldGoodsLine {
		return fmt.Sprintf("%s[%d].%s", goodsPrefix, f.Index, f.Name)
	}
	return f.Name
}

// ParseFieldRef parses the textual form produced by String. Any other shape,
// including deeper paths, is rejected with ErrInvalidFieldPath.
func ParseFieldRef(s string) (FieldRef, error) {
	if s == "" {
		return FieldRef{}, fmt.Errorf("%w: empty path", ErrInvalidFieldPath)
	}
	if !strings.ContainsAny(s, "[].") {
		return TopLevel(s), nil
	}

	rest, ok := strings.CutPrefix(s, goodsPrefix+"[")
	if !ok {
		return FieldRef{}, fmt.Errorf("%w: %q", ErrInvalidFieldPath, s)
	}
	indexStr, name, ok := strings.Cut(rest, "].")
	if !ok || name == "" || strings.ContainsAny(name, "[].") {
		return FieldRef{}, fmt.Errorf("%w: %q", ErrInvalidFieldPath, s)
	}
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 || strconv.Itoa(index) != indexStr {
		return FieldRef{}, fmt.Errorf("%w: bad goods index in %q", ErrInvalidFieldPath, s)
	}
	return GoodsField(index, name), nil
}

// MarshalText implements encoding.TextMarshaler.
func (f FieldRef) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FieldRef) UnmarshalText(text []byte) error {
	ref, err := ParseFieldRef(string(text))
	if err != nil {
		return err
	}
	*f = ref
	return nil
}

// Finding is a single validation result.
type Finding struct {
	Field      FieldRef `json:"field"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
	Severity   Severity `json:"severity"`
	AutoFix    bool     `json:"autoFix"`
	// FixValue is the replacement value for Field: a float64 or a string.
	FixValue any    `json:"fixValue,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Checker  string `json:"checker,omitempty"`
}

// IsCritical returns true if the finding blocks submission.
func (f Finding) IsCritical() bool {
	return f.Severity == SeverityCritical
}

// CanAutoFix reports whether the finding carries an applicable correction.
func (f Finding) CanAutoFix() bool {
	return f.AutoFix && f.FixValue != nil
}

// String returns a human-readable representation of the finding.
func (f Finding) String() string {
	return string(f.Severity) + ": " + f.Message + " at " + f.Field.String()
}
