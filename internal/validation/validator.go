package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// Check counts used for TotalChecks. They model how many checks a declaration
// exposes, not how many branches actually ran.
const (
	baseCheckCount         = 15
	checksPerGoodsLine     = 8
	weightCheckCount       = 2
	exchangeRateCheckCount = 1
)

// SystemField is the field reported when validation itself fails.
const SystemField = "system"

// Validator runs the checker stages over a declaration and assembles the report.
// It is safe for concurrent use.
type Validator struct {
	checkers []Checker
	rules    *RuleSet
	parallel bool
	metrics  *Metrics
	logger   *slog.Logger
}

// NewValidator creates a Validator with the standard checker stages.
func NewValidator(opts ...Option) *Validator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var rules *RuleSet
	if o.Rules == nil {
		rules = DefaultRuleSet()
	} else {
		// the caller keeps its RuleSet; only the private copy gets indexed
		cp := *o.Rules
		cp.index()
		rules = &cp
	}

	checkers := o.Checkers
	if len(checkers) == 0 {
		checkers = []Checker{
			NewFieldIntegrityChecker(rules),
			NewDataLogicChecker(rules),
			NewComplianceChecker(rules),
		}
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{
		checkers: checkers,
		rules:    rules,
		parallel: o.Parallel,
		metrics:  o.Metrics,
		logger:   logger,
	}
}

// Rules returns the rule tables in use.
func (v *Validator) Rules() *RuleSet {
	return v.rules
}

// Validate checks rec and returns a report. It never fails: an unexpected
// fault inside a checker yields a degraded report with a single critical
// finding on the system field.
func (v *Validator) Validate(ctx context.Context, rec model.DeclarationRecord) *model.ValidationReport {
	start := time.Now()

	results, err := v.runCheckers(&rec)
	if err != nil {
		v.logger.ErrorContext(ctx, "declaration validation failed", "error", err)
		v.metrics.RecordFault()
		report := faultReport(time.Since(start))
		v.metrics.RecordValidation(report.OverallStatus, report.ValidationTime)
		return report
	}

	report := &model.ValidationReport{
		Errors:      []model.Finding{},
		Warnings:    []model.Finding{},
		Suggestions: []model.Finding{},
	}
	for i, findings := range results {
		v.metrics.RecordFindings(v.checkers[i].Name(), findings)
		for _, f := range findings {
			switch f.Severity {
			case model.SeverityCritical:
				report.Errors = append(report.Errors, f)
			case model.SeverityWarning:
				report.Warnings = append(report.Warnings, f)
			default:
				report.Suggestions = append(report.Suggestions, f)
			}
		}
	}

	switch {
	case len(report.Errors) > 0:
		report.OverallStatus = model.StatusError
	case len(report.Warnings) > 0:
		report.OverallStatus = model.StatusWarning
	default:
		report.OverallStatus = model.StatusPass
	}

	report.TotalChecks = totalChecks(&rec)
	report.PassedCount = report.TotalChecks - report.FindingCount()
	report.CustomsReady = len(report.Errors) == 0
	report.ValidationTime = time.Since(start)

	v.metrics.RecordValidation(report.OverallStatus, report.ValidationTime)
	v.logger.DebugContext(ctx, "declaration validated",
		"status", report.OverallStatus,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"suggestions", len(report.Suggestions),
		"duration", report.ValidationTime,
	)
	return report
}

// runCheckers returns one findings slice per checker, in checker order.
func (v *Validator) runCheckers(rec *model.DeclarationRecord) ([][]model.Finding, error) {
	results := make([][]model.Finding, len(v.checkers))

	if !v.parallel {
		for i, c := range v.checkers {
			findings, err := runChecker(c, rec)
			if err != nil {
				return nil, err
			}
			results[i] = findings
		}
		return results, nil
	}

	var g errgroup.Group
	for i, c := range v.checkers {
		g.Go(func() error {
			findings, err := runChecker(c, rec)
			if err != nil {
				return err
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runChecker invokes c, converting a panic into an error and stamping each
// finding with the checker name.
func runChecker(c Checker, rec *model.DeclarationRecord) (findings []model.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("checker %s panicked: %v", c.Name(), r)
		}
	}()

	findings = c.Check(rec)
	for i := range findings {
		findings[i].Checker = c.Name()
	}
	return findings, nil
}

func totalChecks(rec *model.DeclarationRecord) int {
	total := baseCheckCount + checksPerGoodsLine*len(rec.Goods)
	if rec.GrossWeight != nil && rec.NetWeight != nil {
		total += weightCheckCount
	}
	if rec.ExchangeRate != nil {
		total += exchangeRateCheckCount
	}
	return total
}

func faultReport(elapsed time.Duration) *model.ValidationReport {
	return &model.ValidationReport{
		OverallStatus:  model.StatusError,
		ValidationTime: elapsed,
		Errors: []model.Finding{{
			Field:      model.TopLevel(SystemField),
			Message:    "校验系统发生错误",
			Suggestion: "请稍后重试或联系管理员",
			Severity:   model.SeverityCritical,
			Rule:       "system-fault",
		}},
		Warnings:     []model.Finding{},
		Suggestions:  []model.Finding{},
		PassedCount:  0,
		TotalChecks:  0,
		CustomsReady: false,
	}
}
