package validation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

type panickingChecker struct{}

func (panickingChecker) Name() string { return "broken" }

func (panickingChecker) Check(*model.DeclarationRecord) []model.Finding {
	panic("index out of range")
}

type staticChecker struct {
	name     string
	findings []model.Finding
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(*model.DeclarationRecord) []model.Finding {
	return append([]model.Finding(nil), c.findings...)
}

func TestValidator_CleanRecordPasses(t *testing.T) {
	v := NewValidator()

	report := v.Validate(context.Background(), cleanRecord())

	assert.Equal(t, model.StatusPass, report.OverallStatus)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Suggestions)
	assert.True(t, report.CustomsReady)
	assert.Equal(t, 25, report.TotalChecks) // 15 + 8 per line + 2 for weights
	assert.Equal(t, 25, report.PassedCount)
}

func TestValidator_MissingExportPort(t *testing.T) {
	rec := cleanRecord()
	rec.ExportPort = ""

	report := NewValidator().Validate(context.Background(), rec)

	require.Len(t, findingsFor(report.Errors, "exportPort"), 1)
	assert.NotEqual(t, model.StatusPass, report.OverallStatus)
	assert.False(t, report.CustomsReady)
}

func TestValidator_WeightInverted(t *testing.T) {
	rec := cleanRecord()
	rec.GrossWeight = model.Float(5)
	rec.NetWeight = model.Float(10)

	report := NewValidator().Validate(context.Background(), rec)

	got := findingsFor(report.Errors, "grossWeight")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "毛重")
	assert.Contains(t, got[0].Message, "不能小于净重")
	assert.False(t, report.CustomsReady)
}

func TestValidator_TotalAmountMismatch(t *testing.T) {
	rec := cleanRecord()
	rec.Goods[0].Quantity = 10
	rec.Goods[0].UnitPrice = 5
	rec.Goods[0].TotalPrice = 50
	rec.TotalAmountForeign = model.Float(100)

	report := NewValidator().Validate(context.Background(), rec)

	got := findingsFor(report.Errors, "totalAmountForeign")
	require.Len(t, got, 1)
	assert.True(t, got[0].AutoFix)
	assert.Equal(t, 50.0, got[0].FixValue)
	assert.Equal(t, CheckerDataLogic, got[0].Checker)
}

func TestValidator_GoodsCodePadding(t *testing.T) {
	rec := cleanRecord()
	rec.Goods[0].GoodsCode = "123456789"

	report := NewValidator().Validate(context.Background(), rec)

	got := findingsFor(report.Errors, "goods[0].goodsCode")
	require.Len(t, got, 1)
	assert.True(t, got[0].AutoFix)
	assert.Equal(t, "0000123456789", got[0].FixValue)
}

func TestValidator_Idempotent(t *testing.T) {
	rec := cleanRecord()
	rec.ExportPort = ""
	rec.Goods[0].GoodsCode = "84713"
	rec.Goods[0].TotalPrice = 499
	rec.SupervisionMode = "0110"

	v := NewValidator()
	first := v.Validate(context.Background(), rec)
	second := v.Validate(context.Background(), rec)

	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.OverallStatus, second.OverallStatus)
	assert.Equal(t, first.CustomsReady, second.CustomsReady)
}

func TestValidator_SequentialMatchesParallel(t *testing.T) {
	rec := cleanRecord()
	rec.Currency = "XYZ"
	rec.Goods = append(rec.Goods, model.GoodsLine{GoodsCode: "0401100000", GoodsName: "鲜牛奶", Quantity: 1, UnitPrice: 1, TotalPrice: 3})

	parallel := NewValidator(WithParallel(true)).Validate(context.Background(), rec)
	sequential := NewValidator(WithParallel(false)).Validate(context.Background(), rec)

	assert.Equal(t, sequential.Findings(), parallel.Findings())
	assert.Equal(t, sequential.PassedCount, parallel.PassedCount)
}

func TestValidator_PartitionKeepsEveryFinding(t *testing.T) {
	rec := cleanRecord()
	rec.ConsignorConsignee = ""
	rec.Currency = "XYZ"
	rec.SupervisionMode = "0110"
	rec.Goods[0].GoodsCode = "8501"
	rec.Goods[0].Quantity = 0

	rules := DefaultRuleSet()
	var expected int
	for _, c := range []Checker{NewFieldIntegrityChecker(rules), NewDataLogicChecker(rules), NewComplianceChecker(rules)} {
		expected += len(c.Check(&rec))
	}

	report := NewValidator(WithRules(rules)).Validate(context.Background(), rec)

	assert.Equal(t, expected, len(report.Errors)+len(report.Warnings)+len(report.Suggestions))
	for _, f := range report.Errors {
		assert.Equal(t, model.SeverityCritical, f.Severity)
	}
	for _, f := range report.Warnings {
		assert.Equal(t, model.SeverityWarning, f.Severity)
	}
	for _, f := range report.Suggestions {
		assert.Equal(t, model.SeveritySuggestion, f.Severity)
	}
}

func TestValidator_StatusDerivation(t *testing.T) {
	warn := model.Finding{Field: model.TopLevel("a"), Severity: model.SeverityWarning}
	crit := model.Finding{Field: model.TopLevel("b"), Severity: model.SeverityCritical}
	hint := model.Finding{Field: model.TopLevel("c"), Severity: model.SeveritySuggestion}

	tests := []struct {
		name     string
		findings []model.Finding
		status   model.OverallStatus
		ready    bool
	}{
		{"none", nil, model.StatusPass, true},
		{"suggestion only", []model.Finding{hint}, model.StatusPass, true},
		{"warning", []model.Finding{hint, warn}, model.StatusWarning, true},
		{"critical", []model.Finding{warn, crit}, model.StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(WithCheckers(staticChecker{name: "static", findings: tt.findings}))
			report := v.Validate(context.Background(), cleanRecord())

			assert.Equal(t, tt.status, report.OverallStatus)
			assert.Equal(t, tt.ready, report.CustomsReady)
			assert.Equal(t, len(report.Errors) == 0, report.CustomsReady)
		})
	}
}

func TestValidator_PresentationOrderFollowsCheckers(t *testing.T) {
	first := staticChecker{name: "first", findings: []model.Finding{{Field: model.TopLevel("one"), Severity: model.SeverityWarning}}}
	second := staticChecker{name: "second", findings: []model.Finding{{Field: model.TopLevel("two"), Severity: model.SeverityWarning}}}

	report := NewValidator(WithCheckers(first, second)).Validate(context.Background(), cleanRecord())

	require.Len(t, report.Warnings, 2)
	assert.Equal(t, "first", report.Warnings[0].Checker)
	assert.Equal(t, "second", report.Warnings[1].Checker)
}

func TestValidator_PassedCountMayGoNegative(t *testing.T) {
	var many []model.Finding
	for i := 0; i < 30; i++ {
		many = append(many, model.Finding{Field: model.TopLevel("x"), Severity: model.SeverityWarning})
	}
	report := NewValidator(WithCheckers(staticChecker{name: "noisy", findings: many})).
		Validate(context.Background(), model.DeclarationRecord{})

	assert.Equal(t, 15, report.TotalChecks)
	assert.Equal(t, -15, report.PassedCount)
}

func TestValidator_TotalChecks(t *testing.T) {
	rec := cleanRecord()
	rec.ExchangeRate = model.Float(7.1)
	rec.Goods = append(rec.Goods, rec.Goods[0])
	assert.Equal(t, 15+16+2+1, totalChecks(&rec))

	rec.NetWeight = nil
	assert.Equal(t, 15+16+1, totalChecks(&rec))
}

func TestValidator_CheckerPanicBecomesSystemFinding(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		v := NewValidator(WithParallel(parallel), WithCheckers(NewFieldIntegrityChecker(DefaultRuleSet()), panickingChecker{}))

		var report *model.ValidationReport
		require.NotPanics(t, func() {
			report = v.Validate(context.Background(), cleanRecord())
		})

		require.Len(t, report.Errors, 1)
		assert.Equal(t, SystemField, report.Errors[0].Field.String())
		assert.Equal(t, "校验系统发生错误", report.Errors[0].Message)
		assert.Equal(t, model.StatusError, report.OverallStatus)
		assert.False(t, report.CustomsReady)
		assert.Zero(t, report.PassedCount)
		assert.Zero(t, report.TotalChecks)
	}
}

func TestValidator_DoesNotMutateInput(t *testing.T) {
	rec := cleanRecord()
	rec.Goods[0].GoodsCode = "123"
	before := rec.Clone()

	NewValidator().Validate(context.Background(), rec)

	assert.Equal(t, before, rec)
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v := NewValidator()
	rec := cleanRecord()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := v.Validate(context.Background(), rec)
			assert.Equal(t, model.StatusPass, report.OverallStatus)
		}()
	}
	wg.Wait()
}

func TestNewValidator_SharedRuleSetLiteral(t *testing.T) {
	rules := &RuleSet{
		Currencies:      []string{"USD", "CNY"},
		USDCode:         "USD",
		TransportModes:  map[string]string{"2": "水路运输"},
		GoodsCodeLength: 13,
		MinDenominator:  0.01,
	}

	validators := make([]*Validator, 8)
	var wg sync.WaitGroup
	for i := range validators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			validators[i] = NewValidator(WithRules(rules))
		}()
	}
	wg.Wait()

	assert.Nil(t, rules.currencySet, "caller's rule set must stay untouched")
	for _, v := range validators {
		assert.True(t, v.Rules().IsKnownCurrency("CNY"))
		assert.NotSame(t, rules, v.Rules())
	}
}

func TestValidator_AutoFixClearsFinding(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.DeclarationRecord)
		field  string
	}{
		{
			name: "total amount",
			mutate: func(r *model.DeclarationRecord) {
				r.TotalAmountForeign = model.Float(100)
			},
			field: "totalAmountForeign",
		},
		{
			name: "line total",
			mutate: func(r *model.DeclarationRecord) {
				r.Goods[0].UnitPrice = 3.333
				r.Goods[0].Quantity = 3
				r.Goods[0].TotalPrice = 12
				r.TotalAmountForeign = model.Float(10)
			},
			field: "goods[0].totalPrice",
		},
		{
			name: "goods code padding",
			mutate: func(r *model.DeclarationRecord) {
				r.Goods[0].GoodsCode = "123456789"
			},
			field: "goods[0].goodsCode",
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := cleanRecord()
			tt.mutate(&rec)

			report := v.Validate(context.Background(), rec)
			got := findingsFor(report.Findings(), tt.field)
			require.Len(t, got, 1)

			fixed, err := ApplyAutoFix(rec, got[0])
			require.NoError(t, err)

			again := v.Validate(context.Background(), fixed)
			assert.Empty(t, findingsFor(again.Findings(), tt.field))
		})
	}
}
