package validation

import (
	"fmt"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// ComplianceChecker applies category-specific declaration conventions keyed off
// the classification code prefix, plus a few cross-field policy checks.
// None of its findings carry an auto-fix: free text cannot be synthesised.
type ComplianceChecker struct {
	rules *RuleSet
}

// NewComplianceChecker creates a ComplianceChecker backed by rules.
func NewComplianceChecker(rules *RuleSet) *ComplianceChecker {
	return &ComplianceChecker{rules: rules}
}

func (c *ComplianceChecker) Name() string {
	return CheckerCompliance
}

func (c *ComplianceChecker) Check(rec *model.DeclarationRecord) []model.Finding {
	var findings []model.Finding

	for i, g := range rec.Goods {
		for _, cat := range c.rules.Categories {
			if !cat.Matches(g.GoodsCode) || cat.Mentions(g.GoodsName) {
				continue
			}
			findings = append(findings, warning(model.GoodsField(i, fieldGoodsName), "category-"+cat.Name).
				Message(fmt.Sprintf("第%d项：%s", i+1, cat.Message)).
				Suggest(cat.Suggestion).
				Build())
		}
	}

	generalTrade := hasText(rec.SupervisionMode) && rec.SupervisionMode == c.rules.GeneralTradeCode
	if generalTrade && rec.TotalAmountForeign != nil && *rec.TotalAmountForeign < c.rules.LowValueThreshold {
		findings = append(findings, suggestion(model.TopLevel(fieldTotalAmountForeign), "low-value-general-trade").
			Message(fmt.Sprintf("一般贸易方式下申报总价低于%g", c.rules.LowValueThreshold)).
			Suggest("低值货物可考虑采用跨境电商或其他监管方式申报").
			Build())
	}

	if hasText(rec.BillNo) && !hasText(rec.TransportName) {
		findings = append(findings, warning(model.TopLevel(fieldTransportName), "transport-name-missing").
			Message("已填写提运单号但缺少运输工具名称").
			Suggest("请补充运输工具名称及航次号").
			Build())
	}

	return findings
}
