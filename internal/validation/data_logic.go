package validation

import (
	"fmt"
	"math"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// DataLogicChecker verifies cross-field arithmetic and physical consistency.
// Monetary comparisons use relative tolerances because client-entered totals
// routinely carry rounding; denominators are floored at RuleSet.MinDenominator.
type DataLogicChecker struct {
	rules *RuleSet
}

// NewDataLogicChecker creates a DataLogicChecker backed by rules.
func NewDataLogicChecker(rules *RuleSet) *DataLogicChecker {
	return &DataLogicChecker{rules: rules}
}

func (c *DataLogicChecker) Name() string {
	return CheckerDataLogic
}

func (c *DataLogicChecker) Check(rec *model.DeclarationRecord) []model.Finding {
	var findings []model.Finding

	findings = c.checkWeights(rec, findings)
	findings = c.checkTotalAmount(rec, findings)
	for i, g := range rec.Goods {
		findings = c.checkGoodsLine(i, g, findings)
	}
	findings = c.checkExchangeRate(rec, findings)

	return findings
}

func (c *DataLogicChecker) checkWeights(rec *model.DeclarationRecord, findings []model.Finding) []model.Finding {
	if rec.GrossWeight == nil || rec.NetWeight == nil {
		return findings
	}
	gross, net := *rec.GrossWeight, *rec.NetWeight

	if gross < net {
		return append(findings, critical(model.TopLevel(fieldGrossWeight), "weight-inverted").
			Message(fmt.Sprintf("毛重(%g)不能小于净重(%g)", gross, net)).
			Suggest("请核对毛重与净重，毛重应包含包装重量").
			Build())
	}

	ratio := (gross - net) / math.Max(net, c.rules.MinDenominator)
	if ratio > c.rules.MaxPackagingRatio {
		findings = append(findings, warning(model.TopLevel(fieldGrossWeight), "packaging-ratio").
			Message(fmt.Sprintf("包装重量占净重比例为%.0f%%，明显偏高", ratio*100)).
			Suggest("请确认毛重是否填写正确").
			Build())
	}
	return findings
}

func (c *DataLogicChecker) checkTotalAmount(rec *model.DeclarationRecord, findings []model.Finding) []model.Finding {
	// A missing total is reported by the field integrity stage.
	if rec.TotalAmountForeign == nil {
		return findings
	}

	var calculated float64
	for _, g := range rec.Goods {
		calculated += g.Quantity * g.UnitPrice
	}

	declared := *rec.TotalAmountForeign
	if relativeError(declared, calculated, c.rules.MinDenominator) > c.rules.TotalAmountTolerance {
		fixed := round2(calculated)
		findings = append(findings, critical(model.TopLevel(fieldTotalAmountForeign), "total-amount-mismatch").
			Message(fmt.Sprintf("外币总价(%.2f)与商品明细合计(%.2f)不符", declared, fixed)).
			Suggest(fmt.Sprintf("建议将外币总价修改为%.2f", fixed)).
			Fix(fixed).
			Build())
	}
	return findings
}

func (c *DataLogicChecker) checkGoodsLine(index int, g model.GoodsLine, findings []model.Finding) []model.Finding {
	if g.UnitPrice <= 0 {
		findings = append(findings, critical(model.GoodsField(index, fieldUnitPrice), "unit-price-nonpositive").
			Message(fmt.Sprintf("第%d项商品单价必须大于0", index+1)).
			Suggest("请填写正确的单价").
			Build())
	}
	if g.Quantity <= 0 {
		findings = append(findings, critical(model.GoodsField(index, fieldQuantity), "quantity-nonpositive").
			Message(fmt.Sprintf("第%d项商品数量必须大于0", index+1)).
			Suggest("请填写正确的数量").
			Build())
	}

	itemTotal := g.Quantity * g.UnitPrice
	if relativeError(g.TotalPrice, itemTotal, c.rules.MinDenominator) > c.rules.LineTotalTolerance {
		fixed := round2(itemTotal)
		findings = append(findings, warning(model.GoodsField(index, fieldTotalPrice), "line-total-mismatch").
			Message(fmt.Sprintf("第%d项商品总价(%.2f)与数量×单价(%.2f)不符", index+1, g.TotalPrice, fixed)).
			Suggest(fmt.Sprintf("建议将总价修改为%.2f", fixed)).
			Fix(fixed).
			Build())
	}
	return findings
}

func (c *DataLogicChecker) checkExchangeRate(rec *model.DeclarationRecord, findings []model.Finding) []model.Finding {
	if rec.ExchangeRate == nil || rec.Currency != c.rules.USDCode {
		return findings
	}
	rate := *rec.ExchangeRate
	if !c.rules.ExchangeRate.Contains(rate) {
		findings = append(findings, warning(model.TopLevel(fieldExchangeRate), "exchange-rate-band").
			Message(fmt.Sprintf("美元汇率%g超出合理区间[%g, %g]", rate, c.rules.ExchangeRate.Min, c.rules.ExchangeRate.Max)).
			Suggest("请核对申报当日的外汇折算率").
			Build())
	}
	return findings
}
