package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// Field names used in finding paths.
const (
	fieldConsignorConsignee = "consignorConsignee"
	fieldExportPort         = "exportPort"
	fieldTransportMode      = "transportMode"
	fieldTransportName      = "transportName"
	fieldDeclareDate        = "declareDate"
	fieldCurrency           = "currency"
	fieldTotalAmountForeign = "totalAmountForeign"
	fieldGrossWeight        = "grossWeight"
	fieldExchangeRate       = "exchangeRate"

	fieldGoodsCode  = "goodsCode"
	fieldGoodsName  = "goodsName"
	fieldQuantity   = "quantity"
	fieldUnitPrice  = "unitPrice"
	fieldTotalPrice = "totalPrice"
)

// requiredField pairs a top-level field with its display label and presence test.
type requiredField struct {
	name    string
	label   string
	present func(*model.DeclarationRecord) bool
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

var requiredFields = []requiredField{
	{fieldConsignorConsignee, "收发货人", func(r *model.DeclarationRecord) bool { return hasText(r.ConsignorConsignee) }},
	{fieldExportPort, "出口口岸", func(r *model.DeclarationRecord) bool { return hasText(r.ExportPort) }},
	{fieldTransportMode, "运输方式", func(r *model.DeclarationRecord) bool { return hasText(r.TransportMode) }},
	{fieldDeclareDate, "申报日期", func(r *model.DeclarationRecord) bool { return hasText(r.DeclareDate) }},
	{fieldCurrency, "币制", func(r *model.DeclarationRecord) bool { return hasText(r.Currency) }},
	{fieldTotalAmountForeign, "外币总价", func(r *model.DeclarationRecord) bool { return r.TotalAmountForeign != nil }},
}

// FieldIntegrityChecker verifies that required fields are present and that
// codes are well formed, independent of other fields' values.
type FieldIntegrityChecker struct {
	rules *RuleSet
}

// NewFieldIntegrityChecker creates a FieldIntegrityChecker backed by rules.
func NewFieldIntegrityChecker(rules *RuleSet) *FieldIntegrityChecker {
	return &FieldIntegrityChecker{rules: rules}
}

func (c *FieldIntegrityChecker) Name() string {
	return CheckerFieldIntegrity
}

func (c *FieldIntegrityChecker) Check(rec *model.DeclarationRecord) []model.Finding {
	var findings []model.Finding

	for _, f := range requiredFields {
		if !f.present(rec) {
			findings = append(findings, critical(model.TopLevel(f.name), "required-field").
				Message(f.label+"为必填项").
				Suggest("请填写"+f.label).
				Build())
		}
	}

	for i, g := range rec.Goods {
		if finding, ok := c.checkGoodsCode(i, g.GoodsCode); ok {
			findings = append(findings, finding)
		}
	}

	for i, g := range rec.Goods {
		if !hasText(g.GoodsName) {
			findings = append(findings, critical(model.GoodsField(i, fieldGoodsName), "goods-name-missing").
				Message(fmt.Sprintf("第%d项商品名称规格不能为空", i+1)).
				Suggest("请填写商品名称及规格型号").
				Build())
		}
	}

	if hasText(rec.TransportMode) && !c.rules.IsKnownTransportMode(rec.TransportMode) {
		findings = append(findings, warning(model.TopLevel(fieldTransportMode), "transport-mode-unknown").
			Message(fmt.Sprintf("运输方式代码 %s 不在代码表中", rec.TransportMode)).
			Suggest("请按海关运输方式代码表选择运输方式").
			Build())
	}

	if hasText(rec.Currency) && !c.rules.IsKnownCurrency(rec.Currency) {
		findings = append(findings, warning(model.TopLevel(fieldCurrency), "currency-unknown").
			Message(fmt.Sprintf("币制 %s 不在常用币制列表中", rec.Currency)).
			Suggest("请确认币制代码是否正确").
			Build())
	}

	return findings
}

func (c *FieldIntegrityChecker) checkGoodsCode(index int, code string) (model.Finding, bool) {
	field := model.GoodsField(index, fieldGoodsCode)
	if code == "" {
		return critical(field, "goods-code-missing").
			Message(fmt.Sprintf("第%d项商品编号不能为空", index+1)).
			Suggest("请填写商品编号").
			Build(), true
	}

	want := c.rules.GoodsCodeLength
	if isDigits(code) && len(code) == want {
		return model.Finding{}, false
	}

	b := critical(field, "goods-code-format").
		Message(fmt.Sprintf("第%d项商品编号必须为%d位数字", index+1, want))
	if n := utf8.RuneCountInString(code); n < want {
		b.Suggest("商品编号位数不足，可在前面补零").
			Fix(strings.Repeat("0", want-n) + code)
	} else {
		b.Suggest("请核对商品编号，删除多余字符")
	}
	return b.Build(), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
