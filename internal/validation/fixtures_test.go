package validation

import (
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

// cleanRecord returns a declaration that passes every check.
func cleanRecord() model.DeclarationRecord {
	return model.DeclarationRecord{
		ConsignorConsignee: "宁波海通进出口有限公司",
		ExportPort:         "宁波港",
		DeclareDate:        "2024-05-20",
		TransportMode:      "1",
		Currency:           "USD",
		TotalAmountForeign: model.Float(500),
		GrossWeight:        model.Float(12),
		NetWeight:          model.Float(10),
		Goods: []model.GoodsLine{
			{
				ItemNo:     1,
				GoodsCode:  "9503000089001",
				GoodsName:  "塑料积木玩具 适用3岁以上",
				Quantity:   100,
				Unit:       "套",
				UnitPrice:  5,
				TotalPrice: 500,
			},
		},
	}
}

func findingsFor(findings []model.Finding, field string) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if f.Field.String() == field {
			out = append(out, f)
		}
	}
	return out
}
