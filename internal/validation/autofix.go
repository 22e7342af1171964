package validation

import (
	"errors"
	"fmt"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
)

var (
	// ErrUnsupportedFixTarget is returned when a finding names a field that
	// cannot be overwritten automatically.
	ErrUnsupportedFixTarget = errors.New("unsupported auto-fix target")
	// ErrFixValueType is returned when the fix value does not suit the field.
	ErrFixValueType = errors.New("auto-fix value has the wrong type")
	// ErrGoodsIndexOutOfRange is returned when a goods line path points past the goods list.
	ErrGoodsIndexOutOfRange = errors.New("goods index out of range")
)

// ApplyAutoFix returns a copy of rec with the field named by f overwritten by
// f.FixValue. When f carries no fix, rec is returned unchanged. rec itself is
// never modified.
func ApplyAutoFix(rec model.DeclarationRecord, f model.Finding) (model.DeclarationRecord, error) {
	if !f.CanAutoFix() {
		return rec, nil
	}

	out := rec.Clone()
	var err error
	switch f.Field.Kind {
	case model.FieldTopLevel:
		err = setTopLevel(&out, f.Field.Name, f.FixValue)
	case model.FieldGoodsLine:
		if f.Field.Index < 0 || f.Field.Index >= len(out.Goods) {
			return rec, fmt.Errorf("%w: %s (have %d lines)", ErrGoodsIndexOutOfRange, f.Field, len(out.Goods))
		}
		err = setGoodsField(&out.Goods[f.Field.Index], f.Field.Name, f.FixValue)
	default:
		err = fmt.Errorf("%w: %s", model.ErrInvalidFieldPath, f.Field)
	}
	if err != nil {
		return rec, fmt.Errorf("failed to apply fix to %s: %w", f.Field, err)
	}
	return out, nil
}

// ApplyAllAutoFixes applies every fixable finding in order and returns the
// corrected record along with the number of fixes applied.
func ApplyAllAutoFixes(rec model.DeclarationRecord, findings []model.Finding) (model.DeclarationRecord, int, error) {
	applied := 0
	for _, f := range findings {
		if !f.CanAutoFix() {
			continue
		}
		next, err := ApplyAutoFix(rec, f)
		if err != nil {
			return rec, applied, err
		}
		rec = next
		applied++
	}
	return rec, applied, nil
}

func setTopLevel(rec *model.DeclarationRecord, name string, value any) error {
	if p := topLevelNumber(rec, name); p != nil {
		n, err := asNumber(value)
		if err != nil {
			return err
		}
		*p = &n
		return nil
	}
	if p := topLevelText(rec, name); p != nil {
		s, err := asText(value)
		if err != nil {
			return err
		}
		*p = s
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFixTarget, name)
}

func topLevelNumber(rec *model.DeclarationRecord, name string) **float64 {
	switch name {
	case fieldTotalAmountForeign:
		return &rec.TotalAmountForeign
	case "totalAmountLocal":
		return &rec.TotalAmountLocal
	case fieldExchangeRate:
		return &rec.ExchangeRate
	case "freight":
		return &rec.Freight
	case "insurance":
		return &rec.Insurance
	case "otherCharges":
		return &rec.OtherCharges
	case fieldGrossWeight:
		return &rec.GrossWeight
	case "netWeight":
		return &rec.NetWeight
	}
	return nil
}

func topLevelText(rec *model.DeclarationRecord, name string) *string {
	switch name {
	case fieldConsignorConsignee:
		return &rec.ConsignorConsignee
	case fieldExportPort:
		return &rec.ExportPort
	case fieldDeclareDate:
		return &rec.DeclareDate
	case fieldTransportMode:
		return &rec.TransportMode
	case fieldTransportName:
		return &rec.TransportName
	case fieldCurrency:
		return &rec.Currency
	case "supervisionMode":
		return &rec.SupervisionMode
	case "billNo":
		return &rec.BillNo
	}
	return nil
}

func setGoodsField(g *model.GoodsLine, name string, value any) error {
	var num *float64
	var text *string
	switch name {
	case fieldGoodsCode:
		text = &g.GoodsCode
	case fieldGoodsName:
		text = &g.GoodsName
	case fieldQuantity:
		num = &g.Quantity
	case fieldUnitPrice:
		num = &g.UnitPrice
	case fieldTotalPrice:
		num = &g.TotalPrice
	default:
		return fmt.Errorf("%w: goods field %q", ErrUnsupportedFixTarget, name)
	}

	if num != nil {
		n, err := asNumber(value)
		if err != nil {
			return err
		}
		*num = n
		return nil
	}
	s, err := asText(value)
	if err != nil {
		return err
	}
	*text = s
	return nil
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: want number, got %T", ErrFixValueType, v)
}

func asText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: want string, got %T", ErrFixValueType, v)
}
