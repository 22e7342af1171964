package model

// DeclarationRecord is one export customs declaration as entered by a trainee.
// Optional values are pointers so that "not entered" stays distinguishable from zero.
type DeclarationRecord struct {
	// Administrative identifiers
	PreEntryNo string `json:"preEntryNo,omitempty"` // 预录入编号
	CustomsNo  string `json:"customsNo,omitempty"`  // 海关编号
	FilingNo   string `json:"filingNo,omitempty"`   // 备案号
	LicenseNo  string `json:"licenseNo,omitempty"`  // 许可证号

	// Parties and trade terms
	ConsignorConsignee string `json:"consignorConsignee"`
	DeclarationUnit    string `json:"declarationUnit,omitempty"`
	ExportPort         string `json:"exportPort"`
	DeclareDate        string `json:"declareDate"` // YYYY-MM-DD as entered
	TransportMode      string `json:"transportMode"`
	TransportName      string `json:"transportName,omitempty"`
	BillNo             string `json:"billNo,omitempty"`
	SupervisionMode    string `json:"supervisionMode,omitempty"`
	ExemptionNature    string `json:"exemptionNature,omitempty"`
	TradeCountry       string `json:"tradeCountry,omitempty"`
	ArrivalCountry     string `json:"arrivalCountry,omitempty"`
	OriginCountry      string `json:"originCountry,omitempty"`

	// Financial
	Currency           string   `json:"currency"`
	ExchangeRate       *float64 `json:"exchangeRate,omitempty"`
	TotalAmountForeign *float64 `json:"totalAmountForeign,omitempty"`
	TotalAmountLocal   *float64 `json:"totalAmountLocal,omitempty"`
	Freight            *float64 `json:"freight,omitempty"`
	Insurance          *float64 `json:"insurance,omitempty"`
	OtherCharges       *float64 `json:"otherCharges,omitempty"`

	// Physical
	PackageCount *int     `json:"packageCount,omitempty"`
	PackageType  string   `json:"packageType,omitempty"`
	GrossWeight  *float64 `json:"grossWeight,omitempty"`
	NetWeight    *float64 `json:"netWeight,omitempty"`

	Goods []GoodsLine `json:"goods"`

	// Declaration flags
	InspectionQuarantine *bool `json:"inspectionQuarantine,omitempty"`
	PriceInfluence       *bool `json:"priceInfluence,omitempty"`
	PaymentSettlement    *bool `json:"paymentSettlement,omitempty"`
}

// GoodsLine is a single commodity line of a declaration.
type GoodsLine struct {
	ItemNo             int     `json:"itemNo"`
	GoodsCode          string  `json:"goodsCode"` // 13-digit customs commodity code
	GoodsName          string  `json:"goodsName"` // name and specification text
	Quantity           float64 `json:"quantity"`
	Unit               string  `json:"unit,omitempty"`
	UnitPrice          float64 `json:"unitPrice"`
	TotalPrice         float64 `json:"totalPrice"`
	Currency           string  `json:"currency,omitempty"`
	OriginCountry      string  `json:"originCountry,omitempty"`
	DestinationCountry string  `json:"destinationCountry,omitempty"`
}

// Clone returns a copy of r with its own goods slice. Pointer fields are
// shared; callers replace them rather than writing through them.
func (r DeclarationRecord) Clone() DeclarationRecord {
	out := r
	if r.Goods != nil {
		out.Goods = make([]GoodsLine, len(r.Goods))
		copy(out.Goods, r.Goods)
	}
	return out
}

// Float returns a pointer to v. Handy when building records in code.
func Float(v float64) *float64 {
	return &v
}
