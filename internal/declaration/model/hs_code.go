package model

// CatalogueCodeLength is the number of leading goods-code digits that identify
// a catalogue entry. The remaining digits of a 13-digit goods code are national
// supplementary codes.
const CatalogueCodeLength = 10

// HSCode represents a customs commodity classification code offered to trainees.
type HSCode struct {
	BaseModel
	HSCode      string `gorm:"type:varchar(50);column:hs_code;not null;unique" json:"hsCode"` // HS Code
	Description string `gorm:"type:text;column:description" json:"description"`               // Description of the HS Code
	Category    string `gorm:"type:text;column:category" json:"category"`                     // Category of the HS Code
	Unit        string `gorm:"type:varchar(20);column:unit" json:"unit,omitempty"`            // Statutory unit of measure
}

func (h *HSCode) TableName() string {
	return "hs_codes"
}

// CatalogueCode returns the catalogue part of a goods code. Codes no longer
// than CatalogueCodeLength are returned unchanged.
func CatalogueCode(goodsCode string) string {
	if len(goodsCode) <= CatalogueCodeLength {
		return goodsCode
	}
	return goodsCode[:CatalogueCodeLength]
}

// HSCodeFilter will be used when querying as batch
type HSCodeFilter struct {
	HSCodeStartsWith *string `json:"hsCodeStartsWith,omitempty"`
	Offset           *int    `json:"offset,omitempty"`
	Limit            *int    `json:"limit,omitempty"`
}

// HSCodeListResult represents the result of querying HS codes with pagination
type HSCodeListResult struct {
	TotalCount int64    `json:"totalCount"`
	HSCodes    []HSCode `json:"hsCodes"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}
