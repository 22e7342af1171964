package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ErrInvalidRuleSet is returned when rule tables fail validation.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// Band is an inclusive numeric plausibility range.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies within the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Category groups classification-code prefixes that require specific
// wording in the goods name/specification text.
type Category struct {
	Name       string   `yaml:"name"`
	Prefixes   []string `yaml:"prefixes"`
	Keywords   []string `yaml:"keywords"`
	Message    string   `yaml:"message"`
	Suggestion string   `yaml:"suggestion"`
}

// Matches reports whether the classification code falls into the category.
func (c Category) Matches(goodsCode string) bool {
	for _, p := range c.Prefixes {
		if p != "" && strings.HasPrefix(goodsCode, p) {
			return true
		}
	}
	return false
}

// Mentions reports whether text contains any of the category keywords.
// Matching is a case-insensitive substring search.
func (c Category) Mentions(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range c.Keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// RuleSet holds the code tables and thresholds the checkers consult.
// A RuleSet is read-only once handed to a Validator.
type RuleSet struct {
	Currencies           []string          `yaml:"currencies"`
	USDCode              string            `yaml:"usdCode"`
	TransportModes       map[string]string `yaml:"transportModes"`
	GoodsCodeLength      int               `yaml:"goodsCodeLength"`
	TotalAmountTolerance float64           `yaml:"totalAmountTolerance"`
	LineTotalTolerance   float64           `yaml:"lineTotalTolerance"`
	MinDenominator       float64           `yaml:"minDenominator"`
	MaxPackagingRatio    float64           `yaml:"maxPackagingRatio"`
	ExchangeRate         Band              `yaml:"exchangeRate"`
	GeneralTradeCode     string            `yaml:"generalTradeCode"`
	LowValueThreshold    float64           `yaml:"lowValueThreshold"`
	Categories           []Category        `yaml:"categories"`

	currencySet map[string]struct{}
}

// DefaultRuleSet returns the built-in rule tables.
func DefaultRuleSet() *RuleSet {
	rs, err := decodeRuleSet(defaultRulesYAML, &RuleSet{})
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml is broken: %v", err))
	}
	return rs
}

// ParseRuleSet decodes YAML rule tables on top of the defaults. Keys absent
// from data keep their built-in values. A key that is present replaces the
// whole default table, so a transportModes or currencies override narrows the
// allowed codes as well as adding to them. Band fields overlay one by one.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	return decodeRuleSet(data, DefaultRuleSet())
}

// LoadRuleSet reads rule tables from a YAML file. An empty path yields the defaults.
func LoadRuleSet(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return rs, nil
}

func decodeRuleSet(data []byte, base *RuleSet) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		// yaml.v3 merges into a non-nil map but replaces slices
		if hasKey(root, "transportModes") {
			base.TransportModes = nil
		}
		if err := root.Decode(base); err != nil {
			return nil, fmt.Errorf("failed to parse rules: %w", err)
		}
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	base.index()
	return base, nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Validate checks that the tables are usable.
func (rs *RuleSet) Validate() error {
	switch {
	case len(rs.Currencies) == 0:
		return fmt.Errorf("%w: currency allow-list is empty", ErrInvalidRuleSet)
	case len(rs.TransportModes) == 0:
		return fmt.Errorf("%w: transport mode table is empty", ErrInvalidRuleSet)
	case rs.GoodsCodeLength <= 0:
		return fmt.Errorf("%w: goods code length must be positive", ErrInvalidRuleSet)
	case rs.MinDenominator <= 0:
		return fmt.Errorf("%w: minimum denominator must be positive", ErrInvalidRuleSet)
	case rs.TotalAmountTolerance < 0 || rs.LineTotalTolerance < 0:
		return fmt.Errorf("%w: tolerances must not be negative", ErrInvalidRuleSet)
	case rs.ExchangeRate.Min > rs.ExchangeRate.Max:
		return fmt.Errorf("%w: exchange rate band is inverted", ErrInvalidRuleSet)
	}
	for _, c := range rs.Categories {
		if c.Name == "" || len(c.Prefixes) == 0 {
			return fmt.Errorf("%w: category needs a name and at least one prefix", ErrInvalidRuleSet)
		}
	}
	return nil
}

func (rs *RuleSet) index() {
	rs.currencySet = make(map[string]struct{}, len(rs.Currencies))
	for _, c := range rs.Currencies {
		rs.currencySet[c] = struct{}{}
	}
}

// IsKnownCurrency reports whether code is in the currency allow-list.
func (rs *RuleSet) IsKnownCurrency(code string) bool {
	if rs.currencySet == nil {
		return slices.Contains(rs.Currencies, code)
	}
	_, ok := rs.currencySet[code]
	return ok
}

// IsKnownTransportMode reports whether code is in the transport mode table.
func (rs *RuleSet) IsKnownTransportMode(code string) bool {
	_, ok := rs.TransportModes[code]
	return ok
}

// Marshal renders the rule tables as YAML.
func (rs *RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(rs)
}
