package pricing

import (
	"math"

	"github.com/talgya/shopfloor/internal/shop"
)

// Prices holds the player-set absolute retail price per product. Dollar
// amounts, floor 1.
type Prices struct {
	Booster         int `json:"booster"`
	Deck            int `json:"deck"`
	SingleCommon    int `json:"single_common"`
	SingleUncommon  int `json:"single_uncommon"`
	SingleRare      int `json:"single_rare"`
	SingleEpic      int `json:"single_epic"`
	SingleLegendary int `json:"single_legendary"`
}

func DefaultPrices() Prices {
	return Prices{
		Booster:         4,
		Deck:            18,
		SingleCommon:    1,
		SingleUncommon:  2,
		SingleRare:      6,
		SingleEpic:      12,
		SingleLegendary: 28,
	}
}

func (p *Prices) field(prod shop.Product) *int {
	switch prod {
	case shop.ProductBooster:
		return &p.Booster
	case shop.ProductDeck:
		return &p.Deck
	case shop.ProductSingleCommon:
		return &p.SingleCommon
	case shop.ProductSingleUncommon:
		return &p.SingleUncommon
	case shop.ProductSingleRare:
		return &p.SingleRare
	case shop.ProductSingleEpic:
		return &p.SingleEpic
	case shop.ProductSingleLegendary:
		return &p.SingleLegendary
	}
	return nil
}

// Get returns the absolute price for a sellable product.
func (p *Prices) Get(prod shop.Product) (int, bool) {
	f := p.field(prod)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// Set stores a price, flooring at 1 dollar. Unknown products are rejected.
func (p *Prices) Set(prod shop.Product, v int) bool {
	f := p.field(prod)
	if f == nil {
		return false
	}
	*f = max(1, v)
	return true
}

// Normalize floors every loaded price at 1, falling back to defaults for
// zeroed fields so an empty save section yields the stock price list.
func (p *Prices) Normalize() {
	def := DefaultPrices()
	for _, prod := range shop.Products {
		f := p.field(prod)
		if *f <= 0 {
			d, _ := def.Get(prod)
			*f = d
		}
	}
}

// Mode selects how retail prices are derived.
type Mode uint8

const (
	// ModeAbsolute sells at the stored Prices fields.
	ModeAbsolute Mode = iota
	// ModeMarkup derives retail from wholesale cost plus a per-product markup.
	ModeMarkup
)

func (m Mode) Key() string {
	if m == ModeMarkup {
		return "markup"
	}
	return "absolute"
}

// ParseMode maps a mode key back to its value.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "absolute":
		return ModeAbsolute, true
	case "markup":
		return ModeMarkup, true
	}
	return ModeAbsolute, false
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.Key()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	if string(b) == "markup" {
		*m = ModeMarkup
	} else {
		*m = ModeAbsolute
	}
	return nil
}

// Settings are the player-configurable retail pricing controls.
type Settings struct {
	Mode      Mode                     `json:"mode"`
	MarkupPct map[shop.Product]float64 `json:"markup_pct"`
}

func DefaultSettings() Settings {
	return Settings{Mode: ModeAbsolute, MarkupPct: make(map[shop.Product]float64)}
}

// ClampMarkupPct keeps markup in the 0%..200% range.
func ClampMarkupPct(pct float64) float64 {
	return math.Min(2.0, math.Max(0.0, pct))
}

func (s *Settings) GetMarkupPct(prod shop.Product) float64 {
	return ClampMarkupPct(s.MarkupPct[prod])
}

func (s *Settings) SetMarkupPct(prod shop.Product, pct float64) {
	if s.MarkupPct == nil {
		s.MarkupPct = make(map[shop.Product]float64)
	}
	s.MarkupPct[prod] = ClampMarkupPct(pct)
}

// Normalize repairs loaded settings.
func (s *Settings) Normalize() {
	if s.MarkupPct == nil {
		s.MarkupPct = make(map[shop.Product]float64)
	}
	for prod, pct := range s.MarkupPct {
		s.MarkupPct[prod] = ClampMarkupPct(pct)
	}
}

var wholesaleUnitCosts = map[shop.Product]int{
	shop.ProductBooster:         2,
	shop.ProductDeck:            11,
	shop.ProductSingleCommon:    1,
	shop.ProductSingleUncommon:  1,
	shop.ProductSingleRare:      4,
	shop.ProductSingleEpic:      7,
	shop.ProductSingleLegendary: 17,
}

var marketBuyPrices = map[shop.Rarity]int{
	shop.RarityCommon:    1,
	shop.RarityUncommon:  2,
	shop.RarityRare:      6,
	shop.RarityEpic:      12,
	shop.RarityLegendary: 28,
}

// WholesaleUnitCost is the supplier cost per unit. Retail pricing and markup
// never feed back into it.
func WholesaleUnitCost(prod shop.Product) (int, bool) {
	v, ok := wholesaleUnitCosts[prod]
	if !ok {
		return 0, false
	}
	return max(1, v), true
}

// WholesaleOrderTotal is the supplier cost for qty units; zero quantity costs
// nothing.
func WholesaleOrderTotal(prod shop.Product, qty int) (int, bool) {
	unit, ok := WholesaleUnitCost(prod)
	if !ok {
		return 0, false
	}
	if qty <= 0 {
		return 0, true
	}
	return max(1, unit*qty), true
}

// ComputeRetailPrice derives a retail price from wholesale cost plus markup.
func ComputeRetailPrice(wholesaleCost int, markupPct float64) int {
	base := max(1, wholesaleCost)
	pct := ClampMarkupPct(markupPct)
	return max(1, int(math.Round(float64(base)*(1.0+pct))))
}

// RetailBasePrice is the sticker price before skill modifiers.
func RetailBasePrice(prices *Prices, settings *Settings, prod shop.Product) (int, bool) {
	if settings.Mode == ModeAbsolute {
		return prices.Get(prod)
	}
	unit, ok := WholesaleUnitCost(prod)
	if !ok {
		return 0, false
	}
	return ComputeRetailPrice(unit, settings.GetMarkupPct(prod)), true
}

// ApplySellPricePct applies a sell-price modifier to a base price, floor 1.
func ApplySellPricePct(base int, pct float64) int {
	return max(1, int(math.Round(float64(base)*(1.0+pct))))
}

// EffectiveSalePrice is what a customer actually pays: retail base adjusted
// by the shopkeeper's sell-price modifier.
func EffectiveSalePrice(prices *Prices, settings *Settings, prod shop.Product, sellPricePct float64) (int, bool) {
	base, ok := RetailBasePrice(prices, settings, prod)
	if !ok {
		return 0, false
	}
	return ApplySellPricePct(base, sellPricePct), true
}

// MarketBuyPriceSingle is what the open market charges for a random single of
// a rarity, independent of the player's retail pricing.
func MarketBuyPriceSingle(r shop.Rarity) int {
	return max(1, marketBuyPrices[r])
}
