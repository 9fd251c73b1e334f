package shop

// Rarity grades single cards. The order is ascending scarcity and is relied
// on for deterministic iteration.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

// Rarities lists every rarity in canonical order.
var Rarities = [5]Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

var rarityKeys = [5]string{"common", "uncommon", "rare", "epic", "legendary"}

func (r Rarity) Key() string {
	if int(r) < len(rarityKeys) {
		return rarityKeys[r]
	}
	return "common"
}

func ParseRarity(s string) (Rarity, bool) {
	for i, k := range rarityKeys {
		if k == s {
			return Rarity(i), true
		}
	}
	return RarityCommon, false
}

// MarshalText lets Rarity serve as a JSON map key in saves and API payloads.
func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.Key()), nil }

func (r *Rarity) UnmarshalText(b []byte) error {
	if parsed, ok := ParseRarity(string(b)); ok {
		*r = parsed
	} else {
		*r = RarityCommon
	}
	return nil
}

// Product enumerates everything a shelf can hold. Unknown strings at the
// I/O boundary parse to (ProductNone, false) instead of flowing through as
// a silently accepted catch-all.
type Product uint8

const (
	ProductNone Product = iota
	ProductBooster
	ProductDeck
	ProductSingleCommon
	ProductSingleUncommon
	ProductSingleRare
	ProductSingleEpic
	ProductSingleLegendary
)

// Products lists every sellable product in canonical order.
var Products = [7]Product{
	ProductBooster, ProductDeck,
	ProductSingleCommon, ProductSingleUncommon, ProductSingleRare,
	ProductSingleEpic, ProductSingleLegendary,
}

var productKeys = map[Product]string{
	ProductNone:            "empty",
	ProductBooster:         "booster",
	ProductDeck:            "deck",
	ProductSingleCommon:    "single_common",
	ProductSingleUncommon:  "single_uncommon",
	ProductSingleRare:      "single_rare",
	ProductSingleEpic:      "single_epic",
	ProductSingleLegendary: "single_legendary",
}

func (p Product) Key() string {
	if k, ok := productKeys[p]; ok {
		return k
	}
	return "empty"
}

func ParseProduct(s string) (Product, bool) {
	for p, k := range productKeys {
		if k == s {
			return p, true
		}
	}
	return ProductNone, false
}

func (p Product) MarshalText() ([]byte, error) { return []byte(p.Key()), nil }

func (p *Product) UnmarshalText(b []byte) error {
	if parsed, ok := ParseProduct(string(b)); ok {
		*p = parsed
	} else {
		*p = ProductNone
	}
	return nil
}

// IsSingle reports whether p is a single card product.
func (p Product) IsSingle() bool {
	return p >= ProductSingleCommon && p <= ProductSingleLegendary
}

// SingleRarity returns the rarity of a single card product.
func (p Product) SingleRarity() (Rarity, bool) {
	if !p.IsSingle() {
		return RarityCommon, false
	}
	return Rarity(p - ProductSingleCommon), true
}

// SingleOf maps a rarity to its shelf product.
func SingleOf(r Rarity) Product {
	return ProductSingleCommon + Product(r)
}
