package cards

import (
	"fmt"
	"sort"

	"github.com/talgya/shopfloor/internal/shop"
)

// Def is one card in the static catalog.
type Def struct {
	CardID string      `json:"card_id"`
	Name   string      `json:"name"`
	Rarity shop.Rarity `json:"rarity"`
	Cost   int         `json:"cost"`
	Attack int         `json:"attack"`
	Health int         `json:"health"`
}

var (
	pool  []Def
	index map[string]Def
)

func init() {
	add := func(prefix, name string, rarity shop.Rarity, count, cost, atk, hp int, altAtk bool) {
		for i := 1; i <= count; i++ {
			a := atk
			if altAtk {
				a = atk + i%2
			}
			pool = append(pool, Def{
				CardID: fmt.Sprintf("%s%d", prefix, i),
				Name:   fmt.Sprintf("%s %d", name, i),
				Rarity: rarity,
				Cost:   cost,
				Attack: a,
				Health: hp,
			})
		}
	}
	add("c", "Sproutling", shop.RarityCommon, 12, 1, 1, 2, true)
	add("u", "River Guard", shop.RarityUncommon, 8, 2, 2, 3, true)
	add("r", "Skyblade", shop.RarityRare, 5, 3, 3, 4, true)
	add("e", "Voidcaller", shop.RarityEpic, 3, 4, 4, 5, true)
	add("l", "Ancient Wyrm", shop.RarityLegendary, 2, 5, 6, 6, false)

	index = make(map[string]Def, len(pool))
	for _, c := range pool {
		index[c.CardID] = c
	}
}

// All returns the full catalog in catalog order.
func All() []Def {
	out := make([]Def, len(pool))
	copy(out, pool)
	return out
}

// Get looks a card up by id.
func Get(cardID string) (Def, bool) {
	c, ok := index[cardID]
	return c, ok
}

// RarityOf is a convenience for the common "what bucket is this card" question.
func RarityOf(cardID string) (shop.Rarity, bool) {
	c, ok := index[cardID]
	return c.Rarity, ok
}

// ByRarity returns catalog entries of one rarity, in catalog order.
func ByRarity(r shop.Rarity) []Def {
	var out []Def
	for _, c := range pool {
		if c.Rarity == r {
			out = append(out, c)
		}
	}
	return out
}

// SortedByName orders defs by display name, the order management UIs use.
func SortedByName(defs []Def) []Def {
	out := make([]Def, len(defs))
	copy(out, defs)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
