package cards

import (
	"math/rand"

	"github.com/talgya/shopfloor/internal/shop"
)

// PackSize is how many cards a booster yields: 3 commons, 1 uncommon and one
// rare-slot card.
const PackSize = 5

var rareSlotRoll = []struct {
	rarity shop.Rarity
	chance float64
}{
	{shop.RarityRare, 0.80},
	{shop.RarityEpic, 0.18},
	{shop.RarityLegendary, 0.02},
}

// OpenBooster draws a pack's worth of card ids from the catalog.
func OpenBooster(rng *rand.Rand) []string {
	commons := ByRarity(shop.RarityCommon)
	uncommons := ByRarity(shop.RarityUncommon)

	out := make([]string, 0, PackSize)
	for i := 0; i < 3; i++ {
		out = append(out, commons[rng.Intn(len(commons))].CardID)
	}
	out = append(out, uncommons[rng.Intn(len(uncommons))].CardID)

	roll := rng.Float64()
	cumulative := 0.0
	chosen := shop.RarityRare
	for _, slot := range rareSlotRoll {
		cumulative += slot.chance
		if roll <= cumulative {
			chosen = slot.rarity
			break
		}
	}
	candidates := ByRarity(chosen)
	out = append(out, candidates[rng.Intn(len(candidates))].CardID)
	return out
}
