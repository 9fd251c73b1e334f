package progression

import (
	"math"

	"github.com/talgya/shopfloor/internal/shop"
)

// Staff XP is a flat grind separate from the shopkeeper's skill tree: hired
// staff level every 100 XP, with rarer singles worth proportionally more.

const (
	staffXPPerSaleDollar  = 2.0
	staffXPPerRestockItem = 3.0
	staffXPPerPackOpened  = 12

	staffXPPerLevel = 100
)

var staffRarityMult = map[shop.Rarity]float64{
	shop.RarityCommon:    1.0,
	shop.RarityUncommon:  1.15,
	shop.RarityRare:      1.4,
	shop.RarityEpic:      1.8,
	shop.RarityLegendary: 2.4,
}

// StaffEvent names what a staff member just did.
type StaffEvent uint8

const (
	StaffEventSale StaffEvent = iota
	StaffEventRestock
	StaffEventPackOpen
)

func rarityMultFor(p shop.Product) float64 {
	if r, ok := p.SingleRarity(); ok {
		return staffRarityMult[r]
	}
	return 1.0
}

// ComputeStaffXP converts an event into XP. Amount means revenue dollars for
// sales, units for restocks, packs for pack opening. Sales and restocks
// always award at least 1 XP.
func ComputeStaffXP(event StaffEvent, amount int, product shop.Product) int {
	if amount <= 0 {
		return 0
	}
	mult := rarityMultFor(product)
	switch event {
	case StaffEventSale:
		return max(1, int(math.Round(float64(amount)*staffXPPerSaleDollar*mult)))
	case StaffEventRestock:
		return max(1, int(math.Round(float64(amount)*staffXPPerRestockItem*mult)))
	case StaffEventPackOpen:
		return amount * staffXPPerPackOpened
	}
	return 0
}

// StaffLevelFromXP maps total XP to a level, never below 1.
func StaffLevelFromXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return max(1, 1+xp/staffXPPerLevel)
}

// StaffAward reports one XP grant, including any level change it caused.
type StaffAward struct {
	GainedXP  int `json:"gained_xp"`
	PrevXP    int `json:"prev_xp"`
	NewXP     int `json:"new_xp"`
	PrevLevel int `json:"prev_level"`
	NewLevel  int `json:"new_level"`
}

// AwardStaffXP applies an event's XP to a running total and reports the
// before/after picture.
func AwardStaffXP(totalXP *int, event StaffEvent, amount int, product shop.Product) StaffAward {
	prev := *totalXP
	gained := ComputeStaffXP(event, amount, product)
	*totalXP = prev + gained
	return StaffAward{
		GainedXP:  gained,
		PrevXP:    prev,
		NewXP:     *totalXP,
		PrevLevel: StaffLevelFromXP(prev),
		NewLevel:  StaffLevelFromXP(*totalXP),
	}
}
