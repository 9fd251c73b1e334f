package shop

import "github.com/google/uuid"

// Inventory is the back-room stock: sealed product plus anonymous singles
// bucketed by rarity. All mutations are guarded; counts never go negative.
type Inventory struct {
	BoosterPacks int            `json:"booster_packs"`
	Decks        int            `json:"decks"`
	Singles      map[Rarity]int `json:"singles"`
}

func NewInventory() *Inventory {
	return &Inventory{Singles: make(map[Rarity]int)}
}

// Count returns how many units of p are on hand. ProductNone counts zero.
func (inv *Inventory) Count(p Product) int {
	switch {
	case p == ProductBooster:
		return inv.BoosterPacks
	case p == ProductDeck:
		return inv.Decks
	case p.IsSingle():
		r, _ := p.SingleRarity()
		return inv.Singles[r]
	default:
		return 0
	}
}

// Add stores n units of p. Rejects n <= 0 and unknown products.
func (inv *Inventory) Add(p Product, n int) bool {
	if n <= 0 {
		return false
	}
	switch {
	case p == ProductBooster:
		inv.BoosterPacks += n
	case p == ProductDeck:
		inv.Decks += n
	case p.IsSingle():
		if inv.Singles == nil {
			inv.Singles = make(map[Rarity]int)
		}
		r, _ := p.SingleRarity()
		inv.Singles[r] += n
	default:
		return false
	}
	return true
}

// Remove takes n units of p out, reporting false (and leaving the inventory
// untouched) when fewer than n are on hand.
func (inv *Inventory) Remove(p Product, n int) bool {
	if n <= 0 || inv.Count(p) < n {
		return false
	}
	switch {
	case p == ProductBooster:
		inv.BoosterPacks -= n
	case p == ProductDeck:
		inv.Decks -= n
	case p.IsSingle():
		r, _ := p.SingleRarity()
		inv.Singles[r] -= n
	}
	return true
}

// TotalSingles sums anonymous singles across all rarities.
func (inv *Inventory) TotalSingles() int {
	total := 0
	for _, r := range Rarities {
		total += inv.Singles[r]
	}
	return total
}

// Normalize repairs a freshly loaded inventory: missing map, negative counts.
func (inv *Inventory) Normalize() {
	if inv.Singles == nil {
		inv.Singles = make(map[Rarity]int)
	}
	if inv.BoosterPacks < 0 {
		inv.BoosterPacks = 0
	}
	if inv.Decks < 0 {
		inv.Decks = 0
	}
	for r, n := range inv.Singles {
		if n < 0 {
			inv.Singles[r] = 0
		}
	}
}

// Order is a wholesale purchase in flight. It is delivered exactly once,
// when simulation time reaches DeliverAt.
type Order struct {
	ID        string         `json:"id"`
	Boosters  int            `json:"boosters"`
	Decks     int            `json:"decks"`
	Singles   map[Rarity]int `json:"singles"`
	Cost      int            `json:"cost"`
	DayPlaced int            `json:"day_placed"`
	DeliverAt float64        `json:"deliver_at"`
}

func NewOrder(boosters, decks int, singles map[Rarity]int, cost, dayPlaced int, deliverAt float64) *Order {
	cp := make(map[Rarity]int, len(singles))
	for r, n := range singles {
		if n > 0 {
			cp[r] = n
		}
	}
	return &Order{
		ID:        uuid.NewString(),
		Boosters:  max(0, boosters),
		Decks:     max(0, decks),
		Singles:   cp,
		Cost:      cost,
		DayPlaced: dayPlaced,
		DeliverAt: deliverAt,
	}
}

// Units is the total unit count across all product lines.
func (o *Order) Units() int {
	total := o.Boosters + o.Decks
	for _, n := range o.Singles {
		total += n
	}
	return total
}

// Apply moves the order's contents into the inventory.
func (o *Order) Apply(inv *Inventory) {
	if o.Boosters > 0 {
		inv.Add(ProductBooster, o.Boosters)
	}
	if o.Decks > 0 {
		inv.Add(ProductDeck, o.Decks)
	}
	for _, r := range Rarities {
		if n := o.Singles[r]; n > 0 {
			inv.Add(SingleOf(r), n)
		}
	}
}
