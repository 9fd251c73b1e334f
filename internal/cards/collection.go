package cards

// Collection is the owned card pool, card id -> copy count.
type Collection struct {
	Cards map[string]int `json:"cards"`
}

func NewCollection() *Collection {
	return &Collection{Cards: make(map[string]int)}
}

func (c *Collection) Count(cardID string) int {
	return c.Cards[cardID]
}

// Add stores copies of a card. Unknown ids and non-positive amounts are
// rejected so malformed input can't invent cards.
func (c *Collection) Add(cardID string, amount int) bool {
	if amount <= 0 {
		return false
	}
	if _, ok := index[cardID]; !ok {
		return false
	}
	if c.Cards == nil {
		c.Cards = make(map[string]int)
	}
	c.Cards[cardID] += amount
	return true
}

// Remove takes copies out, failing without mutation when not enough are owned.
func (c *Collection) Remove(cardID string, amount int) bool {
	if amount <= 0 || c.Cards[cardID] < amount {
		return false
	}
	c.Cards[cardID] -= amount
	if c.Cards[cardID] <= 0 {
		delete(c.Cards, cardID)
	}
	return true
}

// Total counts every owned copy.
func (c *Collection) Total() int {
	total := 0
	for _, qty := range c.Cards {
		total += qty
	}
	return total
}

// Normalize repairs a loaded collection: unknown card ids and non-positive
// counts are dropped.
func (c *Collection) Normalize() {
	if c.Cards == nil {
		c.Cards = make(map[string]int)
		return
	}
	for id, qty := range c.Cards {
		if qty <= 0 {
			delete(c.Cards, id)
			continue
		}
		if _, ok := index[id]; !ok {
			delete(c.Cards, id)
		}
	}
}

// Deck is the active play deck: at most 2 copies per card, 20 cards total.
type Deck struct {
	Cards map[string]int `json:"cards"`
}

const (
	DeckSize       = 20
	MaxCopiesPerID = 2
)

func NewDeck() *Deck {
	return &Deck{Cards: make(map[string]int)}
}

func (d *Deck) Count(cardID string) int { return d.Cards[cardID] }

func (d *Deck) Total() int {
	total := 0
	for _, qty := range d.Cards {
		total += qty
	}
	return total
}

func (d *Deck) CanAdd(cardID string) bool {
	return d.Cards[cardID] < MaxCopiesPerID && d.Total() < DeckSize
}

func (d *Deck) Add(cardID string) bool {
	if !d.CanAdd(cardID) {
		return false
	}
	if d.Cards == nil {
		d.Cards = make(map[string]int)
	}
	d.Cards[cardID]++
	return true
}

func (d *Deck) Remove(cardID string) bool {
	if d.Cards[cardID] <= 0 {
		return false
	}
	d.Cards[cardID]--
	if d.Cards[cardID] <= 0 {
		delete(d.Cards, cardID)
	}
	return true
}

// Valid reports whether the deck is playable.
func (d *Deck) Valid() bool { return d.Total() == DeckSize }

// QuickFill rebuilds the deck greedily from the collection, catalog order,
// up to 2 copies each.
func (d *Deck) QuickFill(col *Collection) {
	d.Cards = make(map[string]int)
	for _, def := range pool {
		qty := col.Count(def.CardID)
		for i := 0; i < min(MaxCopiesPerID, qty); i++ {
			if d.Total() >= DeckSize {
				return
			}
			d.Add(def.CardID)
		}
	}
}

// Normalize clamps a loaded deck to the copy and size rules.
func (d *Deck) Normalize() {
	if d.Cards == nil {
		d.Cards = make(map[string]int)
		return
	}
	for id, qty := range d.Cards {
		if qty <= 0 {
			delete(d.Cards, id)
			continue
		}
		if _, ok := index[id]; !ok {
			delete(d.Cards, id)
			continue
		}
		if qty > MaxCopiesPerID {
			d.Cards[id] = MaxCopiesPerID
		}
	}
	// Trim overflow in catalog order so the result is deterministic.
	for _, def := range pool {
		if d.Total() <= DeckSize {
			break
		}
		for d.Cards[def.CardID] > 0 && d.Total() > DeckSize {
			d.Remove(def.CardID)
		}
	}
}
