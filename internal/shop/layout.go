package shop

import (
	"encoding/json"
	"math/rand"

	"github.com/talgya/shopfloor/internal/grid"
)

const (
	GridWidth  = 20
	GridHeight = 12

	DefaultShelfCapacity = 10
)

// ObjectKind tags the placeable fixtures on the floor.
type ObjectKind uint8

const (
	KindShelf ObjectKind = iota
	KindCounter
	KindPoster
)

var objectKindKeys = [3]string{"shelf", "counter", "poster"}

func (k ObjectKind) Key() string {
	if int(k) < len(objectKindKeys) {
		return objectKindKeys[k]
	}
	return "shelf"
}

func ParseObjectKind(s string) (ObjectKind, bool) {
	for i, key := range objectKindKeys {
		if key == s {
			return ObjectKind(i), true
		}
	}
	return KindShelf, false
}

func (k ObjectKind) MarshalText() ([]byte, error) { return []byte(k.Key()), nil }

func (k *ObjectKind) UnmarshalText(b []byte) error {
	if parsed, ok := ParseObjectKind(string(b)); ok {
		*k = parsed
	} else {
		*k = KindShelf
	}
	return nil
}

// Object is a placed fixture occupying one tile. Every object blocks walking.
type Object struct {
	Kind ObjectKind `json:"kind"`
	Tile grid.Tile  `json:"tile"`
}

// ShelfStock is the sellable contents of one shelf. A shelf runs in one of
// two modes: bulk (anonymous units of Product) or listed (Cards names each
// physical copy; Qty always equals len(Cards)). Product survives the shelf
// running empty so restocking knows what to refill.
type ShelfStock struct {
	Product Product  `json:"product"`
	Qty     int      `json:"qty"`
	MaxQty  int      `json:"max_qty"`
	Cards   []string `json:"cards,omitempty"`
}

func (s *ShelfStock) Listed() bool { return len(s.Cards) > 0 }

// SaleResult reports one unit leaving a shelf.
type SaleResult struct {
	Product     Product
	CardID      string
	BecameEmpty bool
}

// Layout owns the floor: grid bounds, placed objects in placement order, and
// the shelf ledger. Placement order doubles as the deterministic tie-break
// order for restock planning.
type Layout struct {
	W       int
	H       int
	Objects []Object

	shelves map[grid.Tile]*ShelfStock
}

// NewLayout builds the default floor: a counter and a poster, no shelves yet.
func NewLayout() *Layout {
	l := &Layout{W: GridWidth, H: GridHeight, shelves: make(map[grid.Tile]*ShelfStock)}
	l.Place(KindCounter, grid.Tile{X: 10, Y: 7})
	l.Place(KindPoster, grid.Tile{X: 2, Y: 1})
	return l
}

// Place puts a fixture on a tile. Out-of-bounds or occupied tiles make it a
// no-op returning false. Placing a shelf registers an empty stock entry.
func (l *Layout) Place(kind ObjectKind, t grid.Tile) bool {
	if t.X < 0 || t.Y < 0 || t.X >= l.W || t.Y >= l.H {
		return false
	}
	if _, occupied := l.ObjectAt(t); occupied {
		return false
	}
	l.Objects = append(l.Objects, Object{Kind: kind, Tile: t})
	if kind == KindShelf {
		l.shelves[t] = &ShelfStock{Product: ProductNone, MaxQty: DefaultShelfCapacity}
	}
	return true
}

// RemoveAt takes the fixture off a tile, discarding any shelf stock with it.
func (l *Layout) RemoveAt(t grid.Tile) bool {
	for i, obj := range l.Objects {
		if obj.Tile == t {
			l.Objects = append(l.Objects[:i], l.Objects[i+1:]...)
			delete(l.shelves, t)
			return true
		}
	}
	return false
}

func (l *Layout) ObjectAt(t grid.Tile) (Object, bool) {
	for _, obj := range l.Objects {
		if obj.Tile == t {
			return obj, true
		}
	}
	return Object{}, false
}

func (l *Layout) ShelfAt(t grid.Tile) (*ShelfStock, bool) {
	s, ok := l.shelves[t]
	return s, ok
}

// ShelfTiles returns shelf positions in placement order.
func (l *Layout) ShelfTiles() []grid.Tile {
	var tiles []grid.Tile
	for _, obj := range l.Objects {
		if obj.Kind == KindShelf {
			tiles = append(tiles, obj.Tile)
		}
	}
	return tiles
}

// CounterTile returns the first counter on the floor.
func (l *Layout) CounterTile() (grid.Tile, bool) {
	for _, obj := range l.Objects {
		if obj.Kind == KindCounter {
			return obj.Tile, true
		}
	}
	return grid.Tile{}, false
}

// Walkable reports whether agents can stand on t. Every placed object blocks.
func (l *Layout) Walkable(t grid.Tile) bool {
	if t.X < 0 || t.Y < 0 || t.X >= l.W || t.Y >= l.H {
		return false
	}
	_, occupied := l.ObjectAt(t)
	return !occupied
}

// StockBulk moves up to amount anonymous units of p onto the shelf at t and
// returns how many it accepted; the caller deducts exactly that many from the
// source. Rejected outright (count 0) when the shelf is listed-card mode or
// already holds a different product.
func (l *Layout) StockBulk(t grid.Tile, p Product, amount int) int {
	s, ok := l.shelves[t]
	if !ok || amount <= 0 || p == ProductNone {
		return 0
	}
	if s.Listed() {
		return 0
	}
	if s.Product != ProductNone && s.Qty > 0 && s.Product != p {
		return 0
	}
	space := s.MaxQty - s.Qty
	if space <= 0 {
		return 0
	}
	moved := min(amount, space)
	s.Product = p
	s.Qty += moved
	return moved
}

// StockCard appends one named copy to a listed-card shelf and keeps Qty in
// lockstep with the card list. The shelf must be empty or already listing
// singles of the same rarity.
func (l *Layout) StockCard(t grid.Tile, cardID string, r Rarity) bool {
	s, ok := l.shelves[t]
	if !ok || cardID == "" {
		return false
	}
	want := SingleOf(r)
	if s.Qty > 0 && (s.Product != want || !s.Listed()) {
		return false
	}
	if s.Qty >= s.MaxQty {
		return false
	}
	s.Product = want
	s.Cards = append(s.Cards, cardID)
	s.Qty = len(s.Cards)
	return true
}

// Sell removes one unit from the shelf at t. Listed shelves give up a
// uniformly random copy. Empty or unknown shelves report ok=false.
func (l *Layout) Sell(t grid.Tile, rng *rand.Rand) (SaleResult, bool) {
	s, ok := l.shelves[t]
	if !ok || s.Qty <= 0 || s.Product == ProductNone {
		return SaleResult{}, false
	}
	res := SaleResult{Product: s.Product}
	if s.Listed() {
		i := rng.Intn(len(s.Cards))
		res.CardID = s.Cards[i]
		s.Cards = append(s.Cards[:i], s.Cards[i+1:]...)
		s.Qty = len(s.Cards)
	} else {
		s.Qty--
	}
	res.BecameEmpty = s.Qty == 0
	return res, true
}

// StockedProducts returns the distinct products currently purchasable,
// in shelf placement order.
func (l *Layout) StockedProducts() []Product {
	seen := make(map[Product]bool)
	var out []Product
	for _, t := range l.ShelfTiles() {
		s := l.shelves[t]
		if s.Qty > 0 && s.Product != ProductNone && !seen[s.Product] {
			seen[s.Product] = true
			out = append(out, s.Product)
		}
	}
	return out
}

// StockedShelfTiles returns shelves holding at least one unit, in placement
// order.
func (l *Layout) StockedShelfTiles() []grid.Tile {
	var out []grid.Tile
	for _, t := range l.ShelfTiles() {
		if s := l.shelves[t]; s.Qty > 0 && s.Product != ProductNone {
			out = append(out, t)
		}
	}
	return out
}

type layoutJSON struct {
	W       int                    `json:"w"`
	H       int                    `json:"h"`
	Objects []Object               `json:"objects"`
	Shelves map[string]*ShelfStock `json:"shelves"`
}

func (l *Layout) MarshalJSON() ([]byte, error) {
	out := layoutJSON{W: l.W, H: l.H, Objects: l.Objects, Shelves: make(map[string]*ShelfStock, len(l.shelves))}
	for t, s := range l.shelves {
		out.Shelves[t.Key()] = s
	}
	return json.Marshal(out)
}

func (l *Layout) UnmarshalJSON(b []byte) error {
	var in layoutJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	l.W, l.H = in.W, in.H
	if l.W <= 0 || l.H <= 0 {
		l.W, l.H = GridWidth, GridHeight
	}
	l.Objects = in.Objects
	l.shelves = make(map[grid.Tile]*ShelfStock)
	for key, s := range in.Shelves {
		t, ok := grid.ParseKey(key)
		if !ok || s == nil {
			continue
		}
		l.shelves[t] = s
	}
	l.Normalize()
	return nil
}

// Normalize repairs a loaded layout: shelf objects get stock entries, stock
// entries without a shelf object are dropped, quantities are clamped and
// listed shelves resync Qty to their card list.
func (l *Layout) Normalize() {
	if l.shelves == nil {
		l.shelves = make(map[grid.Tile]*ShelfStock)
	}
	shelfObjs := make(map[grid.Tile]bool)
	for _, obj := range l.Objects {
		if obj.Kind == KindShelf {
			shelfObjs[obj.Tile] = true
			if _, ok := l.shelves[obj.Tile]; !ok {
				l.shelves[obj.Tile] = &ShelfStock{Product: ProductNone, MaxQty: DefaultShelfCapacity}
			}
		}
	}
	for t, s := range l.shelves {
		if !shelfObjs[t] {
			delete(l.shelves, t)
			continue
		}
		if s.MaxQty <= 0 {
			s.MaxQty = DefaultShelfCapacity
		}
		if s.Listed() {
			s.Qty = len(s.Cards)
		}
		if s.Qty < 0 {
			s.Qty = 0
		}
		if s.Qty > s.MaxQty {
			if s.Listed() {
				s.Cards = s.Cards[:s.MaxQty]
			}
			s.Qty = s.MaxQty
		}
		if s.Qty == 0 {
			s.Cards = nil
		}
	}
}
