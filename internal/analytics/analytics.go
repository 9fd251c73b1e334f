package analytics

import (
	"sort"

	"github.com/talgya/shopfloor/internal/shop"
)

// MaxLogEvents caps the rolling event log; the oldest entries fall off.
const MaxLogEvents = 400

// LogEntry is one line in the rolling event log.
type LogEntry struct {
	Day     int     `json:"day"`
	T       float64 `json:"t"`
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
}

// DailyMetrics accumulates one day's shop activity. All maps are keyed by
// product except StockoutsByShelf, which is keyed by shelf key.
type DailyMetrics struct {
	Visitors         int                  `json:"visitors"`
	Revenue          int                  `json:"revenue"`
	UnitsSold        map[shop.Product]int `json:"units_sold"`
	RevenueByProduct map[shop.Product]int `json:"revenue_by_product"`
	Restocked        map[shop.Product]int `json:"restocked"`
	OrdersPlaced     map[shop.Product]int `json:"orders_placed"`
	OrdersDelivered  map[shop.Product]int `json:"orders_delivered"`
	StockoutsByShelf map[string]int       `json:"stockouts_by_shelf"`
	PacksOpened      int                  `json:"packs_opened"`
	Sellbacks        int                  `json:"sellbacks"`
}

func NewDailyMetrics() *DailyMetrics {
	return &DailyMetrics{
		UnitsSold:        make(map[shop.Product]int),
		RevenueByProduct: make(map[shop.Product]int),
		Restocked:        make(map[shop.Product]int),
		OrdersPlaced:     make(map[shop.Product]int),
		OrdersDelivered:  make(map[shop.Product]int),
		StockoutsByShelf: make(map[string]int),
	}
}

func (m *DailyMetrics) normalize() {
	if m.UnitsSold == nil {
		m.UnitsSold = make(map[shop.Product]int)
	}
	if m.RevenueByProduct == nil {
		m.RevenueByProduct = make(map[shop.Product]int)
	}
	if m.Restocked == nil {
		m.Restocked = make(map[shop.Product]int)
	}
	if m.OrdersPlaced == nil {
		m.OrdersPlaced = make(map[shop.Product]int)
	}
	if m.OrdersDelivered == nil {
		m.OrdersDelivered = make(map[shop.Product]int)
	}
	if m.StockoutsByShelf == nil {
		m.StockoutsByShelf = make(map[string]int)
	}
}

// State is the rolling analytics store: per-day metrics plus the event log.
type State struct {
	Days     map[int]*DailyMetrics `json:"days"`
	EventLog []LogEntry            `json:"event_log"`
}

func NewState() *State {
	return &State{Days: make(map[int]*DailyMetrics)}
}

// Day returns (creating if needed) the metrics bucket for a day.
func (s *State) Day(day int) *DailyMetrics {
	if s.Days == nil {
		s.Days = make(map[int]*DailyMetrics)
	}
	m, ok := s.Days[day]
	if !ok {
		m = NewDailyMetrics()
		s.Days[day] = m
	}
	return m
}

// Log appends to the event log, dropping the oldest entry past the cap.
func (s *State) Log(day int, t float64, kind, message string) {
	s.EventLog = append(s.EventLog, LogEntry{Day: day, T: t, Kind: kind, Message: message})
	if len(s.EventLog) > MaxLogEvents {
		s.EventLog = s.EventLog[len(s.EventLog)-MaxLogEvents:]
	}
}

// RecordVisitor counts a customer entering the shop.
func (s *State) RecordVisitor(day int) {
	s.Day(day).Visitors++
}

// RecordSale books revenue for qty units and, when the sale emptied its
// shelf, a stockout against that shelf.
func (s *State) RecordSale(day int, p shop.Product, qty, revenue int, shelfKey string, becameEmpty bool) {
	if qty <= 0 {
		return
	}
	m := s.Day(day)
	m.Revenue += revenue
	m.UnitsSold[p] += qty
	m.RevenueByProduct[p] += revenue
	if becameEmpty && shelfKey != "" {
		m.StockoutsByShelf[shelfKey]++
	}
}

// RecordRestock counts units moved onto shelves.
func (s *State) RecordRestock(day int, p shop.Product, qty int) {
	if qty <= 0 {
		return
	}
	s.Day(day).Restocked[p] += qty
}

// RecordOrderPlaced counts units ordered from the supplier.
func (s *State) RecordOrderPlaced(day int, p shop.Product, qty int) {
	if qty <= 0 {
		return
	}
	s.Day(day).OrdersPlaced[p] += qty
}

// RecordOrderDelivered counts units arriving from the supplier.
func (s *State) RecordOrderDelivered(day int, p shop.Product, qty int) {
	if qty <= 0 {
		return
	}
	s.Day(day).OrdersDelivered[p] += qty
}

// RecordPackOpened counts boosters cracked.
func (s *State) RecordPackOpened(day, qty int) {
	if qty <= 0 {
		return
	}
	s.Day(day).PacksOpened += qty
}

// RecordSellback counts units liquidated back to the market.
func (s *State) RecordSellback(day, qty int) {
	if qty <= 0 {
		return
	}
	s.Day(day).Sellbacks += qty
}

// Normalize repairs a loaded state: nil maps, oversized logs.
func (s *State) Normalize() {
	if s.Days == nil {
		s.Days = make(map[int]*DailyMetrics)
	}
	for day, m := range s.Days {
		if m == nil {
			delete(s.Days, day)
			continue
		}
		m.normalize()
	}
	if len(s.EventLog) > MaxLogEvents {
		s.EventLog = s.EventLog[len(s.EventLog)-MaxLogEvents:]
	}
}

// ShelfStockouts is one shelf's aggregated stockout count.
type ShelfStockouts struct {
	ShelfKey string `json:"shelf_key"`
	Count    int    `json:"count"`
}

// TopStockoutShelves aggregates stockouts per shelf over the trailing
// windowDays ending at day and returns the most-hit shelves, capped at limit.
// Ties order by shelf key so output is stable.
func (s *State) TopStockoutShelves(day, windowDays, limit int) []ShelfStockouts {
	totals := make(map[string]int)
	for d := day - windowDays + 1; d <= day; d++ {
		m, ok := s.Days[d]
		if !ok {
			continue
		}
		for key, n := range m.StockoutsByShelf {
			totals[key] += n
		}
	}
	out := make([]ShelfStockouts, 0, len(totals))
	for key, n := range totals {
		out = append(out, ShelfStockouts{ShelfKey: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ShelfKey < out[j].ShelfKey
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
