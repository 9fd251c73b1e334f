package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/shopfloor/internal/shop"
)

// Restock forecasting: trailing sales averages turned into reorder
// suggestions. Advisory only, nothing here places orders.

const (
	ForecastWindowDays    = 3
	DefaultLeadTimeS      = 30.0
	DefaultMaxSuggestions = 4
)

// Suggestion is one advisory reorder line.
type Suggestion struct {
	Product           shop.Product `json:"product"`
	RecommendedQty    int          `json:"recommended_qty"`
	AvgDailyUnits     float64      `json:"avg_daily_units"`
	CurrentTotalStock int          `json:"current_total_stock"`
	LeadTimeS         float64      `json:"lead_time_s"`
	Reason            string       `json:"reason"`
}

// SalesAvgDailyUnits averages units sold per day over the trailing window
// ending at day, counting only days that have metrics.
func (s *State) SalesAvgDailyUnits(day int, p shop.Product, windowDays int) float64 {
	d := max(1, day)
	n := max(1, windowDays)
	total, counted := 0, 0
	for dd := d; dd > d-n && dd > 0; dd-- {
		m, ok := s.Days[dd]
		if !ok {
			continue
		}
		total += m.UnitsSold[p]
		counted++
	}
	if counted == 0 {
		return 0.0
	}
	return float64(total) / float64(counted)
}

// CurrentStockForProduct totals back-room inventory plus shelf stock for one
// product. Listed-card shelves count as singles of their rarity.
func CurrentStockForProduct(p shop.Product, inv *shop.Inventory, layout *shop.Layout) int {
	total := inv.Count(p)
	for _, t := range layout.ShelfTiles() {
		stock, ok := layout.ShelfAt(t)
		if !ok || stock.Qty <= 0 {
			continue
		}
		if stock.Listed() {
			if p.IsSingle() && stock.Product == p {
				total += len(stock.Cards)
			}
			continue
		}
		if stock.Product == p {
			total += stock.Qty
		}
	}
	return total
}

// ComputeRestockSuggestions converts trailing demand into reorder advice:
// lead-time demand plus a small safety buffer, less what is already on hand.
// Results sort by urgency and are capped at maxSuggestions.
func (s *State) ComputeRestockSuggestions(day int, inv *shop.Inventory, layout *shop.Layout, daySeconds, leadTimeS float64, maxSuggestions int) []Suggestion {
	lead := math.Max(1.0, leadTimeS)
	dayLen := math.Max(1.0, daySeconds)

	var out []Suggestion
	for _, p := range shop.Products {
		avgDaily := s.SalesAvgDailyUnits(day, p, ForecastWindowDays)
		if avgDaily <= 0.0 {
			continue
		}
		demand := (avgDaily / dayLen) * lead
		safety := math.Max(1.0, avgDaily*0.10)
		want := demand + safety
		current := CurrentStockForProduct(p, inv, layout)
		rec := int(math.Ceil(want - float64(current)))
		if rec <= 0 {
			continue
		}
		out = append(out, Suggestion{
			Product:           p,
			RecommendedQty:    rec,
			AvgDailyUnits:     avgDaily,
			CurrentTotalStock: current,
			LeadTimeS:         lead,
			Reason:            fmt.Sprintf("avg %.2f/day, lead %ds", avgDaily, int(lead)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecommendedQty != out[j].RecommendedQty {
			return out[i].RecommendedQty > out[j].RecommendedQty
		}
		return out[i].AvgDailyUnits > out[j].AvgDailyUnits
	})
	if maxSuggestions < 1 {
		maxSuggestions = 1
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
