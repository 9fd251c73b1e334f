// Package api serves the shop over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/shopfloor/internal/analytics"
	"github.com/talgya/shopfloor/internal/engine"
	"github.com/talgya/shopfloor/internal/grid"
	"github.com/talgya/shopfloor/internal/persistence"
	"github.com/talgya/shopfloor/internal/pricing"
	"github.com/talgya/shopfloor/internal/shop"
)

// Server serves the shop state over HTTP. Every handler funnels through the
// loop's command queue, so no handler touches simulation state from its own
// goroutine.
type Server struct {
	Loop     *engine.Loop
	DB       *persistence.DB
	Hub      *Hub
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Wholesale orders and pack opens are the spammable money movers.
	orderLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/shop", s.handleShop)
	mux.HandleFunc("/api/v1/staff", s.handleStaff)
	mux.HandleFunc("/api/v1/customers", s.handleCustomers)
	mux.HandleFunc("/api/v1/cards", s.handleCards)
	mux.HandleFunc("/api/v1/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/v1/suggestions", s.handleSuggestions)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/skills", s.handleSkills)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/prices", s.adminOnly(s.handlePrices))
	mux.HandleFunc("/api/v1/order", s.adminOnly(RateLimitMiddleware(orderLimiter, s.handleOrder)))
	mux.HandleFunc("/api/v1/pack/open", s.adminOnly(RateLimitMiddleware(orderLimiter, s.handleOpenPack)))
	mux.HandleFunc("/api/v1/fixtures/buy", s.adminOnly(s.handleBuyFixture))
	mux.HandleFunc("/api/v1/fixtures/place", s.adminOnly(s.handlePlaceFixture))
	mux.HandleFunc("/api/v1/fixtures/remove", s.adminOnly(s.handleRemoveFixture))
	mux.HandleFunc("/api/v1/restock", s.adminOnly(s.handleRestock))
	mux.HandleFunc("/api/v1/shelf/list", s.adminOnly(s.handleListCard))
	mux.HandleFunc("/api/v1/sellback", s.adminOnly(s.handleSellback))
	mux.HandleFunc("/api/v1/skills/rankup", s.adminOnly(s.handleRankUp))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	// Websocket render stream.
	if s.Hub != nil {
		mux.HandleFunc("/ws", s.Hub.HandleWS)
	}

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(s.Addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require POST with bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no SHOPFLOOR_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()
		status = map[string]any{
			"name":         "Shopfloor",
			"money":        st.Money,
			"day":          st.Day,
			"phase":        st.Phase.Key(),
			"phase_timer":  st.PhaseTimer,
			"time_seconds": st.TimeSeconds,
			"paused":       st.Paused,
			"level":        st.Prog.Level,
			"xp":           st.Prog.XP,
			"skill_points": st.Prog.SkillPoints,
			"staff_level":  st.Staff.Level(),
			"customers":    len(st.Customers),
			"last_summary": st.LastSummary,
		}
	})
	writeJSON(w, status)
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	type shelfEntry struct {
		Tile    string   `json:"tile"`
		Product string   `json:"product"`
		Qty     int      `json:"qty"`
		MaxQty  int      `json:"max_qty"`
		Cards   []string `json:"cards,omitempty"`
	}
	var result map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()

		shelves := make([]shelfEntry, 0)
		for _, t := range st.Layout.ShelfTiles() {
			stock, ok := st.Layout.ShelfAt(t)
			if !ok {
				continue
			}
			shelves = append(shelves, shelfEntry{
				Tile:    t.Key(),
				Product: stock.Product.Key(),
				Qty:     stock.Qty,
				MaxQty:  stock.MaxQty,
				Cards:   stock.Cards,
			})
		}

		effective := make(map[string]int, len(shop.Products))
		for _, p := range shop.Products {
			if p == shop.ProductNone {
				continue
			}
			if price, ok := sim.EffectivePrice(p); ok {
				effective[p.Key()] = price
			}
		}

		result = map[string]any{
			"layout":           st.Layout,
			"shelves":          shelves,
			"inventory":        st.Inventory,
			"fixtures":         st.Fixtures,
			"prices":           st.Prices,
			"pricing":          st.Pricing,
			"effective_prices": effective,
			"pending_orders":   st.PendingOrders,
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	var result map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()
		result = map[string]any{
			"pos":   st.Staff.Pos,
			"state": st.Staff.State.Key(),
			"path":  st.Staff.Path,
			"plan":  st.Staff.Plan,
			"carry": st.Staff.Carry,
			"xp":    st.Staff.XP,
			"level": st.Staff.Level(),
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	type customerEntry struct {
		ID    string    `json:"id"`
		Pos   grid.Vec2 `json:"pos"`
		State string    `json:"state"`
	}
	var result []customerEntry
	s.Loop.Do(func(sim *engine.Simulation) {
		result = make([]customerEntry, 0, len(sim.State().Customers))
		for _, c := range sim.State().Customers {
			result = append(result, customerEntry{ID: c.ID, Pos: c.Pos, State: c.State.Key()})
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var result map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()
		result = map[string]any{
			"collection": st.Collection,
			"deck":       st.Deck,
			"deck_valid": st.Deck.Valid(),
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var result map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()
		result = map[string]any{
			"today":        st.Analytics.Day(st.Day),
			"last_summary": st.LastSummary,
			"stockouts":    st.Analytics.TopStockoutShelves(st.Day, analytics.ForecastWindowDays, 5),
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var result []analytics.Suggestion
	s.Loop.Do(func(sim *engine.Simulation) {
		result = sim.RestockSuggestions()
	})
	if result == nil {
		result = []analytics.Suggestion{}
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= analytics.MaxLogEvents {
			limit = n
		}
	}
	var events []analytics.LogEntry
	s.Loop.Do(func(sim *engine.Simulation) {
		log := sim.State().Analytics.EventLog
		start := 0
		if len(log) > limit {
			start = len(log) - limit
		}
		events = append(events, log[start:]...)
	})
	writeJSON(w, events)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	type nodeEntry struct {
		SkillID  string `json:"skill_id"`
		Name     string `json:"name"`
		Desc     string `json:"desc"`
		MaxRank  int    `json:"max_rank"`
		LevelReq int    `json:"level_req"`
		Rank     int    `json:"rank"`
		CanRank  bool   `json:"can_rank_up"`
		Reason   string `json:"reason,omitempty"`
	}
	var result map[string]any
	s.Loop.Do(func(sim *engine.Simulation) {
		st := sim.State()
		nodes := make([]nodeEntry, 0, sim.Tree().Len())
		for _, n := range sim.Tree().Nodes() {
			ok, reason := st.Skills.CanRankUp(sim.Tree(), n.SkillID, st.Prog)
			entry := nodeEntry{
				SkillID:  n.SkillID,
				Name:     n.Name,
				Desc:     n.Desc,
				MaxRank:  n.MaxRank,
				LevelReq: n.LevelReq,
				Rank:     st.Skills.Rank(n.SkillID),
				CanRank:  ok,
			}
			if !ok {
				entry.Reason = reason
			}
			nodes = append(nodes, entry)
		}
		result = map[string]any{
			"skill_points": st.Prog.SkillPoints,
			"modifiers":    sim.Modifiers(),
			"nodes":        nodes,
		}
	})
	writeJSON(w, result)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.Loop.Do(func(sim *engine.Simulation) {
		sim.SetPaused(req.Paused)
	})
	writeJSON(w, map[string]bool{"paused": req.Paused})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Speed < 0 || req.Speed > 4 {
		http.Error(w, "speed must be 0-4", http.StatusBadRequest)
		return
	}
	s.Loop.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": req.Speed})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode    string             `json:"mode,omitempty"`
		Product string             `json:"product,omitempty"`
		Price   *int               `json:"price,omitempty"`
		Markups map[string]float64 `json:"markups,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var rejected string
	s.Loop.Do(func(sim *engine.Simulation) {
		if req.Mode != "" {
			mode, ok := pricing.ParseMode(req.Mode)
			if !ok {
				rejected = "unknown pricing mode"
				return
			}
			sim.SetPricingMode(mode)
		}
		if req.Product != "" && req.Price != nil {
			p, ok := shop.ParseProduct(req.Product)
			if !ok {
				rejected = "unknown product"
				return
			}
			if !sim.SetPrice(p, *req.Price) {
				rejected = "price rejected"
				return
			}
		}
		for key, pct := range req.Markups {
			p, ok := shop.ParseProduct(key)
			if !ok {
				rejected = "unknown product in markups"
				return
			}
			sim.SetMarkupPct(p, pct)
		}
	})
	if rejected != "" {
		http.Error(w, rejected, http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Boosters int            `json:"boosters"`
		Decks    int            `json:"decks"`
		Singles  map[string]int `json:"singles"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	singles := make(map[shop.Rarity]int, len(req.Singles))
	for key, qty := range req.Singles {
		rar, ok := shop.ParseRarity(key)
		if !ok {
			http.Error(w, "unknown rarity", http.StatusBadRequest)
			return
		}
		singles[rar] = qty
	}

	var order *shop.Order
	var ok bool
	s.Loop.Do(func(sim *engine.Simulation) {
		order, ok = sim.PlaceOrder(req.Boosters, req.Decks, singles)
	})
	if !ok {
		http.Error(w, "order rejected", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleOpenPack(w http.ResponseWriter, r *http.Request) {
	var pulls []string
	var ok bool
	s.Loop.Do(func(sim *engine.Simulation) {
		pulls, ok = sim.OpenPack()
	})
	if !ok {
		http.Error(w, "no sealed packs", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{"cards": pulls})
}

func (s *Server) handleBuyFixture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	kind, ok := shop.ParseObjectKind(req.Kind)
	if !ok {
		http.Error(w, "unknown fixture kind", http.StatusBadRequest)
		return
	}
	var bought bool
	s.Loop.Do(func(sim *engine.Simulation) {
		bought = sim.TryBuyFixture(kind)
	})
	if !bought {
		http.Error(w, "not enough money", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handlePlaceFixture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		Tile string `json:"tile"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	kind, ok := shop.ParseObjectKind(req.Kind)
	if !ok {
		http.Error(w, "unknown fixture kind", http.StatusBadRequest)
		return
	}
	tile, ok := grid.ParseKey(req.Tile)
	if !ok {
		http.Error(w, "bad tile", http.StatusBadRequest)
		return
	}
	var placed bool
	s.Loop.Do(func(sim *engine.Simulation) {
		placed = sim.TryPlaceObject(kind, tile)
	})
	if !placed {
		http.Error(w, "placement rejected", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleRemoveFixture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tile string `json:"tile"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	tile, ok := grid.ParseKey(req.Tile)
	if !ok {
		http.Error(w, "bad tile", http.StatusBadRequest)
		return
	}
	var removed bool
	s.Loop.Do(func(sim *engine.Simulation) {
		removed = sim.RemoveObject(tile)
	})
	if !removed {
		http.Error(w, "nothing to remove", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tile    string `json:"tile"`
		Product string `json:"product"`
		Amount  int    `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	tile, ok := grid.ParseKey(req.Tile)
	if !ok {
		http.Error(w, "bad tile", http.StatusBadRequest)
		return
	}
	p, ok := shop.ParseProduct(req.Product)
	if !ok {
		http.Error(w, "unknown product", http.StatusBadRequest)
		return
	}
	var moved int
	s.Loop.Do(func(sim *engine.Simulation) {
		moved = sim.RestockShelf(tile, p, req.Amount)
	})
	writeJSON(w, map[string]int{"moved": moved})
}

func (s *Server) handleListCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tile   string `json:"tile"`
		CardID string `json:"card_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	tile, ok := grid.ParseKey(req.Tile)
	if !ok {
		http.Error(w, "bad tile", http.StatusBadRequest)
		return
	}
	var listed bool
	s.Loop.Do(func(sim *engine.Simulation) {
		listed = sim.ListCardOnShelf(tile, req.CardID)
	})
	if !listed {
		http.Error(w, "listing rejected", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleSellback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rarity string `json:"rarity,omitempty"`
		CardID string `json:"card_id,omitempty"`
		Qty    int    `json:"qty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var payout int
	var ok bool
	s.Loop.Do(func(sim *engine.Simulation) {
		if req.CardID != "" {
			payout, ok = sim.SellBackCard(req.CardID, req.Qty)
			return
		}
		rar, parsed := shop.ParseRarity(req.Rarity)
		if !parsed {
			return
		}
		payout, ok = sim.SellBackSingles(rar, req.Qty)
	})
	if !ok {
		http.Error(w, "sellback rejected", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]int{"payout": payout})
}

func (s *Server) handleRankUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkillID string `json:"skill_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var ok bool
	var reason string
	s.Loop.Do(func(sim *engine.Simulation) {
		ok, reason = sim.RankUpSkill(req.SkillID)
	})
	if !ok {
		writeJSON(w, map[string]any{"ok": false, "reason": reason})
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	var err error
	s.Loop.Do(func(sim *engine.Simulation) {
		err = s.DB.SaveState(persistence.DefaultSlot, sim.State())
	})
	if err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"saved": true})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
