// Package persistence provides SQLite-based save storage for the shop.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/shopfloor/internal/cards"
	"github.com/talgya/shopfloor/internal/engine"
	"github.com/talgya/shopfloor/internal/progression"
	"github.com/talgya/shopfloor/internal/shop"
)

// DefaultSlot is the save slot the game uses unless told otherwise.
const DefaultSlot = "default"

// DB wraps a SQLite connection for save-game persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		slot TEXT PRIMARY KEY,
		money INTEGER NOT NULL,
		day INTEGER NOT NULL,
		time_seconds REAL NOT NULL,
		phase_timer REAL NOT NULL,
		paused INTEGER NOT NULL,
		staff_xp INTEGER NOT NULL,
		prices_json TEXT NOT NULL,
		pricing_json TEXT NOT NULL,
		inventory_json TEXT NOT NULL,
		fixtures_json TEXT NOT NULL,
		layout_json TEXT NOT NULL,
		collection_json TEXT NOT NULL,
		deck_json TEXT NOT NULL,
		orders_json TEXT NOT NULL,
		progression_json TEXT NOT NULL,
		skills_json TEXT NOT NULL,
		analytics_json TEXT NOT NULL,
		summary_json TEXT
	);

	CREATE TABLE IF NOT EXISTS shop_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// saveRow is the flat SQL shape of a slot. Aggregates go through JSON
// columns so one corrupt section degrades on load instead of killing it.
type saveRow struct {
	Slot        string  `db:"slot"`
	Money       int     `db:"money"`
	Day         int     `db:"day"`
	TimeSeconds float64 `db:"time_seconds"`
	PhaseTimer  float64 `db:"phase_timer"`
	Paused      int     `db:"paused"`
	StaffXP     int     `db:"staff_xp"`

	PricesJSON      string         `db:"prices_json"`
	PricingJSON     string         `db:"pricing_json"`
	InventoryJSON   string         `db:"inventory_json"`
	FixturesJSON    string         `db:"fixtures_json"`
	LayoutJSON      string         `db:"layout_json"`
	CollectionJSON  string         `db:"collection_json"`
	DeckJSON        string         `db:"deck_json"`
	OrdersJSON      string         `db:"orders_json"`
	ProgressionJSON string         `db:"progression_json"`
	SkillsJSON      string         `db:"skills_json"`
	AnalyticsJSON   string         `db:"analytics_json"`
	SummaryJSON     sql.NullString `db:"summary_json"`
}

func marshalField(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// SaveState writes the full shop state into a slot (full replace).
func (db *DB) SaveState(slot string, st *engine.State) error {
	paused := 0
	if st.Paused {
		paused = 1
	}
	row := saveRow{
		Slot:        slot,
		Money:       st.Money,
		Day:         st.Day,
		TimeSeconds: st.TimeSeconds,
		PhaseTimer:  st.PhaseTimer,
		Paused:      paused,
		StaffXP:     st.Staff.XP,

		PricesJSON:      marshalField(st.Prices),
		PricingJSON:     marshalField(st.Pricing),
		InventoryJSON:   marshalField(st.Inventory),
		FixturesJSON:    marshalField(st.Fixtures),
		LayoutJSON:      marshalField(st.Layout),
		CollectionJSON:  marshalField(st.Collection),
		DeckJSON:        marshalField(st.Deck),
		OrdersJSON:      marshalField(st.PendingOrders),
		ProgressionJSON: marshalField(st.Prog),
		SkillsJSON:      marshalField(st.Skills),
		AnalyticsJSON:   marshalField(st.Analytics),
	}
	if st.LastSummary != nil {
		row.SummaryJSON = sql.NullString{String: marshalField(st.LastSummary), Valid: true}
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM saves WHERE slot = ?", slot); err != nil {
		return err
	}
	if _, err := tx.NamedExec(`INSERT INTO saves
		(slot, money, day, time_seconds, phase_timer, paused, staff_xp,
		 prices_json, pricing_json, inventory_json, fixtures_json, layout_json,
		 collection_json, deck_json, orders_json, progression_json, skills_json,
		 analytics_json, summary_json)
		VALUES (:slot, :money, :day, :time_seconds, :phase_timer, :paused, :staff_xp,
		 :prices_json, :pricing_json, :inventory_json, :fixtures_json, :layout_json,
		 :collection_json, :deck_json, :orders_json, :progression_json, :skills_json,
		 :analytics_json, :summary_json)`, row); err != nil {
		return fmt.Errorf("insert save %q: %w", slot, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("shop state saved", "slot", slot, "day", st.Day, "money", st.Money)
	return nil
}

// unmarshalField decodes one JSON column into dst, logging and leaving dst
// untouched when the column is unreadable.
func unmarshalField(slot, name, raw string, dst any) {
	if raw == "" || raw == "null" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("unreadable save section, using defaults", "slot", slot, "section", name, "error", err)
	}
}

// LoadState reads a slot back into a fresh state. A missing slot returns
// (nil, nil) so callers can fall through to a new game. Unreadable sections
// fall back to their defaults; the caller is expected to Normalize.
func (db *DB) LoadState(slot string, tree *progression.Tree) (*engine.State, error) {
	var row saveRow
	err := db.conn.Get(&row, "SELECT * FROM saves WHERE slot = ?", slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load save %q: %w", slot, err)
	}

	st := engine.NewState()
	// Starting stock must not merge into the loaded sections.
	st.Inventory = shop.NewInventory()
	st.Collection = cards.NewCollection()
	st.Money = row.Money
	st.Day = row.Day
	st.TimeSeconds = row.TimeSeconds
	st.PhaseTimer = row.PhaseTimer
	st.Paused = row.Paused != 0
	st.Staff.XP = row.StaffXP

	unmarshalField(slot, "prices", row.PricesJSON, &st.Prices)
	unmarshalField(slot, "pricing", row.PricingJSON, &st.Pricing)
	unmarshalField(slot, "inventory", row.InventoryJSON, st.Inventory)
	unmarshalField(slot, "fixtures", row.FixturesJSON, &st.Fixtures)
	unmarshalField(slot, "layout", row.LayoutJSON, st.Layout)
	unmarshalField(slot, "collection", row.CollectionJSON, st.Collection)
	unmarshalField(slot, "deck", row.DeckJSON, st.Deck)
	unmarshalField(slot, "orders", row.OrdersJSON, &st.PendingOrders)
	unmarshalField(slot, "progression", row.ProgressionJSON, st.Prog)
	unmarshalField(slot, "skills", row.SkillsJSON, st.Skills)
	unmarshalField(slot, "analytics", row.AnalyticsJSON, st.Analytics)
	if row.SummaryJSON.Valid {
		summary := &engine.DaySummary{}
		unmarshalField(slot, "summary", row.SummaryJSON.String, summary)
		st.LastSummary = summary
	}

	st.Normalize(tree)
	slog.Info("shop state loaded", "slot", slot, "day", st.Day, "money", st.Money)
	return st, nil
}

// SaveMeta stores a key-value pair in shop metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO shop_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM shop_meta WHERE key = ?", key)
	return value, err
}
