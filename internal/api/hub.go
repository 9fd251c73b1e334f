package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/shopfloor/internal/engine"
	"github.com/talgya/shopfloor/internal/grid"
)

// Render snapshot pushed to every websocket client each broadcast.
type renderSnapshot struct {
	Day        int            `json:"day"`
	Phase      string         `json:"phase"`
	PhaseTimer float64        `json:"phase_timer"`
	Money      int            `json:"money"`
	Paused     bool           `json:"paused"`
	Staff      renderAgent    `json:"staff"`
	Customers  []renderAgent  `json:"customers"`
	Shelves    []renderShelf  `json:"shelves"`
	Objects    []renderObject `json:"objects"`
}

type renderAgent struct {
	ID    string    `json:"id,omitempty"`
	Pos   grid.Vec2 `json:"pos"`
	State string    `json:"state"`
}

type renderShelf struct {
	Tile    string `json:"tile"`
	Product string `json:"product"`
	Qty     int    `json:"qty"`
	MaxQty  int    `json:"max_qty"`
}

type renderObject struct {
	Kind string `json:"kind"`
	Tile string `json:"tile"`
}

const (
	writeWait      = 10 * time.Second
	maxWSClients   = 16
	broadcastEvery = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	// Browser clients send an Origin header; cross-origin policy is handled
	// at the CORS layer, the render stream is read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans render snapshots out to websocket clients. Snapshots are built on
// the simulation goroutine (via OnTick) and broadcast from the hub's own,
// so a slow client never stalls the tick.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	snapMu   sync.Mutex
	latest   []byte
	lastSent time.Time
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Attach wires the hub to the loop's tick callback.
func (h *Hub) Attach(loop *engine.Loop) {
	loop.OnTick = h.Snapshot
}

// Snapshot captures render state. Runs on the simulation goroutine; keep it
// cheap and broadcast at most every broadcastEvery.
func (h *Hub) Snapshot(sim *engine.Simulation) {
	h.snapMu.Lock()
	due := time.Since(h.lastSent) >= broadcastEvery
	if due {
		h.lastSent = time.Now()
	}
	h.snapMu.Unlock()
	if !due {
		return
	}

	st := sim.State()
	snap := renderSnapshot{
		Day:        st.Day,
		Phase:      st.Phase.Key(),
		PhaseTimer: st.PhaseTimer,
		Money:      st.Money,
		Paused:     st.Paused,
		Staff:      renderAgent{Pos: st.Staff.Pos, State: st.Staff.State.Key()},
		Customers:  make([]renderAgent, 0, len(st.Customers)),
		Shelves:    make([]renderShelf, 0),
		Objects:    make([]renderObject, 0, len(st.Layout.Objects)),
	}
	for _, c := range st.Customers {
		snap.Customers = append(snap.Customers, renderAgent{ID: c.ID, Pos: c.Pos, State: c.State.Key()})
	}
	for _, obj := range st.Layout.Objects {
		snap.Objects = append(snap.Objects, renderObject{Kind: obj.Kind.Key(), Tile: obj.Tile.Key()})
	}
	for _, t := range st.Layout.ShelfTiles() {
		stock, ok := st.Layout.ShelfAt(t)
		if !ok {
			continue
		}
		snap.Shelves = append(snap.Shelves, renderShelf{
			Tile:    t.Key(),
			Product: stock.Product.Key(),
			Qty:     stock.Qty,
			MaxQty:  stock.MaxQty,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}

	h.snapMu.Lock()
	h.latest = data
	h.snapMu.Unlock()
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- data:
		default:
			// Client can't keep up; drop it.
			close(send)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// HandleWS upgrades the connection and streams snapshots until the client
// goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	full := len(h.clients) >= maxWSClients
	h.mu.Unlock()
	if full {
		http.Error(w, "too many websocket clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan []byte, 8)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	slog.Info("websocket client connected", "remote", r.RemoteAddr)

	// Catch the client up immediately.
	h.snapMu.Lock()
	if h.latest != nil {
		select {
		case send <- h.latest:
		default:
		}
	}
	h.snapMu.Unlock()

	go h.writeLoop(conn, send)
	h.readLoop(conn)
}

func (h *Hub) writeLoop(conn *websocket.Conn, send chan []byte) {
	for data := range send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	conn.Close()
}

// readLoop discards inbound frames; it exists to notice disconnects and
// answer pings.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		if send, ok := h.clients[conn]; ok {
			close(send)
			delete(h.clients, conn)
		}
		h.mu.Unlock()
		conn.Close()
		slog.Info("websocket client disconnected")
	}()
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
