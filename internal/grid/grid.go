package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Tile is an integer cell coordinate on the shop floor. Exterior interfaces
// (saves, HTTP payloads) speak the "x,y" string form; everything internal
// passes Tile values around.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key renders the canonical "x,y" form used in saves and API payloads.
func (t Tile) Key() string {
	return fmt.Sprintf("%d,%d", t.X, t.Y)
}

// ParseKey parses the "x,y" form. Malformed keys report ok=false rather
// than producing a zero tile that looks legitimate.
func ParseKey(s string) (Tile, bool) {
	left, right, found := strings.Cut(s, ",")
	if !found {
		return Tile{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return Tile{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return Tile{}, false
	}
	return Tile{X: x, Y: y}, true
}

// Manhattan is the taxicab distance between two tiles.
func (t Tile) Manhattan(o Tile) int {
	return abs(t.X-o.X) + abs(t.Y-o.Y)
}

// Center is the tile's midpoint in continuous tile units, where agents live.
func (t Tile) Center() Vec2 {
	return Vec2{X: float64(t.X) + 0.5, Y: float64(t.Y) + 0.5}
}

// Vec2 is a position in continuous tile space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TileOf truncates a continuous position back to its containing tile.
func (v Vec2) TileOf() Tile {
	return Tile{X: int(v.X), Y: int(v.Y)}
}

func (v Vec2) DistSq(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// neighbor order is fixed so path choice is deterministic for a given layout.
var neighborOffsets = [4]Tile{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// AdjacentWalkable returns the in-bounds, unblocked 4-neighbors of t in a
// fixed order.
func AdjacentWalkable(w, h int, walkable func(Tile) bool, t Tile) []Tile {
	out := make([]Tile, 0, 4)
	for _, d := range neighborOffsets {
		n := Tile{X: t.X + d.X, Y: t.Y + d.Y}
		if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
			continue
		}
		if walkable != nil && !walkable(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Path runs a breadth-first search from start to goal over walkable tiles
// and returns the step sequence excluding start. The path is empty exactly
// when start == goal or the goal cannot be reached; callers treat an empty
// path as "already there" and carry on.
func Path(w, h int, walkable func(Tile) bool, start, goal Tile) []Tile {
	if start == goal {
		return nil
	}
	if goal.X < 0 || goal.Y < 0 || goal.X >= w || goal.Y >= h {
		return nil
	}
	if walkable != nil && !walkable(goal) {
		return nil
	}

	prev := map[Tile]Tile{start: start}
	queue := []Tile{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			break
		}
		for _, n := range AdjacentWalkable(w, h, walkable, cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}

	if _, ok := prev[goal]; !ok {
		return nil
	}
	var path []Tile
	for at := goal; at != start; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
