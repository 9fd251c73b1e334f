package grid

import "testing"

func TestParseKeyRoundTrip(t *testing.T) {
	tile := Tile{X: 7, Y: 11}
	got, ok := ParseKey(tile.Key())
	if !ok {
		t.Fatalf("ParseKey(%q) reported malformed", tile.Key())
	}
	if got != tile {
		t.Fatalf("round trip mismatch: got %v want %v", got, tile)
	}
}

func TestParseKeyMalformed(t *testing.T) {
	for _, s := range []string{"", "5", "a,b", "3,", ",4", "1,2,3"} {
		if _, ok := ParseKey(s); ok {
			t.Fatalf("ParseKey(%q) accepted malformed key", s)
		}
	}
}

func TestPathEmptyWhenStartEqualsGoal(t *testing.T) {
	p := Path(5, 5, nil, Tile{X: 2, Y: 2}, Tile{X: 2, Y: 2})
	if len(p) != 0 {
		t.Fatalf("expected empty path for start==goal, got %v", p)
	}
}

func TestPathAvoidsBlockedTiles(t *testing.T) {
	// Wall across x=2 with a gap at y=4.
	blocked := map[Tile]bool{}
	for y := 0; y < 4; y++ {
		blocked[Tile{X: 2, Y: y}] = true
	}
	walkable := func(tl Tile) bool { return !blocked[tl] }

	start := Tile{X: 0, Y: 0}
	goal := Tile{X: 4, Y: 0}
	path := Path(6, 5, walkable, start, goal)
	if len(path) == 0 {
		t.Fatalf("expected a path through the gap, got none")
	}
	prev := start
	for i, step := range path {
		if blocked[step] {
			t.Fatalf("step %d crosses blocked tile %v", i, step)
		}
		if prev.Manhattan(step) != 1 {
			t.Fatalf("step %d is not adjacent to previous: %v -> %v", i, prev, step)
		}
		prev = step
	}
	if prev != goal {
		t.Fatalf("path ends at %v, want %v", prev, goal)
	}
}

func TestPathEmptyWhenUnreachable(t *testing.T) {
	// Solid wall across x=2.
	walkable := func(tl Tile) bool { return tl.X != 2 }
	path := Path(6, 5, walkable, Tile{X: 0, Y: 0}, Tile{X: 4, Y: 4})
	if len(path) != 0 {
		t.Fatalf("expected empty path through solid wall, got %v", path)
	}
}

func TestAdjacentWalkableRespectsBounds(t *testing.T) {
	got := AdjacentWalkable(3, 3, nil, Tile{X: 0, Y: 0})
	if len(got) != 2 {
		t.Fatalf("corner tile should have 2 neighbors, got %v", got)
	}
	for _, n := range got {
		if n.X < 0 || n.Y < 0 || n.X >= 3 || n.Y >= 3 {
			t.Fatalf("neighbor out of bounds: %v", n)
		}
	}
}
