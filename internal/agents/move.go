package agents

import (
	"math"

	"github.com/talgya/shopfloor/internal/grid"
)

// snapEpsilonSq is the squared distance at which an agent snaps to a tile
// center instead of crawling the last hair toward it.
const snapEpsilonSq = 0.0004

// advanceAlongPath walks pos toward the tile centers in path at speed for dt
// seconds, consuming waypoints as they are reached. Reports whether the whole
// path has been consumed. Movement never overshoots a waypoint; leftover
// travel carries into the next one.
func advanceAlongPath(pos *grid.Vec2, path *[]grid.Tile, speed, dt float64) bool {
	remaining := speed * dt
	for remaining > 0 && len(*path) > 0 {
		target := (*path)[0].Center()
		dx := target.X - pos.X
		dy := target.Y - pos.Y
		distSq := dx*dx + dy*dy
		if distSq <= snapEpsilonSq {
			*pos = target
			*path = (*path)[1:]
			continue
		}
		dist := math.Sqrt(distSq)
		if dist <= remaining {
			*pos = target
			*path = (*path)[1:]
			remaining -= dist
			continue
		}
		pos.X += dx / dist * remaining
		pos.Y += dy / dist * remaining
		remaining = 0
	}
	return len(*path) == 0
}
