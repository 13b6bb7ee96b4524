// Package sector provides the hex grid ships move on and the threat field
// readiness reads. Uses axial coordinates (q, r).
package sector

// Coord is a position on the sector grid in axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// NeighborDirections are the six neighbor offsets in axial coordinates.
var NeighborDirections = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent coordinates.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{Q: c.Q + dir.Q, R: c.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	return max(abs(a.Q-b.Q), abs(a.R-b.R), abs(a.S()-b.S()))
}

// Step returns the neighbor of from that is closest to to, or from itself
// when already there. Ties resolve in NeighborDirections order.
func Step(from, to Coord) Coord {
	if from == to {
		return from
	}
	best := from
	bestDist := Distance(from, to)
	for _, n := range from.Neighbors() {
		if d := Distance(n, to); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Cartesian converts axial coordinates to continuous space for noise sampling.
func (c Coord) Cartesian() (x, y float64) {
	const sqrt3over2 = 0.8660254037844386
	return float64(c.Q) + float64(c.R)*0.5, float64(c.R) * sqrt3over2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
