package sector

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ZoneKind classifies a hex by how contested it is.
type ZoneKind uint8

const (
	ZoneCore      ZoneKind = iota // Patrolled home space
	ZoneFrontier                  // Thinly held
	ZoneContested                 // Regular raids
	ZoneNebula                    // Sensor-blind, ambush-prone
)

func (z ZoneKind) String() string {
	switch z {
	case ZoneCore:
		return "core"
	case ZoneFrontier:
		return "frontier"
	case ZoneContested:
		return "contested"
	case ZoneNebula:
		return "nebula"
	}
	return fmt.Sprintf("zone(%d)", z)
}

// Zone is a single hex of the sector.
type Zone struct {
	Coord  Coord    `json:"coord"`
	Kind   ZoneKind `json:"kind"`
	Hazard float64  `json:"hazard"` // 0.0 (safe) to 1.0 (deadly)
}

// GenConfig holds sector generation parameters.
type GenConfig struct {
	Radius int   // Hex grid radius
	Seed   int64 // Random seed (0 = random)
}

// DefaultGenConfig returns a modest sector.
func DefaultGenConfig() GenConfig {
	return GenConfig{Radius: 12}
}

// Sector is the hex grid with its static hazard layer.
type Sector struct {
	Zones  map[Coord]*Zone `json:"-"`
	Radius int             `json:"radius"`
	Seed   int64           `json:"seed"`
}

// Generate builds a sector. Hazard rises from the center outward, broken up
// by simplex noise so the frontier is uneven.
func Generate(cfg GenConfig) *Sector {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	hazardNoise := opensimplex.NewNormalized(seed)
	nebulaNoise := opensimplex.NewNormalized(seed + 1)

	s := &Sector{Zones: make(map[Coord]*Zone), Radius: cfg.Radius, Seed: seed}
	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			c := Coord{Q: q, R: r}
			if !s.InBounds(c) {
				continue
			}
			x, y := c.Cartesian()

			dist := 0.0
			if cfg.Radius > 0 {
				dist = math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			}
			hazard := octaveNoise(hazardNoise, x, y, 4, 0.1, 0.5)*0.5 + dist*0.5
			nebula := octaveNoise(nebulaNoise, x, y, 3, 0.07, 0.5)

			z := &Zone{Coord: c, Hazard: math.Min(1, math.Max(0, hazard))}
			switch {
			case nebula > 0.68:
				z.Kind = ZoneNebula
				z.Hazard = math.Min(1, z.Hazard+0.15)
			case z.Hazard > 0.6:
				z.Kind = ZoneContested
			case z.Hazard > 0.35:
				z.Kind = ZoneFrontier
			default:
				z.Kind = ZoneCore
			}
			s.Zones[c] = z
		}
	}
	return s
}

// Get returns the zone at c, or nil if out of bounds.
func (s *Sector) Get(c Coord) *Zone {
	return s.Zones[c]
}

// InBounds reports whether c lies within the sector radius.
func (s *Sector) InBounds(c Coord) bool {
	return Distance(c, Coord{}) <= s.Radius
}

// Coords returns every in-bounds coordinate in a fixed order.
func (s *Sector) Coords() []Coord {
	out := make([]Coord, 0, len(s.Zones))
	for q := -s.Radius; q <= s.Radius; q++ {
		for r := -s.Radius; r <= s.Radius; r++ {
			if c := (Coord{Q: q, R: r}); s.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ZoneCounts returns how many hexes fall in each zone kind.
func (s *Sector) ZoneCounts() map[ZoneKind]int {
	counts := make(map[ZoneKind]int)
	for _, z := range s.Zones {
		counts[z.Kind]++
	}
	return counts
}

func (s *Sector) String() string {
	return fmt.Sprintf("Sector(radius=%d, hexes=%d)", s.Radius, len(s.Zones))
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
