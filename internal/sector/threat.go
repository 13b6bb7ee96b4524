package sector

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/fleetcommand/internal/simtime"
)

// ThreatField is the hostile activity level across the sector. It mixes the
// static hazard of each zone with noise that drifts over sim-days.
type ThreatField struct {
	sector *Sector
	noise  opensimplex.Noise
	drift  float64 // noise-space units per sim-day
}

// NewThreatField creates a threat field over s.
func NewThreatField(s *Sector) *ThreatField {
	return &ThreatField{
		sector: s,
		noise:  opensimplex.NewNormalized(s.Seed + 7),
		drift:  0.35,
	}
}

// Sample returns the threat level at c for tick, in [0, 1]. Out-of-bounds
// coordinates are deep space and read as fully hostile.
func (f *ThreatField) Sample(c Coord, tick uint64) float32 {
	z := f.sector.Get(c)
	if z == nil {
		return 1
	}
	x, y := c.Cartesian()
	t := float64(tick) / simtime.TicksPerSimDay * f.drift

	var activity float64
	amplitude, frequency, total := 1.0, 0.12, 0.0
	for i := 0; i < 3; i++ {
		activity += f.noise.Eval3(x*frequency, y*frequency, t) * amplitude
		total += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	activity /= total

	v := z.Hazard*0.6 + activity*0.4
	if z.Kind == ZoneNebula {
		v += 0.1
	}
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return float32(v)
}
