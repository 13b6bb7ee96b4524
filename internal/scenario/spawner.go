// Package scenario builds the demo fleet and plays the collaborators the core
// systems expect around them: planners that issue orders, resource systems that
// drift ship vitals, and a higher command that answers escalations.
package scenario

import (
	"fmt"
	"math/rand"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/world"
)

// SpawnConfig controls initial fleet generation.
type SpawnConfig struct {
	Seed           int64
	Ships          int
	CrewPerShip    int
	SpyChance      float32 // per recruit
	ContractChance float32 // per recruit
}

// DefaultSpawnConfig returns a small fleet.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Ships:          12,
		CrewPerShip:    20,
		SpyChance:      0.04,
		ContractChance: 0.1,
	}
}

// UnalignedFaction is the name of the doctrine-less faction crews may
// hold a secondary affiliation with.
const UnalignedFaction = "unaligned"

// Spawner creates factions, ships and crews.
type Spawner struct {
	rng       *rand.Rand
	sector    *sector.Sector
	cfg       SpawnConfig
	unaligned entity.Handle
	shipSeq   int
}

// NewSpawner creates a spawner over s with the given config.
func NewSpawner(cfg SpawnConfig, s *sector.Sector) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(cfg.Seed + 300)),
		sector: s,
		cfg:    cfg,
	}
}

// Populate adds one faction per doctrine plus the unaligned faction, then
// the configured number of ships, each with a full crew. Ships are dealt to
// the doctrine factions round-robin.
func (s *Spawner) Populate(w *world.World, doctrines []*compliance.Doctrine) {
	factions := make([]entity.Handle, 0, len(doctrines))
	for _, d := range doctrines {
		factions = append(factions, w.AddFaction(d.Name, d))
	}
	s.unaligned = w.AddFaction(UnalignedFaction, nil)
	if len(factions) == 0 {
		factions = append(factions, s.unaligned)
	}

	for i := 0; i < s.cfg.Ships; i++ {
		ship := s.SpawnShip(w, factions[i%len(factions)], 0)
		for j := 0; j < s.cfg.CrewPerShip; j++ {
			s.Recruit(w, ship, 0)
		}
	}
}

// SpawnShip creates one ship for faction at a random position in the sector.
func (s *Spawner) SpawnShip(w *world.World, faction entity.Handle, tick uint64) entity.Handle {
	s.shipSeq++
	pos := s.randomCoord()
	info := world.Ship{
		Name:        fmt.Sprintf("%s %s", shipPrefixes[s.rng.Intn(len(shipPrefixes))], shipNames[(s.shipSeq-1)%len(shipNames)]),
		Faction:     faction,
		Position:    pos,
		Destination: pos,
	}
	if s.shipSeq > len(shipNames) {
		info.Name = fmt.Sprintf("%s %d", info.Name, (s.shipSeq-1)/len(shipNames)+1)
	}
	return w.AddShip(tick, info, s.readinessPreset(), captain.Autonomy(s.rng.Intn(4)))
}

// Recruit enlists a freshly generated crew member aboard ship. Their
// alignment and convictions are drawn around the ship faction's doctrine.
func (s *Spawner) Recruit(w *world.World, ship entity.Handle, tick uint64) entity.Handle {
	var faction entity.Handle
	if info, ok := w.ShipInfo.Get(ship); ok {
		faction = info.Faction
	}
	doctrine, _ := w.Doctrine(faction)

	spec := world.CrewSpec{
		Name:     s.generateName(),
		Stats:    s.generateStats(),
		Axes:     s.generateAxes(doctrine),
		Outlooks: s.generateOutlooks(),
		Affiliations: []compliance.Affiliation{
			{Target: faction, Loyalty: 0.3 + s.rng.Float32()*0.7},
		},
		Spy: s.rng.Float32() < s.cfg.SpyChance,
	}
	spec.Alignment = s.generateAlignment(doctrine)

	if s.rng.Float32() < 0.3 {
		spec.Capacities = &crew.Capacities{Sight: 0.6 + s.rng.Float32()*0.8}
	}
	if !s.unaligned.IsNull() && s.unaligned != faction && s.rng.Float32() < 0.15 {
		spec.Affiliations = append(spec.Affiliations, compliance.Affiliation{
			Target:  s.unaligned,
			Loyalty: s.rng.Float32() * 0.2,
		})
	}
	if s.rng.Float32() < s.cfg.ContractChance {
		spec.Contract = &compliance.Contract{
			ExpirationTick: tick + uint64(s.rng.Intn(7*1440)) + 1,
		}
	}
	return w.AddCrew(ship, spec)
}

func (s *Spawner) randomCoord() sector.Coord {
	coords := s.sector.Coords()
	if len(coords) == 0 {
		return sector.Coord{}
	}
	return coords[s.rng.Intn(len(coords))]
}

func (s *Spawner) readinessPreset() captain.Readiness {
	r := s.rng.Float32()
	switch {
	case r < 0.25:
		return captain.StrictReadiness
	case r < 0.75:
		return captain.StandardReadiness
	default:
		return captain.RelaxedReadiness
	}
}

func (s *Spawner) generateStats() crew.Stats {
	stat := func() float32 { return 1 + s.rng.Float32()*6 }
	st := crew.Stats{
		Command:     stat(),
		Tactics:     stat(),
		Logistics:   stat(),
		Diplomacy:   stat(),
		Engineering: stat(),
		Resolve:     stat(),
	}
	// One specialty, pushed toward the top of the range.
	boost := 2 + s.rng.Float32()*2
	switch s.rng.Intn(6) {
	case 0:
		st.Command += boost
	case 1:
		st.Tactics += boost
	case 2:
		st.Logistics += boost
	case 3:
		st.Diplomacy += boost
	case 4:
		st.Engineering += boost
	default:
		st.Resolve += boost
	}
	return st
}

// generateAlignment draws around the centre of the doctrine's window, or
// around neutral when there is none. Roughly one in six recruits is drawn
// with no regard for doctrine at all.
func (s *Spawner) generateAlignment(d *compliance.Doctrine) alignment.Triplet {
	if d == nil || s.rng.Float32() < 0.16 {
		return alignment.FromFloats(s.signed(), s.signed(), s.signed())
	}
	spread := float32(0.35)
	return alignment.FromFloats(
		(d.Window.LawMin+d.Window.LawMax)/2+float32(s.rng.NormFloat64())*spread,
		(d.Window.GoodMin+d.Window.GoodMax)/2+float32(s.rng.NormFloat64())*spread,
		(d.Window.IntegrityMin+d.Window.IntegrityMax)/2+float32(s.rng.NormFloat64())*spread,
	)
}

func (s *Spawner) generateAxes(d *compliance.Doctrine) alignment.Axes {
	axes := make(alignment.Axes, 0, 5)
	for id := alignment.AxisWar; id <= alignment.AxisExpansionist; id++ {
		v := s.signed() * 0.6
		if d != nil {
			for _, exp := range d.Axes {
				if exp.Axis == id {
					v = (exp.Min+exp.Max)/2 + float32(s.rng.NormFloat64())*0.3
				}
			}
		}
		axes = append(axes, alignment.AxisValue{Axis: id, Value: clampSigned(v)})
	}
	return axes
}

func (s *Spawner) generateOutlooks() []alignment.Outlook {
	ids := []alignment.OutlookID{
		alignment.OutlookLoyalist,
		alignment.OutlookOpportunist,
		alignment.OutlookFanatic,
		alignment.OutlookMutinous,
	}
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	n := 1 + s.rng.Intn(3)
	out := make([]alignment.Outlook, 0, n)
	for _, id := range ids[:n] {
		out = append(out, alignment.Outlook{ID: id, Weight: s.signed()})
	}
	return out
}

func (s *Spawner) generateName() string {
	first := firstNames[s.rng.Intn(len(firstNames))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

func (s *Spawner) signed() float32 {
	return s.rng.Float32()*2 - 1
}

func clampSigned(v float32) float32 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

var shipPrefixes = []string{"FSS", "CNV", "RSV"}

var shipNames = []string{
	"Resolute", "Vigil", "Tern", "Heron", "Kestrel", "Bastion", "Meridian",
	"Halcyon", "Sable", "Lantern", "Corsair", "Aster", "Wayfarer", "Ember",
	"Solace", "Tideline",
}

var firstNames = []string{
	"Ames", "Bell", "Cass", "Dace", "Eld", "Fen", "Gale", "Hale", "Iris",
	"Joss", "Kai", "Lark", "Mira", "Noor", "Oren", "Pell", "Quin", "Rue",
	"Sol", "Tam", "Ula", "Vey", "Wren", "Yara", "Zed",
}

var lastNames = []string{
	"Okafor", "Reyes", "Lindqvist", "Tanaka", "Moreau", "Haddad", "Novak",
	"Castellan", "Obi", "Marsh", "Ivers", "Quell", "Drummond", "Sato",
	"Varga", "Whitlock",
}
