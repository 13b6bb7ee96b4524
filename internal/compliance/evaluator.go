package compliance

import (
	"log/slog"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/entity"
)

const (
	deviationEpsilon = 1e-4
	suspicionDecay   = 0.05
	minSuspicionGain = 0.01
)

// Affiliation is one standing membership. Loyalty is written by other systems.
type Affiliation struct {
	Target  entity.Handle `json:"target"`
	Loyalty float32       `json:"loyalty"` // 0.0–1.0
}

// Contract is a service contract; it is active while ExpirationTick is in the future.
type Contract struct {
	ExpirationTick uint64 `json:"expiration_tick"`
}

// Subject is everything the evaluator reads about one member.
type Subject struct {
	Entity       entity.Handle
	Alignment    alignment.Triplet
	Axes         alignment.Axes
	Outlooks     []alignment.Outlook
	Affiliations []Affiliation
	Spy          bool
	Contract     *Contract

	// Suspicion is lazily created: HasSuspicion is false until the first accrual.
	Suspicion    float32
	HasSuspicion bool
}

// Result is what one evaluation produced besides the breach log.
type Result struct {
	Suspicion    float32
	HasSuspicion bool
	Tickets      []Ticket
	Dropped      int // breaches lost to a full log
}

// Evaluator scores members against their doctrines.
type Evaluator struct {
	Doctrines DoctrineSource
	Logger    *slog.Logger
}

// Evaluate clears log and re-derives it for s at tick. Spies never breach;
// their deviation accrues suspicion instead. A member on an active contract
// who is lawful enough is forgiven.
func (e *Evaluator) Evaluate(tick uint64, s *Subject, log *BreachLog) Result {
	log.Reset()
	res := Result{Suspicion: s.Suspicion, HasSuspicion: s.HasSuspicion}

	if !s.Spy && res.HasSuspicion {
		res.Suspicion = alignment.Saturate(res.Suspicion - suspicionDecay)
	}

	chaos := alignment.Chaos(s.Alignment)
	lawfulness := alignment.Lawfulness(s.Alignment)
	contractActive := s.Contract != nil && s.Contract.ExpirationTick > tick

	var top TopThree
	top.Populate(s.Outlooks)

	for _, aff := range s.Affiliations {
		d, ok := e.Doctrines.Doctrine(aff.Target)
		if !ok {
			e.logger().Debug("affiliation target has no doctrine",
				"entity", s.Entity.String(), "target", aff.Target.String())
			continue
		}

		total := d.Window.Deviation(s.Alignment) + d.AxisDeviation(s.Axes) + d.OutlookDeviation(&top)
		if total <= deviationEpsilon {
			continue
		}
		severity := total * alignment.Lerp(1, 0.35, alignment.Saturate(aff.Loyalty))

		if contractActive && lawfulness >= d.LawfulContractFloor && !s.Spy {
			continue
		}

		if s.Spy {
			gain := d.SuspicionGain
			if gain < minSuspicionGain {
				gain = minSuspicionGain
			}
			res.Suspicion = alignment.Saturate(res.Suspicion + severity*gain)
			res.HasSuspicion = true
			continue
		}

		b := Breach{
			Affiliation: aff.Target,
			Type:        classify(chaos, lawfulness, s.Axes.Get(alignment.AxisWar), d),
			Severity:    alignment.Saturate(severity),
		}
		if !log.Add(b) {
			res.Dropped++
			continue
		}
		res.Tickets = append(res.Tickets, Ticket{
			Source:      s.Entity,
			Affiliation: b.Affiliation,
			Type:        b.Type,
			Severity:    b.Severity,
			Tick:        tick,
		})
	}
	return res
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
