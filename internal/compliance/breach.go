package compliance

import (
	"fmt"

	"github.com/talgya/fleetcommand/internal/entity"
)

// BreachType classifies how a member is breaking with a doctrine.
type BreachType uint8

const (
	BreachMutiny BreachType = iota
	BreachDesertion
	BreachIndependence
)

func (b BreachType) String() string {
	switch b {
	case BreachMutiny:
		return "mutiny"
	case BreachDesertion:
		return "desertion"
	case BreachIndependence:
		return "independence"
	}
	return fmt.Sprintf("breach(%d)", b)
}

// MarshalText renders the breach type by name.
func (b BreachType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Breach is one doctrine violation found in the current evaluation.
type Breach struct {
	Affiliation entity.Handle `json:"affiliation"`
	Type        BreachType    `json:"type"`
	Severity    float32       `json:"severity"` // 0.0–1.0
}

// DefaultBreachCapacity bounds a member's breach log.
const DefaultBreachCapacity = 8

// BreachLog holds the breaches of the latest evaluation only.
type BreachLog struct {
	Breaches []Breach `json:"breaches"`
	Capacity int      `json:"capacity"`
}

// NewBreachLog returns an empty log. A capacity below 1 uses the default.
func NewBreachLog(capacity int) *BreachLog {
	if capacity < 1 {
		capacity = DefaultBreachCapacity
	}
	return &BreachLog{Capacity: capacity}
}

// Reset clears the log for a new evaluation.
func (l *BreachLog) Reset() {
	l.Breaches = l.Breaches[:0]
}

// Add records a breach; it reports false when the log is full and the breach is dropped.
func (l *BreachLog) Add(b Breach) bool {
	if len(l.Breaches) >= l.Capacity {
		return false
	}
	l.Breaches = append(l.Breaches, b)
	return true
}

// Worst returns the most severe breach of type t.
func (l *BreachLog) Worst(t BreachType) (Breach, bool) {
	var worst Breach
	found := false
	for _, b := range l.Breaches {
		if b.Type == t && (!found || b.Severity > worst.Severity) {
			worst = b
			found = true
		}
	}
	return worst, found
}

// classify picks the breach type from chaos, lawfulness and the member's war conviction.
func classify(chaos, lawfulness, war float32, d *Doctrine) BreachType {
	if chaos > d.ChaosMutinyThreshold {
		if war > 0.25 {
			return BreachDesertion
		}
		return BreachIndependence
	}
	if lawfulness >= d.LawfulContractFloor {
		return BreachMutiny
	}
	if war <= 0 {
		return BreachIndependence
	}
	return BreachDesertion
}
