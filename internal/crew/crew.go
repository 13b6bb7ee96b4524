// Package crew holds the per-individual inputs other systems read about crew
// members: stat blocks, derived capacities, and custody.
package crew

// Stats is a crew member's six capability axes, roughly 0–10 each.
type Stats struct {
	Command     float32 `json:"command"`
	Tactics     float32 `json:"tactics"`
	Logistics   float32 `json:"logistics"`
	Diplomacy   float32 `json:"diplomacy"`
	Engineering float32 `json:"engineering"`
	Resolve     float32 `json:"resolve"`
}

// Sum is the unweighted total of every axis.
func (s Stats) Sum() float32 {
	return s.Command + s.Tactics + s.Logistics + s.Diplomacy + s.Engineering + s.Resolve
}

// Capacities are physical traits derived from augments and health.
type Capacities struct {
	Sight float32 `json:"sight"` // 1.0 is baseline
}

// CustodyReason is why a crew member was detained.
type CustodyReason uint8

const (
	CustodyMutiny CustodyReason = iota + 1
	CustodyDesertion
	CustodyOrder // detained by an external authority
)

func (r CustodyReason) String() string {
	switch r {
	case CustodyMutiny:
		return "mutiny"
	case CustodyDesertion:
		return "desertion"
	case CustodyOrder:
		return "order"
	}
	return "unknown"
}

// Custody marks a crew member as detained and ineligible for any seat.
type Custody struct {
	Reason    CustodyReason `json:"reason"`
	SinceTick uint64        `json:"since_tick"`
}
