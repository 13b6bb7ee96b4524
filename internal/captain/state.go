package captain

import "fmt"

// Autonomy is how much latitude a captain has. Levels are ordered.
type Autonomy uint8

const (
	AutonomyStrict      Autonomy = iota // Follows orders exactly, never escalates
	AutonomyTactical                    // May adjust tactics, not objectives
	AutonomyOperational                 // May revise approach and call for reinforcement
	AutonomyFull                        // Full discretion
)

func (a Autonomy) String() string {
	switch a {
	case AutonomyStrict:
		return "strict"
	case AutonomyTactical:
		return "tactical"
	case AutonomyOperational:
		return "operational"
	case AutonomyFull:
		return "full"
	}
	return fmt.Sprintf("autonomy(%d)", a)
}

// ParseAutonomy resolves an autonomy name.
func ParseAutonomy(s string) (Autonomy, error) {
	for a := AutonomyStrict; a <= AutonomyFull; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown autonomy %q", s)
}

// State is the captain's running record. Success and failure counts only grow.
type State struct {
	IsReady       bool     `json:"is_ready"`
	Confidence    float32  `json:"confidence"`     // 0.0–1.0
	RiskTolerance float32  `json:"risk_tolerance"` // 0.0–1.0, derived from alignment
	SuccessCount  uint32   `json:"success_count"`
	FailureCount  uint32   `json:"failure_count"`
	Autonomy      Autonomy `json:"autonomy"`
}

// DefaultState is the state a freshly commissioned captain starts with.
func DefaultState() State {
	return State{
		Autonomy:      AutonomyTactical,
		Confidence:    0.5,
		RiskTolerance: 0.5,
	}
}

// SuccessRatio is successes over completed attempts, 0 with no history.
func (s *State) SuccessRatio() float32 {
	total := s.SuccessCount + s.FailureCount
	if total == 0 {
		return 0
	}
	return float32(s.SuccessCount) / float32(total)
}
