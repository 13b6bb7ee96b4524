package captain

// Summary is a fleet-wide roll-up of captain state.
type Summary struct {
	Captains           int     `json:"captains"`
	Ready              int     `json:"ready"`
	Executing          int     `json:"executing"`
	PendingEscalations int     `json:"pending_escalations"`
	AvgConfidence      float32 `json:"avg_confidence"`
}

// Captain is the read-only view Summarize needs of one ship. Log may be nil.
type Captain struct {
	Order *Order
	State *State
	Log   *EscalationLog
}

// Summarize aggregates captain telemetry.
func Summarize(captains []Captain) Summary {
	var s Summary
	var confidence float32
	for _, c := range captains {
		s.Captains++
		if c.State.IsReady {
			s.Ready++
		}
		if c.Order.Status == StatusExecuting {
			s.Executing++
		}
		confidence += c.State.Confidence
		if c.Log != nil {
			s.PendingEscalations += c.Log.Pending()
		}
	}
	if s.Captains > 0 {
		s.AvgConfidence = confidence / float32(s.Captains)
	}
	return s
}
