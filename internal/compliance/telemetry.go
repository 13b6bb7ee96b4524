package compliance

// Metric names published by Summarize.
const (
	MetricBreaches        = "fleetsim.compliance.breaches"
	MetricMutiny          = "fleetsim.compliance.mutiny"
	MetricDesertion       = "fleetsim.compliance.desertion"
	MetricIndependence    = "fleetsim.compliance.independence"
	MetricSeverityAvg     = "fleetsim.compliance.severity.avg"
	MetricSuspicionMean   = "fleetsim.compliance.suspicion.mean"
	MetricSpySuspicion    = "fleetsim.compliance.suspicion.spyMean"
	MetricSuspicionMax    = "fleetsim.compliance.suspicion.max"
	MetricSuspicionAlerts = "fleetsim.compliance.suspicion.alerts"
)

// DefaultAlertThreshold is the suspicion at which a member counts as an alert.
const DefaultAlertThreshold = 0.3

// Summary is a fleet-wide roll-up of compliance state.
type Summary struct {
	Breaches      int     `json:"breaches"`
	Mutiny        int     `json:"mutiny"`
	Desertion     int     `json:"desertion"`
	Independence  int     `json:"independence"`
	SeverityAvg   float32 `json:"severity_avg"`
	SuspicionMean float32 `json:"suspicion_mean"`
	SpyMean       float32 `json:"spy_suspicion_mean"`
	SuspicionMax  float32 `json:"suspicion_max"`
	Alerts        int     `json:"suspicion_alerts"`
}

// Member is the read-only view Summarize needs of one evaluated member.
type Member struct {
	Breaches     *BreachLog
	Spy          bool
	Suspicion    float32
	HasSuspicion bool
}

// Summarize aggregates compliance telemetry. Suspicion means cover members
// that carry a score.
func Summarize(members []Member, alertThreshold float32) Summary {
	var s Summary
	var severity, suspicion, spySuspicion float32
	var scored, spies int

	for _, m := range members {
		if m.Breaches != nil {
			for _, b := range m.Breaches.Breaches {
				s.Breaches++
				severity += b.Severity
				switch b.Type {
				case BreachMutiny:
					s.Mutiny++
				case BreachDesertion:
					s.Desertion++
				case BreachIndependence:
					s.Independence++
				}
			}
		}
		if !m.HasSuspicion {
			continue
		}
		scored++
		suspicion += m.Suspicion
		if m.Suspicion > s.SuspicionMax {
			s.SuspicionMax = m.Suspicion
		}
		if m.Suspicion >= alertThreshold {
			s.Alerts++
		}
		if m.Spy {
			spies++
			spySuspicion += m.Suspicion
		}
	}

	if s.Breaches > 0 {
		s.SeverityAvg = severity / float32(s.Breaches)
	}
	if scored > 0 {
		s.SuspicionMean = suspicion / float32(scored)
	}
	if spies > 0 {
		s.SpyMean = spySuspicion / float32(spies)
	}
	return s
}

// Metrics returns the summary keyed by metric name.
func (s Summary) Metrics() map[string]float64 {
	return map[string]float64{
		MetricBreaches:        float64(s.Breaches),
		MetricMutiny:          float64(s.Mutiny),
		MetricDesertion:       float64(s.Desertion),
		MetricIndependence:    float64(s.Independence),
		MetricSeverityAvg:     float64(s.SeverityAvg),
		MetricSuspicionMean:   float64(s.SuspicionMean),
		MetricSpySuspicion:    float64(s.SpyMean),
		MetricSuspicionMax:    float64(s.SuspicionMax),
		MetricSuspicionAlerts: float64(s.Alerts),
	}
}
