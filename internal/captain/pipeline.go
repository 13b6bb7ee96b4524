package captain

// Advance moves an order at most one step through the pipeline for this tick
// and returns the status it left and the status it is now in. Orders waiting in
// Validating or PreFlight stall until the captain is ready.
//
// Terminal statuses are consumed on the visit after they are set: Completed
// counts a success, and every terminal status resets the order to None.
func Advance(o *Order, s *State, tick uint64) (from, to OrderStatus) {
	from = o.Status
	switch o.Status {
	case StatusNone:
	case StatusReceived:
		o.Status = StatusValidating
		o.LastEvaluationTick = tick
	case StatusValidating:
		if s.IsReady {
			o.Status = StatusPreFlight
		}
	case StatusPreFlight:
		// Same gate as Validating. Readiness can drop between the two ticks;
		// additional launch checks would go here.
		if s.IsReady {
			o.Status = StatusExecuting
		}
	case StatusExecuting:
		if o.TimeoutTick > 0 && tick >= o.TimeoutTick {
			o.Status = StatusFailed
			s.FailureCount++
		}
	case StatusCompleted:
		s.SuccessCount++
		o.reset()
	case StatusFailed, StatusCancelled, StatusEscalated:
		o.reset()
	}
	return from, o.Status
}
