package captain

import (
	"math"
	"testing"

	"github.com/talgya/fleetcommand/internal/entity"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name        string
		status      OrderStatus
		ready       bool
		timeout     uint64
		tick        uint64
		want        OrderStatus
		wantSuccess uint32
		wantFailure uint32
	}{
		{name: "idle stays idle", status: StatusNone, ready: true, want: StatusNone},
		{name: "received validates unconditionally", status: StatusReceived, ready: false, want: StatusValidating},
		{name: "validating stalls when not ready", status: StatusValidating, ready: false, want: StatusValidating},
		{name: "validating advances when ready", status: StatusValidating, ready: true, want: StatusPreFlight},
		{name: "preflight stalls when not ready", status: StatusPreFlight, ready: false, want: StatusPreFlight},
		{name: "preflight launches when ready", status: StatusPreFlight, ready: true, want: StatusExecuting},
		{name: "executing without timeout", status: StatusExecuting, tick: 1000, want: StatusExecuting},
		{name: "executing before timeout", status: StatusExecuting, timeout: 50, tick: 49, want: StatusExecuting},
		{name: "executing at timeout fails", status: StatusExecuting, timeout: 50, tick: 50, want: StatusFailed, wantFailure: 1},
		{name: "completed counts success and resets", status: StatusCompleted, want: StatusNone, wantSuccess: 1},
		{name: "failed resets", status: StatusFailed, want: StatusNone},
		{name: "cancelled resets", status: StatusCancelled, want: StatusNone},
		{name: "escalated resets", status: StatusEscalated, want: StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Running the same input twice must give the same result.
			for run := 0; run < 2; run++ {
				o := Order{Type: OrderPatrol, Status: tt.status, TimeoutTick: tt.timeout}
				s := State{IsReady: tt.ready}
				from, to := Advance(&o, &s, tt.tick)
				if from != tt.status || to != tt.want || o.Status != tt.want {
					t.Fatalf("run %d: Advance = (%v, %v), want (%v, %v)", run, from, to, tt.status, tt.want)
				}
				if s.SuccessCount != tt.wantSuccess || s.FailureCount != tt.wantFailure {
					t.Errorf("counts = %d/%d, want %d/%d", s.SuccessCount, s.FailureCount, tt.wantSuccess, tt.wantFailure)
				}
				if tt.status.Terminal() && o.Type != OrderNone {
					t.Errorf("terminal status left type %v", o.Type)
				}
			}
		})
	}
}

func TestAdvanceStampsEvaluationTick(t *testing.T) {
	o := NewOrder(OrderAttack, entity.Null, 1, 10, entity.Null)
	var s State
	Advance(&o, &s, 12)
	if o.LastEvaluationTick != 12 {
		t.Errorf("LastEvaluationTick = %d, want 12", o.LastEvaluationTick)
	}
}

func TestEvaluateHullFailureStallsPipeline(t *testing.T) {
	r := Readiness{MinHullRatio: 0.5}
	s := State{RiskTolerance: 0}
	Evaluate(&r, Vitals{Hull: 0.2, Morale: 0, Fuel: 1, Ammo: 1, Threat: 0}, &s)

	if !r.FailedChecks.Has(CheckHull) {
		t.Fatalf("FailedChecks = %v, want hull set", r.FailedChecks)
	}
	if r.FailedChecks != CheckHull {
		t.Errorf("FailedChecks = %v, want only hull", r.FailedChecks)
	}
	if s.IsReady {
		t.Error("IsReady = true, want false")
	}
	if !approx(r.CurrentReadiness, 0.8) {
		t.Errorf("CurrentReadiness = %v, want 0.8", r.CurrentReadiness)
	}

	o := Order{Type: OrderPatrol, Status: StatusValidating}
	Advance(&o, &s, 1)
	if o.Status != StatusValidating {
		t.Errorf("status = %v, want validating", o.Status)
	}
}

func TestEvaluateConfidence(t *testing.T) {
	r := StandardReadiness
	s := State{SuccessCount: 3, FailureCount: 1}
	Evaluate(&r, Vitals{Hull: 1, Fuel: 1, Ammo: 1, Morale: 1}, &s)
	// readiness 1.0 * 0.6 + 0.75 * 0.4
	if !approx(s.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9", s.Confidence)
	}
}

func TestNegativeMoraleFloorRelaxesDownward(t *testing.T) {
	r := RelaxedReadiness
	tests := []struct {
		tolerance float32
		want      float32
	}{
		{0, -0.5},
		{0.5, -0.625},
		{1, -0.75},
	}
	for _, tt := range tests {
		_, morale, _, _, _ := r.Thresholds(tt.tolerance)
		if math.Abs(float64(morale-tt.want)) > 1e-6 {
			t.Errorf("tolerance %.1f: morale floor = %v, want %v", tt.tolerance, morale, tt.want)
		}
	}
}

func TestReadinessMonotonicInTolerance(t *testing.T) {
	presets := []Readiness{StrictReadiness, StandardReadiness, RelaxedReadiness}
	vitals := []Vitals{
		{Hull: 0.45, Morale: 0.1, Fuel: 0.35, Ammo: 0.25, Threat: 0.6},
		{Hull: 0.7, Morale: -0.2, Fuel: 0.6, Ammo: 0.5, Threat: 0.35},
		{Hull: 0.25, Morale: -0.4, Fuel: 0.15, Ammo: 0.05, Threat: 0.85},
	}
	countFailed := func(f ReadinessFlags) int {
		n := 0
		for f != 0 {
			n += int(f & 1)
			f >>= 1
		}
		return n
	}

	for _, preset := range presets {
		for _, v := range vitals {
			prev := math.MaxInt
			for step := 0; step <= 10; step++ {
				r := preset
				s := State{RiskTolerance: float32(step) / 10}
				Evaluate(&r, v, &s)
				n := countFailed(r.FailedChecks)
				if n > prev {
					t.Fatalf("tolerance %.1f failed %d checks, more than %d at lower tolerance", s.RiskTolerance, n, prev)
				}
				prev = n
			}
		}
	}
}

func TestEscalationDedup(t *testing.T) {
	l := NewEscalationLog(entity.Handle{Index: 1, Gen: 1}, 4)
	if _, ok := l.Raise(EscalationResupply, ReasonResourcesDepleted, 1); !ok {
		t.Fatal("first raise rejected")
	}
	if _, ok := l.Raise(EscalationResupply, ReasonResourcesDepleted, 2); ok {
		t.Fatal("duplicate raise accepted")
	}
	if len(l.Entries) != 1 {
		t.Fatalf("len = %d, want 1", len(l.Entries))
	}

	l.Acknowledge(l.Entries[0].ID)
	if _, ok := l.Raise(EscalationResupply, ReasonResourcesDepleted, 3); !ok {
		t.Error("raise after acknowledgment rejected")
	}
}

func TestEscalationCapacityDropsOldest(t *testing.T) {
	l := NewEscalationLog(entity.Handle{Index: 1, Gen: 1}, 3)
	types := []EscalationType{
		EscalationReinforcement, EscalationResupply, EscalationRepair, EscalationEvacuation, EscalationNewOrders,
	}
	for i, et := range types {
		l.Raise(et, ReasonNone, uint64(i))
	}
	if len(l.Entries) != 3 {
		t.Fatalf("len = %d, want 3", len(l.Entries))
	}
	if l.Entries[0].Type != EscalationRepair {
		t.Errorf("oldest kept = %v, want repair", l.Entries[0].Type)
	}
	for _, e := range l.Entries {
		if e.Type == EscalationEvacuation && e.Priority != 0 {
			t.Errorf("evacuation priority = %d, want 0", e.Priority)
		}
	}
}

func TestEscalationIDsAreReproducible(t *testing.T) {
	owner := entity.Handle{Index: 7, Gen: 2}
	a := NewEscalationLog(owner, 0)
	b := NewEscalationLog(owner, 0)
	ea, _ := a.Raise(EscalationRepair, ReasonHullCritical, 5)
	eb, _ := b.Raise(EscalationRepair, ReasonHullCritical, 5)
	if ea.ID != eb.ID {
		t.Errorf("IDs differ: %s vs %s", ea.ID, eb.ID)
	}
}

func TestAbortMissionCancelsOnce(t *testing.T) {
	l := NewEscalationLog(entity.Handle{Index: 1, Gen: 1}, 0)
	e, _ := l.Raise(EscalationAbortMission, ReasonNone, 1)
	o := Order{Type: OrderAttack, Status: StatusExecuting}

	if got := l.Process(&o); len(got) != 0 {
		t.Fatalf("unacknowledged entry consumed")
	}
	if !l.Acknowledge(e.ID) {
		t.Fatal("Acknowledge returned false")
	}
	if got := l.Process(&o); len(got) != 1 {
		t.Fatalf("consumed %d entries, want 1", len(got))
	}
	if o.Status != StatusCancelled {
		t.Fatalf("status = %v, want cancelled", o.Status)
	}
	if got := l.Process(&o); len(got) != 0 {
		t.Error("entry consumed twice")
	}

	var s State
	Advance(&o, &s, 2)
	if !o.Idle() {
		t.Errorf("order not reset after cancel: %+v", o)
	}
}

func TestCheckEscalation(t *testing.T) {
	tests := []struct {
		name     string
		status   OrderStatus
		autonomy Autonomy
		failed   ReadinessFlags
		ready    float32
		want     []EscalationType
	}{
		{name: "not executing", status: StatusValidating, autonomy: AutonomyFull, failed: CheckFuel, want: nil},
		{name: "strict never escalates", status: StatusExecuting, autonomy: AutonomyStrict, failed: CheckFuel | CheckHull, want: nil},
		{name: "fuel", status: StatusExecuting, autonomy: AutonomyTactical, failed: CheckFuel, ready: 0.8, want: []EscalationType{EscalationResupply}},
		{name: "hull above critical", status: StatusExecuting, autonomy: AutonomyTactical, failed: CheckHull, ready: 0.8, want: nil},
		{name: "hull critical", status: StatusExecuting, autonomy: AutonomyTactical, failed: CheckHull | CheckFuel | CheckAmmo | CheckMorale, ready: 0.2,
			want: []EscalationType{EscalationRepair, EscalationResupply}},
		{name: "threat tactical", status: StatusExecuting, autonomy: AutonomyTactical, failed: CheckThreat, ready: 0.8, want: nil},
		{name: "threat operational", status: StatusExecuting, autonomy: AutonomyOperational, failed: CheckThreat, ready: 0.8,
			want: []EscalationType{EscalationReinforcement}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewEscalationLog(entity.Handle{Index: 1, Gen: 1}, 0)
			o := Order{Type: OrderAttack, Status: tt.status}
			s := State{Autonomy: tt.autonomy}
			r := Readiness{FailedChecks: tt.failed, CurrentReadiness: tt.ready}
			got := CheckEscalation(l, &o, &s, &r, 1)
			if len(got) != len(tt.want) {
				t.Fatalf("raised %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Type != tt.want[i] {
					t.Errorf("raised[%d] = %v, want %v", i, got[i].Type, tt.want[i])
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	l := NewEscalationLog(entity.Handle{Index: 1, Gen: 1}, 0)
	l.Raise(EscalationRepair, ReasonHullCritical, 1)
	captains := []Captain{
		{Order: &Order{Status: StatusExecuting}, State: &State{IsReady: true, Confidence: 1}, Log: l},
		{Order: &Order{}, State: &State{Confidence: 0.5}},
	}
	got := Summarize(captains)
	if got.Captains != 2 || got.Ready != 1 || got.Executing != 1 || got.PendingEscalations != 1 {
		t.Errorf("Summarize = %+v", got)
	}
	if !approx(got.AvgConfidence, 0.75) {
		t.Errorf("AvgConfidence = %v, want 0.75", got.AvgConfidence)
	}
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		in      string
		want    OrderType
		wantErr bool
	}{
		{in: "patrol", want: OrderPatrol},
		{in: "negotiate", want: OrderNegotiate},
		{in: "none", wantErr: true},
		{in: "warp", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrderType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOrderType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
