package sector

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coord
		want int
	}{
		{name: "same", a: Coord{}, b: Coord{}, want: 0},
		{name: "neighbor", a: Coord{}, b: Coord{Q: 1, R: -1}, want: 1},
		{name: "far", a: Coord{Q: -2, R: 3}, b: Coord{Q: 3, R: -1}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepApproaches(t *testing.T) {
	from, to := Coord{Q: -3, R: 0}, Coord{Q: 2, R: 1}
	for i := 0; from != to; i++ {
		next := Step(from, to)
		if Distance(next, to) != Distance(from, to)-1 {
			t.Fatalf("step %d from %v went to %v", i, from, next)
		}
		from = next
		if i > 20 {
			t.Fatal("never arrived")
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(GenConfig{Radius: 4, Seed: 42})
	b := Generate(GenConfig{Radius: 4, Seed: 42})

	// 3r(r+1)+1 hexes
	if len(a.Zones) != 61 || len(a.Coords()) != 61 {
		t.Fatalf("hexes = %d, want 61", len(a.Zones))
	}
	for c, z := range a.Zones {
		if *b.Zones[c] != *z {
			t.Fatalf("zone %v differs between runs", c)
		}
		if z.Hazard < 0 || z.Hazard > 1 {
			t.Errorf("hazard %v out of range at %v", z.Hazard, c)
		}
	}
}

func TestThreatFieldRange(t *testing.T) {
	s := Generate(GenConfig{Radius: 5, Seed: 7})
	f := NewThreatField(s)
	for _, c := range s.Coords() {
		for _, tick := range []uint64{0, 500, 100000} {
			v := f.Sample(c, tick)
			if v < 0 || v > 1 {
				t.Fatalf("Sample(%v, %d) = %v", c, tick, v)
			}
			if again := f.Sample(c, tick); again != v {
				t.Fatalf("Sample not deterministic at %v", c)
			}
		}
	}
	if got := f.Sample(Coord{Q: 99}, 0); got != 1 {
		t.Errorf("deep space threat = %v, want 1", got)
	}
}
