package entity

import "testing"

func TestArenaDestroyInvalidatesHandle(t *testing.T) {
	a := NewArena()
	h := a.Create()
	if !a.Alive(h) {
		t.Fatal("new handle must be alive")
	}
	if !a.Destroy(h) {
		t.Fatal("destroy of live handle must succeed")
	}
	if a.Alive(h) {
		t.Fatal("destroyed handle must not be alive")
	}

	reused := a.Create()
	if reused.Index != h.Index {
		t.Fatalf("expected slot %d to be reused, got %d", h.Index, reused.Index)
	}
	if reused.Gen == h.Gen {
		t.Fatal("reused slot must carry a new generation")
	}
	if a.Alive(h) {
		t.Fatal("stale handle must stay dead after slot reuse")
	}
	if a.Destroy(h) {
		t.Fatal("destroying a stale handle must fail")
	}
}

func TestNullNeverAlive(t *testing.T) {
	a := NewArena()
	a.Create()
	if a.Alive(Null) {
		t.Fatal("Null must never be alive")
	}
	if !Null.IsNull() {
		t.Fatal("Null must report IsNull")
	}
}

func TestArenaHandlesAscending(t *testing.T) {
	a := NewArena()
	var hs []Handle
	for i := 0; i < 5; i++ {
		hs = append(hs, a.Create())
	}
	a.Destroy(hs[2])

	got := a.Handles()
	if len(got) != 4 || a.Count() != 4 {
		t.Fatalf("expected 4 live handles, got %d (count %d)", len(got), a.Count())
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Less(got[i]) {
			t.Fatalf("handles not ascending: %v", got)
		}
	}
}

func TestDenseGenerationChecked(t *testing.T) {
	a := NewArena()
	d := NewDense[int]()
	h := a.Create()
	d.Set(h, 7)

	v, ok := d.Get(h)
	if !ok || *v != 7 {
		t.Fatalf("Get = %v, %v; want 7, true", v, ok)
	}
	*v = 9
	if v2, _ := d.Get(h); *v2 != 9 {
		t.Fatal("Get must return a pointer into the store")
	}

	stale := Handle{Index: h.Index, Gen: h.Gen + 1}
	if d.Has(stale) {
		t.Fatal("stale generation must read as absent")
	}

	d.Remove(h)
	if d.Has(h) || d.Len() != 0 {
		t.Fatal("removed component must be absent")
	}
}

func TestSparseEachAscending(t *testing.T) {
	a := NewArena()
	s := NewSparse[string]()
	var hs []Handle
	for i := 0; i < 6; i++ {
		hs = append(hs, a.Create())
	}
	s.Set(hs[4], "d")
	s.Set(hs[1], "b")
	s.Set(hs[3], "c")
	s.Set(hs[0], "a")

	var got string
	s.Each(func(_ Handle, v string) { got += v })
	if got != "abcd" {
		t.Fatalf("Each order = %q, want %q", got, "abcd")
	}

	if _, ok := s.Get(Handle{Index: hs[1].Index, Gen: 99}); ok {
		t.Fatal("wrong generation must read as absent")
	}
}
