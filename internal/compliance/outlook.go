package compliance

import (
	"github.com/talgya/fleetcommand/internal/alignment"
)

// TopThree retains the three distinct outlooks with the largest |weight|,
// in descending order of magnitude. It never allocates.
type TopThree struct {
	slots [3]alignment.Outlook
	count int
}

func magnitude(w float32) float32 {
	if w < 0 {
		return -w
	}
	return w
}

// Len returns the number of retained outlooks.
func (t *TopThree) Len() int { return t.count }

// At returns the i-th retained outlook, 0 being the largest.
func (t *TopThree) At(i int) alignment.Outlook { return t.slots[i] }

// Slice returns the retained outlooks in order.
func (t *TopThree) Slice() []alignment.Outlook {
	out := make([]alignment.Outlook, t.count)
	copy(out, t.slots[:t.count])
	return out
}

// Get returns the retained weight for id.
func (t *TopThree) Get(id alignment.OutlookID) (float32, bool) {
	for i := 0; i < t.count; i++ {
		if t.slots[i].ID == id {
			return t.slots[i].Weight, true
		}
	}
	return 0, false
}

// Populate resets the tracker and ingests every entry.
func (t *TopThree) Populate(entries []alignment.Outlook) {
	*t = TopThree{}
	for _, e := range entries {
		t.Insert(e)
	}
}

// Insert offers one outlook. A retained id is replaced only by a larger
// magnitude; otherwise the entry takes its place in descending order and the
// smallest slot falls off. Equal magnitudes never displace an earlier entry.
func (t *TopThree) Insert(e alignment.Outlook) {
	mag := magnitude(e.Weight)

	for i := 0; i < t.count; i++ {
		if t.slots[i].ID != e.ID {
			continue
		}
		if mag > magnitude(t.slots[i].Weight) {
			t.slots[i] = e
			for ; i > 0 && magnitude(t.slots[i].Weight) > magnitude(t.slots[i-1].Weight); i-- {
				t.slots[i], t.slots[i-1] = t.slots[i-1], t.slots[i]
			}
		}
		return
	}

	pos := t.count
	for pos > 0 && mag > magnitude(t.slots[pos-1].Weight) {
		pos--
	}
	if pos >= len(t.slots) {
		return
	}
	last := t.count
	if last == len(t.slots) {
		last--
	} else {
		t.count++
	}
	copy(t.slots[pos+1:last+1], t.slots[pos:last])
	t.slots[pos] = e
}
