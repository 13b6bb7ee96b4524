package entity

import "sort"

// Dense stores one component per entity in a slice indexed by handle index.
// Used for components read every tick by most entities.
type Dense[T any] struct {
	vals    []T
	gens    []uint32
	present []bool
	count   int
}

// NewDense creates an empty dense store.
func NewDense[T any]() *Dense[T] {
	return &Dense[T]{}
}

// Set attaches v to h, replacing any previous value.
func (d *Dense[T]) Set(h Handle, v T) {
	if h.IsNull() {
		return
	}
	d.grow(int(h.Index) + 1)
	if !d.present[h.Index] || d.gens[h.Index] != h.Gen {
		if !d.present[h.Index] {
			d.count++
		}
		d.present[h.Index] = true
		d.gens[h.Index] = h.Gen
	}
	d.vals[h.Index] = v
}

// Get returns a pointer to the component of h. The pointer stays valid
// until the next Set that grows the store.
func (d *Dense[T]) Get(h Handle) (*T, bool) {
	if !d.Has(h) {
		return nil, false
	}
	return &d.vals[h.Index], true
}

// Has reports whether h carries the component.
func (d *Dense[T]) Has(h Handle) bool {
	if h.IsNull() || int(h.Index) >= len(d.present) {
		return false
	}
	return d.present[h.Index] && d.gens[h.Index] == h.Gen
}

// Remove detaches the component from h.
func (d *Dense[T]) Remove(h Handle) {
	if !d.Has(h) {
		return
	}
	var zero T
	d.vals[h.Index] = zero
	d.present[h.Index] = false
	d.count--
}

// Len returns the number of stored components.
func (d *Dense[T]) Len() int {
	return d.count
}

// Each calls fn for every stored component in ascending index order.
func (d *Dense[T]) Each(fn func(h Handle, v *T)) {
	for i := range d.vals {
		if d.present[i] {
			fn(Handle{Index: uint32(i), Gen: d.gens[i]}, &d.vals[i])
		}
	}
}

func (d *Dense[T]) grow(n int) {
	if n <= len(d.vals) {
		return
	}
	d.vals = append(d.vals, make([]T, n-len(d.vals))...)
	d.gens = append(d.gens, make([]uint32, n-len(d.gens))...)
	d.present = append(d.present, make([]bool, n-len(d.present))...)
}

// Sparse stores components for the few entities that carry them.
type Sparse[T any] struct {
	items map[uint32]sparseItem[T]
}

type sparseItem[T any] struct {
	gen uint32
	val T
}

// NewSparse creates an empty sparse store.
func NewSparse[T any]() *Sparse[T] {
	return &Sparse[T]{items: make(map[uint32]sparseItem[T])}
}

// Set attaches v to h.
func (s *Sparse[T]) Set(h Handle, v T) {
	if h.IsNull() {
		return
	}
	s.items[h.Index] = sparseItem[T]{gen: h.Gen, val: v}
}

// Get returns the component of h.
func (s *Sparse[T]) Get(h Handle) (T, bool) {
	it, ok := s.items[h.Index]
	if !ok || h.IsNull() || it.gen != h.Gen {
		var zero T
		return zero, false
	}
	return it.val, true
}

// Has reports whether h carries the component.
func (s *Sparse[T]) Has(h Handle) bool {
	_, ok := s.Get(h)
	return ok
}

// Remove detaches the component from h.
func (s *Sparse[T]) Remove(h Handle) {
	if s.Has(h) {
		delete(s.items, h.Index)
	}
}

// Len returns the number of stored components.
func (s *Sparse[T]) Len() int {
	return len(s.items)
}

// Each calls fn for every stored component in ascending index order.
func (s *Sparse[T]) Each(fn func(h Handle, v T)) {
	keys := make([]uint32, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		it := s.items[k]
		fn(Handle{Index: k, Gen: it.gen}, it.val)
	}
}
