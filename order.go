package goderiv

import (
	"cmp"
	"slices"
)

// ============================================================
// Total order
// ============================================================

// Compare orders terms by variant (Int, E, X, Pi, Add, Mul, Pow, Ln, Sin,
// Cos), then by integer value, then by children left to right. It returns 0
// exactly when a and b are structurally equal.
func Compare(a, b Term) int {
	if ra, rb := a.rank(), b.rank(); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case Int:
		return cmp.Compare(av, b.(Int))
	case *Add:
		bv := b.(*Add)
		return comparePair(av.left, av.right, bv.left, bv.right)
	case *Mul:
		bv := b.(*Mul)
		return comparePair(av.left, av.right, bv.left, bv.right)
	case *Pow:
		bv := b.(*Pow)
		return comparePair(av.base, av.exp, bv.base, bv.exp)
	case *Func:
		return Compare(av.arg, b.(*Func).arg)
	}
	// Const: equal rank means the same constant.
	return 0
}

// Equal reports whether a and b have the same shape and leaf values.
func Equal(a, b Term) bool { return Compare(a, b) == 0 }

func comparePair(al, ar, bl, br Term) int {
	if c := Compare(al, bl); c != 0 {
		return c
	}
	return Compare(ar, br)
}

// ============================================================
// termMap — ordered map keyed by Term
// ============================================================

type termEntry[V any] struct {
	key Term
	val V
}

// termMap keeps its entries sorted by Compare so iteration order is the
// canonical term order.
type termMap[V any] struct {
	entries []termEntry[V]
}

func (m *termMap[V]) search(k Term) (int, bool) {
	return slices.BinarySearchFunc(m.entries, k, func(e termEntry[V], k Term) int {
		return Compare(e.key, k)
	})
}

func (m *termMap[V]) get(k Term) (V, bool) {
	if i, ok := m.search(k); ok {
		return m.entries[i].val, true
	}
	var zero V
	return zero, false
}

func (m *termMap[V]) put(k Term, v V) {
	i, ok := m.search(k)
	if ok {
		m.entries[i].val = v
		return
	}
	m.entries = slices.Insert(m.entries, i, termEntry[V]{key: k, val: v})
}

func (m *termMap[V]) remove(k Term) (V, bool) {
	i, ok := m.search(k)
	if !ok {
		var zero V
		return zero, false
	}
	v := m.entries[i].val
	m.entries = slices.Delete(m.entries, i, i+1)
	return v, true
}
