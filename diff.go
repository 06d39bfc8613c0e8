package goderiv

import "fmt"

// ============================================================
// Differentiation with respect to X
// ============================================================

// Diff returns the simplified derivative of t with respect to X. The rules
// are applied to the simplified form of t. The power rule uses
// d(u^v) = u^v * d(v*ln(u)), which assumes u > 0.
func Diff(t Term) Term {
	return new(simplifier).diff(t)
}

func (s *simplifier) diff(t Term) Term {
	var d Term
	switch v := s.simplify(t).(type) {
	case Int:
		d = N(0)
	case Const:
		if v == X {
			d = N(1)
		} else {
			d = N(0)
		}
	case *Add:
		d = AddOf(s.diff(v.left), s.diff(v.right))
	case *Mul:
		d = AddOf(MulOf(s.diff(v.left), v.right), MulOf(v.left, s.diff(v.right)))
	case *Pow:
		d = MulOf(t, s.diff(MulOf(v.exp, LnOf(v.base))))
	case *Func:
		switch v.kind {
		case Ln:
			d = DivOf(s.diff(v.arg), v.arg)
		case Sin:
			d = MulOf(s.diff(v.arg), CosOf(v.arg))
		case Cos:
			d = MulOf(N(-1), s.diff(v.arg), SinOf(v.arg))
		}
	}
	return s.simplify(d)
}

// DiffN returns the n-th derivative of t. DiffN(t, 0) is Simplify(t).
func DiffN(t Term, n int) Term {
	if n < 0 {
		panic(fmt.Sprintf("goderiv: negative derivative order %d", n))
	}
	s := new(simplifier)
	result := s.simplify(t)
	for i := 0; i < n; i++ {
		result = s.diff(result)
	}
	return result
}
