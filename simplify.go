package goderiv

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOverflow is the panic cause when integer folding leaves the int64 range.
	ErrOverflow = errors.New("goderiv: integer overflow")
	// ErrNoFixedPoint is the panic cause when Simplify exhausts its pass budget.
	ErrNoFixedPoint = errors.New("goderiv: simplification did not reach a fixed point")
)

// Pass budget for Simplify: minPasses + passesPerNode*Size(input).
const (
	minPasses     = 64
	passesPerNode = 4
)

// ============================================================
// Simplify — rewrite to a fixed point
// ============================================================

// Simplify rewrites t into canonical form by applying one rewrite step until
// the step no longer changes the tree. Every step fully simplifies the
// children it touches. It panics with ErrNoFixedPoint if the pass budget
// runs out and with ErrOverflow if integer folding overflows.
func Simplify(t Term) Term {
	return new(simplifier).simplify(t)
}

func simplifyWithin(t Term, budget int) Term {
	return new(simplifier).within(t, budget)
}

// simplifier memoizes canonical forms for the duration of one top-level
// call. Every key in done maps to its canonical form, and every canonical
// form maps to itself.
type simplifier struct {
	done termMap[Term]
}

func (s *simplifier) simplify(t Term) Term {
	return s.within(t, minPasses+passesPerNode*Size(t))
}

func (s *simplifier) within(t Term, budget int) Term {
	switch t.(type) {
	case Int, Const:
		return t
	}
	seen := []Term{t}
	for pass := 0; pass < budget; pass++ {
		if canon, ok := s.done.get(t); ok {
			return s.remember(seen, canon)
		}
		next := t.step(s)
		if Equal(next, t) {
			return s.remember(seen, next)
		}
		seen = append(seen, next)
		t = next
	}
	panic(fmt.Errorf("%w after %d passes: %s", ErrNoFixedPoint, budget, t))
}

func (s *simplifier) remember(seen []Term, canon Term) Term {
	for _, t := range seen {
		s.done.put(t, canon)
	}
	s.done.put(canon, canon)
	return canon
}

func (n Int) step(*simplifier) Term   { return n }
func (c Const) step(*simplifier) Term { return c }

// step collects like terms: every addend is split into a value and an integer
// coefficient, and coefficients of equal values are summed.
func (a *Add) step(s *simplifier) Term {
	var coeffs termMap[int64]
	for _, t := range FlattenAdd(a) {
		val, c := splitCoefficient(t)
		prev, _ := coeffs.get(val)
		coeffs.put(val, addInt(c, prev))
	}
	collapsePythagorean(&coeffs)

	var sum Term
	for _, e := range coeffs.entries {
		next := s.simplify(MulOf(e.key, N(e.val)))
		if sum == nil {
			sum = next
			continue
		}
		sum = foldSum(sum, next)
	}
	return sum
}

func splitCoefficient(t Term) (Term, int64) {
	m, ok := t.(*Mul)
	if !ok {
		return t, 1
	}
	if c, ok := m.right.(Int); ok {
		return m.left, int64(c)
	}
	if c, ok := m.left.(Int); ok {
		return m.right, int64(c)
	}
	return t, 1
}

// collapsePythagorean rewrites c*sin(x)^2 + c*cos(x)^2 to c. Only the
// variable itself as argument and exactly equal coefficients qualify.
func collapsePythagorean(coeffs *termMap[int64]) {
	sinSq := PowOf(SinOf(X), N(2))
	cosSq := PowOf(CosOf(X), N(2))
	cs, ok := coeffs.get(sinSq)
	if !ok {
		return
	}
	cc, ok := coeffs.get(cosSq)
	if !ok || cs != cc {
		return
	}
	coeffs.remove(sinSq)
	coeffs.remove(cosSq)
	prev, _ := coeffs.get(N(cs))
	coeffs.put(N(cs), addInt(1, prev))
}

func foldSum(x, y Term) Term {
	xi, xok := x.(Int)
	yi, yok := y.(Int)
	switch {
	case xok && xi == 0:
		return y
	case yok && yi == 0:
		return x
	case xok && yok:
		return N(addInt(int64(xi), int64(yi)))
	}
	return AddOf(x, y)
}

// step merges repeated bases by summing their exponents.
func (m *Mul) step(s *simplifier) Term {
	var exps termMap[Term]
	for _, t := range FlattenMul(m) {
		base, exp := splitExponent(t)
		if prev, ok := exps.get(base); ok {
			exps.put(base, AddOf(exp, prev))
		} else {
			exps.put(base, exp)
		}
	}

	var prod Term
	for _, e := range exps.entries {
		next := s.simplify(PowOf(e.key, e.val))
		if prod == nil {
			prod = next
			continue
		}
		prod = foldProduct(prod, next)
	}
	return prod
}

func splitExponent(t Term) (Term, Term) {
	if p, ok := t.(*Pow); ok {
		return p.base, p.exp
	}
	return t, N(1)
}

func foldProduct(x, y Term) Term {
	xi, xok := x.(Int)
	yi, yok := y.(Int)
	switch {
	case xok && xi == 0, yok && yi == 0:
		return N(0)
	case xok && xi == 1:
		return y
	case yok && yi == 1:
		return x
	case xok && yok:
		return N(mulInt(int64(xi), int64(yi)))
	}
	return MulOf(x, y)
}

func (p *Pow) step(s *simplifier) Term {
	base := s.simplify(p.base)
	exp := s.simplify(p.exp)
	switch {
	case isInt(exp, 0):
		// Checked before the zero base, so 0^0 is 1.
		return N(1)
	case isInt(base, 0):
		return N(0)
	case isInt(exp, 1):
		return base
	case isInt(base, 1):
		return N(1)
	}
	if base == Term(E) {
		if f, ok := exp.(*Func); ok && f.kind == Ln {
			return f.arg
		}
	}
	if b, ok := base.(Int); ok {
		if e, ok := exp.(Int); ok && e > 0 {
			return N(powInt(int64(b), int64(e)))
		}
	}
	return PowOf(base, exp)
}

func (f *Func) step(s *simplifier) Term {
	inner := s.simplify(f.arg)
	switch f.kind {
	case Ln:
		if p, ok := inner.(*Pow); ok {
			return MulOf(p.exp, LnOf(p.base))
		}
		if inner == Term(E) {
			return N(1)
		}
		if isInt(inner, 1) {
			return N(0)
		}
	case Cos:
		if isInt(inner, 0) {
			return N(1)
		}
		if inner == Term(Pi) {
			return N(-1)
		}
	case Sin:
		if isInt(inner, 0) || inner == Term(Pi) {
			return N(0)
		}
	}
	return &Func{kind: f.kind, arg: inner}
}

// ============================================================
// Checked int64 arithmetic
// ============================================================

func addInt(a, b int64) int64 {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		panic(fmt.Errorf("%w: %d + %d", ErrOverflow, a, b))
	}
	return s
}

func mulInt(a, b int64) int64 {
	p, ok := mul64(a, b)
	if !ok {
		panic(fmt.Errorf("%w: %d * %d", ErrOverflow, a, b))
	}
	return p
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	return p, p/b == a
}

// powInt computes base^exp for exp >= 0 by repeated squaring.
func powInt(base, exp int64) int64 {
	result, b := int64(1), base
	ok := true
	for e := exp; e > 0 && ok; {
		if e&1 == 1 {
			result, ok = mul64(result, b)
		}
		e >>= 1
		if e > 0 && ok {
			b, ok = mul64(b, b)
		}
	}
	if !ok {
		panic(fmt.Errorf("%w: %d ^ %d", ErrOverflow, base, exp))
	}
	return result
}
