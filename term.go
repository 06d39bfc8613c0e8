// Package goderiv computes symbolic derivatives of single-variable
// expressions and keeps them in a reduced canonical form.
//
// Design goals:
//   - Immutable expression trees with a total structural order
//   - Differentiation that canonicalizes every intermediate result
//   - Deterministic simplification to a fixed point
//   - JSON and LaTeX output for tool and agent integrations
package goderiv

import (
	"fmt"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

// Term is an immutable expression node. The set of implementations is
// closed: Int, Const, *Add, *Mul, *Pow and *Func.
type Term interface {
	Simplify() Term
	Diff() Term
	Estimate(x float64) float64
	Equal(other Term) bool
	String() string
	LaTeX() string

	rank() int
	step(s *simplifier) Term
	toJSON() map[string]interface{}
}

// Variant ranks, in the order used by Compare.
const (
	rankInt = iota
	rankE
	rankX
	rankPi
	rankAdd
	rankMul
	rankPow
	rankLn
	rankSin
	rankCos
)

// ============================================================
// Int — integer literal
// ============================================================

type Int int64

func N(i int64) Int { return Int(i) }

func (n Int) Simplify() Term        { return n }
func (n Int) Diff() Term            { return Diff(n) }
func (n Int) Equal(other Term) bool { return Compare(n, other) == 0 }
func (n Int) String() string        { return "(" + strconv.FormatInt(int64(n), 10) + ")" }
func (n Int) LaTeX() string         { return strconv.FormatInt(int64(n), 10) }
func (n Int) Int64() int64          { return int64(n) }
func (n Int) rank() int             { return rankInt }

func isInt(t Term, v int64) bool {
	n, ok := t.(Int)
	return ok && int64(n) == v
}

// ============================================================
// Const — e, pi and the variable x
// ============================================================

type Const uint8

const (
	E  Const = rankE
	X  Const = rankX
	Pi Const = rankPi
)

func (c Const) Simplify() Term        { return c }
func (c Const) Diff() Term            { return Diff(c) }
func (c Const) Equal(other Term) bool { return Compare(c, other) == 0 }
func (c Const) rank() int             { return int(c) }

func (c Const) String() string { return "(" + c.name() + ")" }

func (c Const) LaTeX() string {
	if c == Pi {
		return `\pi`
	}
	return c.name()
}

func (c Const) name() string {
	switch c {
	case E:
		return "e"
	case X:
		return "x"
	case Pi:
		return "pi"
	}
	panic(fmt.Sprintf("goderiv: unknown constant %d", uint8(c)))
}

// ============================================================
// Add — binary sum
// ============================================================

type Add struct{ left, right Term }

// AddOf folds terms left to right into nested binary sums, so AddOf(a, b, c)
// is (a + b) + c. The result is not simplified.
func AddOf(terms ...Term) Term {
	return foldBinary("AddOf", terms, func(l, r Term) Term { return &Add{left: l, right: r} })
}

// SubOf builds a + b*(-1).
func SubOf(a, b Term) Term { return AddOf(a, MulOf(b, N(-1))) }

func (a *Add) Simplify() Term        { return Simplify(a) }
func (a *Add) Diff() Term            { return Diff(a) }
func (a *Add) Equal(other Term) bool { return Compare(a, other) == 0 }
func (a *Add) String() string        { return "(" + a.left.String() + " + " + a.right.String() + ")" }
func (a *Add) Left() Term            { return a.left }
func (a *Add) Right() Term           { return a.right }
func (a *Add) rank() int             { return rankAdd }

// ============================================================
// Mul — binary product
// ============================================================

type Mul struct{ left, right Term }

// MulOf folds factors left to right into nested binary products.
func MulOf(factors ...Term) Term {
	return foldBinary("MulOf", factors, func(l, r Term) Term { return &Mul{left: l, right: r} })
}

// DivOf builds a * b^(-1).
func DivOf(a, b Term) Term { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Term        { return Simplify(m) }
func (m *Mul) Diff() Term            { return Diff(m) }
func (m *Mul) Equal(other Term) bool { return Compare(m, other) == 0 }
func (m *Mul) String() string        { return "(" + m.left.String() + " * " + m.right.String() + ")" }
func (m *Mul) Left() Term            { return m.left }
func (m *Mul) Right() Term           { return m.right }
func (m *Mul) rank() int             { return rankMul }

func foldBinary(name string, terms []Term, build func(l, r Term) Term) Term {
	if len(terms) == 0 {
		panic("goderiv: " + name + " needs at least one term")
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = build(acc, t)
	}
	return acc
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Term }

func PowOf(base, exp Term) Term { return &Pow{base: base, exp: exp} }

// SqrtOf builds t^(1/2), with 1/2 spelled as 1 * 2^(-1).
func SqrtOf(t Term) Term { return PowOf(t, DivOf(N(1), N(2))) }

func (p *Pow) Simplify() Term        { return Simplify(p) }
func (p *Pow) Diff() Term            { return Diff(p) }
func (p *Pow) Equal(other Term) bool { return Compare(p, other) == 0 }
func (p *Pow) String() string        { return "(" + p.base.String() + " ^ " + p.exp.String() + ")" }
func (p *Pow) Base() Term            { return p.base }
func (p *Pow) ExpTerm() Term         { return p.exp }
func (p *Pow) rank() int             { return rankPow }

// ============================================================
// Func — ln, sin and cos applications
// ============================================================

type FuncKind uint8

const (
	Ln FuncKind = iota
	Sin
	Cos
)

func (k FuncKind) String() string {
	switch k {
	case Ln:
		return "ln"
	case Sin:
		return "sin"
	case Cos:
		return "cos"
	}
	return "func" + strconv.Itoa(int(k))
}

type Func struct {
	kind FuncKind
	arg  Term
}

func LnOf(arg Term) Term  { return &Func{kind: Ln, arg: arg} }
func SinOf(arg Term) Term { return &Func{kind: Sin, arg: arg} }
func CosOf(arg Term) Term { return &Func{kind: Cos, arg: arg} }

// LogOf builds the logarithm of t in the given base as ln(t) / ln(base).
func LogOf(t, base Term) Term { return DivOf(LnOf(t), LnOf(base)) }

func (f *Func) Simplify() Term        { return Simplify(f) }
func (f *Func) Diff() Term            { return Diff(f) }
func (f *Func) Equal(other Term) bool { return Compare(f, other) == 0 }
func (f *Func) String() string        { return "(" + f.kind.String() + f.arg.String() + ")" }
func (f *Func) Kind() FuncKind        { return f.kind }
func (f *Func) FuncName() string      { return f.kind.String() }
func (f *Func) Arg() Term             { return f.arg }
func (f *Func) rank() int             { return rankLn + int(f.kind) }

// ============================================================
// Structural helpers
// ============================================================

// FlattenAdd returns the operands of the top-level chain of sums, left
// subtree first. A term that is not a sum flattens to itself.
func FlattenAdd(t Term) []Term { return flatten(t, nil, rankAdd) }

// FlattenMul returns the operands of the top-level chain of products.
func FlattenMul(t Term) []Term { return flatten(t, nil, rankMul) }

func flatten(t Term, out []Term, op int) []Term {
	switch v := t.(type) {
	case *Add:
		if op == rankAdd {
			return flatten(v.right, flatten(v.left, out, op), op)
		}
	case *Mul:
		if op == rankMul {
			return flatten(v.right, flatten(v.left, out, op), op)
		}
	}
	return append(out, t)
}

// Size returns the number of nodes in t.
func Size(t Term) int {
	switch v := t.(type) {
	case *Add:
		return 1 + Size(v.left) + Size(v.right)
	case *Mul:
		return 1 + Size(v.left) + Size(v.right)
	case *Pow:
		return 1 + Size(v.base) + Size(v.exp)
	case *Func:
		return 1 + Size(v.arg)
	}
	return 1
}

// Depth returns the height of t; leaves have depth 1.
func Depth(t Term) int {
	switch v := t.(type) {
	case *Add:
		return 1 + max(Depth(v.left), Depth(v.right))
	case *Mul:
		return 1 + max(Depth(v.left), Depth(v.right))
	case *Pow:
		return 1 + max(Depth(v.base), Depth(v.exp))
	case *Func:
		return 1 + Depth(v.arg)
	}
	return 1
}

// Substitute replaces every occurrence of X in t with value. The result is
// not simplified.
func Substitute(t, value Term) Term {
	switch v := t.(type) {
	case Const:
		if v == X {
			return value
		}
	case *Add:
		return &Add{left: Substitute(v.left, value), right: Substitute(v.right, value)}
	case *Mul:
		return &Mul{left: Substitute(v.left, value), right: Substitute(v.right, value)}
	case *Pow:
		return &Pow{base: Substitute(v.base, value), exp: Substitute(v.exp, value)}
	case *Func:
		return &Func{kind: v.kind, arg: Substitute(v.arg, value)}
	}
	return t
}

// ============================================================
// Top-level convenience functions
// ============================================================

func String(t Term) string { return t.String() }
func LaTeX(t Term) string  { return t.LaTeX() }
