package goderiv

import "math"

// ============================================================
// Numeric evaluation
// ============================================================

// Estimate evaluates t with X bound to x. Domain errors surface as NaN or
// ±Inf, following math package semantics.
func Estimate(t Term, x float64) float64 { return t.Estimate(x) }

func (n Int) Estimate(float64) float64 { return float64(n) }

func (c Const) Estimate(x float64) float64 {
	switch c {
	case E:
		return math.E
	case Pi:
		return math.Pi
	}
	return x
}

func (a *Add) Estimate(x float64) float64 { return a.left.Estimate(x) + a.right.Estimate(x) }
func (m *Mul) Estimate(x float64) float64 { return m.left.Estimate(x) * m.right.Estimate(x) }

func (p *Pow) Estimate(x float64) float64 {
	return math.Pow(p.base.Estimate(x), p.exp.Estimate(x))
}

func (f *Func) Estimate(x float64) float64 {
	v := f.arg.Estimate(x)
	switch f.kind {
	case Ln:
		return math.Log(v)
	case Sin:
		return math.Sin(v)
	case Cos:
		return math.Cos(v)
	}
	return math.NaN()
}
