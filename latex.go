package goderiv

import "strings"

// ============================================================
// LaTeX rendering
// ============================================================

func (a *Add) LaTeX() string {
	parts := make([]string, 0, 2)
	for _, t := range FlattenAdd(a) {
		parts = append(parts, t.LaTeX())
	}
	return strings.Join(parts, " + ")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, 0, 2)
	for _, f := range FlattenMul(m) {
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, `\left(`+f.LaTeX()+`\right)`)
		} else {
			parts = append(parts, f.LaTeX())
		}
	}
	return strings.Join(parts, ` \cdot `)
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = `\left(` + baseStr + `\right)`
	case Int:
		if b < 0 {
			baseStr = `\left(` + baseStr + `\right)`
		}
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (f *Func) LaTeX() string {
	return `\` + f.kind.String() + `\left(` + f.arg.LaTeX() + `\right)`
}
