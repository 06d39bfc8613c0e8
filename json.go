package goderiv

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes t as a JSON tree. Integers are encoded as strings so that
// the full int64 range survives decoders that read numbers as float64.
func ToJSON(t Term) (string, error) {
	b, err := json.Marshal(t.toJSON())
	return string(b), err
}

// ToJSONMap returns the JSON tree of t as generic maps, ready to embed in a
// larger document.
func ToJSONMap(t Term) map[string]interface{} { return t.toJSON() }

func (n Int) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "int", "value": strconv.FormatInt(int64(n), 10)}
}

func (c Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": c.name()}
}

func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "left": a.left.toJSON(), "right": a.right.toJSON()}
}

func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "left": m.left.toJSON(), "right": m.right.toJSON()}
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": f.kind.String(), "arg": f.arg.toJSON()}
}

// FromJSON decodes a tree produced by ToJSON (after json.Unmarshal into a
// map). Integer values may be strings or integral JSON numbers.
func FromJSON(data map[string]interface{}) (Term, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Term, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		t, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ, field, err)
		}
		return t, nil
	}
	pair := func(lf, rf string) (Term, Term, error) {
		l, err := sub(lf)
		if err != nil {
			return nil, nil, err
		}
		r, err := sub(rf)
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}

	switch typ {
	case "int":
		v, err := intValue(data["value"])
		if err != nil {
			return nil, fmt.Errorf("int: %w", err)
		}
		return N(v), nil
	case "e":
		return E, nil
	case "x":
		return X, nil
	case "pi":
		return Pi, nil
	case "add":
		l, r, err := pair("left", "right")
		if err != nil {
			return nil, err
		}
		return AddOf(l, r), nil
	case "mul":
		l, r, err := pair("left", "right")
		if err != nil {
			return nil, err
		}
		return MulOf(l, r), nil
	case "pow":
		b, e, err := pair("base", "exp")
		if err != nil {
			return nil, err
		}
		return PowOf(b, e), nil
	case "ln", "sin", "cos":
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return &Func{kind: funcKinds[typ], arg: arg}, nil
	}
	return nil, fmt.Errorf("unknown expression type %q", typ)
}

var funcKinds = map[string]FuncKind{"ln": Ln, "sin": Sin, "cos": Cos}

func intValue(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing \"value\"")
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q: %w", n, err)
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("value %v is not an int64", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	}
	return 0, fmt.Errorf("value must be a string or number, got %T", v)
}
