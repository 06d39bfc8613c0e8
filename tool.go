package goderiv

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ToolLimits bounds the work a single tool call may request. Zero fields
// mean no limit.
type ToolLimits struct {
	MaxSize  int // largest accepted input tree, in nodes
	MaxOrder int // largest accepted n for diffn
}

// HandleToolCall runs req without limits.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallWithLimits(req, ToolLimits{})
}

// HandleToolCallWithLimits runs req. Engine panics (overflow, no fixed
// point) are reported in ToolResponse.Error.
func HandleToolCallWithLimits(req ToolRequest, limits ToolLimits) (resp ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = ToolResponse{Error: fmt.Sprint(r)}
		}
	}()

	getTerm := func(key string) (Term, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		t, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		if limits.MaxSize > 0 && Size(t) > limits.MaxSize {
			return nil, fmt.Errorf("param %s: expression has %d nodes, limit is %d", key, Size(t), limits.MaxSize)
		}
		return t, nil
	}
	getNumber := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		switch n := v.(type) {
		case float64:
			return n, nil
		case json.Number:
			return n.Float64()
		}
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	errResp := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "simplify":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		return termResponse(Simplify(t))

	case "diff":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		return termResponse(Diff(t))

	case "diffn":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		f, err := getNumber("n")
		if err != nil {
			return errResp(err)
		}
		if f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
			return errResp(fmt.Errorf("param n must be a non-negative integer"))
		}
		n := int(f)
		if limits.MaxOrder > 0 && n > limits.MaxOrder {
			return errResp(fmt.Errorf("param n: order %d exceeds limit %d", n, limits.MaxOrder))
		}
		return termResponse(DiffN(t, n))

	case "estimate":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		x, err := getNumber("x")
		if err != nil {
			return errResp(err)
		}
		v := Estimate(t, x)
		return ToolResponse{Result: floatResult(v), String: strconv.FormatFloat(v, 'g', -1, 64)}

	case "substitute":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		value, err := getTerm("value")
		if err != nil {
			return errResp(err)
		}
		return termResponse(Simplify(Substitute(t, value)))

	case "to_latex":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		return ToolResponse{Result: t.LaTeX(), LaTeX: t.LaTeX()}

	case "to_string":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		return ToolResponse{Result: t.String(), String: t.String()}

	case "size":
		t, err := getTerm("expr")
		if err != nil {
			return errResp(err)
		}
		return ToolResponse{Result: map[string]int{"size": Size(t), "depth": Depth(t)}}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func termResponse(t Term) ToolResponse {
	return ToolResponse{Result: t.toJSON(), LaTeX: t.LaTeX(), String: t.String()}
}

// floatResult keeps non-finite values representable in JSON.
func floatResult(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("simplify", "Simplify an expression to canonical form", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("diff", "Derivative d/dx, simplified", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("diffn", "nth derivative. Requires n (int)", []string{"expr", "n"}, map[string]string{"expr": "object", "n": "integer"}),
		ts("estimate", "Evaluate numerically at x", []string{"expr", "x"}, map[string]string{"expr": "object", "x": "number"}),
		ts("substitute", "Replace x with value and simplify", []string{"expr", "value"}, map[string]string{"expr": "object", "value": "object"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_string", "Fully parenthesised text form", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("size", "Node count and depth of the tree", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
