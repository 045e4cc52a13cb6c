package godual

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
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Number is a float64 that encodes NaN and ±Inf as the JSON strings
// "NaN", "+Inf" and "-Inf".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// DualResult is the JSON shape of an evaluated Dual.
type DualResult struct {
	X          Number `json:"x"`
	Value      Number `json:"value"`
	Derivative Number `json:"derivative"`
}

type TangentResult struct {
	Slope     Number `json:"slope"`
	Intercept Number `json:"intercept"`
}

type NewtonResult struct {
	Root       Number `json:"root"`
	Iterations int    `json:"iterations"`
}

type RootsResult struct {
	Roots []Number `json:"roots"`
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("param %s must be a non-empty string", key)
		}
		return s, nil
	}
	getNumber := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, _, err := parseNumber(v)
		if err != nil {
			return 0, fmt.Errorf("param %s: %w", key, err)
		}
		return f, nil
	}
	getNumbers := func(key string) ([]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		out := make([]float64, len(raw))
		for i, r := range raw {
			f, _, err := parseNumber(r)
			if err != nil {
				return nil, fmt.Errorf("param %s[%d]: %w", key, i, err)
			}
			out[i] = f
		}
		return out, nil
	}
	getFunc := func() (Func, Node, error) {
		v, ok := req.Params["expr"]
		if !ok {
			return nil, nil, fmt.Errorf("missing param: expr")
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("invalid type for param expr")
		}
		node, err := ParseExpr(m)
		if err != nil {
			return nil, nil, err
		}
		varName, err := getString("var")
		if err != nil {
			return nil, nil, err
		}
		consts := map[string]float64{}
		if raw, ok := req.Params["consts"]; ok {
			cm, ok := raw.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("param consts must be an object")
			}
			for name, cv := range cm {
				f, _, err := parseNumber(cv)
				if err != nil {
					return nil, nil, fmt.Errorf("param consts.%s: %w", name, err)
				}
				consts[name] = f
			}
		}
		f, err := Compile(node, varName, consts)
		if err != nil {
			return nil, nil, err
		}
		return f, node, nil
	}
	optFloat := func(key string) float64 {
		f, _ := req.Params[key].(float64)
		return f
	}

	switch req.Tool {
	case "evaluate":
		f, _, err := getFunc()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		at, err := getNumber("at")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		y := f(Variable(at))
		return ToolResponse{
			Result: DualResult{X: Number(at), Value: Number(y.Value()), Derivative: Number(y.Derivative())},
			String: y.String(),
		}

	case "sample":
		f, _, err := getFunc()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		xs, err := getNumbers("points")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		points := Sample(f, xs)
		out := make([]DualResult, len(points))
		for i, p := range points {
			out[i] = DualResult{X: Number(p.X), Value: Number(p.Value), Derivative: Number(p.Derivative)}
		}
		return ToolResponse{Result: out}

	case "tangent_line":
		f, node, err := getFunc()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		at, err := getNumber("at")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		slope, intercept := TangentLine(f, at)
		return ToolResponse{
			Result: TangentResult{Slope: Number(slope), Intercept: Number(intercept)},
			String: fmt.Sprintf("tangent of %s at %v: y = %v*t + %v", node, at, slope, intercept),
		}

	case "newton":
		f, _, err := getFunc()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		x0, err := getNumber("x0")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		root, iters, err := NewtonRoot(f, x0, optFloat("tol"), int(optFloat("max_iter")))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{
			Result: NewtonResult{Root: Number(root), Iterations: iters},
			String: strconv.FormatFloat(root, 'g', -1, 64),
		}

	case "find_roots":
		f, _, err := getFunc()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		roots := FindRoots(f, optFloat("range"), optFloat("tol"), int(optFloat("max_iter")))
		out := make([]Number, len(roots))
		for i, r := range roots {
			out[i] = Number(r)
		}
		return ToolResponse{Result: RootsResult{Roots: out}}

	case "mcp_spec":
		var spec interface{}
		if err := json.Unmarshal([]byte(MCPToolSpec()), &spec); err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: spec}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	exprProps := map[string]string{"expr": "object", "var": "string", "consts": "object"}
	with := func(extra map[string]string) map[string]string {
		out := map[string]string{}
		for k, v := range exprProps {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	tools := []map[string]interface{}{
		ts("evaluate", "Value and first derivative of expr at var=at", []string{"expr", "var", "at"}, with(map[string]string{"at": "number"})),
		ts("sample", "Value/derivative table over points (number[])", []string{"expr", "var", "points"}, with(map[string]string{"points": "array"})),
		ts("tangent_line", "Tangent line slope and intercept at var=at", []string{"expr", "var", "at"}, with(map[string]string{"at": "number"})),
		ts("newton", "Newton root from x0. Optional: tol, max_iter", []string{"expr", "var", "x0"}, with(map[string]string{"x0": "number", "tol": "number", "max_iter": "integer"})),
		ts("find_roots", "Multi-start Newton scan over [-range, range]. Optional: range, tol, max_iter", []string{"expr", "var"}, with(map[string]string{"range": "number", "tol": "number", "max_iter": "integer"})),
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
