package godual_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/godual"
)

func exprParam(t *testing.T, src string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("bad test JSON: %v", err)
	}
	return m
}

// roundTrip encodes a response the way the HTTP server does and decodes it
// back into generic JSON.
func roundTrip(t *testing.T, resp godual.ToolResponse) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return out
}

// ============================================================
// MCP tool tests
// ============================================================

func TestTool_Evaluate(t *testing.T) {
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool:   "evaluate",
		Params: map[string]interface{}{"expr": exprParam(t, cosXSquared), "var": "x", "at": 5.0},
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	r, ok := resp.Result.(godual.DualResult)
	if !ok {
		t.Fatalf("want DualResult, got %T", resp.Result)
	}
	if !approx(float64(r.Derivative), 1.3235175009777302) {
		t.Errorf("want derivative 1.3235175009777302, got %v", r.Derivative)
	}
	if resp.String == "" {
		t.Error("want string form")
	}
}

func TestTool_Evaluate_NaNEncodes(t *testing.T) {
	sqrt := `{"type":"func","name":"sqrt","arg":{"type":"sym","name":"x"}}`
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool:   "evaluate",
		Params: map[string]interface{}{"expr": exprParam(t, sqrt), "var": "x", "at": -1.0},
	})
	out := roundTrip(t, resp)
	result := out["result"].(map[string]interface{})
	if result["value"] != "NaN" {
		t.Errorf("want \"NaN\", got %v", result["value"])
	}
}

func TestTool_Sample(t *testing.T) {
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool: "sample",
		Params: map[string]interface{}{
			"expr":   exprParam(t, `{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"3"}}`),
			"var":    "x",
			"points": []interface{}{1.0, 2.0, "3"},
		},
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	rows := resp.Result.([]godual.DualResult)
	if len(rows) != 3 || rows[2].Value != 27 || rows[2].Derivative != 27 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestTool_TangentLine(t *testing.T) {
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool: "tangent_line",
		Params: map[string]interface{}{
			"expr": exprParam(t, `{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"2"}}`),
			"var":  "x",
			"at":   3.0,
		},
	})
	r := resp.Result.(godual.TangentResult)
	if r.Slope != 6 || r.Intercept != -9 {
		t.Errorf("want (6, -9), got %+v", r)
	}
}

func TestTool_Newton(t *testing.T) {
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool: "newton",
		Params: map[string]interface{}{
			"expr": exprParam(t, `{"type":"sub","left":{"type":"func","name":"cos","arg":{"type":"sym","name":"x"}},"right":{"type":"sym","name":"x"}}`),
			"var":  "x",
			"x0":   1.0,
		},
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	r := resp.Result.(godual.NewtonResult)
	if math.Abs(float64(r.Root)-0.7390851332151607) > 1e-9 {
		t.Errorf("want 0.739085..., got %v", r.Root)
	}
}

func TestTool_FindRoots(t *testing.T) {
	resp := godual.HandleToolCall(godual.ToolRequest{
		Tool: "find_roots",
		Params: map[string]interface{}{
			"expr":   exprParam(t, `{"type":"sub","left":{"type":"mul","factors":[{"type":"sym","name":"x"},{"type":"sym","name":"x"}]},"right":{"type":"sym","name":"c"}}`),
			"var":    "x",
			"consts": map[string]interface{}{"c": 9.0},
			"range":  10.0,
		},
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	r := resp.Result.(godual.RootsResult)
	if len(r.Roots) != 2 || math.Abs(float64(r.Roots[1])-3) > 1e-9 {
		t.Errorf("want [-3 3], got %v", r.Roots)
	}
}

func TestTool_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  godual.ToolRequest
		want string
	}{
		{"unknown tool", godual.ToolRequest{Tool: "integrate"}, "unknown tool"},
		{"missing expr", godual.ToolRequest{Tool: "evaluate", Params: map[string]interface{}{}}, "missing param: expr"},
		{"missing var", godual.ToolRequest{Tool: "evaluate", Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "sym", "name": "x"},
		}}, "missing param: var"},
		{"missing at", godual.ToolRequest{Tool: "evaluate", Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "sym", "name": "x"}, "var": "x",
		}}, "missing param: at"},
		{"unbound", godual.ToolRequest{Tool: "evaluate", Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "sym", "name": "y"}, "var": "x", "at": 1.0,
		}}, "unbound symbol"},
		{"newton zero slope", godual.ToolRequest{Tool: "newton", Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "num", "value": "1"}, "var": "x", "x0": 1.0,
		}}, "derivative vanished"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := godual.HandleToolCall(tt.req)
			if !strings.Contains(resp.Error, tt.want) {
				t.Errorf("want error containing %q, got %q", tt.want, resp.Error)
			}
		})
	}
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(godual.MCPToolSpec()), &spec); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range spec.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"evaluate", "sample", "tangent_line", "newton", "find_roots", "mcp_spec"} {
		if !names[want] {
			t.Errorf("spec missing tool %s", want)
		}
	}
}

func TestNumber_JSON(t *testing.T) {
	b, err := json.Marshal([]godual.Number{1.5, godual.Number(math.Inf(-1))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[1.5,"-Inf"]` {
		t.Errorf("got %s", b)
	}
	var back []godual.Number
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0] != 1.5 || !math.IsInf(float64(back[1]), -1) {
		t.Errorf("got %v", back)
	}
}
