// Package mcpserver exposes the godual tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/njchilds90/godual"
)

const (
	serverName    = "godual"
	serverVersion = "0.1.0"
)

// EvaluateInput selects a point at which to evaluate an expression.
type EvaluateInput struct {
	Expr   map[string]any     `json:"expr" jsonschema:"JSON expression tree"`
	Var    string             `json:"var" jsonschema:"name of the differentiation variable"`
	At     float64            `json:"at" jsonschema:"point of evaluation"`
	Consts map[string]float64 `json:"consts,omitempty" jsonschema:"values for the other symbols"`
}

// SampleInput evaluates an expression over several points.
type SampleInput struct {
	Expr   map[string]any     `json:"expr" jsonschema:"JSON expression tree"`
	Var    string             `json:"var" jsonschema:"name of the differentiation variable"`
	Points []float64          `json:"points" jsonschema:"points of evaluation"`
	Consts map[string]float64 `json:"consts,omitempty" jsonschema:"values for the other symbols"`
}

// NewtonInput starts Newton's method from X0.
type NewtonInput struct {
	Expr    map[string]any     `json:"expr" jsonschema:"JSON expression tree"`
	Var     string             `json:"var" jsonschema:"name of the differentiation variable"`
	X0      float64            `json:"x0" jsonschema:"starting point"`
	Tol     float64            `json:"tol,omitempty" jsonschema:"residual tolerance"`
	MaxIter int                `json:"max_iter,omitempty" jsonschema:"iteration limit"`
	Consts  map[string]float64 `json:"consts,omitempty" jsonschema:"values for the other symbols"`
}

// FindRootsInput scans [-Range, Range] for roots.
type FindRootsInput struct {
	Expr    map[string]any     `json:"expr" jsonschema:"JSON expression tree"`
	Var     string             `json:"var" jsonschema:"name of the differentiation variable"`
	Range   float64            `json:"range,omitempty" jsonschema:"half-width of the search interval"`
	Tol     float64            `json:"tol,omitempty" jsonschema:"residual tolerance"`
	MaxIter int                `json:"max_iter,omitempty" jsonschema:"iteration limit"`
	Consts  map[string]float64 `json:"consts,omitempty" jsonschema:"values for the other symbols"`
}

// NewServer builds an MCP server with every godual tool registered.
func NewServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate",
		Description: "Value and first derivative of an expression at a point",
	}, toolHandler[EvaluateInput]("evaluate"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tangent_line",
		Description: "Tangent line slope and intercept at a point",
	}, toolHandler[EvaluateInput]("tangent_line"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "sample",
		Description: "Value/derivative table over a list of points",
	}, toolHandler[SampleInput]("sample"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "newton",
		Description: "Newton root finding with exact derivatives",
	}, toolHandler[NewtonInput]("newton"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_roots",
		Description: "Multi-start Newton scan for distinct roots",
	}, toolHandler[FindRootsInput]("find_roots"))
	return server
}

// toolHandler forwards typed MCP input to godual.HandleToolCall and returns
// the JSON response as text content.
func toolHandler[In any](tool string) mcp.ToolHandlerFor[In, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		params, err := toParams(input)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s params: %w", tool, err)
		}
		resp := godual.HandleToolCall(godual.ToolRequest{Tool: tool, Params: params})
		body, err := json.Marshal(resp)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s response: %w", tool, err)
		}
		return &mcp.CallToolResult{
			IsError: resp.Error != "",
			Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		}, nil, nil
	}
}

func toParams(input any) (map[string]interface{}, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// Run serves the tools over transport until ctx is done.
func Run(ctx context.Context, transport mcp.Transport) error {
	if transport == nil {
		return fmt.Errorf("MCP transport is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := NewServer().Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
