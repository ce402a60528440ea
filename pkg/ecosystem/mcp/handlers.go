package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lumaplay/rulecheck/pkg/repair"
	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/sim"
	"github.com/lumaplay/rulecheck/pkg/validate"
	"github.com/lumaplay/rulecheck/pkg/vocab"
)

// HandleValidate implements the rulecheck/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	v, err := vocabFor(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, err := schema.FileBytes(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	rs, errs := validate.Bytes(data, v)
	payload := map[string]any{
		"valid":  validate.Valid(errs),
		"errors": errs,
	}
	if rs != nil {
		payload["rules"] = len(rs.Rules)
	}
	return jsonResult(payload)
}

// HandleSimulate implements the rulecheck/simulate MCP tool.
func HandleSimulate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	rs, err := schema.LoadFile(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(sim.Simulate(rs))
}

// HandleRepair implements the rulecheck/repair MCP tool. The rewrite
// collaborator is not wired here; partial-regen errors needing judgment
// come back in the remaining list for the calling agent to resolve.
func HandleRepair(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	regenCtx, _ := args["context"].(string)

	v, err := vocabFor(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, err := schema.FileBytes(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	rs, errs := validate.Bytes(data, v)
	if rs == nil {
		return jsonResult(map[string]any{
			"success": false,
			"errors":  errs,
		})
	}

	eng := &repair.Engine{}
	res, err := eng.Run(ctx, rs, errs, regenCtx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(res)
}

// HandleSchema implements the rulecheck/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func vocabFor(args map[string]any) (*vocab.Vocabulary, error) {
	path, _ := args["vocab"].(string)
	if path == "" {
		return vocab.Default(), nil
	}
	v, err := vocab.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return v, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal result: %s", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
