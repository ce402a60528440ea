// Package mcp exposes the verification and repair engine as MCP tools so
// rule-authoring agents can validate their output before shipping it.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with rulecheck tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"rulecheck",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("rulecheck/validate",
			mcp.WithDescription("Validate a minigame rule-set file (JSON or YAML)"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the rule-set file")),
			mcp.WithString("vocab", mcp.Description("Path to a capability table YAML (defaults to the built-in table)")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("rulecheck/simulate",
			mcp.WithDescription("Prove or disprove that the rule-set's success state is reachable"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the rule-set file")),
		),
		HandleSimulate,
	)

	s.AddTool(
		mcp.NewTool("rulecheck/repair",
			mcp.WithDescription("Validate and repair a rule-set: deterministic fixes applied, design failures reported as a regeneration brief"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the rule-set file")),
			mcp.WithString("vocab", mcp.Description("Path to a capability table YAML (defaults to the built-in table)")),
			mcp.WithString("context", mcp.Description("Free-text game description included in a regeneration brief")),
		),
		HandleRepair,
	)

	s.AddTool(
		mcp.NewTool("rulecheck/schema",
			mcp.WithDescription("Export the rule-set JSON Schema (Draft 2020-12)"),
		),
		HandleSchema,
	)

	return s
}
