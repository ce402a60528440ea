// Package main provides the rulecheck-mcp binary, an MCP stdio server so
// rule-authoring agents can verify their output.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	rcmcp "github.com/lumaplay/rulecheck/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	s := rcmcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
