package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

const tapGameJSON = `{
  "title": "Tap to Five",
  "layout": {"objects": [{"objectId": "obj1", "position": {"x": 0.5, "y": 0.5}}]},
  "counters": [{"id": "score", "initialValue": 0}],
  "rules": [
    {
      "id": "tap",
      "targetObjectId": "obj1",
      "trigger": {"conditions": [{"type": "touch", "target": "self", "touchType": "down"}]},
      "actions": [{"type": "counter", "counterName": "score", "operation": "add", "value": 1}]
    },
    {
      "id": "win",
      "trigger": {"conditions": [{"type": "counter", "counterName": "score", "comparison": "greaterOrEqual", "value": 5}]},
      "actions": [{"type": "success"}]
    },
    {
      "id": "timeout",
      "trigger": {"conditions": [{"type": "time", "seconds": 30}]},
      "actions": [{"type": "failure"}]
    }
  ],
  "assets": {"objects": [{"id": "obj1"}]}
}`

func writeRuleSet(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestHandleValidate_MissingPath(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleValidate_ValidRuleSet(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeRuleSet(t, tapGameJSON)}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"valid": true`) {
		t.Errorf("expected valid rule set, got:\n%s", text)
	}
}

func TestHandleValidate_ReportsErrors(t *testing.T) {
	broken := strings.Replace(tapGameJSON, `"x": 0.5`, `"x": 1.5`, 1)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeRuleSet(t, broken)}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "COORD_OUT_OF_RANGE") {
		t.Errorf("expected coordinate error, got:\n%s", text)
	}
}

func TestHandleValidate_MissingFile(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": filepath.Join(t.TempDir(), "nope.json")}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing file")
	}
}

func TestHandleSimulate_ReachableGame(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeRuleSet(t, tapGameJSON)}

	result, err := HandleSimulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"reachable": true`) {
		t.Errorf("expected reachable success, got:\n%s", text)
	}
}

func TestHandleRepair_ClampsCoordinate(t *testing.T) {
	broken := strings.Replace(tapGameJSON, `"x": 0.5`, `"x": 1.5`, 1)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeRuleSet(t, broken)}

	result, err := HandleRepair(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, "COORD_OUT_OF_RANGE") {
		t.Errorf("expected a coordinate repair in the audit trail, got:\n%s", text)
	}
	if !strings.Contains(text, `"success": true`) {
		t.Errorf("expected successful repair, got:\n%s", text)
	}
}

func TestHandleSchema_ExportsDraft(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := HandleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Error("expected schema export to succeed")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "$schema") {
		t.Errorf("expected a JSON Schema document, got:\n%s", text)
	}
}
