package report

import (
	"strings"
	"testing"

	"github.com/lumaplay/rulecheck/pkg/repair"
	"github.com/lumaplay/rulecheck/pkg/sim"
	"github.com/lumaplay/rulecheck/pkg/validate"
)

func TestErrorsListsCriticalsFirst(t *testing.T) {
	out := Errors([]*validate.Error{
		{Severity: validate.Warning, Code: validate.CodeUnusedCounter, Message: "counter orphan is never used"},
		{Severity: validate.Critical, Code: validate.CodeNoSuccess, Message: "no rule produces a success outcome"},
	})
	critIdx := strings.Index(out, "NO_SUCCESS")
	warnIdx := strings.Index(out, "UNUSED_COUNTER")
	if critIdx < 0 || warnIdx < 0 {
		t.Fatalf("both codes must appear:\n%s", out)
	}
	if critIdx > warnIdx {
		t.Errorf("criticals must be listed before warnings:\n%s", out)
	}
	if !strings.Contains(out, "1 critical, 1 warning") {
		t.Errorf("summary line missing:\n%s", out)
	}
}

func TestErrorsEmptyIsValid(t *testing.T) {
	if out := Errors(nil); !strings.Contains(out, "valid") {
		t.Errorf("empty error list should render as valid: %q", out)
	}
}

func TestSimulationRendersPathAndBlockers(t *testing.T) {
	out := Simulation(&sim.Report{
		Reachable:       true,
		RequiredActions: 3,
		SuccessPath: []sim.Step{
			{RuleID: "tap", Description: `fire rule "tap" (score -> 1)`},
		},
		Confidence: sim.ConfidenceHigh,
	})
	if !strings.Contains(out, "3 player action") || !strings.Contains(out, "high") {
		t.Errorf("unexpected rendering:\n%s", out)
	}

	out = Simulation(&sim.Report{
		Blockers:   []sim.Blocker{{RuleID: "win", Reason: `no rule modifies counter "score"`}},
		Confidence: sim.ConfidenceLow,
	})
	if !strings.Contains(out, "unreachable") || !strings.Contains(out, "score") {
		t.Errorf("blockers must be listed:\n%s", out)
	}
}

func TestRepairRendersAuditTrail(t *testing.T) {
	out := Repair(&repair.Result{
		Success: true,
		Applied: []repair.RepairAction{{
			Code:        validate.CodeCoordOutOfRange,
			Description: "clamp coordinate to [0,1]",
			FieldPath:   "layout.objects[0].position.x",
			Before:      "1.5",
			After:       "1",
		}},
	})
	if !strings.Contains(out, "1.5 -> 1") {
		t.Errorf("before/after must be rendered:\n%s", out)
	}
	if !strings.Contains(out, "layout.objects[0].position.x") {
		t.Errorf("field path must be rendered:\n%s", out)
	}
	if !strings.Contains(out, "repaired") {
		t.Errorf("success verdict missing:\n%s", out)
	}
}

func TestTruncateIsWidthAware(t *testing.T) {
	long := strings.Repeat("x", 200)
	if got := truncate(long, 10); len(got) > 13 {
		t.Errorf("truncate returned %d bytes", len(got))
	}
	short := "short"
	if truncate(short, 10) != short {
		t.Errorf("short strings must pass through")
	}
}
