package sim

import (
	"strings"
	"testing"

	"github.com/lumaplay/rulecheck/pkg/schema"
)

func fptr(v float64) *float64 { return &v }

func tapGame(target float64) *schema.RuleSet {
	return &schema.RuleSet{
		Layout: schema.Layout{Objects: []schema.LayoutObject{
			{ObjectID: "obj1", Position: schema.Position{X: 0.5, Y: 0.5}},
		}},
		Counters: []schema.Counter{{ID: "score", InitialValue: 0}},
		Rules: []schema.Rule{
			{
				ID:             "tap",
				TargetObjectID: "obj1",
				Trigger: schema.Trigger{Conditions: []schema.Condition{
					{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "self", TouchType: "down"}},
				}},
				Actions: []schema.Action{
					{Type: schema.ActCounter, Counter: &schema.CounterAction{CounterName: "score", Operation: "add", Value: fptr(1)}},
				},
			},
			{
				ID: "win",
				Trigger: schema.Trigger{Conditions: []schema.Condition{
					{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "score", Comparison: "greaterOrEqual", Value: fptr(target)}},
				}},
				Actions: []schema.Action{{Type: schema.ActSuccess}},
			},
			{
				ID: "timeout",
				Trigger: schema.Trigger{Conditions: []schema.Condition{
					{Type: schema.CondTime, Time: &schema.TimeCondition{Seconds: fptr(30)}},
				}},
				Actions: []schema.Action{{Type: schema.ActFailure}},
			},
		},
		Assets: schema.AssetPlan{Objects: []schema.ObjectAsset{{ID: "obj1"}}},
	}
}

func TestTapToFiveIsReachable(t *testing.T) {
	rep := Simulate(tapGame(5))
	if !rep.Reachable {
		t.Fatalf("expected reachable, got blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 5 {
		t.Errorf("RequiredActions = %d, want 5", rep.RequiredActions)
	}
	if len(rep.SuccessPath) != 5 {
		t.Errorf("SuccessPath has %d steps, want 5", len(rep.SuccessPath))
	}
	for _, s := range rep.SuccessPath {
		if s.RuleID != "tap" {
			t.Errorf("path step fired rule %q, want tap", s.RuleID)
		}
		if s.Target != "obj1" {
			t.Errorf("path step target %q, want obj1", s.Target)
		}
	}
	if rep.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high", rep.Confidence)
	}
	if rep.Summary == "" {
		t.Errorf("summary must be populated")
	}
}

func TestSimulateDoesNotMutateInput(t *testing.T) {
	rs := tapGame(5)
	Simulate(rs)
	if rs.Counters[0].InitialValue != 0 {
		t.Errorf("input counter mutated")
	}
	if got := len(rs.Rules[0].Actions); got != 1 {
		t.Errorf("input rules mutated, %d actions", got)
	}
}

func TestUnreachableWithoutMutatingRule(t *testing.T) {
	rs := tapGame(5)
	rs.Rules[0].Actions = nil

	rep := Simulate(rs)
	if rep.Reachable {
		t.Fatalf("expected unreachable")
	}
	if len(rep.Blockers) == 0 {
		t.Fatalf("expected a blocker")
	}
	b := rep.Blockers[0]
	if b.CounterName != "score" {
		t.Errorf("blocker counter = %q, want score", b.CounterName)
	}
	if !strings.Contains(b.Reason, "score") {
		t.Errorf("blocker reason should name the counter: %q", b.Reason)
	}
	if rep.Confidence != ConfidenceLow {
		t.Errorf("confidence = %s, want low", rep.Confidence)
	}
}

func TestHideSideEffectBlocksFurtherTaps(t *testing.T) {
	rs := tapGame(5)
	rs.Rules[0].Actions = append(rs.Rules[0].Actions, schema.Action{
		Type: schema.ActHide,
		Hide: &schema.HideAction{TargetID: "self"},
	})

	rep := Simulate(rs)
	if rep.Reachable {
		t.Fatalf("expected unreachable: the first tap hides the target")
	}
	found := false
	for _, b := range rep.Blockers {
		if strings.Contains(b.Reason, "hidden") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a hidden-trigger blocker, got %v", rep.Blockers)
	}
}

func TestCounterStartingPastTarget(t *testing.T) {
	rs := tapGame(3)
	rs.Counters[0].InitialValue = 5
	rs.Rules[1].Trigger.Conditions[0].Counter.Comparison = "equals"

	rep := Simulate(rs)
	if rep.Reachable {
		t.Fatalf("expected unreachable: only an increasing rule exists")
	}
	if len(rep.Blockers) == 0 || !strings.Contains(rep.Blockers[0].Reason, "past target") {
		t.Errorf("expected a past-target blocker, got %v", rep.Blockers)
	}
}

func TestDecreasingComparatorUsesDecrementingRule(t *testing.T) {
	rs := tapGame(5)
	rs.Counters[0].InitialValue = 3
	rs.Rules[1].Trigger.Conditions[0].Counter = &schema.CounterCondition{
		CounterName: "score", Comparison: "lessOrEqual", Value: fptr(0),
	}
	rs.Rules[0].Actions[0].Counter.Operation = "subtract"

	rep := Simulate(rs)
	if !rep.Reachable {
		t.Fatalf("expected reachable via subtraction, blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 3 {
		t.Errorf("RequiredActions = %d, want 3", rep.RequiredActions)
	}
}

func TestStrictGreaterComparatorNeedsOneExtraTap(t *testing.T) {
	rs := tapGame(5)
	rs.Rules[1].Trigger.Conditions[0].Counter.Comparison = "greater"

	rep := Simulate(rs)
	if !rep.Reachable {
		t.Fatalf("expected reachable, got blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 6 {
		t.Errorf("RequiredActions = %d, want 6 for score > 5", rep.RequiredActions)
	}
}

func TestStrictLessComparatorOvershootsByOne(t *testing.T) {
	rs := tapGame(5)
	rs.Counters[0].InitialValue = 5
	rs.Rules[1].Trigger.Conditions[0].Counter = &schema.CounterCondition{
		CounterName: "score", Comparison: "less", Value: fptr(3),
	}
	rs.Rules[0].Actions[0].Counter.Operation = "subtract"

	rep := Simulate(rs)
	if !rep.Reachable {
		t.Fatalf("expected reachable via subtraction, blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 3 {
		t.Errorf("RequiredActions = %d, want 3 for score < 3 from 5", rep.RequiredActions)
	}
}

func TestOrTriggerSatisfiedByOneDrivableDisjunct(t *testing.T) {
	rs := tapGame(5)
	rs.Rules[1].Trigger.Operator = schema.OpOr
	rs.Rules[1].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "ghost", Comparison: "greaterOrEqual", Value: fptr(1)}},
		{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "score", Comparison: "greaterOrEqual", Value: fptr(2)}},
	}

	rep := Simulate(rs)
	if !rep.Reachable {
		t.Fatalf("expected reachable through the second disjunct, blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 2 {
		t.Errorf("RequiredActions = %d, want 2", rep.RequiredActions)
	}
	if len(rep.Blockers) != 0 {
		t.Errorf("a satisfied disjunct must not leave blockers: %v", rep.Blockers)
	}
}

func TestFirstConstructiblePathWins(t *testing.T) {
	rs := tapGame(2)
	// A second, cheaper success rule placed after the first must not be picked.
	rs.Rules = append(rs.Rules, schema.Rule{
		ID: "win2",
		Trigger: schema.Trigger{Conditions: []schema.Condition{
			{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "score", Comparison: "greaterOrEqual", Value: fptr(1)}},
		}},
		Actions: []schema.Action{{Type: schema.ActSuccess}},
	})

	rep := Simulate(rs)
	if !rep.Reachable || rep.RequiredActions != 2 {
		t.Errorf("first success rule in order must be reported, got %d actions", rep.RequiredActions)
	}
}

func TestFlagConditionPath(t *testing.T) {
	rs := tapGame(5)
	rs.Rules[1].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondFlag, Flag: &schema.FlagCondition{FlagID: "armed", Value: true}},
	}
	rs.Rules[0].Actions = []schema.Action{
		{Type: schema.ActSetFlag, SetFlag: &schema.SetFlagAction{FlagID: "armed", Value: true}},
	}

	rep := Simulate(rs)
	if !rep.Reachable {
		t.Fatalf("expected reachable via setFlag, blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 1 {
		t.Errorf("RequiredActions = %d, want 1", rep.RequiredActions)
	}
}

func TestFailurePathsIncludeTimeoutAndRules(t *testing.T) {
	rep := Simulate(tapGame(5))
	if len(rep.FailurePaths) != 2 {
		t.Fatalf("expected timeout + 1 rule path, got %v", rep.FailurePaths)
	}
	if rep.FailurePaths[0].Kind != "timeout" {
		t.Errorf("first failure path must be the implicit timeout")
	}
	if rep.FailurePaths[1].RuleID != "timeout" || !strings.Contains(rep.FailurePaths[1].Description, "30") {
		t.Errorf("rule failure path should describe its trigger: %v", rep.FailurePaths[1])
	}
}

func TestConflictsDerivedStandalone(t *testing.T) {
	rs := tapGame(5)
	rs.Rules = append(rs.Rules,
		schema.Rule{
			ID:             "good-tap",
			TargetObjectID: "obj1",
			Trigger: schema.Trigger{Conditions: []schema.Condition{
				{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "self", TouchType: "down"}},
			}},
			Actions: []schema.Action{{Type: schema.ActSuccess}},
		},
		schema.Rule{
			ID:             "bad-tap",
			TargetObjectID: "obj1",
			Trigger: schema.Trigger{Conditions: []schema.Condition{
				{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "self", TouchType: "down"}},
			}},
			Actions: []schema.Action{{Type: schema.ActFailure}},
		},
	)

	rep := Simulate(rs)
	if len(rep.Conflicts) == 0 {
		t.Fatalf("expected a simultaneous-termination conflict")
	}
	c := rep.Conflicts[0]
	if c.Kind != "simultaneous-termination" || len(c.RuleIDs) != 2 {
		t.Errorf("unexpected conflict: %+v", c)
	}
}

func TestPermanentlyHiddenObjectIssue(t *testing.T) {
	rs := tapGame(5)
	rs.Rules = append(rs.Rules, schema.Rule{
		ID: "vanish",
		Trigger: schema.Trigger{Conditions: []schema.Condition{
			{Type: schema.CondTime, Time: &schema.TimeCondition{Seconds: fptr(1)}},
		}},
		Actions: []schema.Action{{Type: schema.ActHide, Hide: &schema.HideAction{TargetID: "obj1"}}},
	})

	rep := Simulate(rs)
	found := false
	for _, is := range rep.Issues {
		if strings.Contains(is.Message, "obj1") && strings.Contains(is.Message, "vanish") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a permanently-hidden issue naming obj1 and vanish, got %v", rep.Issues)
	}
}

func TestConfidenceMediumForLongPaths(t *testing.T) {
	rep := Simulate(tapGame(25))
	if !rep.Reachable {
		t.Fatalf("expected reachable, blockers: %v", rep.Blockers)
	}
	if rep.RequiredActions != 25 {
		t.Errorf("RequiredActions = %d, want 25", rep.RequiredActions)
	}
	if rep.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %s, want medium for >20 actions", rep.Confidence)
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	rs := tapGame(5)
	base := NewState(rs)
	clone := base.Clone()
	clone.Counters["score"] = 99
	clone.Hidden["obj1"] = true
	clone.Flags["f"] = true

	if base.Counters["score"] != 0 {
		t.Errorf("clone shares counter map")
	}
	if base.Hidden["obj1"] {
		t.Errorf("clone shares hidden set")
	}
	if base.Flags["f"] {
		t.Errorf("clone shares flag map")
	}
}

func TestGuardSourceRendering(t *testing.T) {
	c := schema.Condition{Type: schema.CondCounter, Counter: &schema.CounterCondition{
		CounterName: "score", Comparison: "greaterOrEqual", Value: fptr(5),
	}}
	src, ok := guardSource(&c)
	if !ok || src != `Counter("score") >= 5` {
		t.Errorf("guard source = %q (%t)", src, ok)
	}

	ev := newEvaluator()
	st := &State{Counters: map[string]float64{"score": 5}, Flags: map[string]bool{}}
	sat, guardable, err := ev.met(st, &c)
	if err != nil || !guardable || !sat {
		t.Errorf("met = (%t, %t, %v), want satisfied", sat, guardable, err)
	}
}
