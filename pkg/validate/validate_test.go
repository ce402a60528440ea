package validate

import (
	"strings"
	"testing"

	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/vocab"
)

func fptr(v float64) *float64 { return &v }

// tapGame is the canonical well-formed fixture: tap obj1 five times to win,
// lose on timeout at 30s.
func tapGame() *schema.RuleSet {
	return &schema.RuleSet{
		Title: "Tap to five",
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
					{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "score", Comparison: "greaterOrEqual", Value: fptr(5)}},
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
		Assets: schema.AssetPlan{Objects: []schema.ObjectAsset{{ID: "obj1", Name: "Target"}}},
	}
}

func findCode(errs []*Error, code Code) *Error {
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	return nil
}

func TestValidRuleSetHasNoCriticals(t *testing.T) {
	errs := RuleSet(tapGame(), vocab.Default())
	if !Valid(errs) {
		t.Fatalf("expected valid rule set, got criticals: %v", Criticals(errs))
	}
}

func TestValidMeansZeroCriticals(t *testing.T) {
	errs := []*Error{
		{Severity: Warning, Code: CodeUnusedCounter},
		{Severity: Warning, Code: CodeNoFailure},
	}
	if !Valid(errs) {
		t.Errorf("warnings alone must not invalidate")
	}
	errs = append(errs, &Error{Severity: Critical, Code: CodeNoSuccess})
	if Valid(errs) {
		t.Errorf("a critical must invalidate")
	}
}

func TestEmptyConditionSuccessIsInstantWin(t *testing.T) {
	rs := tapGame()
	rs.Rules[1].Trigger.Conditions = nil

	errs := Semantics(rs)
	e := findCode(errs, CodeInstantWin)
	if e == nil {
		t.Fatalf("expected INSTANT_WIN, got %v", errs)
	}
	if e.Severity != Critical {
		t.Errorf("INSTANT_WIN severity = %s, want critical", e.Severity)
	}
	if e.RuleID != "win" {
		t.Errorf("INSTANT_WIN rule = %q, want win", e.RuleID)
	}
}

func TestCounterSatisfiedAtInitialValueIsInstantWin(t *testing.T) {
	rs := tapGame()
	rs.Counters[0].InitialValue = 5

	errs := Semantics(rs)
	e := findCode(errs, CodeInstantWin)
	if e == nil {
		t.Fatalf("expected INSTANT_WIN for score>=5 with initial 5, got %v", errs)
	}
	if !strings.Contains(e.Message, "score") {
		t.Errorf("message should name the counter: %q", e.Message)
	}
}

func TestLoseComparatorTableIsNarrower(t *testing.T) {
	rs := tapGame()
	// failure when score <= 3; score starts at 0, so this is true at t=0,
	// but "less" style comparators are outside the lose table.
	rs.Rules[2].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondCounter, Counter: &schema.CounterCondition{CounterName: "score", Comparison: "lessOrEqual", Value: fptr(3)}},
	}

	if e := findCode(Semantics(rs), CodeInstantLose); e != nil {
		t.Errorf("lessOrEqual failure condition must not be an instant lose: %v", e)
	}

	rs.Counters[0].InitialValue = 10
	rs.Rules[2].Trigger.Conditions[0].Counter.Comparison = "greaterOrEqual"
	if e := findCode(Semantics(rs), CodeInstantLose); e == nil {
		t.Errorf("greaterOrEqual failure condition true at t=0 must be an instant lose")
	}
}

func TestSuccessFailureConflictOnIdenticalSignature(t *testing.T) {
	rs := tapGame()
	rs.Rules = append(rs.Rules, schema.Rule{
		ID:             "lose-tap",
		TargetObjectID: "obj1",
		Trigger: schema.Trigger{Conditions: []schema.Condition{
			{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "self", TouchType: "down"}},
		}},
		Actions: []schema.Action{{Type: schema.ActFailure}},
	})
	rs.Rules[0].Actions = append(rs.Rules[0].Actions, schema.Action{Type: schema.ActSuccess})

	e := findCode(Semantics(rs), CodeSuccessFailureConflict)
	if e == nil {
		t.Fatalf("expected SUCCESS_FAILURE_CONFLICT")
	}
	if !strings.Contains(e.Message, "tap") || !strings.Contains(e.Message, "lose-tap") {
		t.Errorf("conflict message should name both rules: %q", e.Message)
	}
}

func TestSignatureResolvesSelfAndIgnoresOrder(t *testing.T) {
	a := schema.Rule{
		ID: "a", TargetObjectID: "obj1",
		Trigger: schema.Trigger{Conditions: []schema.Condition{
			{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "self", TouchType: "down"}},
			{Type: schema.CondGameState, GameState: &schema.GameStateCondition{State: "playing"}},
		}},
	}
	b := schema.Rule{
		ID: "b",
		Trigger: schema.Trigger{Conditions: []schema.Condition{
			{Type: schema.CondGameState, GameState: &schema.GameStateCondition{State: "playing"}},
			{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "obj1", TouchType: "down"}},
		}},
	}
	if triggerSignature(&a) != triggerSignature(&b) {
		t.Errorf("signatures differ:\n a=%s\n b=%s", triggerSignature(&a), triggerSignature(&b))
	}
}

func TestSameRuleContradiction(t *testing.T) {
	rs := tapGame()
	rs.Rules[1].Actions = append(rs.Rules[1].Actions, schema.Action{Type: schema.ActFailure})

	if findCode(Semantics(rs), CodeContradictoryActions) == nil {
		t.Errorf("rule firing both success and failure must be contradictory")
	}
}

func TestCounterUsageAudit(t *testing.T) {
	rs := tapGame()
	rs.Counters = append(rs.Counters,
		schema.Counter{ID: "orphan", InitialValue: 0},
		schema.Counter{ID: "writeonly", InitialValue: 0},
	)
	rs.Rules[0].Actions = append(rs.Rules[0].Actions, schema.Action{
		Type:    schema.ActCounter,
		Counter: &schema.CounterAction{CounterName: "writeonly", Operation: "increment"},
	})

	errs := Semantics(rs)
	if e := findCode(errs, CodeUnusedCounter); e == nil || e.Severity != Warning {
		t.Errorf("orphan counter should be an UNUSED_COUNTER warning, got %v", e)
	}
	if e := findCode(errs, CodeCounterNeverRead); e == nil || e.Severity != Warning {
		t.Errorf("write-only counter should be a COUNTER_NEVER_READ warning, got %v", e)
	}

	// Remove the mutating rule: score becomes read-but-never-written.
	rs = tapGame()
	rs.Rules[0].Actions = nil
	e := findCode(Semantics(rs), CodeCounterNeverModified)
	if e == nil || e.Severity != Critical {
		t.Fatalf("read-only counter should be a critical COUNTER_NEVER_MODIFIED, got %v", e)
	}
	if !strings.Contains(e.Message, "score") {
		t.Errorf("message should name the stuck counter: %q", e.Message)
	}
}

func TestUnreachableSuccessWhenNoMutatingRule(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].Actions = nil

	if findCode(Semantics(rs), CodeUnreachableSuccess) == nil {
		t.Errorf("success on an unmutated counter must be UNREACHABLE_SUCCESS")
	}
}

func TestUndefinedReferences(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].TargetObjectID = "ghost"
	rs.Rules[0].Trigger.Conditions[0].Touch.Target = "phantom"
	rs.Rules[0].Actions = append(rs.Rules[0].Actions,
		schema.Action{Type: schema.ActPlaySound, PlaySound: &schema.PlaySoundAction{SoundID: "silence"}},
		schema.Action{Type: schema.ActCounter, Counter: &schema.CounterAction{CounterName: "nope", Operation: "increment"}},
	)

	errs := Semantics(rs)
	for _, code := range []Code{CodeUndefinedObject, CodeUndefinedTarget, CodeUndefinedSound, CodeUndefinedCounter} {
		if findCode(errs, code) == nil {
			t.Errorf("expected %s, got %v", code, errs)
		}
	}
}

func TestReservedTargetsResolve(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].Trigger.Conditions[0].Touch.Target = "stage"

	if e := findCode(Semantics(rs), CodeUndefinedTarget); e != nil {
		t.Errorf("reserved target must resolve: %v", e)
	}
}

func TestAutoSuccessNeedsPlayerGatedFailure(t *testing.T) {
	rs := tapGame()
	// Success gated only by a timer; the only failure rule is also a timer.
	rs.Rules[1].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondTime, Time: &schema.TimeCondition{Seconds: fptr(10)}},
	}

	errs := Semantics(rs)
	if findCode(errs, CodeAutoSuccess) == nil {
		t.Errorf("timer-only success with no player-gated failure must be AUTO_SUCCESS")
	}
	if findCode(errs, CodeAutoFailure) == nil {
		t.Errorf("timer-only failure with no player-gated success must be AUTO_FAILURE")
	}

	// Gating the failure on a touch legitimizes the timed success.
	rs.Rules[2].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondTouch, Touch: &schema.TouchCondition{Target: "obj1", TouchType: "down"}},
	}
	errs = Semantics(rs)
	if e := findCode(errs, CodeAutoSuccess); e != nil {
		t.Errorf("player-gated failure should clear AUTO_SUCCESS: %v", e)
	}
}

func TestPlayerPathThroughCounterHop(t *testing.T) {
	// The win rule reads a counter mutated by a touch-gated rule: no warning.
	if e := findCode(Semantics(tapGame()), CodeNoPlayerActionPath); e != nil {
		t.Errorf("counter hop through a touch rule is a player path: %v", e)
	}

	// Mutate the counter from a timer instead: the path disappears.
	rs := tapGame()
	rs.Rules[0].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondTime, Time: &schema.TimeCondition{Interval: fptr(1)}},
	}
	e := findCode(Semantics(rs), CodeNoPlayerActionPath)
	if e == nil {
		t.Fatalf("expected NO_PLAYER_ACTION_PATH warning")
	}
	if e.Severity != Warning {
		t.Errorf("NO_PLAYER_ACTION_PATH severity = %s, want warning", e.Severity)
	}
}

func TestDragFollowRelaxesPositionConditions(t *testing.T) {
	rs := tapGame()
	rs.Assets.Objects[0].FollowsDrag = true
	rs.Rules[1].Trigger.Conditions = []schema.Condition{
		{Type: schema.CondPosition, Position: &schema.PositionCondition{
			Target: "obj1",
			Region: &schema.Region{X: 0.8, Y: 0.8, Width: 0.2, Height: 0.2},
		}},
	}

	errs := Semantics(rs)
	if e := findCode(errs, CodeNoPlayerActionPath); e != nil {
		t.Errorf("position on a drag-followed object is player input: %v", e)
	}
	if e := findCode(errs, CodeAutoSuccess); e != nil {
		t.Errorf("position condition is not automatic: %v", e)
	}
}

func TestMissingOutcomes(t *testing.T) {
	rs := tapGame()
	rs.Rules = rs.Rules[:1]

	errs := Semantics(rs)
	if e := findCode(errs, CodeNoSuccess); e == nil || e.Severity != Critical {
		t.Errorf("missing success must be critical, got %v", e)
	}

	rs = tapGame()
	rs.Rules = rs.Rules[:2]
	if e := findCode(Semantics(rs), CodeNoFailure); e == nil || e.Severity != Warning {
		t.Errorf("missing failure is only a warning, got %v", e)
	}
}

func TestFeatureTypeMembership(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].Trigger.Conditions = append(rs.Rules[0].Trigger.Conditions,
		schema.Condition{Type: "gesture"})
	rs.Rules[0].Actions = append(rs.Rules[0].Actions, schema.Action{Type: "explode"})

	errs := Features(rs, vocab.Default())
	if findCode(errs, CodeInvalidConditionType) == nil {
		t.Errorf("unknown condition type must be reported")
	}
	e := findCode(errs, CodeInvalidActionType)
	if e == nil {
		t.Fatalf("unknown action type must be reported")
	}
	if !strings.Contains(e.FieldPath, "rules[0].actions[") {
		t.Errorf("field path should locate the action: %q", e.FieldPath)
	}
}

func TestFeatureRangeChecks(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].Actions = append(rs.Rules[0].Actions,
		schema.Action{Type: schema.ActMove, Move: &schema.MoveAction{
			TargetID: "obj1",
			Movement: schema.Movement{Type: "straight", Speed: 0},
		}},
		schema.Action{Type: schema.ActMove, Move: &schema.MoveAction{
			TargetID: "obj1",
			Movement: schema.Movement{Type: "straight", Speed: 20},
		}},
		schema.Action{Type: schema.ActRandom, Random: &schema.RandomActionParams{Probability: fptr(1.5)}},
		schema.Action{Type: schema.ActAddScore, AddScore: &schema.AddScoreAction{Points: fptr(-10)}},
		schema.Action{Type: schema.ActAddScore, AddScore: &schema.AddScoreAction{}},
	)

	errs := Features(rs, vocab.Default())
	if e := findCode(errs, CodeInvalidSpeed); e == nil || e.Severity != Critical {
		t.Errorf("speed 0 must be critical, got %v", e)
	}
	if e := findCode(errs, CodeSpeedOutOfBand); e == nil || e.Severity != Warning {
		t.Errorf("speed 20 must be an advisory warning, got %v", e)
	}
	if findCode(errs, CodeInvalidProbability) == nil {
		t.Errorf("probability 1.5 must be reported")
	}
	if findCode(errs, CodeNegativeScore) == nil {
		t.Errorf("negative points must be reported")
	}
	if findCode(errs, CodeMissingScorePoints) == nil {
		t.Errorf("missing points must be reported")
	}
}

func TestLayoutCoordinateSeverities(t *testing.T) {
	rs := tapGame()
	rs.Layout.Objects[0].Position.X = 1.5
	rs.Assets.Objects[0].Position = &schema.Position{X: -0.2, Y: 0.5}

	errs := Features(rs, vocab.Default())
	if e := findCode(errs, CodeCoordOutOfRange); e == nil || e.Severity != Critical {
		t.Errorf("layout coordinate out of range must be critical, got %v", e)
	}
	if e := findCode(errs, CodeAssetCoordOutOfRange); e == nil || e.Severity != Warning {
		t.Errorf("asset initial position out of range is advisory, got %v", e)
	}
}

func TestMissingCounterValue(t *testing.T) {
	rs := tapGame()
	rs.Rules[1].Trigger.Conditions[0].Counter.Value = nil
	rs.Rules[0].Actions[0].Counter.Value = nil

	errs := Features(rs, vocab.Default())
	var count int
	for _, e := range errs {
		if e.Code == CodeMissingCounterValue {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 MISSING_COUNTER_VALUE (condition and add action), got %d: %v", count, errs)
	}

	// increment carries an implicit step of 1 and needs no value.
	rs.Rules[0].Actions[0].Counter.Operation = "increment"
	errs = Features(rs, vocab.Default())
	count = 0
	for _, e := range errs {
		if e.Code == CodeMissingCounterValue && strings.Contains(e.FieldPath, "actions") {
			count++
		}
	}
	if count != 0 {
		t.Errorf("increment without value must be accepted")
	}
}

func TestChecksAccumulate(t *testing.T) {
	rs := tapGame()
	rs.Rules[0].Trigger.Conditions[0].Touch.TouchType = "lick"
	rs.Layout.Objects[0].Position.Y = 2
	rs.Rules[0].Actions[0].Counter.CounterName = "ghost"

	errs := RuleSet(rs, vocab.Default())
	if findCode(errs, CodeInvalidTouchType) == nil ||
		findCode(errs, CodeCoordOutOfRange) == nil ||
		findCode(errs, CodeUndefinedCounter) == nil {
		t.Errorf("independent defects must all surface in one pass: %v", errs)
	}
}

func TestStructuralShortCircuit(t *testing.T) {
	_, errs := Bytes([]byte(`{"layout": "not-an-object"}`), vocab.Default())
	if len(errs) == 0 {
		t.Fatalf("expected structural errors")
	}
	for _, e := range errs {
		if e.Code != CodeStructural {
			t.Errorf("structural failure must not run content checks, got %s", e.Code)
		}
	}
}

func TestHintsCoverSemanticCodes(t *testing.T) {
	for _, code := range []Code{
		CodeInstantWin, CodeInstantLose, CodeAutoSuccess, CodeNoSuccess,
		CodeCounterNeverModified, CodeUnreachableSuccess,
	} {
		if HintFor(code) == "" {
			t.Errorf("code %s has no remediation hint", code)
		}
	}
}
