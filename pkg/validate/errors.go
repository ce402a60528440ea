// Package validate implements the rule-set validation pipeline: structural
// shape first, then feature/parameter checks, then semantic consistency.
// All checks are total functions that accumulate coded, located errors;
// nothing here mutates or repairs the document.
package validate

import "fmt"

// Severity classifies a validation finding. A rule-set is valid exactly
// when it carries no critical error.
type Severity string

const (
	Critical Severity = "critical"
	Warning  Severity = "warning"
)

// Code is a stable error identifier. The repair engine keys its
// classification table on these, so codes never change meaning.
type Code string

const (
	// Structural
	CodeStructural Code = "STRUCTURAL_ERROR"

	// Feature & parameter (§ feature validator)
	CodeInvalidConditionType    Code = "INVALID_CONDITION_TYPE"
	CodeInvalidActionType       Code = "INVALID_ACTION_TYPE"
	CodeInvalidTouchType        Code = "INVALID_TOUCH_TYPE"
	CodeInvalidComparison       Code = "INVALID_COMPARISON"
	CodeInvalidCounterOperation Code = "INVALID_COUNTER_OPERATION"
	CodeInvalidMovementType     Code = "INVALID_MOVEMENT_TYPE"
	CodeInvalidCollisionType    Code = "INVALID_COLLISION_TYPE"
	CodeInvalidEffectType       Code = "INVALID_EFFECT_TYPE"
	CodeInvalidGameState        Code = "INVALID_GAME_STATE"
	CodeInvalidObjectState      Code = "INVALID_OBJECT_STATE"
	CodeMissingCounterValue     Code = "MISSING_COUNTER_VALUE"
	CodeMissingProbability      Code = "MISSING_PROBABILITY"
	CodeInvalidProbability      Code = "INVALID_PROBABILITY"
	CodeInvalidSpeed            Code = "INVALID_SPEED"
	CodeSpeedOutOfBand          Code = "SPEED_OUT_OF_BAND"
	CodeInvalidDuration         Code = "INVALID_DURATION"
	CodeDurationOutOfBand       Code = "DURATION_OUT_OF_BAND"
	CodeInvalidScale            Code = "INVALID_SCALE"
	CodeScaleOutOfBand          Code = "SCALE_OUT_OF_BAND"
	CodeInvalidTimeSeconds      Code = "INVALID_TIME_SECONDS"
	CodeInvalidTimeInterval     Code = "INVALID_TIME_INTERVAL"
	CodeInvalidVolume           Code = "INVALID_VOLUME"
	CodeCoordOutOfRange         Code = "COORD_OUT_OF_RANGE"
	CodeAssetCoordOutOfRange    Code = "ASSET_COORD_OUT_OF_RANGE"
	CodeNegativeScore           Code = "NEGATIVE_SCORE"
	CodeMissingScorePoints      Code = "MISSING_SCORE_POINTS"

	// Semantic consistency (§ semantic validator)
	CodeUndefinedObject        Code = "UNDEFINED_OBJECT"
	CodeUndefinedTarget        Code = "UNDEFINED_TARGET"
	CodeUndefinedCounter       Code = "UNDEFINED_COUNTER"
	CodeUndefinedSound         Code = "UNDEFINED_SOUND"
	CodeInstantWin             Code = "INSTANT_WIN"
	CodeInstantLose            Code = "INSTANT_LOSE"
	CodeAutoSuccess            Code = "AUTO_SUCCESS"
	CodeAutoFailure            Code = "AUTO_FAILURE"
	CodeNoPlayerActionPath     Code = "NO_PLAYER_ACTION_PATH"
	CodeNoSuccess              Code = "NO_SUCCESS"
	CodeNoFailure              Code = "NO_FAILURE"
	CodeSuccessFailureConflict Code = "SUCCESS_FAILURE_CONFLICT"
	CodeShowHideConflict       Code = "SHOW_HIDE_CONFLICT"
	CodeCounterConflict        Code = "COUNTER_CONFLICT"
	CodeContradictoryActions   Code = "CONTRADICTORY_ACTIONS"
	CodeUnusedCounter          Code = "UNUSED_COUNTER"
	CodeCounterNeverRead       Code = "COUNTER_NEVER_READ"
	CodeCounterNeverModified   Code = "COUNTER_NEVER_MODIFIED"
	CodeUnreachableSuccess     Code = "UNREACHABLE_SUCCESS"
	CodeObjectStateUnreachable Code = "OBJECT_STATE_UNREACHABLE"
)

// AllCodes enumerates every code the validators can emit. The repair
// engine's classification table is checked for completeness against it.
var AllCodes = []Code{
	CodeStructural,
	CodeInvalidConditionType, CodeInvalidActionType, CodeInvalidTouchType,
	CodeInvalidComparison, CodeInvalidCounterOperation, CodeInvalidMovementType,
	CodeInvalidCollisionType, CodeInvalidEffectType, CodeInvalidGameState,
	CodeInvalidObjectState, CodeMissingCounterValue, CodeMissingProbability,
	CodeInvalidProbability, CodeInvalidSpeed, CodeSpeedOutOfBand,
	CodeInvalidDuration, CodeDurationOutOfBand, CodeInvalidScale,
	CodeScaleOutOfBand, CodeInvalidTimeSeconds, CodeInvalidTimeInterval,
	CodeInvalidVolume, CodeCoordOutOfRange, CodeAssetCoordOutOfRange,
	CodeNegativeScore, CodeMissingScorePoints,
	CodeUndefinedObject, CodeUndefinedTarget, CodeUndefinedCounter,
	CodeUndefinedSound, CodeInstantWin, CodeInstantLose, CodeAutoSuccess,
	CodeAutoFailure, CodeNoPlayerActionPath, CodeNoSuccess, CodeNoFailure,
	CodeSuccessFailureConflict, CodeShowHideConflict, CodeCounterConflict,
	CodeContradictoryActions, CodeUnusedCounter, CodeCounterNeverRead,
	CodeCounterNeverModified, CodeUnreachableSuccess, CodeObjectStateUnreachable,
}

// Error is one validation finding. Location is structured (RuleID +
// FieldPath); the message is for humans and is never parsed.
type Error struct {
	Severity  Severity `json:"severity"`
	Code      Code     `json:"code"`
	Message   string   `json:"message"`
	Hint      string   `json:"hint,omitempty"`
	RuleID    string   `json:"ruleId,omitempty"`
	FieldPath string   `json:"fieldPath,omitempty"`
}

func (e *Error) Error() string {
	loc := e.FieldPath
	if loc == "" && e.RuleID != "" {
		loc = "rule " + e.RuleID
	}
	if loc != "" {
		return fmt.Sprintf("[%s] %s: %s at %s", e.Severity, e.Code, e.Message, loc)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

func criticalf(code Code, ruleID, fieldPath, msg string, args ...any) *Error {
	return &Error{
		Severity:  Critical,
		Code:      code,
		Message:   fmt.Sprintf(msg, args...),
		Hint:      HintFor(code),
		RuleID:    ruleID,
		FieldPath: fieldPath,
	}
}

func warningf(code Code, ruleID, fieldPath, msg string, args ...any) *Error {
	return &Error{
		Severity:  Warning,
		Code:      code,
		Message:   fmt.Sprintf(msg, args...),
		Hint:      HintFor(code),
		RuleID:    ruleID,
		FieldPath: fieldPath,
	}
}

// Valid reports overall validity: no critical error present.
func Valid(errs []*Error) bool {
	for _, e := range errs {
		if e.Severity == Critical {
			return false
		}
	}
	return true
}

// Criticals returns only the critical findings.
func Criticals(errs []*Error) []*Error {
	var out []*Error
	for _, e := range errs {
		if e.Severity == Critical {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns only the warning findings.
func Warnings(errs []*Error) []*Error {
	var out []*Error
	for _, e := range errs {
		if e.Severity == Warning {
			out = append(out, e)
		}
	}
	return out
}

// hints maps codes to fixed remediation guidance. The repair engine reuses
// this table when composing a regeneration brief.
var hints = map[Code]string{
	CodeInvalidConditionType:    "use one of the condition types listed in the capability table",
	CodeInvalidActionType:       "use one of the action types listed in the capability table",
	CodeInvalidTouchType:        "use a supported touchType (e.g. down, up, hold, drag)",
	CodeInvalidComparison:       "use a supported comparison operator",
	CodeInvalidCounterOperation: "use a supported counter operation (increment, decrement, add, subtract, set)",
	CodeInvalidMovementType:     "use a supported movement type",
	CodeInvalidCollisionType:    "use a supported collision type (start, during, end)",
	CodeInvalidEffectType:       "use a supported effect type",
	CodeInvalidGameState:        "use a supported game state",
	CodeInvalidObjectState:      "use visible or hidden",
	CodeMissingCounterValue:     "add the missing numeric value",
	CodeMissingProbability:      "add a probability between 0 and 1",
	CodeInvalidProbability:      "keep probability between 0 and 1",
	CodeInvalidSpeed:            "use a speed greater than 0",
	CodeSpeedOutOfBand:          "keep speed between 0.5 and 15 for playable movement",
	CodeInvalidDuration:         "use a duration greater than 0",
	CodeDurationOutOfBand:       "keep effect duration at 5 seconds or less",
	CodeInvalidScale:            "use a scale amount greater than 0",
	CodeScaleOutOfBand:          "keep scale amount at 3 or less",
	CodeInvalidTimeSeconds:      "keep time seconds between 0 and 60",
	CodeInvalidTimeInterval:     "keep interval above 0 and at most 10 seconds",
	CodeInvalidVolume:           "keep volume between 0 and 1",
	CodeCoordOutOfRange:         "keep coordinates within the normalized 0–1 range",
	CodeAssetCoordOutOfRange:    "keep the initial position within the normalized 0–1 range",
	CodeNegativeScore:           "award positive points",
	CodeMissingScorePoints:      "add a points value (e.g. 100)",
	CodeUndefinedObject:         "reference an object declared in the asset plan, or declare it",
	CodeUndefinedTarget:         "use a declared object id or a reserved target token",
	CodeUndefinedCounter:        "reference a declared counter, or declare it with an initial value",
	CodeUndefinedSound:          "reference a declared sound, or declare it",
	CodeInstantWin:              "lower the counter's initial value below the target or change the success condition",
	CodeInstantLose:             "raise the failure threshold above the counter's initial value or change the condition",
	CodeAutoSuccess:             "gate success behind a player interaction (touch, collision, position)",
	CodeAutoFailure:             "add a player-reachable success rule so the timeout is avoidable",
	CodeNoPlayerActionPath:      "connect the success condition to a rule the player can trigger",
	CodeNoSuccess:               "add a rule with a success action",
	CodeNoFailure:               "consider adding an explicit failure rule; the game otherwise only fails by timeout",
	CodeSuccessFailureConflict:  "give the success and failure rules distinguishable triggers",
	CodeShowHideConflict:        "make show and hide of the same object depend on different triggers",
	CodeCounterConflict:         "avoid incrementing and decrementing the same counter on the same trigger",
	CodeContradictoryActions:    "remove the contradictory action from the rule",
	CodeUnusedCounter:           "delete the counter or wire it into a rule",
	CodeCounterNeverRead:        "add a condition that reads the counter, or delete it",
	CodeCounterNeverModified:    "add a rule with a counter action that modifies it",
	CodeUnreachableSuccess:      "add a player-triggerable rule that drives the success condition",
	CodeObjectStateUnreachable:  "add a hide/show action affecting the object the condition watches",
}

// HintFor returns the fixed remediation hint for a code ("" if none).
func HintFor(code Code) string {
	return hints[code]
}
