package validate

import (
	"fmt"

	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/vocab"
)

// Features checks every condition and action against the supplied capability
// table: type membership first, then field-level shape and range rules.
// Checks are independent and never short-circuit, so one pass surfaces
// every applicable defect.
func Features(rs *schema.RuleSet, v *vocab.Vocabulary) []*Error {
	var errs []*Error

	for i := range rs.Rules {
		rule := &rs.Rules[i]
		for j := range rule.Trigger.Conditions {
			path := fmt.Sprintf("rules[%d].trigger.conditions[%d]", i, j)
			errs = append(errs, checkCondition(&rule.Trigger.Conditions[j], rule.ID, path, v)...)
		}
		for j := range rule.Actions {
			path := fmt.Sprintf("rules[%d].actions[%d]", i, j)
			errs = append(errs, checkAction(&rule.Actions[j], rule.ID, path, v)...)
		}
	}

	errs = append(errs, checkLayout(rs, v)...)
	errs = append(errs, checkAssetPositions(rs, v)...)
	return errs
}

func checkCondition(c *schema.Condition, ruleID, path string, v *vocab.Vocabulary) []*Error {
	if !v.HasConditionType(string(c.Type)) {
		return []*Error{criticalf(CodeInvalidConditionType, ruleID, path+".type",
			"unknown condition type %q", c.Type)}
	}

	var errs []*Error
	switch c.Type {
	case schema.CondTouch:
		if c.Touch != nil && c.Touch.TouchType != "" && !memberOf(v.TouchTypes, c.Touch.TouchType) {
			errs = append(errs, criticalf(CodeInvalidTouchType, ruleID, path+".touchType",
				"unsupported touchType %q", c.Touch.TouchType))
		}

	case schema.CondTime:
		if c.Time != nil {
			if c.Time.Seconds != nil && !v.TimeSeconds.Contains(*c.Time.Seconds) {
				errs = append(errs, criticalf(CodeInvalidTimeSeconds, ruleID, path+".seconds",
					"time seconds %g outside supported range", *c.Time.Seconds))
			}
			if c.Time.Interval != nil && !v.Interval.Contains(*c.Time.Interval) {
				errs = append(errs, criticalf(CodeInvalidTimeInterval, ruleID, path+".interval",
					"time interval %g outside supported range", *c.Time.Interval))
			}
		}

	case schema.CondCounter:
		if c.Counter != nil {
			if !memberOf(v.Comparisons, c.Counter.Comparison) {
				errs = append(errs, criticalf(CodeInvalidComparison, ruleID, path+".comparison",
					"unsupported comparison %q", c.Counter.Comparison))
			}
			if c.Counter.Value == nil {
				errs = append(errs, criticalf(CodeMissingCounterValue, ruleID, path+".value",
					"counter condition on %q has no value", c.Counter.CounterName))
			}
		}

	case schema.CondCollision:
		if c.Collision != nil && c.Collision.CollisionType != "" && !memberOf(v.CollisionTypes, c.Collision.CollisionType) {
			errs = append(errs, criticalf(CodeInvalidCollisionType, ruleID, path+".collisionType",
				"unsupported collisionType %q", c.Collision.CollisionType))
		}

	case schema.CondGameState:
		if c.GameState != nil && !memberOf(v.GameStates, c.GameState.State) {
			errs = append(errs, criticalf(CodeInvalidGameState, ruleID, path+".state",
				"unsupported game state %q", c.GameState.State))
		}

	case schema.CondPosition:
		if c.Position != nil && c.Position.Region != nil {
			errs = append(errs, checkRegion(c.Position.Region, ruleID, path+".region", v)...)
		}

	case schema.CondRandom:
		if c.Random != nil {
			if c.Random.Probability == nil {
				errs = append(errs, criticalf(CodeMissingProbability, ruleID, path+".probability",
					"random condition has no probability"))
			} else if !v.Probability.Contains(*c.Random.Probability) {
				errs = append(errs, criticalf(CodeInvalidProbability, ruleID, path+".probability",
					"probability %g outside [0,1]", *c.Random.Probability))
			}
		}

	case schema.CondObjectState:
		if c.ObjectState != nil && !memberOf(v.ObjectStates, c.ObjectState.State) {
			errs = append(errs, criticalf(CodeInvalidObjectState, ruleID, path+".state",
				"unsupported object state %q", c.ObjectState.State))
		}
	}
	return errs
}

func checkAction(a *schema.Action, ruleID, path string, v *vocab.Vocabulary) []*Error {
	if !v.HasActionType(string(a.Type)) {
		return []*Error{criticalf(CodeInvalidActionType, ruleID, path+".type",
			"unknown action type %q", a.Type)}
	}

	var errs []*Error
	switch a.Type {
	case schema.ActMove:
		if a.Move != nil {
			m := &a.Move.Movement
			if m.Type != "" && !memberOf(v.MovementTypes, m.Type) {
				errs = append(errs, criticalf(CodeInvalidMovementType, ruleID, path+".movement.type",
					"unsupported movement type %q", m.Type))
			}
			if !v.Speed.Contains(m.Speed) {
				errs = append(errs, criticalf(CodeInvalidSpeed, ruleID, path+".movement.speed",
					"movement speed %g must be greater than 0", m.Speed))
			} else if !v.Speed.InAdvisoryBand(m.Speed) {
				errs = append(errs, warningf(CodeSpeedOutOfBand, ruleID, path+".movement.speed",
					"movement speed %g outside the recommended band", m.Speed))
			}
			if m.Destination != nil {
				errs = append(errs, checkCoord(m.Destination.X, ruleID, path+".movement.destination.x", v)...)
				errs = append(errs, checkCoord(m.Destination.Y, ruleID, path+".movement.destination.y", v)...)
			}
		}

	case schema.ActCounter:
		if a.Counter != nil {
			op := a.Counter.Operation
			if !memberOf(v.CounterOperations, op) {
				errs = append(errs, criticalf(CodeInvalidCounterOperation, ruleID, path+".operation",
					"unsupported counter operation %q", op))
			}
			// increment/decrement imply a step of 1; the remaining
			// operations need an explicit operand.
			needsValue := op == "add" || op == "subtract" || op == "set"
			if needsValue && a.Counter.Value == nil {
				errs = append(errs, criticalf(CodeMissingCounterValue, ruleID, path+".value",
					"counter %s on %q has no value", op, a.Counter.CounterName))
			}
		}

	case schema.ActAddScore:
		if a.AddScore != nil {
			if a.AddScore.Points == nil {
				errs = append(errs, criticalf(CodeMissingScorePoints, ruleID, path+".points",
					"addScore has no points value"))
			} else if *a.AddScore.Points < 0 {
				errs = append(errs, criticalf(CodeNegativeScore, ruleID, path+".points",
					"addScore points %g is negative", *a.AddScore.Points))
			}
		}

	case schema.ActEffect:
		if a.Effect != nil {
			if a.Effect.EffectType != "" && !memberOf(v.EffectTypes, a.Effect.EffectType) {
				errs = append(errs, criticalf(CodeInvalidEffectType, ruleID, path+".effectType",
					"unsupported effect type %q", a.Effect.EffectType))
			}
			if a.Effect.Duration != nil {
				if !v.Duration.Contains(*a.Effect.Duration) {
					errs = append(errs, criticalf(CodeInvalidDuration, ruleID, path+".duration",
						"effect duration %g must be greater than 0", *a.Effect.Duration))
				} else if !v.Duration.InAdvisoryBand(*a.Effect.Duration) {
					errs = append(errs, warningf(CodeDurationOutOfBand, ruleID, path+".duration",
						"effect duration %g above the recommended maximum", *a.Effect.Duration))
				}
			}
			if a.Effect.ScaleAmount != nil {
				if !v.ScaleAmount.Contains(*a.Effect.ScaleAmount) {
					errs = append(errs, criticalf(CodeInvalidScale, ruleID, path+".scaleAmount",
						"scale amount %g must be greater than 0", *a.Effect.ScaleAmount))
				} else if !v.ScaleAmount.InAdvisoryBand(*a.Effect.ScaleAmount) {
					errs = append(errs, warningf(CodeScaleOutOfBand, ruleID, path+".scaleAmount",
						"scale amount %g above the recommended maximum", *a.Effect.ScaleAmount))
				}
			}
		}

	case schema.ActPlaySound:
		if a.PlaySound != nil && a.PlaySound.Volume != nil && !v.Volume.Contains(*a.PlaySound.Volume) {
			errs = append(errs, criticalf(CodeInvalidVolume, ruleID, path+".volume",
				"volume %g outside [0,1]", *a.PlaySound.Volume))
		}

	case schema.ActRandom:
		if a.Random != nil {
			if a.Random.Probability == nil {
				errs = append(errs, criticalf(CodeMissingProbability, ruleID, path+".probability",
					"randomAction has no probability"))
			} else if !v.Probability.Contains(*a.Random.Probability) {
				errs = append(errs, criticalf(CodeInvalidProbability, ruleID, path+".probability",
					"probability %g outside [0,1]", *a.Random.Probability))
			}
		}
	}
	return errs
}

// checkLayout validates placed object coordinates. A misplaced layout
// object is unplayable, so these are critical.
func checkLayout(rs *schema.RuleSet, v *vocab.Vocabulary) []*Error {
	var errs []*Error
	for i, obj := range rs.Layout.Objects {
		if !v.Coordinate.Contains(obj.Position.X) {
			errs = append(errs, criticalf(CodeCoordOutOfRange, "",
				fmt.Sprintf("layout.objects[%d].position.x", i),
				"object %q x coordinate %g outside [0,1]", obj.ObjectID, obj.Position.X))
		}
		if !v.Coordinate.Contains(obj.Position.Y) {
			errs = append(errs, criticalf(CodeCoordOutOfRange, "",
				fmt.Sprintf("layout.objects[%d].position.y", i),
				"object %q y coordinate %g outside [0,1]", obj.ObjectID, obj.Position.Y))
		}
	}
	return errs
}

// checkAssetPositions validates asset-plan initial positions. The layout
// section is authoritative for placement, so these stay advisory.
func checkAssetPositions(rs *schema.RuleSet, v *vocab.Vocabulary) []*Error {
	var errs []*Error
	for i, obj := range rs.Assets.Objects {
		if obj.Position == nil {
			continue
		}
		if !v.Coordinate.Contains(obj.Position.X) {
			errs = append(errs, warningf(CodeAssetCoordOutOfRange, "",
				fmt.Sprintf("assets.objects[%d].position.x", i),
				"asset %q initial x %g outside [0,1]", obj.ID, obj.Position.X))
		}
		if !v.Coordinate.Contains(obj.Position.Y) {
			errs = append(errs, warningf(CodeAssetCoordOutOfRange, "",
				fmt.Sprintf("assets.objects[%d].position.y", i),
				"asset %q initial y %g outside [0,1]", obj.ID, obj.Position.Y))
		}
	}
	return errs
}

func checkRegion(r *schema.Region, ruleID, path string, v *vocab.Vocabulary) []*Error {
	var errs []*Error
	coords := []struct {
		name string
		val  float64
	}{
		{"x", r.X}, {"y", r.Y}, {"width", r.Width}, {"height", r.Height},
	}
	for _, c := range coords {
		if !v.Coordinate.Contains(c.val) {
			errs = append(errs, criticalf(CodeCoordOutOfRange, ruleID, path+"."+c.name,
				"region %s %g outside [0,1]", c.name, c.val))
		}
	}
	return errs
}

func checkCoord(val float64, ruleID, path string, v *vocab.Vocabulary) []*Error {
	if !v.Coordinate.Contains(val) {
		return []*Error{criticalf(CodeCoordOutOfRange, ruleID, path,
			"coordinate %g outside [0,1]", val)}
	}
	return nil
}

func memberOf(set []string, s string) bool {
	for _, m := range set {
		if m == s {
			return true
		}
	}
	return false
}
