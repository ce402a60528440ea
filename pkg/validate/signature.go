package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumaplay/rulecheck/pkg/schema"
)

// triggerSignature canonicalizes a rule's trigger for conflict detection:
// two rules with equal signatures fire under identical circumstances.
// Condition order is irrelevant, "self" is resolved to the rule's bound
// object, and only trigger-identity fields participate. Region coordinates
// are rounded to three decimals so float noise does not split signatures.
func triggerSignature(r *schema.Rule) string {
	parts := make([]string, 0, len(r.Trigger.Conditions))
	for i := range r.Trigger.Conditions {
		parts = append(parts, conditionSignature(r, &r.Trigger.Conditions[i]))
	}
	sort.Strings(parts)

	op := r.Trigger.Operator
	if op == "" {
		op = schema.OpAnd
	}
	return string(op) + "|" + strings.Join(parts, "|")
}

func conditionSignature(r *schema.Rule, c *schema.Condition) string {
	switch c.Type {
	case schema.CondTouch:
		if c.Touch != nil {
			return fmt.Sprintf("touch:%s:%s", r.ResolveTarget(c.Touch.Target), c.Touch.TouchType)
		}
	case schema.CondTime:
		if c.Time != nil {
			return fmt.Sprintf("time:%s:%s", floatSig(c.Time.Seconds), floatSig(c.Time.Interval))
		}
	case schema.CondCounter:
		if c.Counter != nil {
			return fmt.Sprintf("counter:%s:%s:%s",
				c.Counter.CounterName, c.Counter.Comparison, floatSig(c.Counter.Value))
		}
	case schema.CondCollision:
		if c.Collision != nil {
			return fmt.Sprintf("collision:%s:%s", r.ResolveTarget(c.Collision.Target), c.Collision.CollisionType)
		}
	case schema.CondFlag:
		if c.Flag != nil {
			return fmt.Sprintf("flag:%s:%t", c.Flag.FlagID, c.Flag.Value)
		}
	case schema.CondGameState:
		if c.GameState != nil {
			return "gameState:" + c.GameState.State
		}
	case schema.CondPosition:
		if c.Position != nil {
			region := "area=" + c.Position.Area
			if c.Position.Region != nil {
				reg := c.Position.Region
				region = fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", reg.X, reg.Y, reg.Width, reg.Height)
			}
			return fmt.Sprintf("position:%s:%s", r.ResolveTarget(c.Position.Target), region)
		}
	case schema.CondAnimation:
		if c.Animation != nil {
			frame := ""
			if c.Animation.FrameNumber != nil {
				frame = fmt.Sprintf("%d", *c.Animation.FrameNumber)
			}
			return fmt.Sprintf("animation:%s:%s:%s",
				r.ResolveTarget(c.Animation.Target), c.Animation.AnimationID, frame)
		}
	case schema.CondRandom:
		if c.Random != nil {
			return "random:" + floatSig(c.Random.Probability)
		}
	case schema.CondObjectState:
		if c.ObjectState != nil {
			return fmt.Sprintf("objectState:%s:%s", r.ResolveTarget(c.ObjectState.Target), c.ObjectState.State)
		}
	}
	return string(c.Type)
}

func floatSig(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}
