package validate

import (
	"fmt"

	"github.com/lumaplay/rulecheck/pkg/schema"
)

// winComparators are the comparisons evaluated against initial counter
// values when looking for a success rule already true at t=0.
var winComparators = map[string]bool{
	"equals":         true,
	"greaterOrEqual": true,
	"greater":        true,
	"less":           true,
	"lessOrEqual":    true,
}

// loseComparators is the failure-side table. It is narrower than the win
// table on purpose: failure thresholds are conventionally "at least N", so
// less/lessOrEqual failure conditions are not treated as instant losses.
var loseComparators = map[string]bool{
	"equals":         true,
	"greaterOrEqual": true,
	"greater":        true,
}

// automaticConditions fire without any player involvement.
var automaticConditions = map[schema.ConditionType]bool{
	schema.CondTime:      true,
	schema.CondGameState: true,
	schema.CondCounter:   true,
	schema.CondFlag:      true,
}

// Semantics runs the cross-reference and consistency checks. It assumes the
// document decoded cleanly; it does not assume the feature checks passed.
func Semantics(rs *schema.RuleSet) []*Error {
	var errs []*Error
	errs = append(errs, checkReferences(rs)...)
	errs = append(errs, checkInstantOutcomes(rs)...)
	errs = append(errs, checkAutoOutcomes(rs)...)
	errs = append(errs, checkPlayerPath(rs)...)
	errs = append(errs, checkOutcomeExistence(rs)...)
	errs = append(errs, checkConflicts(rs)...)
	errs = append(errs, checkCounterUsage(rs)...)
	errs = append(errs, checkSuccessReachability(rs)...)
	return errs
}

// checkReferences resolves every identifier against the asset plan and
// counter declarations.
func checkReferences(rs *schema.RuleSet) []*Error {
	objects := rs.ObjectIDs()
	sounds := rs.SoundIDs()
	counters := make(map[string]bool, len(rs.Counters))
	for _, c := range rs.Counters {
		counters[c.ID] = true
	}

	var errs []*Error
	for i := range rs.Rules {
		rule := &rs.Rules[i]

		if rule.TargetObjectID != "" && !objects[rule.TargetObjectID] {
			errs = append(errs, criticalf(CodeUndefinedObject, rule.ID,
				fmt.Sprintf("rules[%d].targetObjectId", i),
				"targetObjectId %q is not declared in the asset plan", rule.TargetObjectID))
		}

		for j := range rule.Trigger.Conditions {
			c := &rule.Trigger.Conditions[j]
			path := fmt.Sprintf("rules[%d].trigger.conditions[%d]", i, j)

			if target := conditionTarget(c); target != "" && !schema.ReservedTarget(target) && !objects[target] {
				errs = append(errs, criticalf(CodeUndefinedTarget, rule.ID, path+".target",
					"condition target %q is not declared in the asset plan", target))
			}
			if c.Type == schema.CondCounter && c.Counter != nil && !counters[c.Counter.CounterName] {
				errs = append(errs, criticalf(CodeUndefinedCounter, rule.ID, path+".counterName",
					"counter %q is not declared", c.Counter.CounterName))
			}
		}

		for j := range rule.Actions {
			a := &rule.Actions[j]
			path := fmt.Sprintf("rules[%d].actions[%d]", i, j)

			if target := actionTarget(a); target != "" && !schema.ReservedTarget(target) && !objects[target] {
				errs = append(errs, criticalf(CodeUndefinedObject, rule.ID, path+".targetId",
					"action targetId %q is not declared in the asset plan", target))
			}
			if a.Type == schema.ActCounter && a.Counter != nil && !counters[a.Counter.CounterName] {
				errs = append(errs, criticalf(CodeUndefinedCounter, rule.ID, path+".counterName",
					"counter %q is not declared", a.Counter.CounterName))
			}
			if a.Type == schema.ActPlaySound && a.PlaySound != nil && !sounds[a.PlaySound.SoundID] {
				errs = append(errs, criticalf(CodeUndefinedSound, rule.ID, path+".soundId",
					"sound %q is not declared in the asset plan", a.PlaySound.SoundID))
			}
		}
	}
	return errs
}

// checkInstantOutcomes flags success/failure rules already satisfied at t=0:
// an empty condition list, or a counter condition true against the counter's
// initial value.
func checkInstantOutcomes(rs *schema.RuleSet) []*Error {
	var errs []*Error
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		hasSuccess := rule.HasActionType(schema.ActSuccess)
		hasFailure := rule.HasActionType(schema.ActFailure)
		if !hasSuccess && !hasFailure {
			continue
		}

		if len(rule.Trigger.Conditions) == 0 {
			if hasSuccess {
				errs = append(errs, criticalf(CodeInstantWin, rule.ID,
					fmt.Sprintf("rules[%d].trigger.conditions", i),
					"success rule %q has no conditions and fires at game start", rule.ID))
			}
			if hasFailure {
				errs = append(errs, criticalf(CodeInstantLose, rule.ID,
					fmt.Sprintf("rules[%d].trigger.conditions", i),
					"failure rule %q has no conditions and fires at game start", rule.ID))
			}
			continue
		}

		for j := range rule.Trigger.Conditions {
			c := &rule.Trigger.Conditions[j]
			if c.Type != schema.CondCounter || c.Counter == nil || c.Counter.Value == nil {
				continue
			}
			counter, ok := rs.CounterByID(c.Counter.CounterName)
			if !ok {
				continue // already an UNDEFINED_COUNTER
			}
			initial := float64(counter.InitialValue)
			path := fmt.Sprintf("rules[%d].trigger.conditions[%d]", i, j)

			if hasSuccess && winComparators[c.Counter.Comparison] &&
				compareSatisfied(initial, c.Counter.Comparison, *c.Counter.Value) {
				errs = append(errs, criticalf(CodeInstantWin, rule.ID, path,
					"success condition on counter %q is already true at its initial value %d",
					c.Counter.CounterName, counter.InitialValue))
			}
			if hasFailure && loseComparators[c.Counter.Comparison] &&
				compareSatisfied(initial, c.Counter.Comparison, *c.Counter.Value) {
				errs = append(errs, criticalf(CodeInstantLose, rule.ID, path,
					"failure condition on counter %q is already true at its initial value %d",
					c.Counter.CounterName, counter.InitialValue))
			}
		}
	}
	return errs
}

// checkAutoOutcomes flags terminal rules the player never influences. A
// success rule gated only by automatic conditions needs a player-gated
// failure rule to be acceptable; a failure rule gated solely by time needs
// a player-gated success rule. Player gating counts the one-hop counter and
// flag paths, so a tap-to-N game with a timeout failure is acceptable.
func checkAutoOutcomes(rs *schema.RuleSet) []*Error {
	playerGatedSuccess := false
	playerGatedFailure := false
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !hasPlayerInput(rs, rule) && !hasPlayerHop(rs, rule) {
			continue
		}
		if rule.HasActionType(schema.ActSuccess) {
			playerGatedSuccess = true
		}
		if rule.HasActionType(schema.ActFailure) {
			playerGatedFailure = true
		}
	}

	var errs []*Error
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if len(rule.Trigger.Conditions) == 0 {
			continue // handled as an instant outcome
		}

		if rule.HasActionType(schema.ActSuccess) && allAutomatic(rule) &&
			!hasPlayerHop(rs, rule) && !playerGatedFailure {
			errs = append(errs, criticalf(CodeAutoSuccess, rule.ID,
				fmt.Sprintf("rules[%d].trigger.conditions", i),
				"success rule %q fires without player input and no failure rule requires any", rule.ID))
		}
		if rule.HasActionType(schema.ActFailure) && allOfType(rule, schema.CondTime) && !playerGatedSuccess {
			errs = append(errs, criticalf(CodeAutoFailure, rule.ID,
				fmt.Sprintf("rules[%d].trigger.conditions", i),
				"failure rule %q is a pure timer and no success rule requires player input", rule.ID))
		}
	}
	return errs
}

// checkPlayerPath warns when a success rule is not reachable through player
// input, directly or through one counter/flag hop via a player-gated
// mutating rule.
func checkPlayerPath(rs *schema.RuleSet) []*Error {
	var errs []*Error
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.HasActionType(schema.ActSuccess) || len(rule.Trigger.Conditions) == 0 {
			continue
		}
		if hasPlayerInput(rs, rule) || hasPlayerHop(rs, rule) {
			continue
		}
		errs = append(errs, warningf(CodeNoPlayerActionPath, rule.ID,
			fmt.Sprintf("rules[%d]", i),
			"no player interaction leads to success rule %q", rule.ID))
	}
	return errs
}

// hasPlayerInput reports whether the rule's trigger includes a genuine
// player-input condition. Touch always qualifies; collision and position
// qualify when the involved object is drag-followed, since dragging a
// followed object into place is itself an act of control.
func hasPlayerInput(rs *schema.RuleSet, rule *schema.Rule) bool {
	dragged := rs.DragFollowedObjects()
	for i := range rule.Trigger.Conditions {
		c := &rule.Trigger.Conditions[i]
		switch c.Type {
		case schema.CondTouch:
			return true
		case schema.CondCollision:
			if c.Collision != nil {
				if dragged[rule.ResolveTarget(c.Collision.Target)] || dragged[rule.TargetObjectID] {
					return true
				}
			}
		case schema.CondPosition:
			if c.Position != nil && dragged[rule.ResolveTarget(c.Position.Target)] {
				return true
			}
		}
	}
	return false
}

// hasPlayerHop reports whether some counter or flag the rule's conditions
// read is mutated by a rule that is itself player-gated.
func hasPlayerHop(rs *schema.RuleSet, rule *schema.Rule) bool {
	for i := range rule.Trigger.Conditions {
		c := &rule.Trigger.Conditions[i]
		switch c.Type {
		case schema.CondCounter:
			if c.Counter == nil {
				continue
			}
			for j := range rs.Rules {
				other := &rs.Rules[j]
				if mutatesCounter(other, c.Counter.CounterName) && hasPlayerInput(rs, other) {
					return true
				}
			}
		case schema.CondFlag:
			if c.Flag == nil {
				continue
			}
			for j := range rs.Rules {
				other := &rs.Rules[j]
				if mutatesFlag(other, c.Flag.FlagID) && hasPlayerInput(rs, other) {
					return true
				}
			}
		}
	}
	return false
}

func checkOutcomeExistence(rs *schema.RuleSet) []*Error {
	hasSuccess := false
	hasFailure := false
	for i := range rs.Rules {
		if rs.Rules[i].HasActionType(schema.ActSuccess) {
			hasSuccess = true
		}
		if rs.Rules[i].HasActionType(schema.ActFailure) {
			hasFailure = true
		}
	}

	var errs []*Error
	if !hasSuccess {
		errs = append(errs, criticalf(CodeNoSuccess, "", "rules",
			"no rule produces a success outcome"))
	}
	if !hasFailure {
		errs = append(errs, warningf(CodeNoFailure, "", "rules",
			"no rule produces a failure outcome; the game can only fail by timeout"))
	}
	return errs
}

// checkConflicts finds rule pairs with identical trigger signatures that
// force opposite outcomes, plus single rules that contradict themselves.
func checkConflicts(rs *schema.RuleSet) []*Error {
	var errs []*Error

	sigs := make([]string, len(rs.Rules))
	for i := range rs.Rules {
		sigs[i] = triggerSignature(&rs.Rules[i])
	}

	for i := range rs.Rules {
		for j := i + 1; j < len(rs.Rules); j++ {
			if sigs[i] != sigs[j] {
				continue
			}
			a, b := &rs.Rules[i], &rs.Rules[j]

			if (a.HasActionType(schema.ActSuccess) && b.HasActionType(schema.ActFailure)) ||
				(a.HasActionType(schema.ActFailure) && b.HasActionType(schema.ActSuccess)) {
				errs = append(errs, criticalf(CodeSuccessFailureConflict, a.ID, "",
					"rules %q and %q fire on the same trigger but force opposite outcomes", a.ID, b.ID))
			}

			for obj := range intersect(shownObjects(a), hiddenObjects(b)) {
				errs = append(errs, criticalf(CodeShowHideConflict, a.ID, "",
					"rules %q and %q show and hide object %q on the same trigger", a.ID, b.ID, obj))
			}
			for obj := range intersect(shownObjects(b), hiddenObjects(a)) {
				errs = append(errs, criticalf(CodeShowHideConflict, a.ID, "",
					"rules %q and %q show and hide object %q on the same trigger", b.ID, a.ID, obj))
			}

			for name := range intersect(increasedCounters(a), decreasedCounters(b)) {
				errs = append(errs, criticalf(CodeCounterConflict, a.ID, "",
					"rules %q and %q push counter %q in opposite directions on the same trigger", a.ID, b.ID, name))
			}
			for name := range intersect(increasedCounters(b), decreasedCounters(a)) {
				errs = append(errs, criticalf(CodeCounterConflict, a.ID, "",
					"rules %q and %q push counter %q in opposite directions on the same trigger", b.ID, a.ID, name))
			}
		}
	}

	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.HasActionType(schema.ActSuccess) && rule.HasActionType(schema.ActFailure) {
			errs = append(errs, criticalf(CodeContradictoryActions, rule.ID,
				fmt.Sprintf("rules[%d].actions", i),
				"rule %q fires both success and failure", rule.ID))
		}
		for obj := range intersect(shownObjects(rule), hiddenObjects(rule)) {
			errs = append(errs, criticalf(CodeContradictoryActions, rule.ID,
				fmt.Sprintf("rules[%d].actions", i),
				"rule %q both shows and hides object %q", rule.ID, obj))
		}
	}
	return errs
}

// checkCounterUsage audits every declared counter. Read-but-never-written is
// the critical case: the counter is stuck at its initial value forever.
func checkCounterUsage(rs *schema.RuleSet) []*Error {
	read := make(map[string]bool)
	written := make(map[string]bool)
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		for j := range rule.Trigger.Conditions {
			c := &rule.Trigger.Conditions[j]
			if c.Type == schema.CondCounter && c.Counter != nil {
				read[c.Counter.CounterName] = true
			}
		}
		for j := range rule.Actions {
			a := &rule.Actions[j]
			if a.Type == schema.ActCounter && a.Counter != nil {
				written[a.Counter.CounterName] = true
			}
		}
	}

	var errs []*Error
	for i, c := range rs.Counters {
		path := fmt.Sprintf("counters[%d]", i)
		switch {
		case !read[c.ID] && !written[c.ID]:
			errs = append(errs, warningf(CodeUnusedCounter, "", path,
				"counter %q is never read and never modified", c.ID))
		case written[c.ID] && !read[c.ID]:
			errs = append(errs, warningf(CodeCounterNeverRead, "", path,
				"counter %q is modified but no condition ever reads it", c.ID))
		case read[c.ID] && !written[c.ID]:
			errs = append(errs, criticalf(CodeCounterNeverModified, "", path,
				"counter %q is read but never modified, so it is stuck at %d", c.ID, c.InitialValue))
		}
	}
	return errs
}

// checkSuccessReachability verifies each success-rule condition has a rule
// capable of driving it: a mutating rule for counters, a flag writer for
// flags, a hide/show for objectState.
func checkSuccessReachability(rs *schema.RuleSet) []*Error {
	var errs []*Error
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.HasActionType(schema.ActSuccess) {
			continue
		}
		for j := range rule.Trigger.Conditions {
			c := &rule.Trigger.Conditions[j]
			path := fmt.Sprintf("rules[%d].trigger.conditions[%d]", i, j)

			switch c.Type {
			case schema.CondCounter:
				if c.Counter == nil {
					continue
				}
				if !anyRule(rs, func(r *schema.Rule) bool { return mutatesCounter(r, c.Counter.CounterName) }) {
					errs = append(errs, criticalf(CodeUnreachableSuccess, rule.ID, path,
						"success depends on counter %q but no rule modifies it", c.Counter.CounterName))
				}
			case schema.CondFlag:
				if c.Flag == nil {
					continue
				}
				if !anyRule(rs, func(r *schema.Rule) bool { return mutatesFlag(r, c.Flag.FlagID) }) {
					errs = append(errs, criticalf(CodeUnreachableSuccess, rule.ID, path,
						"success depends on flag %q but no rule sets or toggles it", c.Flag.FlagID))
				}
			case schema.CondObjectState:
				if c.ObjectState == nil {
					continue
				}
				watched := rule.ResolveTarget(c.ObjectState.Target)
				affects := func(r *schema.Rule) bool {
					return shownObjects(r)[watched] || hiddenObjects(r)[watched]
				}
				if !anyRule(rs, affects) {
					errs = append(errs, warningf(CodeObjectStateUnreachable, rule.ID, path,
						"success depends on the visibility of %q but no rule shows or hides it", watched))
				}
			}
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// shared predicates
// ---------------------------------------------------------------------------

func compareSatisfied(current float64, comparison string, target float64) bool {
	switch comparison {
	case "equals":
		return current == target
	case "notEquals":
		return current != target
	case "greater":
		return current > target
	case "greaterOrEqual":
		return current >= target
	case "less":
		return current < target
	case "lessOrEqual":
		return current <= target
	}
	return false
}

func allAutomatic(rule *schema.Rule) bool {
	for i := range rule.Trigger.Conditions {
		if !automaticConditions[rule.Trigger.Conditions[i].Type] {
			return false
		}
	}
	return len(rule.Trigger.Conditions) > 0
}

func allOfType(rule *schema.Rule, t schema.ConditionType) bool {
	for i := range rule.Trigger.Conditions {
		if rule.Trigger.Conditions[i].Type != t {
			return false
		}
	}
	return len(rule.Trigger.Conditions) > 0
}

func mutatesCounter(rule *schema.Rule, name string) bool {
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type == schema.ActCounter && a.Counter != nil && a.Counter.CounterName == name {
			return true
		}
	}
	return false
}

func mutatesFlag(rule *schema.Rule, flagID string) bool {
	for i := range rule.Actions {
		a := &rule.Actions[i]
		switch a.Type {
		case schema.ActSetFlag:
			if a.SetFlag != nil && a.SetFlag.FlagID == flagID {
				return true
			}
		case schema.ActToggleFlag:
			if a.ToggleFlag != nil && a.ToggleFlag.FlagID == flagID {
				return true
			}
		}
	}
	return false
}

func shownObjects(rule *schema.Rule) map[string]bool {
	out := make(map[string]bool)
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type == schema.ActShow && a.Show != nil {
			out[rule.ResolveTarget(a.Show.TargetID)] = true
		}
	}
	return out
}

func hiddenObjects(rule *schema.Rule) map[string]bool {
	out := make(map[string]bool)
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type == schema.ActHide && a.Hide != nil {
			out[rule.ResolveTarget(a.Hide.TargetID)] = true
		}
	}
	return out
}

func increasedCounters(rule *schema.Rule) map[string]bool {
	out := make(map[string]bool)
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type == schema.ActCounter && a.Counter != nil {
			if a.Counter.Operation == "increment" || a.Counter.Operation == "add" {
				out[a.Counter.CounterName] = true
			}
		}
	}
	return out
}

func decreasedCounters(rule *schema.Rule) map[string]bool {
	out := make(map[string]bool)
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type == schema.ActCounter && a.Counter != nil {
			if a.Counter.Operation == "decrement" || a.Counter.Operation == "subtract" {
				out[a.Counter.CounterName] = true
			}
		}
	}
	return out
}

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func anyRule(rs *schema.RuleSet, pred func(*schema.Rule) bool) bool {
	for i := range rs.Rules {
		if pred(&rs.Rules[i]) {
			return true
		}
	}
	return false
}

func conditionTarget(c *schema.Condition) string {
	switch c.Type {
	case schema.CondTouch:
		if c.Touch != nil {
			return c.Touch.Target
		}
	case schema.CondCollision:
		if c.Collision != nil {
			return c.Collision.Target
		}
	case schema.CondPosition:
		if c.Position != nil {
			return c.Position.Target
		}
	case schema.CondAnimation:
		if c.Animation != nil {
			return c.Animation.Target
		}
	case schema.CondObjectState:
		if c.ObjectState != nil {
			return c.ObjectState.Target
		}
	}
	return ""
}

func actionTarget(a *schema.Action) string {
	switch a.Type {
	case schema.ActHide:
		if a.Hide != nil {
			return a.Hide.TargetID
		}
	case schema.ActShow:
		if a.Show != nil {
			return a.Show.TargetID
		}
	case schema.ActMove:
		if a.Move != nil {
			return a.Move.TargetID
		}
	case schema.ActEffect:
		if a.Effect != nil {
			return a.Effect.TargetID
		}
	case schema.ActSwitchAnimation:
		if a.SwitchAnimation != nil {
			return a.SwitchAnimation.TargetID
		}
	case schema.ActApplyForce:
		if a.ApplyForce != nil {
			return a.ApplyForce.TargetID
		}
	case schema.ActApplyImpulse:
		if a.ApplyImpulse != nil {
			return a.ApplyImpulse.TargetID
		}
	case schema.ActFollowDrag:
		if a.FollowDrag != nil {
			return a.FollowDrag.TargetID
		}
	}
	return ""
}
