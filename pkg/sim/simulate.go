package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumaplay/rulecheck/pkg/schema"
)

// GameTimeLimit is the fixed game duration in seconds used for the implicit
// timeout failure path.
const GameTimeLimit = 60.0

// maxReplays bounds the per-condition replay loop so a mutator that cannot
// make progress terminates with a blocker instead of spinning.
const maxReplays = 1000

// Simulate attempts to construct one witness path to success. Success rules
// are tried in rule-set order; the first constructible path is reported.
// The caller's rule-set is never mutated.
func Simulate(rs *schema.RuleSet) *Report {
	rep := &Report{}
	ev := newEvaluator()

	rep.Conflicts = deriveConflicts(rs)
	rep.Issues = hiddenObjectIssues(rs)

	base := NewState(rs)
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.HasActionType(schema.ActSuccess) {
			continue
		}
		steps, actions, blockers := attemptPath(rs, ev, base.Clone(), rule, rep)
		if blockers == nil {
			rep.Reachable = true
			rep.SuccessPath = steps
			rep.RequiredActions = actions
			break
		}
		rep.Blockers = append(rep.Blockers, blockers...)
	}

	rep.FailurePaths = failurePaths(rs)
	rep.grade()
	rep.summarize()
	return rep
}

// attemptPath constructs a witness for one success rule on a private state
// copy. AND triggers drive every condition in order; OR triggers need only
// the first disjunct that can be driven. A nil blocker slice means the path
// was constructed.
func attemptPath(rs *schema.RuleSet, ev *evaluator, st *State, rule *schema.Rule, rep *Report) ([]Step, int, []Blocker) {
	if rule.Trigger.Operator == schema.OpOr && len(rule.Trigger.Conditions) > 1 {
		var first *Blocker
		for i := range rule.Trigger.Conditions {
			steps, actions, blk := driveCondition(rs, ev, st.Clone(), rule, &rule.Trigger.Conditions[i], rep)
			if blk == nil {
				return steps, actions, nil
			}
			if first == nil {
				first = blk
			}
		}
		return nil, 0, []Blocker{*first}
	}

	var steps []Step
	actions := 0
	for i := range rule.Trigger.Conditions {
		s, n, blk := driveCondition(rs, ev, st, rule, &rule.Trigger.Conditions[i], rep)
		if blk != nil {
			return nil, 0, []Blocker{*blk}
		}
		steps = append(steps, s...)
		actions += n
	}
	return steps, actions, nil
}

func driveCondition(rs *schema.RuleSet, ev *evaluator, st *State, rule *schema.Rule, c *schema.Condition, rep *Report) ([]Step, int, *Blocker) {
	switch c.Type {
	case schema.CondCounter:
		return driveCounter(rs, ev, st, rule, c, rep)

	case schema.CondFlag:
		s, blk := driveFlag(rs, ev, st, rule, c)
		return s, len(s), blk

	case schema.CondTouch:
		target := rule.ResolveTarget(touchTarget(c))
		if target != "" && !st.IsVisible(target) {
			return nil, 0, &Blocker{RuleID: rule.ID,
				Reason: fmt.Sprintf("touch target %q is hidden when the rule would fire", target)}
		}
		return []Step{{RuleID: rule.ID, Target: target,
			Description: fmt.Sprintf("touch %q", target)}}, 1, nil

	case schema.CondTime:
		if c.Time != nil && c.Time.Seconds != nil {
			if *c.Time.Seconds > st.Elapsed {
				st.Elapsed = *c.Time.Seconds
			}
			return []Step{{RuleID: rule.ID,
				Description: fmt.Sprintf("wait until %gs", *c.Time.Seconds)}}, 0, nil
		}

	case schema.CondCollision, schema.CondPosition:
		target := rule.ResolveTarget(conditionTarget(c))
		if target != "" && !st.IsVisible(target) {
			return nil, 0, &Blocker{RuleID: rule.ID,
				Reason: fmt.Sprintf("object %q involved in the trigger is hidden", target)}
		}
		return []Step{{RuleID: rule.ID, Target: target,
			Description: fmt.Sprintf("steer %q into the trigger %s", target, c.Type)}}, 1, nil
	}
	return nil, 0, nil
}

// driveCounter replays a mutating rule until the counter condition holds,
// checking trigger visibility before each replay.
func driveCounter(rs *schema.RuleSet, ev *evaluator, st *State, rule *schema.Rule, c *schema.Condition, rep *Report) ([]Step, int, *Blocker) {
	name := c.Counter.CounterName
	if c.Counter.Value == nil {
		return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name,
			Reason: fmt.Sprintf("counter condition on %q has no target value", name)}
	}
	// strict comparators need one unit past the stated value
	target := *c.Counter.Value
	switch c.Counter.Comparison {
	case "greater":
		target++
	case "less":
		target--
	}
	current := st.Counters[name]

	if ok, _, err := ev.met(st, c); err == nil && ok {
		return nil, 0, nil
	} else if err != nil {
		rep.Issues = append(rep.Issues, Issue{Severity: "error", Message: err.Error()})
		return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name, Reason: "condition could not be evaluated"}
	}

	wantIncrease := target > current
	if c.Counter.Comparison == "less" || c.Counter.Comparison == "lessOrEqual" {
		wantIncrease = false
	}

	mut := findCounterMutator(rs, name, wantIncrease, target)
	if mut == nil {
		reason := fmt.Sprintf("no rule modifies counter %q", name)
		if anyCounterMutator(rs, name) {
			reason = fmt.Sprintf("counter %q starts at %g, past target %g, and no rule moves it back",
				name, current, target)
		}
		return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name, Reason: reason}
	}

	trigger := triggerTarget(mut)
	var steps []Step
	prevDist := dist(st.Counters[name], target)
	for replay := 0; replay < maxReplays; replay++ {
		ok, _, err := ev.met(st, c)
		if err != nil {
			rep.Issues = append(rep.Issues, Issue{Severity: "error", Message: err.Error()})
			return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name, Reason: "condition could not be evaluated"}
		}
		if ok {
			return steps, len(steps), nil
		}
		if trigger != "" && !st.IsVisible(trigger) {
			return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name,
				Reason: fmt.Sprintf("trigger target %q of rule %q is hidden after %d step(s)",
					trigger, mut.ID, len(steps))}
		}

		st.Apply(mut)
		steps = append(steps, Step{RuleID: mut.ID, Target: trigger,
			Description: fmt.Sprintf("fire rule %q (%s -> %g)", mut.ID, name, st.Counters[name])})

		d := dist(st.Counters[name], target)
		if d >= prevDist {
			return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name,
				Reason: fmt.Sprintf("rule %q does not move counter %q toward %g", mut.ID, name, target)}
		}
		prevDist = d
	}
	return nil, 0, &Blocker{RuleID: rule.ID, CounterName: name,
		Reason: fmt.Sprintf("counter %q did not reach its target within %d replays", name, maxReplays)}
}

func driveFlag(rs *schema.RuleSet, ev *evaluator, st *State, rule *schema.Rule, c *schema.Condition) ([]Step, *Blocker) {
	if ok, _, err := ev.met(st, c); err == nil && ok {
		return nil, nil
	}

	mut := findFlagMutator(rs, c.Flag.FlagID)
	if mut == nil {
		return nil, &Blocker{RuleID: rule.ID,
			Reason: fmt.Sprintf("no rule sets or toggles flag %q", c.Flag.FlagID)}
	}
	trigger := triggerTarget(mut)
	if trigger != "" && !st.IsVisible(trigger) {
		return nil, &Blocker{RuleID: rule.ID,
			Reason: fmt.Sprintf("trigger target %q of flag rule %q is hidden", trigger, mut.ID)}
	}

	st.Apply(mut)
	if ok, _, _ := ev.met(st, c); !ok {
		// a toggle can flip the wrong way once; try a second application
		st.Apply(mut)
		if ok, _, _ := ev.met(st, c); !ok {
			return nil, &Blocker{RuleID: rule.ID,
				Reason: fmt.Sprintf("rule %q cannot drive flag %q to the required value", mut.ID, c.Flag.FlagID)}
		}
		return []Step{
			{RuleID: mut.ID, Target: trigger, Description: fmt.Sprintf("fire rule %q", mut.ID)},
			{RuleID: mut.ID, Target: trigger, Description: fmt.Sprintf("fire rule %q again", mut.ID)},
		}, nil
	}
	return []Step{{RuleID: mut.ID, Target: trigger,
		Description: fmt.Sprintf("fire rule %q (flag %s)", mut.ID, c.Flag.FlagID)}}, nil
}

func dist(v, target float64) float64 {
	if v > target {
		return v - target
	}
	return target - v
}

// triggerTarget determines which object the player interacts with to fire a
// rule: the explicit binding, or the first touch condition's target.
func triggerTarget(rule *schema.Rule) string {
	if rule.TargetObjectID != "" {
		return rule.TargetObjectID
	}
	for i := range rule.Trigger.Conditions {
		c := &rule.Trigger.Conditions[i]
		if c.Type == schema.CondTouch && c.Touch != nil {
			return rule.ResolveTarget(c.Touch.Target)
		}
	}
	return ""
}

// findCounterMutator picks the first rule whose net effect moves the counter
// in the wanted direction; a rule that sets the counter straight to the
// target also qualifies.
func findCounterMutator(rs *schema.RuleSet, name string, wantIncrease bool, target float64) *schema.Rule {
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		delta, sets, setVal := counterEffect(rule, name)
		if sets && setVal == target {
			return rule
		}
		if wantIncrease && delta > 0 {
			return rule
		}
		if !wantIncrease && delta < 0 {
			return rule
		}
	}
	return nil
}

func anyCounterMutator(rs *schema.RuleSet, name string) bool {
	for i := range rs.Rules {
		delta, sets, _ := counterEffect(&rs.Rules[i], name)
		if delta != 0 || sets {
			return true
		}
	}
	return false
}

// counterEffect sums a rule's net additive effect on one counter and reports
// whether the rule sets it outright.
func counterEffect(rule *schema.Rule, name string) (delta float64, sets bool, setVal float64) {
	for i := range rule.Actions {
		a := &rule.Actions[i]
		if a.Type != schema.ActCounter || a.Counter == nil || a.Counter.CounterName != name {
			continue
		}
		val := 0.0
		if a.Counter.Value != nil {
			val = *a.Counter.Value
		}
		switch a.Counter.Operation {
		case "increment":
			delta++
		case "decrement":
			delta--
		case "add":
			delta += val
		case "subtract":
			delta -= val
		case "set":
			sets, setVal = true, val
		}
	}
	return delta, sets, setVal
}

func findFlagMutator(rs *schema.RuleSet, flagID string) *schema.Rule {
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		for j := range rule.Actions {
			a := &rule.Actions[j]
			if a.Type == schema.ActSetFlag && a.SetFlag != nil && a.SetFlag.FlagID == flagID {
				return rule
			}
			if a.Type == schema.ActToggleFlag && a.ToggleFlag != nil && a.ToggleFlag.FlagID == flagID {
				return rule
			}
		}
	}
	return nil
}

func touchTarget(c *schema.Condition) string {
	if c.Touch != nil {
		return c.Touch.Target
	}
	return ""
}

func conditionTarget(c *schema.Condition) string {
	switch c.Type {
	case schema.CondTouch:
		return touchTarget(c)
	case schema.CondCollision:
		if c.Collision != nil {
			return c.Collision.Target
		}
	case schema.CondPosition:
		if c.Position != nil {
			return c.Position.Target
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// standalone conflict & hazard derivation
// ---------------------------------------------------------------------------

// ruleSignature canonicalizes a trigger for conflict detection. Derived here
// independently of the validators so the simulator can run standalone.
func ruleSignature(r *schema.Rule) string {
	parts := make([]string, 0, len(r.Trigger.Conditions))
	for i := range r.Trigger.Conditions {
		c := &r.Trigger.Conditions[i]
		part := string(c.Type)
		switch c.Type {
		case schema.CondTouch:
			if c.Touch != nil {
				part += ":" + r.ResolveTarget(c.Touch.Target) + ":" + c.Touch.TouchType
			}
		case schema.CondCollision:
			if c.Collision != nil {
				part += ":" + r.ResolveTarget(c.Collision.Target) + ":" + c.Collision.CollisionType
			}
		case schema.CondCounter:
			if c.Counter != nil {
				part += ":" + c.Counter.CounterName + ":" + c.Counter.Comparison
				if c.Counter.Value != nil {
					part += fmt.Sprintf(":%g", *c.Counter.Value)
				}
			}
		case schema.CondFlag:
			if c.Flag != nil {
				part += fmt.Sprintf(":%s:%t", c.Flag.FlagID, c.Flag.Value)
			}
		case schema.CondTime:
			if c.Time != nil {
				part += fmt.Sprintf(":%v:%v", floatOrEmpty(c.Time.Seconds), floatOrEmpty(c.Time.Interval))
			}
		}
		parts = append(parts, part)
	}
	sort.Strings(parts)
	op := r.Trigger.Operator
	if op == "" {
		op = schema.OpAnd
	}
	return string(op) + "|" + strings.Join(parts, "|")
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func deriveConflicts(rs *schema.RuleSet) []Conflict {
	var out []Conflict
	for i := range rs.Rules {
		for j := i + 1; j < len(rs.Rules); j++ {
			a, b := &rs.Rules[i], &rs.Rules[j]
			if ruleSignature(a) != ruleSignature(b) {
				continue
			}
			aWin, aLose := a.HasActionType(schema.ActSuccess), a.HasActionType(schema.ActFailure)
			bWin, bLose := b.HasActionType(schema.ActSuccess), b.HasActionType(schema.ActFailure)
			if (aWin && bLose) || (aLose && bWin) {
				out = append(out, Conflict{
					RuleIDs: []string{a.ID, b.ID},
					Kind:    "simultaneous-termination",
					Description: fmt.Sprintf("rules %q and %q terminate the game in opposite outcomes on the same trigger",
						a.ID, b.ID),
				})
			}
		}
	}
	return out
}

// hiddenObjectIssues flags rules that interact with an object some other
// rule permanently hides (hidden somewhere, shown nowhere).
func hiddenObjectIssues(rs *schema.RuleSet) []Issue {
	hiddenBy := make(map[string]string)
	shown := make(map[string]bool)
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		for j := range rule.Actions {
			a := &rule.Actions[j]
			if a.Type == schema.ActHide && a.Hide != nil {
				hiddenBy[rule.ResolveTarget(a.Hide.TargetID)] = rule.ID
			}
			if a.Type == schema.ActShow && a.Show != nil {
				shown[rule.ResolveTarget(a.Show.TargetID)] = true
			}
		}
	}

	var issues []Issue
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		for j := range rule.Trigger.Conditions {
			target := rule.ResolveTarget(conditionTarget(&rule.Trigger.Conditions[j]))
			if target == "" || shown[target] {
				continue
			}
			if hider, ok := hiddenBy[target]; ok && hider != rule.ID {
				issues = append(issues, Issue{
					Severity: "warning",
					Message: fmt.Sprintf("rule %q triggers on object %q which rule %q permanently hides",
						rule.ID, target, hider),
				})
			}
		}
	}
	return issues
}

// failurePaths is advisory: the implicit timeout plus one path per explicit
// failure rule.
func failurePaths(rs *schema.RuleSet) []FailurePath {
	paths := []FailurePath{{
		Kind:        "timeout",
		Description: fmt.Sprintf("game time limit of %gs expires before success", GameTimeLimit),
	}}
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if !rule.HasActionType(schema.ActFailure) {
			continue
		}
		paths = append(paths, FailurePath{
			Kind:        "rule",
			RuleID:      rule.ID,
			Description: describeTrigger(rule),
		})
	}
	return paths
}

func describeTrigger(rule *schema.Rule) string {
	if len(rule.Trigger.Conditions) == 0 {
		return fmt.Sprintf("rule %q fires unconditionally", rule.ID)
	}
	var parts []string
	for i := range rule.Trigger.Conditions {
		c := &rule.Trigger.Conditions[i]
		switch c.Type {
		case schema.CondTouch:
			if c.Touch != nil {
				parts = append(parts, fmt.Sprintf("touching %q", rule.ResolveTarget(c.Touch.Target)))
			}
		case schema.CondTime:
			if c.Time != nil && c.Time.Seconds != nil {
				parts = append(parts, fmt.Sprintf("reaching %gs", *c.Time.Seconds))
			}
		case schema.CondCounter:
			if c.Counter != nil && c.Counter.Value != nil {
				parts = append(parts, fmt.Sprintf("counter %q %s %g",
					c.Counter.CounterName, c.Counter.Comparison, *c.Counter.Value))
			}
		case schema.CondCollision:
			if c.Collision != nil {
				parts = append(parts, fmt.Sprintf("colliding with %q", rule.ResolveTarget(c.Collision.Target)))
			}
		default:
			parts = append(parts, string(c.Type))
		}
	}
	return strings.Join(parts, " and ")
}
