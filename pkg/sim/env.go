package sim

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/lumaplay/rulecheck/pkg/schema"
)

// Env is the typed expression environment guard conditions evaluate against.
type Env struct {
	Elapsed  float64
	Counters map[string]float64
	Flags    map[string]bool
}

// Counter returns the current counter value (0 if absent).
func (e Env) Counter(name string) float64 { return e.Counters[name] }

// Flag returns the current flag value (false if absent).
func (e Env) Flag(id string) bool { return e.Flags[id] }

var comparisonOps = map[string]string{
	"equals":         "==",
	"notEquals":      "!=",
	"greater":        ">",
	"greaterOrEqual": ">=",
	"less":           "<",
	"lessOrEqual":    "<=",
}

// guardSource renders a counter/flag/time condition as a boolean expression
// over Env. Conditions that depend on live player input have no guard form.
func guardSource(c *schema.Condition) (string, bool) {
	switch c.Type {
	case schema.CondCounter:
		if c.Counter == nil || c.Counter.Value == nil {
			return "", false
		}
		op, ok := comparisonOps[c.Counter.Comparison]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("Counter(%q) %s %g", c.Counter.CounterName, op, *c.Counter.Value), true
	case schema.CondFlag:
		if c.Flag == nil {
			return "", false
		}
		if c.Flag.Value {
			return fmt.Sprintf("Flag(%q)", c.Flag.FlagID), true
		}
		return fmt.Sprintf("!Flag(%q)", c.Flag.FlagID), true
	case schema.CondTime:
		if c.Time == nil {
			return "", false
		}
		if c.Time.Seconds != nil {
			return fmt.Sprintf("Elapsed >= %g", *c.Time.Seconds), true
		}
		if c.Time.Interval != nil {
			return fmt.Sprintf("Elapsed >= %g", *c.Time.Interval), true
		}
		return "", false
	}
	return "", false
}

// evaluator compiles guard expressions to bytecode once per rule-set pass
// and caches the programs by source.
type evaluator struct {
	programs map[string]*vm.Program
}

func newEvaluator() *evaluator {
	return &evaluator{programs: make(map[string]*vm.Program)}
}

// met evaluates a guardable condition against the state. The second return
// is false when the condition has no guard form (player-input conditions).
func (ev *evaluator) met(st *State, c *schema.Condition) (satisfied, guardable bool, err error) {
	src, ok := guardSource(c)
	if !ok {
		return false, false, nil
	}

	prog, ok := ev.programs[src]
	if !ok {
		prog, err = expr.Compile(src, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return false, true, fmt.Errorf("compile guard %q: %w", src, err)
		}
		ev.programs[src] = prog
	}

	out, err := expr.Run(prog, Env{
		Elapsed:  st.Elapsed,
		Counters: st.Counters,
		Flags:    st.Flags,
	})
	if err != nil {
		return false, true, fmt.Errorf("run guard %q: %w", src, err)
	}
	b, _ := out.(bool)
	return b, true, nil
}
