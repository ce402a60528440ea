package sim

import "github.com/lumaplay/rulecheck/pkg/schema"

// Outcome is the terminal state of a simulation attempt.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// State is the ephemeral world model the search mutates. Every speculative
// branch works on its own Clone so an abandoned path never corrupts the
// baseline.
type State struct {
	Counters map[string]float64
	Flags    map[string]bool
	Visible  map[string]bool
	Hidden   map[string]bool
	Elapsed  float64
	Outcome  Outcome
}

// NewState builds the initial state: counters at their declared initial
// values, every laid-out object visible.
func NewState(rs *schema.RuleSet) *State {
	s := &State{
		Counters: make(map[string]float64, len(rs.Counters)),
		Flags:    make(map[string]bool),
		Visible:  make(map[string]bool, len(rs.Layout.Objects)),
		Hidden:   make(map[string]bool),
		Outcome:  OutcomeNone,
	}
	for _, c := range rs.Counters {
		s.Counters[c.ID] = float64(c.InitialValue)
	}
	for _, o := range rs.Layout.Objects {
		s.Visible[o.ObjectID] = true
	}
	return s
}

// Clone is an explicit typed deep copy.
func (s *State) Clone() *State {
	out := &State{
		Counters: make(map[string]float64, len(s.Counters)),
		Flags:    make(map[string]bool, len(s.Flags)),
		Visible:  make(map[string]bool, len(s.Visible)),
		Hidden:   make(map[string]bool, len(s.Hidden)),
		Elapsed:  s.Elapsed,
		Outcome:  s.Outcome,
	}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	for k, v := range s.Flags {
		out.Flags[k] = v
	}
	for k, v := range s.Visible {
		out.Visible[k] = v
	}
	for k, v := range s.Hidden {
		out.Hidden[k] = v
	}
	return out
}

// IsVisible reports whether an object can currently be interacted with.
// Objects never placed in the layout are treated as visible if shown later.
func (s *State) IsVisible(id string) bool {
	if s.Hidden[id] {
		return false
	}
	return s.Visible[id]
}

// Apply runs a rule's full action list against the state.
func (s *State) Apply(rule *schema.Rule) {
	for i := range rule.Actions {
		a := &rule.Actions[i]
		switch a.Type {
		case schema.ActSuccess:
			if s.Outcome == OutcomeNone {
				s.Outcome = OutcomeSuccess
			}
		case schema.ActFailure:
			if s.Outcome == OutcomeNone {
				s.Outcome = OutcomeFailure
			}
		case schema.ActHide:
			if a.Hide != nil {
				id := rule.ResolveTarget(a.Hide.TargetID)
				s.Hidden[id] = true
				delete(s.Visible, id)
			}
		case schema.ActShow:
			if a.Show != nil {
				id := rule.ResolveTarget(a.Show.TargetID)
				delete(s.Hidden, id)
				s.Visible[id] = true
			}
		case schema.ActCounter:
			if a.Counter != nil {
				s.applyCounter(a.Counter)
			}
		case schema.ActSetFlag:
			if a.SetFlag != nil {
				s.Flags[a.SetFlag.FlagID] = a.SetFlag.Value
			}
		case schema.ActToggleFlag:
			if a.ToggleFlag != nil {
				s.Flags[a.ToggleFlag.FlagID] = !s.Flags[a.ToggleFlag.FlagID]
			}
		}
	}
}

func (s *State) applyCounter(c *schema.CounterAction) {
	val := 0.0
	if c.Value != nil {
		val = *c.Value
	}
	switch c.Operation {
	case "increment":
		s.Counters[c.CounterName]++
	case "decrement":
		s.Counters[c.CounterName]--
	case "add":
		s.Counters[c.CounterName] += val
	case "subtract":
		s.Counters[c.CounterName] -= val
	case "set":
		s.Counters[c.CounterName] = val
	}
}
