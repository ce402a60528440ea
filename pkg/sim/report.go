// Package sim proves or disproves that a rule-set's success state is
// reachable through a finite sequence of player actions. It is a greedy
// single-witness forward search, not an exhaustive state-space exploration:
// the first constructible path is reported.
package sim

import "fmt"

// Confidence grades how much weight to give a reachability verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Step is one player interaction on the witness path.
type Step struct {
	RuleID      string `json:"ruleId"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description"`
}

// FailurePath describes one way the game can end in failure.
type FailurePath struct {
	Kind        string `json:"kind"` // timeout or rule
	RuleID      string `json:"ruleId,omitempty"`
	Description string `json:"description"`
}

// Blocker names the specific missing ingredient that prevented a success
// rule from being driven to completion.
type Blocker struct {
	RuleID      string `json:"ruleId"`
	CounterName string `json:"counterName,omitempty"`
	Reason      string `json:"reason"`
}

// Conflict is a simultaneous-termination or visibility hazard between rules.
type Conflict struct {
	RuleIDs     []string `json:"ruleIds"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
}

// Issue is an advisory finding surfaced during simulation.
type Issue struct {
	Severity string `json:"severity"` // error or warning
	Message  string `json:"message"`
}

// Report is the simulator's verdict.
type Report struct {
	Reachable       bool          `json:"reachable"`
	RequiredActions int           `json:"requiredActions"`
	SuccessPath     []Step        `json:"successPath,omitempty"`
	FailurePaths    []FailurePath `json:"failurePaths,omitempty"`
	Blockers        []Blocker     `json:"blockers,omitempty"`
	Conflicts       []Conflict    `json:"conflicts,omitempty"`
	Issues          []Issue       `json:"issues,omitempty"`
	Confidence      Confidence    `json:"confidence"`
	Summary         string        `json:"summary"`
}

func (r *Report) hasErrorIssue() bool {
	for _, is := range r.Issues {
		if is.Severity == "error" {
			return true
		}
	}
	return false
}

// grade applies the deterministic confidence function: low when unreachable
// or any error-severity issue exists, medium when the path is long or noisy,
// high otherwise.
func (r *Report) grade() {
	switch {
	case !r.Reachable || r.hasErrorIssue():
		r.Confidence = ConfidenceLow
	case r.RequiredActions > 20 || len(r.Issues) > 2:
		r.Confidence = ConfidenceMedium
	default:
		r.Confidence = ConfidenceHigh
	}
}

func (r *Report) summarize() {
	if r.Reachable {
		r.Summary = fmt.Sprintf("success reachable in %d player action(s); %d failure path(s); confidence %s",
			r.RequiredActions, len(r.FailurePaths), r.Confidence)
		return
	}
	r.Summary = fmt.Sprintf("success unreachable; %d blocker(s); confidence %s",
		len(r.Blockers), r.Confidence)
}
