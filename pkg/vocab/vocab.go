// Package vocab defines the capability table the feature validator checks
// against: which condition/action types a deployment supports, the per-type
// enumerations, and the numeric parameter ranges. The table is supplied by
// the caller (or loaded from a versioned YAML file) rather than compiled into
// the validator, since the supported feature set changes between deployments.
package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range bounds a numeric parameter. Hard bounds produce critical errors;
// the advisory band produces warnings only.
type Range struct {
	Min          *float64 `yaml:"min,omitempty"          json:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty"          json:"max,omitempty"`
	ExclusiveMin bool     `yaml:"exclusiveMin,omitempty" json:"exclusiveMin,omitempty"`
	AdvisoryMin  *float64 `yaml:"advisoryMin,omitempty"  json:"advisoryMin,omitempty"`
	AdvisoryMax  *float64 `yaml:"advisoryMax,omitempty"  json:"advisoryMax,omitempty"`
}

// Contains reports whether v satisfies the hard bounds.
func (r Range) Contains(v float64) bool {
	if r.Min != nil {
		if r.ExclusiveMin && v <= *r.Min {
			return false
		}
		if !r.ExclusiveMin && v < *r.Min {
			return false
		}
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// InAdvisoryBand reports whether v is inside the advisory band. A missing
// band edge is unbounded on that side.
func (r Range) InAdvisoryBand(v float64) bool {
	if r.AdvisoryMin != nil && v < *r.AdvisoryMin {
		return false
	}
	if r.AdvisoryMax != nil && v > *r.AdvisoryMax {
		return false
	}
	return true
}

// Vocabulary is the full capability table for one deployment.
type Vocabulary struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	ConditionTypes []string `yaml:"conditionTypes" json:"conditionTypes"`
	ActionTypes    []string `yaml:"actionTypes"    json:"actionTypes"`

	TouchTypes        []string `yaml:"touchTypes"        json:"touchTypes"`
	Comparisons       []string `yaml:"comparisons"       json:"comparisons"`
	CounterOperations []string `yaml:"counterOperations" json:"counterOperations"`
	MovementTypes     []string `yaml:"movementTypes"     json:"movementTypes"`
	CollisionTypes    []string `yaml:"collisionTypes"    json:"collisionTypes"`
	EffectTypes       []string `yaml:"effectTypes"       json:"effectTypes"`
	GameStates        []string `yaml:"gameStates"        json:"gameStates"`
	ObjectStates      []string `yaml:"objectStates"      json:"objectStates"`

	Speed       Range `yaml:"speed"       json:"speed"`
	Duration    Range `yaml:"duration"    json:"duration"`
	ScaleAmount Range `yaml:"scaleAmount" json:"scaleAmount"`
	Probability Range `yaml:"probability" json:"probability"`
	Volume      Range `yaml:"volume"      json:"volume"`
	Coordinate  Range `yaml:"coordinate"  json:"coordinate"`
	TimeSeconds Range `yaml:"timeSeconds" json:"timeSeconds"`
	Interval    Range `yaml:"interval"    json:"interval"`
}

// HasConditionType reports membership in the supported condition-type set.
func (v *Vocabulary) HasConditionType(t string) bool { return contains(v.ConditionTypes, t) }

// HasActionType reports membership in the supported action-type set.
func (v *Vocabulary) HasActionType(t string) bool { return contains(v.ActionTypes, t) }

func contains(set []string, s string) bool {
	for _, m := range set {
		if m == s {
			return true
		}
	}
	return false
}

// LoadFile reads a capability table from a YAML file. Unknown fields are
// rejected so a stale table surfaces loudly instead of silently allowing
// everything.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	var v Vocabulary
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return &v, nil
}

func ptr(v float64) *float64 { return &v }

// Default returns the capability table for the current deployment.
func Default() *Vocabulary {
	return &Vocabulary{
		Version: "2026-08",

		ConditionTypes: []string{
			"touch", "time", "counter", "collision", "flag",
			"gameState", "position", "animation", "random", "objectState",
		},
		ActionTypes: []string{
			"success", "failure", "hide", "show", "move", "counter",
			"addScore", "effect", "setFlag", "toggleFlag", "playSound",
			"switchAnimation", "applyForce", "applyImpulse", "randomAction",
			"followDrag",
		},

		TouchTypes:        []string{"down", "up", "hold", "drag"},
		Comparisons:       []string{"equals", "notEquals", "greater", "greaterOrEqual", "less", "lessOrEqual"},
		CounterOperations: []string{"increment", "decrement", "add", "subtract", "set"},
		MovementTypes:     []string{"straight", "teleport", "bounce", "orbit", "followPath"},
		CollisionTypes:    []string{"start", "during", "end"},
		EffectTypes:       []string{"flash", "shake", "scale", "fade"},
		GameStates:        []string{"ready", "playing", "paused"},
		ObjectStates:      []string{"visible", "hidden"},

		Speed:       Range{Min: ptr(0), ExclusiveMin: true, AdvisoryMin: ptr(0.5), AdvisoryMax: ptr(15.0)},
		Duration:    Range{Min: ptr(0), ExclusiveMin: true, AdvisoryMax: ptr(5.0)},
		ScaleAmount: Range{Min: ptr(0), ExclusiveMin: true, AdvisoryMax: ptr(3.0)},
		Probability: Range{Min: ptr(0), Max: ptr(1)},
		Volume:      Range{Min: ptr(0), Max: ptr(1)},
		Coordinate:  Range{Min: ptr(0), Max: ptr(1)},
		TimeSeconds: Range{Min: ptr(0), Max: ptr(60)},
		Interval:    Range{Min: ptr(0), ExclusiveMin: true, Max: ptr(10)},
	}
}
