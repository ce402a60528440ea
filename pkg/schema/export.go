package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Wire-format document types used only for schema generation. Condition and
// Action carry custom (un)marshallers that flatten the tagged unions, so the
// schema is reflected from these flat doc shapes rather than the Go unions.

type ruleSetDoc struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Layout      Layout       `json:"layout"`
	Counters    []Counter    `json:"counters,omitempty"`
	Rules       []ruleDoc    `json:"rules"`
	Assets      assetPlanDoc `json:"assets"`
}

type assetPlanDoc struct {
	Objects []ObjectAsset `json:"objects"`
	Sounds  []SoundAsset  `json:"sounds,omitempty"`
	BGM     *BGMAsset     `json:"bgm,omitempty"`
}

type ruleDoc struct {
	ID             string      `json:"id"`
	TargetObjectID string      `json:"targetObjectId,omitempty"`
	Trigger        triggerDoc  `json:"trigger"`
	Actions        []actionDoc `json:"actions"`
}

type triggerDoc struct {
	Operator   string         `json:"operator,omitempty"`
	Conditions []conditionDoc `json:"conditions"`
}

type conditionDoc struct {
	Type          string   `json:"type"`
	Target        string   `json:"target,omitempty"`
	TouchType     string   `json:"touchType,omitempty"`
	Seconds       *float64 `json:"seconds,omitempty"`
	Interval      *float64 `json:"interval,omitempty"`
	CounterName   string   `json:"counterName,omitempty"`
	Comparison    string   `json:"comparison,omitempty"`
	Value         any      `json:"value,omitempty"` // number (counter) or bool (flag)
	CollisionType string   `json:"collisionType,omitempty"`
	FlagID        string   `json:"flagId,omitempty"`
	State         string   `json:"state,omitempty"`
	Region        *Region  `json:"region,omitempty"`
	Area          string   `json:"area,omitempty"`
	AnimationID   string   `json:"animationId,omitempty"`
	FrameNumber   *int     `json:"frameNumber,omitempty"`
	Probability   *float64 `json:"probability,omitempty"`
}

type actionDoc struct {
	Type        string    `json:"type"`
	TargetID    string    `json:"targetId,omitempty"`
	Movement    *Movement `json:"movement,omitempty"`
	CounterName string    `json:"counterName,omitempty"`
	Operation   string    `json:"operation,omitempty"`
	Value       any       `json:"value,omitempty"` // number (counter) or bool (setFlag)
	Points      *float64  `json:"points,omitempty"`
	EffectType  string    `json:"effectType,omitempty"`
	Duration    *float64  `json:"duration,omitempty"`
	ScaleAmount *float64  `json:"scaleAmount,omitempty"`
	FlagID      string    `json:"flagId,omitempty"`
	SoundID     string    `json:"soundId,omitempty"`
	Volume      *float64  `json:"volume,omitempty"`
	AnimationID string    `json:"animationId,omitempty"`
	Force       *Vec      `json:"force,omitempty"`
	Impulse     *Vec      `json:"impulse,omitempty"`
	Probability *float64  `json:"probability,omitempty"`
}

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document for the
// rule-set wire format.
func GenerateJSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Extra fields inside conditions/actions are a vocabulary concern for
		// the feature validator, not a structural failure.
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&ruleSetDoc{})
	s.ID = "https://github.com/lumaplay/rulecheck/schemas/ruleset-v0.json"
	s.Title = "Minigame Rule Set — ruleset/v0"
	s.Description = "Schema for minigame rule-set documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ruleset schema: %w", err)
	}
	return data, nil
}
