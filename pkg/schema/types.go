// Package schema defines the minigame rule-set document model: layout,
// counters, rules built from trigger conditions and actions, and the asset
// plan that is the authoritative identifier vocabulary.
package schema

// Reserved condition target tokens that never resolve against the asset plan.
const (
	TargetSelf      = "self"
	TargetStage     = "stage"
	TargetStageArea = "stageArea"
	TargetOther     = "other"
)

// ReservedTarget reports whether the target token is reserved.
func ReservedTarget(t string) bool {
	switch t {
	case TargetSelf, TargetStage, TargetStageArea, TargetOther:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// RuleSet
// ---------------------------------------------------------------------------

// RuleSet is the top-level document under analysis.
type RuleSet struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Layout      Layout    `json:"layout"`
	Counters    []Counter `json:"counters,omitempty"`
	Rules       []Rule    `json:"rules"`
	Assets      AssetPlan `json:"assets"`
}

// Layout holds the placed object instances.
type Layout struct {
	Objects []LayoutObject `json:"objects"`
}

// LayoutObject is a placed reference to an object asset. Positions are
// normalized to [0,1] in both axes.
type LayoutObject struct {
	ObjectID string   `json:"objectId"`
	Position Position `json:"position"`
	Scale    float64  `json:"scale,omitempty"`
}

// Position is a normalized stage coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec is a 2D force/impulse vector.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a normalized rectangular stage area.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Counter is a named mutable integer used for scoring and progress.
type Counter struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName,omitempty"`
	InitialValue int    `json:"initialValue"`
}

// AssetPlan is the authoritative set of valid identifiers.
type AssetPlan struct {
	Objects []ObjectAsset `json:"objects"`
	Sounds  []SoundAsset  `json:"sounds,omitempty"`
	BGM     *BGMAsset     `json:"bgm,omitempty"`
}

// ObjectAsset declares one drawable object.
type ObjectAsset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	FollowsDrag bool      `json:"followsDrag,omitempty"`
	Position    *Position `json:"position,omitempty"` // advisory initial position
}

// SoundAsset declares one playable sound effect.
type SoundAsset struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger,omitempty"`
	Type    string `json:"type,omitempty"`
}

// BGMAsset declares the background music track.
type BGMAsset struct {
	ID     string   `json:"id"`
	Volume *float64 `json:"volume,omitempty"`
}

// ---------------------------------------------------------------------------
// Rule
// ---------------------------------------------------------------------------

// TriggerOperator combines a rule's conditions.
type TriggerOperator string

const (
	OpAnd TriggerOperator = "AND"
	OpOr  TriggerOperator = "OR"
)

// Rule maps a trigger clause to an ordered action list.
type Rule struct {
	ID             string   `json:"id"`
	TargetObjectID string   `json:"targetObjectId,omitempty"` // default binding for "self"
	Trigger        Trigger  `json:"trigger"`
	Actions        []Action `json:"actions"`
}

// Trigger is a boolean combinator over an ordered condition list.
type Trigger struct {
	Operator   TriggerOperator `json:"operator,omitempty"`
	Conditions []Condition     `json:"conditions"`
}

// ---------------------------------------------------------------------------
// Conditions: tagged union keyed by type
// ---------------------------------------------------------------------------

// ConditionType discriminates condition variants.
type ConditionType string

const (
	CondTouch       ConditionType = "touch"
	CondTime        ConditionType = "time"
	CondCounter     ConditionType = "counter"
	CondCollision   ConditionType = "collision"
	CondFlag        ConditionType = "flag"
	CondGameState   ConditionType = "gameState"
	CondPosition    ConditionType = "position"
	CondAnimation   ConditionType = "animation"
	CondRandom      ConditionType = "random"
	CondObjectState ConditionType = "objectState"
)

// Condition is a tagged union: Type selects which variant pointer is set.
// An unrecognized type leaves all variants nil; the feature validator
// reports it rather than the decoder rejecting the document.
type Condition struct {
	Type ConditionType

	Touch       *TouchCondition
	Time        *TimeCondition
	Counter     *CounterCondition
	Collision   *CollisionCondition
	Flag        *FlagCondition
	GameState   *GameStateCondition
	Position    *PositionCondition
	Animation   *AnimationCondition
	Random      *RandomCondition
	ObjectState *ObjectStateCondition
}

// TouchCondition fires on pointer interaction with a target.
type TouchCondition struct {
	Target    string
	TouchType string // down, up, hold, drag
}

// TimeCondition fires at an absolute time or on a repeating interval.
type TimeCondition struct {
	Seconds  *float64
	Interval *float64
}

// CounterCondition compares a counter against a threshold.
type CounterCondition struct {
	CounterName string
	Comparison  string // equals, notEquals, greater, greaterOrEqual, less, lessOrEqual
	Value       *float64
}

// CollisionCondition fires when two objects overlap.
type CollisionCondition struct {
	Target        string
	CollisionType string // start, during, end
}

// FlagCondition tests a boolean flag.
type FlagCondition struct {
	FlagID string
	Value  bool
}

// GameStateCondition tests the global game phase.
type GameStateCondition struct {
	State string // playing, paused, ready
}

// PositionCondition tests whether a target is inside a stage region.
type PositionCondition struct {
	Target string
	Region *Region
	Area   string // named area alternative to an explicit region
}

// AnimationCondition fires when a target's animation reaches a frame.
type AnimationCondition struct {
	Target      string
	AnimationID string
	FrameNumber *int
}

// RandomCondition fires with the given probability per evaluation.
type RandomCondition struct {
	Probability *float64
}

// ObjectStateCondition tests target visibility.
type ObjectStateCondition struct {
	Target string
	State  string // visible, hidden
}

// ---------------------------------------------------------------------------
// Actions: tagged union keyed by type
// ---------------------------------------------------------------------------

// ActionType discriminates action variants.
type ActionType string

const (
	ActSuccess         ActionType = "success"
	ActFailure         ActionType = "failure"
	ActHide            ActionType = "hide"
	ActShow            ActionType = "show"
	ActMove            ActionType = "move"
	ActCounter         ActionType = "counter"
	ActAddScore        ActionType = "addScore"
	ActEffect          ActionType = "effect"
	ActSetFlag         ActionType = "setFlag"
	ActToggleFlag      ActionType = "toggleFlag"
	ActPlaySound       ActionType = "playSound"
	ActSwitchAnimation ActionType = "switchAnimation"
	ActApplyForce      ActionType = "applyForce"
	ActApplyImpulse    ActionType = "applyImpulse"
	ActRandom          ActionType = "randomAction"
	ActFollowDrag      ActionType = "followDrag"
)

// Action is a tagged union: Type selects which variant pointer is set.
type Action struct {
	Type ActionType

	Hide            *HideAction
	Show            *ShowAction
	Move            *MoveAction
	Counter         *CounterAction
	AddScore        *AddScoreAction
	Effect          *EffectAction
	SetFlag         *SetFlagAction
	ToggleFlag      *ToggleFlagAction
	PlaySound       *PlaySoundAction
	SwitchAnimation *SwitchAnimationAction
	ApplyForce      *ApplyForceAction
	ApplyImpulse    *ApplyImpulseAction
	Random          *RandomActionParams
	FollowDrag      *FollowDragAction
}

// HideAction removes a target from the stage.
type HideAction struct {
	TargetID string
}

// ShowAction reveals a hidden target.
type ShowAction struct {
	TargetID string
}

// MoveAction starts a movement on the target.
type MoveAction struct {
	TargetID string
	Movement Movement
}

// Movement describes how a move action animates.
type Movement struct {
	Type        string    `json:"type"` // straight, teleport, bounce, orbit, followPath
	Speed       float64   `json:"speed"`
	Destination *Position `json:"destination,omitempty"`
}

// CounterAction mutates a counter.
type CounterAction struct {
	CounterName string
	Operation   string // increment, decrement, add, subtract, set
	Value       *float64
}

// AddScoreAction adds points to the score display.
type AddScoreAction struct {
	Points *float64
}

// EffectAction plays a visual effect on the target.
type EffectAction struct {
	TargetID    string
	EffectType  string // flash, shake, scale, fade
	Duration    *float64
	ScaleAmount *float64
}

// SetFlagAction assigns a flag.
type SetFlagAction struct {
	FlagID string
	Value  bool
}

// ToggleFlagAction inverts a flag.
type ToggleFlagAction struct {
	FlagID string
}

// PlaySoundAction plays a declared sound asset.
type PlaySoundAction struct {
	SoundID string
	Volume  *float64
}

// SwitchAnimationAction changes the target's animation.
type SwitchAnimationAction struct {
	TargetID    string
	AnimationID string
}

// ApplyForceAction applies a continuous force to the target.
type ApplyForceAction struct {
	TargetID string
	Force    Vec
}

// ApplyImpulseAction applies an instantaneous impulse to the target.
type ApplyImpulseAction struct {
	TargetID string
	Impulse  Vec
}

// RandomActionParams gates the rule's remaining effects behind a probability.
type RandomActionParams struct {
	Probability *float64
}

// FollowDragAction makes the target track the player's drag.
type FollowDragAction struct {
	TargetID string
}

// ---------------------------------------------------------------------------
// Lookup helpers
// ---------------------------------------------------------------------------

// ObjectIDs returns the set of declared object asset ids.
func (rs *RuleSet) ObjectIDs() map[string]bool {
	ids := make(map[string]bool, len(rs.Assets.Objects))
	for _, o := range rs.Assets.Objects {
		ids[o.ID] = true
	}
	return ids
}

// SoundIDs returns the set of declared sound asset ids.
func (rs *RuleSet) SoundIDs() map[string]bool {
	ids := make(map[string]bool, len(rs.Assets.Sounds))
	for _, s := range rs.Assets.Sounds {
		ids[s.ID] = true
	}
	return ids
}

// CounterByID returns the declared counter with the given id.
func (rs *RuleSet) CounterByID(id string) (Counter, bool) {
	for _, c := range rs.Counters {
		if c.ID == id {
			return c, true
		}
	}
	return Counter{}, false
}

// RuleByID returns the rule with the given id.
func (rs *RuleSet) RuleByID(id string) (*Rule, bool) {
	for i := range rs.Rules {
		if rs.Rules[i].ID == id {
			return &rs.Rules[i], true
		}
	}
	return nil, false
}

// DragFollowedObjects returns object ids controlled by the player through
// dragging, either declared on the asset or enabled by a followDrag action.
func (rs *RuleSet) DragFollowedObjects() map[string]bool {
	ids := make(map[string]bool)
	for _, o := range rs.Assets.Objects {
		if o.FollowsDrag {
			ids[o.ID] = true
		}
	}
	for i := range rs.Rules {
		for _, a := range rs.Rules[i].Actions {
			if a.Type == ActFollowDrag && a.FollowDrag != nil {
				id := a.FollowDrag.TargetID
				if id == TargetSelf {
					id = rs.Rules[i].TargetObjectID
				}
				if id != "" {
					ids[id] = true
				}
			}
		}
	}
	return ids
}

// ResolveTarget rebinds "self" to the rule's target object id.
func (r *Rule) ResolveTarget(target string) string {
	if target == TargetSelf {
		return r.TargetObjectID
	}
	return target
}

// HasActionType reports whether any action in the rule has the given type.
func (r *Rule) HasActionType(t ActionType) bool {
	for _, a := range r.Actions {
		if a.Type == t {
			return true
		}
	}
	return false
}
