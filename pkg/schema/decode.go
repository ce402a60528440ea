package schema

import (
	"encoding/json"
	"fmt"
)

// Conditions and actions travel as flat objects discriminated by "type"
// ({"type":"counter","counterName":"score",...}). The envelope types below
// carry every field any variant can use; UnmarshalJSON routes them into the
// matching variant struct so the rest of the engine never sees fields that
// don't belong to a type.

type conditionEnvelope struct {
	Type          ConditionType   `json:"type"`
	Target        string          `json:"target,omitempty"`
	TouchType     string          `json:"touchType,omitempty"`
	Seconds       *float64        `json:"seconds,omitempty"`
	Interval      *float64        `json:"interval,omitempty"`
	CounterName   string          `json:"counterName,omitempty"`
	Comparison    string          `json:"comparison,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"` // number for counter, bool for flag
	CollisionType string          `json:"collisionType,omitempty"`
	FlagID        string          `json:"flagId,omitempty"`
	State         string          `json:"state,omitempty"`
	Region        *Region         `json:"region,omitempty"`
	Area          string          `json:"area,omitempty"`
	AnimationID   string          `json:"animationId,omitempty"`
	FrameNumber   *int            `json:"frameNumber,omitempty"`
	Probability   *float64        `json:"probability,omitempty"`
}

// UnmarshalJSON decodes the flat wire form into the tagged union.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var env conditionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode condition: %w", err)
	}
	*c = Condition{Type: env.Type}

	switch env.Type {
	case CondTouch:
		c.Touch = &TouchCondition{Target: env.Target, TouchType: env.TouchType}
	case CondTime:
		c.Time = &TimeCondition{Seconds: env.Seconds, Interval: env.Interval}
	case CondCounter:
		cc := &CounterCondition{CounterName: env.CounterName, Comparison: env.Comparison}
		if len(env.Value) > 0 {
			var v float64
			if err := json.Unmarshal(env.Value, &v); err != nil {
				return fmt.Errorf("counter condition value: %w", err)
			}
			cc.Value = &v
		}
		c.Counter = cc
	case CondCollision:
		c.Collision = &CollisionCondition{Target: env.Target, CollisionType: env.CollisionType}
	case CondFlag:
		fc := &FlagCondition{FlagID: env.FlagID}
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &fc.Value); err != nil {
				return fmt.Errorf("flag condition value: %w", err)
			}
		}
		c.Flag = fc
	case CondGameState:
		c.GameState = &GameStateCondition{State: env.State}
	case CondPosition:
		c.Position = &PositionCondition{Target: env.Target, Region: env.Region, Area: env.Area}
	case CondAnimation:
		c.Animation = &AnimationCondition{Target: env.Target, AnimationID: env.AnimationID, FrameNumber: env.FrameNumber}
	case CondRandom:
		c.Random = &RandomCondition{Probability: env.Probability}
	case CondObjectState:
		c.ObjectState = &ObjectStateCondition{Target: env.Target, State: env.State}
	default:
		// Unknown type: kept as-is for the feature validator to report.
	}
	return nil
}

// MarshalJSON re-emits the flat wire form.
func (c Condition) MarshalJSON() ([]byte, error) {
	env := conditionEnvelope{Type: c.Type}
	switch c.Type {
	case CondTouch:
		if c.Touch != nil {
			env.Target = c.Touch.Target
			env.TouchType = c.Touch.TouchType
		}
	case CondTime:
		if c.Time != nil {
			env.Seconds = c.Time.Seconds
			env.Interval = c.Time.Interval
		}
	case CondCounter:
		if c.Counter != nil {
			env.CounterName = c.Counter.CounterName
			env.Comparison = c.Counter.Comparison
			if c.Counter.Value != nil {
				env.Value = mustRaw(*c.Counter.Value)
			}
		}
	case CondCollision:
		if c.Collision != nil {
			env.Target = c.Collision.Target
			env.CollisionType = c.Collision.CollisionType
		}
	case CondFlag:
		if c.Flag != nil {
			env.FlagID = c.Flag.FlagID
			env.Value = mustRaw(c.Flag.Value)
		}
	case CondGameState:
		if c.GameState != nil {
			env.State = c.GameState.State
		}
	case CondPosition:
		if c.Position != nil {
			env.Target = c.Position.Target
			env.Region = c.Position.Region
			env.Area = c.Position.Area
		}
	case CondAnimation:
		if c.Animation != nil {
			env.Target = c.Animation.Target
			env.AnimationID = c.Animation.AnimationID
			env.FrameNumber = c.Animation.FrameNumber
		}
	case CondRandom:
		if c.Random != nil {
			env.Probability = c.Random.Probability
		}
	case CondObjectState:
		if c.ObjectState != nil {
			env.Target = c.ObjectState.Target
			env.State = c.ObjectState.State
		}
	}
	return json.Marshal(env)
}

type actionEnvelope struct {
	Type        ActionType      `json:"type"`
	TargetID    string          `json:"targetId,omitempty"`
	Movement    *Movement       `json:"movement,omitempty"`
	CounterName string          `json:"counterName,omitempty"`
	Operation   string          `json:"operation,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"` // number for counter, bool for setFlag
	Points      *float64        `json:"points,omitempty"`
	EffectType  string          `json:"effectType,omitempty"`
	Duration    *float64        `json:"duration,omitempty"`
	ScaleAmount *float64        `json:"scaleAmount,omitempty"`
	FlagID      string          `json:"flagId,omitempty"`
	SoundID     string          `json:"soundId,omitempty"`
	Volume      *float64        `json:"volume,omitempty"`
	AnimationID string          `json:"animationId,omitempty"`
	Force       *Vec            `json:"force,omitempty"`
	Impulse     *Vec            `json:"impulse,omitempty"`
	Probability *float64        `json:"probability,omitempty"`
}

// UnmarshalJSON decodes the flat wire form into the tagged union.
func (a *Action) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	*a = Action{Type: env.Type}

	switch env.Type {
	case ActSuccess, ActFailure:
		// No parameters.
	case ActHide:
		a.Hide = &HideAction{TargetID: env.TargetID}
	case ActShow:
		a.Show = &ShowAction{TargetID: env.TargetID}
	case ActMove:
		ma := &MoveAction{TargetID: env.TargetID}
		if env.Movement != nil {
			ma.Movement = *env.Movement
		}
		a.Move = ma
	case ActCounter:
		ca := &CounterAction{CounterName: env.CounterName, Operation: env.Operation}
		if len(env.Value) > 0 {
			var v float64
			if err := json.Unmarshal(env.Value, &v); err != nil {
				return fmt.Errorf("counter action value: %w", err)
			}
			ca.Value = &v
		}
		a.Counter = ca
	case ActAddScore:
		a.AddScore = &AddScoreAction{Points: env.Points}
	case ActEffect:
		a.Effect = &EffectAction{TargetID: env.TargetID, EffectType: env.EffectType, Duration: env.Duration, ScaleAmount: env.ScaleAmount}
	case ActSetFlag:
		sa := &SetFlagAction{FlagID: env.FlagID}
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &sa.Value); err != nil {
				return fmt.Errorf("setFlag value: %w", err)
			}
		}
		a.SetFlag = sa
	case ActToggleFlag:
		a.ToggleFlag = &ToggleFlagAction{FlagID: env.FlagID}
	case ActPlaySound:
		a.PlaySound = &PlaySoundAction{SoundID: env.SoundID, Volume: env.Volume}
	case ActSwitchAnimation:
		a.SwitchAnimation = &SwitchAnimationAction{TargetID: env.TargetID, AnimationID: env.AnimationID}
	case ActApplyForce:
		fa := &ApplyForceAction{TargetID: env.TargetID}
		if env.Force != nil {
			fa.Force = *env.Force
		}
		a.ApplyForce = fa
	case ActApplyImpulse:
		ia := &ApplyImpulseAction{TargetID: env.TargetID}
		if env.Impulse != nil {
			ia.Impulse = *env.Impulse
		}
		a.ApplyImpulse = ia
	case ActRandom:
		a.Random = &RandomActionParams{Probability: env.Probability}
	case ActFollowDrag:
		a.FollowDrag = &FollowDragAction{TargetID: env.TargetID}
	default:
		// Unknown type: kept for the feature validator to report.
	}
	return nil
}

// MarshalJSON re-emits the flat wire form.
func (a Action) MarshalJSON() ([]byte, error) {
	env := actionEnvelope{Type: a.Type}
	switch a.Type {
	case ActHide:
		if a.Hide != nil {
			env.TargetID = a.Hide.TargetID
		}
	case ActShow:
		if a.Show != nil {
			env.TargetID = a.Show.TargetID
		}
	case ActMove:
		if a.Move != nil {
			env.TargetID = a.Move.TargetID
			m := a.Move.Movement
			env.Movement = &m
		}
	case ActCounter:
		if a.Counter != nil {
			env.CounterName = a.Counter.CounterName
			env.Operation = a.Counter.Operation
			if a.Counter.Value != nil {
				env.Value = mustRaw(*a.Counter.Value)
			}
		}
	case ActAddScore:
		if a.AddScore != nil {
			env.Points = a.AddScore.Points
		}
	case ActEffect:
		if a.Effect != nil {
			env.TargetID = a.Effect.TargetID
			env.EffectType = a.Effect.EffectType
			env.Duration = a.Effect.Duration
			env.ScaleAmount = a.Effect.ScaleAmount
		}
	case ActSetFlag:
		if a.SetFlag != nil {
			env.FlagID = a.SetFlag.FlagID
			env.Value = mustRaw(a.SetFlag.Value)
		}
	case ActToggleFlag:
		if a.ToggleFlag != nil {
			env.FlagID = a.ToggleFlag.FlagID
		}
	case ActPlaySound:
		if a.PlaySound != nil {
			env.SoundID = a.PlaySound.SoundID
			env.Volume = a.PlaySound.Volume
		}
	case ActSwitchAnimation:
		if a.SwitchAnimation != nil {
			env.TargetID = a.SwitchAnimation.TargetID
			env.AnimationID = a.SwitchAnimation.AnimationID
		}
	case ActApplyForce:
		if a.ApplyForce != nil {
			env.TargetID = a.ApplyForce.TargetID
			f := a.ApplyForce.Force
			env.Force = &f
		}
	case ActApplyImpulse:
		if a.ApplyImpulse != nil {
			env.TargetID = a.ApplyImpulse.TargetID
			i := a.ApplyImpulse.Impulse
			env.Impulse = &i
		}
	case ActRandom:
		if a.Random != nil {
			env.Probability = a.Random.Probability
		}
	case ActFollowDrag:
		if a.FollowDrag != nil {
			env.TargetID = a.FollowDrag.TargetID
		}
	}
	return json.Marshal(env)
}

func mustRaw(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err) // numbers and bools cannot fail to marshal
	}
	return data
}
