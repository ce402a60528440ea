package schema

// Explicit typed deep copies. The repair engine clones the whole document
// before editing so the caller's value is never mutated; the simulator clones
// per-variant pointers when replaying actions. No JSON round-trips: cloning
// is a pure value copy with bounded cost.

// Clone returns a deep copy of the rule-set.
func (rs *RuleSet) Clone() *RuleSet {
	if rs == nil {
		return nil
	}
	out := *rs

	out.Layout.Objects = append([]LayoutObject(nil), rs.Layout.Objects...)
	out.Counters = append([]Counter(nil), rs.Counters...)

	out.Assets.Objects = make([]ObjectAsset, len(rs.Assets.Objects))
	for i, o := range rs.Assets.Objects {
		out.Assets.Objects[i] = o
		out.Assets.Objects[i].Position = clonePtr(o.Position)
	}
	out.Assets.Sounds = append([]SoundAsset(nil), rs.Assets.Sounds...)
	if rs.Assets.BGM != nil {
		bgm := *rs.Assets.BGM
		bgm.Volume = clonePtr(rs.Assets.BGM.Volume)
		out.Assets.BGM = &bgm
	}

	out.Rules = make([]Rule, len(rs.Rules))
	for i := range rs.Rules {
		out.Rules[i] = rs.Rules[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	out := r
	out.Trigger.Conditions = make([]Condition, len(r.Trigger.Conditions))
	for i, c := range r.Trigger.Conditions {
		out.Trigger.Conditions[i] = c.Clone()
	}
	out.Actions = make([]Action, len(r.Actions))
	for i, a := range r.Actions {
		out.Actions[i] = a.Clone()
	}
	return out
}

// Clone returns a deep copy of the condition.
func (c Condition) Clone() Condition {
	out := c
	out.Touch = clonePtr(c.Touch)
	out.Collision = clonePtr(c.Collision)
	out.Flag = clonePtr(c.Flag)
	out.GameState = clonePtr(c.GameState)
	out.ObjectState = clonePtr(c.ObjectState)
	if c.Time != nil {
		t := *c.Time
		t.Seconds = clonePtr(c.Time.Seconds)
		t.Interval = clonePtr(c.Time.Interval)
		out.Time = &t
	}
	if c.Counter != nil {
		cc := *c.Counter
		cc.Value = clonePtr(c.Counter.Value)
		out.Counter = &cc
	}
	if c.Position != nil {
		p := *c.Position
		p.Region = clonePtr(c.Position.Region)
		out.Position = &p
	}
	if c.Animation != nil {
		a := *c.Animation
		a.FrameNumber = clonePtr(c.Animation.FrameNumber)
		out.Animation = &a
	}
	if c.Random != nil {
		r := *c.Random
		r.Probability = clonePtr(c.Random.Probability)
		out.Random = &r
	}
	return out
}

// Clone returns a deep copy of the action.
func (a Action) Clone() Action {
	out := a
	out.Hide = clonePtr(a.Hide)
	out.Show = clonePtr(a.Show)
	out.SetFlag = clonePtr(a.SetFlag)
	out.ToggleFlag = clonePtr(a.ToggleFlag)
	out.SwitchAnimation = clonePtr(a.SwitchAnimation)
	out.ApplyForce = clonePtr(a.ApplyForce)
	out.ApplyImpulse = clonePtr(a.ApplyImpulse)
	out.FollowDrag = clonePtr(a.FollowDrag)
	if a.Move != nil {
		m := *a.Move
		m.Movement.Destination = clonePtr(a.Move.Movement.Destination)
		out.Move = &m
	}
	if a.Counter != nil {
		c := *a.Counter
		c.Value = clonePtr(a.Counter.Value)
		out.Counter = &c
	}
	if a.AddScore != nil {
		s := *a.AddScore
		s.Points = clonePtr(a.AddScore.Points)
		out.AddScore = &s
	}
	if a.Effect != nil {
		e := *a.Effect
		e.Duration = clonePtr(a.Effect.Duration)
		e.ScaleAmount = clonePtr(a.Effect.ScaleAmount)
		out.Effect = &e
	}
	if a.PlaySound != nil {
		p := *a.PlaySound
		p.Volume = clonePtr(a.PlaySound.Volume)
		out.PlaySound = &p
	}
	if a.Random != nil {
		r := *a.Random
		r.Probability = clonePtr(a.Random.Probability)
		out.Random = &r
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
