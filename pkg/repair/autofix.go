package repair

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/validate"
)

// RepairAction is the audit record for one applied fix.
type RepairAction struct {
	Code        validate.Code `json:"code"`
	Description string        `json:"description"`
	RuleID      string        `json:"ruleId,omitempty"`
	FieldPath   string        `json:"fieldPath"`
	Before      string        `json:"before"`
	After       string        `json:"after"`
}

var indexRe = regexp.MustCompile(`\[(\d+)\]`)

// pathIndices extracts the bracketed indices from a field path in order.
func pathIndices(path string) []int {
	matches := indexRe.FindAllStringSubmatch(path, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

// autoFix applies one numeric correction in place, locating the field
// through the error's structured path. Clamping an already-clamped value is
// a no-op, so repeated application is idempotent.
func autoFix(rs *schema.RuleSet, e *validate.Error) (*RepairAction, bool) {
	fix := func(ptr *float64, after float64, what string) (*RepairAction, bool) {
		if ptr == nil {
			return nil, false
		}
		before := *ptr
		if before == after {
			return nil, false
		}
		*ptr = after
		return &RepairAction{
			Code:        e.Code,
			Description: what,
			RuleID:      e.RuleID,
			FieldPath:   e.FieldPath,
			Before:      fmt.Sprintf("%g", before),
			After:       fmt.Sprintf("%g", after),
		}, true
	}

	switch e.Code {
	case validate.CodeCoordOutOfRange, validate.CodeAssetCoordOutOfRange:
		ptr := coordField(rs, e.FieldPath)
		if ptr == nil {
			return nil, false
		}
		return fix(ptr, clamp(*ptr, 0, 1), "clamp coordinate to [0,1]")

	case validate.CodeInvalidSpeed, validate.CodeSpeedOutOfBand:
		ptr := speedField(rs, e.FieldPath)
		if ptr == nil {
			return nil, false
		}
		return fix(ptr, clamp(*ptr, 0.5, 15), "clamp speed to [0.5,15]")

	case validate.CodeInvalidTimeSeconds:
		ptr := timeField(rs, e.FieldPath, "seconds")
		if ptr == nil {
			return nil, false
		}
		return fix(ptr, clamp(*ptr, 0, 60), "clamp time to [0,60] seconds")

	case validate.CodeInvalidTimeInterval:
		ptr := timeField(rs, e.FieldPath, "interval")
		if ptr == nil {
			return nil, false
		}
		after := clamp(*ptr, 1, 10) // interval must stay above zero
		return fix(ptr, after, "clamp interval to (0,10] seconds")

	case validate.CodeInvalidVolume:
		a := actionAt(rs, e.FieldPath)
		if a == nil || a.PlaySound == nil {
			return nil, false
		}
		return fix(a.PlaySound.Volume, clamp(deref(a.PlaySound.Volume), 0, 1), "clamp volume to [0,1]")

	case validate.CodeInvalidProbability:
		ptr := probabilityField(rs, e.FieldPath)
		if ptr == nil {
			return nil, false
		}
		return fix(ptr, clamp(*ptr, 0, 1), "clamp probability to [0,1]")

	case validate.CodeMissingProbability:
		return fillProbability(rs, e)

	case validate.CodeInvalidDuration, validate.CodeDurationOutOfBand:
		a := actionAt(rs, e.FieldPath)
		if a == nil || a.Effect == nil {
			return nil, false
		}
		return fix(a.Effect.Duration, clamp(deref(a.Effect.Duration), 0.5, 5), "clamp effect duration to [0.5,5]")

	case validate.CodeInvalidScale, validate.CodeScaleOutOfBand:
		a := actionAt(rs, e.FieldPath)
		if a == nil || a.Effect == nil {
			return nil, false
		}
		return fix(a.Effect.ScaleAmount, clamp(deref(a.Effect.ScaleAmount), 0.5, 3), "clamp scale amount to [0.5,3]")

	case validate.CodeNegativeScore:
		a := actionAt(rs, e.FieldPath)
		if a == nil || a.AddScore == nil || a.AddScore.Points == nil {
			return nil, false
		}
		return fix(a.AddScore.Points, -*a.AddScore.Points, "negate negative score points")

	case validate.CodeMissingScorePoints:
		a := actionAt(rs, e.FieldPath)
		if a == nil || a.AddScore == nil || a.AddScore.Points != nil {
			return nil, false
		}
		def := 100.0
		a.AddScore.Points = &def
		return &RepairAction{
			Code:        e.Code,
			Description: "fill default score of 100 points",
			RuleID:      e.RuleID,
			FieldPath:   e.FieldPath,
			Before:      "",
			After:       "100",
		}, true
	}
	return nil, false
}

func fillProbability(rs *schema.RuleSet, e *validate.Error) (*RepairAction, bool) {
	record := func() *RepairAction {
		return &RepairAction{
			Code:        e.Code,
			Description: "fill default probability of 0.5",
			RuleID:      e.RuleID,
			FieldPath:   e.FieldPath,
			Before:      "",
			After:       "0.5",
		}
	}
	def := 0.5
	if strings.Contains(e.FieldPath, ".trigger.conditions[") {
		c := conditionAt(rs, e.FieldPath)
		if c == nil || c.Random == nil || c.Random.Probability != nil {
			return nil, false
		}
		c.Random.Probability = &def
		return record(), true
	}
	a := actionAt(rs, e.FieldPath)
	if a == nil || a.Random == nil || a.Random.Probability != nil {
		return nil, false
	}
	a.Random.Probability = &def
	return record(), true
}

// conditionAt resolves a rules[i].trigger.conditions[j]... path.
func conditionAt(rs *schema.RuleSet, path string) *schema.Condition {
	if !strings.HasPrefix(path, "rules[") || !strings.Contains(path, ".trigger.conditions[") {
		return nil
	}
	idx := pathIndices(path)
	if len(idx) < 2 || idx[0] >= len(rs.Rules) {
		return nil
	}
	conds := rs.Rules[idx[0]].Trigger.Conditions
	if idx[1] >= len(conds) {
		return nil
	}
	return &conds[idx[1]]
}

// actionAt resolves a rules[i].actions[j]... path.
func actionAt(rs *schema.RuleSet, path string) *schema.Action {
	if !strings.HasPrefix(path, "rules[") || !strings.Contains(path, ".actions[") {
		return nil
	}
	idx := pathIndices(path)
	if len(idx) < 2 || idx[0] >= len(rs.Rules) {
		return nil
	}
	actions := rs.Rules[idx[0]].Actions
	if idx[1] >= len(actions) {
		return nil
	}
	return &actions[idx[1]]
}

// coordField resolves the four coordinate path shapes: layout objects,
// asset initial positions, movement destinations, and position regions.
func coordField(rs *schema.RuleSet, path string) *float64 {
	axis := path[strings.LastIndex(path, ".")+1:]

	switch {
	case strings.HasPrefix(path, "layout.objects["):
		idx := pathIndices(path)
		if len(idx) < 1 || idx[0] >= len(rs.Layout.Objects) {
			return nil
		}
		pos := &rs.Layout.Objects[idx[0]].Position
		return axisPtr(pos, axis)

	case strings.HasPrefix(path, "assets.objects["):
		idx := pathIndices(path)
		if len(idx) < 1 || idx[0] >= len(rs.Assets.Objects) {
			return nil
		}
		pos := rs.Assets.Objects[idx[0]].Position
		if pos == nil {
			return nil
		}
		return axisPtr(pos, axis)

	case strings.Contains(path, ".movement.destination."):
		a := actionAt(rs, path)
		if a == nil || a.Move == nil || a.Move.Movement.Destination == nil {
			return nil
		}
		return axisPtr(a.Move.Movement.Destination, axis)

	case strings.Contains(path, ".region."):
		c := conditionAt(rs, path)
		if c == nil || c.Position == nil || c.Position.Region == nil {
			return nil
		}
		r := c.Position.Region
		switch axis {
		case "x":
			return &r.X
		case "y":
			return &r.Y
		case "width":
			return &r.Width
		case "height":
			return &r.Height
		}
	}
	return nil
}

func axisPtr(p *schema.Position, axis string) *float64 {
	switch axis {
	case "x":
		return &p.X
	case "y":
		return &p.Y
	}
	return nil
}

func speedField(rs *schema.RuleSet, path string) *float64 {
	a := actionAt(rs, path)
	if a == nil || a.Move == nil {
		return nil
	}
	return &a.Move.Movement.Speed
}

func timeField(rs *schema.RuleSet, path, which string) *float64 {
	c := conditionAt(rs, path)
	if c == nil || c.Time == nil {
		return nil
	}
	if which == "seconds" {
		return c.Time.Seconds
	}
	return c.Time.Interval
}

func probabilityField(rs *schema.RuleSet, path string) *float64 {
	if strings.Contains(path, ".trigger.conditions[") {
		c := conditionAt(rs, path)
		if c == nil || c.Random == nil {
			return nil
		}
		return c.Random.Probability
	}
	a := actionAt(rs, path)
	if a == nil || a.Random == nil {
		return nil
	}
	return a.Random.Probability
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
