// Package repair decides how each validation finding gets resolved: fixed
// in place, delegated as a narrow rewrite, or escalated into a full
// regeneration brief. The engine never mutates its input rule-set.
package repair

import "github.com/lumaplay/rulecheck/pkg/validate"

// Category is the repair strategy for one error code.
type Category string

const (
	AutoFixable  Category = "auto_fixable"
	PartialRegen Category = "partial_regen"
	FullRegen    Category = "full_regen"
)

// classification is the authoritative code-to-strategy table. Auto-fixable
// codes are pure numeric corrections with an unambiguous target value.
// Partial-regen codes are local gaps a scoped rewrite can close. Full-regen
// codes indicate the game design itself is broken.
var classification = map[validate.Code]Category{
	// numeric clamps and defaults
	validate.CodeCoordOutOfRange:      AutoFixable,
	validate.CodeAssetCoordOutOfRange: AutoFixable,
	validate.CodeInvalidSpeed:         AutoFixable,
	validate.CodeSpeedOutOfBand:       AutoFixable,
	validate.CodeInvalidDuration:      AutoFixable,
	validate.CodeDurationOutOfBand:    AutoFixable,
	validate.CodeInvalidScale:         AutoFixable,
	validate.CodeScaleOutOfBand:       AutoFixable,
	validate.CodeInvalidTimeSeconds:   AutoFixable,
	validate.CodeInvalidTimeInterval:  AutoFixable,
	validate.CodeInvalidVolume:        AutoFixable,
	validate.CodeInvalidProbability:   AutoFixable,
	validate.CodeMissingProbability:   AutoFixable,
	validate.CodeNegativeScore:        AutoFixable,
	validate.CodeMissingScorePoints:   AutoFixable,

	// local gaps: synthesizable defaults or a scoped rewrite of the
	// implicated rules
	validate.CodeUndefinedCounter:        PartialRegen,
	validate.CodeUndefinedSound:          PartialRegen,
	validate.CodeUndefinedObject:         PartialRegen,
	validate.CodeUndefinedTarget:         PartialRegen,
	validate.CodeUnusedCounter:           PartialRegen,
	validate.CodeCounterNeverRead:        PartialRegen,
	validate.CodeCounterNeverModified:    PartialRegen,
	validate.CodeMissingCounterValue:     PartialRegen,
	validate.CodeInvalidConditionType:    PartialRegen,
	validate.CodeInvalidActionType:       PartialRegen,
	validate.CodeInvalidTouchType:        PartialRegen,
	validate.CodeInvalidComparison:       PartialRegen,
	validate.CodeInvalidCounterOperation: PartialRegen,
	validate.CodeInvalidMovementType:     PartialRegen,
	validate.CodeInvalidCollisionType:    PartialRegen,
	validate.CodeInvalidEffectType:       PartialRegen,
	validate.CodeInvalidGameState:        PartialRegen,
	validate.CodeInvalidObjectState:      PartialRegen,
	validate.CodeNoPlayerActionPath:      PartialRegen,
	validate.CodeObjectStateUnreachable:  PartialRegen,
	validate.CodeNoFailure:               PartialRegen,

	// design-level failures: no local patch is trustworthy
	validate.CodeStructural:             FullRegen,
	validate.CodeInstantWin:             FullRegen,
	validate.CodeInstantLose:            FullRegen,
	validate.CodeAutoSuccess:            FullRegen,
	validate.CodeAutoFailure:            FullRegen,
	validate.CodeNoSuccess:              FullRegen,
	validate.CodeSuccessFailureConflict: FullRegen,
	validate.CodeShowHideConflict:       FullRegen,
	validate.CodeCounterConflict:        FullRegen,
	validate.CodeContradictoryActions:   FullRegen,
	validate.CodeUnreachableSuccess:     FullRegen,
}

// Classify maps a finding to its repair strategy. Unlisted codes default by
// severity: critical escalates to full regeneration, anything else is a
// candidate for a scoped rewrite.
func Classify(e *validate.Error) Category {
	if cat, ok := classification[e.Code]; ok {
		return cat
	}
	if e.Severity == validate.Critical {
		return FullRegen
	}
	return PartialRegen
}

// ClassifyAll returns the strategy for every known code, applying the
// severity default for codes absent from the table. Every code yields
// exactly one category.
func ClassifyAll() map[validate.Code]Category {
	out := make(map[validate.Code]Category, len(validate.AllCodes))
	for _, code := range validate.AllCodes {
		if cat, ok := classification[code]; ok {
			out[code] = cat
			continue
		}
		// severity is not knowable without an instance; treat unlisted
		// as full_regen, the conservative default for the audit view
		out[code] = FullRegen
	}
	return out
}
