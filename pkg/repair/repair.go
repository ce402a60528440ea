package repair

import (
	"context"

	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/validate"
)

// Result is the repair verdict. Success means every error was resolved
// without requiring full regeneration.
type Result struct {
	Success                  bool               `json:"success"`
	Repaired                 *schema.RuleSet    `json:"repaired,omitempty"`
	Applied                  []RepairAction     `json:"applied,omitempty"`
	Remaining                []*validate.Error  `json:"remaining,omitempty"`
	RequiresFullRegeneration bool               `json:"requiresFullRegeneration"`
	RegenerationBrief        string             `json:"regenerationBrief,omitempty"`
}

// Engine applies the classification table to an error list. The Rewriter is
// optional; without one, partial-regen errors needing judgment stay in
// Remaining.
type Engine struct {
	Rewriter RewriteClient
}

// Run repairs a rule-set against its validation errors. The input rule-set
// is cloned, never mutated. The only suspension point is the single rewrite
// delegation; a failing or unparseable rewrite is tolerated as "no repair
// produced".
func (eng *Engine) Run(ctx context.Context, rs *schema.RuleSet, errs []*validate.Error, regenCtx string) (*Result, error) {
	res := &Result{Repaired: rs.Clone()}

	var auto, partial, full []*validate.Error
	for _, e := range errs {
		switch Classify(e) {
		case AutoFixable:
			auto = append(auto, e)
		case PartialRegen:
			partial = append(partial, e)
		default:
			full = append(full, e)
		}
	}

	for _, e := range auto {
		act, ok := autoFix(res.Repaired, e)
		if !ok {
			// a fix that cannot locate its field stays unrepaired
			res.Remaining = append(res.Remaining, e)
			continue
		}
		res.Applied = append(res.Applied, *act)
	}

	applied, needJudgment := applyStructuralDefaults(res.Repaired, partial)
	res.Applied = append(res.Applied, applied...)

	if len(needJudgment) > 0 && eng.Rewriter != nil {
		merged, err := requestRewrite(ctx, eng.Rewriter, res.Repaired, needJudgment)
		if err != nil {
			return nil, err
		}
		if merged > 0 {
			// replaced rules resolve their errors; the caller re-validates
			// to confirm
			needJudgment = nil
		}
	}
	res.Remaining = append(res.Remaining, needJudgment...)

	if len(full) > 0 {
		res.RequiresFullRegeneration = true
		res.RegenerationBrief = RegenerationBrief(full, regenCtx)
	}

	res.Success = len(res.Remaining) == 0 && !res.RequiresFullRegeneration
	return res, nil
}
