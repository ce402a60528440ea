package repair

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumaplay/rulecheck/pkg/validate"
)

// RegenerationBrief renders the full-regen errors as a deterministic
// markdown document intended to be appended to a fresh generation prompt.
// Errors are grouped by code, sorted, each group carrying its fixed
// remediation hint. No edits accompany this class of error.
func RegenerationBrief(errs []*validate.Error, regenCtx string) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := make(map[validate.Code][]*validate.Error)
	for _, e := range errs {
		grouped[e.Code] = append(grouped[e.Code], e)
	}
	codes := make([]string, 0, len(grouped))
	for code := range grouped {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	var b strings.Builder
	b.WriteString("# Regeneration required\n\n")
	if regenCtx != "" {
		b.WriteString(regenCtx)
		b.WriteString("\n\n")
	}
	b.WriteString("The previous rule-set has design-level problems that cannot be patched locally. Regenerate it, avoiding the following:\n")

	for _, code := range codes {
		group := grouped[validate.Code(code)]
		fmt.Fprintf(&b, "\n## %s\n\n", code)
		for _, e := range group {
			fmt.Fprintf(&b, "- %s", e.Message)
			if e.RuleID != "" {
				fmt.Fprintf(&b, " (rule %s)", e.RuleID)
			}
			b.WriteString("\n")
		}
		if hint := validate.HintFor(validate.Code(code)); hint != "" {
			fmt.Fprintf(&b, "\nFix: %s.\n", hint)
		}
	}
	return b.String()
}
