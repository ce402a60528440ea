package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/validate"
)

// applyStructuralDefaults resolves the partial-regen errors with an
// unambiguous deterministic fix: synthesize missing counters and sounds,
// delete unused counters. Returns the audit records and the errors that
// still need a rewrite.
func applyStructuralDefaults(rs *schema.RuleSet, errs []*validate.Error) ([]RepairAction, []*validate.Error) {
	var applied []RepairAction
	var remaining []*validate.Error
	// deletions are deferred so later errors' indices stay valid
	unused := make(map[string]bool)

	for _, e := range errs {
		switch e.Code {
		case validate.CodeUndefinedCounter:
			name := counterNameAt(rs, e.FieldPath)
			if name == "" {
				remaining = append(remaining, e)
				continue
			}
			if _, exists := rs.CounterByID(name); !exists {
				rs.Counters = append(rs.Counters, schema.Counter{ID: name, InitialValue: 0})
			}
			applied = append(applied, RepairAction{
				Code:        e.Code,
				Description: fmt.Sprintf("synthesize counter %q with initial value 0", name),
				RuleID:      e.RuleID,
				FieldPath:   e.FieldPath,
				After:       name,
			})

		case validate.CodeUndefinedSound:
			id := soundIDAt(rs, e.FieldPath)
			if id == "" {
				remaining = append(remaining, e)
				continue
			}
			if !rs.SoundIDs()[id] {
				rs.Assets.Sounds = append(rs.Assets.Sounds, schema.SoundAsset{
					ID: id, Trigger: "action", Type: "effect",
				})
			}
			applied = append(applied, RepairAction{
				Code:        e.Code,
				Description: fmt.Sprintf("synthesize sound asset %q", id),
				RuleID:      e.RuleID,
				FieldPath:   e.FieldPath,
				After:       id,
			})

		case validate.CodeUnusedCounter:
			idx := pathIndices(e.FieldPath)
			if len(idx) != 1 || idx[0] >= len(rs.Counters) {
				remaining = append(remaining, e)
				continue
			}
			name := rs.Counters[idx[0]].ID
			unused[name] = true
			applied = append(applied, RepairAction{
				Code:        e.Code,
				Description: fmt.Sprintf("delete unused counter %q", name),
				FieldPath:   e.FieldPath,
				Before:      name,
			})

		default:
			remaining = append(remaining, e)
		}
	}

	if len(unused) > 0 {
		kept := rs.Counters[:0]
		for _, c := range rs.Counters {
			if !unused[c.ID] {
				kept = append(kept, c)
			}
		}
		rs.Counters = kept
	}
	return applied, remaining
}

func counterNameAt(rs *schema.RuleSet, path string) string {
	if c := conditionAt(rs, path); c != nil && c.Counter != nil {
		return c.Counter.CounterName
	}
	if a := actionAt(rs, path); a != nil && a.Counter != nil {
		return a.Counter.CounterName
	}
	return ""
}

func soundIDAt(rs *schema.RuleSet, path string) string {
	if a := actionAt(rs, path); a != nil && a.PlaySound != nil {
		return a.PlaySound.SoundID
	}
	return ""
}

// requestRewrite bundles the remaining partial errors into one scoped
// request: only the implicated rules, the errors, and the currently valid
// identifier vocabulary. The response is a JSON array of replacement rules
// merged back by id. Malformed or empty output is tolerated as "no repair
// produced".
func requestRewrite(ctx context.Context, client RewriteClient, rs *schema.RuleSet, errs []*validate.Error) (int, error) {
	if client == nil || len(errs) == 0 {
		return 0, nil
	}

	implicated := implicatedRules(rs, errs)
	if len(implicated) == 0 {
		return 0, nil
	}

	user, err := rewritePrompt(rs, implicated, errs)
	if err != nil {
		return 0, err
	}

	resp, err := client.Complete(ctx, rewriteSystemPrompt, user)
	if err != nil {
		return 0, fmt.Errorf("rewrite request: %w", err)
	}

	replacements, err := parseReplacementRules(resp)
	if err != nil || len(replacements) == 0 {
		// tolerated: the caller keeps the errors as remaining
		return 0, nil
	}

	merged := 0
	for i := range replacements {
		r := &replacements[i]
		if r.ID == "" {
			continue
		}
		for j := range rs.Rules {
			if rs.Rules[j].ID == r.ID {
				rs.Rules[j] = r.Clone()
				merged++
				break
			}
		}
	}
	return merged, nil
}

func implicatedRules(rs *schema.RuleSet, errs []*validate.Error) []*schema.Rule {
	seen := make(map[string]bool)
	var out []*schema.Rule
	for _, e := range errs {
		if e.RuleID == "" || seen[e.RuleID] {
			continue
		}
		if r, ok := rs.RuleByID(e.RuleID); ok {
			seen[e.RuleID] = true
			out = append(out, r)
		}
	}
	return out
}

const rewriteSystemPrompt = `You repair rules for a minigame trigger/action rule language.
You receive the broken rules, the validation errors, and the identifiers that exist.
Respond with ONLY a JSON array of corrected rule objects. Keep each rule's "id"
unchanged. Reference only the listed objects, counters and sounds. Do not invent
new rules; return exactly one replacement per broken rule.`

func rewritePrompt(rs *schema.RuleSet, rules []*schema.Rule, errs []*validate.Error) (string, error) {
	var b strings.Builder

	b.WriteString("## Errors\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- [%s] %s: %s", e.Severity, e.Code, e.Message)
		if e.RuleID != "" {
			fmt.Fprintf(&b, " (rule %s)", e.RuleID)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Valid identifiers\n")
	fmt.Fprintf(&b, "- objects: %s\n", strings.Join(sortedKeys(rs.ObjectIDs()), ", "))
	counterIDs := make([]string, 0, len(rs.Counters))
	for _, c := range rs.Counters {
		counterIDs = append(counterIDs, c.ID)
	}
	sort.Strings(counterIDs)
	fmt.Fprintf(&b, "- counters: %s\n", strings.Join(counterIDs, ", "))
	fmt.Fprintf(&b, "- sounds: %s\n", strings.Join(sortedKeys(rs.SoundIDs()), ", "))

	b.WriteString("\n## Rules to fix\n")
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal implicated rules: %w", err)
	}
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func parseReplacementRules(resp string) ([]schema.Rule, error) {
	resp = stripOuterCodeFence(strings.TrimSpace(resp))

	start := strings.Index(resp, "[")
	end := strings.LastIndex(resp, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var rules []schema.Rule
	if err := json.Unmarshal([]byte(resp[start:end+1]), &rules); err != nil {
		return nil, fmt.Errorf("decode replacement rules: %w", err)
	}
	return rules, nil
}

// stripOuterCodeFence removes a wrapping ```...``` code fence if present.
func stripOuterCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	first := strings.Index(trimmed, "\n")
	if first < 0 {
		return s
	}
	rest := trimmed[first+1:]
	closing := strings.LastIndex(rest, "```")
	if closing < 0 {
		return s
	}
	return strings.TrimSpace(rest[:closing])
}
