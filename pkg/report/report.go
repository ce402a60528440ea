package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/lumaplay/rulecheck/pkg/repair"
	"github.com/lumaplay/rulecheck/pkg/sim"
	"github.com/lumaplay/rulecheck/pkg/validate"
)

// maxLineWidth bounds long messages so narrow terminals stay readable.
const maxLineWidth = 100

// Errors renders a validation error listing, criticals first.
func Errors(errs []*validate.Error) string {
	if len(errs) == 0 {
		return okStyle.Render(GlyphOK+" rule set is valid") + "\n"
	}

	var b strings.Builder
	write := func(e *validate.Error) {
		glyph, style := GlyphWarning, warningStyle
		if e.Severity == validate.Critical {
			glyph, style = GlyphCritical, criticalStyle
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			style.Render(glyph),
			codeStyle.Render(string(e.Code)),
			truncate(e.Message, maxLineWidth))
		if loc := location(e); loc != "" {
			fmt.Fprintf(&b, "    %s\n", locStyle.Render(loc))
		}
		if e.Hint != "" {
			fmt.Fprintf(&b, "    %s\n", hintStyle.Render("hint: "+e.Hint))
		}
	}

	for _, e := range validate.Criticals(errs) {
		write(e)
	}
	for _, e := range validate.Warnings(errs) {
		write(e)
	}

	crit := len(validate.Criticals(errs))
	warn := len(validate.Warnings(errs))
	fmt.Fprintf(&b, "\n%s\n", headerStyle.Render(
		fmt.Sprintf("%d critical, %d warning", crit, warn)))
	return b.String()
}

func location(e *validate.Error) string {
	switch {
	case e.FieldPath != "" && e.RuleID != "":
		return fmt.Sprintf("at %s (rule %s)", e.FieldPath, e.RuleID)
	case e.FieldPath != "":
		return "at " + e.FieldPath
	case e.RuleID != "":
		return "in rule " + e.RuleID
	}
	return ""
}

// Simulation renders a reachability report: verdict, witness path,
// blockers, failure paths.
func Simulation(rep *sim.Report) string {
	var b strings.Builder

	if rep.Reachable {
		fmt.Fprintf(&b, "%s\n", okStyle.Render(fmt.Sprintf(
			"%s reachable in %d player action(s)", GlyphOK, rep.RequiredActions)))
		for _, s := range rep.SuccessPath {
			fmt.Fprintf(&b, "  %s %s\n", GlyphStep, truncate(s.Description, maxLineWidth))
		}
	} else {
		fmt.Fprintf(&b, "%s\n", criticalStyle.Render(GlyphBlocked+" success is unreachable"))
		for _, blk := range rep.Blockers {
			fmt.Fprintf(&b, "  %s %s\n", GlyphCritical, truncate(blk.Reason, maxLineWidth))
		}
	}

	if len(rep.Conflicts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", headerStyle.Render("Conflicts"))
		for _, c := range rep.Conflicts {
			fmt.Fprintf(&b, "  %s %s\n", GlyphWarning, truncate(c.Description, maxLineWidth))
		}
	}
	if len(rep.FailurePaths) > 0 {
		fmt.Fprintf(&b, "\n%s\n", headerStyle.Render("Failure paths"))
		for _, p := range rep.FailurePaths {
			fmt.Fprintf(&b, "  %s %s\n", GlyphStep, truncate(p.Description, maxLineWidth))
		}
	}
	for _, is := range rep.Issues {
		fmt.Fprintf(&b, "  %s %s\n", warningStyle.Render(GlyphWarning), truncate(is.Message, maxLineWidth))
	}

	fmt.Fprintf(&b, "\n%s %s\n", headerStyle.Render("confidence:"), string(rep.Confidence))
	return b.String()
}

// Repair renders the applied fixes and the remaining work.
func Repair(res *repair.Result) string {
	var b strings.Builder

	if len(res.Applied) > 0 {
		fmt.Fprintf(&b, "%s\n", headerStyle.Render("Applied repairs"))
		for _, a := range res.Applied {
			line := a.Description
			if a.Before != "" || a.After != "" {
				line = fmt.Sprintf("%s (%s -> %s)", a.Description, orDash(a.Before), orDash(a.After))
			}
			fmt.Fprintf(&b, "  %s %s\n", okStyle.Render(GlyphOK), truncate(line, maxLineWidth))
			if a.FieldPath != "" {
				fmt.Fprintf(&b, "      %s\n", locStyle.Render("at "+a.FieldPath))
			}
		}
	}

	if len(res.Remaining) > 0 {
		fmt.Fprintf(&b, "\n%s\n", headerStyle.Render("Remaining errors"))
		b.WriteString(Errors(res.Remaining))
	}

	switch {
	case res.RequiresFullRegeneration:
		fmt.Fprintf(&b, "\n%s\n", criticalStyle.Render(GlyphBlocked+" full regeneration required"))
	case res.Success:
		fmt.Fprintf(&b, "\n%s\n", okStyle.Render(GlyphOK+" rule set repaired"))
	}
	return b.String()
}

// Brief renders a regeneration brief as styled terminal markdown. Falls back
// to the raw text when glamour is unavailable.
func Brief(md string) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(maxLineWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate cuts a line at the given display width, unicode-aware.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
