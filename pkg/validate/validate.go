package validate

import (
	"github.com/lumaplay/rulecheck/pkg/schema"
	"github.com/lumaplay/rulecheck/pkg/vocab"
)

// RuleSet runs the content checks over an already-decoded document:
// feature/parameter validation against the capability table, then semantic
// consistency. All findings accumulate; nothing short-circuits.
func RuleSet(rs *schema.RuleSet, v *vocab.Vocabulary) []*Error {
	errs := Features(rs, v)
	errs = append(errs, Semantics(rs)...)
	return errs
}

// Bytes is the full pipeline over a raw JSON document. Structural shape is
// checked first and short-circuits: content checks assume the top-level
// sections exist, so a structurally broken document reports only its
// structural errors.
func Bytes(data []byte, v *vocab.Vocabulary) (*schema.RuleSet, []*Error) {
	if serrs := schema.ValidateStructural(data); len(serrs) > 0 {
		errs := make([]*Error, 0, len(serrs))
		for _, se := range serrs {
			errs = append(errs, criticalf(CodeStructural, "", se.Path, "%s", se.Message))
		}
		return nil, errs
	}

	rs, err := schema.LoadBytes(data)
	if err != nil {
		return nil, []*Error{criticalf(CodeStructural, "", "", "decode rule set: %v", err)}
	}
	return rs, RuleSet(rs, v)
}
