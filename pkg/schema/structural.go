package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// StructuralError is a fail-fast document-shape problem: a missing or
// mistyped top-level section. Content-level defects (unknown feature types,
// bad parameter ranges, dangling references) are never structural errors.
type StructuralError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *StructuralError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("structural: %s at %s", e.Message, e.Path)
	}
	return fmt.Sprintf("structural: %s", e.Message)
}

// ValidateStructural checks the raw document against the generated rule-set
// schema. Run before any content validation so missing `rules`/`assets`
// sections surface as clear structural errors instead of nil dereferences
// inside the content checks.
func ValidateStructural(data []byte) []*StructuralError {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("generate schema: %v", err)}}
	}

	schemaDoc, err := sjsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("unmarshal schema: %v", err)}}
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("ruleset-v0.json", schemaDoc); err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("add schema resource: %v", err)}}
	}
	sch, err := c.Compile("ruleset-v0.json")
	if err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("compile schema: %v", err)}}
	}

	doc, err := sjsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("document is not valid JSON: %v", err)}}
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*StructuralError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &StructuralError{
					Path:    strings.Join(cause.InstanceLocation, "/"),
					Message: fmt.Sprintf("%v", cause.ErrorKind),
				})
			}
		} else {
			errs = append(errs, &StructuralError{Message: err.Error()})
		}
		return errs
	}
	return nil
}

// ValidateStructuralRuleSet re-serializes a loaded rule-set and validates it.
// Used when the caller hands over an in-memory value rather than raw bytes.
func ValidateStructuralRuleSet(rs *RuleSet) []*StructuralError {
	if rs == nil {
		return []*StructuralError{{Message: "rule set is nil"}}
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return []*StructuralError{{Message: fmt.Sprintf("marshal for schema validation: %v", err)}}
	}
	return ValidateStructural(data)
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
