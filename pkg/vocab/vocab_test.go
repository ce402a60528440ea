package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRangeHardBounds(t *testing.T) {
	r := Range{Min: ptr(0), Max: ptr(1)}
	for _, v := range []float64{0, 0.5, 1} {
		if !r.Contains(v) {
			t.Errorf("Contains(%g) = false, want true", v)
		}
	}
	for _, v := range []float64{-0.1, 1.1} {
		if r.Contains(v) {
			t.Errorf("Contains(%g) = true, want false", v)
		}
	}
}

func TestRangeExclusiveMin(t *testing.T) {
	r := Range{Min: ptr(0), ExclusiveMin: true}
	if r.Contains(0) {
		t.Error("exclusive min must reject the boundary value")
	}
	if !r.Contains(0.001) {
		t.Error("values above an exclusive min must pass")
	}
}

func TestRangeAdvisoryBand(t *testing.T) {
	r := Range{Min: ptr(0), ExclusiveMin: true, AdvisoryMin: ptr(0.5), AdvisoryMax: ptr(15.0)}
	if !r.InAdvisoryBand(5) {
		t.Error("5 is inside the advisory band")
	}
	if r.InAdvisoryBand(40) {
		t.Error("40 is outside the advisory band")
	}
	if !r.Contains(40) {
		t.Error("40 still satisfies the hard bounds")
	}
}

func TestDefaultTableCoversCoreTypes(t *testing.T) {
	v := Default()
	for _, ct := range []string{"touch", "time", "counter"} {
		if !v.HasConditionType(ct) {
			t.Errorf("default table missing condition type %q", ct)
		}
	}
	for _, at := range []string{"success", "failure", "counter"} {
		if !v.HasActionType(at) {
			t.Errorf("default table missing action type %q", at)
		}
	}
	if v.HasConditionType("teleport") {
		t.Error("unsupported type must not be in the table")
	}
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	doc := `
version: "test"
conditionTypes: [touch]
actionTypes: [success]
touchTypes: [down]
comparisons: []
counterOperations: []
movementTypes: []
collisionTypes: []
effectTypes: []
gameStates: []
objectStates: []
speed: {}
duration: {}
scaleAmount: {}
probability: {min: 0, max: 1}
volume: {}
coordinate: {}
timeSeconds: {}
interval: {}
`
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasConditionType("touch") || v.HasConditionType("time") {
		t.Errorf("loaded table does not match the file: %+v", v.ConditionTypes)
	}

	bad := strings.Replace(doc, "version:", "verison:", 1)
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for unknown field")
	}
}
