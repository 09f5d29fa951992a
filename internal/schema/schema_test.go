package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `name: minimal
description: "one source"
objects:
  - id: a
    kind: source
    duration: 10s
steps:
  - op: append_source
    args: { object: a }
assertions:
  - type: condensed_order
    objects: [a]
`

func fields(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestValidateScenario_Valid(t *testing.T) {
	errs := ValidateScenario("minimal.yaml", []byte(validScenario))
	assert.Empty(t, errs)
}

func TestValidateScenario_ProjectScenarios(t *testing.T) {
	files, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			assert.Empty(t, ValidateScenario(file, data))
		})
	}
}

func TestValidateScenario_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "missing name",
			yaml:  strings.Replace(validScenario, "name: minimal\n", "", 1),
			field: "name",
		},
		{
			name:  "unknown top-level field",
			yaml:  validScenario + "assertion: []\n",
			field: "assertion",
		},
		{
			name:  "unknown kind",
			yaml:  strings.Replace(validScenario, "kind: source", "kind: clip", 1),
			field: "objects[0].kind",
		},
		{
			name:  "unknown op",
			yaml:  strings.Replace(validScenario, "op: append_source", "op: splice_source", 1),
			field: "steps[0].op",
		},
		{
			name:  "negative duration",
			yaml:  strings.Replace(validScenario, "duration: 10s", "duration: -5", 1),
			field: "objects[0].duration",
		},
		{
			name:  "bad composition",
			yaml:  strings.Replace(validScenario, "  - op: append_source\n", "  - op: append_source\n    composition: subtitles\n", 1),
			field: "steps[0].composition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateScenario("bad.yaml", []byte(tt.yaml))
			require.NotEmpty(t, errs)
			assert.Contains(t, fields(errs), tt.field)
			for _, e := range errs {
				assert.Equal(t, ErrCodeSchema, e.Code)
			}
		})
	}
}

func TestValidateScenario_EmptySteps(t *testing.T) {
	doc := strings.Replace(validScenario, "steps:\n  - op: append_source\n    args: { object: a }\n", "steps: []\n", 1)
	errs := ValidateScenario("empty.yaml", []byte(doc))
	require.NotEmpty(t, errs)
}

func TestValidateScenario_BadAssertion(t *testing.T) {
	doc := strings.Replace(validScenario, "  - type: condensed_order\n    objects: [a]\n",
		"  - type: layer_order\n    objects: [a]\n", 1)
	errs := ValidateScenario("assert.yaml", []byte(doc))
	assert.NotEmpty(t, errs, "layer_order without layer must be rejected")
}

func TestValidateScenario_MalformedYAML(t *testing.T) {
	errs := ValidateScenario("broken.yaml", []byte("name: [unterminated\n"))
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrCodeParse, errs[0].Code)
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "name", Message: "incomplete value", Code: ErrCodeSchema, Line: 3}
	assert.Equal(t, "[E202] line 3: name: incomplete value", e.Error())

	e.Line = 0
	assert.Equal(t, "[E202] name: incomplete value", e.Error())
}
