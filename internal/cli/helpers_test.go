package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const rippleScenario = `name: ripple
description: "Insert after a pushes b later"
objects:
  - id: a
    kind: source
    duration: 10s
  - id: b
    kind: source
    duration: 5s
  - id: c
    kind: source
    duration: 5s
steps:
  - op: append_source
    args: { object: a }
  - op: append_source
    args: { object: b }
  - op: insert_source_after
    args: { object: c, anchor: a }
assertions:
  - type: layer_order
    layer: 1
    objects: [a, c, b]
  - type: object_span
    object: b
    start: 15s
`

// failingScenario passes its steps but asserts the wrong order.
var failingScenario = strings.Replace(
	strings.Replace(rippleScenario, "name: ripple", "name: ripple_wrong", 1),
	"objects: [a, c, b]", "objects: [a, b, c]", 1)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func textOpts() *RootOptions { return &RootOptions{Format: "text"} }

func jsonOpts() *RootOptions { return &RootOptions{Format: "json"} }

func outputBuffers() (*bytes.Buffer, *bytes.Buffer) {
	return &bytes.Buffer{}, &bytes.Buffer{}
}
