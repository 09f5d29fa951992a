package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "ripple.yaml", rippleScenario)

	w, err := NewScenarioWatcher(file)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Sibling files are ignored.
	writeFile(t, dir, "other.yaml", rippleScenario)
	require.NoError(t, os.WriteFile(file, []byte(rippleScenario+"\n"), 0o644))

	select {
	case changed := <-w.Changes:
		abs, _ := filepath.Abs(file)
		assert.Equal(t, abs, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestScenarioWatcher_MissingDirectory(t *testing.T) {
	w, err := NewScenarioWatcher(filepath.Join(t.TempDir(), "gone", "s.yaml"))
	require.NoError(t, err)
	assert.Error(t, w.Start())
}
