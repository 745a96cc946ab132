package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/builder-e2e/internal/scenario"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	for _, name := range []string{"setup", "run", "models", "cases", "artifacts"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	upload, _, err := cmd.Find([]string{"artifacts", "upload"})
	require.NoError(t, err)
	assert.Equal(t, "upload", upload.Name())
}

func TestModelsCmd(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Claude 4.5 Sonnet")
	assert.Contains(t, lines[1], "free")
	assert.Contains(t, lines[3], "GPT-5 (Beta)")
	assert.Contains(t, lines[3], "pro")
}

func TestCasesCmd(t *testing.T) {
	out, err := execute(t, "cases")
	require.NoError(t, err)

	for _, c := range scenario.All() {
		assert.Contains(t, out, c.ID)
		assert.Contains(t, out, c.Artifact)
	}
	assert.Contains(t, out, "requires a paid plan")
}

func TestSelectCases(t *testing.T) {
	all := scenario.All()

	got, err := selectCases(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = selectCases(all, []string{"TC-005", " TC-004"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TC-004", got[0].ID, "suite order is kept")
	assert.Equal(t, "TC-005", got[1].ID)

	_, err = selectCases(all, []string{"TC-004", "NOPE-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE-1")
}
