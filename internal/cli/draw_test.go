package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikaru/emojitale/pkg/store"
)

func sessionFixture(notes string) store.Session {
	return store.Session{
		ID:        "fixture-id",
		Timestamp: "2025-01-01T00:00:00.000000Z",
		Emojis:    []string{"😀", "🚀"},
		Notes:     notes,
	}
}

// writeTestConfig points the CLI at an isolated data directory and
// returns it. Console logging is disabled to keep command output clean.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{
		"data_dir": "` + dir + `",
		"logging": {"level": "error", "console": false, "file": "` + filepath.Join(dir, "test.log") + `"}
	}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	prev := cfgFile
	cfgFile = configPath
	t.Cleanup(func() { cfgFile = prev })

	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := GetRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

func TestDraw_PrintsRequestedCount(t *testing.T) {
	writeTestConfig(t)

	output, err := runCommand(t, "draw", "-n", "4")
	require.NoError(t, err)

	emojis := strings.Fields(strings.TrimSpace(output))
	assert.Len(t, emojis, 4)
}

func TestDraw_SaveJournalsSession(t *testing.T) {
	dir := writeTestConfig(t)

	output, err := runCommand(t, "draw", "-n", "3", "--save", "--notes", "cli test session")
	require.NoError(t, err)
	assert.Contains(t, output, "saved session")

	// The journal exists next to the config.
	_, err = os.Stat(filepath.Join(dir, "sessions.json"))
	require.NoError(t, err)

	listOutput, err := runCommand(t, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, listOutput, "cli test session")

	// Reset the flag for other tests sharing the command tree.
	require.NoError(t, drawCmd.Flags().Set("save", "false"))
	require.NoError(t, drawCmd.Flags().Set("notes", ""))
}

func TestSessionsShow_UnknownIDFails(t *testing.T) {
	writeTestConfig(t)

	_, err := runCommand(t, "sessions", "show", "no-such-id")
	assert.Error(t, err)
}

func TestFormatSessionLine_TruncatesNotes(t *testing.T) {
	long := strings.Repeat("x", 80)
	line := formatSessionLine(sessionFixture(long))
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, long)
}
