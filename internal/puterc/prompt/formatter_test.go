package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".toml"), []byte(content), 0644))
}

func TestFormatMessage_NoTemplate(t *testing.T) {
	formatted, err := FormatMessage("hello", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", formatted.User)
	assert.Empty(t, formatted.System)
	assert.Nil(t, formatted.Model)
}

func TestFormatMessage_ReplacesPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "translate", `
system = "Translate into {{lang}}."
user = "{{input}}"
`)

	formatted, err := FormatMessage("good morning", "translate", []string{dir}, []string{"lang:French"})
	require.NoError(t, err)
	assert.Equal(t, "Translate into French.", formatted.System)
	assert.Equal(t, "good morning", formatted.User)
}

func TestFormatMessage_ModelOverride(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "careful", `
system = "Be careful."
user = "{{input}}"
model = "claude-sonnet"
`)

	formatted, err := FormatMessage("check this", "careful", []string{dir}, nil)
	require.NoError(t, err)
	require.NotNil(t, formatted.Model)
	assert.Equal(t, "claude-sonnet", *formatted.Model)
}

func TestFormatMessage_LaterDirectoriesWin(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writePrompt(t, low, "greet", `user = "low: {{input}}"`)
	writePrompt(t, high, "greet", `user = "high: {{input}}"`)

	formatted, err := FormatMessage("hi", "greet", []string{low, high}, nil)
	require.NoError(t, err)
	assert.Equal(t, "high: hi", formatted.User)
}

func TestFormatMessage_TemplateNotFound(t *testing.T) {
	_, err := FormatMessage("hi", "missing", []string{t.TempDir()}, nil)
	assert.ErrorContains(t, err, "not found")
}

func TestProcessArgs(t *testing.T) {
	args, err := processArgs([]string{"lang:French", `url:https\://example.test`})
	require.NoError(t, err)
	assert.Equal(t, "French", args["lang"])
	assert.Equal(t, "https://example.test", args["url"])

	_, err = processArgs([]string{"no-colon"})
	assert.ErrorContains(t, err, "invalid argument format")

	_, err = processArgs([]string{"input:reserved"})
	assert.ErrorContains(t, err, "reserved keyword")
}
