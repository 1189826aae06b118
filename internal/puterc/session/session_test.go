package session

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealHickory4944/puter/internal/puterc"
)

// useTempSessionDir points the session store at a throwaway directory
// by faking the in-use config file location.
func useTempSessionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	viper.SetConfigFile(filepath.Join(dir, "config.toml"))
	t.Cleanup(viper.Reset)
	return filepath.Join(dir, "sessions")
}

func TestSaveAndLoadSession(t *testing.T) {
	useTempSessionDir(t)

	sess := NewSession("gpt-5-nano")
	sess.Name = "greetings"
	sess.AddMessage(puterc.RoleUser, "Hi")
	sess.AddMessage(puterc.RoleAssistant, "Hello there")

	require.NoError(t, SaveSession(sess))

	loaded, err := LoadSession(sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "greetings", loaded.Name)
	assert.Equal(t, "gpt-5-nano", loaded.Model)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, puterc.RoleUser, loaded.Messages[0].Role)
	assert.Equal(t, "Hi", loaded.Messages[0].Content)
	assert.Equal(t, "Hello there", loaded.Messages[1].Content)
}

func TestFindSessionByPrefix(t *testing.T) {
	useTempSessionDir(t)

	sess := NewSession("gpt-5-nano")
	require.NoError(t, SaveSession(sess))

	found, err := FindSessionByPrefix(sess.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)

	// Full UUID loads directly.
	found, err = FindSessionByPrefix(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)

	_, err = FindSessionByPrefix("ab")
	assert.ErrorContains(t, err, "at least 4 characters")

	_, err = FindSessionByPrefix("ffff")
	assert.ErrorContains(t, err, "session not found")
}

func TestFindSessionByPrefix_Latest(t *testing.T) {
	useTempSessionDir(t)

	older := NewSession("gpt-5-nano")
	require.NoError(t, SaveSession(older))

	newer := NewSession("gpt-5-nano")
	newer.AddMessage(puterc.RoleUser, "newest")
	require.NoError(t, SaveSession(newer))

	found, err := FindSessionByPrefix("latest")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, found.ID)
}

func TestDeleteSession(t *testing.T) {
	useTempSessionDir(t)

	sess := NewSession("gpt-5-nano")
	require.NoError(t, SaveSession(sess))
	require.NoError(t, DeleteSession(sess.ID))

	_, err := LoadSession(sess.ID)
	assert.ErrorContains(t, err, "session not found")

	err = DeleteSession(sess.ID)
	assert.ErrorContains(t, err, "session not found")
}

func TestListSessions_SortedNewestFirst(t *testing.T) {
	useTempSessionDir(t)

	first := NewSession("gpt-5-nano")
	require.NoError(t, SaveSession(first))

	second := NewSession("gpt-5-nano")
	second.AddMessage(puterc.RoleUser, "bump")
	require.NoError(t, SaveSession(second))

	sessions, err := ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
}

func TestGetShortID(t *testing.T) {
	sess := NewSession("gpt-5-nano")
	assert.Len(t, sess.GetShortID(), 8)
	assert.Equal(t, sess.ID[:8], sess.GetShortID())
}
