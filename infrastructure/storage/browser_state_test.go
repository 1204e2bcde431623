package storage

import (
	"browser_library/domain/entities"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserStateCookies(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store, err := NewBrowserState(dir)
	require.NoError(t, err)

	cookies, err := store.LoadState()
	require.NoError(t, err)
	assert.Empty(t, cookies)

	saved := []entities.Cookie{
		{Name: "session", Value: "abc", Domain: "example.com", Path: "/", HTTPOnly: true, SameSite: "Lax"},
		{Name: "theme", Value: "dark", URL: "https://example.com/", Expires: 1700000000},
	}
	require.NoError(t, store.SaveState(saved))
	assert.FileExists(t, filepath.Join(dir, StateFile))

	cookies, err = store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, saved, cookies)
}

func TestBrowserStateHistory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBrowserState(dir)
	require.NoError(t, err)

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history := []entities.KeywordRecord{
		{ID: "1", Name: "Open Browser", Status: entities.StatusPass, StartedAt: started, Duration: time.Second},
		{ID: "2", Name: "Title Should Be", Status: entities.StatusFail, ErrorKind: "assertion",
			Message: "Title 'a' should have been 'b'", StartedAt: started, Screenshot: "/out/T_FAILURE_SCREENSHOT"},
	}
	require.NoError(t, store.SaveHistory(history))

	loaded, err := store.LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestBrowserStateCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFile), []byte("{not json"), 0644))

	store, err := NewBrowserState(dir)
	require.NoError(t, err)

	_, err = store.LoadState()
	assert.ErrorContains(t, err, StateFile)
}
