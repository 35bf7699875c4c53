package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"whiteboard/internal/document"
	"whiteboard/internal/element"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *State {
	t.Helper()
	docs, err := document.NewManager(t.TempDir())
	require.NoError(t, err)
	return NewState(docs)
}

func TestModifiedTracksStoreMutations(t *testing.T) {
	s := newState(t)
	assert.False(t, s.Modified())

	s.Store.AddElement(element.NewRectangle(0, 0, 10, 10))
	assert.True(t, s.Modified())
}

func TestSaveAndReopen(t *testing.T) {
	s := newState(t)
	e := element.NewRectangle(10, 20, 30, 40)
	s.Store.AddElement(e)

	require.NoError(t, s.SaveDocumentAs("board"))
	assert.Equal(t, "board", s.DocumentName())
	assert.False(t, s.Modified())

	s.NewDocument()
	assert.Equal(t, 0, s.Store.ElementCount())
	assert.Empty(t, s.DocumentName())

	require.NoError(t, s.OpenDocument("board"))
	assert.Equal(t, 1, s.Store.ElementCount())
	assert.NotNil(t, s.Store.Element(e.ID))
	assert.False(t, s.Modified())
}

func TestSaveWithoutNameFails(t *testing.T) {
	s := newState(t)
	assert.Error(t, s.SaveDocument())

	require.NoError(t, s.SaveDocumentAs("named"))
	s.Store.AddElement(element.NewRectangle(0, 0, 5, 5))
	require.NoError(t, s.SaveDocument())
	assert.False(t, s.Modified())
}

func TestDeleteOpenDocumentDetachesName(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SaveDocumentAs("board"))

	require.NoError(t, s.DeleteDocument("board"))
	assert.Empty(t, s.DocumentName())
	assert.False(t, s.Docs.Exists("board"))
}

func TestModifiedEventFiresOnce(t *testing.T) {
	s := newState(t)
	events := 0
	s.On(EventModified, func(interface{}) { events++ })

	s.Store.AddElement(element.NewRectangle(0, 0, 10, 10))
	s.Store.AddElement(element.NewRectangle(20, 0, 10, 10))

	// Two mutations, one false->true transition.
	assert.Equal(t, 1, events)
}

func TestOpenMissingDocument(t *testing.T) {
	s := newState(t)
	assert.Error(t, s.OpenDocument("nope"))
}

func TestWatcherIgnoresOwnSaves(t *testing.T) {
	dir := t.TempDir()
	docs, err := document.NewManager(dir)
	require.NoError(t, err)
	s := NewState(docs)
	defer s.Close()
	require.NoError(t, s.StartWatcher())

	var mu sync.Mutex
	external := 0
	s.On(EventExternalChange, func(interface{}) {
		mu.Lock()
		external++
		mu.Unlock()
	})

	require.NoError(t, s.SaveDocumentAs("board"))

	// The save hits the watcher past its debounce; give it time to fire
	// and check that it was swallowed.
	time.Sleep(600 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, external)
	mu.Unlock()

	// A write by another process to the same document is still reported.
	path := filepath.Join(dir, "board.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return external == 1
	}, 3*time.Second, 20*time.Millisecond)
}
