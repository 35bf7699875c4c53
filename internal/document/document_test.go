package document

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"whiteboard/internal/element"
	"whiteboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newManager(t)

	st := store.New()
	secID := st.CreateSection(100, 100, 300, 200, "S")
	e := element.NewRectangle(150, 150, 40, 20)
	st.AddElement(e)
	require.True(t, st.MoveElementBetweenSections(e.ID, "", secID))
	zoom := 2.0
	st.SetViewport(store.ViewportUpdate{Zoom: &zoom})

	require.NoError(t, m.Save(FromStore(st, "board")))

	doc, err := m.Load("board")
	require.NoError(t, err)
	assert.Equal(t, "board", doc.Name)
	require.Len(t, doc.Elements, 1)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, 2.0, doc.Viewport.Zoom)

	restored := store.New()
	doc.ApplyTo(restored)
	got := restored.Element(e.ID)
	require.NotNil(t, got)
	assert.Equal(t, 50.0, got.X)
	assert.Equal(t, secID, got.SectionID)
	assert.Equal(t, []string{e.ID}, restored.Section(secID).ContainedElementIDs)
	assert.Equal(t, 2.0, restored.Viewport().Zoom)
}

func TestListSortedByName(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Save(New("zeta")))
	require.NoError(t, m.Save(New("alpha")))

	// A stray non-document file is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "notes.txt"), []byte("x"), 0644))

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Positive(t, infos[0].Size)
}

func TestDelete(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Save(New("board")))
	assert.True(t, m.Exists("board"))

	require.NoError(t, m.Delete("board"))
	assert.False(t, m.Exists("board"))
	assert.Error(t, m.Delete("board"))
}

func TestInvalidNamesRejected(t *testing.T) {
	m := newManager(t)

	for _, name := range []string{"", "../escape", "a/b", `a\b`} {
		assert.Error(t, m.Save(New(name)), "name %q", name)
		_, err := m.Load(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestLoadMissing(t *testing.T) {
	m := newManager(t)
	_, err := m.Load("nope")
	assert.Error(t, err)
}

func TestWatcherReportsExternalChange(t *testing.T) {
	m := newManager(t)

	var mu sync.Mutex
	var changed []string
	w, err := m.Watch(func(name string) {
		mu.Lock()
		changed = append(changed, name)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, m.Save(New("board")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, name := range changed {
			if name == "board" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}
