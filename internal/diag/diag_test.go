package diag

import (
	"testing"

	"whiteboard/internal/element"
	"whiteboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCleanStore(t *testing.T) {
	st := store.New()
	secID := st.CreateSection(100, 100, 300, 200, "S")
	e := element.NewRectangle(150, 150, 40, 20)
	st.AddElement(e)
	require.True(t, st.MoveElementBetweenSections(e.ID, "", secID))

	assert.Empty(t, Check(st))
}

// The store's own mutations cannot produce drift, so the tests corrupt the
// live objects directly, standing in for a hand-edited document.
func TestCheckDetectsOrphanedElement(t *testing.T) {
	st := store.New()
	secID := st.CreateSection(100, 100, 300, 200, "S")
	e := element.NewRectangle(10, 10, 20, 20)
	st.AddElement(e)

	st.Element(e.ID).SectionID = secID // claim without a list entry

	issues := Check(st)
	require.Len(t, issues, 1)
	assert.Equal(t, Orphaned, issues[0].Kind)
	assert.Equal(t, e.ID, issues[0].ElementID)
	assert.Equal(t, secID, issues[0].SectionID)
}

func TestCheckDetectsGhostReference(t *testing.T) {
	st := store.New()
	secID := st.CreateSection(100, 100, 300, 200, "S")

	sec := st.Section(secID)
	sec.ContainedElementIDs = append(sec.ContainedElementIDs, "no-such-element")

	issues := Check(st)
	require.Len(t, issues, 1)
	assert.Equal(t, Ghost, issues[0].Kind)
	assert.Equal(t, "no-such-element", issues[0].ElementID)
}

func TestCheckDetectsMissingSection(t *testing.T) {
	st := store.New()
	e := element.NewRectangle(10, 10, 20, 20)
	st.AddElement(e)
	st.Element(e.ID).SectionID = "vanished"

	issues := Check(st)
	require.Len(t, issues, 1)
	assert.Equal(t, Orphaned, issues[0].Kind)
}

func TestRepair(t *testing.T) {
	st := store.New()
	secID := st.CreateSection(100, 100, 300, 200, "S")

	orphan := element.NewRectangle(10, 10, 20, 20)
	st.AddElement(orphan)
	st.Element(orphan.ID).SectionID = secID

	lost := element.NewRectangle(30, 30, 20, 20)
	st.AddElement(lost)
	st.Element(lost.ID).SectionID = "vanished"

	sec := st.Section(secID)
	sec.ContainedElementIDs = append(sec.ContainedElementIDs, "ghost")

	fixed := Repair(st)
	assert.Equal(t, 3, fixed)
	assert.Empty(t, Check(st))

	assert.True(t, st.Section(secID).Contains(orphan.ID))
	assert.Empty(t, st.Element(lost.ID).SectionID)
	assert.False(t, st.Section(secID).Contains("ghost"))

	// Already consistent: nothing left to fix.
	assert.Equal(t, 0, Repair(st))
}

func TestCheckListsRawDocument(t *testing.T) {
	sec := element.NewSection(0, 0, 300, 200, "S")
	sec.ContainedElementIDs = []string{"ghost"}

	claimed := element.NewRectangle(10, 10, 20, 20)
	claimed.SectionID = sec.ID

	issues := CheckLists([]*element.Element{claimed}, []*element.Section{sec})
	require.Len(t, issues, 2)
	assert.Equal(t, Orphaned, issues[0].Kind)
	assert.Equal(t, claimed.ID, issues[0].ElementID)
	assert.Equal(t, Ghost, issues[1].Kind)
	assert.Equal(t, "ghost", issues[1].ElementID)
}

func TestCheckListsEmpty(t *testing.T) {
	assert.Empty(t, CheckLists(nil, nil))
}

func TestIssueString(t *testing.T) {
	i := Issue{Kind: Ghost, ElementID: "e1", SectionID: "s1"}
	assert.Equal(t, "ghost reference: element e1 / section s1", i.String())
}
