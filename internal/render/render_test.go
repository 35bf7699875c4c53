package render

import (
	"testing"
	"time"

	"whiteboard/internal/element"
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameStub queues scheduled callbacks until Run fires them, standing in for
// the host's animation-frame primitive.
type frameStub struct {
	queued []func()
}

func (f *frameStub) Schedule(fn func()) {
	f.queued = append(f.queued, fn)
}

func (f *frameStub) Run() {
	queued := f.queued
	f.queued = nil
	for _, fn := range queued {
		fn()
	}
}

type fakeNode struct {
	x, y, w, h float64
	path       []geometry.Point2D
	sets       int
	redraws    int
}

func (n *fakeNode) SetPosition(x, y float64) { n.x, n.y = x, y; n.sets++ }
func (n *fakeNode) SetSize(w, h float64)     { n.w, n.h = w, h; n.sets++ }
func (n *fakeNode) SetPath(p []geometry.Point2D) {
	n.path = p
	n.sets++
}
func (n *fakeNode) Redraw() { n.redraws++ }

func TestFrameCoalescing(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}
	r.RegisterNode("a", node)

	r.UpdateNodePosition("a", 10, 10)
	r.UpdateNodePosition("a", 20, 20)
	r.UpdateNodePosition("a", 30, 30)

	// Nothing applies before the frame fires, and only one frame is queued.
	assert.Equal(t, 0, node.sets)
	require.Len(t, frames.queued, 1)

	frames.Run()
	assert.Equal(t, 30.0, node.x)
	assert.Equal(t, 30.0, node.y)
	assert.Equal(t, 1, node.sets)
	assert.Equal(t, 1, node.redraws)
}

func TestBatchUpdateLastWriteWins(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}
	r.RegisterNode("a", node)

	x1, y1 := 10.0, 10.0
	x2 := 99.0
	w, h := 200.0, 100.0
	r.BatchUpdate([]Update{
		{ID: "a", X: &x1, Y: &y1},
		{ID: "a", Width: &w, Height: &h},
		{ID: "a", X: &x2, Y: &y1},
	})
	frames.Run()

	assert.Equal(t, 99.0, node.x)
	assert.Equal(t, 200.0, node.w)
	assert.Equal(t, 1, node.redraws)
}

func TestMissingNodeIsSilentNoOp(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)

	r.UpdateNodePosition("ghost", 10, 10)
	frames.Run()

	s := r.Stats()
	assert.Equal(t, 1, s.MissedLookup)
	assert.Equal(t, 0, s.Redraws)
}

func TestLookupFallbackOnRegistryMiss(t *testing.T) {
	frames := &frameStub{}
	node := &fakeNode{}
	r := New(frames, func(id string) Node {
		if id == "a" {
			return node
		}
		return nil
	})

	r.UpdateNodePosition("a", 15, 25)
	frames.Run()
	assert.Equal(t, 15.0, node.x)

	// Second frame hits the registry cache, not the lookup.
	r.UpdateNodePosition("a", 40, 40)
	frames.Run()
	assert.Equal(t, 40.0, node.x)
	assert.Equal(t, 0, r.Stats().MissedLookup)
}

func TestUnregisterDropsPendingUpdate(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}
	r.RegisterNode("a", node)

	r.UpdateNodePosition("a", 10, 10)
	r.UnregisterNode("a")
	frames.Run()

	assert.Equal(t, 0, node.sets)
	assert.Equal(t, 0, r.Stats().MissedLookup)
}

func TestCommitGestureSyncsStore(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}

	st := store.New()
	e := element.NewRectangle(10, 10, 50, 30)
	st.AddElement(e)
	r.RegisterNode(e.ID, node)

	r.UpdateNodePosition(e.ID, 100, 100)
	frames.Run()
	r.UpdateNodePosition(e.ID, 200, 150)
	frames.Run()

	// Store is stale until the gesture commits.
	assert.Equal(t, 10.0, st.Element(e.ID).X)

	applied := r.CommitGesture(st, e.ID)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 200.0, st.Element(e.ID).X)
	assert.Equal(t, 150.0, st.Element(e.ID).Y)

	// The whole gesture is one history entry.
	require.True(t, st.Undo())
	assert.Equal(t, 10.0, st.Element(e.ID).X)

	// Tracking was cleared; a second commit writes nothing.
	st.Redo()
	assert.Equal(t, 0, r.CommitGesture(st, e.ID))
}

func TestCommitGestureIncludesUnflushedUpdates(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}

	st := store.New()
	e := element.NewRectangle(10, 10, 50, 30)
	st.AddElement(e)
	r.RegisterNode(e.ID, node)

	// A gesture shorter than one frame: the queued updates never flush,
	// but the commit still picks them up.
	r.UpdateNodePosition(e.ID, 120, 110)
	r.UpdateNodeSize(e.ID, 80, 40)
	applied := r.CommitGesture(st, e.ID)

	assert.Equal(t, 1, applied)
	got := st.Element(e.ID)
	assert.Equal(t, 120.0, got.X)
	assert.Equal(t, 110.0, got.Y)
	assert.Equal(t, 80.0, got.Width)
	assert.Equal(t, 40.0, got.Height)

	// The committed queue entry must not reach the node afterwards.
	frames.Run()
	assert.Equal(t, 0, node.sets)
}

func TestDiscardGesture(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	node := &fakeNode{}

	st := store.New()
	e := element.NewRectangle(10, 10, 50, 30)
	st.AddElement(e)
	r.RegisterNode(e.ID, node)

	r.UpdateNodePosition(e.ID, 500, 500)
	frames.Run()
	r.DiscardGesture(e.ID)

	assert.Equal(t, 0, r.CommitGesture(st, e.ID))
	assert.Equal(t, 10.0, st.Element(e.ID).X)

	// Discard also drops updates still waiting for a frame.
	sets := node.sets
	r.UpdateNodePosition(e.ID, 600, 600)
	r.DiscardGesture(e.ID)
	frames.Run()
	assert.Equal(t, sets, node.sets)
	assert.Equal(t, 0, r.CommitGesture(st, e.ID))
}

func TestStats(t *testing.T) {
	frames := &frameStub{}
	r := New(frames, nil)
	r.RegisterNode("a", &fakeNode{})

	r.UpdateNodePosition("a", 1, 1)
	r.UpdateNodePosition("a", 2, 2)
	frames.Run()
	r.UpdateNodePosition("a", 3, 3)
	frames.Run()

	s := r.Stats()
	assert.Equal(t, 3, s.Updates)
	assert.Equal(t, 2, s.Redraws)
	assert.Equal(t, 2, s.Flushes)
	assert.GreaterOrEqual(t, s.FrameMean, 0.0)
}

func TestBoundaryIsolatedFault(t *testing.T) {
	b := NewBoundary(nil, nil)

	ok := b.Guard(func() { panic("bad node") })
	assert.False(t, ok)
	assert.False(t, b.Suspended())
	require.Error(t, b.LastError())
	assert.Contains(t, b.LastError().Error(), "bad node")

	// Drawing continues after an isolated fault.
	assert.True(t, b.Guard(func() {}))
}

func TestBoundaryRapidFailureSuspends(t *testing.T) {
	var suspendErr error
	b := NewBoundary(func(err error) { suspendErr = err }, nil)

	var delay time.Duration
	var resume func()
	b.after = func(d time.Duration, fn func()) *time.Timer {
		delay = d
		resume = fn
		return nil
	}

	for i := 0; i < rapidCount; i++ {
		b.Guard(func() { panic("loop") })
	}

	assert.True(t, b.Suspended())
	assert.Error(t, suspendErr)
	assert.Equal(t, initialBackoff, delay)
	// While suspended, draws are skipped entirely.
	ran := false
	assert.False(t, b.Guard(func() { ran = true }))
	assert.False(t, ran)

	require.NotNil(t, resume)
	resume()
	assert.False(t, b.Suspended())
	assert.True(t, b.Guard(func() {}))
}

func TestBoundaryBackoffDoubles(t *testing.T) {
	b := NewBoundary(nil, nil)
	var delays []time.Duration
	var resume func()
	b.after = func(d time.Duration, fn func()) *time.Timer {
		delays = append(delays, d)
		resume = fn
		return nil
	}

	trip := func() {
		for i := 0; i < rapidCount; i++ {
			b.Guard(func() { panic("loop") })
		}
	}

	trip()
	resume()
	trip()
	resume()

	require.Len(t, delays, 2)
	assert.Equal(t, initialBackoff, delays[0])
	assert.Equal(t, 2*initialBackoff, delays[1])
}

func TestBoundaryManualReset(t *testing.T) {
	resumed := false
	b := NewBoundary(nil, func() { resumed = true })
	b.after = func(time.Duration, func()) *time.Timer { return nil }

	for i := 0; i < rapidCount; i++ {
		b.Guard(func() { panic("loop") })
	}
	require.True(t, b.Suspended())

	b.Reset()
	assert.False(t, b.Suspended())
	assert.True(t, resumed)
	assert.True(t, b.Guard(func() {}))
}
