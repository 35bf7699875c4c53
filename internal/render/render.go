// Package render implements the direct renderer: a retained-node registry
// that applies gesture-speed visual updates straight to scene nodes, bypassing
// the store-commit cycle. Updates are coalesced per node per frame and the
// store is re-synchronized once, at gesture end, through a normal batch
// commit. Until that commit the store's copy of a dragged element is stale on
// purpose; nothing outside the active gesture may treat it as live.
package render

import (
	"sync"
	"time"

	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// Node is a retained scene node the renderer mutates in place. The board
// widget's per-element canvas objects implement it.
type Node interface {
	SetPosition(x, y float64)
	SetSize(w, h float64)
	SetPath(points []geometry.Point2D)
	Redraw()
}

// Scheduler runs a callback on the next animation frame. Multiple Schedule
// calls before the frame fires must collapse into one callback run.
type Scheduler interface {
	Schedule(func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Update is one coalescable visual update. Nil fields are unchanged;
// within a frame, later updates to the same node win field-by-field.
type Update struct {
	ID     string
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	Points []geometry.Point2D
}

func (u *Update) merge(next Update) {
	if next.X != nil {
		u.X = next.X
	}
	if next.Y != nil {
		u.Y = next.Y
	}
	if next.Width != nil {
		u.Width = next.Width
	}
	if next.Height != nil {
		u.Height = next.Height
	}
	if next.Points != nil {
		u.Points = next.Points
	}
}

// Stats is a diagnostic counter snapshot. Timing aggregates are computed
// over the recorded per-flush durations.
type Stats struct {
	Updates      int
	Redraws      int
	Flushes      int
	MissedLookup int
	FrameMean    float64 // milliseconds
	FrameStdDev  float64
}

// Renderer owns the retained-node registry and the per-frame update queue.
type Renderer struct {
	mu sync.Mutex

	nodes  map[string]Node
	lookup func(id string) Node // scene-graph query on registry miss

	sched   Scheduler
	pending map[string]*Update
	order   []string
	queued  bool

	// applied mirrors the last values pushed to each node, so gesture end
	// can write the final visual state back to the store.
	applied map[string]*Update

	updates int
	redraws int
	flushes int
	misses  int
	frameMS []float64
}

// New creates a renderer. lookup resolves nodes the registry does not hold;
// it may be nil if every node is registered explicitly.
func New(sched Scheduler, lookup func(id string) Node) *Renderer {
	return &Renderer{
		nodes:   make(map[string]Node),
		lookup:  lookup,
		sched:   sched,
		pending: make(map[string]*Update),
		applied: make(map[string]*Update),
	}
}

// RegisterNode adds a node to the registry under the element's id.
func (r *Renderer) RegisterNode(id string, n Node) {
	r.mu.Lock()
	r.nodes[id] = n
	r.mu.Unlock()
}

// UnregisterNode removes a node and drops any pending or applied state for
// it. Updates arriving for the id afterwards are silent no-ops.
func (r *Renderer) UnregisterNode(id string) {
	r.mu.Lock()
	delete(r.nodes, id)
	r.dropPendingLocked(id)
	delete(r.applied, id)
	r.mu.Unlock()
}

func (r *Renderer) dropPendingLocked(id string) *Update {
	p, ok := r.pending[id]
	if !ok {
		return nil
	}
	delete(r.pending, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

// UpdateNodePosition queues an absolute position update for the node.
func (r *Renderer) UpdateNodePosition(id string, x, y float64) {
	r.enqueue(Update{ID: id, X: &x, Y: &y})
}

// UpdateNodeSize queues a size update for the node.
func (r *Renderer) UpdateNodeSize(id string, w, h float64) {
	r.enqueue(Update{ID: id, Width: &w, Height: &h})
}

// UpdatePath queues a path update for a freehand or connector node.
func (r *Renderer) UpdatePath(id string, points []geometry.Point2D) {
	r.enqueue(Update{ID: id, Points: points})
}

// BatchUpdate queues several updates at once. Updates naming the same node
// merge last-write-wins per field before the frame applies them.
func (r *Renderer) BatchUpdate(updates []Update) {
	for _, u := range updates {
		r.enqueue(u)
	}
}

func (r *Renderer) enqueue(u Update) {
	r.mu.Lock()
	r.updates++
	if existing, ok := r.pending[u.ID]; ok {
		existing.merge(u)
	} else {
		queued := u
		r.pending[u.ID] = &queued
		r.order = append(r.order, u.ID)
	}
	schedule := !r.queued
	r.queued = true
	r.mu.Unlock()

	if schedule {
		r.sched.Schedule(r.flush)
	}
}

// flush applies the coalesced frame queue: one node mutation set and one
// redraw per touched node.
func (r *Renderer) flush() {
	start := time.Now()

	r.mu.Lock()
	pending, order := r.pending, r.order
	r.pending = make(map[string]*Update)
	r.order = nil
	r.queued = false
	r.mu.Unlock()

	redraws := 0
	misses := 0
	for _, id := range order {
		u := pending[id]
		n := r.node(id)
		if n == nil {
			// Node destroyed mid-gesture; races with deletion are
			// expected, so this is a silent no-op.
			misses++
			continue
		}
		r.apply(n, u)
		r.record(u)
		n.Redraw()
		redraws++
	}

	r.mu.Lock()
	r.redraws += redraws
	r.misses += misses
	r.flushes++
	r.frameMS = append(r.frameMS, float64(time.Since(start).Microseconds())/1000)
	r.mu.Unlock()
}

func (r *Renderer) node(id string) Node {
	r.mu.Lock()
	n := r.nodes[id]
	r.mu.Unlock()
	if n != nil {
		return n
	}
	if r.lookup == nil {
		return nil
	}
	if n := r.lookup(id); n != nil {
		r.RegisterNode(id, n)
		return n
	}
	return nil
}

func (r *Renderer) apply(n Node, u *Update) {
	if u.X != nil && u.Y != nil {
		n.SetPosition(*u.X, *u.Y)
	}
	if u.Width != nil && u.Height != nil {
		n.SetSize(*u.Width, *u.Height)
	}
	if u.Points != nil {
		n.SetPath(u.Points)
	}
}

func (r *Renderer) record(u *Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.applied[u.ID]
	if !ok {
		copied := *u
		r.applied[u.ID] = &copied
		return
	}
	existing.merge(*u)
}

// BatchCommitter is the store-side sink for gesture commits. *store.Store
// satisfies it directly; callers that keep store coordinates in a different
// frame than the renderer wrap it.
type BatchCommitter interface {
	BatchUpdate([]store.BatchEntry) int
}

// CommitGesture writes the final visual state of the given nodes back to the
// store as one batch commit and clears their applied and queued tracking.
// Ids with no tracked state are skipped. This is the single point where the
// bypassed render path re-synchronizes with the store.
func (r *Renderer) CommitGesture(st BatchCommitter, ids ...string) int {
	r.mu.Lock()
	var entries []store.BatchEntry
	for _, id := range ids {
		u := r.takeFinalLocked(id)
		if u == nil {
			continue
		}
		entries = append(entries, store.BatchEntry{
			ID: id,
			Fields: store.ElementUpdate{
				X:      u.X,
				Y:      u.Y,
				Width:  u.Width,
				Height: u.Height,
				Points: pointsField(u.Points),
			},
		})
	}
	r.mu.Unlock()

	if len(entries) == 0 {
		return 0
	}
	return st.BatchUpdate(entries)
}

// takeFinalLocked folds any not-yet-flushed update for the id into its
// applied state, removes both, and returns the result. A gesture shorter
// than one frame still commits what it queued; the store commit triggers
// the redraw the skipped frame would have done.
func (r *Renderer) takeFinalLocked(id string) *Update {
	final := r.applied[id]
	delete(r.applied, id)

	p := r.dropPendingLocked(id)
	if p == nil {
		return final
	}
	if final == nil {
		return p
	}
	final.merge(*p)
	return final
}

// DiscardGesture drops applied and queued state for the given nodes without
// a store commit. Used by gesture cancellation.
func (r *Renderer) DiscardGesture(ids ...string) {
	r.mu.Lock()
	for _, id := range ids {
		delete(r.applied, id)
		r.dropPendingLocked(id)
	}
	r.mu.Unlock()
}

func pointsField(points []geometry.Point2D) *[]geometry.Point2D {
	if points == nil {
		return nil
	}
	return &points
}

// Stats returns a snapshot of the diagnostic counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		Updates:      r.updates,
		Redraws:      r.redraws,
		Flushes:      r.flushes,
		MissedLookup: r.misses,
	}
	if len(r.frameMS) > 0 {
		s.FrameMean = stat.Mean(r.frameMS, nil)
		s.FrameStdDev = stat.StdDev(r.frameMS, nil)
	}
	return s
}
