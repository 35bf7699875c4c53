// Package board provides the interactive whiteboard canvas widget: viewport
// pan/zoom, pointer routing into the tool state machines, and raster drawing
// of the scene.
package board

import (
	"sync"
	"time"

	"whiteboard/internal/render"
	"whiteboard/internal/store"
	"whiteboard/internal/tools"
	"whiteboard/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	zoomStep      = 1.25
	frameInterval = 16 * time.Millisecond
)

// Board is the canvas widget. It implements tools.Previewer so gestures can
// update the scene without store commits, and owns the retained-node
// renderer those updates flow through.
type Board struct {
	widget.BaseWidget

	store    *store.Store
	Tools    *tools.Manager
	renderer *render.Renderer
	boundary *render.Boundary

	raster  *fynecanvas.Raster
	content *pointerContent

	mu        sync.Mutex
	nodes     map[string]*sceneNode
	guideRect *geometry.Rect
	guideLine *[2]geometry.Point2D

	showGrid bool
}

// New creates a board widget over the store.
func New(st *store.Store) *Board {
	b := &Board{
		store: st,
		nodes: make(map[string]*sceneNode),
	}
	b.renderer = render.New(frameScheduler(), b.lookupNode)
	b.boundary = render.NewBoundary(nil, func() { b.raster.Refresh() })
	b.Tools = tools.NewManager(st, b)

	b.raster = fynecanvas.NewRaster(b.draw)
	b.content = newPointerContent(b)

	refresh := func(interface{}) { b.raster.Refresh() }
	st.On(store.EventElementsChanged, func(data interface{}) {
		b.pruneNodes()
		b.raster.Refresh()
	})
	st.On(store.EventSectionsChanged, refresh)
	st.On(store.EventSelectionChanged, refresh)
	st.On(store.EventViewportChanged, refresh)
	st.On(store.EventDrawingChanged, refresh)
	st.On(store.EventHistoryApplied, func(data interface{}) {
		b.pruneNodes()
		b.raster.Refresh()
	})

	b.ExtendBaseWidget(b)
	return b
}

// frameScheduler coalesces renderer flushes to roughly one per frame and
// marshals them onto the fyne main thread.
func frameScheduler() render.Scheduler {
	return render.SchedulerFunc(func(fn func()) {
		time.AfterFunc(frameInterval, func() {
			fyne.Do(fn)
		})
	})
}

// CreateRenderer implements fyne.Widget.
func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.content)
}

// Renderer exposes the direct renderer for diagnostics.
func (b *Board) Renderer() *render.Renderer {
	return b.renderer
}

// SetShowGrid toggles the background dot grid.
func (b *Board) SetShowGrid(show bool) {
	b.mu.Lock()
	b.showGrid = show
	b.mu.Unlock()
	b.raster.Refresh()
}

// ShowGrid reports whether the dot grid is drawn.
func (b *Board) ShowGrid() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showGrid
}

// CancelGesture cancels the in-flight tool gesture. Wired to Escape.
func (b *Board) CancelGesture() {
	b.Tools.CancelGesture()
}

// viewTransform maps canvas coordinates to widget coordinates.
func (b *Board) viewTransform() geometry.AffineTransform {
	vp := b.store.Viewport()
	return geometry.Translation(vp.PanX, vp.PanY).Compose(geometry.Scale(vp.Zoom, vp.Zoom))
}

// toCanvas converts a widget position to canvas coordinates.
func (b *Board) toCanvas(pos fyne.Position) geometry.Point2D {
	inv, ok := b.viewTransform().Inverse()
	if !ok {
		return geometry.NewPoint2D(float64(pos.X), float64(pos.Y))
	}
	return inv.Apply(geometry.NewPoint2D(float64(pos.X), float64(pos.Y)))
}

// Zoom multiplies the viewport zoom by factor, keeping the given widget
// position fixed on screen.
func (b *Board) Zoom(factor float64, at fyne.Position) {
	vp := b.store.Viewport()
	anchor := b.toCanvas(at)

	zoom := vp.Zoom * factor
	if zoom < store.MinZoom {
		zoom = store.MinZoom
	}
	if zoom > store.MaxZoom {
		zoom = store.MaxZoom
	}
	panX := float64(at.X) - anchor.X*zoom
	panY := float64(at.Y) - anchor.Y*zoom
	b.store.SetViewport(store.ViewportUpdate{PanX: &panX, PanY: &panY, Zoom: &zoom})
}

// sceneNode is the retained visual state for one element. While live it
// overrides the store's position for drawing.
type sceneNode struct {
	board *Board

	mu     sync.Mutex
	pos    geometry.Point2D
	w, h   float64
	points []geometry.Point2D
	live   bool
	sized  bool
	pathed bool
}

func (n *sceneNode) SetPosition(x, y float64) {
	n.mu.Lock()
	n.pos = geometry.NewPoint2D(x, y)
	n.live = true
	n.mu.Unlock()
}

func (n *sceneNode) SetSize(w, h float64) {
	n.mu.Lock()
	n.w, n.h = w, h
	n.sized = true
	n.live = true
	n.mu.Unlock()
}

func (n *sceneNode) SetPath(points []geometry.Point2D) {
	n.mu.Lock()
	n.points = points
	n.pathed = true
	n.live = true
	n.mu.Unlock()
}

func (n *sceneNode) Redraw() {
	n.board.raster.Refresh()
}

func (n *sceneNode) clear() {
	n.mu.Lock()
	n.live = false
	n.sized = false
	n.pathed = false
	n.points = nil
	n.mu.Unlock()
}

// lookupNode backs the renderer's registry misses: any existing element gets
// a node on demand.
func (b *Board) lookupNode(id string) render.Node {
	if b.store.Element(id) == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n, ok := b.nodes[id]; ok {
		return n
	}
	n := &sceneNode{board: b}
	b.nodes[id] = n
	return n
}

// pruneNodes drops nodes whose elements no longer exist.
func (b *Board) pruneNodes() {
	b.mu.Lock()
	var stale []string
	for id := range b.nodes {
		if b.store.Element(id) == nil {
			stale = append(stale, id)
			delete(b.nodes, id)
		}
	}
	b.mu.Unlock()

	for _, id := range stale {
		b.renderer.UnregisterNode(id)
	}
}

// MoveNode implements tools.Previewer via the direct renderer.
func (b *Board) MoveNode(id string, x, y float64) {
	b.renderer.UpdateNodePosition(id, x, y)
}

// ResizeNode implements tools.Previewer.
func (b *Board) ResizeNode(id string, x, y, w, h float64) {
	b.renderer.UpdateNodePosition(id, x, y)
	b.renderer.UpdateNodeSize(id, w, h)
}

// CommitNodes implements tools.Previewer.
func (b *Board) CommitNodes(ids ...string) {
	b.renderer.CommitGesture(frameCommitter{b.store}, ids...)
}

// frameCommitter converts the absolute positions the renderer tracks into
// the frame-relative coordinates the store keeps for sectioned elements.
type frameCommitter struct {
	st *store.Store
}

func (c frameCommitter) BatchUpdate(entries []store.BatchEntry) int {
	for i := range entries {
		u := &entries[i].Fields
		if u.X == nil || u.Y == nil {
			continue
		}
		e := c.st.Element(entries[i].ID)
		if e == nil || e.SectionID == "" {
			continue
		}
		sec := c.st.Section(e.SectionID)
		if sec == nil {
			continue
		}
		origin := sec.Origin()
		x := *u.X - origin.X
		y := *u.Y - origin.Y
		u.X, u.Y = &x, &y
	}
	return c.st.BatchUpdate(entries)
}

// ShowGuideRect implements tools.Previewer.
func (b *Board) ShowGuideRect(r geometry.Rect) {
	b.mu.Lock()
	b.guideRect = &r
	b.guideLine = nil
	b.mu.Unlock()
	b.raster.Refresh()
}

// ShowGuideLine implements tools.Previewer.
func (b *Board) ShowGuideLine(p1, p2 geometry.Point2D) {
	b.mu.Lock()
	b.guideLine = &[2]geometry.Point2D{p1, p2}
	b.guideRect = nil
	b.mu.Unlock()
	b.raster.Refresh()
}

// ClearGuides implements tools.Previewer.
func (b *Board) ClearGuides() {
	b.mu.Lock()
	b.guideRect = nil
	b.guideLine = nil
	b.mu.Unlock()
	b.raster.Refresh()
}

// Refresh implements tools.Previewer: after a gesture commits or cancels,
// drop every live node override so drawing reads store state again.
func (b *Board) Refresh() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.nodes))
	for id, n := range b.nodes {
		n.clear()
		ids = append(ids, id)
	}
	b.mu.Unlock()

	b.renderer.DiscardGesture(ids...)
	b.raster.Refresh()
}

// pointerContent receives raw pointer input for the board and routes it to
// the tool manager in canvas coordinates.
type pointerContent struct {
	widget.BaseWidget
	board *Board
}

func newPointerContent(b *Board) *pointerContent {
	c := &pointerContent{board: b}
	c.ExtendBaseWidget(c)
	return c
}

func (c *pointerContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.board.raster)
}

func (c *pointerContent) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (c *pointerContent) pointerEvent(pos fyne.Position, mod fyne.KeyModifier) tools.PointerEvent {
	return tools.PointerEvent{
		Pos:      c.board.toCanvas(pos),
		Screen:   geometry.NewPoint2D(float64(pos.X), float64(pos.Y)),
		Additive: mod&fyne.KeyModifierShift != 0,
	}
}

// MouseDown implements desktop.Mouseable.
func (c *pointerContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.board.Tools.PointerDown(c.pointerEvent(ev.Position, ev.Modifier))
}

// MouseUp implements desktop.Mouseable.
func (c *pointerContent) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.board.Tools.PointerUp(c.pointerEvent(ev.Position, ev.Modifier))
}

// MouseIn implements desktop.Hoverable.
func (c *pointerContent) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (c *pointerContent) MouseMoved(ev *desktop.MouseEvent) {
	c.board.Tools.PointerMove(c.pointerEvent(ev.Position, ev.Modifier))
}

// MouseOut implements desktop.Hoverable. Gestures survive the pointer
// briefly leaving the widget, so this does not cancel.
func (c *pointerContent) MouseOut() {}

// Scrolled zooms with the wheel, anchored at the cursor.
func (c *pointerContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.board.Zoom(zoomStep, ev.Position)
	} else if ev.Scrolled.DY < 0 {
		c.board.Zoom(1/zoomStep, ev.Position)
	}
}
