// Package tools implements the pointer-driven interaction state machines.
// Each tool is a small finite-state machine fed pointer-down / pointer-move /
// pointer-up samples in canvas coordinates; the Manager owns which tool is
// active and guarantees that switching tools or pressing Escape cancels any
// gesture still in flight.
package tools

import (
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"
)

// Tool identifies the active interaction tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPan
	ToolRectangle
	ToolCircle
	ToolTriangle
	ToolText
	ToolSticky
	ToolTable
	ToolSection
	ToolConnector
	ToolFreehand
)

// String returns the toolbar label for the tool.
func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "Select"
	case ToolPan:
		return "Pan"
	case ToolRectangle:
		return "Rectangle"
	case ToolCircle:
		return "Circle"
	case ToolTriangle:
		return "Triangle"
	case ToolText:
		return "Text"
	case ToolSticky:
		return "Sticky Note"
	case ToolTable:
		return "Table"
	case ToolSection:
		return "Section"
	case ToolConnector:
		return "Connector"
	case ToolFreehand:
		return "Draw"
	default:
		return "Unknown"
	}
}

// PointerEvent is one pointer sample routed into the active tool.
type PointerEvent struct {
	Pos      geometry.Point2D // canvas coordinates
	Screen   geometry.Point2D // window coordinates, used by the pan tool
	Additive bool             // modifier held: extend instead of replace selection
}

// gesture is the state machine each tool implements. Cancel discards any
// in-flight gesture without committing to the store.
type gesture interface {
	Down(ev PointerEvent)
	Move(ev PointerEvent)
	Up(ev PointerEvent)
	Cancel()
}

// Previewer receives the high-frequency visual updates a gesture produces
// between pointer-down and pointer-up, so the store is only committed once
// per gesture. The board widget implements it.
type Previewer interface {
	// MoveNode repositions an element's scene node to an absolute canvas
	// position without a store commit.
	MoveNode(id string, x, y float64)
	// ResizeNode sets an element's scene node to the given absolute bounds
	// without a store commit.
	ResizeNode(id string, x, y, w, h float64)
	// CommitNodes writes the final visual state of the given nodes back to
	// the store as one batch commit.
	CommitNodes(ids ...string)
	// ShowGuideRect displays a draft rectangle (section or shape ghost).
	ShowGuideRect(r geometry.Rect)
	// ShowGuideLine displays a draft connector line.
	ShowGuideLine(a, b geometry.Point2D)
	// ClearGuides removes all draft overlays.
	ClearGuides()
	// Refresh redraws the scene from store state after a gesture commits
	// or cancels.
	Refresh()
}

// Manager routes pointer events to the active tool and owns tool switching,
// Escape cancellation, and text-edit suspension.
type Manager struct {
	store   *store.Store
	preview Previewer

	active  Tool
	current gesture
	editing bool

	onToolChange func(Tool)
}

// NewManager creates a tool manager with the select tool active.
func NewManager(st *store.Store, preview Previewer) *Manager {
	m := &Manager{store: st, preview: preview}
	m.current = m.gestureFor(ToolSelect)
	return m
}

func (m *Manager) gestureFor(t Tool) gesture {
	switch t {
	case ToolPan:
		return &panTool{m: m}
	case ToolRectangle, ToolCircle, ToolTriangle, ToolText, ToolSticky, ToolTable:
		return &shapeTool{m: m, tool: t}
	case ToolSection:
		return &sectionTool{m: m}
	case ToolConnector:
		return &connectorTool{m: m}
	case ToolFreehand:
		return &freehandTool{m: m}
	default:
		return &selectTool{m: m}
	}
}

// Active returns the active tool.
func (m *Manager) Active() Tool {
	return m.active
}

// OnToolChange registers a callback fired whenever the active tool changes,
// including auto-switches back to the select tool after placement.
func (m *Manager) OnToolChange(fn func(Tool)) {
	m.onToolChange = fn
}

// SetTool switches the active tool. Any gesture of the previous tool still
// in progress is cancelled, never committed.
func (m *Manager) SetTool(t Tool) {
	if t == m.active {
		return
	}
	m.current.Cancel()
	m.active = t
	m.current = m.gestureFor(t)
	if m.onToolChange != nil {
		m.onToolChange(t)
	}
}

// PointerDown routes a pointer press to the active tool. Suspended while a
// text edit is open.
func (m *Manager) PointerDown(ev PointerEvent) {
	if m.editing {
		return
	}
	m.current.Down(ev)
}

// PointerMove routes a pointer move to the active tool.
func (m *Manager) PointerMove(ev PointerEvent) {
	if m.editing {
		return
	}
	m.current.Move(ev)
}

// PointerUp routes a pointer release to the active tool.
func (m *Manager) PointerUp(ev PointerEvent) {
	if m.editing {
		return
	}
	m.current.Up(ev)
}

// CancelGesture discards the in-flight gesture, if any. Bound to Escape and
// to pointer-capture loss.
func (m *Manager) CancelGesture() {
	m.current.Cancel()
}

// BeginTextEdit suspends pointer handling while an inline text editor is
// open. An in-flight gesture is cancelled first.
func (m *Manager) BeginTextEdit() {
	m.current.Cancel()
	m.editing = true
}

// EndTextEdit resumes pointer handling.
func (m *Manager) EndTextEdit() {
	m.editing = false
}

// TextEditing reports whether pointer handling is suspended.
func (m *Manager) TextEditing() bool {
	return m.editing
}
