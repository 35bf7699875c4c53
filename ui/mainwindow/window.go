// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"strings"

	"whiteboard/internal/app"
	"whiteboard/internal/diag"
	"whiteboard/internal/export"
	"whiteboard/internal/store"
	"whiteboard/internal/tools"
	"whiteboard/internal/version"
	"whiteboard/ui/board"
	"whiteboard/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const zoomStep = 1.25

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	board *board.Board

	statusBar   *widget.Label
	toolButtons map[tools.Tool]*widget.Button

	showGridItem *fyne.MenuItem
}

// New creates the main window around the application state.
func New(fyneApp fyne.App, state *app.State, prefStore *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Whiteboard")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  prefStore,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupShortcuts()
	mw.restoreSession()

	return mw
}

// setupUI creates the main layout: tool bar on top, board in the center,
// status bar at the bottom.
func (mw *MainWindow) setupUI() {
	mw.board = board.New(mw.state.Store)
	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	content := container.NewBorder(
		toolbar,                           // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.board,                          // center
	)
	mw.SetContent(content)
}

// createToolbar builds one button per drawing tool and highlights the
// active one.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	order := []tools.Tool{
		tools.ToolSelect,
		tools.ToolPan,
		tools.ToolRectangle,
		tools.ToolCircle,
		tools.ToolTriangle,
		tools.ToolText,
		tools.ToolSticky,
		tools.ToolTable,
		tools.ToolSection,
		tools.ToolConnector,
		tools.ToolFreehand,
	}

	mw.toolButtons = make(map[tools.Tool]*widget.Button, len(order))
	items := make([]fyne.CanvasObject, 0, len(order)+2)
	for _, tool := range order {
		tool := tool
		btn := widget.NewButton(tool.String(), func() {
			mw.board.Tools.SetTool(tool)
		})
		mw.toolButtons[tool] = btn
		items = append(items, btn)
	}

	mw.board.Tools.OnToolChange(func(tool tools.Tool) {
		mw.highlightTool(tool)
		mw.updateStatus("Tool: " + tool.String())
	})
	mw.highlightTool(mw.board.Tools.Active())

	items = append(items,
		widget.NewSeparator(),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
	)
	return container.NewHBox(items...)
}

func (mw *MainWindow) highlightTool(active tools.Tool) {
	for tool, btn := range mw.toolButtons {
		if tool == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Canvas", mw.onNewDocument),
		fyne.NewMenuItem("Open...", mw.onOpenDocument),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSaveDocument),
		fyne.NewMenuItem("Save As...", mw.onSaveDocumentAs),
		fyne.NewMenuItem("Delete...", mw.onDeleteDocument),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Edit Text...", mw.onEditText),
		fyne.NewMenuItem("Delete Selection", mw.onDeleteSelection),
	)

	mw.showGridItem = fyne.NewMenuItem("  Show Grid", mw.onToggleGrid)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		mw.showGridItem,
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Check Containment", mw.onCheckContainment),
		fyne.NewMenuItem("Repair Containment", mw.onRepairContainment),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentLoaded, func(data interface{}) {
		name, _ := data.(string)
		if name == "" {
			mw.SetTitle("Whiteboard")
			mw.updateStatus("New canvas")
			return
		}
		mw.SetTitle("Whiteboard - " + name)
		mw.updateStatus("Opened: " + name)
		mw.prefs.SetString(prefs.KeyLastDocument, name)
	})

	mw.state.On(app.EventDocumentSaved, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.SetTitle("Whiteboard - " + name)
			mw.updateStatus("Saved: " + name)
			mw.prefs.SetString(prefs.KeyLastDocument, name)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		modified, ok := data.(bool)
		if !ok {
			return
		}
		title := mw.Title()
		if modified && !strings.HasSuffix(title, " *") {
			mw.SetTitle(title + " *")
		} else if !modified {
			mw.SetTitle(strings.TrimSuffix(title, " *"))
		}
	})

	mw.state.On(app.EventExternalChange, func(data interface{}) {
		name, _ := data.(string)
		dialog.ShowConfirm("Document Changed",
			fmt.Sprintf("%q was changed outside this application.\nReload it and discard unsaved changes?", name),
			func(reload bool) {
				if !reload {
					return
				}
				if err := mw.state.OpenDocument(name); err != nil {
					dialog.ShowError(err, mw.Window)
				}
			}, mw.Window)
	})

	mw.SetCloseIntercept(mw.onClose)
}

// setupShortcuts wires keyboard handling: Escape cancels the current
// gesture, Delete removes the selection.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.board.CancelGesture()
		case fyne.KeyDelete, fyne.KeyBackspace:
			if !mw.board.Tools.TextEditing() {
				mw.onDeleteSelection()
			}
		}
	})
}

// restoreSession applies saved window size, grid setting, and reopens the
// last document.
func (mw *MainWindow) restoreSession() {
	w := mw.prefs.FloatWithFallback(prefs.KeyWindowWidth, 1200)
	h := mw.prefs.FloatWithFallback(prefs.KeyWindowHeight, 800)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))

	if mw.prefs.Bool(prefs.KeyShowGrid, false) {
		mw.board.SetShowGrid(true)
		mw.showGridItem.Label = "✓ Show Grid"
	}

	if name := mw.prefs.String(prefs.KeyLastDocument); name != "" && mw.state.Docs.Exists(name) {
		if err := mw.state.OpenDocument(name); err != nil {
			mw.updateStatus("Could not reopen " + name)
		}
	}
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetBool(prefs.KeyShowGrid, mw.board.ShowGrid())
	if err := mw.prefs.Save(); err != nil {
		fyne.LogError("saving preferences", err)
	}

	if !mw.state.Modified() {
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The canvas has unsaved changes. Quit anyway?",
		func(quit bool) {
			if quit {
				mw.Close()
			}
		}, mw.Window)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Menu action handlers

func (mw *MainWindow) onNewDocument() {
	if !mw.state.Modified() {
		mw.state.NewDocument()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"Discard unsaved changes and start a new canvas?",
		func(discard bool) {
			if discard {
				mw.state.NewDocument()
			}
		}, mw.Window)
}

func (mw *MainWindow) onOpenDocument() {
	infos, err := mw.state.Docs.List()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if len(infos) == 0 {
		dialog.ShowInformation("Open", "No saved documents.", mw.Window)
		return
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}

	list := widget.NewList(
		func() int { return len(names) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(names[i])
		},
	)

	var d dialog.Dialog
	list.OnSelected = func(i widget.ListItemID) {
		d.Hide()
		if err := mw.state.OpenDocument(names[i]); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}
	d = dialog.NewCustom("Open Document", "Cancel", container.NewStack(list), mw.Window)
	d.Resize(fyne.NewSize(320, 400))
	d.Show()
}

func (mw *MainWindow) onSaveDocument() {
	if mw.state.DocumentName() == "" {
		mw.onSaveDocumentAs()
		return
	}
	if err := mw.state.SaveDocument(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveDocumentAs() {
	entry := widget.NewEntry()
	entry.SetText(mw.state.DocumentName())
	entry.SetPlaceHolder("document name")

	dialog.ShowForm("Save Document As", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(save bool) {
			if !save || entry.Text == "" {
				return
			}
			if err := mw.state.SaveDocumentAs(entry.Text); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}, mw.Window)
}

func (mw *MainWindow) onDeleteDocument() {
	name := mw.state.DocumentName()
	if name == "" {
		mw.updateStatus("No document to delete")
		return
	}
	dialog.ShowConfirm("Delete Document",
		fmt.Sprintf("Delete %q from disk? The canvas stays open.", name),
		func(del bool) {
			if !del {
				return
			}
			if err := mw.state.DeleteDocument(name); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.updateStatus("Deleted: " + name)
		}, mw.Window)
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".png" {
			path += ".png"
		}
		if err := export.PNG(mw.state.Store, path, export.Options{}); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported: " + path)
	}, mw.Window)
	fd.SetFileName(exportFileName(mw.state.DocumentName()))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	fd.Show()
}

func exportFileName(docName string) string {
	if docName == "" {
		return "canvas.png"
	}
	return docName + ".png"
}

func (mw *MainWindow) onUndo() {
	if !mw.state.Store.Undo() {
		mw.updateStatus("Nothing to undo")
	}
}

func (mw *MainWindow) onRedo() {
	if !mw.state.Store.Redo() {
		mw.updateStatus("Nothing to redo")
	}
}

func (mw *MainWindow) onEditText() {
	id := mw.state.Store.LastSelectedID()
	e := mw.state.Store.Element(id)
	if e == nil {
		mw.updateStatus("Select an element first")
		return
	}

	entry := widget.NewMultiLineEntry()
	entry.SetText(e.Text)

	mw.board.Tools.BeginTextEdit()
	dialog.ShowForm("Edit Text", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(apply bool) {
			mw.board.Tools.EndTextEdit()
			if !apply {
				return
			}
			text := entry.Text
			mw.state.Store.UpdateElement(id, store.ElementUpdate{Text: &text})
		}, mw.Window)
}

func (mw *MainWindow) onDeleteSelection() {
	ids := mw.state.Store.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		mw.state.Store.DeleteElement(id)
	}
	mw.updateStatus(fmt.Sprintf("Deleted %d element(s)", len(ids)))
}

func (mw *MainWindow) onZoomIn() {
	mw.board.Zoom(zoomStep, mw.boardCenter())
}

func (mw *MainWindow) onZoomOut() {
	mw.board.Zoom(1/zoomStep, mw.boardCenter())
}

func (mw *MainWindow) onActualSize() {
	zoom := 1.0
	mw.state.Store.SetViewport(store.ViewportUpdate{Zoom: &zoom})
}

func (mw *MainWindow) boardCenter() fyne.Position {
	size := mw.board.Size()
	return fyne.NewPos(size.Width/2, size.Height/2)
}

func (mw *MainWindow) onToggleGrid() {
	show := !mw.board.ShowGrid()
	mw.board.SetShowGrid(show)
	if show {
		mw.showGridItem.Label = "✓ Show Grid"
	} else {
		mw.showGridItem.Label = "  Show Grid"
	}
}

func (mw *MainWindow) onCheckContainment() {
	issues := diag.Check(mw.state.Store)
	if len(issues) == 0 {
		dialog.ShowInformation("Containment Check", "No issues found.", mw.Window)
		return
	}

	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	dialog.ShowInformation("Containment Check",
		fmt.Sprintf("%d issue(s):\n\n%s", len(issues), strings.Join(lines, "\n")),
		mw.Window)
}

func (mw *MainWindow) onRepairContainment() {
	fixed := diag.Repair(mw.state.Store)
	if fixed == 0 {
		mw.updateStatus("Containment is consistent")
		return
	}
	mw.updateStatus(fmt.Sprintf("Repaired %d containment issue(s)", fixed))
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Whiteboard",
		fmt.Sprintf("Whiteboard v%s\n\n"+
			"A collaborative canvas for notes, shapes, and diagrams.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
