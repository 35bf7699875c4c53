// Package main provides the entry point for the Whiteboard application.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"whiteboard/internal/app"
	"whiteboard/internal/document"
	"whiteboard/internal/version"
	"whiteboard/ui/mainwindow"
	"whiteboard/ui/prefs"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appTitle = "Whiteboard"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	docs, err := document.NewManager(documentsDir())
	if err != nil {
		log.Fatalf("document storage: %v", err)
	}

	appState := app.NewState(docs)
	appPrefs := prefs.Load()

	if err := appState.StartWatcher(); err != nil {
		log.Printf("document watcher disabled: %v", err)
	}
	defer appState.Close()

	fyneApp := fyneapp.NewWithID("io.whiteboard.app")
	fyneApp.Settings().SetTheme(&app.WhiteboardTheme{})

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// An argument names a stored document to open, overriding the session
	// restore.
	if len(os.Args) > 1 {
		name := os.Args[1]
		if err := appState.OpenDocument(name); err != nil {
			log.Printf("failed to open document %q: %v", name, err)
		}
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload prompts for a restart when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}
	log.Printf("Hot reload: watching %s", reloader.ExecPath())

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		fyne.Do(func() {
			dialog.ShowConfirm("New Version Available",
				"The application binary has been updated.\nRestart now?",
				func(restart bool) {
					if !restart {
						reloader.ResetBaseline()
						reloader.Start()
						return
					}
					log.Println("Hot reload: restarting...")
					if err := reloader.Restart(); err != nil {
						log.Printf("Hot reload: restart failed: %v", err)
					}
				}, win)
		})
	})

	reloader.Start()
}

// documentsDir is the on-disk home for saved canvases.
func documentsDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "documents"
	}
	return filepath.Join(configDir, "whiteboard", "documents")
}
