// Package app provides application lifecycle management and events: the
// open document, the modified flag, and the wiring between the canvas store
// and document persistence.
package app

import (
	"fmt"
	"sync"
	"time"

	"whiteboard/internal/document"
	"whiteboard/internal/store"
)

// EventType identifies application-level events.
type EventType int

const (
	EventDocumentLoaded EventType = iota
	EventDocumentSaved
	EventModified
	EventDocumentListChanged
	EventExternalChange
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state around one open canvas.
type State struct {
	mu sync.RWMutex

	Store *store.Store
	Docs  *document.Manager

	documentName string
	modified     bool

	watcher   *document.Watcher
	listeners map[EventType][]EventListener

	// selfSaves records recent writes made through this State, keyed by
	// document name, so the watcher can tell them apart from edits by
	// another process.
	selfSaves map[string]time.Time
}

// selfSaveWindow is how long a save made through this State masks the
// watcher notification it triggers. Generously above the watcher debounce.
const selfSaveWindow = 2 * time.Second

// NewState creates the application state with a fresh store. Store mutations
// flip the modified flag automatically.
func NewState(docs *document.Manager) *State {
	s := &State{
		Store:     store.New(),
		Docs:      docs,
		listeners: make(map[EventType][]EventListener),
		selfSaves: make(map[string]time.Time),
	}

	markModified := func(interface{}) { s.SetModified(true) }
	s.Store.On(store.EventElementsChanged, markModified)
	s.Store.On(store.EventSectionsChanged, markModified)
	s.Store.On(store.EventHistoryApplied, markModified)
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// DocumentName returns the name of the open document, "" for an unsaved
// scratch canvas.
func (s *State) DocumentName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentName
}

// Modified reports whether the canvas has unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// SetModified sets the unsaved-changes flag, emitting EventModified on a
// state change.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.modified != modified
	s.modified = modified
	s.mu.Unlock()

	if changed {
		s.Emit(EventModified, modified)
	}
}

// NewDocument resets the store to an empty canvas with no document name.
func (s *State) NewDocument() {
	s.Store.Load(nil, nil)
	s.mu.Lock()
	s.documentName = ""
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentLoaded, "")
}

// OpenDocument loads a stored document into the store.
func (s *State) OpenDocument(name string) error {
	doc, err := s.Docs.Load(name)
	if err != nil {
		return err
	}

	doc.ApplyTo(s.Store)
	s.mu.Lock()
	s.documentName = name
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentLoaded, name)
	return nil
}

// SaveDocument writes the open canvas back under its document name.
func (s *State) SaveDocument() error {
	name := s.DocumentName()
	if name == "" {
		return fmt.Errorf("document has no name, use SaveDocumentAs")
	}
	return s.SaveDocumentAs(name)
}

// SaveDocumentAs writes the open canvas under the given name and adopts it
// as the document name.
func (s *State) SaveDocumentAs(name string) error {
	s.markSelfSave(name)
	if err := s.Docs.Save(document.FromStore(s.Store, name)); err != nil {
		return err
	}

	s.mu.Lock()
	s.documentName = name
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentSaved, name)
	return nil
}

// DeleteDocument removes a stored document. Deleting the open document
// keeps the canvas in memory but detaches its name.
func (s *State) DeleteDocument(name string) error {
	if err := s.Docs.Delete(name); err != nil {
		return err
	}

	s.mu.Lock()
	if s.documentName == name {
		s.documentName = ""
	}
	s.mu.Unlock()
	s.Emit(EventDocumentListChanged, name)
	return nil
}

// StartWatcher begins watching the document directory. External changes to
// the open document emit EventExternalChange; any other change emits
// EventDocumentListChanged. Saves made through this State show up in the
// watcher too but are not reported as external.
func (s *State) StartWatcher() error {
	w, err := s.Docs.Watch(func(name string) {
		if name == s.DocumentName() && !s.consumeSelfSave(name) {
			s.Emit(EventExternalChange, name)
		}
		s.Emit(EventDocumentListChanged, name)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

func (s *State) markSelfSave(name string) {
	s.mu.Lock()
	s.selfSaves[name] = time.Now()
	s.mu.Unlock()
}

// consumeSelfSave reports whether a watcher notification for name was caused
// by a save through this State. The marker is consumed either way, so a
// later genuine external change to the same document still fires.
func (s *State) consumeSelfSave(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.selfSaves[name]
	if !ok {
		return false
	}
	delete(s.selfSaves, name)
	return time.Since(at) < selfSaveWindow
}

// Close stops the document watcher.
func (s *State) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}
