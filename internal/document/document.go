// Package document persists canvases as named JSON documents in a directory.
// Elements and sections are serialized in list form, in z-order, so the files
// stay portable and diffable.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"whiteboard/internal/element"
	"whiteboard/internal/store"
)

const fileExt = ".json"

// Document is the on-disk canvas format.
type Document struct {
	Version  int                `json:"version"`
	Name     string             `json:"name"`
	Created  time.Time          `json:"created"`
	Modified time.Time          `json:"modified"`
	Viewport store.Viewport     `json:"viewport"`
	Elements []*element.Element `json:"elements"`
	Sections []*element.Section `json:"sections"`
}

// New creates an empty document.
func New(name string) *Document {
	now := time.Now()
	return &Document{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Viewport: store.Viewport{Zoom: 1},
	}
}

// FromStore snapshots a store into a document.
func FromStore(st *store.Store, name string) *Document {
	doc := New(name)
	doc.Elements = st.Elements()
	doc.Sections = st.Sections()
	doc.Viewport = st.Viewport()
	return doc
}

// ApplyTo loads the document into a store, replacing its contents, and
// restores the saved viewport.
func (d *Document) ApplyTo(st *store.Store) {
	st.Load(d.Elements, d.Sections)
	vp := d.Viewport
	if vp.Zoom == 0 {
		vp.Zoom = 1
	}
	st.SetViewport(store.ViewportUpdate{PanX: &vp.PanX, PanY: &vp.PanY, Zoom: &vp.Zoom})
}

// Info describes one stored document without loading its contents.
type Info struct {
	Name     string
	Path     string
	Modified time.Time
	Size     int64
}

// Manager lists, loads, saves, and deletes the documents in one directory.
type Manager struct {
	dir string
}

// NewManager creates a manager for dir, creating the directory if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the managed directory.
func (m *Manager) Dir() string {
	return m.dir
}

// validName rejects names that would escape the managed directory.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("document name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+fileExt)
}

// List returns the stored documents sorted by name.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:     strings.TrimSuffix(entry.Name(), fileExt),
			Path:     filepath.Join(m.dir, entry.Name()),
			Modified: fi.ModTime(),
			Size:     fi.Size(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Load reads and decodes a stored document by name.
func (m *Manager) Load(name string) (*Document, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", name, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %q: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = name
	}
	return &doc, nil
}

// Save writes the document under its name, stamping the modified time.
func (m *Manager) Save(doc *Document) error {
	if err := validName(doc.Name); err != nil {
		return err
	}
	doc.Modified = time.Now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %q: %w", doc.Name, err)
	}
	if err := os.WriteFile(m.path(doc.Name), data, 0644); err != nil {
		return fmt.Errorf("save document %q: %w", doc.Name, err)
	}
	return nil
}

// Delete removes a stored document by name.
func (m *Manager) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(m.path(name)); err != nil {
		return fmt.Errorf("delete document %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a document with the name is stored.
func (m *Manager) Exists(name string) bool {
	if validName(name) != nil {
		return false
	}
	_, err := os.Stat(m.path(name))
	return err == nil
}
