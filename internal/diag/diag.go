// Package diag cross-checks the containment invariant between elements and
// sections. The store's transition protocol keeps the two sides consistent
// by construction; this inspector exists for documents edited outside the
// application and as a regression net.
package diag

import (
	"fmt"

	"whiteboard/internal/element"
	"whiteboard/internal/store"
)

// Issue is one detected containment inconsistency.
type Issue struct {
	Kind      IssueKind
	ElementID string
	SectionID string
}

// IssueKind classifies a containment inconsistency.
type IssueKind int

const (
	// Orphaned: the element claims a section that does not list it, or
	// that does not exist.
	Orphaned IssueKind = iota
	// Ghost: a section lists an element that does not claim it, or that
	// does not exist.
	Ghost
)

func (k IssueKind) String() string {
	switch k {
	case Orphaned:
		return "orphaned element"
	case Ghost:
		return "ghost reference"
	default:
		return "unknown"
	}
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: element %s / section %s", i.Kind, i.ElementID, i.SectionID)
}

// Check inspects every element and section and returns the inconsistencies
// found. An empty result means the bidirectional invariant holds.
func Check(st *store.Store) []Issue {
	return CheckLists(st.Elements(), st.Sections())
}

// CheckLists runs the containment check over raw element and section lists.
// Loading a document through the store rebuilds containment from element
// claims, which hides file-level damage; callers validating documents should
// check the parsed lists before hydration.
func CheckLists(elements []*element.Element, sections []*element.Section) []Issue {
	elems := make(map[string]*element.Element, len(elements))
	for _, e := range elements {
		elems[e.ID] = e
	}
	secs := make(map[string]*element.Section, len(sections))
	for _, sec := range sections {
		secs[sec.ID] = sec
	}

	var issues []Issue
	for _, e := range elements {
		if e.SectionID == "" {
			continue
		}
		sec := secs[e.SectionID]
		if sec == nil || !sec.Contains(e.ID) {
			issues = append(issues, Issue{Kind: Orphaned, ElementID: e.ID, SectionID: e.SectionID})
		}
	}

	for _, sec := range sections {
		for _, id := range sec.ContainedElementIDs {
			e := elems[id]
			if e == nil || e.SectionID != sec.ID {
				issues = append(issues, Issue{Kind: Ghost, ElementID: id, SectionID: sec.ID})
			}
		}
	}
	return issues
}

// Repair fixes containment inconsistencies: orphaned elements are re-added
// to their section's containment list (or detached when the section is
// gone), and ghost references are dropped. Returns the number of corrections
// made. The rewrite goes through the store so it lands as one commit.
func Repair(st *store.Store) int {
	return st.ReconcileContainment()
}
