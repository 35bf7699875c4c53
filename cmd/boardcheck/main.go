// Command boardcheck validates the containment consistency of saved canvas
// documents and optionally repairs them in place.
package main

import (
	"flag"
	"fmt"
	"os"

	"whiteboard/internal/diag"
	"whiteboard/internal/document"
	"whiteboard/internal/store"
	"whiteboard/internal/version"
)

func main() {
	dir := flag.String("dir", "", "Directory holding canvas documents")
	name := flag.String("doc", "", "Document name to check (default: all)")
	repair := flag.Bool("repair", false, "Repair issues and re-save the document")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("boardcheck %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *dir == "" {
		fmt.Println("Usage: boardcheck -dir <documents dir> [-doc <name>] [-repair]")
		os.Exit(1)
	}

	mgr, err := document.NewManager(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open document directory: %v\n", err)
		os.Exit(1)
	}

	names, err := targetNames(mgr, *name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	broken := 0
	for _, docName := range names {
		issues, err := checkDocument(mgr, docName, *repair)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", docName, err)
			broken++
			continue
		}
		if len(issues) == 0 {
			fmt.Printf("%s: ok\n", docName)
			continue
		}

		broken++
		fmt.Printf("%s: %d issue(s)\n", docName, len(issues))
		for _, issue := range issues {
			fmt.Printf("  %s\n", issue)
		}
		if *repair {
			fmt.Printf("  repaired and saved\n")
		}
	}

	if broken > 0 && !*repair {
		os.Exit(2)
	}
}

func targetNames(mgr *document.Manager, only string) ([]string, error) {
	if only != "" {
		if !mgr.Exists(only) {
			return nil, fmt.Errorf("document %q not found", only)
		}
		return []string{only}, nil
	}

	infos, err := mgr.List()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// checkDocument validates the raw document lists. Hydrating a store rebuilds
// containment from element claims, so repair is load plus re-save.
func checkDocument(mgr *document.Manager, name string, repair bool) ([]diag.Issue, error) {
	doc, err := mgr.Load(name)
	if err != nil {
		return nil, err
	}

	issues := diag.CheckLists(doc.Elements, doc.Sections)
	if len(issues) == 0 || !repair {
		return issues, nil
	}

	st := store.New()
	doc.ApplyTo(st)
	if err := mgr.Save(document.FromStore(st, name)); err != nil {
		return issues, fmt.Errorf("saving repaired document: %w", err)
	}
	return issues, nil
}
