package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/specialistvlad/hclgraph/internal/fixup"
	"github.com/specialistvlad/hclgraph/internal/hcldoc"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/writer"
)

// Result is one built document.
type Result struct {
	// Root is the root object, or the result of a root evaluator.
	Root any
	// Names lists the names bound in the document's root scope, in order.
	Names []string
	// Objects counts the objects that completed.
	Objects int
	// Unresolved lists names that were assigned null in lenient mode.
	Unresolved []fixup.UnresolvedRef
}

// Build reads and builds the configured document.
func (a *App) Build(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	path, err := documentPath(a.config.DocPath)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	w := writer.New(ctx, writer.Options{
		Strict:     a.config.Strict,
		Registry:   a.registry,
		OnComplete: func(*objmodel.Object) { res.Objects++ },
	})
	if err := hcldoc.LoadFile(ctx, path, w); err != nil {
		return nil, err
	}
	root, err := w.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", path, err)
	}

	res.Root = root
	for _, e := range w.RootScope().AllEntries() {
		res.Names = append(res.Names, e.Name)
	}
	res.Unresolved = w.Unresolved()

	a.logger.Info("Document built.", "path", path, "objects", res.Objects, "names", len(res.Names), "unresolved", len(res.Unresolved))
	return res, nil
}

// documentPath resolves a directory to the single document inside it.
func documentPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access document path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := hcldoc.FindFiles(path)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", fmt.Errorf("expected exactly one .hcl document in %s, found %d", path, len(files))
	}
	return files[0], nil
}
