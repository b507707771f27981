package hcldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/specialistvlad/hclgraph/internal/exprrefs"
)

var directives = []string{DirectiveNamescope, DirectiveName, DirectiveInit}

// LoadFile reads the document at path and replays it into sink.
func LoadFile(ctx context.Context, path string, sink Sink) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return Parse(ctx, src, path, sink)
}

// Parse parses src as native HCL syntax and replays it into sink.
// Syntax and shape problems are returned as hcl.Diagnostics.
func Parse(ctx context.Context, src []byte, filename string, sink Sink) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing document.", "file", filename, "bytes", len(src))

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("failed to parse HCL file %s: not native HCL syntax", filename)
	}

	root, diags := rootBlock(body, filename)
	if diags.HasErrors() {
		return fmt.Errorf("invalid document %s: %w", filename, diags)
	}

	w := &walker{sink: sink}
	if err := w.object(root); err != nil {
		return err
	}
	logger.Debug("Document replayed.", "file", filename, "objects", w.objects)
	return nil
}

func rootBlock(body *hclsyntax.Body, filename string) (*hclsyntax.Block, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	for _, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("Only a single %q block is allowed at the top level.", RootBlockType),
			Subject:  attr.SrcRange.Ptr(),
		})
	}
	var root *hclsyntax.Block
	for _, block := range body.Blocks {
		switch {
		case block.Type != RootBlockType:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected top-level block",
				Detail:   fmt.Sprintf("Expected a %q block, found %q.", RootBlockType, block.Type),
				Subject:  block.DefRange().Ptr(),
			})
		case root != nil:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate root object",
				Detail:   fmt.Sprintf("Only one %q block is allowed; the first was defined at %s.", RootBlockType, root.DefRange()),
				Subject:  block.DefRange().Ptr(),
			})
		default:
			root = block
		}
	}
	if root == nil && !diags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing root object",
			Detail:   fmt.Sprintf("The document %s must contain one %q block.", filename, RootBlockType),
			Subject:  &body.SrcRange,
		})
	}
	return root, diags
}

type walker struct {
	sink    Sink
	objects int
}

// member is one attribute or one group of same-named blocks.
type member struct {
	name   string
	attr   *hclsyntax.Attribute
	blocks []*hclsyntax.Block
	start  int
}

func (w *walker) object(block *hclsyntax.Block) error {
	if len(block.Labels) != 1 {
		return diagError(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing object type",
			Detail:   fmt.Sprintf("Block %q must have exactly one label naming the object type.", block.Type),
			Subject:  block.DefRange().Ptr(),
		})
	}
	w.objects++
	if err := w.sink.StartObject(block.Labels[0], block.Range()); err != nil {
		return err
	}

	members, err := collectMembers(block.Body)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := w.member(m); err != nil {
			return err
		}
	}
	return w.sink.EndObject()
}

func (w *walker) member(m *member) error {
	if m.attr != nil {
		if err := w.sink.StartMember(m.name, false, m.attr.SrcRange); err != nil {
			return err
		}
		if err := w.sink.Value(classify(m.attr.Expr)); err != nil {
			return err
		}
		return w.sink.EndMember()
	}

	collection := len(m.blocks) > 1
	if err := w.sink.StartMember(m.name, collection, m.blocks[0].DefRange()); err != nil {
		return err
	}
	for _, b := range m.blocks {
		if err := w.object(b); err != nil {
			return err
		}
	}
	return w.sink.EndMember()
}

// collectMembers orders the body's members: directives first, then
// everything else by source position.
func collectMembers(body *hclsyntax.Body) ([]*member, error) {
	byName := make(map[string]*member)
	var diags hcl.Diagnostics

	for name, attr := range body.Attributes {
		byName[name] = &member{name: name, attr: attr, start: attr.SrcRange.Start.Byte}
	}
	for _, block := range body.Blocks {
		m, ok := byName[block.Type]
		switch {
		case !ok:
			byName[block.Type] = &member{name: block.Type, blocks: []*hclsyntax.Block{block}, start: block.Range().Start.Byte}
		case m.attr != nil:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate member",
				Detail:   fmt.Sprintf("Member %q is already set as an attribute at %s.", block.Type, m.attr.SrcRange),
				Subject:  block.DefRange().Ptr(),
			})
		default:
			m.blocks = append(m.blocks, block)
		}
	}
	for _, d := range directives {
		if m, ok := byName[d]; ok && m.attr == nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid directive",
				Detail:   fmt.Sprintf("%q must be set as an attribute.", d),
				Subject:  m.blocks[0].DefRange().Ptr(),
			})
		}
	}
	if diags.HasErrors() {
		return nil, diagError(diags...)
	}

	out := make([]*member, 0, len(byName))
	for _, d := range directives {
		if m, ok := byName[d]; ok {
			out = append(out, m)
			delete(byName, d)
		}
	}
	rest := make([]*member, 0, len(byName))
	for _, m := range byName {
		rest = append(rest, m)
	}
	slices.SortFunc(rest, func(a, b *member) int { return a.start - b.start })
	return append(out, rest...), nil
}

func classify(expr hcl.Expression) Value {
	if name, ok := exprrefs.SingleReference(expr); ok {
		return Value{Kind: Reference, Expr: expr, Name: name}
	}
	if len(expr.Variables()) == 0 {
		return Value{Kind: Literal, Expr: expr}
	}
	return Value{Kind: Expression, Expr: expr}
}

func diagError(diags ...*hcl.Diagnostic) error {
	return fmt.Errorf("invalid document: %w", hcl.Diagnostics(diags))
}

// FindFiles walks all given paths and returns a flat list of all .hcl files found.
func FindFiles(paths ...string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
