package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/exprscan"
	"github.com/specialistvlad/resprobe/internal/fsutil"
	"github.com/specialistvlad/resprobe/internal/registry"
)

// Extension is the file extension of module scripts.
const Extension = ".hcl"

// ErrNotFound is returned when no search root contains the module.
var ErrNotFound = errors.New("module script not found")

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "import", LabelNames: []string{"name"}},
		{Type: "let", LabelNames: []string{"name"}},
		{Type: "do", LabelNames: []string{"label"}},
	},
}

var functionSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "function", LabelNames: []string{"name"}},
	},
}

// importBody is the body of an import block.
type importBody struct {
	As *string `hcl:"as,optional"`
}

var letSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "value", Required: true}},
}

// Locate returns the files that make up module name in the first search
// root that has it: "a.b" is "<root>/a/b.hcl", else every .hcl file
// directly inside "<root>/a/b/".
func Locate(name string, searchPath []string) ([]string, error) {
	if !registry.ValidName(name) {
		return nil, fmt.Errorf("invalid module name %q", name)
	}
	rel := filepath.Join(strings.Split(name, ".")...)

	for _, root := range searchPath {
		file := filepath.Join(root, rel+Extension)
		if fsutil.IsFile(file) {
			return []string{file}, nil
		}
		dir := filepath.Join(root, rel)
		if fsutil.IsDir(dir) {
			files, err := fsutil.ListFilesByExtension(dir, Extension)
			if err != nil {
				return nil, fmt.Errorf("error reading package %s: %w", dir, err)
			}
			if len(files) > 0 {
				return files, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load locates and parses module name.
func Load(ctx context.Context, name string, searchPath []string) (*Module, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := Locate(name, searchPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Module script located.", "module", name, "files", files)

	mod, err := Parse(name, files...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Module script parsed.", "module", name, "imports", mod.Imports(), "namespaces", mod.expressions.Namespaces())
	return mod, nil
}

// Parse parses the given files as the body of module name.
func Parse(name string, files ...string) (*Module, error) {
	parser := hclparse.NewParser()
	mod := &Module{
		Name:        name,
		Files:       files,
		expressions: exprscan.NewContainer(),
	}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse module file %s: %w", file, diags)
		}
		if err := mod.addBody(hclFile.Body); err != nil {
			return nil, fmt.Errorf("failed to decode module file %s: %w", file, err)
		}
	}
	return mod, nil
}

// ParseSource parses in-memory source as module name. The filename is only
// used in diagnostics.
func ParseSource(name, filename string, src []byte) (*Module, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse module source %s: %w", filename, diags)
	}
	mod := &Module{Name: name, Files: []string{filename}, expressions: exprscan.NewContainer()}
	if err := mod.addBody(hclFile.Body); err != nil {
		return nil, fmt.Errorf("failed to decode module source %s: %w", filename, err)
	}
	return mod, nil
}

func (m *Module) addBody(body hcl.Body) error {
	fnContent, remain, diags := body.PartialContent(functionSchema)
	if diags.HasErrors() {
		return diags
	}
	for _, block := range fnContent.Blocks {
		attrs, attrDiags := block.Body.JustAttributes()
		if attrDiags.HasErrors() {
			return attrDiags
		}
		for _, attr := range attrs {
			m.expressions.Add(attr.Expr)
		}
	}
	m.bodies = append(m.bodies, body)

	content, diags := remain.Content(rootSchema)
	if diags.HasErrors() {
		return diags
	}

	for _, block := range content.Blocks {
		stmt, err := decodeStatement(block)
		if err != nil {
			return err
		}
		for _, attr := range stmt.Attrs {
			m.expressions.Add(attr.Expr)
		}
		m.Statements = append(m.Statements, stmt)
	}
	return nil
}

func decodeStatement(block *hcl.Block) (*Statement, error) {
	stmt := &Statement{Name: block.Labels[0], Range: block.DefRange}

	switch block.Type {
	case "import":
		stmt.Kind = KindImport
		if !registry.ValidName(stmt.Name) {
			return nil, fmt.Errorf("%s: invalid module name %q", block.DefRange, stmt.Name)
		}
		var body importBody
		if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
			return nil, diags
		}
		stmt.Alias = defaultAlias(stmt.Name)
		if body.As != nil {
			stmt.Alias = *body.As
		}
		if !hclsyntax.ValidIdentifier(stmt.Alias) {
			return nil, fmt.Errorf("%s: import alias %q is not a valid identifier", block.DefRange, stmt.Alias)
		}

	case "let":
		stmt.Kind = KindLet
		if !hclsyntax.ValidIdentifier(stmt.Name) {
			return nil, fmt.Errorf("%s: let name %q is not a valid identifier", block.DefRange, stmt.Name)
		}
		content, diags := block.Body.Content(letSchema)
		if diags.HasErrors() {
			return nil, diags
		}
		stmt.Attrs = []*hcl.Attribute{content.Attributes["value"]}

	case "do":
		stmt.Kind = KindDo
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		for _, attr := range attrs {
			stmt.Attrs = append(stmt.Attrs, attr)
		}
		sort.Slice(stmt.Attrs, func(i, j int) bool {
			return stmt.Attrs[i].Range.Start.Byte < stmt.Attrs[j].Range.Start.Byte
		})
	}

	return stmt, nil
}

// defaultAlias binds "a.b.c" as "c".
func defaultAlias(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}

// ModuleNames lists the module names available under root, sorted. Every
// .hcl file is a module, and so is every directory holding .hcl files.
func ModuleNames(root string) ([]string, error) {
	files, err := fsutil.FindFilesByExtension(root, Extension)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		asFile := strings.Join(parts, ".")
		asFile = strings.TrimSuffix(asFile, Extension)
		if registry.ValidName(asFile) {
			seen[asFile] = struct{}{}
		}
		if len(parts) > 1 {
			pkg := strings.Join(parts[:len(parts)-1], ".")
			if registry.ValidName(pkg) {
				seen[pkg] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
