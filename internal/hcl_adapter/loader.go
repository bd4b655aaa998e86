package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/dataexpr/internal/config"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot is a struct used to decode every top-level attribute and block of
// an options file.
type fileRoot struct {
	Key          hcl.Expression `hcl:"key,optional"`
	ValueExpr    *string        `hcl:"value_expr,optional"`
	DisplayExpr  *string        `hcl:"display_expr,optional"`
	ValueLua     *string        `hcl:"value_lua,optional"`
	DisplayLua   *string        `hcl:"display_lua,optional"`
	ItemTemplate *string        `hcl:"item_template,optional"`
	Value        hcl.Expression `hcl:"value,optional"`
	ItemsList    hcl.Expression `hcl:"items,optional"`
	Items        []*ItemBlock   `hcl:"item,block"`
}

// ItemBlock is one `item { ... }` block; its attributes are the record fields.
type ItemBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses every .hcl file under paths and merges them, in order, into
// one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range hclFiles {
		m, err := l.loadFile(ctx, parser, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "items", len(model.Items))
	return model, nil
}

// LoadFile parses a single HCL file.
func (l *Loader) LoadFile(ctx context.Context, file string) (*config.Model, error) {
	return l.loadFile(ctx, hclparse.NewParser(), file)
}

// LoadBytes parses HCL source held in memory. filename is used in diagnostics.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile.Body, filename)
}

func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, file string) (*config.Model, error) {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}
	return l.decode(ctx, hclFile.Body, file)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, file string) (*config.Model, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}
	return l.translate(ctx, &root, file)
}

// translate turns a decoded file into the format-agnostic model.
func (l *Loader) translate(ctx context.Context, root *fileRoot, file string) (*config.Model, error) {
	m := &config.Model{
		ValueExpr:    root.ValueExpr,
		DisplayExpr:  root.DisplayExpr,
		ValueLua:     root.ValueLua,
		DisplayLua:   root.DisplayLua,
		ItemTemplate: root.ItemTemplate,
		Sources:      []string{file},
	}

	if isExprDefined(ctx, root.Key, config.KeyKey) {
		raw, err := evalNative(root.Key, config.KeyKey)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		if m.Key, err = config.KeyFromAny(raw); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	if isExprDefined(ctx, root.Value, config.KeyValue) {
		v, err := evalNative(root.Value, config.KeyValue)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		m.Value, m.HasValue = v, true
	}

	if isExprDefined(ctx, root.ItemsList, config.KeyItems) {
		raw, err := evalNative(root.ItemsList, config.KeyItems)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		if m.Items, err = config.ItemsFromAny(raw); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	for i, block := range root.Items {
		item, err := itemFromBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("in %s, item %d: %w", file, i, err)
		}
		m.Items = append(m.Items, item)
	}
	return m, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Files inside a directory are returned in lexical order.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
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

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFiles(path, fsutil.HasExtension(".hcl"))
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
