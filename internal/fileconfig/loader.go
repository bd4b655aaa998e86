package fileconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/dataexpr/internal/config"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/fsutil"
	"github.com/specialistvlad/dataexpr/internal/hcl_adapter"
)

// ErrUnsupportedFormat is returned for an explicitly named file whose
// extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// Loader dispatches each file to the decoder for its format.
type Loader struct {
	hcl *hcl_adapter.Loader
}

// NewLoader creates a loader for every supported format.
func NewLoader() *Loader {
	return &Loader{hcl: hcl_adapter.NewLoader()}
}

var _ config.Loader = (*Loader)(nil)

// Supported reports whether path has an extension the loader can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl", ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads every path in order and merges the results into one model.
// Missing paths are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := Files(paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	model := &config.Model{}
	for _, file := range files {
		m, err := l.LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	logger.Debug("Configuration loaded.", "files", len(files), "items", len(model.Items))
	return model, nil
}

// LoadFile decodes a single file.
func (l *Loader) LoadFile(ctx context.Context, file string) (*config.Model, error) {
	ctxlog.FromContext(ctx).Debug("Loading configuration file.", "file", file)

	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".hcl" {
		return l.hcl.LoadFile(ctx, file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	var doc map[string]any
	switch ext {
	case ".toml":
		doc, err = decodeTOML(data)
	case ".yaml", ".yml":
		doc, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	m, err := config.FromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", file, err)
	}
	m.Sources = []string{file}
	return m, nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return doc, nil
}

// Files expands paths into the list of supported files, in load order.
// Explicitly named files are kept whatever their extension so LoadFile can
// reject them.
func Files(paths ...string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		found, err := fsutil.FindFiles(path, Supported)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}
