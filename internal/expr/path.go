package expr

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/dataexpr/internal/reactive"
	"github.com/specialistvlad/dataexpr/internal/record"
)

// segment is one step of a compiled path. Numeric segments keep both forms
// because "0" may index a slice or name a map key.
type segment struct {
	name     string
	index    int
	hasIndex bool
}

func (s segment) String() string {
	if s.hasIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.name
}

// lookup reads the segment from v, preferring the index form when v is
// indexable.
func (s segment) lookup(v any) (any, bool) {
	if s.hasIndex {
		if out, ok := record.Index(v, s.index); ok {
			return out, true
		}
	}
	return record.Field(v, s.name)
}

// parsePath reads path as an HCL traversal and falls back to dot splitting
// for inputs HCL rejects.
func parsePath(path string) ([]segment, error) {
	trav, diags := hclsyntax.ParseTraversalAbs([]byte(path), "", hcl.InitialPos)
	if !diags.HasErrors() {
		if segs, ok := fromTraversal(trav); ok {
			return trimThis(segs), nil
		}
	}
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	return trimThis(segs), nil
}

// trimThis drops a leading "this" so `this.a` and `a` address the same field.
func trimThis(segs []segment) []segment {
	if len(segs) > 1 && !segs[0].hasIndex && segs[0].name == ThisMarker {
		return segs[1:]
	}
	return segs
}

func fromTraversal(trav hcl.Traversal) ([]segment, bool) {
	segs := make([]segment, 0, len(trav))
	for _, step := range trav {
		switch st := step.(type) {
		case hcl.TraverseRoot:
			segs = append(segs, segment{name: st.Name})
		case hcl.TraverseAttr:
			segs = append(segs, segment{name: st.Name})
		case hcl.TraverseIndex:
			seg, ok := indexSegment(st.Key)
			if !ok {
				return nil, false
			}
			segs = append(segs, seg)
		default:
			return nil, false
		}
	}
	return segs, len(segs) > 0
}

func indexSegment(key cty.Value) (segment, bool) {
	if key.IsNull() || !key.IsKnown() {
		return segment{}, false
	}
	switch key.Type() {
	case cty.String:
		return segment{name: key.AsString()}, true
	case cty.Number:
		bf := key.AsBigFloat()
		if !bf.IsInt() {
			return segment{}, false
		}
		i, acc := bf.Int64()
		if acc != big.Exact || i < 0 {
			return segment{}, false
		}
		return segment{name: strconv.FormatInt(i, 10), index: int(i), hasIndex: true}, true
	}
	return segment{}, false
}

func splitPath(path string) ([]segment, error) {
	normalized := strings.ReplaceAll(path, "[", ".")
	normalized = strings.ReplaceAll(normalized, "]", "")

	parts := strings.Split(normalized, ".")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
		seg := segment{name: part}
		if i, err := strconv.Atoi(part); err == nil && i >= 0 {
			seg.index = i
			seg.hasIndex = true
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// canonicalPath renders path the way HCL would write it, or returns it
// unchanged when it is not a valid traversal.
// String keys that are valid identifiers are written as attributes, so
// `a["b"]` and `a.b` render the same.
func canonicalPath(path string) string {
	trav, diags := hclsyntax.ParseTraversalAbs([]byte(path), "", hcl.InitialPos)
	if diags.HasErrors() {
		return path
	}
	out := make(hcl.Traversal, 0, len(trav))
	for _, step := range trav {
		if st, ok := step.(hcl.TraverseIndex); ok && st.Key.IsKnown() && !st.Key.IsNull() &&
			st.Key.Type() == cty.String && hclsyntax.ValidIdentifier(st.Key.AsString()) {
			out = append(out, hcl.TraverseAttr{Name: st.Key.AsString()})
			continue
		}
		out = append(out, step)
	}
	return strings.TrimSpace(string(hclwrite.TokensForTraversal(out).Bytes()))
}

// walk follows segs from rec and returns nil as soon as a step is missing.
func walk(rec any, segs []segment) any {
	cur := rec
	for _, seg := range segs {
		cur = reactive.Unwrap(cur)
		if !record.IsDefined(cur) {
			return nil
		}
		next, ok := seg.lookup(cur)
		if !ok {
			return nil
		}
		cur = callThunk(reactive.Unwrap(next))
	}
	return cur
}

func callThunk(v any) any {
	if fn, ok := v.(func() any); ok && fn != nil {
		return fn()
	}
	return v
}
