// Package watcher reports changes to option files so a running binding can
// reload them.
//
// Rapid changes are coalesced: events arriving within the debounce window
// are delivered together as one batch, one event per path.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/specialistvlad/dataexpr/internal/ctxlog"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
)

// DefaultDebounce is the coalescing window used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a file system change, with every operation seen on Path during
// the debounce window merged into Op.
type Event struct {
	Path string
	Op   Op
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFilter restricts events under watched directories to files accepted
// by match. Explicitly added files always pass.
func WithFilter(match func(path string) bool) Option {
	return func(w *Watcher) { w.filter = match }
}

// Watcher watches option files and directories.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	debounce time.Duration
	filter   func(path string) bool

	files  map[string]bool // explicitly added files
	roots  []string        // explicitly added directories
	closed bool
}

// New creates a watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches path. A file is watched through its parent directory so that
// editors replacing the file by rename are still seen. A directory is
// watched recursively.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}

	if !info.IsDir() {
		if err := w.fsw.Add(filepath.Dir(absPath)); err != nil {
			return err
		}
		w.files[absPath] = true
		return nil
	}

	err = filepath.WalkDir(absPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.roots = append(w.roots, absPath)
	return nil
}

// Paths returns the explicitly added paths in lexical order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.files)+len(w.roots))
	for f := range w.files {
		out = append(out, f)
	}
	out = append(out, w.roots...)
	sort.Strings(out)
	return out
}

// Run delivers batches of relevant events to fn until ctx is cancelled or
// the watcher is closed. fn runs on the Run goroutine; batches are sorted by
// path.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, batch []Event)) error {
	logger := ctxlog.FromContext(ctx)

	pending := make(map[string]Op)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]Event, 0, len(pending))
		for p, op := range pending {
			batch = append(batch, Event{Path: p, Op: op})
		}
		clear(pending)
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		logger.Debug("Delivering file change batch.", "events", len(batch))
		fn(ctx, batch)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			op := convertOp(ev.Op)
			if op == 0 {
				continue
			}
			if op.Has(OpCreate) {
				w.watchNewDir(ev.Name)
			}
			if !w.relevant(ev.Name) {
				continue
			}
			logger.Debug("File change observed.", "path", ev.Name, "op", op)
			pending[ev.Name] |= op
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			logger.Warn("File watcher error.", "error", err)

		case <-timer.C:
			flush()
		}
	}
}

// Close stops the watcher. Run returns ErrWatcherClosed once the underlying
// channels are closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] {
		return true
	}
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return w.filter == nil || w.filter(path)
		}
	}
	return false
}

// watchNewDir starts watching a directory created under a watched root.
func (w *Watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			_ = w.fsw.Add(path)
			return
		}
	}
}

// convertOp converts fsnotify.Op to watcher.Op. Chmod alone is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
