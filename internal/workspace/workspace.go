// Package workspace parses every source file of a project. Files are found
// by glob, parsed independently and in parallel, numbered, and reported with
// diagnostics. It is the external driver around the parser: the nesting
// depth guard and per-file timeouts live here, not in the parser.
package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/config"
	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/index"
	"github.com/malphas-lang/runefront/internal/parser"
)

// File is the outcome of parsing one source file.
type File struct {
	// Path is relative to the workspace root, slash separated.
	Path   string
	Source string
	AST    *ast.File
	Table  *index.Table
	Tokens int
	Depth  int
	Took   time.Duration
	Err    error
}

// OK reports whether the file parsed.
func (f *File) OK() bool { return f.Err == nil }

// Diagnostics converts the file's error, if any.
func (f *File) Diagnostics() []diag.Diagnostic {
	if f.Err == nil {
		return nil
	}
	return Diagnostics(f.Path, f.Err)
}

// Result collects the files of one check, sorted by path.
type Result struct {
	Files []*File
	Took  time.Duration
}

// Failed returns the files that did not parse.
func (r *Result) Failed() []*File {
	var out []*File
	for _, f := range r.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// Items counts the numbered items over all parsed files.
func (r *Result) Items() int {
	n := 0
	for _, f := range r.Files {
		if f.Table != nil {
			n += f.Table.Len()
		}
	}
	return n
}

// Bytes sums the source sizes.
func (r *Result) Bytes() uint64 {
	var n uint64
	for _, f := range r.Files {
		n += uint64(len(f.Source))
	}
	return n
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger. The parser's own tracing goes to the same
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

// WithMetrics records parse outcomes.
func WithMetrics(m *Metrics) Option {
	return func(w *Workspace) { w.metrics = m }
}

// Workspace parses the sources selected by a configuration.
type Workspace struct {
	cfg     *config.Config
	root    string
	logger  *slog.Logger
	metrics *Metrics
}

// New returns a workspace rooted at cfg.Sources.Root.
func New(cfg *config.Config, opts ...Option) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Sources.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve source root")
	}

	w := &Workspace{
		cfg:    cfg,
		root:   root,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the absolute source root.
func (w *Workspace) Root() string { return w.root }

// Matches reports whether rel, a slash-separated path relative to the root,
// is selected by the include and exclude patterns.
func (w *Workspace) Matches(rel string) bool {
	included := false
	for _, pattern := range w.cfg.Sources.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range w.cfg.Sources.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Discover lists the selected source files, sorted and relative to the root.
func (w *Workspace) Discover() ([]string, error) {
	fsys := os.DirFS(w.root)
	seen := make(map[string]struct{})

	for _, pattern := range w.cfg.Sources.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "glob %q", pattern)
		}
		for _, m := range matches {
			if w.Matches(m) {
				seen[m] = struct{}{}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	w.logger.Debug("sources discovered", "root", w.root, "files", len(paths))
	return paths, nil
}

// Check discovers and parses every source file. Parse failures are recorded
// per file and do not stop the other files; only discovery failures and
// cancellation return an error.
func (w *Workspace) Check(ctx context.Context) (*Result, error) {
	start := time.Now()

	paths, err := w.Discover()
	if err != nil {
		return nil, err
	}

	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Parser.Workers)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i] = w.ParseFile(gctx, rel)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, errors.Wrap(err, "check cancelled")
	}

	res := &Result{Files: files, Took: time.Since(start)}
	w.logger.Info("workspace checked",
		"files", len(files),
		"failed", len(res.Failed()),
		"items", res.Items(),
		"took", res.Took)
	return res, nil
}

// ParseFile reads and parses one file given relative to the root. Every
// failure is recorded in the returned File.
func (w *Workspace) ParseFile(ctx context.Context, rel string) *File {
	start := time.Now()
	f := &File{Path: filepath.ToSlash(rel)}
	defer func() {
		f.Took = time.Since(start)
		w.metrics.observe(f)
		if f.Err != nil {
			w.logger.Debug("file failed", "path", f.Path, "error", f.Err)
		}
	}()

	data, err := fs.ReadFile(os.DirFS(w.root), f.Path)
	if err != nil {
		f.Err = &UnreadableError{Path: f.Path, Err: err}
		return f
	}
	f.Source = string(data)

	opts := []parser.Option{parser.WithFilename(f.Path), parser.WithLogger(w.logger)}
	tokens, err := parser.Lex(f.Source, opts...)
	if err != nil {
		f.Err = err
		return f
	}
	f.Tokens = len(tokens)

	f.Depth = parser.NestingDepth(tokens)
	if limit := w.cfg.Parser.MaxDepth; limit > 0 && f.Depth > limit {
		f.Err = newDepthError(tokens, limit)
		return f
	}

	if timeout := w.cfg.Parser.Timeout.Duration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	file, err := parser.ParseContext(ctx, tokens, opts...)
	if err != nil {
		f.Err = err
		return f
	}
	f.AST = file
	f.Table = index.Assign(file)
	return f
}
