package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/zclload/internal/batch"
	"github.com/vvka-141/zclload/internal/checksum"
	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/dialect/dotdot"
	"github.com/vvka-141/zclload/internal/dialect/manifest"
	"github.com/vvka-141/zclload/internal/dialect/zclxml"
	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/registry"
	"github.com/vvka-141/zclload/internal/resolve"
	"github.com/vvka-141/zclload/internal/retry"
	"github.com/vvka-141/zclload/pkg/zclload"
	"golang.org/x/sync/errgroup"
)

// LoadService loads metadata files into a Store.
// Thread-Safety: concurrent operations on one instance are safe as far as
// the store allows; each operation uses its own transaction and caches.
type LoadService struct {
	store     zclload.Store
	fsys      filesystem.FileSystemProvider
	logger    zclload.Logger
	options   zclload.LoadOptions
	strategy  zclload.BackoffStrategy
	validator zclload.Validator
	observer  Observer
	sessionID func() string

	hash     func([]byte) string
	executor *retry.Executor
}

// Option configures a LoadService.
type Option func(*LoadService)

// WithLoadOptions sets the load policy. Zero fields take their defaults.
func WithLoadOptions(o zclload.LoadOptions) Option {
	return func(s *LoadService) { s.options = o }
}

// WithValidator sets the validator run on individually added files.
func WithValidator(v zclload.Validator) Option {
	return func(s *LoadService) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(s *LoadService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithRetryStrategy replaces the backoff used for transient store failures.
func WithRetryStrategy(strategy zclload.BackoffStrategy) Option {
	return func(s *LoadService) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithSessionIDs replaces the session id generator.
func WithSessionIDs(f func() string) Option {
	return func(s *LoadService) {
		if f != nil {
			s.sessionID = f
		}
	}
}

// NewLoadService creates a LoadService.
//
// Panics if store, fsys or logger is nil: those are wiring errors, not
// runtime conditions.
func NewLoadService(store zclload.Store, fsys filesystem.FileSystemProvider, logger zclload.Logger, opts ...Option) *LoadService {
	if store == nil {
		panic("store cannot be nil")
	}
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &LoadService{
		store:     store,
		fsys:      fsys,
		logger:    logger,
		validator: zclload.NoopValidator,
		observer:  nopObserver{},
		sessionID: uuid.NewString,
		strategy: retry.NewExponentialBackoff(zclload.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(zclload.DefaultRetryInitialDelay),
			retry.WithMaxDelay(zclload.DefaultRetryMaxDelay),
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.options.Workers == 0 {
		s.options.Workers = zclload.DefaultWorkers
	}
	if s.options.Strings == (zclload.StringPolicy{}) {
		s.options.Strings = zclload.DefaultStringPolicy()
	}
	s.hash = checksum.New().Func(s.options.IgnoreFormatting)
	s.executor = retry.NewExecutor(retry.NewStoreErrorClassifier(), s.strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.logger.Warn("Transient store failure, retry %d in %v: %v", attempt+1, delay, err)
		})
	return s
}

// topLevel is a read and parsed top-level file. It is built once, outside
// the transaction, and reused by every attempt.
type topLevel struct {
	path     string
	hash     string
	kind     zclload.PackageKind
	manifest *manifest.Manifest
	// library is the atomic catalog and globals of a dotdot library root.
	library *model.Graph
	files   []*subFile
}

type subFile struct {
	path    string
	content []byte
	hash    string
	kind    dialect.Kind
}

// LoadTopLevel loads a JSON or properties manifest, or a dotdot library
// root, together with every file it lists.
func (s *LoadService) LoadTopLevel(ctx context.Context, path string) (*zclload.LoadResult, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	top, err := s.readTopLevel(path)
	if err != nil {
		return nil, err
	}

	var result *zclload.LoadResult
	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		r, err := s.loadTopLevel(ctx, top)
		result = r
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	result.Duration = time.Since(start)
	s.logger.Info("✓ Loaded %s: %d of %d files parsed, %d unresolved references (session %s)",
		path, result.Parsed(), len(result.Files), result.Orphans, result.SessionID)
	return result, nil
}

func (s *LoadService) readTopLevel(path string) (*topLevel, error) {
	content, err := s.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	kind, err := dialect.Detect(path, content)
	if err != nil {
		return nil, err
	}

	t := &topLevel{path: path, hash: s.hash(content)}
	switch {
	case kind.IsManifest():
		m, err := manifest.Parse(path, content, s.fsys, s.logger)
		if err != nil {
			return nil, err
		}
		t.manifest = m
		t.kind = zclload.KindJSONManifest
		if kind == dialect.KindPropertiesManifest {
			t.kind = zclload.KindPropertiesManifest
		}
	case kind == dialect.KindDotdotXML:
		lib, err := dotdot.ParseLibrary(path, content, s.context())
		if err != nil {
			return nil, err
		}
		t.manifest = manifest.FromLibrary(path, lib.Includes, s.fsys, s.logger)
		t.library = lib.Graph
		t.kind = zclload.KindXMLLibrary
	default:
		return nil, fmt.Errorf("%s is neither a manifest nor a library file: %w", path, zclload.ErrUnknownDialect)
	}

	for _, p := range t.manifest.Files {
		f, err := s.readSubFile(p)
		if err != nil {
			return nil, err
		}
		t.files = append(t.files, f)
	}
	s.logger.Verbose("%s lists %d files", path, len(t.files))
	return t, nil
}

func (s *LoadService) readSubFile(path string) (*subFile, error) {
	content, err := s.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	kind, err := dialect.Detect(path, content)
	if err != nil {
		return nil, err
	}
	if kind.IsManifest() {
		return nil, fmt.Errorf("%s: a manifest cannot be loaded as a metadata file: %w", path, zclload.ErrUnknownDialect)
	}
	return &subFile{path: path, content: content, hash: s.hash(content), kind: kind}, nil
}

func (s *LoadService) loadTopLevel(ctx context.Context, t *topLevel) (*zclload.LoadResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Verbose("Rollback failed: %v", rbErr)
			}
		}
	}()

	m := t.manifest
	top, err := registry.Qualify(ctx, tx, registry.File{Path: t.path, Hash: t.hash, Kind: t.kind})
	if err != nil {
		return nil, err
	}
	s.observer.OnEvent(Event{Phase: PhaseQualify, Path: t.path, Status: top.Status})
	s.logger.Verbose("%s is %s (package %d)", t.path, top.Status, top.PackageID)

	var superseded []int64
	if top.Status == zclload.Changed {
		if superseded, err = registry.Supersede(ctx, tx, top.PackageID); err != nil {
			return nil, err
		}
	}
	if top.Status.NeedsParse() && m.HasVersionInfo() {
		if err := registry.RecordVersion(ctx, tx, top.PackageID, m.Version, m.Category, m.Description); err != nil {
			return nil, err
		}
	}
	if err := discriminator.Ensure(ctx, tx, top.PackageID, m.DataTypes); err != nil {
		return nil, err
	}
	if top.Status.NeedsParse() {
		if err := s.loadManifestExtras(ctx, tx, top.PackageID, m); err != nil {
			return nil, err
		}
	}

	p, err := s.qualifyFiles(ctx, tx, t, top, superseded)
	if err != nil {
		return nil, err
	}
	known := p.known()

	if err := s.parseFiles(ctx, p.files, m.Context(s.logger, s.options.Strings)); err != nil {
		return nil, err
	}

	loader := batch.NewLoader(discriminator.NewResolver(), s.logger, s.options.Workers)
	var pending []batch.Pending
	load := func(graph *model.Graph, packageID int64) error {
		pend, err := loader.Load(ctx, tx, graph, packageID, known)
		if err != nil {
			return err
		}
		pending = append(pending, pend...)
		return nil
	}
	if p.topParse && t.library != nil {
		if err := load(t.library, top.PackageID); err != nil {
			return nil, err
		}
	}
	ordered := p.loadOrder()
	for i, f := range ordered {
		if err := load(f.graph, f.q.PackageID); err != nil {
			return nil, err
		}
		s.observer.OnEvent(Event{Phase: PhaseLoad, Path: f.path, Status: f.q.Status, Done: i + 1, Total: len(ordered)})
	}

	skipped, err := loader.RunDeferred(ctx, tx, pending, known)
	if err != nil {
		return nil, err
	}
	s.observer.OnEvent(Event{Phase: PhaseDeferred, Done: len(pending) - skipped, Total: len(pending)})

	report, err := resolve.New(s.logger, 0).Resolve(ctx, tx, known)
	if err != nil {
		return nil, err
	}
	s.observer.OnEvent(Event{Phase: PhaseResolve})

	if m.SupportCustomZclDevice {
		if err := s.ensureCustomDevice(ctx, tx, top.PackageID); err != nil {
			return nil, err
		}
	}
	if err := checkAttributeAccessInterface(ctx, tx, m.AttributeAccessInterfaceAttributes, known); err != nil {
		return nil, err
	}

	sessionID := s.sessionID()
	for _, id := range known {
		if err := registry.AttachToSession(ctx, tx, sessionID, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	s.observer.OnEvent(Event{Phase: PhaseCommit, Path: t.path})

	return &zclload.LoadResult{
		PackageID: top.PackageID,
		SessionID: sessionID,
		Status:    top.Status,
		Files:     p.outcomes(),
		Orphans:   len(report.Orphans),
	}, nil
}

// parseFiles normalizes every file that needs it. Files are independent, so
// parsing fans out; the first error cancels the rest.
func (s *LoadService) parseFiles(ctx context.Context, files []*planned, dctx dialect.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.Workers)
	for _, f := range files {
		if !f.needsParse() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			graph, err := parseFile(f.subFile, dctx)
			if err != nil {
				return err
			}
			f.graph = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, f := range files {
		if f.graph != nil {
			s.observer.OnEvent(Event{Phase: PhaseParse, Path: f.path, Status: f.q.Status, Done: i + 1, Total: len(files)})
			s.logger.Verbose("Parsed %s: %s", f.path, f.graph.Stats())
		}
	}
	return nil
}

func parseFile(f *subFile, dctx dialect.Context) (*model.Graph, error) {
	switch f.kind {
	case dialect.KindZCLXML:
		return zclxml.Parse(f.path, f.content, dctx)
	case dialect.KindDotdotXML:
		return dotdot.ParseCluster(f.path, f.content, dctx)
	}
	return nil, fmt.Errorf("%s (%s): %w", f.path, f.kind, zclload.ErrUnknownDialect)
}

// isTypeFile reports whether a file only provides shared data types and
// therefore loads before the files that use them.
func isTypeFile(path string, g *model.Graph) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), "types.xml") || g.IsTypeFile()
}

func (s *LoadService) context() dialect.Context {
	ctx := dialect.DefaultContext(s.logger)
	ctx.Strings = s.options.Strings
	return ctx
}

func (s *LoadService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout > 0 {
		return context.WithTimeout(ctx, s.options.Timeout)
	}
	return context.WithCancel(ctx)
}
