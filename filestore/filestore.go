package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/store"
)

// Dir binds a root directory to a set of stores.
type Dir struct {
	root        string
	stores      *store.Stores
	bindings    map[model.Kind]binding
	concurrency int
	logger      *zap.SugaredLogger

	// locks serialize loads and flushes of the same kind.
	locks map[model.Kind]*sync.Mutex

	writesMu   sync.Mutex
	lastWrites map[model.Kind]time.Time
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Dir) {
		d.logger = logger.OrNop(l)
	}
}

// WithConcurrency caps how many kinds are loaded at once. n <= 0 means no cap.
func WithConcurrency(n int) Option {
	return func(d *Dir) {
		d.concurrency = n
	}
}

// Open creates the kind directories under root when missing and returns a Dir
// over stores. Nothing is loaded until Load is called.
func Open(root string, stores *store.Stores, opts ...Option) (*Dir, error) {
	if root == "" {
		return nil, errors.NewInvalidArgumentError("store directory is empty")
	}
	if stores == nil {
		return nil, errors.NewInvalidArgumentError("stores are nil")
	}

	d := &Dir{
		root:   root,
		stores: stores,
		bindings: map[model.Kind]binding{
			model.KindRealm:            bind(stores.Realms),
			model.KindClientScope:      bind(stores.ClientScopes),
			model.KindRole:             bind(stores.Roles),
			model.KindIdentityProvider: bind(stores.IdentityProviders),
			model.KindEvent:            bind(stores.Events),
			model.KindAdminEvent:       bind(stores.AdminEvents),
		},
		locks:      make(map[model.Kind]*sync.Mutex, len(model.Kinds)),
		logger:     zap.NewNop().Sugar(),
		lastWrites: make(map[model.Kind]time.Time),
	}
	for _, kind := range model.Kinds {
		d.locks[kind] = new(sync.Mutex)
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, kind := range model.Kinds {
		if err := os.MkdirAll(d.KindDir(kind), am.DefaultDirPermissions); err != nil {
			return nil, errors.Wrapf(err, "create %s", d.KindDir(kind))
		}
	}
	return d, nil
}

// OpenConfig opens the directory named by cfg.
func OpenConfig(cfg *am.Config, stores *store.Stores, opts ...Option) (*Dir, error) {
	if cfg == nil {
		return nil, errors.NewInvalidArgumentError("config is nil")
	}
	if cfg.Store.Format != "" && cfg.Store.Format != am.FormatYAML {
		return nil, errors.NewInvalidArgumentError("unsupported store format %q", cfg.Store.Format)
	}
	opts = append([]Option{WithConcurrency(cfg.Store.LoadConcurrency)}, opts...)
	return Open(cfg.GetStoreDir(), stores, opts...)
}

// Root returns the root directory.
func (d *Dir) Root() string { return d.root }

// Stores returns the stores kept in sync with the directory.
func (d *Dir) Stores() *store.Stores { return d.stores }

// KindDir returns the directory holding files of kind.
func (d *Dir) KindDir(kind model.Kind) string {
	return filepath.Join(d.root, string(kind))
}

// Path returns the file an entity of kind with id is stored in.
func (d *Dir) Path(kind model.Kind, id string) string {
	return filepath.Join(d.KindDir(kind), fileName(id))
}

func (d *Dir) binding(kind model.Kind) (binding, error) {
	b, ok := d.bindings[kind]
	if !ok {
		return nil, errors.NewInvalidArgumentError("unknown entity kind %q", kind)
	}
	return b, nil
}

// Load reads every kind. A kind whose files fail to parse keeps its
// previous contents; the first such error is returned.
func (d *Dir) Load(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for _, kind := range model.Kinds {
		g.Go(func() error {
			return d.LoadKind(gctx, kind)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.logger.Infow("Loaded store directory",
		logger.FieldDir, d.root,
		logger.FieldTotalCount, total(d.stores.Counts()),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// LoadKind reloads one kind from its directory.
func (d *Dir) LoadKind(ctx context.Context, kind model.Kind) error {
	b, err := d.binding(kind)
	if err != nil {
		return err
	}

	mu := d.locks[kind]
	mu.Lock()
	defer mu.Unlock()

	n, err := b.load(ctx, d.KindDir(kind))
	if err != nil {
		return errors.Wrapf(err, "load %s", kind)
	}
	d.logger.Debugw("Loaded kind",
		logger.FieldKind, kind,
		logger.FieldCount, n)
	return nil
}

// Flush writes every updated entity and removes files of deleted ones.
func (d *Dir) Flush(ctx context.Context) error {
	for _, kind := range model.Kinds {
		if err := d.FlushKind(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// FlushKind writes one kind back to its directory.
func (d *Dir) FlushKind(ctx context.Context, kind model.Kind) error {
	b, err := d.binding(kind)
	if err != nil {
		return err
	}

	mu := d.locks[kind]
	mu.Lock()
	defer mu.Unlock()

	d.markOwnWrite(kind)
	written, removed, err := b.flush(ctx, d.KindDir(kind))
	d.markOwnWrite(kind)
	if err != nil {
		return errors.Wrapf(err, "flush %s", kind)
	}
	if written > 0 || removed > 0 {
		d.logger.Infow("Flushed kind",
			logger.FieldKind, kind,
			"written", written,
			"removed", removed)
	}
	return nil
}

func (d *Dir) markOwnWrite(kind model.Kind) {
	d.writesMu.Lock()
	defer d.writesMu.Unlock()
	d.lastWrites[kind] = time.Now()
}

// ownWrite reports whether kind was flushed within window.
func (d *Dir) ownWrite(kind model.Kind, window time.Duration) bool {
	d.writesMu.Lock()
	defer d.writesMu.Unlock()
	last, ok := d.lastWrites[kind]
	return ok && time.Since(last) < window
}

func total(counts map[model.Kind]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
