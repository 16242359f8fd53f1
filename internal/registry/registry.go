// Package registry builds the variant tables of every block type and
// publishes them as one immutable snapshot.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/internal/engine/variant"
	"github.com/Faultbox/blockctm/internal/logger"
)

// DefaultAtlasMaxSize is the atlas edge limit used when Options leaves it
// unset.
const DefaultAtlasMaxSize = 4096

// Source provides the assets a reload reads.
type Source interface {
	variant.ModelResolver
	variant.FaceRegistry
	variant.RawDefinitions

	Blocks() ([]string, error)
	Definition(block string) (variant.Definition, error)
	ModelTextures(location string) ([]string, error)
	ResolveTexture(location string) (texture.Image, error)
}

// Options configures a Registry.
type Options struct {
	// Blocks restricts reloads to these block types. Empty means every block
	// the source lists.
	Blocks       []string
	AtlasMaxSize int
}

// Snapshot is one published generation of tables. It never changes.
type Snapshot struct {
	generation uint64
	models     map[string]*variant.Composite
	blocks     []string
	atlas      *texture.Atlas
}

// Model returns the composite of block.
func (s *Snapshot) Model(block string) (*variant.Composite, bool) {
	c, ok := s.models[block]
	return c, ok
}

// Blocks returns the loaded block types, sorted.
func (s *Snapshot) Blocks() []string {
	return append([]string(nil), s.blocks...)
}

// Generation returns the reload count that produced s.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Atlas returns the atlas every model in s was baked against.
func (s *Snapshot) Atlas() *texture.Atlas {
	return s.atlas
}

// Registry holds the current snapshot.
type Registry struct {
	opts Options
	log  *zap.Logger

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// New creates an empty registry. A nil log uses the global logger.
func New(opts Options, log *zap.Logger) *Registry {
	if opts.AtlasMaxSize <= 0 {
		opts.AtlasMaxSize = DefaultAtlasMaxSize
	}
	if log == nil {
		log = logger.Named("registry")
	}
	r := &Registry{opts: opts, log: log}
	r.current.Store(&Snapshot{models: map[string]*variant.Composite{}})
	return r
}

// Snapshot returns the current snapshot. Callers that need a consistent
// view across several lookups should hold on to it.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Model returns the composite of block from the current snapshot.
func (r *Registry) Model(block string) (*variant.Composite, bool) {
	return r.Snapshot().Model(block)
}

// Blocks returns the block types of the current snapshot.
func (r *Registry) Blocks() []string {
	return r.Snapshot().Blocks()
}

// Generation returns the generation of the current snapshot.
func (r *Registry) Generation() uint64 {
	return r.Snapshot().Generation()
}

// Atlas returns the atlas of the current snapshot.
func (r *Registry) Atlas() *texture.Atlas {
	return r.Snapshot().Atlas()
}

// pending is a block whose table loaded and awaits baking.
type pending struct {
	block string
	table *variant.Table
}

// Reload rebuilds every table from src and publishes them together. Block
// types that fail to load or bake are logged and left out; their errors are
// returned combined. Nothing is published when ctx is cancelled or the
// atlas cannot be stitched.
func (r *Registry) Reload(ctx context.Context, src Source) error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := time.Now()
	next, err := r.reload(ctx, src)
	reloadDuration.Observe(time.Since(start).Seconds())
	if next == nil {
		reloads.WithLabelValues("aborted").Inc()
		return err
	}

	r.current.Store(next)
	reloads.WithLabelValues("published").Inc()
	skippedBlocks.Add(float64(len(multierr.Errors(err))))
	generationGauge.Set(float64(next.generation))
	blocksGauge.Set(float64(len(next.blocks)))
	r.log.Info("reloaded",
		zap.Uint64("generation", next.generation),
		zap.Int("blocks", len(next.blocks)),
		zap.Int("skipped", len(multierr.Errors(err))),
		zap.Int("sprites", next.atlas.Len()),
		zap.Int("atlas_size", next.atlas.Size()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}

// reload builds the next snapshot. It returns nil when nothing may be
// published.
func (r *Registry) reload(ctx context.Context, src Source) (*Snapshot, error) {
	blocks := r.opts.Blocks
	if len(blocks) == 0 {
		var err error
		if blocks, err = src.Blocks(); err != nil {
			return nil, fmt.Errorf("listing blocks: %w", err)
		}
	}

	var (
		errs    error
		loaded  []pending
		images  = make(map[string]texture.Image)
		skipped = func(block string, err error) {
			r.log.Warn("skipping block", zap.String("block", block), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("block %s: %w", block, err))
		}
	)

	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tbl, err := r.load(block, src, images)
		if err != nil {
			skipped(block, err)
			continue
		}
		loaded = append(loaded, pending{block: block, table: tbl})
	}

	list := make([]texture.Image, 0, len(images))
	for _, img := range images {
		list = append(list, img)
	}
	atlas, err := texture.Stitch(list, r.opts.AtlasMaxSize)
	if err != nil {
		return nil, multierr.Append(errs, fmt.Errorf("stitching atlas: %w", err))
	}

	next := &Snapshot{
		generation: r.Generation() + 1,
		models:     make(map[string]*variant.Composite, len(loaded)),
		atlas:      atlas,
	}
	for _, p := range loaded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := p.table.Bake(atlas.Lookup)
		if err != nil {
			skipped(p.block, err)
			continue
		}
		next.models[p.block] = c
		next.blocks = append(next.blocks, p.block)
	}
	sort.Strings(next.blocks)
	return next, errs
}

// load builds and loads the table of block, resolving every texture its
// faces and models use into images.
func (r *Registry) load(block string, src Source, images map[string]texture.Image) (*variant.Table, error) {
	def, err := src.Definition(block)
	if err != nil {
		return nil, err
	}
	tbl := variant.New(block, def, variant.Dependencies{Models: src, Faces: src, Raw: src})
	if err := tbl.Load(); err != nil {
		return nil, err
	}

	names := tbl.Textures()
	for _, loc := range def.ModelLocations() {
		modelTextures, err := src.ModelTextures(loc)
		if err != nil {
			return nil, &variant.LoadError{Table: block, Stage: variant.StageModel, Location: loc, Err: err}
		}
		names = append(names, modelTextures...)
	}

	resolved := make(map[string]texture.Image, len(names))
	for _, name := range names {
		if name == texture.MissingName {
			return nil, fmt.Errorf("texture %s: name is reserved", name)
		}
		if _, ok := images[name]; ok {
			continue
		}
		img, err := src.ResolveTexture(name)
		if err != nil {
			return nil, fmt.Errorf("texture %s: %w", name, err)
		}
		resolved[name] = img
	}
	// Only blocks that loaded completely contribute sprites.
	for name, img := range resolved {
		images[name] = img
	}
	return tbl, nil
}
