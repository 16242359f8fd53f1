package variant

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/blockctm/internal/blockstate"
	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/pkg/cube"
)

// Table resolves one block type's models. Load and Bake run once, before the
// table is published; the Select methods are safe for concurrent use.
type Table struct {
	name    string
	def     Definition
	deps    Dependencies
	mapper  blockstate.Mapper
	metrics tableMetrics

	loadMu sync.Mutex
	faces  atomic.Pointer[faceSet]

	bakeMu sync.Mutex
	baked  atomic.Pointer[bakedSet]

	// memo maps a state's property string to its arena index. Entries are
	// only ever added.
	memo sync.Map
}

// faceSet is the result of Load.
type faceSet struct {
	def       *Face
	overrides [len(cube.Facings)]*Face
	textures  []string
	layers    uint8
}

// bakedSet is the result of Bake. arena[0] is the default model.
type bakedSet struct {
	arena      []BakedModel
	alternates map[string]int
	layers     uint8
	ao         bool
	composite  *Composite
}

// New creates an unloaded table named name.
func New(name string, def Definition, deps Dependencies) *Table {
	mapper := deps.Mapper
	if mapper == nil {
		mapper = blockstate.DefaultMapper{}
	}
	return &Table{
		name:    name,
		def:     def,
		deps:    deps,
		mapper:  mapper,
		metrics: newTableMetrics(name),
	}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Definition returns the definition the table was created from.
func (t *Table) Definition() Definition {
	return t.def
}

// Load resolves the default face and every override. Only the first
// successful call has effect.
func (t *Table) Load() error {
	if t.faces.Load() != nil {
		return nil
	}
	t.loadMu.Lock()
	defer t.loadMu.Unlock()
	if t.faces.Load() != nil {
		return nil
	}

	set := &faceSet{}
	def, err := t.deps.Faces.GetOrCreateFace(t.def.Face)
	if err != nil {
		return &LoadError{Table: t.name, Stage: StageFace, Location: t.def.Face, Err: err}
	}
	set.def = def

	for _, f := range cube.Facings {
		loc, ok := t.def.Overrides[f]
		if !ok {
			continue
		}
		face, err := t.deps.Faces.GetOrCreateFace(loc)
		if err != nil {
			return &LoadError{Table: t.name, Stage: StageFace, Location: loc, Err: err}
		}
		set.overrides[f] = face
	}

	seen := make(map[string]bool)
	set.textures = set.def.appendTextures(nil, seen)
	set.layers = set.def.Layers()
	for _, face := range set.overrides {
		if face == nil {
			continue
		}
		set.textures = face.appendTextures(set.textures, seen)
		set.layers |= face.Layers()
	}

	t.faces.Store(set)
	return nil
}

// Textures returns every texture the resolved faces use, without
// duplicates, in the order first seen. It is empty before Load.
func (t *Table) Textures() []string {
	set := t.faces.Load()
	if set == nil {
		return nil
	}
	return append([]string(nil), set.textures...)
}

// Bake loads the table and bakes the default model and every alternate
// against sprites. Later calls return the first result without baking again.
func (t *Table) Bake(sprites texture.Lookup) (*Composite, error) {
	if b := t.baked.Load(); b != nil {
		return b.composite, nil
	}
	if err := t.Load(); err != nil {
		return nil, err
	}

	t.bakeMu.Lock()
	defer t.bakeMu.Unlock()
	if b := t.baked.Load(); b != nil {
		return b.composite, nil
	}

	keys := sortedKeys(t.def.Variants)
	b := &bakedSet{
		arena:      make([]BakedModel, 0, len(keys)+1),
		alternates: make(map[string]int, len(keys)),
		layers:     t.faces.Load().layers,
	}

	def, err := t.bake(t.def.Default, sprites)
	if err != nil {
		return nil, err
	}
	b.arena = append(b.arena, def)
	for _, key := range keys {
		m, err := t.bake(t.def.Variants[key], sprites)
		if err != nil {
			return nil, err
		}
		b.alternates[key] = len(b.arena)
		b.arena = append(b.arena, m)
	}

	b.ao = true
	if t.deps.Raw != nil {
		raw, err := t.deps.Raw.RawModelDefinition(t.def.Default.Model)
		if err != nil {
			return nil, &LoadError{Table: t.name, Stage: StageDefinition, Location: t.def.Default.Model, Err: err}
		}
		b.ao = ambientOcclusion(raw)
	}

	b.composite = &Composite{t: t}
	t.baked.Store(b)
	return b.composite, nil
}

func (t *Table) bake(v Variant, sprites texture.Lookup) (BakedModel, error) {
	m, err := t.deps.Models.ResolveModel(v.Model)
	if err != nil {
		return nil, &LoadError{Table: t.name, Stage: StageModel, Location: v.Model, Err: err}
	}
	baked, err := m.WithUVLock(v.UVLock).Bake(v.Rotation, sprites)
	if err != nil {
		return nil, &LoadError{Table: t.name, Stage: StageBake, Location: v.Model, Err: err}
	}
	t.metrics.bakes.Inc()
	return baked, nil
}

// ambientOcclusion reads an explicit boolean override from a raw model
// document. Anything else means enabled.
func ambientOcclusion(raw map[string]any) bool {
	if v, ok := raw["ambientocclusion"].(bool); ok {
		return v
	}
	return true
}

// SelectFace returns the override face for f, or the default face. It
// returns nil before Load.
func (t *Table) SelectFace(f cube.Facing) *Face {
	set := t.faces.Load()
	if set == nil {
		return nil
	}
	if f.Valid() && set.overrides[f] != nil {
		return set.overrides[f]
	}
	return set.def
}

// SelectModel returns the baked model for state: the alternate its stripped
// property string names, or the default. A nil state selects the default.
// It returns nil before Bake.
func (t *Table) SelectModel(state *blockstate.State) BakedModel {
	b := t.baked.Load()
	if b == nil {
		return nil
	}
	if state == nil || t.def.IgnoreStates {
		return b.arena[0]
	}

	key := t.mapper.PropertyString(state)
	if idx, ok := t.memo.Load(key); ok {
		t.metrics.hits.Inc()
		return b.arena[idx.(int)]
	}
	t.metrics.misses.Inc()

	idx, ok := b.alternates[VariantKey(key)]
	if !ok {
		t.metrics.fallbacks.Inc()
	}
	actual, _ := t.memo.LoadOrStore(key, idx)
	return b.arena[actual.(int)]
}

// CanRenderInLayer reports whether any resolved face draws in layer l. It
// is false before Bake.
func (t *Table) CanRenderInLayer(l texture.Layer) bool {
	b := t.baked.Load()
	if b == nil {
		return false
	}
	return b.layers&l.Bit() != 0
}

// AmbientOcclusion reports whether the default model enables ambient
// occlusion. It is true before Bake.
func (t *Table) AmbientOcclusion() bool {
	b := t.baked.Load()
	if b == nil {
		return true
	}
	return b.ao
}

// VariantKey strips a property string up to and including its first comma.
// Strings without a comma are returned whole.
func VariantKey(propertyString string) string {
	if i := strings.IndexByte(propertyString, ','); i >= 0 {
		return propertyString[i+1:]
	}
	return propertyString
}

func sortedKeys(m map[string]Variant) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
