package variant

import (
	"github.com/Faultbox/blockctm/internal/blockstate"
	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/pkg/cube"
)

// Composite is the renderable a baked table hands to the renderer. It defers
// every choice to its table at draw time.
type Composite struct {
	t *Table
}

// Name returns the table name.
func (c *Composite) Name() string {
	return c.t.name
}

// Model returns the baked model to draw for state.
func (c *Composite) Model(state *blockstate.State) BakedModel {
	return c.t.SelectModel(state)
}

// Default returns the baked default model.
func (c *Composite) Default() BakedModel {
	return c.t.SelectModel(nil)
}

// Face returns the face descriptor drawn on side f.
func (c *Composite) Face(f cube.Facing) *Face {
	return c.t.SelectFace(f)
}

// CanRenderInLayer reports whether any face of the block draws in layer l.
func (c *Composite) CanRenderInLayer(l texture.Layer) bool {
	return c.t.CanRenderInLayer(l)
}

// AmbientOcclusion reports whether the default model asks for ambient
// occlusion.
func (c *Composite) AmbientOcclusion() bool {
	return c.t.AmbientOcclusion()
}

// Textures returns the textures the table's faces use.
func (c *Composite) Textures() []string {
	return c.t.Textures()
}

// Definition returns the definition the table was built from.
func (c *Composite) Definition() Definition {
	return c.t.Definition()
}
