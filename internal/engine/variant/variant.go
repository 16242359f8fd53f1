// Package variant selects which pre-baked model a block renders for a given
// state and face.
//
// A Table owns one block type's model definition. Load resolves the face
// descriptors it names, Bake resolves and bakes the default model and every
// alternate, and the Select methods answer per-frame queries without
// blocking or failing.
package variant

import (
	"github.com/Faultbox/blockctm/internal/blockstate"
	"github.com/Faultbox/blockctm/internal/engine/model"
	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/pkg/cube"
)

// Variant references one bakeable model: its location, rotation and whether
// textures stay locked to the world when rotated.
type Variant struct {
	model.Rotation

	Model  string `json:"model"`
	UVLock bool   `json:"uvlock,omitempty"`
}

// Definition is the immutable source of a Table.
type Definition struct {
	Default Variant `json:"model"`

	// Variants are alternates keyed by the stripped property string of the
	// states that select them.
	Variants map[string]Variant `json:"variants,omitempty"`

	Face      string                 `json:"face"`
	Overrides map[cube.Facing]string `json:"overrides,omitempty"`

	// IgnoreStates renders the default model for every state.
	IgnoreStates bool `json:"ignore_states,omitempty"`
}

// ModelLocations returns the default model location followed by every
// alternate's.
func (d *Definition) ModelLocations() []string {
	locs := make([]string, 0, len(d.Variants)+1)
	locs = append(locs, d.Default.Model)
	for _, key := range sortedKeys(d.Variants) {
		locs = append(locs, d.Variants[key].Model)
	}
	return locs
}

// VariantKeys returns the alternate keys, sorted.
func (d *Definition) VariantKeys() []string {
	return sortedKeys(d.Variants)
}

// BakedModel is a model baked against an atlas, ready for the renderer.
type BakedModel interface {
	Location() string
}

// Model is an unbaked model.
type Model interface {
	// WithUVLock returns the model with texture locking set to lock.
	WithUVLock(lock bool) Model
	Bake(rot model.Rotation, sprites texture.Lookup) (BakedModel, error)
}

// ModelResolver resolves model locations.
type ModelResolver interface {
	ResolveModel(location string) (Model, error)
}

// RawDefinitions returns the undecoded document of a model.
type RawDefinitions interface {
	RawModelDefinition(location string) (map[string]any, error)
}

// FaceRegistry resolves face descriptor locations, creating each descriptor
// once.
type FaceRegistry interface {
	GetOrCreateFace(location string) (*Face, error)
}

// Dependencies are the collaborators a Table resolves assets through.
type Dependencies struct {
	Models ModelResolver
	Faces  FaceRegistry

	// Raw is optional; without it ambient occlusion stays enabled.
	Raw RawDefinitions

	// Mapper derives lookup strings from states. Nil means
	// blockstate.DefaultMapper.
	Mapper blockstate.Mapper
}
