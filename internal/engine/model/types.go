// Package model provides the cube element model format and bakes it into
// renderer-ready meshes.
package model

import "github.com/Faultbox/blockctm/pkg/cube"

// Vertex represents a baked vertex with position, normal, and atlas texture
// coordinates. Positions are in block units, [0,1] for a full cube.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// TextureGroup is a run of indices drawn with one sprite, on one face.
type TextureGroup struct {
	Sprite     string
	Face       cube.Facing
	CullFace   *cube.Facing // nil when the quad is never culled
	StartIndex int32
	IndexCount int32
}

// Mesh holds the complete model mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Groups   []TextureGroup
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the model.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// CubeModel is a model made of axis-aligned boxes.
type CubeModel struct {
	AmbientOcclusion *bool             `json:"ambientocclusion,omitempty"`
	Textures         map[string]string `json:"textures,omitempty"`
	Elements         []Element         `json:"elements"`
}

// Element is one box of a CubeModel, in 1/16 block units.
type Element struct {
	From  [3]float32                  `json:"from"`
	To    [3]float32                  `json:"to"`
	Faces map[cube.Facing]ElementFace `json:"faces"`
}

// ElementFace describes how one side of an element is textured.
type ElementFace struct {
	// Texture is a texture location or a #variable from CubeModel.Textures.
	Texture  string       `json:"texture"`
	UV       *[4]float32  `json:"uv,omitempty"`
	CullFace *cube.Facing `json:"cullface,omitempty"`
}

// Baked is a CubeModel baked for one rotation against an atlas.
type Baked struct {
	location string

	Mesh             *Mesh
	AmbientOcclusion bool
	Rotation         Rotation
	UVLock           bool
}

// Location returns the location the model was baked from.
func (b *Baked) Location() string {
	return b.location
}
