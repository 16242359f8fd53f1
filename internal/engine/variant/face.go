package variant

import "github.com/Faultbox/blockctm/internal/engine/texture"

// TextureEntry is one connected-texture layer of a face: how it connects,
// which render layer it draws in, and the textures it samples.
type TextureEntry struct {
	Type     string        `json:"type"`
	Layer    texture.Layer `json:"layer"`
	Textures []string      `json:"textures"`
}

// Face describes the textures drawn on one side of a block.
type Face struct {
	Location string         `json:"-"`
	Textures []TextureEntry `json:"textures"`
}

// Layers returns the render layer mask of every entry on f.
func (f *Face) Layers() uint8 {
	var mask uint8
	for _, e := range f.Textures {
		mask |= e.Layer.Bit()
	}
	return mask
}

// appendTextures appends the texture locations of f not already in seen.
func (f *Face) appendTextures(list []string, seen map[string]bool) []string {
	for _, e := range f.Textures {
		for _, name := range e.Textures {
			if seen[name] {
				continue
			}
			seen[name] = true
			list = append(list, name)
		}
	}
	return list
}
