package texture

import (
	"errors"
	"fmt"
	"sort"
)

// MissingName is the sprite every unknown texture resolves to. Stitch
// rejects images using it.
const MissingName = "missingno"

const missingSize = 16

// ErrAtlasFull is returned when the textures do not fit the maximum atlas size.
var ErrAtlasFull = errors.New("texture atlas full")

// Image describes a resolved texture: its location and pixel size.
type Image struct {
	Name   string
	Width  int
	Height int
}

// Sprite is a texture's region inside the atlas.
type Sprite struct {
	Name   string
	X, Y   int
	Width  int
	Height int
	// Normalized atlas coordinates of the region.
	U0, V0, U1, V1 float32
}

// InterpolateU maps u in [0,16] block units onto the sprite's region.
func (s Sprite) InterpolateU(u float32) float32 {
	return s.U0 + (s.U1-s.U0)*u/16
}

// InterpolateV maps v in [0,16] block units onto the sprite's region.
func (s Sprite) InterpolateV(v float32) float32 {
	return s.V0 + (s.V1-s.V0)*v/16
}

// Lookup resolves a texture location to its sprite. Lookups are total:
// unknown textures return the missing sprite.
type Lookup func(name string) Sprite

// Atlas is a stitched set of sprites.
type Atlas struct {
	size    int
	sprites map[string]Sprite
	order   []string
}

// Stitch packs images into a square power-of-two atlas no larger than
// maxSize. Duplicate names are packed once.
func Stitch(images []Image, maxSize int) (*Atlas, error) {
	uniq := make(map[string]Image, len(images)+1)
	uniq[MissingName] = Image{Name: MissingName, Width: missingSize, Height: missingSize}
	for _, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			return nil, fmt.Errorf("texture %s has invalid size %dx%d", img.Name, img.Width, img.Height)
		}
		if img.Name == MissingName {
			return nil, fmt.Errorf("texture name %s is reserved", MissingName)
		}
		uniq[img.Name] = img
	}

	list := make([]Image, 0, len(uniq))
	for _, img := range uniq {
		list = append(list, img)
	}
	// Tallest first keeps shelves dense; names break ties so layout is stable.
	sort.Slice(list, func(i, j int) bool {
		if list[i].Height != list[j].Height {
			return list[i].Height > list[j].Height
		}
		return list[i].Name < list[j].Name
	})

	for size := missingSize; size <= maxSize; size *= 2 {
		if sprites, ok := pack(list, size); ok {
			a := &Atlas{size: size, sprites: sprites}
			for _, img := range list {
				a.order = append(a.order, img.Name)
			}
			return a, nil
		}
	}
	return nil, fmt.Errorf("%d textures in %dx%d: %w", len(list), maxSize, maxSize, ErrAtlasFull)
}

// pack places images on horizontal shelves in a size x size square.
func pack(list []Image, size int) (map[string]Sprite, bool) {
	sprites := make(map[string]Sprite, len(list))
	x, y, shelf := 0, 0, 0
	for _, img := range list {
		if img.Width > size {
			return nil, false
		}
		if x+img.Width > size {
			x = 0
			y += shelf
			shelf = 0
		}
		if y+img.Height > size {
			return nil, false
		}
		fs := float32(size)
		sprites[img.Name] = Sprite{
			Name:   img.Name,
			X:      x,
			Y:      y,
			Width:  img.Width,
			Height: img.Height,
			U0:     float32(x) / fs,
			V0:     float32(y) / fs,
			U1:     float32(x+img.Width) / fs,
			V1:     float32(y+img.Height) / fs,
		}
		x += img.Width
		if img.Height > shelf {
			shelf = img.Height
		}
	}
	return sprites, true
}

// Size returns the atlas edge length in pixels.
func (a *Atlas) Size() int {
	return a.size
}

// Len returns the number of sprites including the missing sprite.
func (a *Atlas) Len() int {
	return len(a.sprites)
}

// Names returns sprite names in packing order.
func (a *Atlas) Names() []string {
	return append([]string(nil), a.order...)
}

// Sprite returns the sprite for name.
func (a *Atlas) Sprite(name string) (Sprite, bool) {
	s, ok := a.sprites[name]
	return s, ok
}

// Lookup returns the sprite for name, or the missing sprite.
func (a *Atlas) Lookup(name string) Sprite {
	if s, ok := a.sprites[name]; ok {
		return s
	}
	return a.sprites[MissingName]
}
