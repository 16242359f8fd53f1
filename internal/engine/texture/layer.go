// Package texture provides render layers, texture metadata and the sprite
// atlas that models are baked against.
package texture

import "fmt"

// Layer is a render pass a block's geometry can take part in. Layers are
// ordinals into a byte-sized mask, so there are at most eight.
type Layer uint8

const (
	LayerSolid Layer = iota
	LayerCutoutMipped
	LayerCutout
	LayerTranslucent

	layerCount
)

// Layers lists every render layer in pass order.
var Layers = [layerCount]Layer{LayerSolid, LayerCutoutMipped, LayerCutout, LayerTranslucent}

var layerNames = [layerCount]string{"solid", "cutout_mipped", "cutout", "translucent"}

func (l Layer) String() string {
	if l >= layerCount {
		return fmt.Sprintf("Layer(%d)", uint8(l))
	}
	return layerNames[l]
}

// Bit returns the mask bit of l.
func (l Layer) Bit() uint8 {
	return 1 << l
}

// ParseLayer parses a layer name. The empty string is the solid layer.
func ParseLayer(s string) (Layer, error) {
	if s == "" {
		return LayerSolid, nil
	}
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render layer %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layer) UnmarshalText(text []byte) error {
	parsed, err := ParseLayer(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
