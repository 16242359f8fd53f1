package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// DecodeTGAConfig reads the dimensions and color model of a TGA image from its
// header. Only true-color images (types 2 and 10) at 24 or 32 bpp are
// accepted, matching what the atlas can hold.
func DecodeTGAConfig(data []byte) (image.Config, error) {
	if len(data) < tgaHeaderSize {
		return image.Config{}, fmt.Errorf("TGA data too short")
	}

	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])

	if colorMapType != 0 {
		return image.Config{}, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return image.Config{}, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return image.Config{}, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}
	if width == 0 || height == 0 {
		return image.Config{}, fmt.Errorf("TGA has empty dimensions %dx%d", width, height)
	}

	return image.Config{ColorModel: color.RGBAModel, Width: width, Height: height}, nil
}
