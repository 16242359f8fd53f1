package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/Faultbox/blockctm/internal/engine/model"
	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/internal/engine/variant"
)

const (
	blockstateDir = "blockstates"
	modelDir      = "models"
	faceDir       = "faces"
	textureDir    = "textures"
)

// textureExts are tried in order when resolving a texture location.
var textureExts = []string{".png", ".bmp", ".tga"}

// Definition reads and validates the definition of block.
func (m *Manager) Definition(block string) (variant.Definition, error) {
	var def variant.Definition
	p := path.Join(blockstateDir, block+".json")
	data, err := m.Load(p)
	if err != nil {
		return def, err
	}
	if err := decodeValidated(p, data, blockstateDoc, &def); err != nil {
		return def, err
	}
	return def, nil
}

// Blocks lists every block with a definition in any root, sorted.
func (m *Manager) Blocks() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, root := range m.roots {
		for _, pattern := range []string{"*.json", "*.json" + compressedExt} {
			matches, err := fs.Glob(root, path.Join(blockstateDir, pattern))
			if err != nil {
				return nil, fmt.Errorf("listing blockstates: %w", err)
			}
			for _, match := range matches {
				name := strings.TrimSuffix(path.Base(match), compressedExt)
				seen[strings.TrimSuffix(name, ".json")] = true
			}
		}
	}

	blocks := make([]string, 0, len(seen))
	for b := range seen {
		blocks = append(blocks, b)
	}
	sort.Strings(blocks)
	return blocks, nil
}

// GetOrCreateFace implements variant.FaceRegistry. Each face is read once
// and shared until Reset.
func (m *Manager) GetOrCreateFace(location string) (*variant.Face, error) {
	m.facesMu.Lock()
	defer m.facesMu.Unlock()
	if f, ok := m.faces[location]; ok {
		return f, nil
	}

	p := path.Join(faceDir, location+".json")
	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}
	f := &variant.Face{}
	if err := decodeValidated(p, data, faceDoc, f); err != nil {
		return nil, err
	}
	f.Location = location
	m.faces[location] = f
	return f, nil
}

func (m *Manager) loadCubeModel(location string) (*model.CubeModel, error) {
	p := path.Join(modelDir, location+".json")
	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}
	cm, err := model.ParseCubeModel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, p, err)
	}
	return cm, nil
}

// ResolveModel implements variant.ModelResolver.
func (m *Manager) ResolveModel(location string) (variant.Model, error) {
	cm, err := m.loadCubeModel(location)
	if err != nil {
		return nil, err
	}
	return cubeModel{location: location, cm: cm}, nil
}

// ModelTextures returns the texture locations a model samples.
func (m *Manager) ModelTextures(location string) ([]string, error) {
	cm, err := m.loadCubeModel(location)
	if err != nil {
		return nil, err
	}
	return cm.TextureNames(), nil
}

// RawModelDefinition implements variant.RawDefinitions.
func (m *Manager) RawModelDefinition(location string) (map[string]any, error) {
	p := path.Join(modelDir, location+".json")
	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, p, err)
	}
	return doc, nil
}

// ResolveTexture reads the pixel size of a texture.
func (m *Manager) ResolveTexture(location string) (texture.Image, error) {
	for _, ext := range textureExts {
		p := path.Join(textureDir, location+ext)
		data, err := m.Load(p)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return texture.Image{}, err
		}

		var cfg image.Config
		if ext == ".tga" {
			cfg, err = texture.DecodeTGAConfig(data)
		} else {
			cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
		}
		if err != nil {
			return texture.Image{}, fmt.Errorf("%w: %s: %v", ErrMalformed, p, err)
		}
		return texture.Image{Name: location, Width: cfg.Width, Height: cfg.Height}, nil
	}
	return texture.Image{}, fmt.Errorf("%w: texture %s", ErrNotFound, location)
}

// cubeModel adapts a parsed cube model to variant.Model.
type cubeModel struct {
	location string
	cm       *model.CubeModel
	uvLock   bool
}

func (c cubeModel) WithUVLock(lock bool) variant.Model {
	c.uvLock = lock
	return c
}

func (c cubeModel) Bake(rot model.Rotation, sprites texture.Lookup) (variant.BakedModel, error) {
	b, err := c.cm.Bake(c.location, rot, c.uvLock, sprites)
	if err != nil {
		return nil, err
	}
	return b, nil
}
