package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/pkg/cube"
)

// maxTextureDepth bounds #variable chains so cycles fail instead of looping.
const maxTextureDepth = 8

// ParseCubeModel decodes and validates a cube model document.
func ParseCubeModel(data []byte) (*CubeModel, error) {
	var m CubeModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding cube model: %w", err)
	}
	for i, e := range m.Elements {
		for axis := 0; axis < 3; axis++ {
			if e.From[axis] > e.To[axis] {
				return nil, fmt.Errorf("element %d: from exceeds to on axis %d", i, axis)
			}
			if e.From[axis] < -16 || e.To[axis] > 32 {
				return nil, fmt.Errorf("element %d: outside [-16,32] on axis %d", i, axis)
			}
		}
		for f, face := range e.Faces {
			if _, err := m.ResolveTexture(face.Texture); err != nil {
				return nil, fmt.Errorf("element %d face %s: %w", i, f, err)
			}
		}
	}
	return &m, nil
}

// ResolveTexture follows #variable references to a texture location.
func (m *CubeModel) ResolveTexture(ref string) (string, error) {
	for depth := 0; depth < maxTextureDepth; depth++ {
		if !strings.HasPrefix(ref, "#") {
			if ref == "" {
				return "", fmt.Errorf("empty texture reference")
			}
			return ref, nil
		}
		next, ok := m.Textures[ref[1:]]
		if !ok {
			return "", fmt.Errorf("undefined texture variable %s", ref)
		}
		ref = next
	}
	return "", fmt.Errorf("texture variable chain too deep at %s", ref)
}

// TextureNames returns every texture location the model's faces use.
func (m *CubeModel) TextureNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range m.Elements {
		for _, f := range cube.Facings {
			face, ok := e.Faces[f]
			if !ok {
				continue
			}
			name, err := m.ResolveTexture(face.Texture)
			if err != nil || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Bake builds a mesh for m turned by rot, with textures from sprites. With
// uvLock the texture stays aligned to the world instead of turning with the
// model.
func (m *CubeModel) Bake(location string, rot Rotation, uvLock bool, sprites texture.Lookup) (*Baked, error) {
	if err := rot.Validate(); err != nil {
		return nil, err
	}
	mat := rot.Matrix()

	mesh := &Mesh{
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	for _, e := range m.Elements {
		// Fixed facing order keeps index layout deterministic.
		for _, f := range cube.Facings {
			face, ok := e.Faces[f]
			if !ok {
				continue
			}
			name, err := m.ResolveTexture(face.Texture)
			if err != nil {
				return nil, fmt.Errorf("baking %s: %w", location, err)
			}
			sprite := sprites(name)

			corners := faceCorners(f, e.From, e.To)
			uvs := faceUVs(f, corners, face.UV)
			worldFace := rot.RotateFacing(f)
			normal := facingVec(worldFace)

			base := uint32(len(mesh.Vertices))
			for i, c := range corners {
				p := mgl32.TransformCoordinate(mgl32.Vec3{c[0] / 16, c[1] / 16, c[2] / 16}, mat)
				uv := uvs[i]
				if uvLock {
					uv = projectUV(worldFace, [3]float32{p[0] * 16, p[1] * 16, p[2] * 16})
				}
				pos := [3]float32{p[0], p[1], p[2]}
				updateBounds(&mesh.Bounds, pos)
				mesh.Vertices = append(mesh.Vertices, Vertex{
					Position: pos,
					Normal:   [3]float32{normal[0], normal[1], normal[2]},
					TexCoord: [2]float32{sprite.InterpolateU(uv[0]), sprite.InterpolateV(uv[1])},
				})
			}

			group := TextureGroup{
				Sprite:     sprite.Name,
				Face:       worldFace,
				StartIndex: int32(len(mesh.Indices)),
				IndexCount: 6,
			}
			if face.CullFace != nil {
				cull := rot.RotateFacing(*face.CullFace)
				group.CullFace = &cull
			}
			mesh.Groups = append(mesh.Groups, group)
			mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}

	if len(mesh.Vertices) == 0 {
		mesh.Bounds = Bounds{}
	}

	ao := true
	if m.AmbientOcclusion != nil {
		ao = *m.AmbientOcclusion
	}
	return &Baked{
		location:         location,
		Mesh:             mesh,
		AmbientOcclusion: ao,
		Rotation:         rot,
		UVLock:           uvLock,
	}, nil
}

// faceCorners returns the face's corners as seen from outside, in the order
// top-left, bottom-left, bottom-right, top-right. Units are 1/16 block.
func faceCorners(f cube.Facing, from, to [3]float32) [4][3]float32 {
	x0, y0, z0 := from[0], from[1], from[2]
	x1, y1, z1 := to[0], to[1], to[2]
	switch f {
	case cube.North:
		return [4][3]float32{{x1, y1, z0}, {x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}}
	case cube.South:
		return [4][3]float32{{x0, y1, z1}, {x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}}
	case cube.West:
		return [4][3]float32{{x0, y1, z0}, {x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}}
	case cube.East:
		return [4][3]float32{{x1, y1, z1}, {x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}}
	case cube.Up:
		return [4][3]float32{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}
	default:
		return [4][3]float32{{x0, y0, z1}, {x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}}
	}
}

// faceUVs assigns explicit [u0,v0,u1,v1] coordinates to the corners, or
// projects them from the element's position when none are given.
func faceUVs(f cube.Facing, corners [4][3]float32, uv *[4]float32) [4][2]float32 {
	if uv == nil {
		var out [4][2]float32
		for i, c := range corners {
			out[i] = projectUV(f, c)
		}
		return out
	}
	u0, v0, u1, v1 := uv[0], uv[1], uv[2], uv[3]
	return [4][2]float32{{u0, v0}, {u0, v1}, {u1, v1}, {u1, v0}}
}

// projectUV maps a point on a face with the given facing to texture space,
// in 1/16 block units.
func projectUV(f cube.Facing, p [3]float32) [2]float32 {
	x, y, z := p[0], p[1], p[2]
	switch f {
	case cube.North:
		return [2]float32{16 - x, 16 - y}
	case cube.South:
		return [2]float32{x, 16 - y}
	case cube.West:
		return [2]float32{z, 16 - y}
	case cube.East:
		return [2]float32{16 - z, 16 - y}
	case cube.Up:
		return [2]float32{x, z}
	default:
		return [2]float32{x, 16 - z}
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
