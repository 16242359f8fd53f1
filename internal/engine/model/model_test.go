package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/blockctm/internal/engine/texture"
	"github.com/Faultbox/blockctm/pkg/cube"
)

const cubeAll = `{
	"textures": {"all": "block/marble", "side": "#all"},
	"elements": [{
		"from": [0, 0, 0],
		"to": [16, 16, 16],
		"faces": {
			"down":  {"texture": "#all", "cullface": "down"},
			"up":    {"texture": "#all", "cullface": "up"},
			"north": {"texture": "#side", "cullface": "north"},
			"south": {"texture": "#side", "cullface": "south"},
			"west":  {"texture": "#side", "cullface": "west"},
			"east":  {"texture": "#side", "cullface": "east"}
		}
	}]
}`

func fullSprite(name string) texture.Sprite {
	return texture.Sprite{Name: name, Width: 16, Height: 16, U1: 1, V1: 1}
}

func TestParseCubeModel(t *testing.T) {
	m, err := ParseCubeModel([]byte(cubeAll))
	require.NoError(t, err)
	require.Len(t, m.Elements, 1)
	assert.Len(t, m.Elements[0].Faces, 6)
	assert.Nil(t, m.AmbientOcclusion)

	cull := m.Elements[0].Faces[cube.West].CullFace
	require.NotNil(t, cull)
	assert.Equal(t, cube.West, *cull)
	assert.Equal(t, []string{"block/marble"}, m.TextureNames())
}

func TestParseCubeModelRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `{"elements": [`},
		{"inverted", `{"elements": [{"from": [8,0,0], "to": [0,16,16], "faces": {}}]}`},
		{"oversized", `{"elements": [{"from": [0,0,0], "to": [48,16,16], "faces": {}}]}`},
		{"undefined variable", `{"elements": [{"from": [0,0,0], "to": [16,16,16],
			"faces": {"up": {"texture": "#top"}}}]}`},
		{"cycle", `{"textures": {"a": "#b", "b": "#a"}, "elements": [{"from": [0,0,0], "to": [16,16,16],
			"faces": {"up": {"texture": "#a"}}}]}`},
		{"bad facing", `{"elements": [{"from": [0,0,0], "to": [16,16,16],
			"faces": {"sideways": {"texture": "block/x"}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCubeModel([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestBakeFullCube(t *testing.T) {
	m, err := ParseCubeModel([]byte(cubeAll))
	require.NoError(t, err)

	b, err := m.Bake("block/marble", Rotation{}, false, fullSprite)
	require.NoError(t, err)
	assert.Equal(t, "block/marble", b.Location())
	assert.True(t, b.AmbientOcclusion)
	assert.Len(t, b.Mesh.Vertices, 24)
	assert.Len(t, b.Mesh.Indices, 36)
	require.Len(t, b.Mesh.Groups, 6)
	assert.Equal(t, [3]float32{0, 0, 0}, b.Mesh.Bounds.Min)
	assert.Equal(t, [3]float32{1, 1, 1}, b.Mesh.Bounds.Max)

	for i, g := range b.Mesh.Groups {
		assert.Equal(t, cube.Facings[i], g.Face)
		assert.Equal(t, "block/marble", g.Sprite)
		require.NotNil(t, g.CullFace)
		assert.Equal(t, g.Face, *g.CullFace)
		// Every vertex normal matches its group's facing.
		o := g.Face.Offset()
		for _, idx := range b.Mesh.Indices[g.StartIndex : g.StartIndex+g.IndexCount] {
			n := b.Mesh.Vertices[idx].Normal
			assert.Equal(t, [3]float32{float32(o[0]), float32(o[1]), float32(o[2])}, n)
		}
	}

	// North face: top-left corner maps to the sprite origin.
	north := b.Mesh.Groups[cube.North]
	v := b.Mesh.Vertices[b.Mesh.Indices[north.StartIndex]]
	assert.Equal(t, [3]float32{1, 1, 0}, v.Position)
	assert.Equal(t, [2]float32{0, 0}, v.TexCoord)
}

func TestBakeRotation(t *testing.T) {
	// West half of the block.
	doc := `{"ambientocclusion": false, "elements": [{"from": [0,0,0], "to": [8,16,16],
		"faces": {"west": {"texture": "block/x", "cullface": "west"}}}]}`
	m, err := ParseCubeModel([]byte(doc))
	require.NoError(t, err)

	b, err := m.Bake("block/x", Rotation{Y: 90}, false, fullSprite)
	require.NoError(t, err)
	assert.False(t, b.AmbientOcclusion)
	require.Len(t, b.Mesh.Groups, 1)
	assert.Equal(t, cube.North, b.Mesh.Groups[0].Face)
	assert.Equal(t, cube.North, *b.Mesh.Groups[0].CullFace)

	// The west quad now lies in the north plane.
	bounds := b.Mesh.Bounds
	assert.InDelta(t, 0, bounds.Min[0], 1e-5)
	assert.InDelta(t, 1, bounds.Max[0], 1e-5)
	assert.InDelta(t, 0, bounds.Min[2], 1e-5)
	assert.InDelta(t, 0, bounds.Max[2], 1e-5)
	assert.InDelta(t, 1, bounds.Max[1], 1e-5)
}

func TestBakeRotationBounds(t *testing.T) {
	// West half of the block, every side.
	doc := `{"elements": [{"from": [0,0,0], "to": [8,16,16], "faces": {
		"down": {"texture": "block/x"}, "up": {"texture": "block/x"},
		"north": {"texture": "block/x"}, "south": {"texture": "block/x"},
		"west": {"texture": "block/x"}, "east": {"texture": "block/x"}}}]}`
	m, err := ParseCubeModel([]byte(doc))
	require.NoError(t, err)

	b, err := m.Bake("block/x", Rotation{Y: 90}, false, fullSprite)
	require.NoError(t, err)
	require.Len(t, b.Mesh.Groups, 6)

	// Now the north half.
	bounds := b.Mesh.Bounds
	assert.InDelta(t, 0, bounds.Min[0], 1e-5)
	assert.InDelta(t, 1, bounds.Max[0], 1e-5)
	assert.InDelta(t, 0, bounds.Min[2], 1e-5)
	assert.InDelta(t, 0.5, bounds.Max[2], 1e-5)
}

func TestBakeUVLock(t *testing.T) {
	doc := `{"elements": [{"from": [0,0,0], "to": [16,16,16],
		"faces": {"west": {"texture": "block/x", "uv": [0, 0, 8, 8]}}}]}`
	m, err := ParseCubeModel([]byte(doc))
	require.NoError(t, err)

	free, err := m.Bake("block/x", Rotation{Y: 90}, false, fullSprite)
	require.NoError(t, err)
	locked, err := m.Bake("block/x", Rotation{Y: 90}, true, fullSprite)
	require.NoError(t, err)

	// Bottom-right corner.
	assert.InDelta(t, 0.5, free.Mesh.Vertices[2].TexCoord[0], 1e-5)
	assert.InDelta(t, 0.5, free.Mesh.Vertices[2].TexCoord[1], 1e-5)
	assert.InDelta(t, 1, locked.Mesh.Vertices[2].TexCoord[0], 1e-5)
	assert.InDelta(t, 1, locked.Mesh.Vertices[2].TexCoord[1], 1e-5)
	assert.True(t, locked.UVLock)
}

func TestBakeInvalidRotation(t *testing.T) {
	m, err := ParseCubeModel([]byte(cubeAll))
	require.NoError(t, err)
	for _, r := range []Rotation{{X: 45}, {Y: 360}, {X: -90}} {
		_, err := m.Bake("block/marble", r, false, fullSprite)
		assert.True(t, errors.Is(err, ErrInvalidRotation), "%+v", r)
	}
}

func TestRotateFacing(t *testing.T) {
	tests := []struct {
		rot  Rotation
		in   cube.Facing
		want cube.Facing
	}{
		{Rotation{}, cube.North, cube.North},
		{Rotation{Y: 90}, cube.North, cube.East},
		{Rotation{Y: 180}, cube.North, cube.South},
		{Rotation{Y: 270}, cube.North, cube.West},
		{Rotation{Y: 90}, cube.Up, cube.Up},
		{Rotation{X: 90}, cube.Up, cube.North},
		{Rotation{X: 90}, cube.North, cube.Down},
		{Rotation{X: 90, Y: 90}, cube.Up, cube.East},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rot.RotateFacing(tt.in), "%+v %s", tt.rot, tt.in)

		// Matches the quarter-turn tables.
		// A facing on the rotation axis has no entry and stays put.
		want := tt.in
		for i := 0; i < tt.rot.X/90; i++ {
			if next, ok := want.RotateAround(cube.X); ok {
				want = next
			}
		}
		for i := 0; i < tt.rot.Y/90; i++ {
			if next, ok := want.RotateAround(cube.Y); ok {
				want = next
			}
		}
		assert.Equal(t, want, tt.rot.RotateFacing(tt.in))
	}
}

func TestBakeEmptyModel(t *testing.T) {
	m := &CubeModel{}
	b, err := m.Bake("block/air", Rotation{}, false, fullSprite)
	require.NoError(t, err)
	assert.Empty(t, b.Mesh.Vertices)
	assert.Equal(t, Bounds{}, b.Mesh.Bounds)
}
