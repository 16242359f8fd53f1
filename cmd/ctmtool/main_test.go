package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/blockctm/internal/assets"
	"github.com/Faultbox/blockctm/internal/registry"
	"github.com/Faultbox/blockctm/pkg/ctm"
	"github.com/Faultbox/blockctm/pkg/cube"
)

func testSnapshot(t *testing.T) *registry.Snapshot {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))))

	m := assets.NewManager()
	m.AddRoot(fstest.MapFS{
		"blockstates/marble.json": {Data: []byte(`{
			"model": {"model": "block/cube"},
			"variants": {"variation=pillar": {"model": "block/pillar"}},
			"face": "marble",
			"overrides": {"up": "marble-top"}
		}`)},
		"faces/marble.json":         {Data: []byte(`{"textures": [{"type": "ctm", "textures": ["block/marble"]}]}`)},
		"faces/marble-top.json":     {Data: []byte(`{"textures": [{"textures": ["block/marble"]}]}`)},
		"models/block/cube.json":    {Data: []byte(`{"elements": [{"from": [0,0,0], "to": [16,16,16], "faces": {"up": {"texture": "block/marble"}}}]}`)},
		"models/block/pillar.json":  {Data: []byte(`{"elements": [{"from": [4,0,4], "to": [12,16,12], "faces": {"up": {"texture": "block/marble"}}}]}`)},
		"textures/block/marble.png": {Data: buf.Bytes()},
	})

	reg := registry.New(registry.Options{}, zaptest.NewLogger(t))
	require.NoError(t, reg.Reload(context.Background(), m))
	return reg.Snapshot()
}

func TestParseConnections(t *testing.T) {
	c, err := parseConnections("up, east,up_east")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())
	assert.True(t, c.IsConnected(ctm.ConnectionIndexFor(cube.Up, cube.East)))

	c, err = parseConnections("")
	require.NoError(t, err)
	assert.Zero(t, c)

	_, err = parseConnections("up,up_down")
	assert.Error(t, err)
}

func TestSelectState(t *testing.T) {
	snap := testSnapshot(t)

	sel, err := selectState(snap, "marble[variation=pillar]", "up,east,up_east")
	require.NoError(t, err)
	assert.Equal(t, "block/pillar", sel.Model)
	assert.Equal(t, uint64(1), sel.Generation)
	assert.Equal(t, "marble-top", sel.Faces["up"])
	assert.Equal(t, "marble", sel.Faces["north"])
	// South face: up is top, east is right.
	assert.Equal(t, []string{"top", "top_right", "right"}, sel.Connections["south"])

	sel, err = selectState(snap, "marble", "")
	require.NoError(t, err)
	assert.Equal(t, "block/cube", sel.Model)
	assert.Empty(t, sel.Connections)

	_, err = selectState(snap, "granite", "")
	assert.Error(t, err)
	_, err = selectState(snap, "marble[", "")
	assert.Error(t, err)
	_, err = selectState(snap, "marble", "sideways")
	assert.Error(t, err)
}
