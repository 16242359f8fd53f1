// Package ctm resolves connected-texture directions for block faces.
//
// A Dir is one of the eight directions around a face: four edges and four
// corners. Dirs are defined once, relative to the South face, and normalized
// to world facings for whichever face is being rendered. TopRight does not
// mean "connected at the top and at the right"; it means connected in the
// diagonal direction, which drives inner-corner rendering.
package ctm

import (
	"fmt"

	"github.com/Faultbox/blockctm/pkg/cube"
)

// Dir is a connected-texture direction relative to a face.
type Dir uint8

const (
	Top Dir = iota
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	TopLeft
)

// Dirs lists every Dir in order.
var Dirs = [8]Dir{Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left, TopLeft}

// canonicalNormal is the face every Dir entry is written against.
const canonicalNormal = cube.South

var dirTable = [8][]cube.Facing{
	Top:         {cube.Up},
	TopRight:    {cube.Up, cube.East},
	Right:       {cube.East},
	BottomRight: {cube.Down, cube.East},
	Bottom:      {cube.Down},
	BottomLeft:  {cube.Down, cube.West},
	Left:        {cube.West},
	TopLeft:     {cube.Up, cube.West},
}

var dirNames = [8]string{"top", "top_right", "right", "bottom_right", "bottom", "bottom_left", "left", "top_left"}

// Resolved facings and indices for every (dir, normal) pair.
var normalized, indices = buildDirTables()

func buildDirTables() (facings [8][6][]cube.Facing, idx [8][6]ConnectionIndex) {
	for _, d := range Dirs {
		for _, n := range cube.Facings {
			fs := normalize(d, n)
			facings[d][n] = fs
			idx[d][n] = ConnectionIndexFor(fs...)
		}
	}
	return facings, idx
}

// Facings returns the canonical facings of d, as seen on the South face.
func (d Dir) Facings() []cube.Facing {
	return append([]cube.Facing(nil), dirTable[d]...)
}

func (d Dir) String() string {
	if int(d) >= len(dirNames) {
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
	return dirNames[d]
}

// Normalize returns the world facings d stands for on a face with the given
// normal. The returned slice is a copy.
func Normalize(d Dir, normal cube.Facing) []cube.Facing {
	return append([]cube.Facing(nil), normalized[d][normal]...)
}

// Index returns the connection index d resolves to on a face with the given
// normal.
func Index(d Dir, normal cube.Facing) ConnectionIndex {
	return indices[d][normal]
}

func normalize(d Dir, normal cube.Facing) []cube.Facing {
	dirs := dirTable[d]
	ret := make([]cube.Facing, len(dirs))

	switch normal {
	case canonicalNormal:
		copy(ret, dirs)
	case canonicalNormal.Opposite():
		// Mirroring flips left/right and front/back but keeps up/down.
		for i, f := range dirs {
			if f.Axis() == cube.Y {
				ret[i] = f
			} else {
				ret[i] = f.Opposite()
			}
		}
	default:
		axis := rotationAxis(normal)
		for i, f := range dirs {
			ret[i] = rotate(f, axis)
		}
	}
	return ret
}

// rotationAxis picks the facing to turn the canonical entries around so they
// line up with normal. Horizontal normals turn around Y, with the sign picking
// handedness; vertical normals turn around the canonical face's sideways axis.
func rotationAxis(normal cube.Facing) cube.Facing {
	right, _ := canonicalNormal.RotateY()
	left, _ := canonicalNormal.RotateYCCW()
	if normal.Horizontal() {
		if normal == right {
			return cube.Up
		}
		return cube.Down
	}
	if normal == cube.Up {
		return left
	}
	return right
}

// Negative turns about X and Z are not the inverse of the positive turn
// tables, so they are spelled out per axis. Facings missing from a table are
// geometry faults.
var (
	negXTurn = map[cube.Facing]cube.Facing{
		cube.North: cube.North,
		cube.South: cube.South,
		cube.Up:    cube.South,
		cube.Down:  cube.North,
	}
	negZTurn = map[cube.Facing]cube.Facing{
		cube.East: cube.East,
		cube.West: cube.West,
		cube.Up:   cube.Down,
		cube.Down: cube.Up,
	}
)

// rotate turns f a quarter turn around axis. A combination with no defined
// result is a geometry fault and returns f unchanged.
func rotate(f, axis cube.Facing) cube.Facing {
	var (
		r  cube.Facing
		ok bool
	)
	if axis.AxisDirection() == cube.Positive {
		r, ok = f.RotateAround(axis.Axis())
	} else {
		switch axis.Axis() {
		case cube.X:
			r, ok = negXTurn[f]
		case cube.Y:
			r, ok = f.RotateYCCW()
		case cube.Z:
			r, ok = negZTurn[f]
		}
	}
	if !ok {
		return f
	}
	return r
}
