package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blockctm/pkg/cube"
)

// ErrInvalidRotation is returned for rotations that are not quarter turns.
var ErrInvalidRotation = errors.New("invalid model rotation")

// Rotation turns a model around the block centre, first about X and then
// about Y, in degrees. Only multiples of 90 are valid.
type Rotation struct {
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`
}

// Validate checks that both angles are quarter turns in [0,360).
func (r Rotation) Validate() error {
	for _, a := range [2]int{r.X, r.Y} {
		if a < 0 || a >= 360 || a%90 != 0 {
			return fmt.Errorf("%w: x=%d y=%d", ErrInvalidRotation, r.X, r.Y)
		}
	}
	return nil
}

// Identity reports whether r leaves the model unchanged.
func (r Rotation) Identity() bool {
	return r.X == 0 && r.Y == 0
}

// Matrix returns the transform of r in block units. Positive angles turn
// clockwise when looking from the positive end of the axis.
func (r Rotation) Matrix() mgl32.Mat4 {
	if r.Identity() {
		return mgl32.Ident4()
	}
	center := mgl32.Translate3D(0.5, 0.5, 0.5)
	back := mgl32.Translate3D(-0.5, -0.5, -0.5)
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(float32(-r.X)))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(float32(-r.Y)))
	return center.Mul4(ry).Mul4(rx).Mul4(back)
}

// RotateFacing returns where f points after r.
func (r Rotation) RotateFacing(f cube.Facing) cube.Facing {
	if r.Identity() {
		return f
	}
	return facingOf(mgl32.TransformNormal(facingVec(f), r.Matrix()))
}

func facingVec(f cube.Facing) mgl32.Vec3 {
	o := f.Offset()
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// facingOf snaps a direction to the facing of its largest component.
func facingOf(v mgl32.Vec3) cube.Facing {
	axis := cube.X
	best := abs32(v[0])
	if a := abs32(v[1]); a > best {
		axis, best = cube.Y, a
	}
	if a := abs32(v[2]); a > best {
		axis = cube.Z
	}
	dir := cube.Positive
	if v[axis] < 0 {
		dir = cube.Negative
	}
	return cube.FromAxis(axis, dir)
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
