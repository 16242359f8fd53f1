package cube

type turn struct {
	f  Facing
	ok bool
}

// Quarter-turn tables. A false entry marks a facing that lies on the rotation
// axis itself and therefore has no rotated counterpart.
var (
	rotY = [6]turn{
		North: {East, true},
		East:  {South, true},
		South: {West, true},
		West:  {North, true},
	}
	rotYCCW = [6]turn{
		North: {West, true},
		West:  {South, true},
		South: {East, true},
		East:  {North, true},
	}
	rotX = [6]turn{
		North: {Down, true},
		Down:  {South, true},
		South: {Up, true},
		Up:    {North, true},
	}
	rotZ = [6]turn{
		East: {Down, true},
		Down: {West, true},
		West: {Up, true},
		Up:   {East, true},
	}
)

// RotateY turns f a quarter turn clockwise around the Y axis, seen from above.
// ok is false for Up and Down.
func (f Facing) RotateY() (Facing, bool) {
	r := rotY[f]
	return r.f, r.ok
}

// RotateYCCW turns f a quarter turn counter-clockwise around the Y axis.
// ok is false for Up and Down.
func (f Facing) RotateYCCW() (Facing, bool) {
	r := rotYCCW[f]
	return r.f, r.ok
}

// RotateAround turns f a quarter turn around the positive end of axis a.
// ok is false when f lies on a.
func (f Facing) RotateAround(a Axis) (Facing, bool) {
	var r turn
	switch a {
	case X:
		r = rotX[f]
	case Y:
		r = rotY[f]
	case Z:
		r = rotZ[f]
	}
	return r.f, r.ok
}
