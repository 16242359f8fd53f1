// Package cube provides the axis-aligned facings of a unit block.
package cube

import "fmt"

// Facing is one of the six axis-aligned unit directions of a block.
type Facing uint8

// Facings in ordinal order.
const (
	Down  Facing = iota // -Y
	Up                  // +Y
	North               // -Z
	South               // +Z
	West                // -X
	East                // +X
)

// Facings lists every facing in ordinal order.
var Facings = [6]Facing{Down, Up, North, South, West, East}

// Axis is one of the three block axes.
type Axis uint8

const (
	X Axis = iota
	Y
	Z
)

// AxisDirection is the sign of a facing along its axis.
type AxisDirection int8

const (
	Negative AxisDirection = -1
	Positive AxisDirection = 1
)

var facingNames = [6]string{"down", "up", "north", "south", "west", "east"}

var offsets = [6][3]int{
	Down:  {0, -1, 0},
	Up:    {0, 1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
}

// Valid reports whether f is one of the six facings.
func (f Facing) Valid() bool {
	return f <= East
}

// Opposite returns the facing pointing the other way.
func (f Facing) Opposite() Facing {
	return f ^ 1
}

// Axis returns the axis f lies on.
func (f Facing) Axis() Axis {
	switch f {
	case West, East:
		return X
	case Down, Up:
		return Y
	default:
		return Z
	}
}

// AxisDirection returns whether f points along or against its axis.
func (f Facing) AxisDirection() AxisDirection {
	switch f {
	case Up, South, East:
		return Positive
	default:
		return Negative
	}
}

// Offset returns the unit block offset of f.
func (f Facing) Offset() [3]int {
	return offsets[f]
}

// Horizontal reports whether f lies in the horizontal plane.
func (f Facing) Horizontal() bool {
	return f.Axis() != Y
}

// FromAxis returns the facing on axis a with direction d.
func FromAxis(a Axis, d AxisDirection) Facing {
	var f Facing
	switch a {
	case X:
		f = West
	case Y:
		f = Down
	default:
		f = North
	}
	if d == Positive {
		f = f.Opposite()
	}
	return f
}

func (f Facing) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Facing(%d)", uint8(f))
	}
	return facingNames[f]
}

// ParseFacing parses a lowercase facing name such as "north".
func ParseFacing(s string) (Facing, error) {
	for i, name := range facingNames {
		if name == s {
			return Facing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facing %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Facing) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid facing %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Facing) UnmarshalText(text []byte) error {
	parsed, err := ParseFacing(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}
