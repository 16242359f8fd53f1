package ctm

import (
	"math/bits"

	"github.com/Faultbox/blockctm/pkg/cube"
)

// Connections records which neighbours of a block match it, one bit per
// ConnectionIndex. The zero value has nothing connected.
type Connections uint32

// Source is anything carrying a connectivity side-channel, usually a block
// state. ok is false when connectivity was never computed.
type Source interface {
	Connections() (c Connections, ok bool)
}

// IsConnected reports whether bit i is set. Invalid indices are never
// connected.
func (c Connections) IsConnected(i ConnectionIndex) bool {
	if !i.Valid() {
		return false
	}
	return c&(1<<i) != 0
}

// With returns c with bit i set to connected. Invalid indices leave c as is.
func (c Connections) With(i ConnectionIndex, connected bool) Connections {
	if !i.Valid() {
		return c
	}
	if connected {
		return c | 1<<i
	}
	return c &^ (1 << i)
}

// Count returns the number of connected neighbours.
func (c Connections) Count() int {
	return bits.OnesCount32(uint32(c))
}

// Compute builds connectivity by asking match about each of the 26 neighbour
// offsets. This is the writer side: whoever owns block storage calls it when
// a neighbour changes and stores the result on the block state.
func Compute(match func(offset [3]int) bool) Connections {
	var c Connections
	for i := ConnectionIndex(0); i < ConnectionCount; i++ {
		if match(i.Offset()) {
			c |= 1 << i
		}
	}
	return c
}

// IsConnected reports whether the face of src with the given normal connects
// in direction d. A nil source or one without connectivity is unconnected.
func IsConnected(src Source, d Dir, normal cube.Facing) bool {
	if src == nil {
		return false
	}
	c, ok := src.Connections()
	if !ok {
		return false
	}
	return c.IsConnected(indices[d][normal])
}

// ConnectedMask returns a bit per Dir (bit n for Dirs[n]) that is set when
// the face connects in that direction.
func ConnectedMask(src Source, normal cube.Facing) uint8 {
	if src == nil {
		return 0
	}
	c, ok := src.Connections()
	if !ok {
		return 0
	}
	var mask uint8
	for _, d := range Dirs {
		if c.IsConnected(indices[d][normal]) {
			mask |= 1 << d
		}
	}
	return mask
}
