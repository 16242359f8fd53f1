package ctm

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/Faultbox/blockctm/pkg/cube"
)

// ConnectionIndex identifies one of the 26 blocks surrounding a block: a set
// of one to three mutually perpendicular facings. It addresses a bit in
// Connections.
type ConnectionIndex uint8

// NoConnection is returned for facing sets that do not name a neighbour.
const NoConnection ConnectionIndex = 0xFF

// ConnectionCount is the number of valid connection indices.
const ConnectionCount = 26

// indexByMask maps a facing bitmask to its index; masks that are not a valid
// neighbour map to NoConnection.
var indexByMask, maskByIndex = buildConnectionTables()

func buildConnectionTables() (byMask [1 << 6]ConnectionIndex, byIndex [ConnectionCount]uint8) {
	for m := range byMask {
		byMask[m] = NoConnection
	}

	var masks []uint8
	for m := 1; m < 1<<6; m++ {
		if validMask(uint8(m)) {
			masks = append(masks, uint8(m))
		}
	}
	// Faces first, then edges, then corners; ordinal order inside each group.
	sort.SliceStable(masks, func(i, j int) bool {
		return bits.OnesCount8(masks[i]) < bits.OnesCount8(masks[j])
	})
	for i, m := range masks {
		byMask[m] = ConnectionIndex(i)
		byIndex[i] = m
	}
	return byMask, byIndex
}

// validMask rejects opposite pairs, which share an axis. Bits 2k and 2k+1
// are the two facings of one axis.
func validMask(m uint8) bool {
	const lowOfPair = 0b010101
	return m&(m>>1)&lowOfPair == 0 && bits.OnesCount8(m) <= 3
}

// ConnectionIndexFor returns the index for the given facings. The result does
// not depend on argument order. Empty, duplicate, opposite or over-long sets
// return NoConnection.
func ConnectionIndexFor(facings ...cube.Facing) ConnectionIndex {
	if len(facings) == 0 || len(facings) > 3 {
		return NoConnection
	}
	var m uint8
	for _, f := range facings {
		if !f.Valid() {
			return NoConnection
		}
		bit := uint8(1) << f
		if m&bit != 0 {
			return NoConnection
		}
		m |= bit
	}
	return indexByMask[m]
}

// Valid reports whether i names a neighbour.
func (i ConnectionIndex) Valid() bool {
	return i < ConnectionCount
}

// Facings returns the facings of i in ordinal order.
func (i ConnectionIndex) Facings() []cube.Facing {
	if !i.Valid() {
		return nil
	}
	m := maskByIndex[i]
	out := make([]cube.Facing, 0, 3)
	for _, f := range cube.Facings {
		if m&(1<<f) != 0 {
			out = append(out, f)
		}
	}
	return out
}

// Offset returns the block offset of the neighbour i points at.
func (i ConnectionIndex) Offset() [3]int {
	var off [3]int
	for _, f := range i.Facings() {
		o := f.Offset()
		off[0] += o[0]
		off[1] += o[1]
		off[2] += o[2]
	}
	return off
}

func (i ConnectionIndex) String() string {
	if !i.Valid() {
		return "none"
	}
	fs := i.Facings()
	names := make([]string, len(fs))
	for n, f := range fs {
		names[n] = f.String()
	}
	return strings.Join(names, "_")
}

// ParseConnectionIndex parses the form String produces, such as "up_east".
func ParseConnectionIndex(s string) (ConnectionIndex, error) {
	parts := strings.Split(s, "_")
	facings := make([]cube.Facing, 0, len(parts))
	for _, p := range parts {
		f, err := cube.ParseFacing(p)
		if err != nil {
			return NoConnection, err
		}
		facings = append(facings, f)
	}
	i := ConnectionIndexFor(facings...)
	if !i.Valid() {
		return NoConnection, fmt.Errorf("ctm: %q does not name a neighbour", s)
	}
	return i, nil
}
