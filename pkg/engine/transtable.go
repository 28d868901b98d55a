package engine

import (
	"unsafe"

	"github.com/julupanter/panterfish/pkg/common"
)

// boundEntry is tp_score: a proven [lower, upper] bracket on the true score
// of a position at a given depth and null-move state, tightened a bit more
// by every zero-window probe that touches it.
type boundEntry struct {
	valid   bool
	pos     common.Position
	depth   int
	canNull bool
	lower   int
	upper   int
}

// moveEntry is tp_move: the move that most recently produced a beta cutoff
// from this position, independent of depth, used to seed move ordering.
type moveEntry struct {
	valid bool
	pos   common.Position
	move  common.Move
}

// TransTable bundles tp_score and tp_move. Both are fixed-size, always-
// replace-on-collision hash tables: the search is correct with any
// consistent subset of stored bounds, so losing an entry to a collision
// only costs search efficiency, never correctness (spec's resource model
// permits exactly this kind of simple eviction policy).
type TransTable struct {
	megabytes int
	bounds    []boundEntry
	moves     []moveEntry
	mask      uint64
}

// NewTransTable sizes both tables to roughly share the given megabyte
// budget between a boundEntry and a moveEntry slot.
func NewTransTable(megabytes int) *TransTable {
	if megabytes < 1 {
		megabytes = 1
	}
	var slotPairSize = int(unsafe.Sizeof(boundEntry{}) + unsafe.Sizeof(moveEntry{}))
	var slots = roundDownPowerOfTwo(megabytes * 1024 * 1024 / slotPairSize)
	if slots < 1024 {
		slots = 1024
	}
	return &TransTable{
		megabytes: megabytes,
		bounds:    make([]boundEntry, slots),
		moves:     make([]moveEntry, slots),
		mask:      uint64(slots - 1),
	}
}

// Size reports the megabyte budget the table was constructed with.
func (tt *TransTable) Size() int {
	return tt.megabytes
}

func roundDownPowerOfTwo(n int) int {
	var x = 1
	for x<<1 <= n {
		x <<= 1
	}
	return x
}

// Clear empties both tables, used on the UCI "ucinewgame" command.
func (tt *TransTable) Clear() {
	for i := range tt.bounds {
		tt.bounds[i] = boundEntry{}
	}
	for i := range tt.moves {
		tt.moves[i] = moveEntry{}
	}
}

// Bounds returns the best known (lower, upper) bracket for pos at depth and
// canNull, or the maximally loose bracket if nothing is stored.
func (tt *TransTable) Bounds(pos *common.Position, depth int, canNull bool) (lower, upper int) {
	var e = &tt.bounds[hashBound(pos, depth, canNull)&tt.mask]
	if e.valid && e.depth == depth && e.canNull == canNull && e.pos == *pos {
		return e.lower, e.upper
	}
	return -common.MateUpper, common.MateUpper
}

// StoreLower tightens the lower bound for pos at depth and canNull.
func (tt *TransTable) StoreLower(pos *common.Position, depth int, canNull bool, value int) {
	var e = tt.slot(pos, depth, canNull)
	e.lower = value
}

// StoreUpper tightens the upper bound for pos at depth and canNull.
func (tt *TransTable) StoreUpper(pos *common.Position, depth int, canNull bool, value int) {
	var e = tt.slot(pos, depth, canNull)
	e.upper = value
}

// slot returns the entry for (pos, depth, canNull), resetting it to the
// widest bracket first if the slot currently holds something else.
func (tt *TransTable) slot(pos *common.Position, depth int, canNull bool) *boundEntry {
	var e = &tt.bounds[hashBound(pos, depth, canNull)&tt.mask]
	if !(e.valid && e.depth == depth && e.canNull == canNull && e.pos == *pos) {
		*e = boundEntry{valid: true, pos: *pos, depth: depth, canNull: canNull, lower: -common.MateUpper, upper: common.MateUpper}
	}
	return e
}

// Move returns the cached killer/hash move for pos, if any.
func (tt *TransTable) Move(pos *common.Position) (common.Move, bool) {
	var e = &tt.moves[hashPosition(pos)&tt.mask]
	if e.valid && e.pos == *pos {
		return e.move, true
	}
	return common.Move{}, false
}

// SetMove records the move that produced a cutoff from pos.
func (tt *TransTable) SetMove(pos *common.Position, m common.Move) {
	var e = &tt.moves[hashPosition(pos)&tt.mask]
	*e = moveEntry{valid: true, pos: *pos, move: m}
}

// hashPosition hashes a Position's board and rights with FNV-1a. Position
// carries no incremental Zobrist key (none is in the data model, see
// spec's Position invariants), so the hash is recomputed from scratch on
// every probe; cheap enough at this board size and search volume.
func hashPosition(pos *common.Position) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	var h uint64 = offset
	for _, b := range pos.Board {
		h ^= uint64(b)
		h *= prime
	}
	for _, v := range [...]int{pos.EP, pos.KP} {
		h ^= uint64(v)
		h *= prime
	}
	for _, v := range [...]bool{pos.WC[0], pos.WC[1], pos.BC[0], pos.BC[1]} {
		if v {
			h ^= 1
		}
		h *= prime
	}
	return h
}

func hashBound(pos *common.Position, depth int, canNull bool) uint64 {
	var h = hashPosition(pos)
	h ^= uint64(depth) * 1099511628211
	if canNull {
		h ^= 0x9e3779b97f4a7c15
	}
	return h
}
