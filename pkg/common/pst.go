package common

// Piece base values in centipawns, folded into every entry of the
// corresponding piece-square table below so a single table sum yields both
// material and positional score. King is a very large constant used to
// detect that a king has been captured (see MateUpper/MateLower).
const (
	ValuePawn   = 100
	ValueKnight = 280
	ValueBishop = 320
	ValueRook   = 479
	ValueQueen  = 929
	ValueKing   = 60000
)

// MateLower/MateUpper bound the range a real (non-mate) score can occupy;
// a score outside [-MateLower, MateLower] means some search ply has already
// captured a king.
const (
	MateLower = ValueKing - 10*ValueQueen
	MateUpper = ValueKing + 10*ValueQueen
)

var pieceValue = map[byte]int{
	'P': ValuePawn,
	'N': ValueKnight,
	'B': ValueBishop,
	'R': ValueRook,
	'Q': ValueQueen,
	'K': ValueKing,
}

// raw64 holds a table in a1..h1, a2..h2, ... a8..h8 order (White's
// perspective, rank 1 first), the conventional way piece-square tables are
// written out.
var raw64 = map[byte][64]int{
	'P': {
		0, 0, 0, 0, 0, 0, 0, 0,
		-31, 8, -7, -37, -36, -14, 3, -31,
		-22, 9, 5, -11, -10, -2, 3, -19,
		-26, 3, 10, 9, 6, 1, 0, -23,
		-17, 16, -2, 15, 14, 0, 15, -13,
		7, 29, 21, 44, 40, 31, 44, 7,
		78, 83, 86, 73, 102, 82, 85, 90,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	'N': {
		-74, -23, -26, -24, -19, -35, -22, -69,
		-23, -15, 2, 0, 2, 0, -23, -20,
		-18, 10, 13, 22, 18, 15, 11, -14,
		-1, 5, 31, 21, 22, 35, 2, 0,
		24, 24, 45, 37, 33, 41, 25, 17,
		10, 67, 1, 74, 73, 27, 62, -2,
		-3, -6, 100, -36, 4, 62, -4, -14,
		-66, -53, -75, -75, -10, -55, -58, -70,
	},
	'B': {
		-7, 2, -15, -12, -16, -11, -12, -16,
		19, 20, 11, 6, 7, 6, 20, 16,
		14, 25, 24, 15, 8, 25, 20, 15,
		13, 10, 17, 23, 17, 16, 0, 7,
		25, 17, 20, 34, 26, 25, 15, 10,
		-9, 39, -32, 41, 52, -10, 28, -14,
		-11, 20, 35, -42, -39, 31, 2, -22,
		-59, -78, -82, -76, -23, -107, -37, -50,
	},
	'R': {
		-30, -24, -18, 5, -2, -18, -31, -32,
		-53, -38, -31, -26, -29, -43, -44, -53,
		-42, -28, -42, -25, -25, -35, -26, -46,
		-28, -35, -16, -21, -13, -29, -46, -30,
		0, 5, 16, 13, 18, -4, -9, -6,
		19, 35, 28, 33, 45, 27, 25, 15,
		55, 29, 56, 67, 55, 62, 34, 60,
		35, 29, 33, 4, 37, 33, 56, 50,
	},
	'Q': {
		-39, -30, -31, -13, -31, -36, -34, -42,
		-36, -18, 0, -19, -15, -15, -21, -38,
		-30, -6, -13, -11, -16, -11, -16, -27,
		-14, -15, -2, -5, -1, -10, -20, -22,
		1, -16, 22, 17, 25, 20, -13, -6,
		-2, 43, 32, 60, 72, 63, 43, 2,
		14, 32, 60, -10, 20, 76, 57, 24,
		6, 1, -8, -104, 69, 24, 88, 26,
	},
	'K': {
		17, 30, -3, -14, 6, -1, 40, 18,
		-4, 3, -14, -50, -57, -18, 13, 4,
		-47, -42, -43, -79, -64, -32, -29, -32,
		-55, -43, -52, -28, -51, -47, -8, -50,
		-55, 50, 11, -4, -19, 13, 0, -49,
		-62, 12, -57, 44, -67, 28, 37, -31,
		-32, 10, 55, 56, 56, 55, 10, 3,
		4, 54, 47, -99, -99, 60, 83, -62,
	},
}

// pst120[p][sq] is the padded 120-square table for uppercase piece p,
// sentinel squares holding zero. The opponent's (lowercase) pieces are
// scored from the same table addressed by the mirrored square.
var pst120 [256][BoardLen]int

func init() {
	for piece, table := range raw64 {
		var base = pieceValue[piece]
		var padded [BoardLen]int
		for sq64 := 0; sq64 < 64; sq64++ {
			var file = sq64 % 8
			var rank = sq64 / 8
			var sq120 = A1 - 10*rank + file
			padded[sq120] = base + table[sq64]
		}
		pst120[piece] = padded
	}
}

// PieceSquareValue returns the PST entry for upper-cased piece p at square
// sq, as seen from the side the piece belongs to.
func PieceSquareValue(piece byte, sq int) int {
	return pst120[piece][sq]
}
