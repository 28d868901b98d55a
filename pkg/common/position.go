package common

import (
	"fmt"
	"strings"
)

// Castling-right slot indices: squares A1/A8 hold the queenside ("west")
// rook, squares H1/H8 the kingside ("east") rook, always addressed
// positionally in the current side-to-move-relative frame.
const (
	west = 0
	east = 1
)

// InitialFEN is the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is an immutable side-to-move-relative chess position: the board
// is always oriented so that the side to move owns the uppercase pieces
// and occupies the low-index ranks. Applying a move yields a new Position
// rotated into the opponent's frame.
type Position struct {
	Board [BoardLen]byte
	Score int
	WC    [2]bool // own (west, east) castling rights
	BC    [2]bool // opponent (west, east) castling rights
	EP    int     // en-passant target square, or SquareNone
	KP    int     // king-passant square from the last castle, or SquareNone
}

var pawnDirs = []int{North, North + North, North + West, North + East}
var knightDirs = []int{
	North + North + East, East + North + East, East + South + East, South + South + East,
	South + South + West, West + South + West, West + North + West, North + North + West,
}
var bishopDirs = []int{North + East, South + East, South + West, North + West}
var rookDirs = []int{North, East, South, West}
var queenKingDirs = []int{North, East, South, West, North + East, South + East, South + West, North + West}

func pieceDirections(piece byte) []int {
	switch piece {
	case 'P':
		return pawnDirs
	case 'N':
		return knightDirs
	case 'B':
		return bishopDirs
	case 'R':
		return rookDirs
	case 'Q', 'K':
		return queenKingDirs
	}
	return nil
}

func isOwnPiece(b byte) bool { return b >= 'A' && b <= 'Z' }
func isOppPiece(b byte) bool { return b >= 'a' && b <= 'z' }
func isOffBoard(b byte) bool { return b == Sentinel }

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func swapCase(b byte) byte {
	switch {
	case b >= 'A' && b <= 'Z':
		return b - 'A' + 'a'
	case b >= 'a' && b <= 'z':
		return b - 'a' + 'A'
	default:
		return b
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// GenMoves returns the pseudo-legal moves available to the side to move.
// Legality (does this leave the own king capturable) is never checked here
// by design, see spec §9: the search resolves it lazily via king capture.
func (p *Position) GenMoves() []Move {
	var moves []Move
	for i := 0; i < BoardLen; i++ {
		var piece = p.Board[i]
		if !isOwnPiece(piece) {
			continue
		}
		for _, d := range pieceDirections(piece) {
			for j := i + d; ; j += d {
				var q = p.Board[j]
				if isOffBoard(q) || isOwnPiece(q) {
					break
				}
				if piece == 'P' {
					if (d == North || d == North+North) && q != Empty {
						break
					}
					if d == North+North && (i < A1+North || p.Board[i+North] != Empty) {
						break
					}
					if (d == North+West || d == North+East) && q == Empty && j != p.EP && j != p.KP {
						break
					}
					if j >= A8 && j <= H8 {
						for _, promo := range [4]byte{'n', 'b', 'r', 'q'} {
							moves = append(moves, Move{From: i, To: j, Promotion: promo})
						}
						break
					}
				}
				moves = append(moves, Move{From: i, To: j})
				if piece == 'P' || piece == 'N' || piece == 'K' || isOppPiece(q) {
					break
				}
				if i == A1 && p.Board[j+East] == 'K' && p.WC[west] {
					moves = append(moves, Move{From: j + East, To: j + West})
				}
				if i == H1 && p.Board[j+West] == 'K' && p.WC[east] {
					moves = append(moves, Move{From: j + West, To: j + East})
				}
			}
		}
	}
	return moves
}

// Value is the incremental static-score delta of playing m, from the
// side-to-move's perspective, computed from the current board without
// applying the move. The searcher uses it both for move ordering and
// (via Move) for incrementally maintaining Position.Score.
func (p *Position) Value(m Move) int {
	var piece = p.Board[m.From]
	var delta = PieceSquareValue(piece, m.To) - PieceSquareValue(piece, m.From)

	if target := p.Board[m.To]; isOppPiece(target) {
		delta += PieceSquareValue(toUpper(target), MirrorSquare(m.To))
	}

	if piece == 'K' && abs(m.To-m.From) == 2 {
		if m.To > m.From {
			delta += PieceSquareValue('R', m.From+East) - PieceSquareValue('R', H1)
		} else {
			delta += PieceSquareValue('R', m.From+West) - PieceSquareValue('R', A1)
		}
	}

	if p.KP != SquareNone && abs(m.To-p.KP) < 2 {
		delta += PieceSquareValue('K', MirrorSquare(m.To))
	}

	if piece == 'P' {
		if m.To == p.EP && p.Board[m.To] == Empty && (m.To == m.From+North+West || m.To == m.From+North+East) {
			delta += PieceSquareValue('P', MirrorSquare(m.To+South))
		}
		if m.Promotion != 0 && m.To >= A8 && m.To <= H8 {
			delta += PieceSquareValue(toUpper(m.Promotion), m.To) - PieceSquareValue('P', m.To)
		}
	}

	return delta
}

// Move applies m and returns the resulting Position, rotated into the
// opponent's frame.
func (p *Position) Move(m Move) Position {
	var board = p.Board
	var piece = board[m.From]
	board[m.From] = Empty

	var wc, bc = p.WC, p.BC
	var ep, kp = SquareNone, SquareNone

	if piece == 'K' {
		wc = [2]bool{}
		if m.To-m.From == 2 {
			var crossed = m.From + East
			board[H1] = Empty
			board[crossed] = 'R'
			kp = crossed
		} else if m.From-m.To == 2 {
			var crossed = m.From + West
			board[A1] = Empty
			board[crossed] = 'R'
			kp = crossed
		}
	}
	if m.From == A1 {
		wc[west] = false
	}
	if m.From == H1 {
		wc[east] = false
	}
	if m.To == A8 {
		bc[west] = false
	}
	if m.To == H8 {
		bc[east] = false
	}

	if piece == 'P' {
		if m.To == m.From+North+North {
			ep = m.From + North
		} else if m.To == p.EP && board[m.To] == Empty && (m.To == m.From+North+West || m.To == m.From+North+East) {
			board[m.To+South] = Empty
		}
		if m.Promotion != 0 && m.To >= A8 && m.To <= H8 {
			piece = toUpper(m.Promotion)
		}
	}
	board[m.To] = piece

	var next = Position{
		Board: board,
		Score: p.Score + p.Value(m),
		WC:    wc,
		BC:    bc,
		EP:    ep,
		KP:    kp,
	}
	return next.Rotate()
}

func mirrorOptional(sq int) int {
	if sq == SquareNone {
		return SquareNone
	}
	return MirrorSquare(sq)
}

// Rotate flips the board 180 degrees and swaps side to move. It is an
// involution: p.Rotate().Rotate() == p.
func (p *Position) Rotate() Position {
	var board [BoardLen]byte
	for i := 0; i < BoardLen; i++ {
		board[i] = swapCase(p.Board[BoardLen-1-i])
	}
	return Position{
		Board: board,
		Score: -p.Score,
		WC:    [2]bool{p.BC[east], p.BC[west]},
		BC:    [2]bool{p.WC[east], p.WC[west]},
		EP:    mirrorOptional(p.EP),
		KP:    mirrorOptional(p.KP),
	}
}

// Nullmove rotates the position without carrying forward en-passant or
// king-passant rights, used for null-move pruning.
func (p *Position) Nullmove() Position {
	var np = *p
	np.EP = SquareNone
	np.KP = SquareNone
	return np.Rotate()
}

// HasKing reports whether the side to move still has a king on the board;
// its absence is this engine's sole checkmate/stalemate signal (spec §4.2).
func (p *Position) HasKing() bool {
	for i := 0; i < BoardLen; i++ {
		if p.Board[i] == 'K' {
			return true
		}
	}
	return false
}

// String renders the board for debugging, own pieces uppercase at the
// bottom as stored internally; it is never consulted by search or UCI.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 8; rank >= 1; rank-- {
		for file := 0; file < 8; file++ {
			var sq = A1 - 10*(rank-1) + file
			sb.WriteByte(p.Board[sq])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func sq(file, rank int) int {
	return A1 - 10*(rank-1) + file
}

// NewPositionFromFEN parses standard FEN, including castling rights and the
// en-passant target, into the side-to-move-relative Position.
func NewPositionFromFEN(fen string) (Position, error) {
	var fields = strings.Fields(fen)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("invalid FEN: %q", fen)
	}

	var board [BoardLen]byte
	for i := range board {
		board[i] = Sentinel
	}
	for rank := 1; rank <= 8; rank++ {
		for file := 0; file < 8; file++ {
			board[sq(file, rank)] = Empty
		}
	}

	var ranks = strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("invalid FEN board: %q", fields[0])
	}
	for rr, rankStr := range ranks {
		var rank = 8 - rr
		var file = 0
		for _, c := range rankStr {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if file >= 8 {
				return Position{}, fmt.Errorf("invalid FEN rank: %q", rankStr)
			}
			board[sq(file, rank)] = byte(c)
			file++
		}
	}

	var whiteToMove bool
	switch fields[1] {
	case "w":
		whiteToMove = true
	case "b":
		whiteToMove = false
	default:
		return Position{}, fmt.Errorf("invalid FEN side to move: %q", fields[1])
	}

	var wc, bc [2]bool
	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				wc[east] = true
			case 'Q':
				wc[west] = true
			case 'k':
				bc[east] = true
			case 'q':
				bc[west] = true
			}
		}
	}

	var ep = SquareNone
	if fields[3] != "-" {
		if len(fields[3]) != 2 {
			return Position{}, fmt.Errorf("invalid FEN en-passant square: %q", fields[3])
		}
		ep = ParseSquare(fields[3])
	}

	var score = 0
	for i := 0; i < BoardLen; i++ {
		if isOwnPiece(board[i]) {
			score += PieceSquareValue(board[i], i)
		} else if isOppPiece(board[i]) {
			score -= PieceSquareValue(toUpper(board[i]), MirrorSquare(i))
		}
	}

	var absolute = Position{Board: board, Score: score, WC: wc, BC: bc, EP: ep, KP: SquareNone}
	if whiteToMove {
		return absolute, nil
	}
	return absolute.Rotate(), nil
}
