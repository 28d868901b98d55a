package common

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// opponentCanCaptureKing reports whether pos's side to move has a pseudo-
// legal move landing on the opponent's king square; it is the one-ply
// lookahead every legality decision in this engine reduces to (see
// GenMoves's doc comment).
func opponentCanCaptureKing(pos Position) bool {
	for _, m := range pos.GenMoves() {
		if pos.Board[m.To] == 'k' {
			return true
		}
	}
	return false
}

func perft(pos Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range pos.GenMoves() {
		var child = pos.Move(m)
		if opponentCanCaptureKing(child) {
			continue
		}
		nodes += perft(child, depth-1)
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	var pos, err = NewPositionFromFEN(InitialFEN)
	if err != nil {
		t.Fatal(err)
	}

	var cases = []struct {
		depth int
		want  int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}
	for _, c := range cases {
		if got := perft(pos, c.depth); got != c.want {
			t.Errorf("perft(%d) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestRotateIsInvolution(t *testing.T) {
	var pos, err = NewPositionFromFEN("r3k2r/1ppq1ppp/p1nb1n2/3pp3/3PP3/P1NB1N2/1PPQ1PPP/R3K2R w KQkq d6 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var rotatedOnce = pos.Rotate()
	var roundTrip = rotatedOnce.Rotate()
	if diff := cmp.Diff(pos, roundTrip); diff != "" {
		t.Errorf("Rotate().Rotate() mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveStringRoundTrip(t *testing.T) {
	var cases = []string{"e2e4", "g1f3", "a7a8q", "e1g1"}
	for _, s := range cases {
		m, ok := ParseMove(s)
		if !ok {
			t.Fatalf("ParseMove(%q) failed", s)
		}
		if got := m.String(); got != s {
			t.Errorf("ParseMove(%q).String() = %q", s, got)
		}
	}
}

func TestMoveMirrorIsInvolution(t *testing.T) {
	var m, _ = ParseMove("e2e4")
	if got := m.Mirror().Mirror(); got != m {
		t.Errorf("Mirror().Mirror() = %+v, want %+v", got, m)
	}
}

func TestFENScoreMatchesPieceSquareSum(t *testing.T) {
	var fens = []string{
		InitialFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 2",
		"8/8/8/4k3/8/8/4K3/8 w - - 0 1",
	}
	for _, fen := range fens {
		var pos, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatalf("NewPositionFromFEN(%q): %v", fen, err)
		}
		var want int
		for i := 0; i < BoardLen; i++ {
			switch {
			case isOwnPiece(pos.Board[i]):
				want += PieceSquareValue(pos.Board[i], i)
			case isOppPiece(pos.Board[i]):
				want -= PieceSquareValue(toUpper(pos.Board[i]), MirrorSquare(i))
			}
		}
		if pos.Score != want {
			t.Errorf("fen %q: Score = %d, want %d", fen, pos.Score, want)
		}
	}
}

func TestCastlingRightsClearedByRookMove(t *testing.T) {
	var pos, err = NewPositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m = Move{From: H1, To: H1 + North + North}
	var after = pos.Move(m)
	// after rotation the mover (White) is now the opponent, so its rights
	// live in the BC slot of the returned, opponent-to-move position.
	if after.BC[east] {
		t.Errorf("kingside right should be lost after the h1 rook moves")
	}
	if !after.BC[west] {
		t.Errorf("queenside right should survive an unrelated rook move")
	}
}

func TestCastlingGeneratesBothSides(t *testing.T) {
	var pos, err = NewPositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var sawKingside, sawQueenside bool
	for _, m := range pos.GenMoves() {
		if m.From == A1+4 && m.To == A1+6 {
			sawKingside = true
		}
		if m.From == A1+4 && m.To == A1+2 {
			sawQueenside = true
		}
	}
	if !sawKingside {
		t.Error("expected a kingside castling move to be generated")
	}
	if !sawQueenside {
		t.Error("expected a queenside castling move to be generated")
	}
}

func TestEnPassantCaptureGenerated(t *testing.T) {
	var pos, err = NewPositionFromFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, m := range pos.GenMoves() {
		if pos.Board[m.From] == 'P' && m.To == pos.EP {
			found = true
		}
	}
	if !found {
		t.Error("expected the e5 pawn to generate an en-passant capture onto d6")
	}
}
