package engine

import (
	"context"
	"testing"
	"time"

	"github.com/julupanter/panterfish/pkg/common"
)

func mustPosition(t *testing.T, fen string) common.Position {
	t.Helper()
	var pos, err = common.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("NewPositionFromFEN(%q): %v", fen, err)
	}
	return pos
}

func TestBoundReturnsDrawForNonRootRepetition(t *testing.T) {
	var pos = mustPosition(t, common.InitialFEN)
	var s = NewSearcher(1)
	s.ctx = context.Background()
	s.history = map[common.Position]struct{}{pos: {}}

	if got := s.bound(pos, 0, 2, true); got != 0 {
		t.Errorf("bound() = %d, want 0 for a position already in history", got)
	}
}

func TestBoundIgnoresRootRepetition(t *testing.T) {
	// rootBound always calls bound with canNull=false, so even a position
	// that is (artificially, here) present in s.history must still be
	// searched rather than scored as an immediate draw: only non-root
	// nodes (canNull=true) ever take the repetition shortcut.
	var pos = mustPosition(t, common.InitialFEN)
	var s = NewSearcher(1)
	s.ctx = context.Background()
	s.history = map[common.Position]struct{}{pos: {}}

	var score, ok = s.rootBound(&pos, 0, 1)
	if !ok {
		t.Fatal("rootBound timed out unexpectedly")
	}
	if score == 0 {
		t.Error("rootBound returned a draw score for the root position, want canNull=false to bypass the repetition check")
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	var pos = mustPosition(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	var s = NewSearcher(4)

	var result = s.Search(context.Background(), []common.Position{pos}, 6, 0, time.Time{}, nil)

	if result.Move.String() != "a1a8" {
		t.Errorf("best move = %v, want a1a8 (Ra8#)", result.Move)
	}
	if result.Score < common.MateLower {
		t.Errorf("score = %d, want a forced-mate score (>= %d)", result.Score, common.MateLower)
	}
}

func TestSearchAvoidsHangingTheQueen(t *testing.T) {
	// White's queen can capture the rook on d8, but the king on e8
	// recaptures for free; any reasonable alternative keeps material.
	var pos = mustPosition(t, "3rk3/8/8/8/8/8/8/3QK3 w - - 0 1")
	var s = NewSearcher(4)

	var result = s.Search(context.Background(), []common.Position{pos}, 5, 0, time.Time{}, nil)

	if result.Move.String() == "d1d8" {
		t.Errorf("chose Qxd8??, losing the queen for a rook")
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	var pos = mustPosition(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	var first = NewSearcher(2).Search(context.Background(), []common.Position{pos}, 4, 0, time.Time{}, nil)
	var second = NewSearcher(2).Search(context.Background(), []common.Position{pos}, 4, 0, time.Time{}, nil)

	if first.Move != second.Move {
		t.Errorf("search is not deterministic: %v != %v", first.Move, second.Move)
	}
}

func TestTransTableStoresAndRetrievesKillerMove(t *testing.T) {
	var pos = mustPosition(t, common.InitialFEN)
	var tt = NewTransTable(1)
	var m = common.Move{From: common.A1, To: common.A1 + common.North}

	if _, ok := tt.Move(&pos); ok {
		t.Fatal("expected no cached move before SetMove")
	}
	tt.SetMove(&pos, m)
	if got, ok := tt.Move(&pos); !ok || got != m {
		t.Errorf("Move() = %v, %v, want %v, true", got, ok, m)
	}
}

func TestTransTableClearDropsEntries(t *testing.T) {
	var pos = mustPosition(t, common.InitialFEN)
	var tt = NewTransTable(1)
	tt.StoreLower(&pos, 3, true, 100)
	tt.Clear()

	var lower, upper = tt.Bounds(&pos, 3, true)
	if lower != -common.MateUpper || upper != common.MateUpper {
		t.Errorf("Bounds() after Clear = (%d, %d), want the widest bracket", lower, upper)
	}
}
