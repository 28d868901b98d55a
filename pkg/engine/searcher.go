package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/julupanter/panterfish/pkg/common"
)

// Tunable search constants, recognized as UCI options by the protocol
// driver (see pkg/uci/option.go). Defaults follow the reference engine.
const (
	DefaultQS            = 40
	DefaultQSAggression  = 140
	DefaultEvalRoughness = 15
)

var errSearchTimeout = errors.New("search timeout")

// Searcher is the MTD-bi iterative-deepening driver. It owns the
// transposition/killer-move tables, which persist across Search calls
// within a game; history and nodes are rebuilt fresh for each call.
type Searcher struct {
	Table *TransTable

	// QS is the quiescence capture threshold: at depth 0 a move is
	// searched only if its incremental score already meets this value.
	QS int
	// QSAggression is carried as a recognized tunable (see spec's tunable
	// list) but the depth-0 move filter uses QS alone; no algorithmic
	// path in this engine distinguishes an "aggression" margin from QS,
	// so this field is accepted and stored but currently unconsulted.
	QSAggression int
	// EvalRoughness is the MTD-bi convergence tolerance.
	EvalRoughness int

	history   map[common.Position]struct{}
	nodes     int64
	nodeLimit int64
	ctx       context.Context
}

// NewSearcher builds a Searcher with a freshly allocated transposition
// table of the given size.
func NewSearcher(hashMegabytes int) *Searcher {
	return &Searcher{
		Table:         NewTransTable(hashMegabytes),
		QS:            DefaultQS,
		QSAggression:  DefaultQSAggression,
		EvalRoughness: DefaultEvalRoughness,
	}
}

// Clear discards both tables, used on "ucinewgame".
func (s *Searcher) Clear() {
	s.Table.Clear()
}

// Result is one completed (or in-progress) iterative-deepening iteration.
type Result struct {
	Depth int
	Score int
	Move  common.Move
	PV    []common.Move
}

// Search runs MTD-bi iterative deepening on root (the last position in
// positions) until ctx is cancelled, softDeadline passes, or nodeLimit
// nodes have been searched, calling progress once per completed
// iteration. softDeadline is checked only between iterations; a zero
// Time disables it. nodeLimit <= 0 disables the node cap. It always
// returns the deepest result obtained, even a single-ply one if the
// context is already near its deadline.
func (s *Searcher) Search(ctx context.Context, positions []common.Position, maxDepth int, nodeLimit int64, softDeadline time.Time, progress func(Result)) Result {
	var root = positions[len(positions)-1]
	s.nodes = 0
	s.nodeLimit = nodeLimit
	s.history = historySet(positions[:len(positions)-1])
	s.ctx = ctx

	var best Result
	if moves := root.GenMoves(); len(moves) > 0 {
		best = Result{Depth: 0, Score: root.Score, Move: moves[0], PV: moves[:1]}
	}

	if maxDepth <= 0 || maxDepth > 1000 {
		maxDepth = 1000
	}

	var gamma = 0
	for depth := 1; depth <= maxDepth; depth++ {
		var lower, upper = -common.MateLower, common.MateLower
		var timedOut = false
		for lower < upper-s.EvalRoughness {
			var score, ok = s.rootBound(&root, gamma, depth)
			if !ok {
				timedOut = true
				break
			}
			if score >= gamma {
				lower = score
			}
			if score < gamma {
				upper = score
			}
			gamma = (lower + upper + 1) / 2
		}
		if timedOut {
			break
		}

		if m, ok := s.Table.Move(&root); ok {
			best = Result{Depth: depth, Score: gamma, Move: m, PV: s.principalVariation(root, depth)}
			if progress != nil {
				progress(best)
			}
		}

		select {
		case <-ctx.Done():
			return best
		default:
		}
		if !softDeadline.IsZero() && !time.Now().Before(softDeadline) {
			return best
		}
		if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
			return best
		}
	}
	return best
}

// rootBound runs bound at the root with can_null=false, the way the
// reference search always enters its own root: a position already in
// "history" (it's the current position itself) must not short-circuit to
// a draw score before a move has even been tried.
func (s *Searcher) rootBound(root *common.Position, gamma, depth int) (score int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				ok = false
				return
			}
			panic(r)
		}
	}()
	return s.bound(*root, gamma, depth, false), true
}

// bound implements the zero-window NegaC* search described by the
// reference engine: it returns a lower bound on the position's true score
// if that bound is >= gamma, otherwise an upper bound.
func (s *Searcher) bound(pos common.Position, gamma, depth int, canNull bool) int {
	s.incNodes()

	if depth < 0 {
		depth = 0
	}

	if pos.Score <= -common.MateLower {
		return -common.MateUpper
	}

	if lower, upper := s.Table.Bounds(&pos, depth, canNull); lower >= gamma {
		return lower
	} else if upper < gamma {
		return upper
	}

	if canNull && depth > 0 {
		if _, repeat := s.history[pos]; repeat {
			return 0
		}
	}

	var best = -common.MateUpper
	var cutoff = false

	consider := func(m common.Move, score int) bool {
		if score > best {
			best = score
		}
		if score >= gamma {
			if m != common.MoveEmpty {
				s.Table.SetMove(&pos, m)
			}
			return true
		}
		return false
	}

	if depth > 2 && canNull && hasMajorOrMinorPiece(&pos) {
		var child = pos.Nullmove()
		var score = -s.bound(child, 1-gamma, depth-3, false)
		cutoff = consider(common.MoveEmpty, score)
	}

	if !cutoff && depth == 0 {
		cutoff = consider(common.MoveEmpty, pos.Score)
	}

	if !cutoff {
		if killer, ok := s.Table.Move(&pos); ok {
			var threshold = -common.MateLower
			if depth == 0 {
				threshold = s.QS
			}
			if pos.Value(killer) >= threshold {
				var child = pos.Move(killer)
				var score = -s.bound(child, 1-gamma, depth-1, true)
				cutoff = consider(killer, score)
			}
		}
	}

	if !cutoff {
		var moves = pos.GenMoves()
		sort.Slice(moves, func(i, j int) bool {
			return pos.Value(moves[i]) > pos.Value(moves[j])
		})
		var threshold = -common.MateLower
		if depth == 0 {
			threshold = s.QS
		}
		for _, m := range moves {
			if pos.Value(m) < threshold {
				break
			}
			var child = pos.Move(m)
			var score = -s.bound(child, 1-gamma, depth-1, true)
			if consider(m, score) {
				cutoff = true
				break
			}
		}
	}

	if depth > 0 && best == -common.MateUpper {
		var flipped = pos.Nullmove()
		var inCheck = s.bound(flipped, common.MateUpper, 0, true) == common.MateUpper
		if inCheck {
			best = -common.MateUpper + depth
		} else {
			best = 0
		}
	}

	if best >= gamma {
		s.Table.StoreLower(&pos, depth, canNull, best)
	} else {
		s.Table.StoreUpper(&pos, depth, canNull, best)
	}
	return best
}

func hasMajorOrMinorPiece(pos *common.Position) bool {
	for _, b := range pos.Board {
		switch b {
		case 'R', 'B', 'N', 'Q':
			return true
		}
	}
	return false
}

func (s *Searcher) incNodes() {
	s.nodes++
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		panic(errSearchTimeout)
	}
	if s.nodes&1023 == 0 {
		select {
		case <-s.ctx.Done():
			panic(errSearchTimeout)
		default:
		}
	}
}

// Nodes returns the node count accumulated by the most recent Search call.
func (s *Searcher) Nodes() int64 {
	return s.nodes
}

// principalVariation walks tp_move from root, applying moves, stopping at
// a missing entry, a position repeat within the line, or maxDepth plies.
func (s *Searcher) principalVariation(root common.Position, maxDepth int) []common.Move {
	var pv []common.Move
	var seen = map[common.Position]struct{}{root: {}}
	var pos = root
	for i := 0; i < maxDepth; i++ {
		m, ok := s.Table.Move(&pos)
		if !ok {
			break
		}
		pos = pos.Move(m)
		pv = append(pv, m)
		if _, repeat := seen[pos]; repeat {
			break
		}
		seen[pos] = struct{}{}
	}
	return pv
}
