package engine

import (
	"context"
	"time"

	"github.com/julupanter/panterfish/pkg/common"
)

// Engine adapts Searcher to the shape pkg/uci.Protocol expects (Prepare,
// Clear, Search(ctx, whiteToMove, SearchParams) SearchInfo), the same three-method
// contract CounterGo's pkg/uci.Engine interface names.
type Engine struct {
	Hash int

	searcher *Searcher
}

// NewEngine constructs an Engine with its tunables (and a first
// transposition table) ready immediately, so cmd/panterfish can bind UCI
// options to them before the first "uci"/"isready" command arrives.
func NewEngine() *Engine {
	const defaultHash = 16
	return &Engine{Hash: defaultHash, searcher: NewSearcher(defaultHash)}
}

// Searcher exposes the tunable fields (QS, QSAggression, EvalRoughness)
// for the protocol driver to wire as UCI options.
func (e *Engine) Searcher() *Searcher {
	return e.searcher
}

// Prepare (re)allocates the transposition table if Hash changed since the
// last call, mirroring pkg/engine/engine.go's lazy-rebuild-on-size-change.
func (e *Engine) Prepare() {
	if e.searcher.Table.Size() != e.Hash {
		var old = e.searcher
		e.searcher = NewSearcher(e.Hash)
		e.searcher.QS, e.searcher.QSAggression, e.searcher.EvalRoughness = old.QS, old.QSAggression, old.EvalRoughness
	}
}

// Clear discards the transposition and killer-move tables, for
// "ucinewgame".
func (e *Engine) Clear() {
	e.Prepare()
	e.searcher.Clear()
}

// Search runs iterative deepening from params.Positions' last entry,
// honoring params.Limits as a time/depth budget, and streams one
// SearchInfo per completed ply through params.Progress. whiteToMove says
// whether the root position (as seen by params.Positions[len-1]) has
// White on the move, needed only to pick the correct clock half for time
// management; each move of the returned SearchInfo's MainLine is expressed
// in the side-to-move-relative square numbering of the position it is
// played from — callers crossing into absolute UCI notation must mirror
// the moves Black makes: the even plies when the root side is Black, the
// odd plies when it is White (see pkg/uci/protocol.go).
func (e *Engine) Search(ctx context.Context, whiteToMove bool, params common.SearchParams) common.SearchInfo {
	e.Prepare()
	var start = time.Now()
	var searchCtx, cancel, softDeadline = newSearchContext(ctx, start, params.Limits, whiteToMove)
	defer cancel()

	var maxDepth = params.Limits.Depth
	var progress func(Result)
	if params.Progress != nil {
		progress = func(r Result) {
			params.Progress(e.toSearchInfo(r, start))
		}
	}

	var result = e.searcher.Search(searchCtx, params.Positions, maxDepth, params.Limits.Nodes, softDeadline, progress)
	return e.toSearchInfo(result, start)
}

func (e *Engine) toSearchInfo(r Result, start time.Time) common.SearchInfo {
	return common.SearchInfo{
		Depth:    r.Depth,
		Score:    newUciScore(r.Score),
		Nodes:    e.searcher.Nodes(),
		Time:     time.Since(start),
		MainLine: r.PV,
	}
}

func newUciScore(v int) common.UciScore {
	switch {
	case v >= common.MateLower:
		return common.UciScore{Mate: (common.MateUpper - v + 1) / 2}
	case v <= -common.MateLower:
		return common.UciScore{Mate: (-common.MateUpper - v) / 2}
	default:
		return common.UciScore{Centipawns: v}
	}
}
