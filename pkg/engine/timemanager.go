package engine

import (
	"context"
	"time"

	"github.com/julupanter/panterfish/pkg/common"
)

// newSearchContext derives a deadline-bound context from limits, adapted
// from simple_time_manager.go's newSimpleTimeManager: a fixed movetime
// wins outright, otherwise the clock/increment pair is divided into a soft
// budget (checked between iterative-deepening iterations, see Searcher.
// Search) and a hard budget (the context deadline, checked at node
// granularity); an infinite or depth-only search gets no deadline at all
// (the caller stops it by depth or external cancellation instead).
func newSearchContext(ctx context.Context, start time.Time, limits common.LimitsType, whiteToMove bool) (context.Context, context.CancelFunc, time.Time) {
	if limits.Infinite {
		var c, cancel = context.WithCancel(ctx)
		return c, cancel, time.Time{}
	}
	if limits.MoveTime > 0 {
		var deadline = start.Add(time.Duration(limits.MoveTime) * time.Millisecond)
		var c, cancel = context.WithDeadline(ctx, deadline)
		return c, cancel, deadline
	}
	if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if whiteToMove {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		var soft, hard = calcLimits(main, inc, limits.MovesToGo)
		var c, cancel = context.WithDeadline(ctx, start.Add(hard))
		return c, cancel, start.Add(soft)
	}
	var c, cancel = context.WithCancel(ctx)
	return c, cancel, time.Time{}
}

// calcLimits derives soft/hard per-move budgets from the remaining clock,
// verbatim the shape of simple_time_manager.go's calcLimits.
func calcLimits(main, inc time.Duration, movesToGo int) (soft, hard time.Duration) {
	const (
		defaultMovesToGo = 40
		moveOverhead     = 100 * time.Millisecond
		minTimeLimit     = 1 * time.Millisecond
	)

	main -= moveOverhead
	if main < minTimeLimit {
		main = minTimeLimit
	}

	if movesToGo == 0 {
		var ideal = main/35 + inc/2
		soft = ideal * 7 / 10
		hard = ideal * 21 / 10
	} else {
		var moves = common.Min(movesToGo, defaultMovesToGo)
		soft = (main/time.Duration(moves+1) + inc) * 7 / 10
		hard = (main/time.Duration(moves+1) + inc) * 21 / 10
	}

	hard = clampDuration(hard, minTimeLimit, main)
	soft = clampDuration(soft, minTimeLimit, main)
	return
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
