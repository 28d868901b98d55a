package engine

import "github.com/julupanter/panterfish/pkg/common"

// historySet turns the ordered game history the protocol driver hands to
// Search into the lookup set bound() consults for repetition draws,
// adapted from CounterGo's getHistoryKeys (there keyed by Zobrist key and
// cut off at the last irreversible move; here the 50-move rule is out of
// scope, so the whole supplied history is eligible).
func historySet(positions []common.Position) map[common.Position]struct{} {
	var result = make(map[common.Position]struct{}, len(positions))
	for _, p := range positions {
		result[p] = struct{}{}
	}
	return result
}
