package common

import "time"

// LimitsType carries a UCI "go" command's time and depth controls verbatim;
// zero value means "no limit of that kind".
type LimitsType struct {
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	MovesToGo      int
	Depth          int
	Nodes          int64
}

// SearchParams is everything Engine.Search needs: the game history ending at
// the position to search (oldest first, last entry is current), the time
// budget, and a callback invoked once per completed iterative-deepening ply.
type SearchParams struct {
	Positions []Position
	Limits    LimitsType
	Progress  func(SearchInfo)
}

// UciScore is either a centipawn evaluation or a forced mate in N moves
// (positive: side to move mates, negative: side to move gets mated).
type UciScore struct {
	Centipawns int
	Mate       int
}

// SearchInfo is one iterative-deepening progress tuple, reported through
// SearchParams.Progress and returned as the final result of Search.
type SearchInfo struct {
	Depth    int
	Score    UciScore
	Nodes    int64
	Time     time.Duration
	MainLine []Move
}
