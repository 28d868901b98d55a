package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/julupanter/panterfish/pkg/common"
)

// Engine is the one contract the protocol driver needs from the search
// engine, mirroring pkg/uci.Engine in the teacher engine. whiteToMove
// tells Search which clock half to read; the engine's Position type has
// no notion of absolute color, only of "the side to move", so the driver
// is the sole place that tracks it and mirrors results back into UCI
// notation.
type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, whiteToMove bool, searchParams common.SearchParams) common.SearchInfo
}

// Protocol is a line-oriented UCI driver: it owns the current game
// (positions plus whose move it is), one Engine, and the set of UCI
// options it advertises.
type Protocol struct {
	name    string
	author  string
	version string
	options []Option
	engine  Engine

	positions   []common.Position
	whiteToMove bool

	thinking     bool
	engineOutput chan common.SearchInfo
	cancel       context.CancelFunc
}

// New builds a Protocol at the standard starting position.
func New(name, author, version string, engine Engine, options []Option) *Protocol {
	var initial, err = common.NewPositionFromFEN(common.InitialFEN)
	if err != nil {
		panic(err)
	}
	return &Protocol{
		name:        name,
		author:      author,
		version:     version,
		engine:      engine,
		options:     options,
		positions:   []common.Position{initial},
		whiteToMove: true,
	}
}

// Run reads commands from stdin until "quit" or EOF, dispatching them and
// streaming search progress/results to stdout; protocol errors are logged
// and otherwise ignored (spec's error-handling design: never crash on a
// malformed line).
func (p *Protocol) Run(logger *log.Logger) {
	var commands = make(chan string)
	go func() {
		defer close(commands)
		readCommands(commands)
	}()

	var searchResult common.SearchInfo
	for {
		select {
		case si, ok := <-p.engineOutput:
			if ok {
				fmt.Println(searchInfoToUci(p.whiteToMove, si))
				searchResult = si
			} else {
				p.printBestMove(searchResult)
				p.thinking = false
				p.cancel = nil
				p.engineOutput = nil
				searchResult = common.SearchInfo{}
			}
		case line, ok := <-commands:
			if !ok {
				return
			}
			if err := p.handle(line); err != nil {
				logger.Println(err)
			}
		}
	}
}

func (p *Protocol) printBestMove(si common.SearchInfo) {
	if len(si.MainLine) == 0 {
		fmt.Println("bestmove " + common.MoveEmpty.String())
		return
	}
	var best = si.MainLine[0]
	if !p.whiteToMove {
		best = best.Mirror()
	}
	fmt.Printf("bestmove %v\n", best)
}

func readCommands(commands chan<- string) {
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var line = scanner.Text()
		if line == "quit" {
			return
		}
		if line != "" {
			commands <- line
		}
	}
}

func (p *Protocol) handle(line string) error {
	var fields = strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	var name = fields[0]
	fields = fields[1:]

	if p.thinking {
		if name == "stop" {
			p.cancel()
			return nil
		}
		return errors.New("search still running")
	}

	var h func([]string) error
	switch name {
	case "uci":
		h = p.uciCommand
	case "setoption":
		h = p.setOptionCommand
	case "isready":
		h = p.isReadyCommand
	case "position":
		h = p.positionCommand
	case "go":
		h = p.goCommand
	case "ucinewgame":
		h = p.uciNewGameCommand
	}
	if h == nil {
		return fmt.Errorf("command not found: %v", name)
	}
	return h(fields)
}

func (p *Protocol) uciCommand(fields []string) error {
	fmt.Printf("id name %s %s\n", p.name, p.version)
	fmt.Printf("id author %s\n", p.author)
	for _, option := range p.options {
		fmt.Println(option.UciString())
	}
	fmt.Println("uciok")
	return nil
}

func (p *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 {
		return errors.New("invalid setoption arguments")
	}
	var name, value = fields[1], fields[3]
	for _, option := range p.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return errors.New("unhandled option")
}

func (p *Protocol) isReadyCommand(fields []string) error {
	p.engine.Prepare()
	fmt.Println("readyok")
	return nil
}

func (p *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("unknown position command")
	}
	var fen string
	var movesIndex = indexOf(fields, "moves")
	switch fields[0] {
	case "startpos":
		fen = common.InitialFEN
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	default:
		return errors.New("unknown position command")
	}

	var root, err = common.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var whiteToMove = fenSideToMove(fen)
	var positions = []common.Position{root}

	if movesIndex >= 0 {
		for _, text := range fields[movesIndex+1:] {
			var current = &positions[len(positions)-1]
			var m, ok = parseMoveRelativeTo(current, whiteToMove, text)
			if !ok {
				return fmt.Errorf("illegal move in position command: %v", text)
			}
			positions = append(positions, current.Move(m))
			whiteToMove = !whiteToMove
		}
	}

	p.positions = positions
	p.whiteToMove = whiteToMove
	return nil
}

// parseMoveRelativeTo decodes a UCI move string in absolute notation and
// mirrors it into pos's own side-to-move-relative frame (see spec's
// note that Black's input/output squares must be mirrored), then checks
// it against pos's pseudo-legal moves so a malformed or impossible move
// is reported rather than silently corrupting history.
func parseMoveRelativeTo(pos *common.Position, whiteToMove bool, text string) (common.Move, bool) {
	var m, ok = common.ParseMove(text)
	if !ok {
		return common.Move{}, false
	}
	if !whiteToMove {
		m = m.Mirror()
	}
	for _, candidate := range pos.GenMoves() {
		if candidate.From == m.From && candidate.To == m.To && candidate.Promotion == m.Promotion {
			return candidate, true
		}
	}
	return common.Move{}, false
}

func fenSideToMove(fen string) bool {
	var fields = strings.Fields(fen)
	return len(fields) < 2 || fields[1] != "b"
}

func (p *Protocol) goCommand(fields []string) error {
	var limits = parseLimits(fields)
	var ctx, cancel = context.WithCancel(context.Background())
	p.cancel = cancel
	p.thinking = true
	p.engineOutput = make(chan common.SearchInfo, 3)

	var positions = p.positions
	var whiteToMove = p.whiteToMove
	var engine = p.engine
	var output = p.engineOutput
	go func() {
		var result = engine.Search(ctx, whiteToMove, common.SearchParams{
			Positions: positions,
			Limits:    limits,
			Progress: func(si common.SearchInfo) {
				select {
				case output <- si:
				default:
				}
			},
		})
		output <- result
		close(output)
	}()
	return nil
}

func (p *Protocol) uciNewGameCommand(fields []string) error {
	p.engine.Clear()
	var initial, err = common.NewPositionFromFEN(common.InitialFEN)
	if err != nil {
		return err
	}
	p.positions = []common.Position{initial}
	p.whiteToMove = true
	return nil
}

func searchInfoToUci(whiteToMove bool, si common.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %v", si.Depth)
	if si.Score.Mate != 0 {
		fmt.Fprintf(&sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(&sb, " score cp %v", si.Score.Centipawns)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(&sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		sb.WriteString(" pv")
		for i, m := range si.MainLine {
			if ply0IsBlack(whiteToMove, i) {
				m = m.Mirror()
			}
			sb.WriteString(" ")
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// ply0IsBlack reports whether the mover at principal-variation index i
// (0 = the position searched) is Black in absolute terms, given the root
// side to move; Black's moves need mirroring back into UCI's
// always-White-at-the-bottom square numbering.
func ply0IsBlack(rootWhiteToMove bool, i int) bool {
	if i%2 == 0 {
		return !rootWhiteToMove
	}
	return rootWhiteToMove
}

func parseLimits(fields []string) (result common.LimitsType) {
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "wtime":
			result.WhiteTime, _ = strconv.Atoi(fields[i+1])
			i++
		case "btime":
			result.BlackTime, _ = strconv.Atoi(fields[i+1])
			i++
		case "winc":
			result.WhiteIncrement, _ = strconv.Atoi(fields[i+1])
			i++
		case "binc":
			result.BlackIncrement, _ = strconv.Atoi(fields[i+1])
			i++
		case "movestogo":
			result.MovesToGo, _ = strconv.Atoi(fields[i+1])
			i++
		case "depth":
			result.Depth, _ = strconv.Atoi(fields[i+1])
			i++
		case "nodes":
			var n, _ = strconv.ParseInt(fields[i+1], 10, 64)
			result.Nodes = n
			i++
		case "movetime":
			result.MoveTime, _ = strconv.Atoi(fields[i+1])
			i++
		case "infinite":
			result.Infinite = true
		}
	}
	return
}

func indexOf(fields []string, value string) int {
	for i, f := range fields {
		if f == value {
			return i
		}
	}
	return -1
}
