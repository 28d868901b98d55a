package main

import (
	"flag"
	"log"
	"os"

	"github.com/julupanter/panterfish/pkg/common"
	"github.com/julupanter/panterfish/pkg/engine"
	"github.com/julupanter/panterfish/pkg/uci"
)

const (
	name    = "panterfish"
	author  = "panterfish contributors"
	version = "dev"
)

func main() {
	var hash = flag.Int("hash", 16, "transposition table size in megabytes")
	var printBoard = flag.String("print-board", "", "render the given FEN to stdout and exit, instead of running the UCI loop")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags)

	if *printBoard != "" {
		var pos, err = common.NewPositionFromFEN(*printBoard)
		if err != nil {
			logger.Fatal(err)
		}
		os.Stdout.WriteString(pos.String())
		return
	}

	var eng = engine.NewEngine()
	eng.Hash = *hash

	var protocol = uci.New(name, author, version, eng, []uci.Option{
		&uci.IntOption{Name: "Hash", Min: 1, Max: 1 << 16, Value: &eng.Hash},
		&uci.IntOption{Name: "QS", Min: 0, Max: 1000, Value: &eng.Searcher().QS},
		&uci.IntOption{Name: "QSAggression", Min: 0, Max: 1000, Value: &eng.Searcher().QSAggression},
		&uci.IntOption{Name: "EvalRoughness", Min: 0, Max: 200, Value: &eng.Searcher().EvalRoughness},
	})
	protocol.Run(logger)
}
