package main

import (
	"bufio"
	"flag"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/game"
	"github.com/mkarpenko/sweeper/internal/gen"
	"github.com/mkarpenko/sweeper/internal/store"
)

var log = logrus.New()

var (
	savePath string
	slot     string
	rows     int
	cols     int
	mines    int
	budgetMs int
	seed     uint64
	genOnly  bool
	debug    bool
)

func init() {
	flag.StringVar(&savePath, "save", "sweeper.db", "save file path")
	flag.StringVar(&slot, "slot", "default", "save slot name")
	flag.IntVar(&rows, "rows", 16, "board rows")
	flag.IntVar(&cols, "cols", 16, "board columns")
	flag.IntVar(&mines, "mines", 40, "mine count")
	flag.IntVar(&budgetMs, "budget", 250, "generation time budget, ms")
	flag.Uint64Var(&seed, "seed", 0, "rng seed (0 picks a random one)")
	flag.BoolVar(&genOnly, "gen", false, "generate one board, print it, and exit")
	flag.BoolVar(&debug, "debug", false, "verbose logging")
}

func createRand() *rand.Rand {
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func options() gen.Options {
	return gen.Options{
		Budget: time.Duration(budgetMs) * time.Millisecond,
		Debug:  debug,
	}
}

// generateOnce renders a board the way the generator diagnostics see
// it, mines exposed, for poking at the search from the command line.
func generateOnce(rnd *rand.Rand) {
	safe := board.Position{Row: rows / 2, Col: cols / 2}
	b, report, err := gen.Generate(rows, cols, mines, safe, rnd, options())
	if err != nil {
		log.Fatal("generation failed: ", err)
	}
	fmt.Print(b)
	fmt.Printf(
		"branch=%s solved=%t score=%d (%.0f%%) attempts=%d elapsed=%s seed=%d\n",
		report.Branch, report.Solved, report.Score,
		report.SolvedFraction*100, report.Attempts, report.Elapsed, seed,
	)
}

func main() {
	flag.Parse()

	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	rnd := createRand()
	log.Debug("rng seeded with ", seed)

	if genOnly {
		generateOnce(rnd)
		return
	}

	saves, err := store.Open(savePath)
	if err != nil {
		log.Fatal(err)
	}
	defer saves.Close()

	state, err := game.New(game.Params{Rows: rows, Cols: cols, MineCount: mines})
	if err != nil {
		log.Fatal(err)
	}
	started := time.Now()

	fmt.Println("commands: o R C, f R C, c R C, h, x, p, s(ave), l(oad), n(ew), q(uit)")
	fmt.Print(state)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "q":
			return
		case "p":
			fmt.Print(state)
			continue
		case "n":
			state, err = game.New(game.Params{Rows: rows, Cols: cols, MineCount: mines})
			if err != nil {
				log.Fatal(err)
			}
			started = time.Now()
			fmt.Print(state)
			continue
		case "s":
			state.Elapsed = time.Since(started)
			if err := saves.Save(slot, state); err != nil {
				log.Error("save: ", err)
			} else {
				log.Info("saved to slot ", slot)
			}
			continue
		case "l":
			loaded, err := saves.Load(slot)
			if err != nil {
				log.Error("load: ", err)
				continue
			}
			state = loaded
			started = time.Now().Add(-state.Elapsed)
			fmt.Print(state)
			continue
		}

		reply, err := state.Execute(line, rnd, options())
		if err != nil {
			log.Error("command: ", err)
			continue
		}
		if reply != "" {
			fmt.Println(reply)
		}
		fmt.Print(state)

		if state.Over() {
			state.RevealMines()
			fmt.Print(state)
			if state.Won {
				fmt.Printf("cleared in %s with %d hints\n",
					time.Since(started).Round(time.Second), state.HintsUsed)
			} else {
				fmt.Println("boom")
			}
			return
		}
	}
}
