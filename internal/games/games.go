// Package games bundles the built-in game implementations.
package games

import (
	"github.com/clp-research/clembench-go/internal/bench"
	"github.com/clp-research/clembench-go/internal/games/referencegame"
	"github.com/clp-research/clembench-go/internal/games/taboo"
	"github.com/clp-research/clembench-go/internal/games/wordle"
)

// All returns every built-in benchmark.
func All() []bench.Benchmark {
	return []bench.Benchmark{
		referencegame.Benchmark{},
		taboo.Benchmark{},
		wordle.Benchmark{},
	}
}

// NewRegistry builds a benchmark registry with every built-in game.
func NewRegistry() (*bench.Registry, error) {
	return bench.NewRegistry(All()...)
}
