package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

var (
	ErrUnknownGame   = errors.New("bench: unknown game")
	ErrDuplicateGame = errors.New("bench: game already registered")
	ErrPlayerCount   = errors.New("bench: wrong number of models for game")
)

// Master plays one episode against the given instance. Interactions,
// Requests and Aborted report the outcome afterwards; DialogueMaster
// provides them for masters that embed it.
type Master interface {
	Play(ctx context.Context, instance json.RawMessage) error
	Interactions() records.Interactions
	Requests() []records.Request
	Aborted() bool
}

// Benchmark bundles everything needed to run and score one game.
type Benchmark interface {
	Spec() game.Spec
	Instances() (game.Instances, error)
	NewMaster(experiment game.Experiment, models []model.Model) (Master, error)
	NewScorer() (scoring.Scorer, error)
}

// Registry holds the compiled-in benchmarks.
type Registry struct {
	benchmarks map[string]Benchmark
}

func NewRegistry(benchmarks ...Benchmark) (*Registry, error) {
	r := &Registry{benchmarks: make(map[string]Benchmark)}
	for _, b := range benchmarks {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(b Benchmark) error {
	spec := b.Spec()
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("register %q: %w", spec.Name, err)
	}
	if _, ok := r.benchmarks[spec.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGame, spec.Name)
	}
	r.benchmarks[spec.Name] = b
	return nil
}

// Lookup returns the benchmark registered under name.
func (r *Registry) Lookup(name string) (Benchmark, error) {
	b, ok := r.benchmarks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, name)
	}
	return b, nil
}

// Select returns every registered benchmark matching the selector, sorted
// by game name.
func (r *Registry) Select(selector game.Selector) ([]Benchmark, error) {
	var selected []Benchmark
	for _, b := range r.benchmarks {
		if b.Spec().Matches(selector) {
			selected = append(selected, b)
		}
	}
	if len(selected) == 0 {
		return nil, game.ErrNoMatch
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Spec().Name < selected[j].Spec().Name
	})
	return selected, nil
}

// Specs lists the registered game specs sorted by name.
func (r *Registry) Specs() []game.Spec {
	specs := make([]game.Spec, 0, len(r.benchmarks))
	for _, b := range r.benchmarks {
		specs = append(specs, b.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
