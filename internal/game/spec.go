// Package game models game specifications, registries and instance files.
//
// A game is described by a Spec, usually loaded from a clemgame.json file in
// the game directory or from a game_registry.json listing. Instances group the
// concrete episodes of a game into named experiments.
package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyName indicates a game name is required.
	ErrEmptyName = errors.New("game name is required")
	// ErrNoGameSource indicates a spec has neither a path nor a builtin implementation.
	ErrNoGameSource = errors.New("game path or builtin implementation is required")
	// ErrNoMatch indicates no registered game matched a selector.
	ErrNoMatch = errors.New("no games match the given selector")
)

// Spec holds the metadata required to locate and play a game.
type Spec struct {
	Name        string   `json:"game_name"`
	Description string   `json:"description,omitempty"`
	Path        string   `json:"game_path,omitempty"`
	MainGame    string   `json:"main_game,omitempty"`
	Players     int      `json:"players,omitempty"`
	Image       string   `json:"image,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Benchmark   []string `json:"benchmark,omitempty"`

	// Builtin marks specs backed by a compiled-in implementation rather
	// than a game directory.
	Builtin bool `json:"-"`
}

// Validate checks the minimal fields required to run the game.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Path) == "" && !s.Builtin {
		return ErrNoGameSource
	}
	return nil
}

// Selector narrows a registry down to matching specs. The zero value selects
// nothing; use ParseSelector to build one from CLI input.
type Selector struct {
	All       bool
	Name      string
	Benchmark []string
	Fields    map[string]string
}

// ParseSelector interprets CLI game selectors. Accepted forms are "all", a
// plain game name, or a JSON fragment such as {"main_game":"wordle"} or
// {"benchmark":["v2"]}.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("game selector is required")
	}
	if raw == "all" {
		return Selector{All: true}, nil
	}
	if !strings.HasPrefix(raw, "{") {
		return Selector{Name: raw}, nil
	}

	// CLI inputs often arrive with single quotes for shell convenience.
	normalized := strings.ReplaceAll(raw, "'", `"`)
	var fragment map[string]any
	if err := json.Unmarshal([]byte(normalized), &fragment); err != nil {
		return Selector{}, fmt.Errorf("parse game selector: %w", err)
	}

	selector := Selector{Fields: make(map[string]string)}
	for key, value := range fragment {
		switch typed := value.(type) {
		case string:
			if key == "game_name" {
				selector.Name = typed
				continue
			}
			selector.Fields[key] = typed
		case []any:
			if key != "benchmark" {
				return Selector{}, fmt.Errorf("selector key %q does not accept a list", key)
			}
			for _, item := range typed {
				version, ok := item.(string)
				if !ok {
					return Selector{}, fmt.Errorf("benchmark versions must be strings")
				}
				selector.Benchmark = append(selector.Benchmark, version)
			}
		default:
			return Selector{}, fmt.Errorf("selector key %q has unsupported value", key)
		}
	}
	return selector, nil
}

// Matches reports whether the spec satisfies the selector.
func (s Spec) Matches(selector Selector) bool {
	if selector.All {
		return true
	}
	if selector.Name != "" && s.Name != selector.Name {
		return false
	}
	if len(selector.Benchmark) > 0 {
		shared := false
		for _, version := range selector.Benchmark {
			if slices.Contains(s.Benchmark, version) {
				shared = true
				break
			}
		}
		if !shared {
			return false
		}
	}
	for key, value := range selector.Fields {
		switch key {
		case "main_game":
			if s.MainGame != value {
				return false
			}
		case "image":
			if s.Image != value {
				return false
			}
		case "language", "lang":
			if !slices.Contains(s.Languages, value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
