// Package wordle implements the wordle letter guessing game. A single
// guesser has six attempts at a five letter target word and receives
// per-letter feedback after every guess.
package wordle

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clp-research/clembench-go/internal/bench"
	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

//go:embed in/instances.json
var resources embed.FS

const (
	Name        = "wordle"
	wordLength  = 5
	maxAttempts = 6

	guesserName = "Player 1"
	guessPrefix = "guess:"
)

const guesserPrompt = `You are playing the popular word guessing game wordle. You have to guess a five letter word in at most six attempts.

Rules:
(a) You have to reply in the form: guess: <a five letter word>. Do not generate any other text.
(b) After each guess you receive feedback for every letter: <green> means the letter is at the correct position, <yellow> means the letter is in the word but at another position, <red> means the letter is not in the word.

Let us start. Make your first guess.`

type instance struct {
	GameID     int    `json:"game_id"`
	TargetWord string `json:"target_word"`
}

// Benchmark wires the wordle game into the benchmark registry.
type Benchmark struct{}

func (Benchmark) Spec() game.Spec {
	return game.Spec{
		Name:        Name,
		Description: "Wordle game where a single agent has to guess a five letter word from letter feedback.",
		MainGame:    Name,
		Players:     1,
		Image:       "none",
		Languages:   []string{"en"},
		Benchmark:   []string{"v1"},
		Builtin:     true,
	}
}

func (Benchmark) Instances() (game.Instances, error) {
	return game.LoadInstancesFS(resources, "")
}

func (Benchmark) NewMaster(_ game.Experiment, models []model.Model) (bench.Master, error) {
	if len(models) != 1 {
		return nil, fmt.Errorf("%w: got %d, need 1", bench.ErrPlayerCount, len(models))
	}
	return &master{DialogueMaster: bench.NewDialogueMaster(), model: models[0]}, nil
}

func (Benchmark) NewScorer() (scoring.Scorer, error) {
	return scorer{}, nil
}

type master struct {
	*bench.DialogueMaster
	model model.Model
}

func (m *master) Play(ctx context.Context, raw json.RawMessage) error {
	var inst instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return fmt.Errorf("parse wordle instance: %w", err)
	}
	target := strings.ToLower(strings.TrimSpace(inst.TargetWord))
	if len(target) != wordLength {
		return fmt.Errorf("wordle target %q must have %d letters", inst.TargetWord, wordLength)
	}

	m.AddPlayer(guesserName, m.model)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var message string
		if attempt == 0 {
			message = guesserPrompt
		}
		if message != "" {
			if err := m.AddMessage(guesserName, message); err != nil {
				return err
			}
		}

		call, err := m.Prompt(ctx, guesserName)
		if err != nil {
			return err
		}
		guess, ok := parseGuess(call.Text)
		if !ok {
			m.Abort(fmt.Sprintf("response must be %s <a %d letter word>", guessPrefix, wordLength))
			return nil
		}

		feedback := letterFeedback(guess, target)
		m.LogEvent(records.GameMasterName, records.GameMasterName,
			records.Action{Type: records.ActionParse, Content: call.Text, Guess: guess, Feedback: feedback})

		if guess == target {
			m.LogToSelf(records.ActionMetadata, "target word guessed")
			m.NextTurn()
			return nil
		}
		m.NextTurn()

		if attempt < maxAttempts-1 {
			if err := m.AddMessage(guesserName, fmt.Sprintf("guess_feedback: %s", feedback)); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseGuess enforces the "guess: <word>" form with exactly five letters.
func parseGuess(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < len(guessPrefix) || !strings.EqualFold(text[:len(guessPrefix)], guessPrefix) {
		return "", false
	}
	word := strings.ToLower(strings.TrimSpace(text[len(guessPrefix):]))
	if len(word) != wordLength {
		return "", false
	}
	for _, r := range word {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}
	return word, true
}

// letterFeedback renders wordle feedback, e.g. "a<yellow> p<green> ...".
// Letters occurring more often in the guess than in the target are marked
// red once the target's occurrences are used up.
func letterFeedback(guess, target string) string {
	marks := make([]string, wordLength)
	remaining := make(map[byte]int)

	for i := 0; i < wordLength; i++ {
		if guess[i] == target[i] {
			marks[i] = "green"
		} else {
			remaining[target[i]]++
		}
	}
	for i := 0; i < wordLength; i++ {
		if marks[i] != "" {
			continue
		}
		if remaining[guess[i]] > 0 {
			marks[i] = "yellow"
			remaining[guess[i]]--
		} else {
			marks[i] = "red"
		}
	}

	parts := make([]string, wordLength)
	for i := 0; i < wordLength; i++ {
		parts[i] = fmt.Sprintf("%c<%s>", guess[i], marks[i])
	}
	return strings.Join(parts, " ")
}
