// Package taboo implements the taboo word guessing game. A describer gives
// clues for a target word without using the word itself or its related
// words; a guesser has a limited number of guesses.
package taboo

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
	Name     = "taboo"
	maxTurns = 3

	describer = "Player 1"
	guesser   = "Player 2"

	cluePrefix  = "CLUE:"
	guessPrefix = "GUESS:"
)

const describerPrompt = `You are playing a collaborative word guessing game in which you have to describe a target word for another player to guess.

Rules:
(a) You have to reply in the form: CLUE: <some text>. Guesses from the other player will start with GUESS.
(b) You cannot use the target word itself, parts or morphological variants of it in your description.
(c) In addition, the same rules apply for related words which are provided below.

End conditions:
(i) If you use the target word or a related word in your description, then you lose.
(ii) If the other player guesses the target word, you both win.

Let us start.

This is the target word that you need to describe and that the other player needs to guess:

%s

Related words are:

%s

Important: You are under time pressure, give short descriptions that are to the point!`

const guesserPrompt = `You are playing a collaborative word guessing game in which you have to guess a target word that another player describes to you.

You can make one guess at each trial. You have to reply in the form: GUESS: <a word>.

Let us start.

%s`

type instance struct {
	GameID       int      `json:"game_id"`
	TargetWord   string   `json:"target_word"`
	RelatedWords []string `json:"related_word"`
}

// Benchmark wires the taboo game into the benchmark registry.
type Benchmark struct{}

func (Benchmark) Spec() game.Spec {
	return game.Spec{
		Name:        Name,
		Description: "Taboo game between two agents where one has to describe a word for the other to guess.",
		MainGame:    Name,
		Players:     2,
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
	if len(models) != 2 {
		return nil, fmt.Errorf("%w: got %d, need 2", bench.ErrPlayerCount, len(models))
	}
	return &master{DialogueMaster: bench.NewDialogueMaster(), models: models}, nil
}

func (Benchmark) NewScorer() (scoring.Scorer, error) {
	return scorer{}, nil
}

type master struct {
	*bench.DialogueMaster
	models []model.Model
}

func (m *master) Play(ctx context.Context, raw json.RawMessage) error {
	var inst instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return fmt.Errorf("parse taboo instance: %w", err)
	}
	target := strings.ToLower(strings.TrimSpace(inst.TargetWord))
	if target == "" {
		return fmt.Errorf("taboo instance has no target word")
	}

	m.AddPlayer(describer, m.models[0])
	m.AddPlayer(guesser, m.models[1])

	for turn := 0; turn < maxTurns; turn++ {
		var describerMessage string
		if turn == 0 {
			describerMessage = fmt.Sprintf(describerPrompt, inst.TargetWord, strings.Join(inst.RelatedWords, ", "))
		}
		if describerMessage != "" {
			if err := m.AddMessage(describer, describerMessage); err != nil {
				return err
			}
		}

		clueCall, err := m.Prompt(ctx, describer)
		if err != nil {
			return err
		}
		clue, ok := parsePrefixed(clueCall.Text, cluePrefix)
		if !ok {
			m.Abort(fmt.Sprintf("clue must start with %s", cluePrefix))
			return nil
		}
		if word, found := containsTabooWord(clue, target, inst.RelatedWords); found {
			m.Abort(fmt.Sprintf("clue uses taboo word %q", word))
			return nil
		}
		m.LogEvent(records.GameMasterName, records.GameMasterName,
			records.Action{Type: records.ActionParse, Content: clueCall.Text, Expression: clue})

		var guesserMessage string
		if turn == 0 {
			guesserMessage = fmt.Sprintf(guesserPrompt, clueCall.Text)
		} else {
			guesserMessage = clueCall.Text
		}
		if err := m.AddMessage(guesser, guesserMessage); err != nil {
			return err
		}

		guessCall, err := m.Prompt(ctx, guesser)
		if err != nil {
			return err
		}
		guess, ok := parsePrefixed(guessCall.Text, guessPrefix)
		if !ok {
			m.Abort(fmt.Sprintf("guess must start with %s", guessPrefix))
			return nil
		}
		guess = normalizeWord(guess)
		m.LogEvent(records.GameMasterName, records.GameMasterName,
			records.Action{Type: records.ActionParse, Content: guessCall.Text, Guess: guess})

		if guess == target {
			m.LogToSelf(records.ActionMetadata, "target word guessed")
			m.NextTurn()
			return nil
		}
		m.NextTurn()

		if turn < maxTurns-1 {
			if err := m.AddMessage(describer, fmt.Sprintf("GUESS: %s. That was wrong, provide another clue.", guess)); err != nil {
				return err
			}
		}
	}
	return nil
}

// parsePrefixed checks the required response form and returns the payload.
func parsePrefixed(text, prefix string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < len(prefix) || !strings.EqualFold(text[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(text[len(prefix):]), true
}

// containsTabooWord reports whether the clue uses the target or a related
// word, including as part of a longer word.
func containsTabooWord(clue, target string, related []string) (string, bool) {
	lowered := strings.ToLower(clue)
	if strings.Contains(lowered, target) {
		return target, true
	}
	for _, word := range related {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(lowered, word) {
			return word, true
		}
	}
	return "", false
}

func normalizeWord(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	return strings.Trim(word, `.,!?"'`)
}
