// Package referencegame implements the one-turn reference game. Player 1
// sees three grids and produces a referring expression for the target;
// Player 2 sees the same grids in a different order and has to name the
// grid the expression refers to.
package referencegame

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
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
	Name = "referencegame"

	instructionGiver    = "Player 1"
	instructionFollower = "Player 2"

	expressionPlaceholder = "TARGET_EXPRESSION"
)

// Player 1 must answer with exactly one expression paragraph; Player 2 may
// ramble as long as the answer tag appears with a valid option.
var (
	giverPattern    = regexp.MustCompile(`(?i)^Expression:\s*(?P<content>[^\n]+)\n*(?s)(?P<remainder>.*)$`)
	followerPattern = regexp.MustCompile(`(?i)Answer:\s*(?P<content>first|second|third|1|2|3)`)
)

type instance struct {
	GameID         int    `json:"game_id"`
	Player1Prompt  string `json:"player_1_prompt"`
	Player2Prompt  string `json:"player_2_prompt"`
	TargetGridName string `json:"target_grid_name"`
}

// Benchmark wires the reference game into the benchmark registry.
type Benchmark struct{}

func (Benchmark) Spec() game.Spec {
	return game.Spec{
		Name:        Name,
		Description: "Reference game between two agents where one describes one of three grids and the other has to guess which one it is.",
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
		return fmt.Errorf("parse referencegame instance: %w", err)
	}
	if inst.Player1Prompt == "" || inst.Player2Prompt == "" {
		return fmt.Errorf("referencegame instance is missing prompts")
	}

	m.AddPlayer(instructionGiver, m.models[0])
	m.AddPlayer(instructionFollower, m.models[1])

	// One exchange of expression and answer makes up the whole episode.
	if err := m.AddMessage(instructionGiver, inst.Player1Prompt); err != nil {
		return err
	}
	giverCall, err := m.Prompt(ctx, instructionGiver)
	if err != nil {
		return err
	}

	expression, ok := parseExpression(giverCall.Text)
	if !ok {
		m.LogEvent(records.GameMasterName, records.GameMasterName, records.Action{
			Type:            records.ActionInvalidFormat,
			Content:         "invalid generated expression",
			OriginalContent: giverCall.Text,
		})
		m.Abort("invalid generated expression")
		return nil
	}
	m.LogEvent(records.GameMasterName, records.GameMasterName,
		records.Action{Type: records.ActionParse, Content: giverCall.Text, Expression: expression})

	followerPrompt := strings.ReplaceAll(inst.Player2Prompt, expressionPlaceholder, expression)
	if err := m.AddMessage(instructionFollower, followerPrompt); err != nil {
		return err
	}
	followerCall, err := m.Prompt(ctx, instructionFollower)
	if err != nil {
		return err
	}

	answer, ok := parseAnswer(followerCall.Text)
	if !ok {
		m.LogEvent(records.GameMasterName, records.GameMasterName, records.Action{
			Type:            records.ActionInvalidFormat,
			Content:         "invalid generated choice",
			OriginalContent: followerCall.Text,
		})
		m.Abort("invalid generated choice")
		return nil
	}
	m.LogEvent(records.GameMasterName, records.GameMasterName,
		records.Action{Type: records.ActionParse, Content: followerCall.Text, Answer: answer})

	m.NextTurn()
	return nil
}

// parseExpression enforces the strict form: the reply must start with the
// tag and contain nothing after the expression paragraph.
func parseExpression(text string) (string, bool) {
	match := giverPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", false
	}
	content := strings.TrimSpace(match[giverPattern.SubexpIndex("content")])
	remainder := strings.TrimSpace(match[giverPattern.SubexpIndex("remainder")])
	if remainder != "" {
		return "", false
	}
	return content, true
}

// parseAnswer accepts the tag anywhere in the reply and collects only the
// chosen option.
func parseAnswer(text string) (string, bool) {
	match := followerPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return strings.ToLower(match[followerPattern.SubexpIndex("content")]), true
}

// answerAliases maps a target grid name to every accepted answer form.
func answerAliases(target string) []string {
	target = strings.ToLower(strings.TrimSpace(target))
	names := []string{"first", "second", "third"}
	for i, name := range names {
		if target == name {
			return []string{name, fmt.Sprintf("%d", i+1)}
		}
	}
	return []string{target}
}
