// Package bench runs benchmark episodes: it wires game masters to models,
// drives the dialogue turn by turn and produces the episode records.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/records"
)

var (
	ErrUnknownPlayer = errors.New("bench: unknown player")
	ErrAborted       = errors.New("bench: episode aborted")
)

// DialogueMaster keeps per-player conversation state and records every
// interaction. Game masters embed it and drive the game rules on top.
type DialogueMaster struct {
	now func() time.Time

	order     []string
	models    map[string]model.Model
	histories map[string][]model.Message

	turns   [][]records.Event
	current []records.Event

	requests []records.Request

	turn        int
	aborted     bool
	abortReason string
}

func NewDialogueMaster() *DialogueMaster {
	return &DialogueMaster{
		now:       time.Now,
		models:    make(map[string]model.Model),
		histories: make(map[string][]model.Message),
	}
}

// AddPlayer registers a named participant backed by a model.
func (d *DialogueMaster) AddPlayer(name string, m model.Model) {
	if _, ok := d.models[name]; ok {
		return
	}
	d.order = append(d.order, name)
	d.models[name] = m
}

// AddMessage appends a user message to a player's history and records the
// send event.
func (d *DialogueMaster) AddMessage(player, content string) error {
	if _, ok := d.models[player]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}
	d.histories[player] = append(d.histories[player], model.Message{Role: model.RoleUser, Content: content})
	d.LogEvent(records.GameMasterName, player, records.Action{Type: records.ActionSendMessage, Content: content})
	return nil
}

// AddSystemMessage sets the initial system message of a player's history.
func (d *DialogueMaster) AddSystemMessage(player, content string) error {
	if _, ok := d.models[player]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}
	if len(d.histories[player]) > 0 {
		return fmt.Errorf("bench: system message must come first for %s", player)
	}
	d.histories[player] = append(d.histories[player], model.Message{Role: model.RoleSystem, Content: content})
	return nil
}

// Prompt generates the player's next response from its current history. The
// call is recorded as a request and a "get message" event, and the response
// is appended to the history.
func (d *DialogueMaster) Prompt(ctx context.Context, player string) (model.Call, error) {
	m, ok := d.models[player]
	if !ok {
		return model.Call{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}

	call, err := m.Generate(ctx, d.histories[player])
	if err != nil {
		return model.Call{}, fmt.Errorf("prompt %s: %w", player, err)
	}

	d.histories[player] = append(d.histories[player], model.Message{Role: model.RoleAssistant, Content: call.Text})
	d.requests = append(d.requests, records.Request{
		Player:    player,
		Turn:      d.turn,
		Timestamp: d.now().UTC(),
		Prompt:    call.Prompt,
		Raw:       call.Raw,
		Text:      call.Text,
	})
	recorded := call
	d.LogEvent(player, records.GameMasterName, records.Action{Type: records.ActionGetMessage, Content: call.Text}, &recorded)
	return call, nil
}

// LogEvent records an interaction event in the current turn. An optional
// call attaches the backend exchange behind a "get message" event.
func (d *DialogueMaster) LogEvent(from, to string, action records.Action, call ...*model.Call) {
	event := records.Event{From: from, To: to, Action: action}
	if len(call) > 0 {
		event.Call = call[0]
	}
	d.current = append(d.current, event)
}

// LogToSelf records a game master note, e.g. a parse result.
func (d *DialogueMaster) LogToSelf(actionType, content string) {
	d.LogEvent(records.GameMasterName, records.GameMasterName, records.Action{Type: actionType, Content: content})
}

// Abort ends the episode because a player broke the game's form rules.
func (d *DialogueMaster) Abort(reason string) {
	d.aborted = true
	d.abortReason = reason
	d.LogToSelf(records.ActionInvalidFormat, reason)
}

func (d *DialogueMaster) Aborted() bool { return d.aborted }

func (d *DialogueMaster) AbortReason() string { return d.abortReason }

// NextTurn closes the current turn.
func (d *DialogueMaster) NextTurn() {
	d.turns = append(d.turns, d.current)
	d.current = nil
	d.turn++
}

func (d *DialogueMaster) CurrentTurn() int { return d.turn }

// History returns a copy of a player's conversation so far.
func (d *DialogueMaster) History(player string) []model.Message {
	history := d.histories[player]
	out := make([]model.Message, len(history))
	copy(out, history)
	return out
}

// Interactions assembles the episode's interaction log, including any
// events of an unfinished final turn.
func (d *DialogueMaster) Interactions() records.Interactions {
	players := map[string]string{records.GameMasterName: "programmatic"}
	for _, name := range d.order {
		players[name] = d.models[name].Name()
	}

	turns := make([][]records.Event, len(d.turns), len(d.turns)+1)
	copy(turns, d.turns)
	if len(d.current) > 0 {
		turns = append(turns, d.current)
	}
	return records.Interactions{Players: players, Turns: turns}
}

// Requests returns every backend call made during the episode.
func (d *DialogueMaster) Requests() []records.Request {
	out := make([]records.Request, len(d.requests))
	copy(out, d.requests)
	return out
}
