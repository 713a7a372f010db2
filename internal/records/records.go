// Package records defines the episode record types and the on-disk results
// tree produced by benchmark runs.
//
// The layout mirrors the established results structure:
//
//	results/<model-pair>/<game>/<idx>_<experiment>/episode_<n>/
//	    instance.json
//	    interactions.json
//	    requests.json
//	    scores.json
//	    transcript.html / transcript.md
package records

import (
	"encoding/json"
	"time"

	"github.com/clp-research/clembench-go/internal/model"
)

// GameMasterName is the reserved participant name of the game master.
const GameMasterName = "GM"

// Record file names within an episode directory.
const (
	InteractionsFile   = "interactions.json"
	RequestsFile       = "requests.json"
	InstanceFile       = "instance.json"
	ExperimentFile     = "experiment.json"
	ScoresFile         = "scores.json"
	TranscriptHTMLFile = "transcript.html"
	TranscriptMDFile   = "transcript.md"
)

// Action event types recorded by game masters.
const (
	ActionSendMessage      = "send message"
	ActionGetMessage       = "get message"
	ActionParse            = "parse"
	ActionInvalidFormat    = "invalid format"
	ActionMetadata         = "metadata"
	ActionSendMessageRetry = "send message (reprompt)"
)

// Action describes what happened in an interaction event.
type Action struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`

	// Parse results and abort context, set per game.
	Expression      string `json:"expression,omitempty"`
	Answer          string `json:"answer,omitempty"`
	Guess           string `json:"guess,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	OriginalContent string `json:"original_content,omitempty"`
}

// Event is one recorded interaction between participants.
type Event struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Action Action      `json:"action"`
	Call   *model.Call `json:"call,omitempty"`
}

// Interactions is the per-episode interaction log.
type Interactions struct {
	Players map[string]string `json:"players"`
	Turns   [][]Event         `json:"turns"`
}

// Request is one backend API call made during an episode.
type Request struct {
	Player    string          `json:"player"`
	Turn      int             `json:"turn"`
	Timestamp time.Time       `json:"timestamp"`
	Prompt    []model.Message `json:"prompt"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Text      string          `json:"text"`
}
