package records

import (
	"fmt"
	"html/template"
	"strings"
)

// transcriptHTML renders the chat-style episode view. Message alignment
// follows the sender: game master messages on the left, player replies on
// the right.
var transcriptHTML = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #f4f4f4; margin: 2em auto; max-width: 48em; }
h1 { font-size: 1.2em; }
.turn { margin: 1.5em 0; }
.turn-label { color: #888; font-size: 0.8em; text-transform: uppercase; }
.msg { border-radius: 0.6em; padding: 0.6em 1em; margin: 0.5em 0; white-space: pre-wrap; }
.msg .route { font-size: 0.75em; color: #666; margin-bottom: 0.3em; }
.from-gm { background: #e8eaf6; margin-right: 15%; }
.from-player { background: #dcedc8; margin-left: 15%; }
.internal { background: #fff3e0; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Turns}}<div class="turn">
<div class="turn-label">Turn {{.Index}}</div>
{{range .Messages}}<div class="msg {{.Class}}">
<div class="route">{{.From}} &rarr; {{.To}} [{{.Type}}]</div>
{{.Content}}</div>
{{end}}</div>
{{end}}</body>
</html>
`))

type transcriptPage struct {
	Title string
	Turns []transcriptTurn
}

type transcriptTurn struct {
	Index    int
	Messages []transcriptMessage
}

type transcriptMessage struct {
	From    string
	To      string
	Type    string
	Class   string
	Content string
}

// TranscriptHTML renders interactions as a standalone HTML page.
func TranscriptHTML(title string, interactions Interactions) ([]byte, error) {
	page := transcriptPage{Title: title}
	for i, turn := range interactions.Turns {
		rendered := transcriptTurn{Index: i}
		for _, event := range turn {
			rendered.Messages = append(rendered.Messages, transcriptMessage{
				From:    event.From,
				To:      event.To,
				Type:    event.Action.Type,
				Class:   messageClass(event),
				Content: event.Action.Content,
			})
		}
		page.Turns = append(page.Turns, rendered)
	}

	var out strings.Builder
	if err := transcriptHTML.Execute(&out, page); err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	return []byte(out.String()), nil
}

func messageClass(event Event) string {
	switch {
	case event.From == GameMasterName && event.To == GameMasterName:
		return "internal"
	case event.From == GameMasterName:
		return "from-gm"
	default:
		return "from-player"
	}
}

// TranscriptMarkdown renders interactions as a readable markdown log.
func TranscriptMarkdown(title string, interactions Interactions) []byte {
	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n", title)
	for i, turn := range interactions.Turns {
		fmt.Fprintf(&out, "\n## Turn %d\n", i)
		for _, event := range turn {
			fmt.Fprintf(&out, "\n**%s → %s** [%s]\n", event.From, event.To, event.Action.Type)
			if event.Action.Content != "" {
				for _, line := range strings.Split(event.Action.Content, "\n") {
					fmt.Fprintf(&out, "> %s\n", line)
				}
			}
		}
	}
	return []byte(out.String())
}
