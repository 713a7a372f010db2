package eval

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// Report file names written next to the results tree.
const (
	CSVFile  = "bench-results.csv"
	HTMLFile = "bench-results.html"
)

// CSV renders the per-game and per-model numbers as one flat table. Summary
// rows use "all" in the game column.
func (r Report) CSV() ([]byte, error) {
	var out strings.Builder
	w := csv.NewWriter(&out)

	rows := [][]string{{"model", "game", "episodes", "aborted", "%played", "quality", "clemscore"}}
	for _, g := range r.Games {
		quality := "n/a"
		if g.HasQuality {
			quality = formatScore(g.Quality)
		}
		rows = append(rows, []string{
			g.Model, g.Game,
			strconv.Itoa(g.Episodes), strconv.Itoa(g.Aborted),
			formatScore(g.Played), quality, "",
		})
	}
	for _, m := range r.Models {
		rows = append(rows, []string{
			m.Model, "all",
			"", "",
			formatScore(m.Played), formatScore(m.Quality), formatScore(m.ClemScore),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	w.Flush()
	return []byte(out.String()), nil
}

var reportHTML = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Benchmark Results</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 52em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Benchmark Results</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
<h2>Models</h2>
<table>
<tr><th>Model</th><th>Clemscore</th><th>% Played</th><th>Quality</th><th>Games</th></tr>
{{range .Models}}<tr><td>{{.Model}}</td><td>{{printf "%.2f" .ClemScore}}</td><td>{{printf "%.2f" .Played}}</td><td>{{printf "%.2f" .Quality}}</td><td>{{.Games}}</td></tr>
{{end}}</table>
<h2>Games</h2>
<table>
<tr><th>Model</th><th>Game</th><th>Episodes</th><th>Aborted</th><th>% Played</th><th>Quality</th></tr>
{{range .Games}}<tr><td>{{.Model}}</td><td>{{.Game}}</td><td>{{.Episodes}}</td><td>{{.Aborted}}</td><td>{{printf "%.2f" .Played}}</td><td>{{if .HasQuality}}{{printf "%.2f" .Quality}}{{else}}n/a{{end}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// HTML renders the report as a standalone page.
func (r Report) HTML() ([]byte, error) {
	var out strings.Builder
	if err := reportHTML.Execute(&out, r); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return []byte(out.String()), nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
