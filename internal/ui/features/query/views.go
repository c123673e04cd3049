package query

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/completion"
)

var templates = template.Must(template.New("query").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}).Parse(`
{{define "results"}}
<div id="query-results">
	{{if .Message}}
	<div class="result-message {{if .IsError}}result-error{{else}}result-ok{{end}}">{{.Message}}</div>
	{{end}}
	{{if .Columns}}
	<div class="result-toolbar">
		<input type="text" placeholder="Search results..." data-bind-searchTerm
			data-on-input__debounce.300ms="@post('/api/query/results')">
		<a href="/api/query/export.csv?term={{.SearchTerm}}" class="export-link">Export CSV</a>
	</div>
	<table class="result-table">
		<thead>
			<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
		</thead>
		<tbody>
			{{range .Rows}}
			<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
			{{end}}
		</tbody>
	</table>
	{{if gt .PageCount 1}}
	<div class="pager">
		<button {{if le .Page 1}}disabled{{end}}
			data-on-click="$page = {{sub .Page 1}}; @post('/api/query/results')">Prev</button>
		<span>Page {{.Page}} of {{.PageCount}}</span>
		<button {{if ge .Page .PageCount}}disabled{{end}}
			data-on-click="$page = {{add .Page 1}}; @post('/api/query/results')">Next</button>
	</div>
	{{end}}
	{{end}}
</div>
{{end}}

{{define "log"}}
<div id="query-log">
	<h3>Log</h3>
	<ul class="log-entries">
		{{range .Entries}}
		<li class="log-{{.Status}}">
			<span class="log-time">{{.Time}}</span>
			<span class="log-message">{{.Message}}</span>
			<span class="log-duration">{{.DurationMS}}ms</span>
		</li>
		{{end}}
	</ul>
</div>
{{end}}

{{define "saved"}}
<div id="saved-queries">
	<h3>Saved Queries</h3>
	<ul>
		{{range .}}
		<li>
			<button class="saved-name" data-on-click="@post('/api/saved/{{.ID}}/load')">{{.Name}}</button>
			<button class="saved-delete" data-on-click="@delete('/api/saved/{{.ID}}')">&times;</button>
		</li>
		{{end}}
	</ul>
</div>
{{end}}

{{define "history"}}
<div id="query-history">
	<h3>History</h3>
	<ul>
		{{range .}}
		<li>
			<button class="history-query" data-on-click="@post('/api/history/{{.ID}}/load')">{{.Query}}</button>
		</li>
		{{end}}
	</ul>
</div>
{{end}}

{{define "completion"}}
<div id="autocomplete">
	{{if .}}
	<ul class="completion-items">
		{{range .}}
		<li class="completion-{{.Kind}}" data-on-click="$sql = $sql + '{{.Label}}'">
			<span class="completion-label">{{.Label}}</span>
			{{if .Detail}}<span class="completion-detail">{{.Detail}}</span>{{end}}
		</li>
		{{end}}
	</ul>
	{{end}}
</div>
{{end}}

{{define "notice"}}
<div id="notice" {{if .}}class="notice-visible"{{end}}>{{.}}</div>
{{end}}

{{define "scripts"}}
<div id="workspace-scripts">
	<h3>Scripts</h3>
	<ul>
		{{range .}}
		<li>
			<button data-on-click="@post('/api/scripts/{{.Name}}/load')">{{.Name}}</button>
		</li>
		{{end}}
	</ul>
</div>
{{end}}
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>QueryBench</title>
	<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
	<link rel="stylesheet" href="/static/app.css">
</head>
<body data-signals="{sql: {{.SQL}}, searchTerm: '', page: 1, saveName: '', before: ''}"
	data-on-load="@get('/api/query/updates')">
	<header>
		<h1>QueryBench</h1>
	</header>
	<main class="workbench">
		<section class="editor-pane">
			<textarea id="sql-editor" data-bind-sql
				data-on-keyup__debounce.200ms="$before = evt.target.value.slice(0, evt.target.selectionStart); @post('/api/query/complete')"
				placeholder="SELECT * FROM users"></textarea>
			<div id="autocomplete"></div>
			<div class="editor-actions">
				<button data-on-click="@post('/api/query/run')">Run</button>
				<input type="text" placeholder="Name this query" data-bind-saveName>
				<button data-on-click="@post('/api/saved')">Save</button>
			</div>
			<div id="notice"></div>
		</section>
		<section class="results-pane">
			{{.Results}}
			{{.Log}}
		</section>
		<aside class="side-pane">
			{{.Saved}}
			{{.History}}
			{{.Scripts}}
		</aside>
	</main>
</body>
</html>
`))

// pageData is the data for the full page shell. SQL is the JSON-quoted
// editor buffer restored from the session.
type pageData struct {
	SQL     template.JS
	Results template.HTML
	Log     template.HTML
	Saved   template.HTML
	History template.HTML
	Scripts template.HTML
}

// renderFragment executes a named template and returns the markup.
func renderFragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderResults(v resultsView) (string, error)            { return renderFragment("results", v) }
func renderLog(v logView) (string, error)                    { return renderFragment("log", v) }
func renderSaved(qs []artifacts.SavedQuery) (string, error)  { return renderFragment("saved", qs) }
func renderHistory(hs []artifacts.HistoryItem) (string, error) {
	return renderFragment("history", hs)
}
func renderCompletion(items []completion.Item) (string, error) {
	return renderFragment("completion", items)
}
func renderNotice(message string) (string, error)  { return renderFragment("notice", message) }
func renderScripts(ss []scriptItem) (string, error) { return renderFragment("scripts", ss) }
