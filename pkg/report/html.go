package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dtnitsch/dead-link-audit/models"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"statusLabel": statusLabel,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Dead Link Audit Report</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.summary { display: flex; gap: 1.5rem; flex-wrap: wrap; margin: 1rem 0 2rem; }
.summary div { background: #f4f4f4; border-radius: 6px; padding: 0.8rem 1.2rem; }
.summary strong { display: block; font-size: 1.3rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 0.5rem 0.7rem; text-align: left; vertical-align: top; font-size: 0.9rem; }
th { background: #f4f4f4; }
.ok { color: #1a7f37; font-size: 1.1rem; margin: 2rem 0; }
.retryable { color: #9a6700; }
.context { color: #666; font-style: italic; }
ul { margin: 0.2rem 0; padding-left: 1.1rem; }
</style>
</head>
<body>
<h1>Dead Link Audit Report</h1>
<div class="summary">
<div><strong>{{.Summary.TotalLinks}}</strong>total links</div>
<div><strong>{{.Summary.CheckedLinks}}</strong>checked</div>
<div><strong>{{.Summary.WorkingLinks}}</strong>working</div>
<div><strong>{{.Summary.DeadLinks}}</strong>dead</div>
<div><strong>{{.Summary.SkippedLinks}}</strong>skipped</div>
<div><strong>{{printf "%.1fs" .Summary.DurationSeconds}}</strong>duration</div>
</div>
{{if .DeadLinks}}
<table>
<tr><th>URL</th><th>Status</th><th>Post</th><th>Context</th><th>Recovery</th></tr>
{{range .DeadLinks}}
<tr>
<td><a href="{{.URL}}">{{.URL}}</a></td>
<td{{if .Retryable}} class="retryable"{{end}}>{{statusLabel .}}{{if .Error}}<br>{{.Error}}{{end}}</td>
<td>{{.PostTitle}}</td>
<td class="context">{{.Context}}</td>
<td>
{{if .ArchiveURL}}<a href="{{.ArchiveURL}}">archived snapshots</a>{{end}}
{{if .Suggestions}}<ul>{{range .Suggestions}}<li>{{.}}</li>{{end}}</ul>{{end}}
</td>
</tr>
{{end}}
</table>
{{else}}
<p class="ok">No dead links found. Every outbound link responded.</p>
{{end}}
</body>
</html>
`))

type htmlData struct {
	Summary   summary
	DeadLinks []models.DeadLink
}

// WriteHTML exports a self-contained printable report with a summary
// panel and a results table.
func WriteHTML(w io.Writer, result *models.LinkCheckResult) error {
	data := htmlData{
		Summary:   buildSummary(result),
		DeadLinks: result.DeadLinks,
	}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
