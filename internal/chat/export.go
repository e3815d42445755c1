package chat

import (
	"html/template"
	"io"
	"time"

	"github.com/abhisek/cbseprep/internal/markup"
	"github.com/abhisek/cbseprep/internal/query"
)

var exportTmpl = template.Must(template.New("session").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
.user { background: #eef2ff; padding: .75rem 1rem; border-radius: .5rem; }
.model { padding: .25rem 1rem; border-left: 3px solid #6366f1; margin: 1rem 0 2rem; }
.meta { color: #6b7280; font-size: .875rem; }
.src { color: #6b7280; font-size: .875rem; margin: .25rem 0; padding-left: 1.25rem; }
.kw { background: #f3f4f6; border-radius: .25rem; padding: 0 .35rem; margin-right: .25rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Subject}} · {{.Updated}}</p>
{{range .Messages}}{{if .User}}<div class="user"><p>{{.Text}}</p>{{if .Marks}}<p class="meta">{{.Marks}} marks</p>{{end}}</div>
{{else}}<div class="model">{{.Body}}{{if .Chapter}}<p class="meta">Chapter: {{.Chapter}}</p>{{end}}{{if .Sources}}<ul class="src">{{range .Sources}}<li>{{.Label}} ({{.Percent}}%)</li>{{end}}</ul>{{end}}{{if .Keywords}}<p>{{range .Keywords}}<span class="kw">{{.}}</span>{{end}}</p>{{end}}</div>
{{end}}{{end}}</body>
</html>
`))

type exportMessage struct {
	User     bool
	Text     string
	Marks    int
	Body     template.HTML
	Chapter  string
	Sources  []SourceRef
	Keywords []string
}

// ExportHTML writes s as a standalone HTML page. Answers go through the
// markup whitelist; everything else is escaped by the template.
func ExportHTML(w io.Writer, subject string, s Session) error {
	data := struct {
		Title    string
		Subject  string
		Updated  string
		Messages []exportMessage
	}{
		Title:   s.Title,
		Subject: subject,
		Updated: time.UnixMilli(s.Timestamp).Format("2 Jan 2006 15:04"),
	}

	for _, m := range s.Messages {
		if m.Role == query.RoleUser {
			data.Messages = append(data.Messages, exportMessage{User: true, Text: m.Content, Marks: m.Marks})
			continue
		}
		data.Messages = append(data.Messages, exportMessage{
			Body:     template.HTML(markup.HTML(markup.Parse(m.Content))),
			Chapter:  m.Chapter,
			Sources:  m.Sources,
			Keywords: m.Keywords,
		})
	}
	return exportTmpl.Execute(w, data)
}
