package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// markdown renders announcement bodies. Raw HTML in the source is escaped
// because WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var urgentTemplate = template.Must(template.New("urgent").Parse(`<!doctype html>
<html><body style="font-family:sans-serif;max-width:600px;margin:auto">
<p style="color:#b91c1c;font-weight:bold;text-transform:uppercase">Urgent{{if .Category}} · {{.Category}}{{end}}{{if .Tag}} · {{.Tag}}{{end}}</p>
<h1 style="font-size:20px">{{.Title}}</h1>
<div>{{.Body}}</div>
<p style="color:#6b7280;font-size:12px">Sent by FUTO Connect</p>
</body></html>`))

// UrgentMessage is the content of an urgent-announcement broadcast.
type UrgentMessage struct {
	Title       string
	Description string // Markdown
	Category    string
	Tag         string
}

// RenderUrgent builds the subject line and HTML body for an urgent announcement.
// PRE: msg.Title is non-empty
// POST: Description is rendered from Markdown; all other fields are HTML-escaped
func RenderUrgent(msg UrgentMessage) (subject, html string, err error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(msg.Description), &body); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err = urgentTemplate.Execute(&out, struct {
		Title, Category, Tag string
		Body                 template.HTML
	}{
		Title:    msg.Title,
		Category: msg.Category,
		Tag:      msg.Tag,
		Body:     template.HTML(body.String()),
	})
	if err != nil {
		return "", "", fmt.Errorf("render urgent email: %w", err)
	}
	return "[URGENT] " + msg.Title, out.String(), nil
}
