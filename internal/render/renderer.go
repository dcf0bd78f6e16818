package render

import (
	"bytes"
	"encoding/json"
	"feedloader/internal/domain"
	"fmt"
	"html/template"
)

// DefaultItemTemplate отображает типичную запись ленты.
const DefaultItemTemplate = `<article class="feed-item">` +
	`{{with .title}}<h3>{{.}}</h3>{{end}}` +
	`{{with .content}}<p>{{.}}</p>{{end}}` +
	`{{with .link}}<a href="{{.}}">read</a>{{end}}` +
	`</article>`

// TemplateRenderer отображает запись через html/template; поля записи
// доступны в шаблоне как .<имя поля>.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer(text string) (*TemplateRenderer, error) {
	if text == "" {
		text = DefaultItemTemplate
	}
	tmpl, err := template.New("item").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item template: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render реализует engine.Renderer. Запись, которую нельзя отобразить шаблоном,
// выводится как экранированный JSON.
func (r *TemplateRenderer) Render(item domain.Item) string {
	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil {
		return fallback(item)
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, fields); err != nil {
		return fallback(item)
	}
	return buf.String()
}

func fallback(item domain.Item) string {
	return "<pre>" + template.HTMLEscapeString(string(item)) + "</pre>"
}
