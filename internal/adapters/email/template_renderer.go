package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"evently/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// Each email is three files under templates/: <name>_subject.txt, <name>.txt and <name>.html.
const eventPublished = "event_published"

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

type templateRenderer struct{}

// NewTemplateRenderer returns the renderer for the embedded email templates.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return templateRenderer{}
}

// RenderEventPublished renders the notice sent to an organizer once their event is live.
func (templateRenderer) RenderEventPublished(data *domain.EventPublishedEmailData) (domain.EmailMessage, error) {
	if data == nil {
		return domain.EmailMessage{}, fmt.Errorf("%s: nil data", eventPublished)
	}
	msg, err := render(eventPublished, data)
	if err != nil {
		return domain.EmailMessage{}, err
	}
	msg.To = data.Email
	return msg, nil
}

func render(name string, data any) (domain.EmailMessage, error) {
	var subject, text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&subject, name+"_subject.txt", data); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", data); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render %s html: %w", name, err)
	}
	return domain.EmailMessage{
		// a subject is a single header line
		Subject: strings.Join(strings.Fields(subject.String()), " "),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
