// Package views renders the HTML pages of the site from embedded html/template files.
// Every page is executed inside a layout together with the shared partials.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageHome        = "home"
	PageEventDetail = "event_detail"
	PageEventForm   = "event_form"
	PageProfile     = "profile"
	PageSignIn      = "sign_in"
	PageError       = "error"
)

// pageLayouts maps each page to the layout it renders in.
var pageLayouts = map[string]string{
	PageHome:        "root",
	PageEventDetail: "root",
	PageEventForm:   "root",
	PageProfile:     "root",
	PageError:       "root",
	PageSignIn:      "auth",
}

const dateLayout = "Mon, Jan 2, 2006 3:04 PM"

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	},
	"price": func(isFree bool, price string) string {
		if isFree || price == "" {
			return "FREE"
		}
		return "$" + price
	},
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page with its layout and the shared partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageLayouts))}
	for page, layout := range pageLayouts {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layouts/"+layout+".html",
			"templates/partials/*.html",
			"templates/pages/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page with data into w. Output is buffered so a template error
// never leaves a half-written page behind.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
