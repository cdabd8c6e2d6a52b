package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"flight_booker/internal/validation"
)

//go:embed templates/*.html
var templates embed.FS

var funcs = template.FuncMap{
	"fieldErr": func(errs validation.Errors, field string) string {
		return errs.Get(validation.Field(field))
	},
}

// pages - по набору шаблонов на страницу: каждая определяет свои "content" и "scripts".
type pages map[string]*template.Template

func parsePages() (pages, error) {
	out := pages{}
	for _, name := range []string{"form", "list"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render выполняет шаблон в буфер, чтобы ошибка не оставила полстраницы в ответе.
func (p pages) render(w http.ResponseWriter, status int, page, tmpl string, data any) error {
	t, ok := p[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s/%s: %w", page, tmpl, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
