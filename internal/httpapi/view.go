package httpapi

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-activityform/pkg/submission"
	"github.com/goliatone/go-activityform/pkg/validation"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const resultTemplate = "result.html"

// View renders submission outcomes as HTML for clients that ask for it.
type View struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewView builds a view over files. A nil files uses the embedded templates.
func NewView(files fs.FS, globals map[string]any) (*View, error) {
	if files == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("httpapi: embedded templates: %w", err)
		}
		files = sub
	}

	set := pongo2.NewSet("activityform", pongo2.NewFSLoader(files))
	set.Globals = make(pongo2.Context, len(globals))
	for key, value := range globals {
		if key = strings.TrimSpace(key); key != "" {
			set.Globals[key] = value
		}
	}

	return &View{
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the named template with data into w.
func (v *View) Render(w io.Writer, name string, data pongo2.Context) error {
	if v == nil || v.set == nil {
		return errors.New("httpapi: view is nil")
	}
	tmpl, err := v.template(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("httpapi: execute template %q: %w", name, err)
	}
	return nil
}

func (v *View) template(name string) (*pongo2.Template, error) {
	v.mu.RLock()
	if tmpl, ok := v.templates[name]; ok {
		v.mu.RUnlock()
		return tmpl, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if tmpl, ok := v.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := v.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("httpapi: load template %q: %w", name, err)
	}
	v.templates[name] = tmpl
	return tmpl, nil
}

// resultContext turns a response into template data. Submitted fields are
// listed in key order with the issues reported against each.
func resultContext(state submission.State, resp submission.Response, requestID string) pongo2.Context {
	var formErrors []string
	for _, issue := range resp.Issues {
		if issue.Path == "" {
			formErrors = append(formErrors, issue.Message)
		}
	}

	names := make([]string, 0, len(resp.Fields))
	for name := range resp.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]map[string]any, 0, len(names))
	for _, name := range names {
		fields = append(fields, map[string]any{
			"name":   name,
			"value":  resp.Fields[name],
			"errors": fieldErrors(resp.Issues, name),
		})
	}

	return pongo2.Context{
		"title":       resp.Message,
		"message":     resp.Message,
		"state":       state.String(),
		"activity_id": resp.ActivityID,
		"request_id":  requestID,
		"form_errors": formErrors,
		"fields":      fields,
	}
}

// fieldErrors returns the messages reported at name or below it.
func fieldErrors(issues []validation.Issue, name string) []string {
	field := validation.NormalizePath(name)
	var out []string
	for _, issue := range issues {
		path := validation.NormalizePath(issue.Path)
		if path == "" {
			continue
		}
		if path == field || strings.HasPrefix(path, field+".") {
			out = append(out, issue.Message)
		}
	}
	return out
}
