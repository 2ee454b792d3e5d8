// Package render turns protocol events into the tab-separated log lines
// written by the analyzer.
//
// Lookup order for an event: the record-type table, then the status table.
// Events matching neither produce no output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwprot/bwprotanalyzer/pkg/color"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
	"github.com/bwprot/bwprotanalyzer/pkg/template"
)

// placeholders available to message templates.
var placeholders = []string{"date", "type", "user", "index", "info", "index_info"}

// Placeholders returns the names a message template may reference.
func Placeholders() []string {
	return append([]string(nil), placeholders...)
}

// Options configures a Renderer.
type Options struct {
	// Overrides adds or replaces record-type templates, keyed by type code.
	Overrides map[string]Template
	// Colorize highlights the keyword column with ANSI colors.
	Colorize bool
}

// Renderer formats events. It is safe for concurrent use after New returns.
type Renderer struct {
	types    map[string]Template
	colorize bool
}

// New builds a Renderer from the built-in tables plus opts.Overrides.
func New(opts Options) (*Renderer, error) {
	types := make(map[string]Template, len(typeTemplates)+len(opts.Overrides))
	for code, t := range typeTemplates {
		types[code] = t
	}
	for code, t := range opts.Overrides {
		if t.Keyword == "" || t.Message == "" {
			return nil, errclass.ErrConfigInvalid.WithMessagef("template %s: keyword and message are required", code)
		}
		if bad := template.Unknown(t.Message, placeholders); len(bad) > 0 {
			return nil, errclass.ErrConfigInvalid.WithMessagef("template %s: unknown placeholders %s", code, strings.Join(bad, ", "))
		}
		types[code] = t
	}
	return &Renderer{types: types, colorize: opts.Colorize}, nil
}

// Render returns the text block for e. ok is false when neither table knows
// the event, in which case nothing should be written.
func (r *Renderer) Render(e model.Event) (text string, ok bool) {
	vars := eventVars(e)

	if t, found := r.types[e.RecordType]; found {
		return r.line(e, t.Keyword, template.Expand(t.Message, vars)), true
	}

	t, found := statusTemplates[e.Status]
	if !found {
		return "", false
	}
	msg := template.Expand(t.Message, vars)
	if e.Status != model.StatusChange {
		return r.line(e, t.Keyword, msg), true
	}

	var changes []string
	for _, c := range e.Changes {
		if !c.Changed() {
			continue
		}
		changes = append(changes, fmt.Sprintf("    %s: %s -> %s", c.Field, strings.TrimSpace(c.PreviousValue), strings.TrimSpace(c.Value)))
	}
	if len(changes) == 0 {
		return r.line(e, t.Keyword, msg+noChangesSuffix), true
	}
	return r.line(e, t.Keyword, msg) + "\n" + strings.Join(changes, "\n"), true
}

func (r *Renderer) line(e model.Event, keyword, msg string) string {
	if r.colorize {
		keyword = colorKeyword(keyword)
	}
	return strings.Join([]string{
		e.Timestamp.Format(model.TimestampLayout),
		e.RecordType,
		keyword,
		e.User,
		msg,
	}, "\t")
}

func colorKeyword(keyword string) string {
	switch keyword {
	case "NEW":
		return color.Success(keyword)
	case "CHANGE":
		return color.Highlight(keyword)
	case "DELETE", "DELETEWANDL":
		return color.Error(keyword)
	case "PRINT":
		return color.Info(keyword)
	default:
		return color.Dim(keyword)
	}
}

func eventVars(e model.Event) map[string]string {
	return map[string]string{
		"date":       e.Timestamp.Format(model.TimestampLayout),
		"type":       e.RecordType,
		"user":       e.User,
		"index":      e.RecordIndex,
		"info":       strings.TrimSpace(e.Info),
		"index_info": e.IndexInfo,
	}
}

// Types returns the record-type codes with a dedicated template, sorted.
func (r *Renderer) Types() []string {
	codes := make([]string, 0, len(r.types))
	for code := range r.types {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Template returns the template registered for a record type.
func (r *Renderer) Template(code string) (Template, bool) {
	t, ok := r.types[code]
	return t, ok
}
