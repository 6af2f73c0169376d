// Package prompt builds the outbound analysis prompt from a named instruction
// template, an optional user addendum and the decoded scripts.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed templates/*.twig
var builtinFS embed.FS

// DefaultTemplate is used when a request names no template.
const DefaultTemplate = "comparative"

var (
	ErrUnknownTemplate = errors.New("unknown prompt template")
	ErrNoScripts       = errors.New("at least one script is required")
)

var descriptions = map[string]string{
	"comparative":       "Full comparative analysis: executive summary, synopses, key dialogues, development analysis, recommendations.",
	"comparative-brief": "Short comparative review under 700 words with the top three fixes.",
	"episode-breakdown": "Per-script coverage with scene breakdowns, then continuity across scripts.",
	"character-arcs":    "Character arcs, relationships and voice consistency across scripts.",
	"dialogue-craft":    "Dialogue quality, standout and weak lines, Hinglish code-switching.",
}

// Template is one named instruction template. Body is Twig source and may
// reference {{ count }}, the number of scripts being analysed.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Body        string `json:"-"`
}

// Library renders instruction templates. It is immutable after construction
// and safe for concurrent use.
type Library struct {
	env       *stick.Env
	templates map[string]Template
	def       string
}

// Option configures a Library.
type Option func(*Library) error

// WithFS loads every *.twig file under dir, keyed by base name.
func WithFS(fsys fs.FS, dir string) Option {
	return func(l *Library) error {
		return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".twig") {
				return nil
			}
			content, readErr := fs.ReadFile(fsys, p)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", p, readErr)
			}
			name := strings.TrimSuffix(path.Base(p), ".twig")
			l.templates[name] = Template{Name: name, Description: descriptions[name], Body: string(content)}
			return nil
		})
	}
}

// WithTemplate adds or replaces one template.
func WithTemplate(name, body string) Option {
	return func(l *Library) error {
		if name == "" {
			return errors.New("template name required")
		}
		l.templates[name] = Template{Name: name, Description: descriptions[name], Body: body}
		return nil
	}
}

// WithDefault selects the template used for an empty name.
func WithDefault(name string) Option {
	return func(l *Library) error {
		l.def = name
		return nil
	}
}

// NewLibrary builds a Library from the embedded templates plus opts.
func NewLibrary(opts ...Option) (*Library, error) {
	l := &Library{
		env:       stick.New(nil),
		templates: make(map[string]Template),
		def:       DefaultTemplate,
	}
	opts = append([]Option{WithFS(builtinFS, "templates")}, opts...)
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if _, ok := l.templates[l.def]; !ok {
		return nil, fmt.Errorf("default template %q: %w", l.def, ErrUnknownTemplate)
	}
	return l, nil
}

// Lookup resolves name, with "" meaning the default template.
func (l *Library) Lookup(name string) (Template, error) {
	if name == "" {
		name = l.def
	}
	t, ok := l.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Templates lists all templates sorted by name.
func (l *Library) Templates() []Template {
	out := make([]Template, 0, len(l.templates))
	for _, t := range l.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Default returns the name of the default template.
func (l *Library) Default() string { return l.def }

// Render executes t with count bound to the number of scripts.
func (l *Library) Render(t Template, count int) (string, error) {
	ctx := map[string]stick.Value{
		"count": count,
	}
	var out strings.Builder
	if err := l.env.Execute(t.Body, &out, ctx); err != nil {
		return "", fmt.Errorf("render %q: %w", t.Name, err)
	}
	return out.String(), nil
}

// Compose renders the named template for len(scripts) scripts and assembles
// the full prompt.
func (l *Library) Compose(name, addendum string, scripts []string) (string, error) {
	if len(scripts) == 0 {
		return "", ErrNoScripts
	}
	t, err := l.Lookup(name)
	if err != nil {
		return "", err
	}
	instructions, err := l.Render(t, len(scripts))
	if err != nil {
		return "", err
	}
	return Assemble(instructions, addendum, scripts), nil
}
