package review

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Template names shipped with the package.
const (
	TemplateText = "summary.txt"
	TemplateHTML = "summary.html"
)

// RendererOption configures a Renderer before construction.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	templates fs.FS
	extension string
}

// WithTemplates replaces the embedded templates. The FS must hold
// summary.txt and summary.html (plus the extension).
func WithTemplates(files fs.FS) RendererOption {
	return func(cfg *rendererConfig) {
		cfg.templates = files
	}
}

// WithExtension overrides the template extension.
func WithExtension(ext string) RendererOption {
	return func(cfg *rendererConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// Renderer renders summaries through a pongo2 template set.
type Renderer struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

// NewRenderer constructs a Renderer using the embedded templates unless
// overridden.
func NewRenderer(options ...RendererOption) (*Renderer, error) {
	cfg := &rendererConfig{extension: ".tpl"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("review: embedded templates: %w", err)
		}
		cfg.templates = sub
	}

	registerDefaultFilters()
	return &Renderer{
		templateSet: pongo2.NewSet("review", pongo2.NewFSLoader(cfg.templates)),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}, nil
}

// Text renders the plain text summary.
func (r *Renderer) Text(summary Summary, out ...io.Writer) (string, error) {
	return r.Render(TemplateText, summary, out...)
}

// HTML renders the HTML summary. Comments pass through the sanitize filter.
func (r *Renderer) HTML(summary Summary, out ...io.Writer) (string, error) {
	return r.Render(TemplateHTML, summary, out...)
}

// Render executes the named template with the summary as context and copies
// the result to every writer in out.
func (r *Renderer) Render(name string, summary Summary, out ...io.Writer) (string, error) {
	if r == nil || r.templateSet == nil {
		return "", errors.New("review: renderer is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, r.tplExt) {
		templatePath += r.tplExt
	}

	tmpl, err := r.getTemplate(templatePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	r.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext(summary), &buf)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("review: execute template %q: %w", templatePath, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (r *Renderer) getTemplate(path string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[path]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := r.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("review: load template %q: %w", path, err)
	}
	r.templates[path] = tmpl
	return tmpl, nil
}

// viewContext flattens the summary into plain values so templates never
// depend on Go method sets.
func viewContext(summary Summary) pongo2.Context {
	slots := make([]map[string]any, 0, len(summary.Slots))
	for _, slot := range summary.Slots {
		declared := any(nil)
		if slot.DeclaredFrames != nil {
			declared = *slot.DeclaredFrames
		}
		slots = append(slots, map[string]any{
			"slot":            slot.Slot,
			"label":           slot.Label,
			"present":         slot.Present,
			"frames":          slot.Frames,
			"declared_frames": declared,
			"base_frames":     slot.BaseFrames,
			"changed":         slot.Changed,
			"comment":         slot.Comment,
			"skipped":         slot.Skipped,
			"warnings":        slot.Warnings,
			"valid":           slot.Valid(),
		})
	}
	return pongo2.Context{
		"run_id":     summary.RunID,
		"max_frames": summary.MaxFrames,
		"valid":      summary.Valid(),
		"slots":      slots,
	}
}

var (
	commentPolicyOnce sync.Once
	commentPolicy     *bluemonday.Policy
)

// sanitizeComment strips every tag from free-text comments.
func sanitizeComment(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(commentSanitizer().Sanitize(trimmed))
}

func commentSanitizer() *bluemonday.Policy {
	commentPolicyOnce.Do(func() {
		commentPolicy = bluemonday.StrictPolicy()
	})
	return commentPolicy
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("sanitize") {
		_ = pongo2.RegisterFilter("sanitize", filterSanitize)
	}
}

// filterSanitize returns a safe value: bluemonday output is already escaped.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(sanitizeComment(in.String())), nil
}
