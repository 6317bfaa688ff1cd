// Package template renders resumes to print-ready HTML and serves the
// template catalog.
package template

import (
	"sort"

	"cvstudio/api/internal/store"
)

// Renderer turns a document into a standalone HTML page sized for A4.
type Renderer interface {
	Render(r store.Resume) (string, error)
}

// Registry resolves template ids to renderers. Unknown ids resolve to the
// default renderer instead of failing, so a document created against a
// template that later disappeared still previews and exports.
type Registry struct {
	defaultID string
	renderers map[string]Renderer
	meta      map[string]store.Template
}

func NewRegistry(defaultID string) *Registry {
	return &Registry{
		defaultID: defaultID,
		renderers: map[string]Renderer{},
		meta:      map[string]store.Template{},
	}
}

func (g *Registry) Register(meta store.Template, r Renderer) {
	g.renderers[meta.ID] = r
	g.meta[meta.ID] = meta
}

func (g *Registry) Get(id string) Renderer {
	if r, ok := g.renderers[id]; ok {
		return r
	}
	return g.renderers[g.defaultID]
}

func (g *Registry) Has(id string) bool {
	_, ok := g.renderers[id]
	return ok
}

func (g *Registry) Builtin() []store.Template {
	out := make([]store.Template, 0, len(g.meta))
	for _, m := range g.meta {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
