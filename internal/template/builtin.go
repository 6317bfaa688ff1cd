package template

import (
	"fmt"
	htmltemplate "html/template"
	"strings"

	"cvstudio/api/internal/store"
)

// DefaultRegistry wires up the shipped templates. The modern layout doubles
// as the fallback for unknown ids.
func DefaultRegistry() *Registry {
	g := NewRegistry("t1")
	g.Register(store.Template{ID: "t1", Name: "Modern", Category: "CV"}, mustRenderer("t1", modernCSS))
	g.Register(store.Template{ID: "t2", Name: "Classic", Category: "CV"}, mustRenderer("t2", classicCSS))
	g.Register(store.Template{ID: "t3", Name: "Minimalist", Category: "CV"}, mustRenderer("t3", minimalistCSS))
	g.Register(store.Template{ID: "cl1", Name: "Elegant Letter", Category: "CoverLetter"}, mustCoverLetter())
	return g
}

type htmlRenderer struct {
	tmpl *htmltemplate.Template
}

func (h *htmlRenderer) Render(r store.Resume) (string, error) {
	var b strings.Builder
	if err := h.tmpl.Execute(&b, r); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return b.String(), nil
}

func mustRenderer(id, css string) Renderer {
	t := htmltemplate.Must(htmltemplate.New(id).Parse(
		`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>` + baseCSS + css + `</style>
</head>
<body>
<div class="page">
  <header>
    <h1>{{.Content.PersonalInfo.FullName}}</h1>
    <p class="contact">
      {{.Content.PersonalInfo.Email}}{{if .Content.PersonalInfo.Phone}} &middot; {{.Content.PersonalInfo.Phone}}{{end}}{{if .Content.PersonalInfo.Address}} &middot; {{.Content.PersonalInfo.Address}}{{end}}
    </p>
  </header>
  {{if .Content.PersonalInfo.Objective}}
  <section>
    <h2>Objective</h2>
    <p>{{.Content.PersonalInfo.Objective}}</p>
  </section>
  {{end}}
  {{if .Content.Experience}}
  <section>
    <h2>Experience</h2>
    {{range .Content.Experience}}
    <div class="entry">
      <div class="entry-head"><strong>{{.Position}}</strong> <span class="dates">{{.StartDate}} - {{.EndDate}}</span></div>
      <div class="entry-sub">{{.Company}}</div>
      <p>{{.Description}}</p>
    </div>
    {{end}}
  </section>
  {{end}}
  {{if .Content.Education}}
  <section>
    <h2>Education</h2>
    {{range .Content.Education}}
    <div class="entry">
      <div class="entry-head"><strong>{{.School}}</strong> <span class="dates">{{.Year}}</span></div>
      <div class="entry-sub">{{.Major}}</div>
    </div>
    {{end}}
  </section>
  {{end}}
  {{if .Content.Skills}}
  <section>
    <h2>Skills</h2>
    <ul class="skills">
      {{range .Content.Skills}}<li>{{.}}</li>{{end}}
    </ul>
  </section>
  {{end}}
</div>
</body>
</html>`))
	return &htmlRenderer{tmpl: t}
}

func mustCoverLetter() Renderer {
	t := htmltemplate.Must(htmltemplate.New("cl1").Parse(
		`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>` + baseCSS + letterCSS + `</style>
</head>
<body>
<div class="page letter">
  <header>
    <h1>{{.Content.PersonalInfo.FullName}}</h1>
    <p class="contact">{{.Content.PersonalInfo.Email}}{{if .Content.PersonalInfo.Phone}} &middot; {{.Content.PersonalInfo.Phone}}{{end}}</p>
  </header>
  <section>
    <p class="salutation">Dear Hiring Manager,</p>
    <p>{{.Content.PersonalInfo.Objective}}</p>
    {{range .Content.Experience}}<p>{{.Description}}</p>{{end}}
    <p class="closing">Sincerely,<br>{{.Content.PersonalInfo.FullName}}</p>
  </section>
</div>
</body>
</html>`))
	return &htmlRenderer{tmpl: t}
}

const baseCSS = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: "Helvetica Neue", Arial, sans-serif; background: #fff; color: #1f2937; }
.page { width: 794px; min-height: 1123px; margin: 0 auto; padding: 48px 56px; background: #fff; }
h1 { font-size: 28px; }
h2 { font-size: 14px; text-transform: uppercase; letter-spacing: 1px; margin: 24px 0 8px; }
.contact { font-size: 12px; color: #6b7280; margin-top: 4px; }
.entry { margin-bottom: 12px; }
.entry-head { display: flex; justify-content: space-between; font-size: 13px; }
.entry-sub { font-size: 12px; color: #6b7280; }
.dates { color: #9ca3af; font-size: 11px; }
p { font-size: 12px; line-height: 1.5; }
.skills { list-style: none; display: flex; flex-wrap: wrap; gap: 6px; }
.skills li { font-size: 11px; padding: 3px 10px; border-radius: 10px; background: #f3f4f6; }
`

const modernCSS = `
header { border-left: 4px solid #2563eb; padding-left: 16px; }
h1 { color: #2563eb; }
h2 { color: #2563eb; border-bottom: 1px solid #dbeafe; padding-bottom: 4px; }
.skills li { background: #dbeafe; color: #1d4ed8; }
`

const classicCSS = `
header { text-align: center; border-bottom: 2px solid #111827; padding-bottom: 12px; }
body { font-family: Georgia, "Times New Roman", serif; }
h2 { border-bottom: 1px solid #d1d5db; padding-bottom: 4px; }
`

const minimalistCSS = `
h1 { font-weight: 300; }
h2 { color: #6b7280; font-weight: 500; }
.page { padding: 64px 72px; }
`

const letterCSS = `
.letter section { margin-top: 32px; }
.letter p { font-size: 13px; margin-bottom: 14px; }
.salutation { margin-top: 8px; }
.closing { margin-top: 28px; }
`
