// Package templates renders the markdown documents produced by the
// feature workflow.
//
// Templates are embedded at build time so the binary is self-contained.
// Each document kind has a typed data struct — tools fill the struct
// from AI-generated content and get consistent markdown out.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed files/*.md.tmpl
var templateFS embed.FS

// Kind identifies a document template.
type Kind string

const (
	Spec  Kind = "spec"
	Plan  Kind = "plan"
	Tasks Kind = "tasks"
)

// SpecData fills the feature specification template.
type SpecData struct {
	Name            string
	FeatureID       string
	Overview        string
	UserScenarios   string
	Requirements    string
	SuccessCriteria string
	OutOfScope      string
	OpenQuestions   string
}

// PlanData fills the implementation plan template.
type PlanData struct {
	Name             string
	FeatureID        string
	Summary          string
	TechnicalContext string
	Architecture     string
	Structure        string
	Risks            string
}

// TasksData fills the task breakdown template.
type TasksData struct {
	Name      string
	FeatureID string
	Phases    string
	Tasks     string
	Notes     string
}

// Renderer renders embedded markdown templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses all embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "files/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render executes the template for a document kind with the given data.
func (r *Renderer) Render(kind Kind, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, string(kind)+".md.tmpl", data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", kind, err)
	}
	return buf.String(), nil
}
