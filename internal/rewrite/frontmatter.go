// Package rewrite applies mechanical format fixes to staged command
// markdown. It adjusts YAML frontmatter and script references from
// spec-kit's layout to speck's; what the command says is left alone.
package rewrite

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// Frontmatter holds the keys speck cares about in a command file's
// YAML header. Unknown keys are preserved through Extra.
type Frontmatter struct {
	Description  string         `yaml:"description,omitempty"`
	ArgumentHint string         `yaml:"argument-hint,omitempty"`
	AllowedTools []string       `yaml:"allowed-tools,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// Document is a command markdown file split into frontmatter and body.
type Document struct {
	Frontmatter Frontmatter
	Body        string
}

// Parse splits a command file into frontmatter and body. Files without
// a frontmatter block parse to a zero Frontmatter and the whole content
// as body.
func Parse(content []byte) (*Document, error) {
	text := string(content)
	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return &Document{Body: text}, nil
	}

	rest := text[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim+"\n")
	if end < 0 {
		return nil, fmt.Errorf("unterminated frontmatter block")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	return &Document{
		Frontmatter: fm,
		Body:        rest[end+len(frontmatterDelim)+2:],
	}, nil
}

// Render serializes the document back to markdown. Documents with a
// zero frontmatter render as a bare body.
func (d *Document) Render() ([]byte, error) {
	if d.frontmatterEmpty() {
		return []byte(d.Body), nil
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.Frontmatter); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}

	buf.WriteString(frontmatterDelim + "\n")
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

func (d *Document) frontmatterEmpty() bool {
	fm := d.Frontmatter
	return fm.Description == "" && fm.ArgumentHint == "" &&
		len(fm.AllowedTools) == 0 && len(fm.Extra) == 0
}

// pathRewrites maps spec-kit layout references to speck's layout.
// Ordered so the more specific prefixes win.
var pathRewrites = []struct{ from, to string }{
	{".specify/scripts/bash/", ".speck/scripts/"},
	{".specify/scripts/", ".speck/scripts/"},
	{".specify/templates/", ".speck/templates/"},
	{".specify/memory/", ".speck/memory/"},
	{".specify/", ".speck/"},
}

// RewritePaths replaces spec-kit directory references in both the
// frontmatter and the body, and renames .sh script references to .ts.
func (d *Document) RewritePaths() {
	d.Body = rewriteText(d.Body)
	for i, tool := range d.Frontmatter.AllowedTools {
		d.Frontmatter.AllowedTools[i] = rewriteText(tool)
	}
}

// Script references follow the directory move, so only paths already
// under .speck/scripts/ get the extension swap.
var scriptRef = regexp.MustCompile(`\.speck/scripts/(\S+?)\.sh\b`)

func rewriteText(s string) string {
	for _, r := range pathRewrites {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return scriptRef.ReplaceAllString(s, ".speck/scripts/$1.ts")
}
