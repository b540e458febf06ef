package rewrite

import (
	"strings"
	"testing"
)

const sampleCommand = `---
description: Create a feature specification
argument-hint: <feature description>
allowed-tools:
  - Bash(.specify/scripts/bash/create-new-feature.sh:*)
---
Run ` + "`.specify/scripts/bash/create-new-feature.sh --json`" + ` and load
.specify/templates/spec-template.md before writing the spec.
`

func TestParse_WithFrontmatter(t *testing.T) {
	doc, err := Parse([]byte(sampleCommand))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Frontmatter.Description != "Create a feature specification" {
		t.Errorf("unexpected description: %q", doc.Frontmatter.Description)
	}
	if doc.Frontmatter.ArgumentHint != "<feature description>" {
		t.Errorf("unexpected argument-hint: %q", doc.Frontmatter.ArgumentHint)
	}
	if len(doc.Frontmatter.AllowedTools) != 1 {
		t.Fatalf("expected 1 allowed tool, got %d", len(doc.Frontmatter.AllowedTools))
	}
	if !strings.HasPrefix(doc.Body, "Run ") {
		t.Errorf("body does not start after frontmatter: %q", doc.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("Just a plain command body.\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Frontmatter.Description != "" || len(doc.Frontmatter.Extra) != 0 {
		t.Errorf("expected zero frontmatter, got %+v", doc.Frontmatter)
	}
	if doc.Body != "Just a plain command body.\n" {
		t.Errorf("unexpected body: %q", doc.Body)
	}
}

func TestParse_Unterminated(t *testing.T) {
	_, err := Parse([]byte("---\ndescription: broken\nno closing delimiter\n"))
	if err == nil {
		t.Fatal("expected an error for unterminated frontmatter")
	}
}

func TestParse_PreservesUnknownKeys(t *testing.T) {
	content := "---\ndescription: x\nmodel: claude-sonnet-4-5\n---\nbody\n"
	doc, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Frontmatter.Extra["model"] != "claude-sonnet-4-5" {
		t.Errorf("unknown key not preserved: %+v", doc.Frontmatter.Extra)
	}

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "model: claude-sonnet-4-5") {
		t.Errorf("unknown key not rendered: %q", out)
	}
}

func TestRewritePaths(t *testing.T) {
	doc, err := Parse([]byte(sampleCommand))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	doc.RewritePaths()

	if got := doc.Frontmatter.AllowedTools[0]; got != "Bash(.speck/scripts/create-new-feature.ts:*)" {
		t.Errorf("allowed tool not rewritten: %q", got)
	}
	if strings.Contains(doc.Body, ".specify/") {
		t.Errorf("body still references .specify/: %q", doc.Body)
	}
	if !strings.Contains(doc.Body, ".speck/scripts/create-new-feature.ts --json") {
		t.Errorf("script reference not rewritten: %q", doc.Body)
	}
	if !strings.Contains(doc.Body, ".speck/templates/spec-template.md") {
		t.Errorf("template reference not rewritten: %q", doc.Body)
	}
}

func TestRender_Roundtrip(t *testing.T) {
	doc, err := Parse([]byte(sampleCommand))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse of rendered output failed: %v", err)
	}
	if again.Frontmatter.Description != doc.Frontmatter.Description {
		t.Errorf("description lost in roundtrip: %q", again.Frontmatter.Description)
	}
	if again.Body != doc.Body {
		t.Errorf("body changed in roundtrip:\nwant %q\ngot  %q", doc.Body, again.Body)
	}
}

func TestRender_NoFrontmatter(t *testing.T) {
	doc := &Document{Body: "plain\n"}
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if string(out) != "plain\n" {
		t.Errorf("expected bare body, got %q", out)
	}
}
