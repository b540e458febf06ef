// Package manifest generates the Claude Code plugin manifest and
// marketplace listing from the installed command, agent, and skill set.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	PluginDirName   = ".claude-plugin"
	PluginFileName  = "plugin.json"
	MarketplaceFile = "marketplace.json"
)

// Plugin is the .claude-plugin/plugin.json document.
type Plugin struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      Author   `json:"author"`
	Homepage    string   `json:"homepage,omitempty"`
	Commands    []string `json:"commands,omitempty"`
	Agents      []string `json:"agents,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// Author identifies the plugin publisher.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Marketplace is the marketplace.json listing wrapping one plugin entry.
type Marketplace struct {
	Name    string  `json:"name"`
	Owner   Author  `json:"owner"`
	Plugins []Entry `json:"plugins"`
}

// Entry is a single plugin listing.
type Entry struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Build scans the production tree and assembles the plugin manifest.
// Command, agent, and skill lists are sorted so regeneration is
// deterministic.
func Build(projectRoot, version string) (*Plugin, error) {
	commands, err := markdownFiles(filepath.Join(projectRoot, ".claude", "commands", "speck"))
	if err != nil {
		return nil, fmt.Errorf("scanning commands: %w", err)
	}
	agents, err := markdownFiles(filepath.Join(projectRoot, ".claude", "agents"))
	if err != nil {
		return nil, fmt.Errorf("scanning agents: %w", err)
	}
	skills, err := skillDirs(filepath.Join(projectRoot, ".claude", "skills"))
	if err != nil {
		return nil, fmt.Errorf("scanning skills: %w", err)
	}

	return &Plugin{
		Name:        "speck",
		Version:     version,
		Description: "Specification-driven development workflow for AI coding assistants",
		Author:      Author{Name: "speck", URL: "https://github.com/nprbst/speck-sub002"},
		Homepage:    "https://github.com/nprbst/speck-sub002",
		Commands:    commands,
		Agents:      agents,
		Skills:      skills,
	}, nil
}

// Write writes plugin.json under .claude-plugin/ and marketplace.json
// at the project root.
func Write(projectRoot string, plugin *Plugin) error {
	pluginDir := filepath.Join(projectRoot, PluginDirName)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		return fmt.Errorf("creating plugin directory: %w", err)
	}

	if err := writeJSON(filepath.Join(pluginDir, PluginFileName), plugin); err != nil {
		return err
	}

	market := &Marketplace{
		Name:  "speck",
		Owner: plugin.Author,
		Plugins: []Entry{{
			Name:        plugin.Name,
			Source:      "./",
			Description: plugin.Description,
			Version:     plugin.Version,
		}},
	}
	return writeJSON(filepath.Join(projectRoot, MarketplaceFile), market)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// markdownFiles lists .md files under dir, relative to the project
// layout convention (name without extension). Missing dirs are fine.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// skillDirs lists skill directories (those containing a SKILL.md).
func skillDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), "SKILL.md")); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
