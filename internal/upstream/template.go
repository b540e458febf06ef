package upstream

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxAssetSize caps template downloads; spec-kit archives are well
// under a megabyte, so anything larger is suspect.
const maxAssetSize = 64 << 20

// DownloadTemplate downloads a release's template asset into destDir
// and extracts it. Returns the extraction root.
func (c *Client) DownloadTemplate(ctx context.Context, rel *Release, destDir string) (string, error) {
	asset, err := rel.TemplateAsset()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: HTTP %d", asset.Name, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	archivePath := filepath.Join(destDir, asset.Name)
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	_, err = io.Copy(out, io.LimitReader(resp.Body, maxAssetSize))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", asset.Name, err)
	}

	extractRoot := filepath.Join(destDir, rel.Tag)
	if err := ExtractZip(archivePath, extractRoot); err != nil {
		return "", err
	}
	return extractRoot, nil
}

// ExtractZip unpacks an archive into destDir, refusing entries that
// would escape it.
func ExtractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		// Zip-slip guard: entry must stay inside destDir.
		if rel, err := filepath.Rel(destDir, target); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("archive entry %q escapes extraction root", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading archive entry %s: %w", f.Name, err)
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o200)
		if err != nil {
			_ = rc.Close()
			return fmt.Errorf("creating %s: %w", target, err)
		}
		_, err = io.Copy(out, io.LimitReader(rc, maxAssetSize))
		_ = rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

// Inventory summarizes what an extracted template contains, grouped by
// the upstream layout (.specify/scripts, .claude/commands, ...).
type Inventory struct {
	Scripts  []string `json:"scripts"`
	Commands []string `json:"commands"`
	Agents   []string `json:"agents"`
	Other    []string `json:"other"`
}

// ScanTemplate walks an extracted template and classifies its files by
// the upstream directory layout. The classification is informational —
// agents decide what each file becomes.
func ScanTemplate(root string) (*Inventory, error) {
	inv := &Inventory{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case strings.Contains(rel, ".specify/scripts/"):
			inv.Scripts = append(inv.Scripts, rel)
		case strings.Contains(rel, ".claude/commands/"):
			inv.Commands = append(inv.Commands, rel)
		case strings.Contains(rel, ".claude/agents/"):
			inv.Agents = append(inv.Agents, rel)
		default:
			inv.Other = append(inv.Other, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning template: %w", err)
	}

	for _, list := range [][]string{inv.Scripts, inv.Commands, inv.Agents, inv.Other} {
		sort.Strings(list)
	}
	return inv, nil
}
