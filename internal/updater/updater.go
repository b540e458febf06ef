// Package updater keeps the speck binary itself current. It polls the
// GitHub Releases API for a newer build and can swap the running
// executable in place (download to a sibling temp file, then rename).
//
// This concerns the speck binary only; spec-kit template upgrades go
// through the staging pipeline instead.
package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	// binaryName is what the release archives call the executable.
	binaryName = "speck"

	githubRepo   = "nprbst/speck-sub002"
	checkTimeout = 10 * time.Second
)

// Overridable for tests.
var (
	releaseEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpClient      = &http.Client{Timeout: checkTimeout}
	executablePath  = os.Executable
)

// release mirrors the fields of the GitHub latest-release payload that
// the updater consumes.
type release struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// UpdateResult reports the outcome of a version check.
type UpdateResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// CheckVersion compares the running version against the latest GitHub
// release. It is best-effort: any network or API failure yields a
// result with UpdateAvailable false, never an error.
func CheckVersion(currentVersion string) *UpdateResult {
	result := &UpdateResult{CurrentVersion: normalizeVersion(currentVersion)}

	rel, err := latestRelease(currentVersion)
	if err != nil {
		return result
	}

	result.LatestVersion = normalizeVersion(rel.TagName)
	result.ReleaseURL = rel.HTMLURL
	result.UpdateAvailable = updateAvailable(result.CurrentVersion, result.LatestVersion)
	return result
}

// SelfUpdate downloads the release build for this OS and architecture
// and replaces the running executable. The caller restarts; a running
// MCP server keeps its old code until then.
func SelfUpdate(currentVersion string) error {
	rel, err := latestRelease(currentVersion)
	if err != nil {
		return err
	}

	latest := normalizeVersion(rel.TagName)
	if !updateAvailable(normalizeVersion(currentVersion), latest) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	a, err := rel.assetFor(latest, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	resp, err := httpClient.Get(a.BrowserDownloadURL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", a.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: status %d", a.Name, resp.StatusCode)
	}

	bin, err := extractBinary(resp.Body, a.Name)
	if err != nil {
		return fmt.Errorf("extracting binary from %s: %w", a.Name, err)
	}

	return replaceExecutable(bin)
}

// latestRelease fetches and decodes the latest-release payload.
func latestRelease(currentVersion string) (*release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release payload: %w", err)
	}
	return &rel, nil
}

// assetFor picks the archive goreleaser ships for an OS/arch pair. The
// name template is speck_<version>_<os>_<arch>.tar.gz, .zip on windows.
func (r *release) assetFor(version, goos, goarch string) (*asset, error) {
	want := assetName(version, goos, goarch)
	for i := range r.Assets {
		if r.Assets[i].Name == want {
			return &r.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("release %s has no asset %s", r.TagName, want)
}

func assetName(version, goos, goarch string) string {
	ext := "tar.gz"
	if goos == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", binaryName, version, goos, goarch, ext)
}

// --- Archive extraction ---

func extractBinary(r io.Reader, archiveName string) ([]byte, error) {
	if strings.HasSuffix(archiveName, ".zip") {
		return extractFromZip(r)
	}
	return extractFromTarGz(r)
}

func extractFromTarGz(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if isBinaryEntry(hdr.Name) {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("no %s binary in archive", binaryName)
}

// extractFromZip buffers the whole archive; zip needs random access
// and release archives are a few megabytes.
func extractFromZip(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading zip: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	for _, f := range zr.File {
		if !isBinaryEntry(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in zip: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s from zip: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no %s binary in archive", binaryName)
}

func isBinaryEntry(name string) bool {
	base := filepath.Base(name)
	return base == binaryName || base == binaryName+".exe"
}

// replaceExecutable writes the new binary next to the current one and
// renames it into place. Windows cannot rename over a running binary,
// so the old one is moved aside first.
func replaceExecutable(bin []byte) error {
	execPath, err := executablePath()
	if err != nil {
		return fmt.Errorf("locating current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable symlinks: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, bin, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := execPath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("moving current binary aside: %w", err)
		}
	}

	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("installing new binary: %w", err)
	}
	return nil
}

// --- Version ordering ---

// version is a parsed major.minor.patch triple. Missing parts read as
// zero; a pre-release suffix is ignored for ordering.
type version [3]int

func parseVersion(s string) version {
	var v version
	for i, part := range strings.SplitN(strings.TrimPrefix(s, "v"), ".", 3) {
		if j := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' }); j >= 0 {
			part = part[:j]
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		v[i] = n
	}
	return v
}

func (v version) less(o version) bool {
	for i := range v {
		if v[i] != o[i] {
			return v[i] < o[i]
		}
	}
	return false
}

// updateAvailable reports whether latest supersedes current. Dev
// builds never update; they carry no comparable version.
func updateAvailable(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	return parseVersion(current).less(parseVersion(latest))
}

// normalizeVersion strips a single leading "v" for display.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}
