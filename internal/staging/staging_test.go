package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	}
}

// --- Shared helpers ---

// newTestArea returns a staging area rooted in a fresh temp repo.
func newTestArea(t *testing.T) *Area {
	t.Helper()
	return NewArea(t.TempDir())
}

// writeFile creates a file (and parent directories) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// productionFile returns the absolute production path for a
// category-relative file.
func productionFile(a *Area, c Category, rel string) string {
	return filepath.Join(a.RepoRoot, ProductionRoot(c), filepath.FromSlash(rel))
}

// hashTree returns a digest over every file path and content under the
// production roots, used to prove a tree was untouched.
func hashTree(t *testing.T, a *Area) string {
	t.Helper()
	h := sha256.New()

	var paths []string
	contents := map[string][]byte{}
	for _, c := range Categories {
		root := filepath.Join(a.RepoRoot, ProductionRoot(c))
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			paths = append(paths, path)
			contents[path] = data
			return nil
		})
		if err != nil {
			t.Fatalf("walking %s: %v", root, err)
		}
	}

	sort.Strings(paths)
	for _, p := range paths {
		_, _ = io.WriteString(h, p)
		_, _ = h.Write(contents[p])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// isNullRaw reports whether a raw agent result is unset. An unset
// result is nil in memory and the literal null after a JSON roundtrip.
func isNullRaw(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}

// readMetadata reads the persisted staging.json for a session.
func readMetadata(t *testing.T, s *Session) Metadata {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.RootDir, MetadataFile))
	if err != nil {
		t.Fatalf("reading staging.json: %v", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("parsing staging.json: %v", err)
	}
	return meta
}
