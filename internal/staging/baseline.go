package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// CaptureBaseline snapshots the live production tree's file metadata
// into the session and persists it, so drift can be detected before
// commit. For each of the four production roots it records
// {exists, mtime, size} per production-relative path. Paths that do not
// exist are simply absent from the map — absence is the false case.
//
// An empty (or missing) production tree yields an empty files map, not
// an error; that is the expected state on a first-ever run.
func (s *Session) CaptureBaseline() error {
	files, err := s.area.walkProduction()
	if err != nil {
		return err
	}

	s.Metadata.ProductionBaseline = &Baseline{
		CapturedAt: timeNow().UTC().Format(timeLayout),
		Files:      files,
	}
	return s.writeMetadata()
}

// walkProduction walks the four production roots and returns the
// observed metadata of every regular file, keyed by production-relative
// slash-separated path.
func (a *Area) walkProduction() (map[string]BaselineEntry, error) {
	files := make(map[string]BaselineEntry)

	for _, c := range Categories {
		root := filepath.Join(a.RepoRoot, ProductionRoot(c))
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil // production root not created yet
				}
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			rel, err := filepath.Rel(a.RepoRoot, path)
			if err != nil {
				return fmt.Errorf("relativizing %s: %w", path, err)
			}

			mtime := info.ModTime().UnixMilli()
			size := info.Size()
			files[filepath.ToSlash(rel)] = BaselineEntry{
				Exists: true,
				Mtime:  &mtime,
				Size:   &size,
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking production root for %s: %w", c, err)
		}
	}

	return files, nil
}
