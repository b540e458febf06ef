package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// ListStagedFiles walks the four staging category subdirectories and
// returns one entry per regular file the agents wrote, nested
// subdirectories preserved in RelativePath. The production destination
// is computed from the fixed category → production-root mapping, never
// read from any persisted source. An empty staging tree yields an
// empty slice.
func (s *Session) ListStagedFiles() ([]StagedFile, error) {
	var entries []StagedFile

	for _, c := range Categories {
		dir := s.CategoryDir(c)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return fmt.Errorf("relativizing %s: %w", path, err)
			}

			entries = append(entries, StagedFile{
				Category:       c,
				RelativePath:   filepath.ToSlash(rel),
				StagingPath:    path,
				ProductionPath: filepath.Join(s.area.RepoRoot, ProductionRoot(c), rel),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking staged %s: %w", c, err)
		}
	}

	// WalkDir is already deterministic per category; sorting across the
	// whole set keeps reports stable regardless of category order changes.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].RelativePath < entries[j].RelativePath
	})

	return entries, nil
}
