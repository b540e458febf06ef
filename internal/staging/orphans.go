package staging

import (
	"errors"
	"io/fs"
	"os"
)

// Orphans scans every subdirectory of the staging area for a
// staging.json whose status is non-terminal — sessions abandoned by a
// crashed or killed process. Each is returned as a loaded handle for
// the caller to present to the user, who may roll one back or leave it
// for manual inspection. Resuming an orphan is out of scope: the
// external agent phases would have to be re-invoked, which the engine
// does not do.
//
// Subdirectories without a parseable staging.json are skipped, same as
// the feature store skips unreadable records.
func (a *Area) Orphans() ([]*Session, error) {
	entries, err := os.ReadDir(a.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // no staging area yet, nothing orphaned
		}
		return nil, err
	}

	var orphans []*Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		session, err := a.loadDir(a.SessionDir(entry.Name()))
		if err != nil {
			continue
		}
		if !session.Metadata.Status.IsTerminal() {
			orphans = append(orphans, session)
		}
	}

	return orphans, nil
}
