package staging

import "sort"

// DetectConflicts compares the persisted baseline against the live
// production tree (re-walked at call time, not cached) and classifies
// every drifted path. Identical state on both sides yields no entry.
//
// The result is advisory: nothing is blocked here. The caller presents
// conflicts to the user, who decides whether to skip files, merge
// manually, or abort before commit.
func (s *Session) DetectConflicts() ([]FileConflict, error) {
	baseline := s.Metadata.ProductionBaseline
	if baseline == nil {
		return nil, &ValidationError{Reason: "production baseline has not been captured"}
	}

	current, err := s.area.walkProduction()
	if err != nil {
		return nil, err
	}

	// Union of paths on either side.
	paths := make(map[string]struct{}, len(baseline.Files)+len(current))
	for p := range baseline.Files {
		paths[p] = struct{}{}
	}
	for p := range current {
		paths[p] = struct{}{}
	}

	var conflicts []FileConflict
	for p := range paths {
		base, inBase := baseline.Files[p]
		cur, inCur := current[p]

		switch {
		case !inBase && inCur:
			c := cur
			conflicts = append(conflicts, FileConflict{
				Path: p, CurrentState: &c, Kind: ConflictCreated,
			})
		case inBase && !inCur:
			b := base
			conflicts = append(conflicts, FileConflict{
				Path: p, BaselineState: &b, Kind: ConflictDeleted,
			})
		case entriesDiffer(base, cur):
			b, c := base, cur
			conflicts = append(conflicts, FileConflict{
				Path: p, BaselineState: &b, CurrentState: &c, Kind: ConflictModified,
			})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })
	return conflicts, nil
}

// entriesDiffer reports whether two observed states of the same path
// differ in mtime or size.
func entriesDiffer(a, b BaselineEntry) bool {
	return !int64PtrEqual(a.Mtime, b.Mtime) || !int64PtrEqual(a.Size, b.Size)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
