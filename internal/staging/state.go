package staging

// --- Status state machine ---
//
// The workflow's "continuation point" across process invocations is the
// persisted status field, not suspended in-process control flow. The
// happy path is strictly linear; every non-terminal state can escape to
// rolled-back or failed. Nothing leaves a terminal state.

// transitions is the fixed transition graph.
var transitions = map[Status][]Status{
	StatusStaging:        {StatusAgent1Complete, StatusRolledBack, StatusFailed},
	StatusAgent1Complete: {StatusAgent2Complete, StatusRolledBack, StatusFailed},
	StatusAgent2Complete: {StatusReady, StatusRolledBack, StatusFailed},
	StatusReady:          {StatusCommitted, StatusRolledBack, StatusFailed},
	StatusCommitted:      {},
	StatusRolledBack:     {},
	StatusFailed:         {},
}

// CanTransition returns nil if moving from → to is a legal edge,
// otherwise a *ValidationError naming the current status, the requested
// status, and the legal next states.
func CanTransition(from, to Status) error {
	allowed, ok := transitions[from]
	if !ok {
		return &ValidationError{
			Current:   from,
			Requested: to,
			Reason:    "unknown status " + string(from),
		}
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return &ValidationError{Current: from, Requested: to, Allowed: allowed}
}

// UpdateStatus validates the transition against the graph, mutates the
// session's status, and re-persists the entire staging.json. On a
// persistence failure the in-memory status is restored so the handle
// stays consistent with disk.
func (s *Session) UpdateStatus(next Status) error {
	if err := CanTransition(s.Metadata.Status, next); err != nil {
		return err
	}

	prev := s.Metadata.Status
	s.Metadata.Status = next
	if err := s.writeMetadata(); err != nil {
		s.Metadata.Status = prev
		return err
	}
	return nil
}
