package staging

import (
	"fmt"
	"os"
)

// Rollback abandons the session: the staging root is deleted and no
// production path is ever written, so the production tree is
// byte-identical before and after. Precondition: status is
// non-terminal; terminal states return a *ValidationError.
func (s *Session) Rollback() error {
	if err := CanTransition(s.Metadata.Status, StatusRolledBack); err != nil {
		return err
	}

	if err := os.RemoveAll(s.RootDir); err != nil {
		return fmt.Errorf("removing staging root %s: %w", s.RootDir, err)
	}

	s.Metadata.Status = StatusRolledBack
	return nil
}
