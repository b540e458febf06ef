package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// commitConcurrency bounds the number of in-flight file moves. Every
// staged file maps to a unique production path by construction, so
// parallel moves within one session can never collide.
const commitConcurrency = 4

// Commit applies every staged file to the production tree and destroys
// the staging root. Precondition: status is "ready"; anything else
// returns a *ValidationError and touches nothing.
//
// Commit is not atomic across files. Each file is moved independently
// with an unconditional overwrite (last-writer-wins; conflicts were
// surfaced earlier and are not re-checked here). If one file fails,
// already-moved files stay on production, the staging root is left
// intact, and the error names the failed file — re-invoking Commit
// after fixing the underlying problem is safe and idempotent because
// every per-file step is an overwrite.
func (s *Session) Commit(ctx context.Context) error {
	if err := CanTransition(s.Metadata.Status, StatusCommitted); err != nil {
		return err
	}

	entries, err := s.ListStagedFiles()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(commitConcurrency)
	for _, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := commitFile(entry); err != nil {
				return fmt.Errorf("committing %s/%s: %w", entry.Category, entry.RelativePath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.RemoveAll(s.RootDir); err != nil {
		return fmt.Errorf("removing staging root %s: %w", s.RootDir, err)
	}

	// The root is gone, so there is no staging.json left to persist
	// into; the terminal status lives only on the returned handle.
	s.Metadata.Status = StatusCommitted
	return nil
}

// commitFile moves one staged file onto its production path,
// overwriting whatever is there.
func commitFile(entry StagedFile) error {
	if err := os.MkdirAll(filepath.Dir(entry.ProductionPath), 0o755); err != nil {
		return fmt.Errorf("creating production directory: %w", err)
	}

	if err := os.Rename(entry.StagingPath, entry.ProductionPath); err == nil {
		return nil
	}
	// Rename fails across filesystems; fall back to copy-then-delete.
	if err := copyFile(entry.StagingPath, entry.ProductionPath); err != nil {
		return err
	}
	return os.Remove(entry.StagingPath)
}

// copyFile copies src over dst, truncating any existing file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening staged file: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("opening production file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying to production: %w", err)
	}
	return out.Close()
}
