// Package ledger persists one description row per repository so interrupted
// batches can resume without re-analyzing completed repositories.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var header = []string{"Repo Name", "Description"}

// Ledger is an append-only CSV record of completed analyses.
type Ledger struct {
	path string
}

// New builds a Ledger at the given path. The file is created lazily by
// EnsureHeader.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Completed returns the set of repository names that already have a row.
// A missing file yields an empty set.
func (l *Ledger) Completed() (map[string]struct{}, error) {
	done := make(map[string]struct{})

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return done, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil { // header
		if errors.Is(err, io.EOF) {
			return done, nil
		}
		return nil, fmt.Errorf("read ledger header: %w", err)
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger row: %w", err)
		}
		if len(row) > 0 && row[0] != "" {
			done[row[0]] = struct{}{}
		}
	}
	return done, nil
}

// EnsureHeader creates the ledger file with its header row if it does not
// exist yet.
func (l *Ledger) EnsureHeader() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat ledger: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger header: %w", err)
	}
	return f.Sync()
}

// Append writes one sanitized row and flushes it to disk before returning,
// so a crash mid-batch never loses a completed repository. Rows are complete
// or absent; partial rows are never visible.
func (l *Ledger) Append(name, description string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{name, Sanitize(description)}); err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger row: %w", err)
	}
	return f.Sync()
}

// Sanitize strips embedded newlines and quote characters from a description
// so every row stays single-line.
func Sanitize(description string) string {
	s := strings.ReplaceAll(description, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}
