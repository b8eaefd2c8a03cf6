// Package journal implements modman's crash-recovery log: an append-only
// record of intended file operations, written before target mutations and
// consumed by the repair engine if an activation is interrupted.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mrkline/modman/pkg/errors"
)

// FileName is the journal's name under the backup store's temp directory.
const FileName = "activate.journal"

// Op is a journal directive kind.
type Op string

const (
	// OpReplace marks a path that existed in the target and was backed up.
	OpReplace Op = "Replace"
	// OpAdd marks a path that is new to the target.
	OpAdd Op = "Add"
)

// Line is one parsed journal directive.
type Line struct {
	Op   Op
	Path string
}

// Journal is an append-only, durably-flushed log living at
// <backupTempDir>/activate.journal.
type Journal struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// New returns a Journal rooted at backupTempDir. It does not touch the
// filesystem until Append is first called.
func New(backupTempDir string) *Journal {
	return &Journal{path: filepath.Join(backupTempDir, FileName)}
}

// Path returns the journal's on-disk location.
func (j *Journal) Path() string { return j.path }

// Exists reports whether the journal file is present, meaning a prior
// activation crashed mid-flight and repair must run before anything else.
func (j *Journal) Exists() bool {
	_, err := os.Stat(j.path)
	return err == nil
}

// Append writes one directive, flushing to durable storage before
// returning. Concurrent callers are serialized; this is the journal's one
// contention point.
func (j *Journal) Append(op Op, path string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "couldn't create backup temp directory")
		}
		f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "couldn't open journal %s", j.path)
		}
		j.f = f
	}

	if _, err := fmt.Fprintf(j.f, "%s %s\n", op, path); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't append to journal")
	}
	if err := j.f.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't flush journal")
	}
	return nil
}

// Lines reads and parses every directive currently in the journal.
func (j *Journal) Lines() ([]Line, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f != nil {
		if err := j.f.Sync(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "couldn't flush journal before reading")
		}
	}

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "couldn't open journal %s", j.path)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 {
			return nil, errors.Newf(errors.ErrIO, "malformed journal line: %q", raw)
		}
		lines = append(lines, Line{Op: Op(parts[0]), Path: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "couldn't read journal")
	}
	return lines, nil
}

// Delete closes and removes the journal file. Called only after the
// profile has been durably updated (activation) or after repair has
// reversed every directive.
func (j *Journal) Delete() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f != nil {
		j.f.Close()
		j.f = nil
	}
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "couldn't remove journal %s", j.path)
	}
	return nil
}
