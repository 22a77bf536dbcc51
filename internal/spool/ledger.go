package spool

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LedgerFileName is the ledger kept inside the spool directory.
const LedgerFileName = ".sapphire-spool.json"

// Status of a processed file.
const (
	StatusPosted = "posted"
	StatusFailed = "failed"
)

// Entry records the last time a file was processed.
type Entry struct {
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Status      string    `json:"status"`
	Records     int       `json:"records"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Ledger maps file names to their last outcome.
type Ledger struct {
	Files map[string]Entry `json:"files"`
}

// Pending reports whether the file needs processing: it was never seen or
// it changed since it was last processed.
func (l Ledger) Pending(name string, info fs.FileInfo) bool {
	e, ok := l.Files[name]
	if !ok {
		return true
	}
	return e.Size != info.Size() || !e.ModTime.Equal(info.ModTime())
}

// Record stores the outcome for a file.
func (l *Ledger) Record(name string, e Entry) {
	if l.Files == nil {
		l.Files = make(map[string]Entry)
	}
	l.Files[name] = e
}

// LedgerRepository persists the ledger.
type LedgerRepository interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, l Ledger) error
}

// FileLedger implements LedgerRepository using a JSON file.
type FileLedger struct {
	dir string
}

// NewFileLedger creates a FileLedger stored in dir.
func NewFileLedger(dir string) *FileLedger {
	return &FileLedger{dir: dir}
}

// Load returns an empty ledger if none was saved yet.
func (r *FileLedger) Load(ctx context.Context) (Ledger, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Ledger{Files: map[string]Entry{}}, nil
		}
		return Ledger{}, err
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return Ledger{}, err
	}
	if l.Files == nil {
		l.Files = map[string]Entry{}
	}
	return l, nil
}

// Save writes the ledger atomically (temp file, then rename).
func (r *FileLedger) Save(ctx context.Context, l Ledger) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the ledger file.
func (r *FileLedger) Path() string {
	return filepath.Join(r.dir, LedgerFileName)
}
