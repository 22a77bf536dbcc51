package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/record"
	"github.com/sapphire-forecast/sapphire-go/pkg/sapphire"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

// DefaultDebounce is the quiet period after a file event before rescanning.
const DefaultDebounce = 500 * time.Millisecond

// Writer writes records to a dataset. *sapphire.Client satisfies it.
type Writer interface {
	Write(ctx context.Context, ds sapphire.Dataset, records []record.Record) (int, error)
}

// Config configures a Watcher.
type Config struct {
	Dir      string
	Dataset  sapphire.Dataset
	Debounce time.Duration
}

// Summary counts the files handled by one scan.
type Summary struct {
	Posted int
	Failed int
	// Deferred files hit a transient failure and stay pending for the
	// next scan.
	Deferred int
	Skipped  int
	Records  int
}

// Watcher uploads files from a spool directory.
type Watcher struct {
	dir      string
	dataset  sapphire.Dataset
	debounce time.Duration
	writer   Writer
	ledger   LedgerRepository
	logger   log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		w.logger = log.OrNoop(logger)
	}
}

// WithLedger replaces the file ledger kept in the spool directory.
func WithLedger(repo LedgerRepository) Option {
	return func(w *Watcher) {
		if repo != nil {
			w.ledger = repo
		}
	}
}

// New creates a Watcher for cfg.Dir.
func New(cfg Config, writer Writer, opts ...Option) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("spool: directory is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("spool: writer is required")
	}
	if cfg.Dataset.Name == "" {
		return nil, fmt.Errorf("spool: dataset is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &Watcher{
		dir:      cfg.Dir,
		dataset:  cfg.Dataset,
		debounce: cfg.Debounce,
		writer:   writer,
		ledger:   NewFileLedger(cfg.Dir),
		logger:   log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run scans the directory once, then rescans after file events until ctx is
// canceled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info("spool watcher started",
		log.String("dir", w.dir),
		log.String("dataset", w.dataset.String()))

	if _, err := w.Scan(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("spool watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !record.Supported(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if _, err := w.Scan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("spool scan failed", log.Err(err))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("spool watcher error", log.Err(err))
		}
	}
}

// Scan processes every pending file in name order. Permanent write errors
// are recorded in the ledger and do not stop the scan. Files that failed
// transiently are left pending. Cancellation stops the scan without
// recording the interrupted file, and ledger and directory failures are
// returned.
func (w *Watcher) Scan(ctx context.Context) (Summary, error) {
	var sum Summary

	ledger, err := w.ledger.Load(ctx)
	if err != nil {
		return sum, fmt.Errorf("load ledger: %w", err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", w.dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !record.Supported(name) {
			continue
		}
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		if !ledger.Pending(name, info) {
			sum.Skipped++
			continue
		}

		entry, err := w.process(ctx, name, info)
		switch {
		case ctx.Err() != nil:
			return sum, ctx.Err()
		case errors.Is(err, context.Canceled):
			return sum, err
		case errors.Is(err, transport.ErrRetriesExhausted):
			sum.Deferred++
			continue
		}

		ledger.Record(name, entry)
		if err := w.ledger.Save(ctx, ledger); err != nil {
			return sum, fmt.Errorf("save ledger: %w", err)
		}

		if entry.Status == StatusPosted {
			sum.Posted++
			sum.Records += entry.Records
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}

func (w *Watcher) process(ctx context.Context, name string, info os.FileInfo) (Entry, error) {
	entry := Entry{
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ProcessedAt: time.Now().UTC(),
	}

	records, err := record.ReadFile(filepath.Join(w.dir, name))
	if err == nil {
		entry.Records, err = w.writer.Write(ctx, w.dataset, records)
	}
	if err != nil {
		entry.Status = StatusFailed
		entry.Records = 0
		entry.Error = err.Error()
		w.logger.Error("spool file failed",
			log.String("file", name),
			log.String("dataset", w.dataset.String()),
			log.Err(err))
		return entry, err
	}

	entry.Status = StatusPosted
	w.logger.Info("spool file posted",
		log.String("file", name),
		log.String("dataset", w.dataset.String()),
		log.Int(log.KeyRecords, entry.Records))
	return entry, nil
}
