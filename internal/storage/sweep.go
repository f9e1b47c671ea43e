package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/pdfdesk/internal/globaltime"
)

// SweepResult lists what one retention pass removed.
type SweepResult struct {
	Removed        []string
	RemovedBytes   int64
	ScratchRemoved int
	StaleForgotten int
}

// Sweep deletes stored uploads and orphaned scratch files last modified
// before cutoff. Directories other than the scratch root are left alone.
func (s *Store) Sweep(cutoff time.Time) (SweepResult, error) {
	var result SweepResult

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return result, fmt.Errorf("list upload dir: %w", err)
	}
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove upload %s: %w", entry.Name(), err))
			continue
		}
		result.Removed = append(result.Removed, entry.Name())
		result.RemovedBytes += info.Size()
	}

	scratchEntries, err := os.ReadDir(s.scratchRoot)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("list scratch dir: %w", err))
	}
	for _, entry := range scratchEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.scratchRoot, entry.Name())); err == nil {
			result.ScratchRemoved++
		}
	}

	return result, errors.Join(errs...)
}

// staleBatch bounds the ledger rows checked per pass.
const staleBatch = 500

// UploadLedger is the bookkeeping the sweeper keeps in step with the disk.
type UploadLedger interface {
	ForgetUploads(ctx context.Context, names []string) (int64, error)
	ExpiredUploadNames(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// Missing returns the names from names with no file under the root.
// Names that do not resolve inside the root count as missing.
func (s *Store) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		path, err := s.resolve(name)
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil || !errors.Is(statErr, os.ErrNotExist) {
				continue
			}
		}
		missing = append(missing, name)
	}
	return missing
}

// Sweeper applies the retention policy periodically.
type Sweeper struct {
	store     *Store
	retention time.Duration
	interval  time.Duration
	ledger    UploadLedger
	logger    zerolog.Logger
}

func NewSweeper(store *Store, retention, interval time.Duration, ledger UploadLedger, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:     store,
		retention: retention,
		interval:  interval,
		ledger:    ledger,
		logger:    logger,
	}
}

// RunOnce sweeps everything older than the retention window.
func (w *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	if w == nil || w.store == nil {
		return SweepResult{}, fmt.Errorf("sweeper is not initialized")
	}
	if w.retention <= 0 {
		return SweepResult{}, nil
	}

	cutoff := globaltime.Now().Add(-w.retention)
	result, err := w.store.Sweep(cutoff)
	if err != nil {
		w.logger.Error().Err(err).Msg("upload sweep incomplete")
	}
	if w.ledger != nil && len(result.Removed) > 0 {
		forgotten, ledgerErr := w.ledger.ForgetUploads(ctx, result.Removed)
		if ledgerErr != nil {
			w.logger.Error().Err(ledgerErr).Int("files", len(result.Removed)).Msg("forget swept uploads failed")
			err = errors.Join(err, ledgerErr)
		} else {
			w.logger.Debug().Int64("rows", forgotten).Msg("forgot swept uploads")
		}
	}
	if w.ledger != nil {
		stale, staleErr := w.forgetStale(ctx, cutoff)
		result.StaleForgotten = stale
		err = errors.Join(err, staleErr)
	}

	if len(result.Removed) > 0 || result.ScratchRemoved > 0 || result.StaleForgotten > 0 {
		w.logger.Info().
			Int("uploads_removed", len(result.Removed)).
			Int64("bytes_removed", result.RemovedBytes).
			Int("scratch_removed", result.ScratchRemoved).
			Int("stale_rows_forgotten", result.StaleForgotten).
			Dur("retention", w.retention).
			Msg("upload sweep finished")
	}
	return result, err
}

// forgetStale drops expired ledger rows whose file is already gone, such as
// files deleted by hand or by an earlier pass whose ledger update failed.
func (w *Sweeper) forgetStale(ctx context.Context, cutoff time.Time) (int, error) {
	names, err := w.ledger.ExpiredUploadNames(ctx, cutoff, staleBatch)
	if err != nil {
		w.logger.Error().Err(err).Msg("list expired ledger rows failed")
		return 0, err
	}
	stale := w.store.Missing(names)
	if len(stale) == 0 {
		return 0, nil
	}
	if _, err := w.ledger.ForgetUploads(ctx, stale); err != nil {
		w.logger.Error().Err(err).Int("rows", len(stale)).Msg("forget stale ledger rows failed")
		return 0, err
	}
	return len(stale), nil
}

// Run sweeps immediately and then every interval until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	if w == nil || w.retention <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		_, _ = w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
