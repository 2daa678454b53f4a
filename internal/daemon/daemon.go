// Package daemon syncs a library onto removable devices as they appear.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	ioutils "github.com/koriwi/rocksonic/internal/io"
)

// SyncFunc runs one session with root as the output directory.
type SyncFunc func(ctx context.Context, root string) error

// Options configures a Daemon.
type Options struct {
	// WatchDir is the directory devices get mounted under.
	WatchDir string

	// Marker is the file that identifies a target device, relative to the
	// mount point.
	Marker string

	// OutputSubdir is the library root relative to the mount point.
	OutputSubdir string

	PollInterval time.Duration

	// LockPath guards against two daemons syncing at once.
	LockPath string
}

// Daemon waits for a marked device, syncs onto it once and waits for it to
// go away before looking again.
type Daemon struct {
	opts   Options
	sync   SyncFunc
	logger *log.Logger
	lock   *flock.Flock

	running atomic.Bool
}

// New constructs a Daemon.
func New(opts Options, sync SyncFunc, logger *log.Logger) (*Daemon, error) {
	if sync == nil {
		return nil, errors.New("daemon requires a sync function")
	}
	if opts.WatchDir == "" || opts.Marker == "" || opts.LockPath == "" {
		return nil, errors.New("daemon requires watch dir, marker and lock path")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Daemon{
		opts:   opts,
		sync:   sync,
		logger: logger,
		lock:   flock.New(opts.LockPath),
	}, nil
}

// Run holds the daemon lock and loops until ctx is cancelled. Session
// errors are logged; only lock failures end the loop early.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another rocksonic daemon holds %s", d.opts.LockPath)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", "err", err)
		}
	}()

	d.logger.Info("daemon started", "watch", d.opts.WatchDir, "marker", d.opts.Marker, "lock", d.opts.LockPath)
	for {
		mount, err := d.waitForDevice(ctx)
		if err != nil {
			break
		}

		root := filepath.Join(mount, d.opts.OutputSubdir)
		d.logger.Info("device found", "mount", mount, "root", root)
		if err := d.sync(ctx, root); err != nil {
			d.logger.Error("sync failed", "mount", mount, "err", err)
		} else {
			d.logger.Info("sync finished", "mount", mount)
		}

		if err := d.waitForRemoval(ctx, mount); err != nil {
			break
		}
		d.logger.Info("device removed", "mount", mount)
	}

	d.logger.Info("daemon stopped")
	return nil
}

// Running reports whether Run is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

func (d *Daemon) waitForDevice(ctx context.Context) (string, error) {
	var mount string
	err := d.poll(ctx, func() bool {
		found, ok, err := FindDevice(d.opts.WatchDir, d.opts.Marker)
		if err != nil {
			d.logger.Debug("scan failed", "dir", d.opts.WatchDir, "err", err)
			return false
		}
		mount = found
		return ok
	})
	return mount, err
}

func (d *Daemon) waitForRemoval(ctx context.Context, mount string) error {
	return d.poll(ctx, func() bool {
		present, err := ioutils.Exists(mount)
		return err == nil && !present
	})
}

// poll calls done immediately and then every PollInterval until it returns
// true or ctx ends.
func (d *Daemon) poll(ctx context.Context, done func() bool) error {
	if done() {
		return nil
	}
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done() {
				return nil
			}
		}
	}
}

// FindDevice returns the first directory under watchDir, in name order,
// that contains marker. os.ReadDir returns entries sorted by name.
func FindDevice(watchDir, marker string) (string, bool, error) {
	entries, err := os.ReadDir(watchDir)
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		mount := filepath.Join(watchDir, e.Name())
		ok, err := ioutils.Exists(filepath.Join(mount, marker))
		if err == nil && ok {
			return mount, true, nil
		}
	}
	return "", false, nil
}
