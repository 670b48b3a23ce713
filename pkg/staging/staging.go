// Package staging manages the run-scoped directory a browser downloads into,
// detects when the export has finished downloading, and moves it to its final
// location.
package staging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// CSVExtension marks a completed export
	CSVExtension = ".csv"
	// PartialExtension marks a download Chrome is still writing
	PartialExtension = ".crdownload"

	dirPrefix  = "zaim-export-"
	profileDir = ".profile"
)

// ErrDownloadTimeout is returned when no completed file appears in time.
var ErrDownloadTimeout = errors.New("download did not complete in time")

// Dir is one staging directory. It is created by New and must be released
// with Remove.
type Dir struct {
	path   string
	logger *logrus.Logger
}

// New creates a uniquely named staging directory under root. An empty root
// uses the system temp directory.
func New(root string, logger *logrus.Logger) (*Dir, error) {
	path, err := os.MkdirTemp(root, dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	logger.WithField("staging_dir", path).Debug("Staging directory created")
	return &Dir{path: path, logger: logger}, nil
}

// Path is the download target.
func (d *Dir) Path() string {
	return d.path
}

// ProfileDir is a hidden subdirectory reserved for the browser profile.
func (d *Dir) ProfileDir() string {
	return filepath.Join(d.path, profileDir)
}

// Remove deletes the directory and everything in it.
func (d *Dir) Remove() error {
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", d.path, err)
	}
	d.logger.WithField("staging_dir", d.path).Debug("Removed staging directory")
	return nil
}

// IsCompleted reports whether name is a finished CSV download.
func IsCompleted(name string) bool {
	return strings.HasSuffix(name, CSVExtension) && !strings.HasSuffix(name, PartialExtension)
}

// FindCompleted returns the name of the first completed CSV in the directory,
// or "" if there is none yet.
func (d *Dir) FindCompleted() (string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return "", fmt.Errorf("failed to list staging directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsCompleted(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", nil
	}

	d.logger.WithField("files", names).Debug("Files found in staging directory")
	return names[0], nil
}

// WaitForDownload checks the directory once per interval until a completed CSV
// shows up, and returns its full path. It fails with ErrDownloadTimeout once
// timeout has elapsed since the first check.
func (d *Dir) WaitForDownload(ctx context.Context, interval, timeout time.Duration) (string, error) {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	start := time.Now()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for download: %w", err)
		}

		name, err := d.FindCompleted()
		if err != nil {
			return "", err
		}
		if name != "" {
			return filepath.Join(d.path, name), nil
		}

		if elapsed := time.Since(start); elapsed > timeout {
			d.logger.WithFields(logrus.Fields{
				"staging_dir": d.path,
				"elapsed":     elapsed.String(),
			}).Debug("No completed download found")
			return "", fmt.Errorf("%w after %s", ErrDownloadTimeout, timeout)
		}
	}
}
