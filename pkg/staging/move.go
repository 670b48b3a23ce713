package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// link is replaced in tests to simulate filesystems without hard links
var link = os.Link

// Move relocates src to dst without ever replacing an existing dst. It links
// when possible and falls back to an exclusive copy when src and dst live on
// different filesystems or the filesystem has no hard links. An existing dst
// yields an error matching fs.ErrExist.
func Move(src, dst string) error {
	err := link(src, dst)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("failed to move %s: %w", src, err)
	default:
		if cerr := Copy(src, dst); cerr != nil {
			return fmt.Errorf("link failed (%v), copy failed: %w", err, cerr)
		}
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("placed %s but failed to remove %s: %w", filepath.Base(dst), src, err)
	}
	return nil
}

// Copy writes the contents of src to a new file at dst and syncs it.
// dst must not exist.
func Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, filepath.Base(dst), err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", dst, err)
	}
	return nil
}
