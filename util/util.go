// Package util holds the low-level byte and file primitives shared by the
// rest of the module: hex rendering, physical file preallocation, and
// random-access range reads and writes against a shard file.
package util

import (
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// BytesToHex renders b as a lowercase hex string.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// CreatePhysicalFile creates (or reuses) a file of exactly size bytes by
// seeking to size-1 and writing a single zero byte. On filesystems with
// sparse file support this allocates no data blocks up front.
func CreatePhysicalFile(path string, size uint64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if size > 0 {
		if _, err := f.Seek(int64(size-1), io.SeekStart); err != nil {
			return errors.Wrapf(err, "seeking to %d in %s", size-1, path)
		}
		if _, err := f.Write([]byte{0}); err != nil {
			return errors.Wrapf(err, "extending %s to %d bytes", path, size)
		}
	}

	return nil
}

// ReadRange reads the bytes in [start, end) from the file at path.
func ReadRange(path string, start, end uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, int64(start)); err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes at %d from %s", end-start, start, path)
	}

	return buf, nil
}

// WriteRange writes data into the file at path starting at byte start. The
// file must already exist; writes past the current end extend it.
func WriteRange(path string, start uint64, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, int64(start)); err != nil {
		return errors.Wrapf(err, "writing %d bytes at %d to %s", len(data), start, path)
	}

	return nil
}

// NowUnix returns the current wall-clock time in seconds since the epoch.
func NowUnix() uint64 {
	return uint64(time.Now().Unix())
}
