//go:build !windows

package config

import "golang.org/x/sys/unix"

// freeSpace returns the bytes available to an unprivileged caller on the
// filesystem holding dir.
func freeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
