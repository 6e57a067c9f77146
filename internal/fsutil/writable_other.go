//go:build !unix

package fsutil

import "os"

// Reports whether the owner write bit is set on path. On Windows this is
// the inverse of the read-only attribute.
func writable(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0200 != 0
}
