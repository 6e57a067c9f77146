//go:build unix

package fsutil

import "golang.org/x/sys/unix"

// Reports whether the calling user may write to path.
func writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
