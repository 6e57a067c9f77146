// Package fsutil holds the filesystem operations shared by the pipeline
// stages: forceful directory removal, file and tree copies, and existence
// checks.
//
// [RemoveAll] is the cleanup primitive. Stale build trees routinely contain
// read-only files and directories (git object stores, installed headers), so
// a removal that fails on permissions repairs the permission bits of the
// whole tree and retries exactly once. Removing a path that does not exist
// is a no-op.
package fsutil
