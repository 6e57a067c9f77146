// Package source acquires the source trees the pipeline builds from.
//
// Repositories are cloned into the sources directory, optionally pinned to
// a commit, and stored as "<dir>.tar.gz" cache archives with a digest
// sidecar. Build stages restore their trees from those archives instead of
// working on the clones, so repeated builds start from identical inputs
// without network traffic.
//
// A pinned repository can only be cloned fresh: reusing an existing clone
// would silently build whatever that clone currently has checked out, so
// [Acquirer.CloneOrRestore] refuses with [ErrPinnedExists]. Unpinned
// repositories are updated in place with "git pull".
package source
