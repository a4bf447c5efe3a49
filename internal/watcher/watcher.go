// Package watcher reports filesystem deletions under a scanned root so
// the weighted tree can empty the matching leaves while the program
// runs. Only the removal of entries matters here; creations and edits
// would require a rescan anyway.
package watcher

// Event is a deletion observed under the watched root.
type Event struct {
	Path string
}
