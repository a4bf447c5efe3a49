// Package scanner builds a weighted tree from a filesystem subtree.
// Directories become internal nodes, regular files become leaves whose
// weight is their on-disk size.
package scanner

import (
	"context"

	"github.com/lumipallolabs/sizemap/internal/model"
)

// Progress reports scanning progress.
type Progress struct {
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

// Result is a fully-formed tree plus the path index needed to resolve
// filesystem paths back to nodes (watcher events, file inspection).
type Result struct {
	Tree  *model.Tree
	Index *Index
}

// Scanner defines the interface for filesystem scanning.
type Scanner interface {
	// Scan scans the given root path and returns the weighted tree.
	Scan(ctx context.Context, root string) (*Result, error)

	// Progress returns a channel that receives progress updates. It is
	// closed when the scan finishes.
	Progress() <-chan Progress
}

// Index maps between filesystem paths and tree nodes.
type Index struct {
	byPath map[string]*model.Tree
	paths  map[*model.Tree]string
}

func newIndex() *Index {
	return &Index{
		byPath: make(map[string]*model.Tree),
		paths:  make(map[*model.Tree]string),
	}
}

func (ix *Index) add(path string, t *model.Tree) {
	ix.byPath[path] = t
	ix.paths[t] = path
}

// ByPath returns the node for a filesystem path, or nil.
func (ix *Index) ByPath(path string) *model.Tree {
	return ix.byPath[path]
}

// PathOf returns the filesystem path a node was built from.
func (ix *Index) PathOf(t *model.Tree) (string, bool) {
	p, ok := ix.paths[t]
	return p, ok
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int {
	return len(ix.byPath)
}
