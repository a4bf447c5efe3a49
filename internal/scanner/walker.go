package scanner

import (
	"context"
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/lumipallolabs/sizemap/internal/model"
)

// Walker implements parallel filesystem scanning with fastwalk.
type Walker struct {
	builder    *model.Builder
	progressCh chan Progress
	progress   Progress
}

// NewWalker creates a filesystem walker. The rng seeds the colors of
// the constructed tree; nil means time-seeded.
func NewWalker(rng *rand.Rand) *Walker {
	return &Walker{
		builder:    model.NewBuilder(model.FilePathFormatter{}, rng),
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel.
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// nodeEntry is a flat record collected during the walk; the tree is
// assembled bottom-up afterwards since weights derive from children.
type nodeEntry struct {
	path  string
	name  string
	size  int64
	isDir bool
}

// Scan walks the filesystem under root and builds the weighted tree.
func (w *Walker) Scan(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Platform-specific root info for mount point detection.
	rootInfo := getPlatformRootInfo(absRoot)

	// Collect entries lock-free through a channel.
	entryChan := make(chan nodeEntry, 50000)
	var entries []nodeEntry
	var entriesWg sync.WaitGroup

	entriesWg.Add(1)
	go func() {
		defer entriesWg.Done()
		collected := make([]nodeEntry, 0, 4096)
		for e := range entryChan {
			collected = append(collected, e)
		}
		entries = collected
	}()

	// Seen inodes, for hard-link and firmlink deduplication.
	var seenItems sync.Map

	conf := &fastwalk.Config{
		Follow: false, // never follow symlinks
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // skip unreadable entries
		}
		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(path, d, rootInfo, &seenItems) {
				return fs.SkipDir
			}
			atomic.AddInt64(&w.progress.DirsScanned, 1)
		} else {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			size := getFileSize(info, &seenItems)
			if size < 0 {
				// Already counted through another hard link.
				return nil
			}

			files := atomic.AddInt64(&w.progress.FilesScanned, 1)
			bytes := atomic.AddInt64(&w.progress.BytesFound, size)
			if files%1024 == 0 {
				w.report(Progress{
					FilesScanned: files,
					DirsScanned:  atomic.LoadInt64(&w.progress.DirsScanned),
					BytesFound:   bytes,
				})
			}

			entryChan <- nodeEntry{path: path, name: d.Name(), size: size}
			return nil
		}

		entryChan <- nodeEntry{path: path, name: d.Name(), isDir: true}
		return nil
	})

	close(entryChan)
	entriesWg.Wait()

	if walkErr != nil && walkErr != ctx.Err() {
		close(w.progressCh)
		return nil, walkErr
	}

	result, err := w.buildTree(absRoot, entries)
	close(w.progressCh)
	return result, err
}

// report sends a progress update without ever blocking the walk.
func (w *Walker) report(p Progress) {
	select {
	case w.progressCh <- p:
	default:
	}
}

// buildTree assembles the weighted tree bottom-up from flat entries.
// Children are ordered by name so layout is reproducible across scans.
func (w *Walker) buildTree(rootPath string, entries []nodeEntry) (*Result, error) {
	byParent := make(map[string][]nodeEntry, len(entries)/8+1)
	for _, e := range entries {
		parent := filepath.Dir(e.path)
		byParent[parent] = append(byParent[parent], e)
	}
	for _, kids := range byParent {
		sort.Slice(kids, func(i, j int) bool { return kids[i].name < kids[j].name })
	}

	ix := newIndex()

	var build func(e nodeEntry) (*model.Tree, error)
	build = func(e nodeEntry) (*model.Tree, error) {
		if !e.isDir {
			leaf, err := w.builder.Leaf(e.name, e.size)
			if err != nil {
				return nil, err
			}
			ix.add(e.path, leaf)
			return leaf, nil
		}

		kids := byParent[e.path]
		children := make([]*model.Tree, 0, len(kids))
		for _, kid := range kids {
			child, err := build(kid)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}

		var node *model.Tree
		var err error
		if len(children) == 0 {
			// Empty directory: a weightless leaf that never renders.
			node, err = w.builder.Leaf(e.name, 0)
		} else {
			node, err = w.builder.Branch(e.name, children)
		}
		if err != nil {
			return nil, err
		}
		ix.add(e.path, node)
		return node, nil
	}

	root, err := build(nodeEntry{path: rootPath, name: filepath.Base(rootPath), isDir: true})
	if err != nil {
		return nil, err
	}
	return &Result{Tree: root, Index: ix}, nil
}

// Ensure Walker implements Scanner.
var _ Scanner = (*Walker)(nil)
