package model

import "path/filepath"

// PathFormatter renders the ancestor-to-node path string for a domain.
// The formatter is chosen when an adapter builds its tree: filesystem
// trees join with the OS path separator, population trees join with a
// double dash.
type PathFormatter interface {
	// Join combines an already-rendered ancestor path with a node label.
	Join(parent, label string) string
}

// FilePathFormatter joins labels like filesystem path elements.
type FilePathFormatter struct{}

// Join implements PathFormatter using filepath.Join.
func (FilePathFormatter) Join(parent, label string) string {
	return filepath.Join(parent, label)
}

// SeparatorFormatter joins labels with a fixed separator string.
type SeparatorFormatter struct {
	Sep string
}

// Join implements PathFormatter.
func (f SeparatorFormatter) Join(parent, label string) string {
	return parent + f.Sep + label
}

// PathLabel renders the path from the tree's root down to this node
// using the formatter the node was built with. A detached or root node
// renders as its own label.
func (t *Tree) PathLabel() string {
	if t.parent == nil {
		return t.label
	}
	return t.paths.Join(t.parent.PathLabel(), t.label)
}
