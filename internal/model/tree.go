// Package model implements the weighted tree that backs the treemap:
// every node carries a non-negative weight, internal nodes derive theirs
// from their children, and mutations keep ancestor weights consistent.
package model

// Color is an RGB triple assigned to a node at construction.
// Only leaf colors are ever rendered.
type Color struct {
	R, G, B uint8
}

// Tree is a node in a rooted, ordered, mutable weighted tree.
//
// A Tree with an empty label is the empty tree: no children, no parent,
// weight zero. Deleted leaves become empty trees in place, keeping their
// slot in the parent's children so layout order stays stable.
type Tree struct {
	label    string
	weight   int64
	children []*Tree
	parent   *Tree
	color    Color
	paths    PathFormatter
}

// New creates a tree node.
//
// If children is non-empty the weight is computed as the sum of the
// children's weights and the explicit weight must be zero; each child's
// parent reference is set to the new node. If children is empty, weight
// is the leaf's stored weight. An empty label is only valid for the
// empty-tree sentinel and cannot carry children.
func New(label string, children []*Tree, weight int64, color Color, paths PathFormatter) (*Tree, error) {
	if label == "" && len(children) > 0 {
		return nil, ErrEmptyWithChildren
	}
	if weight < 0 {
		return nil, ErrNegativeWeight
	}
	if paths == nil {
		paths = FilePathFormatter{}
	}

	t := &Tree{
		label: label,
		color: color,
		paths: paths,
	}

	if len(children) > 0 {
		if weight != 0 {
			return nil, ErrWeightWithChildren
		}
		t.children = children
		for _, child := range children {
			t.weight += child.weight
			child.parent = t
		}
		return t, nil
	}

	t.weight = weight
	if label == "" {
		t.weight = 0
	}
	return t, nil
}

// Empty returns the empty-tree sentinel: no label, no children, weight 0.
func Empty() *Tree {
	return &Tree{paths: FilePathFormatter{}}
}

// IsEmpty reports whether this is an empty tree (a missing or deleted node).
func (t *Tree) IsEmpty() bool {
	return t.label == ""
}

// IsLeaf reports whether this node has a label but no children.
func (t *Tree) IsLeaf() bool {
	return t.label != "" && len(t.children) == 0
}

// Label returns the node's identifying value, or "" for an empty tree.
func (t *Tree) Label() string {
	return t.label
}

// Weight returns the node's weight. For internal nodes this is always
// the sum of the children's weights.
func (t *Tree) Weight() int64 {
	return t.weight
}

// Color returns the color chosen for this node at construction.
func (t *Tree) Color() Color {
	return t.color
}

// Parent returns the containing node, or nil for a root or detached node.
func (t *Tree) Parent() *Tree {
	return t.parent
}

// Children returns the ordered child list. Callers must not modify it;
// order is significant for layout and is preserved across mutation.
func (t *Tree) Children() []*Tree {
	return t.children
}

// Root walks parent references up to the tree's root.
func (t *Tree) Root() *Tree {
	n := t
	for n.parent != nil {
		n = n.parent
	}
	return n
}
