package model

import "math"

// PropagateDelta adds delta to this node's weight and to every ancestor
// up to the root. It is the sole mechanism by which a weight change
// becomes visible at ancestor levels; Delete and ResizeByProportion go
// through it rather than touching weights directly.
//
// The delta is rejected before any weight is touched if it would drive
// this node's weight negative. Ancestors hold at least this node's
// weight, so checking the receiver is sufficient.
func (t *Tree) PropagateDelta(delta int64) error {
	if t.weight+delta < 0 {
		return ErrNegativeWeight
	}
	for n := t; n != nil; n = n.parent {
		n.weight += delta
	}
	return nil
}

// Delete empties this leaf in place: the label is cleared, the weight
// drops to zero, and the lost weight is propagated up the former parent
// chain. The node keeps its slot in the parent's children list so later
// layout and lookup calls see a stable child order.
//
// Deleting an internal node returns ErrNotLeaf; deleting an
// already-empty node returns ErrEmptyTree. Neither corrupts any weight.
func (t *Tree) Delete() error {
	if len(t.children) > 0 {
		return ErrNotLeaf
	}
	if t.label == "" {
		return ErrEmptyTree
	}

	w := t.weight
	label := t.label
	t.label = ""
	t.weight = 0
	if t.parent != nil {
		if err := t.parent.PropagateDelta(-w); err != nil {
			// Reachable only when an ancestor was driven below its
			// children's sum; restore the leaf rather than leave it
			// half-deleted.
			t.label = label
			t.weight = w
			return err
		}
	}
	t.parent = nil
	return nil
}

// ResizeByProportion grows or shrinks this node's weight by the signed
// fraction p. The magnitude of the change is ceil(weight*|p|), so both
// growth and shrink round away from zero. The result is clamped to a
// floor of 1: only Delete may zero a node.
//
// Calling this on a zero-weight node is a no-op; that state is reachable
// through normal interaction (resizing a just-deleted leaf).
func (t *Tree) ResizeByProportion(p float64) error {
	if t.weight == 0 {
		return nil
	}

	delta := int64(math.Ceil(float64(t.weight) * math.Abs(p)))
	if p < 0 {
		delta = -delta
	}
	if t.weight+delta < 1 {
		delta = 1 - t.weight
	}
	return t.PropagateDelta(delta)
}
