package model

import "errors"

var (
	// ErrEmptyWithChildren is returned when constructing an unlabeled
	// node with a non-empty child list.
	ErrEmptyWithChildren = errors.New("model: empty tree cannot have children")

	// ErrWeightWithChildren is returned when an explicit weight is given
	// alongside children; internal weights are always derived.
	ErrWeightWithChildren = errors.New("model: explicit weight not allowed with children")

	// ErrNegativeWeight is returned when a construction or delta would
	// produce a negative weight.
	ErrNegativeWeight = errors.New("model: weight must be non-negative")

	// ErrNotLeaf is returned by Delete on a node with children.
	ErrNotLeaf = errors.New("model: delete requires a leaf")

	// ErrEmptyTree is returned by Delete on an already-empty node.
	ErrEmptyTree = errors.New("model: node is already empty")
)
