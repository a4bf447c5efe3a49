package model

import (
	"math/rand"
	"time"
)

// Builder constructs trees for one adapter: it carries the adapter's
// path formatter and the random source used to pick node colors, so a
// seeded source makes colors reproducible in tests.
type Builder struct {
	rng   *rand.Rand
	paths PathFormatter
}

// NewBuilder creates a builder. A nil rng falls back to a time-seeded
// source.
func NewBuilder(paths PathFormatter, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if paths == nil {
		paths = FilePathFormatter{}
	}
	return &Builder{rng: rng, paths: paths}
}

// Leaf constructs a leaf node with the given stored weight.
func (b *Builder) Leaf(label string, weight int64) (*Tree, error) {
	return New(label, nil, weight, b.randomColor(), b.paths)
}

// Branch constructs an internal node whose weight is the sum of the
// children's weights. Children are adopted in the given order.
func (b *Builder) Branch(label string, children []*Tree) (*Tree, error) {
	return New(label, children, 0, b.randomColor(), b.paths)
}

// randomColor picks uniformly over the RGB cube.
func (b *Builder) randomColor() Color {
	return Color{
		R: uint8(b.rng.Intn(256)),
		G: uint8(b.rng.Intn(256)),
		B: uint8(b.rng.Intn(256)),
	}
}
