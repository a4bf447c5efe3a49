package model

import (
	"errors"
	"math/rand"
	"testing"
)

func testBuilder() *Builder {
	return NewBuilder(FilePathFormatter{}, rand.New(rand.NewSource(1)))
}

// buildFixture returns root -> (a:10, b:20, c:30).
func buildFixture(t *testing.T) (root, a, b, c *Tree) {
	t.Helper()
	bld := testBuilder()

	a, err := bld.Leaf("a", 10)
	if err != nil {
		t.Fatalf("leaf a: %v", err)
	}
	b, err = bld.Leaf("b", 20)
	if err != nil {
		t.Fatalf("leaf b: %v", err)
	}
	c, err = bld.Leaf("c", 30)
	if err != nil {
		t.Fatalf("leaf c: %v", err)
	}
	root, err = bld.Branch("root", []*Tree{a, b, c})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	return root, a, b, c
}

func TestBranchWeightFromChildren(t *testing.T) {
	root, a, b, c := buildFixture(t)

	if root.Weight() != 60 {
		t.Errorf("expected weight 60, got %d", root.Weight())
	}
	for _, child := range []*Tree{a, b, c} {
		if child.Parent() != root {
			t.Errorf("child %s not wired to parent", child.Label())
		}
	}
	if len(root.Children()) != 3 {
		t.Errorf("expected 3 children, got %d", len(root.Children()))
	}
}

func TestConstructionErrors(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("x", 5)

	if _, err := New("", []*Tree{leaf}, 0, Color{}, nil); !errors.Is(err, ErrEmptyWithChildren) {
		t.Errorf("expected ErrEmptyWithChildren, got %v", err)
	}
	if _, err := New("n", []*Tree{leaf}, 7, Color{}, nil); !errors.Is(err, ErrWeightWithChildren) {
		t.Errorf("expected ErrWeightWithChildren, got %v", err)
	}
	if _, err := New("n", nil, -1, Color{}, nil); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("expected ErrNegativeWeight, got %v", err)
	}
}

func TestEmptySentinel(t *testing.T) {
	e := Empty()
	if !e.IsEmpty() || e.Weight() != 0 || e.Parent() != nil || len(e.Children()) != 0 {
		t.Error("empty tree should have no label, no weight, no parent, no children")
	}
}

func TestPropagateDelta(t *testing.T) {
	root, a, _, _ := buildFixture(t)

	if err := a.PropagateDelta(100); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if a.Weight() != 110 {
		t.Errorf("leaf weight: expected 110, got %d", a.Weight())
	}
	if root.Weight() != 160 {
		t.Errorf("root weight: expected 160, got %d", root.Weight())
	}

	// A delta that would go negative is rejected with nothing mutated.
	if err := a.PropagateDelta(-200); !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}
	if a.Weight() != 110 || root.Weight() != 160 {
		t.Error("rejected delta must not change any weight")
	}
}

func TestDeleteEmptiesLeafInPlace(t *testing.T) {
	root, _, b, _ := buildFixture(t)

	if err := b.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !b.IsEmpty() {
		t.Error("deleted leaf should be empty")
	}
	if b.Weight() != 0 {
		t.Errorf("deleted leaf weight: expected 0, got %d", b.Weight())
	}
	if b.Parent() != nil {
		t.Error("deleted leaf should be detached from its parent")
	}
	if root.Weight() != 40 {
		t.Errorf("root weight after delete: expected 40, got %d", root.Weight())
	}
	// The slot is emptied, never spliced out.
	if len(root.Children()) != 3 {
		t.Errorf("expected 3 child slots, got %d", len(root.Children()))
	}
	if root.Children()[1] != b {
		t.Error("deleted leaf should keep its position")
	}
}

func TestDeleteErrors(t *testing.T) {
	root, _, b, _ := buildFixture(t)

	if err := root.Delete(); !errors.Is(err, ErrNotLeaf) {
		t.Errorf("delete on internal node: expected ErrNotLeaf, got %v", err)
	}

	if err := b.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	weightBefore := root.Weight()
	if err := b.Delete(); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("second delete: expected ErrEmptyTree, got %v", err)
	}
	if root.Weight() != weightBefore {
		t.Error("rejected delete must not change ancestor weights")
	}
}

func TestDeleteRootLeaf(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("solo", 9)

	if err := leaf.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !leaf.IsEmpty() || leaf.Weight() != 0 {
		t.Error("detached leaf should become the empty tree")
	}
}

func TestResizeGrow(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("f", 100)
	sib, _ := bld.Leaf("g", 50)
	root, _ := bld.Branch("root", []*Tree{leaf, sib})

	if err := leaf.ResizeByProportion(0.25); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if leaf.Weight() != 125 {
		t.Errorf("expected 125, got %d", leaf.Weight())
	}
	if root.Weight() != 175 {
		t.Errorf("parent should gain exactly 25, got %d", root.Weight())
	}
}

func TestResizeShrinkRoundsUp(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("f", 100)

	// ceil(100*0.011) = 2, not 1.
	if err := leaf.ResizeByProportion(-0.011); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if leaf.Weight() != 98 {
		t.Errorf("expected 98, got %d", leaf.Weight())
	}
}

func TestResizeFloorsAtOne(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("f", 3)
	root, _ := bld.Branch("root", []*Tree{leaf})

	// Naive delta is -ceil(2.7) = -3, clamped so the weight floors at 1.
	if err := leaf.ResizeByProportion(-0.9); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if leaf.Weight() != 1 {
		t.Errorf("expected weight 1, got %d", leaf.Weight())
	}
	if root.Weight() != 1 {
		t.Errorf("expected root weight 1, got %d", root.Weight())
	}
}

func TestResizeZeroWeightIsNoOp(t *testing.T) {
	bld := testBuilder()
	leaf, _ := bld.Leaf("f", 4)
	root, _ := bld.Branch("root", []*Tree{leaf})

	if err := leaf.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := leaf.ResizeByProportion(0.5); err != nil {
		t.Fatalf("resize on zero weight should be a no-op, got %v", err)
	}
	if leaf.Weight() != 0 || root.Weight() != 0 {
		t.Error("no-op resize must not change weights")
	}
}

func TestWeightConservation(t *testing.T) {
	bld := testBuilder()
	l1, _ := bld.Leaf("l1", 10)
	l2, _ := bld.Leaf("l2", 20)
	l3, _ := bld.Leaf("l3", 30)
	l4, _ := bld.Leaf("l4", 40)
	mid, _ := bld.Branch("mid", []*Tree{l1, l2})
	root, _ := bld.Branch("root", []*Tree{mid, l3, l4})

	checkSums := func(step string) {
		t.Helper()
		var walk func(n *Tree)
		walk = func(n *Tree) {
			if len(n.Children()) == 0 {
				return
			}
			var sum int64
			for _, c := range n.Children() {
				sum += c.Weight()
			}
			if n.Weight() != sum {
				t.Errorf("%s: node %q weight %d != child sum %d", step, n.Label(), n.Weight(), sum)
			}
			for _, c := range n.Children() {
				walk(c)
			}
		}
		walk(root)
	}

	checkSums("initial")
	if err := l1.ResizeByProportion(0.5); err != nil {
		t.Fatal(err)
	}
	checkSums("after grow")
	if err := l2.Delete(); err != nil {
		t.Fatal(err)
	}
	checkSums("after delete")
	if err := l3.ResizeByProportion(-0.99); err != nil {
		t.Fatal(err)
	}
	checkSums("after shrink")
	if err := l4.ResizeByProportion(0.01); err != nil {
		t.Fatal(err)
	}
	checkSums("after small grow")
}

func TestPathLabelFilesystem(t *testing.T) {
	bld := NewBuilder(FilePathFormatter{}, rand.New(rand.NewSource(1)))
	leaf, _ := bld.Leaf("notes.txt", 5)
	docs, _ := bld.Branch("docs", []*Tree{leaf})
	home, _ := bld.Branch("home", []*Tree{docs})

	want := FilePathFormatter{}.Join(FilePathFormatter{}.Join("home", "docs"), "notes.txt")
	if got := leaf.PathLabel(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := home.PathLabel(); got != "home" {
		t.Errorf("root path label: expected %q, got %q", "home", got)
	}
}

func TestPathLabelSeparator(t *testing.T) {
	bld := NewBuilder(SeparatorFormatter{Sep: " -- "}, rand.New(rand.NewSource(1)))
	country, _ := bld.Leaf("Finland", 5)
	region, _ := bld.Branch("Europe & Central Asia", []*Tree{country})
	world, _ := bld.Branch("World", []*Tree{region})
	_ = world

	want := "World -- Europe & Central Asia -- Finland"
	if got := country.PathLabel(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuilderColorsDeterministic(t *testing.T) {
	b1 := NewBuilder(nil, rand.New(rand.NewSource(42)))
	b2 := NewBuilder(nil, rand.New(rand.NewSource(42)))

	for i := 0; i < 5; i++ {
		l1, _ := b1.Leaf("x", 1)
		l2, _ := b2.Leaf("x", 1)
		if l1.Color() != l2.Color() {
			t.Fatalf("same seed should give same colors, got %v vs %v", l1.Color(), l2.Color())
		}
	}
}

// If an ancestor was driven below its children's sum through a direct
// PropagateDelta, a later Delete fails when removing the leaf's weight
// would turn that ancestor negative. The leaf must come back intact.
func TestDeleteRollbackRestoresLeaf(t *testing.T) {
	root, a, _, _ := buildFixture(t)

	if err := root.PropagateDelta(-55); err != nil {
		t.Fatalf("propagate: %v", err)
	}

	if err := a.Delete(); !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}
	if a.IsEmpty() {
		t.Error("rejected delete must keep the leaf's label")
	}
	if a.Label() != "a" || a.Weight() != 10 {
		t.Errorf("leaf after rejected delete = %q/%d, want a/10", a.Label(), a.Weight())
	}
	if a.Parent() != root {
		t.Error("rejected delete must keep the parent link")
	}
}
