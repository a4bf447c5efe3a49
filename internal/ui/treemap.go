package ui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"
	"github.com/lumipallolabs/sizemap/internal/layout"
	"github.com/lumipallolabs/sizemap/internal/model"
)

// Block is one rendered rectangle: the leaf (or subtree, in squarified
// mode) it belongs to and its position in grid cells.
type Block struct {
	Node          *model.Tree
	X, Y          int
	Width, Height int
}

// TreemapPanel renders a weighted tree as colored cells. The default
// layout is the recursive slice-and-dice subdivision from the layout
// package; the alternate mode squarifies the root's immediate children.
type TreemapPanel struct {
	root       *model.Tree
	selected   *model.Tree
	blocks     []Block
	width      int
	height     int
	squarified bool

	formatWeight func(int64) string
}

// NewTreemapPanel creates a new treemap panel
func NewTreemapPanel() TreemapPanel {
	return TreemapPanel{formatWeight: FormatSize}
}

// SetFormatWeight overrides how weights are printed inside blocks
func (t *TreemapPanel) SetFormatWeight(f func(int64) string) {
	if f != nil {
		t.formatWeight = f
	}
}

// SetRoot sets the displayed tree and recomputes the layout
func (t *TreemapPanel) SetRoot(root *model.Tree) {
	t.root = root
	t.selected = nil
	t.Relayout()
}

// SetSize sets the panel dimensions in cells
func (t *TreemapPanel) SetSize(w, h int) {
	t.width = w
	t.height = h
	t.Relayout()
}

// SetSquarified switches between the two layout modes
func (t *TreemapPanel) SetSquarified(on bool) {
	t.squarified = on
	t.Relayout()
}

// ToggleLayout flips the layout mode
func (t *TreemapPanel) ToggleLayout() {
	t.SetSquarified(!t.squarified)
}

// Squarified reports the current layout mode
func (t TreemapPanel) Squarified() bool {
	return t.squarified
}

// Select sets the selected node. Selecting the current selection again
// clears it.
func (t *TreemapPanel) Select(node *model.Tree) {
	if node == t.selected {
		t.selected = nil
		return
	}
	t.selected = node
}

// ClearSelection drops the current selection
func (t *TreemapPanel) ClearSelection() {
	t.selected = nil
}

// Selected returns the currently selected node, or nil
func (t TreemapPanel) Selected() *model.Tree {
	return t.selected
}

// Blocks returns the laid-out blocks for the current size and mode
func (t TreemapPanel) Blocks() []Block {
	return t.blocks
}

// HitTest returns the node at panel cell (x, y), or nil. In
// slice-and-dice mode this resolves through the tree partitioning; in
// squarified mode it scans the laid-out blocks.
func (t TreemapPanel) HitTest(x, y int) *model.Tree {
	if t.root == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return nil
	}
	if !t.squarified {
		return layout.LeafAt(t.root, layout.Point{X: x, Y: y}, t.contentRect())
	}
	for i := range t.blocks {
		b := &t.blocks[i]
		if x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height {
			return b.Node
		}
	}
	return nil
}

// Relayout recomputes block positions, preserving the selection when
// the selected node still paints.
func (t *TreemapPanel) Relayout() {
	t.blocks = nil

	if t.root == nil || t.width < 1 || t.height < 1 || t.root.Weight() == 0 {
		t.selected = nil
		return
	}

	if t.squarified {
		t.layoutSquarified()
	} else {
		t.layoutSliceDice()
	}

	if t.selected != nil && !t.hasBlockFor(t.selected) {
		t.selected = nil
	}
}

func (t *TreemapPanel) contentRect() layout.Rect {
	return layout.Rect{X: 0, Y: 0, W: t.width, H: t.height}
}

// layoutSliceDice paints every positive-weight leaf. Each paint is
// mapped back to its leaf by resolving a point near the block's
// center. The point rounds up so it never lands on the left or top edge:
// edges are inclusive on both sides and a shared edge resolves to the
// earlier sibling, which for a 1-cell strip would be the neighbor.
func (t *TreemapPanel) layoutSliceDice() {
	rect := t.contentRect()
	for _, p := range layout.Treemap(t.root, rect) {
		if p.Rect.W < 1 || p.Rect.H < 1 {
			continue
		}
		node := layout.LeafAt(t.root, layout.Point{
			X: p.Rect.X + (p.Rect.W+1)/2,
			Y: p.Rect.Y + (p.Rect.H+1)/2,
		}, rect)
		t.blocks = append(t.blocks, Block{
			Node:   node,
			X:      p.Rect.X,
			Y:      p.Rect.Y,
			Width:  p.Rect.W,
			Height: p.Rect.H,
		})
	}
}

// treemapItem wraps a node for the squarify algorithm
type treemapItem struct {
	node     *model.Tree
	size     float64
	children []*treemapItem
}

// Size implements squarify.TreeSizer
func (t *treemapItem) Size() float64 {
	return t.size
}

// NumChildren implements squarify.TreeSizer
func (t *treemapItem) NumChildren() int {
	return len(t.children)
}

// Child implements squarify.TreeSizer
func (t *treemapItem) Child(i int) squarify.TreeSizer {
	return t.children[i]
}

// layoutSquarified lays out the root's immediate positive-weight
// subtrees with the squarify library, size-descending.
func (t *TreemapPanel) layoutSquarified() {
	kids := t.root.Children()
	if len(kids) == 0 {
		t.blocks = append(t.blocks, Block{
			Node: t.root, X: 0, Y: 0, Width: t.width, Height: t.height,
		})
		return
	}

	items := make([]*treemapItem, 0, len(kids))
	for _, k := range kids {
		if k.Weight() > 0 {
			items = append(items, &treemapItem{node: k, size: float64(k.Weight())})
		}
	}
	if len(items) == 0 {
		return
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].size > items[j].size
	})

	root := &treemapItem{children: items}
	for _, it := range items {
		root.size += it.size
	}

	blocks, metas := squarify.Squarify(root, squarify.Rect{
		W: float64(t.width),
		H: float64(t.height),
	}, squarify.Options{
		MaxDepth: 1,
		Sort:     true,
	})

	for i, block := range blocks {
		item, ok := block.TreeSizer.(*treemapItem)
		if !ok || i >= len(metas) || metas[i].Depth != 0 {
			continue
		}

		// Round block edges, not extents, so neighbors meet exactly
		x := int(math.Round(block.X))
		y := int(math.Round(block.Y))
		w := int(math.Round(block.X+block.W)) - x
		h := int(math.Round(block.Y+block.H)) - y
		if w < 1 || h < 1 {
			continue
		}

		t.blocks = append(t.blocks, Block{
			Node:   item.node,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		})
	}
}

func (t TreemapPanel) hasBlockFor(node *model.Tree) bool {
	for i := range t.blocks {
		if t.blocks[i].Node == node {
			return true
		}
	}
	// Slice-and-dice hit-testing resolves leaves; an internal selection
	// survives as long as it still has weight.
	if !t.squarified && node.Weight() > 0 {
		return true
	}
	return false
}

// View renders the treemap grid
func (t TreemapPanel) View() string {
	if t.width < 1 || t.height < 1 {
		return ""
	}

	if t.root == nil || t.root.Weight() == 0 || len(t.blocks) == 0 {
		empty := lipgloss.NewStyle().Foreground(ColorMuted)
		return lipgloss.Place(t.width, t.height, lipgloss.Center, lipgloss.Center,
			empty.Render("No data"))
	}

	grid := make([][]rune, t.height)
	styles := make([][]lipgloss.Style, t.height)
	for i := range grid {
		grid[i] = make([]rune, t.width)
		styles[i] = make([]lipgloss.Style, t.width)
		for j := range grid[i] {
			grid[i][j] = ' '
			styles[i][j] = lipgloss.NewStyle()
		}
	}

	for _, block := range t.blocks {
		t.drawBlock(grid, styles, block)
	}

	var lines []string
	for y := 0; y < t.height; y++ {
		var line strings.Builder
		for x := 0; x < t.width; x++ {
			line.WriteString(styles[y][x].Render(string(grid[y][x])))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// drawBlock fills a block's cells with the node color and, if space
// permits, overlays the label and weight.
func (t TreemapPanel) drawBlock(grid [][]rune, styles [][]lipgloss.Style, block Block) {
	if block.Width < 1 || block.Height < 1 || block.Node == nil {
		return
	}

	bg := BlockColor(block.Node.Color())
	fg := contrastColor(block.Node.Color())
	cell := lipgloss.NewStyle().Background(bg).Foreground(fg)

	selected := t.isSelected(block.Node)
	fill := ' '
	if selected {
		fill = '░'
	}

	for y := block.Y; y < block.Y+block.Height && y < t.height; y++ {
		for x := block.X; x < block.X+block.Width && x < t.width; x++ {
			if y >= 0 && x >= 0 {
				grid[y][x] = fill
				styles[y][x] = cell
			}
		}
	}

	if block.Width > 4 && block.Height > 1 {
		label := truncateRunes(block.Node.Label(), block.Width-2)
		labelStyle := cell
		if selected {
			labelStyle = labelStyle.Bold(true)
		}
		t.overlay(grid, styles, block.X+1, block.Y, block.X+block.Width-1, label, labelStyle)

		if block.Height > 2 {
			t.overlay(grid, styles, block.X+1, block.Y+1, block.X+block.Width-1,
				t.formatWeight(block.Node.Weight()), cell)
		}
	}
}

func (t TreemapPanel) overlay(grid [][]rune, styles [][]lipgloss.Style, x, y, maxX int, text string, style lipgloss.Style) {
	if y < 0 || y >= t.height {
		return
	}
	cx := x
	for _, ch := range text {
		if cx >= maxX || cx >= t.width {
			break
		}
		grid[y][cx] = ch
		styles[y][cx] = style
		cx++
	}
}

// truncateRunes cuts a string to at most n runes, never splitting a
// multi-byte character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// isSelected reports whether the block's node is, or is inside, the
// current selection.
func (t TreemapPanel) isSelected(node *model.Tree) bool {
	if t.selected == nil {
		return false
	}
	for n := node; n != nil; n = n.Parent() {
		if n == t.selected {
			return true
		}
	}
	return false
}

// contrastColor picks a readable foreground for a block background.
func contrastColor(c model.Color) lipgloss.Color {
	// Perceived luminance, integer weights
	lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
	if lum > 128 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#FFFFFF")
}
