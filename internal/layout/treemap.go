// Package layout computes treemap geometry over a weighted tree:
// recursive slice-and-dice subdivision of a rectangle proportional to
// subtree weight, and the inverse mapping from a point back to the
// owning leaf.
package layout

import "github.com/lumipallolabs/sizemap/internal/model"

// Rect is an axis-aligned rectangle with the origin at the top-left.
// Units are abstract; the terminal renderer uses character cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies within the rectangle,
// inclusive of all edges.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X <= r.X+r.W && r.Y <= p.Y && p.Y <= r.Y+r.H
}

// Point is a position in the same coordinate space as Rect.
type Point struct {
	X, Y int
}

// Paint is one rendered leaf: its rectangle and the leaf's color.
type Paint struct {
	Rect  Rect
	Color model.Color
}

// Treemap subdivides r among the positive-weight leaves reachable from
// t and returns one Paint per leaf, in depth-first child order. The
// returned rectangles tile r exactly.
//
// The split axis follows the longer side: wide rectangles split into
// vertical strips, others into horizontal strips. Every strip except
// the last is the floor of its proportional share; the last strip
// stretch-fills the remaining extent so truncation error never leaks
// past the far edge. When trailing children have weight zero, the last
// child that actually painted is re-laid-out to consume the remainder
// instead.
func Treemap(t *model.Tree, r Rect) []Paint {
	total := t.Weight()
	if total == 0 {
		return nil
	}
	kids := t.Children()
	if len(kids) == 0 {
		return []Paint{{Rect: r, Color: t.Color()}}
	}

	x, y, w, h := r.X, r.Y, r.W, r.H
	iniX, iniY := x, y

	var result []Paint

	// Last child that contributed paints: the node itself, where its
	// paints begin in result, and its strip origin. Needed to re-stretch
	// when the final slot holds a deleted (zero-weight) child.
	var last *model.Tree
	lastStart, lastOff := 0, 0

	for i, child := range kids {
		if w > h {
			// Vertical strips; only width varies.
			var localW int
			if i < len(kids)-1 {
				localW = int(child.Weight() * int64(w) / total)
			} else {
				localW = w - x + iniX
			}
			sub := Treemap(child, Rect{x, y, localW, h})
			start := len(result)
			result = append(result, sub...)
			if len(sub) > 0 {
				last, lastStart, lastOff = child, start, x
			}
			// last is nil when no child painted anything; then there is
			// nothing to stretch.
			if i == len(kids)-1 && last != nil {
				x = lastOff
				result = result[:lastStart]
				localW = w - x + iniX
				result = append(result, Treemap(last, Rect{x, y, localW, h})...)
			}
			x += localW
		} else {
			// Horizontal strips; only height varies.
			var localH int
			if i < len(kids)-1 {
				localH = int(child.Weight() * int64(h) / total)
			} else {
				localH = h - y + iniY
			}
			sub := Treemap(child, Rect{x, y, w, localH})
			start := len(result)
			result = append(result, sub...)
			if len(sub) > 0 {
				last, lastStart, lastOff = child, start, y
			}
			if i == len(kids)-1 && last != nil {
				y = lastOff
				result = result[:lastStart]
				localH = h - y + iniY
				result = append(result, Treemap(last, Rect{x, y, w, localH})...)
			}
			y += localH
		}
	}

	return result
}

// LeafAt returns the positive-weight leaf whose treemap rectangle
// contains p, or nil if the point hits no leaf. It mirrors Treemap's
// partitioning exactly (axis choice, floor shares, stretch-fill, the
// zero-weight re-stretch rule) but descends only where the point falls,
// so for any tree state LeafAt agrees with the rectangles Treemap
// produces.
func LeafAt(t *model.Tree, p Point, r Rect) *model.Tree {
	total := t.Weight()
	if total == 0 {
		return nil
	}
	kids := t.Children()
	if len(kids) == 0 {
		if r.Contains(p) {
			return t
		}
		return nil
	}

	x, y, w, h := r.X, r.Y, r.W, r.H
	iniX, iniY := x, y

	var last *model.Tree
	lastX, lastY := 0, 0
	var result *model.Tree

	for i, child := range kids {
		if result != nil {
			return result
		}
		if w > h {
			localW := int(child.Weight() * int64(w) / total)
			if child.Weight() > 0 {
				last, lastX, lastY = child, x, y
				result = LeafAt(child, p, Rect{x, y, localW, h})
			}
			if i == len(kids)-1 && last != nil {
				// Stretch the last non-empty child to the far edge and
				// resolve it again, exactly as Treemap lays it out.
				localW = w - lastX + iniX
				result = LeafAt(last, p, Rect{lastX, lastY, localW, h})
			}
			x += localW
		} else {
			localH := int(child.Weight() * int64(h) / total)
			if child.Weight() > 0 {
				last, lastX, lastY = child, x, y
				result = LeafAt(child, p, Rect{x, y, w, localH})
			}
			if i == len(kids)-1 && last != nil {
				localH = h - lastY + iniY
				result = LeafAt(last, p, Rect{lastX, lastY, w, localH})
			}
			y += localH
		}
	}

	return result
}
