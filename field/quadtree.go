// Package field implements the two distance-field representations the
// placement driver searches over: a tiled discrete field (DDF) and an
// adaptive quadtree field (ADF).
package field

import (
	"context"

	"github.com/soypat/glgl/math/ms2"
	"golang.org/x/sync/errgroup"
)

// Quadrant identifies one of the four children of a QuadNode.
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// quadrantOf returns which quadrant of rect contains pt.
func quadrantOf(rect ms2.Box, pt ms2.Vec) Quadrant {
	c := rect.Center()
	top := pt.Y >= c.Y
	left := pt.X < c.X
	switch {
	case top && left:
		return TopLeft
	case top && !left:
		return TopRight
	case !top && left:
		return BottomLeft
	default:
		return BottomRight
	}
}

func childRect(rect ms2.Box, q Quadrant) ms2.Box {
	c := rect.Center()
	switch q {
	case TopLeft:
		return ms2.Box{Min: ms2.Vec{X: rect.Min.X, Y: c.Y}, Max: ms2.Vec{X: c.X, Y: rect.Max.Y}}
	case TopRight:
		return ms2.Box{Min: c, Max: rect.Max}
	case BottomLeft:
		return ms2.Box{Min: rect.Min, Max: c}
	default: // BottomRight
		return ms2.Box{Min: ms2.Vec{X: c.X, Y: rect.Min.Y}, Max: ms2.Vec{X: rect.Max.X, Y: c.Y}}
	}
}

// TraverseCommand is returned by a managed-traversal visitor to decide
// whether its descendants should be visited.
type TraverseCommand int

const (
	// Continue descends into the node's children, if any.
	Continue TraverseCommand = iota
	// Skip prunes the subtree rooted at the visited node.
	Skip
)

// QuadNode is a node of a quadtree whose leaves carry a value of type
// Data. The root covers Rect; Subdivide splits a leaf into four
// children each covering one quadrant of Rect.
type QuadNode[Data any] struct {
	Rect     ms2.Box
	Children *[4]*QuadNode[Data]
	Depth    int
	MaxDepth int
	Data     Data
}

// NewQuadtree returns the root of a quadtree over the unit square with
// the given maximum subdivision depth, whose root data is init(rect).
func NewQuadtree[Data any](maxDepth int, init func(rect ms2.Box) Data) *QuadNode[Data] {
	rect := ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}
	return &QuadNode[Data]{Rect: rect, Depth: 0, MaxDepth: maxDepth, Data: init(rect)}
}

// IsLeaf reports whether n has no children.
func (n *QuadNode[Data]) IsLeaf() bool {
	return n.Children == nil
}

// Subdivide splits a leaf node into four children, each initialized by
// init(childRect). A no-op past MaxDepth or on a node that already has
// children.
func (n *QuadNode[Data]) Subdivide(init func(rect ms2.Box) Data) {
	if !n.IsLeaf() || n.Depth >= n.MaxDepth {
		return
	}
	var children [4]*QuadNode[Data]
	for q := TopLeft; q <= BottomRight; q++ {
		r := childRect(n.Rect, q)
		children[q] = &QuadNode[Data]{Rect: r, Depth: n.Depth + 1, MaxDepth: n.MaxDepth, Data: init(r)}
	}
	n.Children = &children
}

// Traverse visits every node in the subtree rooted at n, pre-order,
// unconditionally descending into children.
func (n *QuadNode[Data]) Traverse(visit func(*QuadNode[Data])) {
	visit(n)
	if n.Children == nil {
		return
	}
	for _, c := range n.Children {
		c.Traverse(visit)
	}
}

// TraverseManaged visits every node in the subtree rooted at n,
// pre-order. If visit returns Skip for a node, that node's descendants
// are not visited.
func (n *QuadNode[Data]) TraverseManaged(visit func(*QuadNode[Data]) TraverseCommand) {
	if visit(n) == Skip || n.Children == nil {
		return
	}
	for _, c := range n.Children {
		c.TraverseManaged(visit)
	}
}

// TraverseManagedParallel is TraverseManaged's fork-join variant: a
// node's four children (when present) are traversed concurrently, each
// goroutine owning its own disjoint subtree. visit must be safe to
// call concurrently from sibling subtrees.
func (n *QuadNode[Data]) TraverseManagedParallel(ctx context.Context, visit func(*QuadNode[Data]) TraverseCommand) error {
	if visit(n) == Skip || n.Children == nil {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for _, c := range n.Children {
		c := c
		g.Go(func() error {
			return c.TraverseManagedParallel(ctx, visit)
		})
	}
	return g.Wait()
}

// PathToPoint returns the chain of nodes from the root to the deepest
// node containing pt, root first.
func (n *QuadNode[Data]) PathToPoint(pt ms2.Vec) []*QuadNode[Data] {
	path := []*QuadNode[Data]{n}
	cur := n
	for cur.Children != nil {
		q := quadrantOf(cur.Rect, pt)
		cur = cur.Children[q]
		path = append(path, cur)
	}
	return path
}

// PointToLeaf returns the deepest node containing pt, or nil if pt
// falls outside the tree's root rectangle.
func (n *QuadNode[Data]) PointToLeaf(pt ms2.Vec) *QuadNode[Data] {
	if pt.X < n.Rect.Min.X || pt.X >= n.Rect.Max.X || pt.Y < n.Rect.Min.Y || pt.Y >= n.Rect.Max.Y {
		return nil
	}
	cur := n
	for cur.Children != nil {
		q := quadrantOf(cur.Rect, pt)
		cur = cur.Children[q]
	}
	return cur
}
