package field

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/soypat/glgl/math/ms2"
)

func TestNewQuadtreeRootCoversUnitSquare(t *testing.T) {
	root := NewQuadtree[int](4, func(ms2.Box) int { return 0 })
	if root.Rect.Min != (ms2.Vec{}) || root.Rect.Max != (ms2.Vec{X: 1, Y: 1}) {
		t.Errorf("root rect should be the unit square, got %+v", root.Rect)
	}
	if !root.IsLeaf() {
		t.Error("freshly built tree should be a single leaf")
	}
}

func TestSubdivideCoversWithoutOverlap(t *testing.T) {
	root := NewQuadtree[int](4, func(ms2.Box) int { return 0 })
	root.Subdivide(func(ms2.Box) int { return 1 })
	if root.IsLeaf() {
		t.Fatal("expected children after subdivide")
	}
	for q, c := range root.Children {
		if c.Depth != 1 {
			t.Errorf("child %d: expected depth 1, got %d", q, c.Depth)
		}
	}
	// every corner of the root must belong to exactly one child by area
	total := float32(0)
	for _, c := range root.Children {
		sz := c.Rect.Size()
		total += sz.X * sz.Y
	}
	if total != 1 {
		t.Errorf("children should exactly tile the parent, got area %v", total)
	}
}

func TestSubdivideNoOpPastMaxDepth(t *testing.T) {
	root := &QuadNode[int]{Rect: ms2.Box{Max: ms2.Vec{X: 1, Y: 1}}, Depth: 2, MaxDepth: 2}
	root.Subdivide(func(ms2.Box) int { return 0 })
	if !root.IsLeaf() {
		t.Error("subdivide at max depth should be a no-op")
	}
}

func TestPointToLeafMatchesPathToPoint(t *testing.T) {
	root := NewQuadtree[int](3, func(ms2.Box) int { return 0 })
	root.Subdivide(func(ms2.Box) int { return 0 })
	root.Children[TopLeft].Subdivide(func(ms2.Box) int { return 0 })

	pt := ms2.Vec{X: 0.1, Y: 0.9}
	path := root.PathToPoint(pt)
	leaf := root.PointToLeaf(pt)
	if path[len(path)-1] != leaf {
		t.Errorf("PointToLeaf should match the last node of PathToPoint")
	}
}

func TestTraverseManagedPrunesSubtree(t *testing.T) {
	root := NewQuadtree[int](3, func(ms2.Box) int { return 0 })
	root.Subdivide(func(ms2.Box) int { return 0 })
	root.Children[TopLeft].Subdivide(func(ms2.Box) int { return 0 })

	visited := 0
	root.TraverseManaged(func(n *QuadNode[int]) TraverseCommand {
		visited++
		if n == root.Children[TopLeft] {
			return Skip
		}
		return Continue
	})
	// root + 4 children, but TopLeft's own children are pruned
	if visited != 5 {
		t.Errorf("expected 5 visited nodes (root + 4 children, grandchildren pruned), got %d", visited)
	}
}

func TestTraverseManagedParallelVisitsEverySibling(t *testing.T) {
	root := NewQuadtree[int](2, func(ms2.Box) int { return 0 })
	root.Subdivide(func(ms2.Box) int { return 0 })

	var count atomic.Int32
	err := root.TraverseManagedParallel(context.Background(), func(n *QuadNode[int]) TraverseCommand {
		if n != root {
			count.Add(1)
		}
		return Continue
	})
	if err != nil {
		t.Fatal(err)
	}
	if count.Load() != 4 {
		t.Errorf("expected all 4 children visited, got %d", count.Load())
	}
}
