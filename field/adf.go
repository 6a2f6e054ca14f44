package field

import (
	"context"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
	"github.com/soypat/sdfpack/search"
)

// BucketSize bounds how many primitives an ADF leaf may hold before it
// is forced to subdivide, matching the original solver's BUCKET_SIZE.
const BucketSize = 3

// bucket is the approximate SDF stored at an ADF leaf: the pointwise
// minimum over a small set of primitives.
type bucket []sdfpack.SDF

func (b bucket) Sdf(p sdfpack.WorldPoint) float32 {
	if len(b) == 0 {
		return math32.MaxFloat32 / 2
	}
	m := b[0].Sdf(p)
	for _, f := range b[1:] {
		if v := f.Sdf(p); v < m {
			m = v
		}
	}
	return m
}

// ADF is an adaptive distance field: a quadtree whose leaves store a
// bounded bucket of primitives. The field value at a point is the
// bucket's minimum at the leaf containing that point; since subdivided
// leaves always inherit a bucket that agrees with their parent at the
// time of the split, this is only ever an approximation, never an
// overestimate, of the true union of everything inserted so far.
type ADF struct {
	root           *QuadNode[bucket]
	seed           bucket
	latticeDensity int
	lineSearch     search.LineSearch
}

// NewADF returns an ADF subdividing to at most maxDepth, seeded with
// seedPrimitives (typically just NewBoundaryRect()) in every leaf,
// including the root. seedPrimitives is also kept aside as the field
// value for points outside the unit square, since a leaf's Data only
// ever reflects the seed plus whatever has been inserted into it and a
// point outside the root's Rect has no leaf at all.
func NewADF(maxDepth int, seedPrimitives ...sdfpack.SDF) *ADF {
	seed := append(bucket{}, seedPrimitives...)
	return &ADF{
		root:           NewQuadtree[bucket](maxDepth, func(ms2.Box) bucket { return append(bucket{}, seed...) }),
		seed:           seed,
		latticeDensity: 1,
		lineSearch:     search.DefaultLineSearch(),
	}
}

// WithLatticeDensity sets the side length of the control-point lattice
// the precision oracle (HigherAll) samples when comparing two fields
// over a region; at density 1 the lattice is replaced by a line-search
// walk starting from the region's center. Returns the same *ADF for
// chaining.
func (a *ADF) WithLatticeDensity(density int) *ADF {
	if density < 1 {
		density = 1
	}
	a.latticeDensity = density
	return a
}

// WithLineSearch sets the line-search configuration used by the
// precision oracle's interior-point feasibility test.
func (a *ADF) WithLineSearch(cfg search.LineSearch) *ADF {
	a.lineSearch = cfg
	return a
}

// Sdf evaluates the field at p: the bucket of the leaf containing p,
// or the fixed seed bucket if p falls outside the unit square (the
// root's own Data is not a safe fallback here, since it stops being
// updated the moment the root subdivides).
func (a *ADF) Sdf(p sdfpack.WorldPoint) float32 {
	leaf := a.root.PointToLeaf(p.Vec)
	if leaf == nil {
		return a.seed.Sdf(p)
	}
	return leaf.Data.Sdf(p)
}

// Bounds returns the unit square.
func (a *ADF) Bounds() ms2.Box {
	return a.root.Rect
}

// HigherAll is the precision oracle: it reports whether g >= f
// everywhere in rect, approximated by sampling a latticeDensity x
// latticeDensity grid of control points (cell centers) and confirming
// g-f never goes negative at any of them. When latticeDensity is 1 it
// instead walks OptimizeNormal from rect's center looking for a point
// where g < f; that walk is not confined to rect. A false result is
// backed by a probed point where g < f; a true result can be wrong
// when the probes miss a thin region where g < f.
func HigherAll(f, g sdfpack.SDF, rect ms2.Box, latticeDensity int, ls search.LineSearch) bool {
	diff := diffSDF{f: f, g: g}
	if latticeDensity <= 1 {
		return !ls.OptimizeNormal(negate(diff), sdfpack.WorldPoint{Vec: rect.Center()})
	}
	size := rect.Size()
	for iy := 0; iy < latticeDensity; iy++ {
		for ix := 0; ix < latticeDensity; ix++ {
			fx := (float32(ix) + 0.5) / float32(latticeDensity)
			fy := (float32(iy) + 0.5) / float32(latticeDensity)
			pt := ms2.Vec{X: rect.Min.X + fx*size.X, Y: rect.Min.Y + fy*size.Y}
			if diff.Sdf(sdfpack.WorldPoint{Vec: pt}) < 0 {
				return false
			}
		}
	}
	return true
}

// diffSDF evaluates g(p) - f(p).
type diffSDF struct {
	f, g sdfpack.SDF
}

func (d diffSDF) Sdf(p sdfpack.WorldPoint) float32 {
	return d.g.Sdf(p) - d.f.Sdf(p)
}

type negatedSDF struct{ s sdfpack.SDF }

func (n negatedSDF) Sdf(p sdfpack.WorldPoint) float32 { return -n.s.Sdf(p) }

func negate(s sdfpack.SDF) sdfpack.SDF { return negatedSDF{s: s} }

// InsertSDFDomain folds f into the field restricted to domain,
// descending the quadtree in parallel over disjoint sibling subtrees.
// At each leaf intersecting domain:
//
//   - if f never lowers the leaf's current field there (HigherAll(
//     bucket, f, leaf.Rect)), nothing changes;
//   - if f dominates the leaf's current field everywhere there, the
//     bucket is replaced with just f;
//   - otherwise the fields cross: f is appended to the bucket if room
//     remains or the leaf is already at max depth; otherwise the leaf
//     is subdivided, each child inheriting the parent bucket plus f.
//
// Reports whether any leaf's data actually changed.
func (a *ADF) InsertSDFDomain(ctx context.Context, domain ms2.Box, f sdfpack.SDF) (bool, error) {
	var changed atomic.Bool
	err := a.root.TraverseManagedParallel(ctx, func(n *QuadNode[bucket]) TraverseCommand {
		if !boxesIntersect(n.Rect, domain) {
			return Skip
		}
		if !n.IsLeaf() {
			return Continue
		}
		if a.insertAtLeaf(n, f) {
			changed.Store(true)
		}
		return Skip
	})
	return changed.Load(), err
}

// insertAtLeaf applies one of InsertSDFDomain's cases to leaf n and
// reports whether it changed n's data. HigherAll(base, other, rect)
// means other(p) >= base(p) for every sampled p in rect.
func (a *ADF) insertAtLeaf(n *QuadNode[bucket], f sdfpack.SDF) bool {
	cur := n.Data
	if HigherAll(cur, f, n.Rect, a.latticeDensity, a.lineSearch) {
		return false // f never improves on the current field here
	}
	if HigherAll(f, cur, n.Rect, a.latticeDensity, a.lineSearch) {
		n.Data = bucket{f}
		return true
	}
	// fields cross: append, subdividing if the bucket is full.
	if n.Depth >= n.MaxDepth || len(cur) < BucketSize {
		n.Data = append(append(bucket{}, cur...), f)
		return true
	}
	parent := append(append(bucket{}, cur...), f)
	n.Subdivide(func(ms2.Box) bucket { return parent })
	return true
}

// Prune removes, from every leaf's bucket, any primitive whose absence
// would be undetectable under HigherAll over that leaf's rectangle:
// an optional post-insertion pass, not run automatically (see
// DESIGN.md).
func (a *ADF) Prune(ctx context.Context) error {
	return a.root.TraverseManagedParallel(ctx, func(n *QuadNode[bucket]) TraverseCommand {
		if !n.IsLeaf() {
			return Continue
		}
		if len(n.Data) <= 1 {
			return Skip
		}
		kept := make(bucket, 0, len(n.Data))
		for i, prim := range n.Data {
			rest := make(bucket, 0, len(n.Data)-1)
			rest = append(rest, n.Data[:i]...)
			rest = append(rest, n.Data[i+1:]...)
			if !HigherAll(rest, prim, n.Rect, a.latticeDensity, a.lineSearch) {
				kept = append(kept, prim)
			}
		}
		if len(kept) == 0 {
			kept = append(kept, n.Data[len(n.Data)-1])
		}
		n.Data = kept
		return Skip
	})
}

func boxesIntersect(a, b ms2.Box) bool {
	i := a.Intersect(b)
	return i.Min.X <= i.Max.X && i.Min.Y <= i.Max.Y
}
