package field

import (
	"context"
	"testing"

	"github.com/soypat/sdfpack"
)

func TestADFEmptyFieldIsSentinel(t *testing.T) {
	a := NewADF(6)
	if got := a.Sdf(sdfpack.World(0.5, 0.5)); got < 1e6 {
		t.Errorf("empty ADF should read a huge sentinel distance, got %v", got)
	}
}

func TestADFInsertionLowersField(t *testing.T) {
	a := NewADF(6)
	ctx := context.Background()
	c, _ := sdfpack.NewCircle(0.2)
	shape := sdfpack.Translate(c, sdfpack.World(0.5, 0.5).Vec)
	changed, err := a.InsertSDFDomain(ctx, a.Bounds(), shape)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("first insertion into an empty field must report a change")
	}
	if got := a.Sdf(sdfpack.World(0.5, 0.5)); got >= 0 {
		t.Errorf("circle center should read negative, got %v", got)
	}
}

func TestADFDominatedInsertionIsSkipped(t *testing.T) {
	a := NewADF(6)
	ctx := context.Background()
	big, _ := sdfpack.NewCircle(0.4)
	bigShape := sdfpack.Translate(big, sdfpack.World(0.5, 0.5).Vec)
	if _, err := a.InsertSDFDomain(ctx, a.Bounds(), bigShape); err != nil {
		t.Fatal(err)
	}
	small, _ := sdfpack.NewCircle(0.1)
	smallShape := sdfpack.Translate(small, sdfpack.World(0.5, 0.5).Vec)
	changed, err := a.InsertSDFDomain(ctx, smallShape.Bounds(), smallShape)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("inserting a shape entirely dominated by the existing field should not change it")
	}
}

func TestADFMonotonicApproximateField(t *testing.T) {
	a := NewADF(6)
	ctx := context.Background()
	p := sdfpack.World(0.5, 0.5)
	before := a.Sdf(p)
	c, _ := sdfpack.NewCircle(0.3)
	if _, err := a.InsertSDFDomain(ctx, a.Bounds(), sdfpack.Translate(c, p.Vec)); err != nil {
		t.Fatal(err)
	}
	after := a.Sdf(p)
	if after > before {
		t.Errorf("approximate field must never increase after an insertion: before=%v after=%v", before, after)
	}
}

func TestADFSeedPrimitivesApplyEverywhereIncludingOutsideUnitSquare(t *testing.T) {
	a := NewADF(6, sdfpack.NewBoundaryRect())
	if got := a.Sdf(sdfpack.World(0.5, 0.5)); got <= 0 {
		t.Errorf("inside the unit square should read positive, got %v", got)
	}
	if got := a.Sdf(sdfpack.World(1.5, 0.5)); got >= 0 {
		t.Errorf("outside the unit square should read negative via the seed fallback, got %v", got)
	}
}

func TestADFSeedFallbackSurvivesSubdivision(t *testing.T) {
	a := NewADF(6, sdfpack.NewBoundaryRect())
	ctx := context.Background()
	centers := []sdfpack.WorldPoint{
		sdfpack.World(0.05, 0.05),
		sdfpack.World(0.06, 0.05),
		sdfpack.World(0.05, 0.06),
		sdfpack.World(0.06, 0.06),
	}
	for _, c := range centers {
		circ, _ := sdfpack.NewCircle(0.002)
		shape := sdfpack.Translate(circ, c.Vec)
		if _, err := a.InsertSDFDomain(ctx, shape.Bounds(), shape); err != nil {
			t.Fatal(err)
		}
	}
	if a.root.IsLeaf() {
		t.Fatal("expected the root to have subdivided by now")
	}
	if got := a.Sdf(sdfpack.World(1.5, 0.5)); got >= 0 {
		t.Errorf("seed fallback must stay correct after the root subdivides, got %v", got)
	}
}

func TestADFBucketSubdividesWhenFull(t *testing.T) {
	a := NewADF(8)
	ctx := context.Background()
	// insert BucketSize+1 small, well-separated circles inside the same
	// quadrant so the leaf is forced past its bucket capacity.
	centers := []sdfpack.WorldPoint{
		sdfpack.World(0.05, 0.05),
		sdfpack.World(0.06, 0.05),
		sdfpack.World(0.05, 0.06),
		sdfpack.World(0.06, 0.06),
	}
	for _, c := range centers {
		circ, _ := sdfpack.NewCircle(0.002)
		shape := sdfpack.Translate(circ, c.Vec)
		if _, err := a.InsertSDFDomain(ctx, shape.Bounds(), shape); err != nil {
			t.Fatal(err)
		}
	}
	leaf := a.root.PointToLeaf(sdfpack.World(0.055, 0.055).Vec)
	if leaf == nil {
		t.Fatal("expected a leaf containing the insertion region")
	}
	if leaf.Depth == 0 && len(leaf.Data) > BucketSize {
		t.Errorf("bucket should not exceed BucketSize without subdividing, got %d items at depth %d", len(leaf.Data), leaf.Depth)
	}
}
