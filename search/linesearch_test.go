package search

import (
	"testing"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
)

type negDistToPoint struct {
	center ms2.Vec
}

func (n negDistToPoint) Sdf(p sdfpack.WorldPoint) float32 {
	return -ms2.Norm(ms2.Sub(p.Vec, n.center))
}

func TestOptimizeAscendsTowardPeak(t *testing.T) {
	f := negDistToPoint{center: ms2.Vec{X: 0.7, Y: 0.3}}
	ls := DefaultLineSearch()
	ls.StepLimit = 500
	p0 := sdfpack.World(0.1, 0.1)
	result := ls.Optimize(f, p0)
	dist := ms2.Norm(ms2.Sub(result.Vec, f.center))
	if dist > 0.01 {
		t.Errorf("ascent should converge near the peak, got distance %v", dist)
	}
}

func TestOptimizeNormalFindsPositiveRegion(t *testing.T) {
	circle := negDistToPoint{center: ms2.Vec{X: 0.5, Y: 0.5}}
	// negDistToPoint is never positive (it's -distance); use a shifted
	// function that is positive near its center to test feasibility.
	f := shiftedPositive{negDistToPoint: circle, radius: 0.1}
	ls := DefaultLineSearch()
	ok := ls.OptimizeNormal(f, sdfpack.World(0.1, 0.1))
	if !ok {
		t.Error("expected OptimizeNormal to find the positive region")
	}
}

type shiftedPositive struct {
	negDistToPoint
	radius float32
}

func (s shiftedPositive) Sdf(p sdfpack.WorldPoint) float32 {
	return s.radius + s.negDistToPoint.Sdf(p)
}

func TestOptimizeNormalFailsWhenUnreachable(t *testing.T) {
	alwaysNegative := constSDF(-1)
	ls := DefaultLineSearch()
	ls.StepLimit = 0
	ok := ls.OptimizeNormal(alwaysNegative, sdfpack.World(0.5, 0.5))
	if ok {
		t.Error("a field that is never positive anywhere must report infeasible")
	}
}

type constSDF float32

func (c constSDF) Sdf(sdfpack.WorldPoint) float32 { return float32(c) }

func TestGradPointsUphill(t *testing.T) {
	f := negDistToPoint{center: ms2.Vec{X: 1, Y: 0}}
	ls := DefaultLineSearch()
	g := ls.Grad(f, ms2.Vec{X: 0, Y: 0})
	if g.X <= 0 {
		t.Errorf("gradient should point toward increasing x (toward the peak), got %+v", g)
	}
}
