// Package search implements the gradient-ascent routines the
// placement driver uses to locate local maxima of a distance field,
// and the batched-random-restart wrapper that turns single-point
// ascent into a generator of distinct local maxima.
package search

import (
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
)

// LineSearch configures central-difference gradient ascent: Delta is
// both the finite-difference step and the convergence/feasibility
// threshold, InitialStep and Decay control the backtracking step size,
// and StepLimit bounds the number of iterations (0 means unbounded).
type LineSearch struct {
	Delta       float32
	InitialStep float32
	Decay       float32
	StepLimit   int
}

// DefaultLineSearch returns the line-search configuration the solver
// uses absent any tuning: a 1e-6 step/threshold, an initial step size
// of 1, 0.85 decay per iteration and no iteration limit.
func DefaultLineSearch() LineSearch {
	return LineSearch{Delta: 1e-6, InitialStep: 1, Decay: 0.85, StepLimit: 0}
}

func eval(f sdfpack.SDF, v ms2.Vec) float32 {
	return f.Sdf(sdfpack.WorldPoint{Vec: v})
}

// Grad returns the central-difference gradient of f at p, using
// step Delta.
func (ls LineSearch) Grad(f sdfpack.SDF, p ms2.Vec) ms2.Vec {
	d := ls.Delta
	dx := (eval(f, ms2.Vec{X: p.X + d, Y: p.Y}) - eval(f, ms2.Vec{X: p.X - d, Y: p.Y})) / (2 * d)
	dy := (eval(f, ms2.Vec{X: p.X, Y: p.Y + d}) - eval(f, ms2.Vec{X: p.X, Y: p.Y - d})) / (2 * d)
	return ms2.Vec{X: dx, Y: dy}
}

// Optimize performs backtracking gradient ascent on f starting from
// p0, returning the point reached when the step contribution drops
// below Delta (or StepLimit iterations elapse, if set).
func (ls LineSearch) Optimize(f sdfpack.SDF, p0 sdfpack.WorldPoint) sdfpack.WorldPoint {
	p := p0.Vec
	step := ls.InitialStep
	for i := 0; ls.StepLimit == 0 || i < ls.StepLimit; i++ {
		g := ls.Grad(f, p)
		move := ms2.Scale(step, g)
		if ms2.Norm(move) < ls.Delta {
			break
		}
		step *= ls.Decay
		p = ms2.Add(p, move)
	}
	return sdfpack.WorldPoint{Vec: p}
}

// OptimizeNormal is a feasibility test: it walks from p0 along the
// normalized gradient of f, shrinking its step by Decay each
// iteration, and reports true as soon as it reaches a point where
// f(p) > 0. It reports false once the step size falls below Delta
// without ever finding such a point.
func (ls LineSearch) OptimizeNormal(f sdfpack.SDF, p0 sdfpack.WorldPoint) bool {
	p := p0.Vec
	step := ls.InitialStep
	for step >= ls.Delta {
		if eval(f, p) > 0 {
			return true
		}
		g := ls.Grad(f, p)
		n := ms2.Norm(g)
		if n > 0 {
			g = ms2.Scale(1/n, g)
		}
		p = ms2.Add(p, ms2.Scale(step, g))
		step *= ls.Decay
	}
	return false
}
