// Package placement implements the outer control loop shared by both
// field representations: repeatedly find the point of maximum free
// space, construct a candidate shape there, and insert it if doing so
// changes the field.
package placement

import (
	"context"
	"errors"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
)

// Representation is the common interface both field.DDF and field.ADF
// satisfy: the solver's insertable, queryable distance field.
type Representation interface {
	sdfpack.SDF
	InsertSDFDomain(ctx context.Context, domain ms2.Box, f sdfpack.SDF) (bool, error)
}

// MaxFinder locates the current point of maximum recorded distance in
// a Representation. field.DDF.FindMax and a search.LocalMaximaIter
// wrapper (picking its best candidate) both satisfy this shape.
type MaxFinder func() (sdfpack.DistPoint, error)

// ConstructShape builds a candidate shape to insert at max, given the
// distance recorded there and a source of randomness. It returns the
// shape to insert.
type ConstructShape func(max sdfpack.DistPoint, rng *rand.Rand) (sdfpack.Shape, error)

// Config bounds a Driver's run.
type Config struct {
	// MinDistance stops the run once FindMax reports a distance at or
	// below this threshold: the free space remaining is no longer
	// worth filling.
	MinDistance float32
	// MaxPlacements stops the run after this many shapes have been
	// placed, regardless of remaining free space. Zero means
	// unbounded.
	MaxPlacements int
	// MinRadius and MaxRadius bound the candidate radius the default
	// construction policy draws.
	MinRadius, MaxRadius float32
}

// Validate reports a ConfigInvalid-style error for any malformed field.
func (c Config) Validate() error {
	if c.MinDistance < 0 {
		return errors.New("placement: MinDistance must be non-negative")
	}
	if c.MaxPlacements < 0 {
		return errors.New("placement: MaxPlacements must be non-negative")
	}
	if c.MinRadius <= 0 || c.MaxRadius <= 0 || c.MinRadius > c.MaxRadius {
		return errors.New("placement: radius bounds must satisfy 0 < MinRadius <= MaxRadius")
	}
	return nil
}

// Driver runs the placement loop against one Representation.
type Driver struct {
	repr      Representation
	findMax   MaxFinder
	construct ConstructShape
	cfg       Config
	rng       *rand.Rand

	placed int
}

// NewDriver returns a Driver that places shapes into repr, using
// findMax to locate free space and construct to build each candidate,
// seeded from rng.
func NewDriver(repr Representation, findMax MaxFinder, construct ConstructShape, cfg Config, rng *rand.Rand) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{repr: repr, findMax: findMax, construct: construct, cfg: cfg, rng: rng}, nil
}

// radiusPowerLawExponent biases DefaultConstructShape's drawn radius
// toward the small end of [0, max.Distance], matching the repo's
// typical candidate mix of many small shapes and occasional large ones.
const radiusPowerLawExponent = 2

// DefaultConstructShape is the solver's default candidate-construction
// policy: draw a random angle, a power-law-biased radius capped to
// [cfg.MinRadius, cfg.MaxRadius] and to the free space available at
// max, and offset the candidate's center from max.Point so its
// boundary just touches the implied existing field boundary.
func DefaultConstructShape(cfg Config) ConstructShape {
	return func(max sdfpack.DistPoint, rng *rand.Rand) (sdfpack.Shape, error) {
		angle := (float32(rng.Float64())*2 - 1) * math32.Pi
		r := math32.Pow(float32(rng.Float64()), radiusPowerLawExponent) * max.Distance
		if r > cfg.MaxRadius {
			r = cfg.MaxRadius
		}
		if r < cfg.MinRadius {
			r = cfg.MinRadius
		}
		if r > max.Distance {
			r = max.Distance
		}
		if r <= 0 {
			return nil, errors.New("placement: no room for a positive-radius candidate")
		}
		circle, err := sdfpack.NewCircle(r)
		if err != nil {
			return nil, err
		}
		touch := max.Distance - r
		offset := ms2.Vec{X: touch * math32.Cos(angle), Y: touch * math32.Sin(angle)}
		center := ms2.Add(max.Point.Vec, offset)
		return sdfpack.Translate(circle, center), nil
	}
}

// EmpiricalAffectedRegion returns the square, centered on max.Point
// and clipped to the unit square, that an insertion at max can
// possibly affect: a side of max.Distance*4*sqrt(2), matching the
// original solver's domain_empirical.
func EmpiricalAffectedRegion(max sdfpack.DistPoint) ms2.Box {
	side := max.Distance * 4 * math32.Sqrt2
	half := side / 2
	c := max.Point.Vec
	region := ms2.Box{
		Min: ms2.Vec{X: c.X - half, Y: c.Y - half},
		Max: ms2.Vec{X: c.X + half, Y: c.Y + half},
	}
	unit := ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}
	return region.Intersect(unit)
}

// Placed is one shape the driver successfully inserted.
type Placed struct {
	Shape sdfpack.Shape
	At    sdfpack.DistPoint
}

// Next runs one iteration of the placement loop: find the current
// maximum, construct a candidate there, and insert it.
//
// ok is true only when a shape was actually inserted, and placed then
// holds it. done is true
// once the configured stopping condition (MaxPlacements reached, or
// FindMax at or below MinDistance) is reached; the caller must not call
// Next again. A rejected candidate (the representation's
// InsertSDFDomain reported no change — spec's InsertionRejected) is
// neither placed nor done: it is silently skipped, and the caller
// should call Next again to try the next local maximum.
func (d *Driver) Next(ctx context.Context) (placed Placed, ok bool, done bool, err error) {
	if d.cfg.MaxPlacements > 0 && d.placed >= d.cfg.MaxPlacements {
		return Placed{}, false, true, nil
	}
	max, err := d.findMax()
	if err != nil {
		return Placed{}, false, true, err
	}
	if max.Distance <= d.cfg.MinDistance {
		return Placed{}, false, true, nil
	}
	shape, err := d.construct(max, d.rng)
	if err != nil {
		return Placed{}, false, true, err
	}
	domain := EmpiricalAffectedRegion(max)
	changed, err := d.repr.InsertSDFDomain(ctx, domain, shape)
	if err != nil {
		return Placed{}, false, true, err
	}
	if !changed {
		return Placed{}, false, false, nil
	}
	d.placed++
	return Placed{Shape: shape, At: max}, true, false, nil
}

// Run drives the loop to completion, calling yield for every placed
// shape, stopping at the first terminal condition or error. A rejected
// candidate never stops the run; Run simply tries the next local
// maximum.
func (d *Driver) Run(ctx context.Context, yield func(Placed) error) error {
	for {
		p, ok, done, err := d.Next(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !ok {
			continue
		}
		if err := yield(p); err != nil {
			return err
		}
	}
}
