// Package sdfpack builds dense packings of 2D shapes inside the unit
// square by repeatedly locating the point of maximum free space in a
// distance-field representation and inserting a shape there.
package sdfpack

import (
	"github.com/soypat/glgl/math/ms2"
)

// SDF is a signed distance function over the unit square: negative
// inside a shape, positive outside, zero at the boundary.
type SDF interface {
	// Sdf evaluates the signed distance at p.
	Sdf(p WorldPoint) float32
}

// BoundingBox is implemented by SDFs that can report an axis-aligned
// box guaranteed to contain their entire non-positive region.
type BoundingBox interface {
	Bounds() ms2.Box
}

// Shape is the full capability an inserted primitive or composite
// SDF provides to the rest of the package.
type Shape interface {
	SDF
	BoundingBox
}

// WorldPoint is a point in the unit-square domain the solver operates
// over. It is a distinct type from PixelPoint so that world and pixel
// coordinates cannot be mixed up by accident.
type WorldPoint struct {
	Vec ms2.Vec
}

// PixelPoint is an integer raster coordinate over a DDF's grid.
type PixelPoint struct {
	X, Y int
}

// World builds a WorldPoint from raw coordinates.
func World(x, y float32) WorldPoint {
	return WorldPoint{Vec: ms2.Vec{X: x, Y: y}}
}

// ToPixel maps a WorldPoint to the pixel it falls in for a grid of the
// given resolution. Pixel (x,y) covers the world range
// [x/resolution, (x+1)/resolution) x [y/resolution, (y+1)/resolution).
func ToPixel(p WorldPoint, resolution int) PixelPoint {
	x := int(p.Vec.X * float32(resolution))
	y := int(p.Vec.Y * float32(resolution))
	if x < 0 {
		x = 0
	} else if x >= resolution {
		x = resolution - 1
	}
	if y < 0 {
		y = 0
	} else if y >= resolution {
		y = resolution - 1
	}
	return PixelPoint{X: x, Y: y}
}

// ToWorld maps a pixel to the world-space point at its center.
func ToWorld(p PixelPoint, resolution int) WorldPoint {
	inv := 1 / float32(resolution)
	return World((float32(p.X)+0.5)*inv, (float32(p.Y)+0.5)*inv)
}

// DistPoint pairs a world-space point with the distance value recorded
// at that point in some field representation. It is the unit the
// max-finding search and the placement driver exchange.
type DistPoint struct {
	Point    WorldPoint
	Distance float32
}
