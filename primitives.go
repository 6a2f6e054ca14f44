package sdfpack

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

// circlePrim is the Circle primitive: a disk of radius Radius centered
// at the origin. Formula matches the teacher's circle2D.
type circlePrim struct {
	r float32
}

// NewCircle returns a circular SDF of the given radius, centered at
// the local origin.
func NewCircle(radius float32) (Shape, error) {
	if radius <= 0 || math32.IsNaN(radius) {
		return nil, errors.New("sdfpack: circle radius must be positive")
	}
	return circlePrim{r: radius}, nil
}

func (c circlePrim) Sdf(p WorldPoint) float32 {
	return ms2.Norm(p.Vec) - c.r
}

func (c circlePrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Vec{X: -c.r, Y: -c.r}, Max: ms2.Vec{X: c.r, Y: c.r}}
}

// aaRectPrim is the axis-aligned rectangle primitive, centered at the
// origin with half-extents (Hx,Hy). Formula matches the teacher's
// rect2D.
type aaRectPrim struct {
	h ms2.Vec
}

// NewAARect returns an axis-aligned rectangle SDF with the given half
// width/height, centered at the local origin.
func NewAARect(halfWidth, halfHeight float32) (Shape, error) {
	if halfWidth <= 0 || halfHeight <= 0 {
		return nil, errors.New("sdfpack: rect half-extents must be positive")
	}
	return aaRectPrim{h: ms2.Vec{X: halfWidth, Y: halfHeight}}, nil
}

func (r aaRectPrim) Sdf(p WorldPoint) float32 {
	d := ms2.Sub(ms2.AbsElem(p.Vec), r.h)
	outside := ms2.MaxElem(d, ms2.Vec{})
	inside := math32.Min(math32.Max(d.X, d.Y), 0)
	return ms2.Norm(outside) + inside
}

func (r aaRectPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Scale(-1, r.h), Max: r.h}
}

// segmentPrim is a thick line segment from A to B with half-thickness
// Thickness. Formula matches the teacher's line2D.
type segmentPrim struct {
	a, b ms2.Vec
	t    float32
}

// NewSegment returns a thick-line SDF between a and b.
func NewSegment(a, b ms2.Vec, thickness float32) (Shape, error) {
	if thickness <= 0 {
		return nil, errors.New("sdfpack: segment thickness must be positive")
	}
	if a == b {
		return nil, errors.New("sdfpack: segment endpoints must differ")
	}
	return segmentPrim{a: a, b: b, t: thickness}, nil
}

func (s segmentPrim) Sdf(p WorldPoint) float32 {
	pa := ms2.Sub(p.Vec, s.a)
	ba := ms2.Sub(s.b, s.a)
	h := clamp32(dot(pa, ba)/dot(ba, ba), 0, 1)
	return ms2.Norm(ms2.Sub(pa, ms2.Scale(h, ba))) - s.t
}

func (s segmentPrim) Bounds() ms2.Box {
	b := ms2.Box{Min: ms2.MinElem(s.a, s.b), Max: ms2.MaxElem(s.a, s.b)}
	pad := ms2.Vec{X: s.t, Y: s.t}
	return ms2.Box{Min: ms2.Sub(b.Min, pad), Max: ms2.Add(b.Max, pad)}
}

// nGonPrim is a regular polygon with N sides inscribed in a circle of
// radius R (its circumradius: every vertex lies at distance R from the
// origin), generalizing the teacher's fixed hex2D to arbitrary N.
type nGonPrim struct {
	r       float32
	n       int
	apothem float32 // r*cos(pi/n), distance from center to each edge
	he      float32 // r*sin(pi/n), half edge length
}

// NewNGon returns a regular N-sided polygon SDF, N >= 3, circumradius r
// (the radius of the circle passing through every vertex).
func NewNGon(n int, r float32) (Shape, error) {
	if n < 3 {
		return nil, errors.New("sdfpack: ngon requires at least 3 sides")
	}
	if r <= 0 {
		return nil, errors.New("sdfpack: ngon radius must be positive")
	}
	half := math32.Pi / float32(n)
	return nGonPrim{r: r, n: n, apothem: r * math32.Cos(half), he: r * math32.Sin(half)}, nil
}

func (s nGonPrim) Sdf(p WorldPoint) float32 {
	an := 2 * math32.Pi / float32(s.n)
	bn := an * math32.Floor((math32.Atan2(p.Vec.Y, p.Vec.X)+0.5*an)/an)
	cs, sn := math32.Cos(bn), math32.Sin(bn)
	// rotate p by -bn
	rx := cs*p.Vec.X + sn*p.Vec.Y
	ry := -sn*p.Vec.X + cs*p.Vec.Y
	ry = clamp32(ry, -s.he, s.he)
	d := ms2.Vec{X: rx - s.apothem, Y: ry}
	return ms2.Norm(d) * math32.Sign(d.X)
}

func (s nGonPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Vec{X: -s.r, Y: -s.r}, Max: ms2.Vec{X: s.r, Y: s.r}}
}

// starPrim is an n-pointed star with outer radius R and a density
// parameter M (M in (1,n]) controlling how sharp the points are,
// ported from the classic IQ star-SDF formula family the teacher's own
// hex2D/poly2D formulas are drawn from.
type starPrim struct {
	r, m float32
	n    int
}

// NewStar returns a star SDF with n points, outer radius r and density
// m (1 < m <= n; larger m produces sharper points).
func NewStar(n int, r, m float32) (Shape, error) {
	if n < 2 {
		return nil, errors.New("sdfpack: star requires at least 2 points")
	}
	if r <= 0 {
		return nil, errors.New("sdfpack: star radius must be positive")
	}
	if m <= 1 || m > float32(n) {
		return nil, errors.New("sdfpack: star density must be in (1,n]")
	}
	return starPrim{r: r, m: m, n: n}, nil
}

func (s starPrim) Sdf(p WorldPoint) float32 {
	an := math32.Pi / float32(s.n)
	en := math32.Pi / s.m
	acs := ms2.Vec{X: math32.Cos(an), Y: math32.Sin(an)}
	ecs := ms2.Vec{X: math32.Cos(en), Y: math32.Sin(en)}

	bn := fmod(math32.Atan2(p.Vec.X, p.Vec.Y), 2*an) - an
	length := ms2.Norm(p.Vec)
	v := ms2.Vec{X: length * math32.Cos(bn), Y: length * math32.Abs(math32.Sin(bn))}

	v = ms2.Sub(v, ms2.Scale(s.r, acs))
	k := clamp32(-dot(v, ecs), 0, s.r*acs.Y/ecs.Y)
	v = ms2.Add(v, ms2.Scale(k, ecs))
	return ms2.Norm(v) * math32.Sign(v.X)
}

func (s starPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Vec{X: -s.r, Y: -s.r}, Max: ms2.Vec{X: s.r, Y: s.r}}
}

// moonPrim is a crescent: the region inside a circle of radius Ra
// centered at the origin but outside a circle of radius Rb centered at
// distance D along the X axis. Ported from the IQ moon-SDF formula.
type moonPrim struct {
	d, ra, rb float32
}

// NewMoon returns a crescent-moon SDF: a circle of radius ra, with a
// circle of radius rb subtracted, offset by d along X.
func NewMoon(d, ra, rb float32) (Shape, error) {
	if ra <= 0 || rb <= 0 {
		return nil, errors.New("sdfpack: moon radii must be positive")
	}
	if d == 0 {
		return nil, errors.New("sdfpack: moon offset must be nonzero")
	}
	return moonPrim{d: d, ra: ra, rb: rb}, nil
}

func (m moonPrim) Sdf(p WorldPoint) float32 {
	px, py := p.Vec.X, math32.Abs(p.Vec.Y)
	a := (m.ra*m.ra - m.rb*m.rb + m.d*m.d) / (2 * m.d)
	b := math32.Sqrt(math32.Max(m.ra*m.ra-a*a, 0))
	if m.d*(px*b-py*a) > m.d*m.d*math32.Max(b-py, 0) {
		return ms2.Norm(ms2.Vec{X: px - a, Y: py - b})
	}
	left := ms2.Norm(ms2.Vec{X: px, Y: py}) - m.ra
	right := ms2.Norm(ms2.Vec{X: px - m.d, Y: py}) - m.rb
	return math32.Max(left, -right)
}

func (m moonPrim) Bounds() ms2.Box {
	r := math32.Max(m.ra, math32.Abs(m.d)+m.rb)
	return ms2.Box{Min: ms2.Vec{X: -r, Y: -r}, Max: ms2.Vec{X: r, Y: r}}
}

// rhombusPrim is a rhombus ("kakera") with half-diagonals (Bx,By).
// Ported from the IQ rhombus-SDF formula; generalizes the teacher's
// diamond primitive to the exact (non-bbox-approximate) distance.
type rhombusPrim struct {
	b ms2.Vec
}

// NewRhombus returns a rhombus SDF with the given half-diagonals.
func NewRhombus(halfDiagX, halfDiagY float32) (Shape, error) {
	if halfDiagX <= 0 || halfDiagY <= 0 {
		return nil, errors.New("sdfpack: rhombus half-diagonals must be positive")
	}
	return rhombusPrim{b: ms2.Vec{X: halfDiagX, Y: halfDiagY}}, nil
}

func ndot(a, b ms2.Vec) float32 { return a.X*b.X - a.Y*b.Y }

func (s rhombusPrim) Sdf(p WorldPoint) float32 {
	q := ms2.AbsElem(p.Vec)
	h := clamp32((-2*ndot(q, s.b)+ndot(s.b, s.b))/dot(s.b, s.b), -1, 1)
	d := ms2.Norm(ms2.Sub(q, ms2.Scale(0.5, ms2.Vec{X: s.b.X * (1 - h), Y: s.b.Y * (1 + h)})))
	sign := q.X*s.b.Y + q.Y*s.b.X - s.b.X*s.b.Y
	if sign < 0 {
		d = -d
	}
	return d
}

func (s rhombusPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Scale(-1, s.b), Max: s.b}
}

// crossPrim is the union of a wide-and-short and a narrow-and-tall
// rectangle, centered at the origin, forming a plus/cross shape with
// arm half-length R and arm half-thickness T. Grounded on the
// teacher's x2d primitive, reduced to the two-rect union the teacher
// itself evaluates.
type crossPrim struct {
	r, t float32
}

// NewCross returns a cross/plus SDF with arm half-length r and arm
// half-thickness t.
func NewCross(r, t float32) (Shape, error) {
	if r <= 0 || t <= 0 {
		return nil, errors.New("sdfpack: cross dimensions must be positive")
	}
	if t >= r {
		return nil, errors.New("sdfpack: cross thickness must be smaller than arm length")
	}
	return crossPrim{r: r, t: t}, nil
}

func (c crossPrim) Sdf(p WorldPoint) float32 {
	horiz := aaRectPrim{h: ms2.Vec{X: c.r, Y: c.t}}.Sdf(p)
	vert := aaRectPrim{h: ms2.Vec{X: c.t, Y: c.r}}.Sdf(p)
	return math32.Min(horiz, vert)
}

func (c crossPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Vec{X: -c.r, Y: -c.r}, Max: ms2.Vec{X: c.r, Y: c.r}}
}

// ringPrim is an annulus: the band between radius R-Thickness and
// R+Thickness. Matches the teacher's annulus2D formula.
type ringPrim struct {
	r, t float32
}

// NewRing returns an annulus SDF of mean radius r and half-thickness t
// (0 < t < r).
func NewRing(r, t float32) (Shape, error) {
	if r <= 0 || t <= 0 || t >= r {
		return nil, errors.New("sdfpack: ring requires 0 < thickness < radius")
	}
	return ringPrim{r: r, t: t}, nil
}

func (r ringPrim) Sdf(p WorldPoint) float32 {
	return math32.Abs(ms2.Norm(p.Vec)-r.r) - r.t
}

func (r ringPrim) Bounds() ms2.Box {
	o := r.r + r.t
	return ms2.Box{Min: ms2.Vec{X: -o, Y: -o}, Max: ms2.Vec{X: o, Y: o}}
}

// polygonPrim is an arbitrary simple polygon, stored as its ordered
// vertex list. Matches the teacher's poly2D: winding-number inside
// test, perpendicular distance to nearest edge.
type polygonPrim struct {
	v []ms2.Vec
}

// NewPolygon returns a polygon SDF from an ordered, non-self-intersecting
// vertex list (at least 3 vertices).
func NewPolygon(vertices []ms2.Vec) (Shape, error) {
	if len(vertices) < 3 {
		return nil, errors.New("sdfpack: polygon requires at least 3 vertices")
	}
	v := make([]ms2.Vec, len(vertices))
	copy(v, vertices)
	return polygonPrim{v: v}, nil
}

func (s polygonPrim) Sdf(p WorldPoint) float32 {
	n := len(s.v)
	d := dot(ms2.Sub(p.Vec, s.v[0]), ms2.Sub(p.Vec, s.v[0]))
	wn := 1
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		e := ms2.Sub(s.v[j], s.v[i])
		w := ms2.Sub(p.Vec, s.v[i])
		b := ms2.Sub(w, ms2.Scale(clamp32(dot(w, e)/dot(e, e), 0, 1), e))
		d = math32.Min(d, dot(b, b))

		c0 := p.Vec.Y >= s.v[i].Y
		c1 := p.Vec.Y < s.v[j].Y
		c2 := e.X*w.Y > e.Y*w.X
		if (c0 && c1 && c2) || (!c0 && !c1 && !c2) {
			wn *= -1
		}
	}
	dist := math32.Sqrt(d)
	if wn < 0 {
		dist = -dist
	}
	return dist
}

func (s polygonPrim) Bounds() ms2.Box {
	b := ms2.Box{Min: s.v[0], Max: s.v[0]}
	for _, v := range s.v[1:] {
		b.Min = ms2.MinElem(b.Min, v)
		b.Max = ms2.MaxElem(b.Max, v)
	}
	return b
}

// boundaryRectPrim is the negated unit-square SDF: the solver's
// always-present "wall" primitive confining placements to [0,1]^2.
// Matches original_source's boundary_rect.
type boundaryRectPrim struct{}

// NewBoundaryRect returns the negated SDF of the unit square: points
// inside [0,1]^2 read as positive distance (to the nearest edge),
// points outside read as negative, and the square's boundary is the
// zero level set. This is the opposite sign convention to the other
// primitives here. Its Bounds is the unit square, which, unlike for the
// other primitives, does not contain the region where the SDF is
// non-positive (that region lies outside the square).
func NewBoundaryRect() Shape {
	return boundaryRectPrim{}
}

func (boundaryRectPrim) Sdf(p WorldPoint) float32 {
	c := ms2.Vec{X: 0.5, Y: 0.5}
	rect := aaRectPrim{h: c}
	local := WorldPoint{Vec: ms2.Sub(p.Vec, c)}
	return -rect.Sdf(local)
}

func (boundaryRectPrim) Bounds() ms2.Box {
	return ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}
}

func dot(a, b ms2.Vec) float32 { return a.X*b.X + a.Y*b.Y }

func clamp32(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

func fmod(a, b float32) float32 {
	return a - b*math32.Floor(a/b)
}
