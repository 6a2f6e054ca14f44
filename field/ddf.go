package field

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
	"golang.org/x/sync/errgroup"
)

// sentinel is the initial/unconstrained sample value, matching the
// original solver's f32::MAX/2 placeholder (halved to leave headroom
// for arithmetic without overflow).
const sentinel = math32.MaxFloat32 / 2

// Tile is a view into one chunk of a DDF's backing sample array: a
// contiguous, row-major block of Size*Size float32 distance samples
// whose top-left pixel is TopLeft and whose ID is its row-major index
// among all tiles.
type Tile struct {
	Samples  []float32
	TopLeft  sdfpack.PixelPoint
	ID       int
	Size     int // tile side, in pixels
	Global   int // field side, in pixels (== resolution)
}

// pixelAt returns the pixel coordinate of the sample at local offset
// off within the tile.
func (t Tile) pixelAt(off int) sdfpack.PixelPoint {
	return sdfpack.PixelPoint{X: t.TopLeft.X + off%t.Size, Y: t.TopLeft.Y + off/t.Size}
}

// worldAt returns the world-space point (pixel center) of the sample
// at local offset off within the tile.
func (t Tile) worldAt(off int) sdfpack.WorldPoint {
	return sdfpack.ToWorld(t.pixelAt(off), t.Global)
}

// DDF is a discrete signed distance field over a resolution x
// resolution pixel grid, stored as (resolution/chunk)^2 tiles of
// chunk*chunk samples each, every tile contiguous in the backing
// array (row-major within the tile, tiles themselves in row-major
// order): samples is the concatenation of tile 0's samples, then
// tile 1's, and so on. This is the unit of spatial parallelism and the
// layout a Tile view slices directly, with no restriding. Each tile
// caches the point of maximum distance among its own samples, so that
// the field's global
// maximum is a reduction over only (resolution/chunk)^2 cached values
// rather than the whole grid.
type DDF struct {
	resolution  int
	chunk       int
	tilesPerRow int
	samples     []float32
	tileArgmax  []sdfpack.DistPoint
	tileBufs    bufPool[float32]
}

// NewDDF returns an empty DDF (every sample at the sentinel distance)
// over a resolution x resolution grid partitioned into chunk x chunk
// tiles. resolution must be a positive multiple of chunk.
func NewDDF(resolution, chunk int) (*DDF, error) {
	if resolution <= 0 || chunk <= 0 {
		return nil, errors.New("field: resolution and chunk must be positive")
	}
	if resolution%chunk != 0 {
		return nil, fmt.Errorf("field: resolution %d not divisible by chunk %d", resolution, chunk)
	}
	tilesPerRow := resolution / chunk
	n := tilesPerRow * tilesPerRow
	d := &DDF{
		resolution:  resolution,
		chunk:       chunk,
		tilesPerRow: tilesPerRow,
		samples:     make([]float32, resolution*resolution),
		tileArgmax:  make([]sdfpack.DistPoint, n),
	}
	for i := range d.samples {
		d.samples[i] = sentinel
	}
	for i := range d.tileArgmax {
		d.tileArgmax[i] = sdfpack.DistPoint{Distance: sentinel}
	}
	return d, nil
}

// Resolution returns the grid side length in pixels.
func (d *DDF) Resolution() int { return d.resolution }

// ChunkSize returns the tile side length in pixels.
func (d *DDF) ChunkSize() int { return d.chunk }

// TileCount returns the number of tiles along one axis.
func (d *DDF) TileCount() int { return d.tilesPerRow }

// Tile returns a snapshot view of row-major tile id: a copy of that
// tile's samples, drawn from a reused buffer pool rather than a fresh
// allocation per call. Because tile storage is itself contiguous, the
// copy is a single slice copy rather than a row-by-row restride.
// Callers done with the returned Tile should pass it to ReleaseTile.
func (d *DDF) Tile(id int) Tile {
	tx, ty := id%d.tilesPerRow, id/d.tilesPerRow
	top := sdfpack.PixelPoint{X: tx * d.chunk, Y: ty * d.chunk}
	area := d.chunk * d.chunk
	start := id * area
	samples := d.tileBufs.Acquire(area)
	copy(samples, d.samples[start:start+area])
	return Tile{Samples: samples, TopLeft: top, ID: id, Size: d.chunk, Global: d.resolution}
}

// ReleaseTile returns a Tile's sample buffer, previously obtained from
// Tile, to the pool.
func (d *DDF) ReleaseTile(t Tile) error {
	return d.tileBufs.Release(t.Samples)
}

func (d *DDF) tileIDForPixel(p sdfpack.PixelPoint) int {
	tx, ty := p.X/d.chunk, p.Y/d.chunk
	return ty*d.tilesPerRow + tx
}

// sampleIndex maps a pixel to its offset in the tile-contiguous
// backing array: the tile's base offset plus the pixel's row-major
// offset within that tile.
func (d *DDF) sampleIndex(p sdfpack.PixelPoint) int {
	id := d.tileIDForPixel(p)
	lx, ly := p.X%d.chunk, p.Y%d.chunk
	return id*d.chunk*d.chunk + ly*d.chunk + lx
}

// Sdf evaluates the field at the nearest sample to p.
func (d *DDF) Sdf(p sdfpack.WorldPoint) float32 {
	px := sdfpack.ToPixel(p, d.resolution)
	return d.samples[d.sampleIndex(px)]
}

// FindMax returns the point of globally maximum recorded distance,
// comparing under the IEEE-754 total order rather than plain `>` so
// that a NaN-contaminated tile is picked up as an (visibly wrong)
// extremum instead of silently vanishing from every comparison.
func (d *DDF) FindMax() sdfpack.DistPoint {
	best := d.tileArgmax[0]
	bestKey := totalOrderKey(best.Distance)
	for _, c := range d.tileArgmax[1:] {
		key := totalOrderKey(c.Distance)
		if key > bestKey {
			best, bestKey = c, key
		}
	}
	return best
}

// totalOrderKey maps f to a uint32 whose natural ordering matches
// IEEE-754's totalOrder predicate: NaNs sort to the extremes of their
// sign rather than comparing false against everything.
func totalOrderKey(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&0x8000_0000 != 0 {
		return ^bits
	}
	return bits | 0x8000_0000
}

// tilesInDomain returns the IDs of every tile whose pixel range
// intersects domain, clipped to the unit square.
func (d *DDF) tilesInDomain(domain ms2.Box) []int {
	unit := ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}
	clamped := domain.Intersect(unit)
	if clamped.Min.X > clamped.Max.X || clamped.Min.Y > clamped.Max.Y {
		return nil
	}
	minPx := sdfpack.ToPixel(sdfpack.WorldPoint{Vec: clamped.Min}, d.resolution)
	maxPx := sdfpack.ToPixel(sdfpack.WorldPoint{Vec: clamped.Max}, d.resolution)
	minTx, minTy := minPx.X/d.chunk, minPx.Y/d.chunk
	maxTx, maxTy := maxPx.X/d.chunk, maxPx.Y/d.chunk

	var ids []int
	for ty := minTy; ty <= maxTy; ty++ {
		for tx := minTx; tx <= maxTx; tx++ {
			ids = append(ids, ty*d.tilesPerRow+tx)
		}
	}
	return ids
}

// InsertSDF folds f into the field over the whole unit square: every
// sample is replaced with min(current, f(world point)). Equivalent to
// InsertSDFDomain over the full unit square.
func (d *DDF) InsertSDF(ctx context.Context, f sdfpack.SDF) (bool, error) {
	return d.InsertSDFDomain(ctx, ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}, f)
}

// InsertSDFDomain folds f into the field restricted to domain: for
// every sample whose pixel lies in a tile intersecting domain, the
// sample is replaced with min(current, f(world point)), and that
// tile's argmax cache is refreshed. Tiles are updated concurrently; no
// two goroutines ever touch the same tile's samples. Unlike an ADF, a
// DDF insertion always "succeeds" (the reported bool is always true on
// success) since every sample is simply folded with min; termination
// of the outer placement loop instead relies on the shrinking distance
// returned by FindMax.
func (d *DDF) InsertSDFDomain(ctx context.Context, domain ms2.Box, f sdfpack.SDF) (bool, error) {
	ids := d.tilesInDomain(domain)
	g, _ := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			d.updateTile(id, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DDF) updateTile(id int, f sdfpack.SDF) {
	tx, ty := id%d.tilesPerRow, id/d.tilesPerRow
	top := sdfpack.PixelPoint{X: tx * d.chunk, Y: ty * d.chunk}
	base := id * d.chunk * d.chunk
	best := sdfpack.DistPoint{Distance: -math32.MaxFloat32}
	for y := 0; y < d.chunk; y++ {
		py := top.Y + y
		row := base + y*d.chunk
		for x := 0; x < d.chunk; x++ {
			px := sdfpack.PixelPoint{X: top.X + x, Y: py}
			idx := row + x
			wp := sdfpack.ToWorld(px, d.resolution)
			v := math32.Min(d.samples[idx], f.Sdf(wp))
			d.samples[idx] = v
			if v > best.Distance {
				best = sdfpack.DistPoint{Point: wp, Distance: v}
			}
		}
	}
	d.tileArgmax[id] = best
}

// Invert negates every sample in the field and refreshes every tile's
// argmax cache, turning "distance to nearest occupied region" into
// "distance to nearest free region" (or back). Tiles are refreshed
// concurrently.
func (d *DDF) Invert(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for id := 0; id < len(d.tileArgmax); id++ {
		id := id
		g.Go(func() error {
			d.invertTile(id)
			return nil
		})
	}
	return g.Wait()
}

func (d *DDF) invertTile(id int) {
	tx, ty := id%d.tilesPerRow, id/d.tilesPerRow
	top := sdfpack.PixelPoint{X: tx * d.chunk, Y: ty * d.chunk}
	base := id * d.chunk * d.chunk
	best := sdfpack.DistPoint{Distance: -math32.MaxFloat32}
	for y := 0; y < d.chunk; y++ {
		py := top.Y + y
		row := base + y*d.chunk
		for x := 0; x < d.chunk; x++ {
			px := sdfpack.PixelPoint{X: top.X + x, Y: py}
			idx := row + x
			d.samples[idx] = -d.samples[idx]
			if d.samples[idx] > best.Distance {
				best = sdfpack.DistPoint{Point: sdfpack.ToWorld(px, d.resolution), Distance: d.samples[idx]}
			}
		}
	}
	d.tileArgmax[id] = best
}

// Pixels calls visit once for every pixel in the grid, in row-major
// order, with its world-space point and recorded distance.
func (d *DDF) Pixels(visit func(p sdfpack.PixelPoint, wp sdfpack.WorldPoint, dist float32)) {
	for y := 0; y < d.resolution; y++ {
		for x := 0; x < d.resolution; x++ {
			px := sdfpack.PixelPoint{X: x, Y: y}
			visit(px, sdfpack.ToWorld(px, d.resolution), d.samples[d.sampleIndex(px)])
		}
	}
}
