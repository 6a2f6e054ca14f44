package search

import (
	"context"
	"math/rand"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
	"golang.org/x/sync/errgroup"
)

// FindMaxParallel draws batchSize uniform random starting points in
// the unit square, ascends each one to a local maximum of f
// concurrently, discards any result whose distance does not exceed
// ls.Delta, and deduplicates the rest: a candidate survives only if it
// is farther than twice its own distance from every previously kept
// candidate. rng is owned exclusively by the caller; it is never
// touched concurrently (only the sequential draw of starting points
// uses it).
func FindMaxParallel(ctx context.Context, f sdfpack.SDF, batchSize int, rng *rand.Rand, ls LineSearch) ([]sdfpack.DistPoint, error) {
	starts := make([]ms2.Vec, batchSize)
	for i := range starts {
		starts[i] = ms2.Vec{X: float32(rng.Float64()), Y: float32(rng.Float64())}
	}

	results := make([]*sdfpack.DistPoint, batchSize)
	g, _ := errgroup.WithContext(ctx)
	for i, p0 := range starts {
		i, p0 := i, p0
		g.Go(func() error {
			p1 := ls.Optimize(f, sdfpack.WorldPoint{Vec: p0})
			d := f.Sdf(p1)
			if d > ls.Delta {
				results[i] = &sdfpack.DistPoint{Point: p1, Distance: d}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var kept []sdfpack.DistPoint
	for _, r := range results {
		if r == nil {
			continue
		}
		survives := true
		for _, k := range kept {
			if distance(r.Point.Vec, k.Point.Vec)/2 <= r.Distance {
				survives = false
				break
			}
		}
		if survives {
			kept = append(kept, *r)
		}
	}
	return kept, nil
}

func distance(a, b ms2.Vec) float32 {
	return ms2.Norm(ms2.Sub(a, b))
}

// LocalMaximaIter returns a pull-based generator of batches of distinct
// local maxima: each call to the returned function runs one round of
// FindMaxParallel against a PRNG seeded once at construction and owned
// exclusively by the generator, matching the original solver's
// infinite-iterator wrapper around repeated batched restarts.
func LocalMaximaIter(f sdfpack.SDF, batchSize int, seed int64, ls LineSearch) func(context.Context) ([]sdfpack.DistPoint, error) {
	rng := rand.New(rand.NewSource(seed))
	return func(ctx context.Context) ([]sdfpack.DistPoint, error) {
		return FindMaxParallel(ctx, f, batchSize, rng, ls)
	}
}
