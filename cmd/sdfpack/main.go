// Command sdfpack drives the placement loop to completion against
// either field representation and streams each placed shape to
// standard output as newline-delimited JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/soypat/sdfpack"
	"github.com/soypat/sdfpack/config"
	"github.com/soypat/sdfpack/field"
	"github.com/soypat/sdfpack/placement"
	"github.com/soypat/sdfpack/search"
)

func main() {
	cfg := config.Default()

	var repr string
	flag.StringVar(&repr, "repr", string(cfg.Repr), "field representation: ddf or adf")
	flag.IntVar(&cfg.Resolution, "resolution", cfg.Resolution, "ddf grid resolution")
	flag.IntVar(&cfg.Chunk, "chunk", cfg.Chunk, "ddf tile size")
	flag.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "adf max quadtree depth")
	flag.IntVar(&cfg.LatticeDensity, "lattice-density", cfg.LatticeDensity, "adf precision oracle lattice density")
	minRadius := flag.Float64("min-radius", float64(cfg.MinRadius), "minimum candidate radius")
	maxRadius := flag.Float64("max-radius", float64(cfg.MaxRadius), "maximum candidate radius")
	minDistance := flag.Float64("min-distance", float64(cfg.MinDistance), "stop once free space drops to this distance (ddf, when unset: sqrt(2)/(2*resolution))")
	flag.IntVar(&cfg.MaxPlacements, "max-placements", cfg.MaxPlacements, "stop after this many placements (0 = unbounded)")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "adf random-restart batch size")
	flag.Int64Var(&cfg.RandomSeed, "seed", cfg.RandomSeed, "PRNG seed")
	flag.Parse()

	cfg.Repr = config.Representation(repr)
	cfg.MinRadius = float32(*minRadius)
	cfg.MaxRadius = float32(*maxRadius)
	cfg.MinDistance = float32(*minDistance)
	minDistanceSet := false
	flag.Visit(func(f *flag.Flag) { minDistanceSet = minDistanceSet || f.Name == "min-distance" })
	if cfg.Repr == config.DDF && !minDistanceSet && cfg.Resolution > 0 {
		// half the diagonal of one grid cell
		cfg.MinDistance = float32(math.Sqrt2) / (2 * float32(cfg.Resolution))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("sdfpack: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("sdfpack: %v", err)
	}
}

// placement output record.
type record struct {
	Index    int     `json:"index"`
	CenterX  float32 `json:"center_x"`
	CenterY  float32 `json:"center_y"`
	Radius   float32 `json:"radius"`
	Distance float32 `json:"distance"`
}

func run(cfg config.Config) error {
	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	driverCfg := placement.Config{
		MinDistance:   cfg.MinDistance,
		MaxPlacements: cfg.MaxPlacements,
		MinRadius:     cfg.MinRadius,
		MaxRadius:     cfg.MaxRadius,
	}

	var lastRadius float32
	construct := placement.DefaultConstructShape(driverCfg)
	wrapped := func(max sdfpack.DistPoint, rng *rand.Rand) (sdfpack.Shape, error) {
		s, err := construct(max, rng)
		if err == nil {
			b := s.Bounds()
			lastRadius = (b.Max.X - b.Min.X) / 2
		}
		return s, err
	}

	var driver *placement.Driver
	var err error
	switch cfg.Repr {
	case config.DDF:
		driver, err = newDDFDriver(cfg, wrapped, driverCfg, rng)
	case config.ADF:
		driver, err = newADFDriver(cfg, wrapped, driverCfg, rng)
	default:
		return fmt.Errorf("unknown representation %q", cfg.Repr)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	ctx := context.Background()
	i := 0
	return driver.Run(ctx, func(p placement.Placed) error {
		c := p.Shape.Bounds().Center()
		rec := record{
			Index:    i,
			CenterX:  c.X,
			CenterY:  c.Y,
			Radius:   lastRadius,
			Distance: p.At.Distance,
		}
		i++
		return enc.Encode(rec)
	})
}

func newDDFDriver(cfg config.Config, construct placement.ConstructShape, driverCfg placement.Config, rng *rand.Rand) (*placement.Driver, error) {
	ddf, err := field.NewDDF(cfg.Resolution, cfg.Chunk)
	if err != nil {
		return nil, err
	}
	boundary := sdfpack.NewBoundaryRect()
	if _, err := ddf.InsertSDF(context.Background(), boundary); err != nil {
		return nil, err
	}
	findMax := func() (sdfpack.DistPoint, error) {
		return ddf.FindMax(), nil
	}
	return placement.NewDriver(ddf, findMax, construct, driverCfg, rng)
}

func newADFDriver(cfg config.Config, construct placement.ConstructShape, driverCfg placement.Config, rng *rand.Rand) (*placement.Driver, error) {
	adf := field.NewADF(cfg.MaxDepth, sdfpack.NewBoundaryRect()).WithLatticeDensity(cfg.LatticeDensity)
	ls := search.DefaultLineSearch()
	nextBatch := search.LocalMaximaIter(adf, cfg.BatchSize, cfg.RandomSeed, ls)
	findMax := func() (sdfpack.DistPoint, error) {
		batch, err := nextBatch(context.Background())
		if err != nil {
			return sdfpack.DistPoint{}, err
		}
		if len(batch) == 0 {
			// An empty batch means this round's random restarts found no
			// point exceeding the line search's threshold anywhere:
			// signal the driver to stop the same way a DDF does, via a
			// distance that reads as "at or below MinDistance".
			return sdfpack.DistPoint{Distance: 0}, nil
		}
		best := batch[0]
		for _, c := range batch[1:] {
			if c.Distance > best.Distance {
				best = c
			}
		}
		return best, nil
	}
	return placement.NewDriver(adf, findMax, construct, driverCfg, rng)
}
