package placement

import (
	"context"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/sdfpack"
	"github.com/soypat/sdfpack/field"
)

func validConfig() Config {
	return Config{MinDistance: 0.01, MaxPlacements: 5, MinRadius: 0.01, MaxRadius: 0.05}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	bad := validConfig()
	bad.MinRadius = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero MinRadius")
	}
	bad = validConfig()
	bad.MinRadius, bad.MaxRadius = 0.1, 0.05
	if err := bad.Validate(); err == nil {
		t.Error("expected error when MinRadius > MaxRadius")
	}
}

func TestEmpiricalAffectedRegionClipsToUnitSquare(t *testing.T) {
	max := sdfpack.DistPoint{Point: sdfpack.World(0.02, 0.02), Distance: 0.1}
	region := EmpiricalAffectedRegion(max)
	unit := ms2.Box{Min: ms2.Vec{}, Max: ms2.Vec{X: 1, Y: 1}}
	clipped := region.Intersect(unit)
	if region != clipped {
		t.Errorf("region should already be clipped to the unit square, got %+v", region)
	}
	if region.Min.X < 0 || region.Min.Y < 0 {
		t.Errorf("region should not extend below the unit square, got %+v", region)
	}
}

func TestEmpiricalAffectedRegionSizeFormula(t *testing.T) {
	max := sdfpack.DistPoint{Point: sdfpack.World(0.5, 0.5), Distance: 0.1}
	region := EmpiricalAffectedRegion(max)
	side := region.Max.X - region.Min.X
	want := float32(0.1) * 4 * math32.Sqrt2
	if math32.Abs(side-want) > 1e-5 {
		t.Errorf("region side should be distance*4*sqrt2, got %v want %v", side, want)
	}
}

func TestDriverRunPlacesUpToMaxPlacements(t *testing.T) {
	d, err := field.NewDDF(64, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := d.InsertSDF(ctx, sdfpack.NewBoundaryRect()); err != nil {
		t.Fatal(err)
	}
	cfg := Config{MinDistance: 0.02, MaxPlacements: 3, MinRadius: 0.01, MaxRadius: 0.05}
	construct := DefaultConstructShape(cfg)
	findMax := func() (sdfpack.DistPoint, error) { return d.FindMax(), nil }
	rng := rand.New(rand.NewSource(1))
	driver, err := NewDriver(d, findMax, construct, cfg, rng)
	if err != nil {
		t.Fatal(err)
	}

	var placements []Placed
	err = driver.Run(ctx, func(p Placed) error {
		placements = append(placements, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(placements) == 0 {
		t.Fatal("expected at least one placement")
	}
	if len(placements) > cfg.MaxPlacements {
		t.Errorf("driver placed more than MaxPlacements: got %d, want <= %d", len(placements), cfg.MaxPlacements)
	}
}

// rejectingRepr always reports the same max and rejects the first
// rejectUntil insertions (changed=false) before accepting the rest,
// modeling an ADF's InsertionRejected outcome without a full ADF.
type rejectingRepr struct {
	max         sdfpack.DistPoint
	rejectUntil int
	attempts    int
}

func (r *rejectingRepr) Sdf(sdfpack.WorldPoint) float32 { return r.max.Distance }

func (r *rejectingRepr) InsertSDFDomain(context.Context, ms2.Box, sdfpack.SDF) (bool, error) {
	r.attempts++
	return r.attempts > r.rejectUntil, nil
}

func TestRunContinuesPastRejectedInsertions(t *testing.T) {
	repr := &rejectingRepr{max: sdfpack.DistPoint{Point: sdfpack.World(0.5, 0.5), Distance: 0.1}, rejectUntil: 3}
	cfg := Config{MinDistance: 0.01, MaxPlacements: 1, MinRadius: 0.01, MaxRadius: 0.05}
	construct := DefaultConstructShape(cfg)
	findMax := func() (sdfpack.DistPoint, error) { return repr.max, nil }
	rng := rand.New(rand.NewSource(1))
	driver, err := NewDriver(repr, findMax, construct, cfg, rng)
	if err != nil {
		t.Fatal(err)
	}
	var placements []Placed
	err = driver.Run(context.Background(), func(p Placed) error {
		placements = append(placements, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(placements) != 1 {
		t.Fatalf("expected Run to survive 3 rejections and still place once, got %d placements", len(placements))
	}
	if repr.attempts != 4 {
		t.Errorf("expected 4 insertion attempts (3 rejected + 1 accepted), got %d", repr.attempts)
	}
}

func TestDriverStopsAtMinDistance(t *testing.T) {
	d, err := field.NewDDF(32, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	// Pre-fill the whole field so FindMax immediately reads below any
	// reasonable threshold.
	huge, _ := sdfpack.NewCircle(10)
	if _, err := d.InsertSDF(ctx, sdfpack.Translate(huge, ms2.Vec{X: 0.5, Y: 0.5})); err != nil {
		t.Fatal(err)
	}
	cfg := Config{MinDistance: 0.5, MaxPlacements: 0, MinRadius: 0.01, MaxRadius: 0.05}
	construct := DefaultConstructShape(cfg)
	findMax := func() (sdfpack.DistPoint, error) { return d.FindMax(), nil }
	rng := rand.New(rand.NewSource(1))
	driver, err := NewDriver(d, findMax, construct, cfg, rng)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	err = driver.Run(ctx, func(Placed) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("field already below MinDistance everywhere should yield no placements, got %d", count)
	}
}
