package packing

import (
	"context"
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/geom"
	"github.com/granulab/spherepack/pkg/mixture"
)

func uniformMixture(radius float64) mixture.Mixture {
	return mixture.Mixture{{Name: "beads", Radius: radius, Proportion: 1}}
}

func TestGenerate_CountMode(t *testing.T) {
	cube, _ := geom.NewCube(10)
	p, err := Generate(context.Background(), Config{Count: 100}, cube, uniformMixture(1))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if p.Len() != 100 {
		t.Errorf("Len() = %d, want 100", p.Len())
	}
}

func TestGenerate_AllSpheresInsideContainer(t *testing.T) {
	containers := []geom.Container{
		mustCube(t, 10),
		mustCylinder(t, 3, 12),
		mustBall(t, 6),
	}

	for _, c := range containers {
		t.Run(c.Kind(), func(t *testing.T) {
			p, err := Generate(context.Background(), Config{Count: 200, Seed: 5}, c, uniformMixture(0.5))
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			for i, s := range p.Spheres {
				if !c.Contains(s.Center, s.Radius) {
					t.Fatalf("sphere %d at %v protrudes from the %s", i, s.Center, c.Kind())
				}
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cube, _ := geom.NewCube(10)
	mix := mixture.Mixture{
		{Name: "fine", Radius: 0.4, Proportion: 60},
		{Name: "coarse", Radius: 1, Proportion: 40},
	}

	a, err := Generate(context.Background(), Config{Count: 150, Seed: 11}, cube, mix)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(context.Background(), Config{Count: 150, Seed: 11}, cube, mix)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := range a.Spheres {
		if a.Spheres[i] != b.Spheres[i] {
			t.Fatalf("sphere %d differs: %+v vs %+v", i, a.Spheres[i], b.Spheres[i])
		}
	}
}

func TestGenerate_SeedsDiffer(t *testing.T) {
	cube, _ := geom.NewCube(10)

	a, _ := Generate(context.Background(), Config{Count: 50, Seed: 1}, cube, uniformMixture(1))
	b, _ := Generate(context.Background(), Config{Count: 50, Seed: 2}, cube, uniformMixture(1))

	same := true
	for i := range a.Spheres {
		if a.Spheres[i].Center != b.Spheres[i].Center {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical configurations")
	}
}

func TestGenerate_TargetFractionMode(t *testing.T) {
	cube, _ := geom.NewCube(10)
	p, err := Generate(context.Background(), Config{TargetFraction: 0.3}, cube, uniformMixture(0.5))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	total := geom.TotalVolume(p.Spheres)
	target := 0.3 * cube.Volume()
	if total < target {
		t.Errorf("total sphere volume %g below target %g", total, target)
	}
	// One draw past the threshold at most.
	single := geom.Sphere{Radius: 0.5}.Volume()
	if total >= target+single+1e-9 {
		t.Errorf("total sphere volume %g overshoots target %g by more than one sphere", total, target)
	}
}

func TestGenerate_EmptyMixture(t *testing.T) {
	cube, _ := geom.NewCube(10)
	_, err := Generate(context.Background(), Config{Count: 10}, cube, mixture.Mixture{})
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Generate() error = %v, want CONFIGURATION_INVALID", err)
	}
}

func TestGenerate_ZeroWeights(t *testing.T) {
	cube, _ := geom.NewCube(10)
	mix := mixture.Mixture{{Name: "ghost", Radius: 1, Proportion: 0}}
	_, err := Generate(context.Background(), Config{Count: 10}, cube, mix)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Generate() error = %v, want CONFIGURATION_INVALID", err)
	}
}

func TestGenerate_SphereTooLarge(t *testing.T) {
	cube, _ := geom.NewCube(4) // MaxFit 2
	_, err := Generate(context.Background(), Config{Count: 1}, cube, uniformMixture(3))
	if !errors.Is(err, errors.ErrCodeGeometry) {
		t.Errorf("Generate() error = %v, want GEOMETRY_UNFITTABLE", err)
	}
}

func TestGenerate_ExactFitSphere(t *testing.T) {
	// A sphere of exactly the largest fittable radius has one admissible
	// position: the center.
	cube, _ := geom.NewCube(2)
	p, err := Generate(context.Background(), Config{Count: 1}, cube, uniformMixture(1))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := p.Spheres[0].Center; got != (geom.Vec3{0, 0, 0}) {
		t.Errorf("Center = %v, want origin", got)
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cube, _ := geom.NewCube(10)
	_, err := Generate(context.Background(), Config{}, cube, uniformMixture(1))
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Generate() error = %v, want CONFIGURATION_INVALID", err)
	}
}

func mustCube(t *testing.T, side float64) geom.Container {
	t.Helper()
	c, err := geom.NewCube(side)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustCylinder(t *testing.T, r, h float64) geom.Container {
	t.Helper()
	c, err := geom.NewCylinder(r, h)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustBall(t *testing.T, r float64) geom.Container {
	t.Helper()
	c, err := geom.NewBall(r)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
