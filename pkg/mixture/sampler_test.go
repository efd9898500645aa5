package mixture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
)

func TestNewSampler_ZeroWeights(t *testing.T) {
	m := Mixture{{Name: "a", Radius: 1, Proportion: 0}}
	if _, err := NewSampler(m, rand.New(rand.NewSource(1))); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("NewSampler() error = %v, want CONFIGURATION_INVALID", err)
	}
}

func TestSampler_SingleComponent(t *testing.T) {
	m := Mixture{{Name: "only", Radius: 1.5, Proportion: 7}}
	s, err := NewSampler(m, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		if got := s.Next(); got.Name != "only" || got.Radius != 1.5 {
			t.Fatalf("Next() = %+v, want the only component", got)
		}
	}
}

func TestSampler_Deterministic(t *testing.T) {
	m := Mixture{
		{Name: "fine", Radius: 0.5, Proportion: 60},
		{Name: "coarse", Radius: 2, Proportion: 40},
	}
	a, _ := NewSampler(m, rand.New(rand.NewSource(42)))
	b, _ := NewSampler(m, rand.New(rand.NewSource(42)))

	for i := 0; i < 100; i++ {
		if got, want := a.Next(), b.Next(); got != want {
			t.Fatalf("draw %d diverged: %+v vs %+v", i, got, want)
		}
	}
}

func TestSampler_SkipsZeroWeightComponents(t *testing.T) {
	m := Mixture{
		{Name: "phantom", Radius: 10, Proportion: 0},
		{Name: "real", Radius: 1, Proportion: 1},
	}
	s, err := NewSampler(m, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}
	for i := 0; i < 50; i++ {
		if got := s.Next(); got.Name == "phantom" {
			t.Fatal("Next() returned a zero-weight component")
		}
	}
}

func TestSampler_ProportionsRespected(t *testing.T) {
	m := Mixture{
		{Name: "common", Radius: 1, Proportion: 90},
		{Name: "rare", Radius: 2, Proportion: 10},
	}
	s, err := NewSampler(m, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}

	const n = 10000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[s.Next().Name]++
	}

	// Expected 90/10 split; allow a generous tolerance for a fixed seed.
	got := float64(counts["common"]) / n
	if math.Abs(got-0.9) > 0.02 {
		t.Errorf("common frequency = %g, want about 0.9", got)
	}
	if counts["rare"] == 0 {
		t.Error("rare component never drawn in 10000 draws")
	}
}
