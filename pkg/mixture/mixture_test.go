package mixture

import (
	"math"
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
)

func TestMixture_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       Mixture
		wantErr bool
	}{
		{
			name: "valid single component",
			m:    Mixture{{Name: "beads", Radius: 1, Proportion: 100}},
		},
		{
			name: "valid two components",
			m: Mixture{
				{Name: "fine", Radius: 0.5, Proportion: 70},
				{Name: "coarse", Radius: 2, Proportion: 30},
			},
		},
		{
			name: "zero-weight component allowed alongside positive",
			m: Mixture{
				{Name: "fine", Radius: 0.5, Proportion: 0},
				{Name: "coarse", Radius: 2, Proportion: 1},
			},
		},
		{
			name:    "empty",
			m:       Mixture{},
			wantErr: true,
		},
		{
			name:    "nil",
			m:       nil,
			wantErr: true,
		},
		{
			name:    "zero radius",
			m:       Mixture{{Name: "beads", Radius: 0, Proportion: 1}},
			wantErr: true,
		},
		{
			name:    "negative radius",
			m:       Mixture{{Name: "beads", Radius: -1, Proportion: 1}},
			wantErr: true,
		},
		{
			name:    "infinite radius",
			m:       Mixture{{Name: "beads", Radius: math.Inf(1), Proportion: 1}},
			wantErr: true,
		},
		{
			name:    "NaN radius",
			m:       Mixture{{Name: "beads", Radius: math.NaN(), Proportion: 1}},
			wantErr: true,
		},
		{
			name: "anonymous component",
			m:    Mixture{{Name: "", Radius: 1, Proportion: 1}},
		},
		{
			name:    "control characters in name",
			m:       Mixture{{Name: "bad\x00name", Radius: 1, Proportion: 1}},
			wantErr: true,
		},
		{
			name: "all proportions zero",
			m: Mixture{
				{Name: "fine", Radius: 0.5, Proportion: 0},
				{Name: "coarse", Radius: 2, Proportion: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Validate() returned wrong error code: %v", err)
			}
		})
	}
}

func TestMixture_MeanVolume(t *testing.T) {
	// Equal weights over radii 1 and 2: mean of (4/3)pi and (4/3)pi*8.
	m := Mixture{
		{Name: "small", Radius: 1, Proportion: 1},
		{Name: "large", Radius: 2, Proportion: 1},
	}
	want := (4.0/3.0*math.Pi + 4.0/3.0*math.Pi*8) / 2
	if got := m.MeanVolume(); math.Abs(got-want) > 1e-9 {
		t.Errorf("MeanVolume() = %g, want %g", got, want)
	}
}

func TestMixture_MeanVolume_Weighted(t *testing.T) {
	// 3:1 weighting toward the small component.
	m := Mixture{
		{Name: "small", Radius: 1, Proportion: 3},
		{Name: "large", Radius: 2, Proportion: 1},
	}
	v1 := 4.0 / 3.0 * math.Pi
	v2 := 4.0 / 3.0 * math.Pi * 8
	want := (3*v1 + v2) / 4
	if got := m.MeanVolume(); math.Abs(got-want) > 1e-9 {
		t.Errorf("MeanVolume() = %g, want %g", got, want)
	}
}

func TestMixture_MeanSurfaceArea(t *testing.T) {
	m := Mixture{
		{Name: "small", Radius: 1, Proportion: 1},
		{Name: "large", Radius: 3, Proportion: 1},
	}
	want := (4*math.Pi + 36*math.Pi) / 2
	if got := m.MeanSurfaceArea(); math.Abs(got-want) > 1e-9 {
		t.Errorf("MeanSurfaceArea() = %g, want %g", got, want)
	}
}

func TestMixture_MaxRadius_IgnoresZeroWeight(t *testing.T) {
	m := Mixture{
		{Name: "phantom", Radius: 10, Proportion: 0},
		{Name: "real", Radius: 2, Proportion: 5},
	}
	if got := m.MaxRadius(); got != 2 {
		t.Errorf("MaxRadius() = %g, want 2", got)
	}
}

func TestMixture_MeanRadius(t *testing.T) {
	m := Mixture{
		{Name: "a", Radius: 1, Proportion: 1},
		{Name: "b", Radius: 3, Proportion: 1},
	}
	if got := m.MeanRadius(); got != 2 {
		t.Errorf("MeanRadius() = %g, want 2", got)
	}
}

func TestMixture_ZeroWeightMeansAreZero(t *testing.T) {
	m := Mixture{{Name: "a", Radius: 1, Proportion: 0}}
	if got := m.MeanVolume(); got != 0 {
		t.Errorf("MeanVolume() = %g, want 0", got)
	}
	if got := m.MeanRadius(); got != 0 {
		t.Errorf("MeanRadius() = %g, want 0", got)
	}
}
