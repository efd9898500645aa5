package packing

import (
	"testing"

	"github.com/granulab/spherepack/pkg/errors"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Count: 10}.WithDefaults()

	if cfg.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", cfg.Seed, DefaultSeed)
	}
	if cfg.Alpha != DefaultAlpha {
		t.Errorf("Alpha = %g, want %g", cfg.Alpha, DefaultAlpha)
	}
	if cfg.MaxPasses != DefaultMaxPasses {
		t.Errorf("MaxPasses = %d, want %d", cfg.MaxPasses, DefaultMaxPasses)
	}
	if cfg.StallWindow != DefaultStallWindow {
		t.Errorf("StallWindow = %d, want %d", cfg.StallWindow, DefaultStallWindow)
	}
	if cfg.MinProgress != DefaultMinProgress {
		t.Errorf("MinProgress = %g, want %g", cfg.MinProgress, DefaultMinProgress)
	}
}

func TestConfig_WithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{Count: 10, Seed: 7, Alpha: 0.8, MaxPasses: 100}.WithDefaults()

	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Alpha != 0.8 {
		t.Errorf("Alpha = %g, want 0.8", cfg.Alpha)
	}
	if cfg.MaxPasses != 100 {
		t.Errorf("MaxPasses = %d, want 100", cfg.MaxPasses)
	}
}

func TestConfig_WithDefaultsIdempotent(t *testing.T) {
	once := Config{Count: 10}.WithDefaults()
	twice := once.WithDefaults()

	if once.Seed != twice.Seed || once.Alpha != twice.Alpha ||
		once.MaxPasses != twice.MaxPasses || once.StallWindow != twice.StallWindow {
		t.Errorf("WithDefaults() not idempotent: %+v vs %+v", once, twice)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"count mode", Config{Count: 10}.WithDefaults(), false},
		{"fraction mode", Config{TargetFraction: 0.5}.WithDefaults(), false},
		{"neither count nor fraction", Config{}.WithDefaults(), true},
		{"negative fraction", Config{TargetFraction: -0.1, Count: 5}.WithDefaults(), true},
		{"fraction above one", Config{TargetFraction: 1.5}.WithDefaults(), true},
		{"alpha above one", Config{Count: 5, Alpha: 1.5}.WithDefaults(), true},
		{"negative alpha", Config{Count: 5, Alpha: -0.4}.WithDefaults(), true},
		{"negative tolerance", Config{Count: 5, Tolerance: -1}.WithDefaults(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Validate() returned wrong error code: %v", err)
			}
		})
	}
}
