package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func sampleResult() *Result {
	return &Result{
		VolumeFraction:       0.523,
		SurfaceToVolumeRatio: 3.0,
		SphereCount:          100,
		Stats: &Stats{
			MeanRadius:      1.0,
			MaxRadius:       2.0,
			RadiusQuantiles: Quantiles{P25: 0.5, P50: 1.0, P75: 1.5},
			ResidualOverlap: 1e-8,
			Passes:          412,
			Converged:       true,
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	want := sampleResult()

	var buf bytes.Buffer
	if err := Write(want, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.VolumeFraction != want.VolumeFraction {
		t.Errorf("VolumeFraction = %g, want %g", got.VolumeFraction, want.VolumeFraction)
	}
	if got.SphereCount != want.SphereCount {
		t.Errorf("SphereCount = %d, want %d", got.SphereCount, want.SphereCount)
	}
	if got.Stats == nil || got.Stats.Passes != want.Stats.Passes {
		t.Errorf("Stats = %+v, want %+v", got.Stats, want.Stats)
	}
}

func TestWrite_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(sampleResult(), &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, field := range []string{
		`"volume_fraction"`,
		`"surface_to_volume_ratio"`,
		`"sphere_count"`,
		`"residual_overlap"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("output missing field %s", field)
		}
	}

	// Converged results omit the approximate marker entirely.
	if strings.Contains(out, `"approximate"`) {
		t.Error("output should omit approximate for converged results")
	}
}

func TestWrite_ApproximateMarker(t *testing.T) {
	r := sampleResult()
	r.Approximate = true
	r.Stats.Converged = false

	var buf bytes.Buffer
	if err := Write(r, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"approximate": true`) {
		t.Error("output missing approximate marker")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := WriteFile(sampleResult(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := Marshal(sampleResult())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.SphereCount != 100 {
		t.Errorf("SphereCount = %d, want 100", got.SphereCount)
	}
}

func TestRead_Malformed(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Error("Read() accepted malformed JSON, want error")
	}
}
