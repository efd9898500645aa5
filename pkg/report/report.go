// Package report defines the result document of a packing run and its
// JSON serialization.
//
// The document has three primary metrics (volume fraction, surface to
// volume ratio, sphere count) plus a supplementary stats block with
// convergence diagnostics. Results computed from a run that did not
// converge carry Approximate=true; the metrics are still reported, never
// silently corrected.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Result is the measured outcome of a packing run.
type Result struct {
	VolumeFraction       float64 `json:"volume_fraction"`
	SurfaceToVolumeRatio float64 `json:"surface_to_volume_ratio"`
	SphereCount          int     `json:"sphere_count"`

	// Approximate marks results measured from a configuration that did
	// not meet the convergence tolerance.
	Approximate bool `json:"approximate,omitempty"`

	Stats *Stats `json:"stats,omitempty"`
}

// Stats carries convergence diagnostics and size-distribution summaries.
type Stats struct {
	MeanRadius      float64   `json:"mean_radius"`
	MaxRadius       float64   `json:"max_radius"`
	RadiusQuantiles Quantiles `json:"radius_quantiles"`

	ResidualOverlap float64 `json:"residual_overlap"`
	Passes          int     `json:"passes"`
	Converged       bool    `json:"converged"`
}

// Quantiles summarizes a radius distribution.
type Quantiles struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
}

// Write encodes the result as indented JSON and writes it to w.
// The output can be re-imported with [Read] for round-trip processing.
func Write(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a result to a JSON file at path.
// This is a convenience wrapper around [Write] for file-based output.
func WriteFile(r *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(r, f)
}

// Read decodes a result document from r.
func Read(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}

// Marshal returns the result as indented JSON bytes.
func Marshal(r *Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal decodes a result from JSON bytes.
func Unmarshal(data []byte) (*Result, error) {
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}
