package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/packing"
	"github.com/granulab/spherepack/pkg/pipeline"
	"github.com/granulab/spherepack/pkg/report"
)

// Output formats for the run command.
const (
	formatText = "text"
	formatJSON = "json"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	output    string // result file path (stdout if empty)
	format    string // stdout format: text or json
	shape     string
	fill      float64
	count     int
	fraction  float64
	seed      uint64
	alpha     float64
	tolerance float64
	maxPasses int
	workers   int
	noCache   bool
	refresh   bool
	watch     bool
}

// pipelineOptions converts runOpts into pipeline.Options for the runner.
func (o *runOpts) pipelineOptions(source string) pipeline.Options {
	return pipeline.Options{
		MixturePath:    source,
		Shape:          o.shape,
		Fill:           o.fill,
		Count:          o.count,
		TargetFraction: o.fraction,
		Seed:           o.seed,
		Alpha:          o.alpha,
		Tolerance:      o.tolerance,
		MaxPasses:      o.maxPasses,
		Workers:        o.workers,
		NoCache:        o.noCache,
		Refresh:        o.refresh,
	}
}

// runCommand creates the run command: parse the mixture, pack it into a
// container, measure the result.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{
		format:    formatText,
		shape:     pipeline.DefaultShape,
		fill:      pipeline.DefaultFill,
		count:     pipeline.DefaultCount,
		seed:      packing.DefaultSeed,
		alpha:     packing.DefaultAlpha,
		maxPasses: packing.DefaultMaxPasses,
		workers:   1,
	}

	cmd := &cobra.Command{
		Use:   "run <mixture-file|url>",
		Short: "Pack a sphere mixture and report the packing metrics",
		Long: `Run the full packing pipeline: parse the mixture descriptor, pack the
spheres into a container, and measure the result.

The mixture can be a local TOML, YAML, or JSON file or an http(s) URL.

Examples:
  spherepack run mixtures/glass.toml
  spherepack run glass.toml --shape box --count 500 -o result.json
  spherepack run https://example.com/mixtures/glass.toml --fraction 0.55
  spherepack run glass.toml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "result file (stdout if empty)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "stdout format: text or json")
	cmd.Flags().StringVar(&opts.shape, "shape", opts.shape, "container shape: box, cylinder, or ball")
	cmd.Flags().Float64Var(&opts.fill, "fill", opts.fill, "target fraction used to size the container")
	cmd.Flags().IntVar(&opts.count, "count", opts.count, "number of spheres to generate")
	cmd.Flags().Float64Var(&opts.fraction, "fraction", 0, "saturate to this volume fraction instead of --count")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "random seed")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", opts.alpha, "displacement damping factor")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "convergence tolerance (0 scales with the mean radius)")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", opts.maxPasses, "relaxation pass limit")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "parallel sweep workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result and mixture caches")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached entries")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show a live relaxation view")

	return cmd
}

// runPack executes the pipeline for source and writes the result. A run
// that stops at the pass limit still writes its approximate report and
// exits nonzero.
func (c *CLI) runPack(ctx context.Context, opts *runOpts, source string) error {
	if opts.format != formatText && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q (expected %s or %s)", opts.format, formatText, formatJSON)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.pipelineOptions(source)

	var res *pipeline.Result
	var runErr error
	if opts.watch {
		res, runErr = runWatch(ctx, runner, popts)
	} else {
		spin := newSpinnerWithContext(ctx, fmt.Sprintf("Packing %s", source))
		spin.Start()
		res, runErr = runner.Execute(ctx, popts)
		spin.Stop()
	}

	if runErr != nil {
		if stderrors.Is(runErr, context.Canceled) || !errors.IsRecoverable(runErr) {
			return runErr
		}
	}

	if err := writeReport(res.Report, opts.output, opts.format); err != nil {
		return err
	}

	// With json on stdout the report is the only output; keep decorations
	// off the stream so the command can be piped.
	if opts.format == formatJSON && opts.output == "" {
		return runErr
	}

	if runErr == nil {
		printSuccess("Packed %s", source)
	} else {
		printWarning("Packing did not converge; result is approximate")
	}
	printStats(res.Stats.SphereCount, res.Stats.Passes, res.Report.VolumeFraction, res.CacheInfo.PackHit)
	if opts.format == formatText && opts.output == "" {
		printReport(res.Report)
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return runErr
}

// writeReport writes rep as JSON to path when set. Without a path, json
// format streams the raw report to stdout and text format renders a
// summary block via printReport.
func writeReport(rep *report.Result, path, format string) error {
	if path != "" {
		return report.WriteFile(rep, path)
	}
	if format == formatJSON {
		return report.Write(rep, os.Stdout)
	}
	return nil
}

// printReport renders the measured report as aligned key-value lines.
func printReport(rep *report.Result) {
	printNewline()
	printKeyValue("volume fraction", fmt.Sprintf("%.4f", rep.VolumeFraction))
	printKeyValue("surface/volume", fmt.Sprintf("%.4f", rep.SurfaceToVolumeRatio))
	printKeyValue("spheres", fmt.Sprintf("%d", rep.SphereCount))
	if s := rep.Stats; s != nil {
		printKeyValue("passes", fmt.Sprintf("%d", s.Passes))
		printKeyValue("mean radius", fmt.Sprintf("%.4g", s.MeanRadius))
		printKeyValue("radius p25/p50/p75", fmt.Sprintf("%.4g / %.4g / %.4g",
			s.RadiusQuantiles.P25, s.RadiusQuantiles.P50, s.RadiusQuantiles.P75))
		printKeyValue("residual overlap", fmt.Sprintf("%.3g", s.ResidualOverlap))
	}
}
