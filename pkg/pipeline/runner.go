package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/granulab/spherepack/pkg/cache"
	"github.com/granulab/spherepack/pkg/httputil"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/observability"
	"github.com/granulab/spherepack/pkg/packing"
	"github.com/granulab/spherepack/pkg/report"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, client, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Client fetches remote mixture documents. When nil, remote sources
	// are fetched with an uncached default client.
	Client *httputil.Client
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → pack → measure pipeline with caching.
//
// A DID_NOT_CONVERGE failure is recoverable: Execute returns the error
// together with a complete Result holding the best-effort configuration
// and its approximate report. Such results are never cached.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}

	// Stage 1: Parse
	parseStart := time.Now()
	mix, hash, mixtureHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Mixture = mix
	result.MixtureHash = hash
	result.Stats.ParseTime = time.Since(parseStart)
	result.CacheInfo.MixtureHit = mixtureHit

	r.Logger.Info("resolved mixture",
		"components", len(mix),
		"mean_radius", mix.MeanRadius(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Pack + Measure
	packStart := time.Now()
	rep, p, packHit, packErr := r.PackWithCacheInfo(ctx, opts, mix, hash)
	if rep == nil {
		return nil, fmt.Errorf("pack: %w", packErr)
	}
	result.Report = rep
	result.Packing = p
	result.Stats.PackTime = time.Since(packStart)
	result.CacheInfo.PackHit = packHit
	result.Stats.SphereCount = rep.SphereCount
	if rep.Stats != nil {
		result.Stats.Passes = rep.Stats.Passes
		result.Stats.Converged = rep.Stats.Converged
	}

	if packErr != nil {
		r.Logger.Warn("packing did not converge",
			"passes", result.Stats.Passes,
			"residual", p.Residual,
			"duration", result.Stats.PackTime)
		return result, fmt.Errorf("pack: %w", packErr)
	}

	r.Logger.Info("packed spheres",
		"spheres", rep.SphereCount,
		"passes", result.Stats.Passes,
		"volume_fraction", rep.VolumeFraction,
		"cache_hit", packHit,
		"duration", result.Stats.PackTime)

	return result, nil
}

// ParseWithCacheInfo resolves the mixture with caching and returns cache hit info.
//
// Only remote sources go through the cache: local files are fast to parse
// and rereading them picks up edits immediately. The cached value is the
// canonical JSON encoding of the validated mixture, which is also the
// input of the content hash, so cached and fresh resolutions hash alike.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (mixture.Mixture, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, "", false, err
	}

	if !opts.IsRemote() {
		mix, err := Parse(ctx, r.client(), opts)
		if err != nil {
			return nil, "", false, err
		}
		return mix, mixtureHash(mix), false, nil
	}

	cacheKey := r.Keyer.MixtureKey(opts.MixturePath)

	// Try cache first (unless refresh requested)
	if !opts.NoCache && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var mix mixture.Mixture
			if json.Unmarshal(data, &mix) == nil && mix.Validate() == nil {
				observability.Cache().OnCacheHit(ctx, "mixture")
				return mix, cache.Hash(data), true, nil
			}
			// If deserialization fails, fall through to refetch
		}
		observability.Cache().OnCacheMiss(ctx, "mixture")
	}

	mix, err := Parse(ctx, r.client(), opts)
	if err != nil {
		return nil, "", false, err
	}

	// Cache the canonical encoding
	data, _ := json.Marshal(mix)
	if !opts.NoCache && len(data) > 0 {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLMixture) == nil {
			observability.Cache().OnCacheSet(ctx, "mixture", len(data))
		}
	}

	return mix, cache.Hash(data), false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (mixture.Mixture, string, error) {
	mix, hash, _, err := r.ParseWithCacheInfo(ctx, opts)
	return mix, hash, err
}

// PackWithCacheInfo packs and measures with result caching and returns
// cache hit info. On a cache hit the stored report is returned without
// rebuilding the configuration, so the packing is nil.
//
// On DID_NOT_CONVERGE the approximate report, the best-effort packing, and
// the error are all returned. The report is not cached in that case: a
// retry with a higher pass cap must not be answered from the cache.
func (r *Runner) PackWithCacheInfo(ctx context.Context, opts Options, mix mixture.Mixture, mixtureHash string) (*report.Result, *packing.Packing, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPack(); err != nil {
		return nil, nil, false, err
	}

	cacheKey := r.Keyer.PackKey(mixtureHash, opts.PackKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.NoCache && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if rep, err := report.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "pack")
				return rep, nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "pack")
	}

	container, err := BuildContainer(opts, mix)
	if err != nil {
		return nil, nil, false, err
	}

	p, packErr := Pack(ctx, opts, container, mix)
	if p == nil {
		return nil, nil, false, packErr
	}

	rep, err := packing.Measure(p)
	if err != nil {
		return nil, p, false, err
	}

	// Cache the result
	if !opts.NoCache && packErr == nil {
		if data, err := report.Marshal(rep); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLResult) == nil {
				observability.Cache().OnCacheSet(ctx, "pack", len(data))
			}
		}
	}

	return rep, p, false, packErr
}

// Pack is a convenience wrapper that calls PackWithCacheInfo and discards the cache hit info.
func (r *Runner) Pack(ctx context.Context, opts Options, mix mixture.Mixture, mixtureHash string) (*report.Result, *packing.Packing, error) {
	rep, p, _, err := r.PackWithCacheInfo(ctx, opts, mix, mixtureHash)
	return rep, p, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// client returns the configured HTTP client, or an uncached default.
// A fresh default per call keeps the Runner free of lazily written state.
func (r *Runner) client() *httputil.Client {
	if r.Client != nil {
		return r.Client
	}
	return httputil.NewClient(nil, nil)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
