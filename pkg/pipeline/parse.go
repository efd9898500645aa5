package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"path"
	"strings"

	"github.com/granulab/spherepack/pkg/cache"
	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/httputil"
	"github.com/granulab/spherepack/pkg/mixture"
)

// Parse resolves and validates the mixture for a run.
//
// Inline mixtures are validated as given. Local paths are loaded from disk
// with the format chosen by file extension. Remote http(s) sources are
// fetched through client; a nil client fetches without response caching,
// as do runs with NoCache set.
func Parse(ctx context.Context, client *httputil.Client, opts Options) (mixture.Mixture, error) {
	if len(opts.Mixture) > 0 {
		if err := opts.Mixture.Validate(); err != nil {
			return nil, err
		}
		return opts.Mixture, nil
	}

	if !isURL(opts.MixturePath) {
		return mixture.Load(opts.MixturePath)
	}

	if client == nil || opts.NoCache {
		client = httputil.NewClient(nil, nil)
	}
	data, err := client.FetchBytes(ctx, opts.MixturePath, opts.Refresh)
	if err != nil {
		if stderrors.Is(err, httputil.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "mixture %s", opts.MixturePath)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch mixture %s", opts.MixturePath)
	}
	return mixture.Decode(sourceName(opts.MixturePath), data)
}

// mixtureHash returns the content hash of the canonical JSON encoding of
// a mixture. Hashing the parsed document rather than the source bytes lets
// equivalent TOML, YAML, and JSON documents share cache entries.
func mixtureHash(m mixture.Mixture) string {
	data, _ := json.Marshal(m)
	return cache.Hash(data)
}

// sourceName returns the filename a remote source is format-detected by.
// Query strings and fragments are stripped.
func sourceName(rawurl string) string {
	if u, err := url.Parse(rawurl); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawurl)
}

// isURL reports whether the source is fetched over HTTP rather than read
// from disk.
func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
