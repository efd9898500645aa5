// Package cli implements the spherepack command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/granulab/spherepack/pkg/buildinfo"
	"github.com/granulab/spherepack/pkg/cache"
	"github.com/granulab/spherepack/pkg/httputil"
	"github.com/granulab/spherepack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spherepack"

	// bodyCacheTTL is how long fetched mixture documents stay fresh on disk.
	bodyCacheTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "spherepack",
		Short:         "Spherepack packs sphere mixtures into containers",
		Long:          `Spherepack generates dense random packings of polydisperse sphere mixtures inside box, cylinder, or ball containers and measures the volume fraction and surface-to-volume ratio of the result.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Reports and resolved
// mixtures are cached under the XDG cache directory, with fetched mixture
// bodies in an http/ subdirectory alongside them.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.Client = newHTTPClient(noCache)
	return r, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newHTTPClient builds the mixture-fetching client. Without a usable cache
// directory the client still works, it just refetches on every call.
func newHTTPClient(noCache bool) *httputil.Client {
	if noCache {
		return httputil.NewClient(nil, nil)
	}
	dir, err := cacheDir()
	if err != nil {
		return httputil.NewClient(nil, nil)
	}
	bodies, err := httputil.NewCache(filepath.Join(dir, "http"), bodyCacheTTL)
	if err != nil {
		return httputil.NewClient(nil, nil)
	}
	return httputil.NewClient(bodies, nil)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spherepack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
