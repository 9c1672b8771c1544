package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mctbnc/pkg/buildinfo"
	"github.com/matzehuels/mctbnc/pkg/cache"
	"github.com/matzehuels/mctbnc/pkg/learn"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mctbnc"

	// redisPrefix namespaces model entries in a shared Redis instance.
	redisPrefix = appName + ":"
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
	root := &cobra.Command{
		Use:          appName,
		Short:        "mctbnc learns multi-dimensional continuous-time Bayesian network classifiers",
		Long:         `mctbnc learns the structure and parameters of continuous-time Bayesian network classifiers from sequences of timestamped observations, and scores or renders the learned models.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.learnCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheOpts selects the model cache backend.
type cacheOpts struct {
	noCache  bool
	refresh  bool
	redisURL string
}

func (o *cacheOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the model cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached models and learn again")
	cmd.Flags().StringVar(&o.redisURL, "redis", os.Getenv("MCTBNC_REDIS_URL"), "cache models in Redis at this URL instead of on disk")
}

// newRunner creates a learning runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, opts cacheOpts) (*learn.Runner, error) {
	cache, err := newCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	return learn.NewRunner(cache, nil, c.Logger), nil
}

func newCache(ctx context.Context, opts cacheOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		return cache.NewRedisCache(ctx, opts.redisURL, redisPrefix)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mctbnc/).
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
