package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sydlexius/albumlink/internal/catalog"
	"github.com/sydlexius/albumlink/internal/config"
	"github.com/sydlexius/albumlink/internal/detect"
	"github.com/sydlexius/albumlink/internal/identify"
	"github.com/sydlexius/albumlink/internal/logging"
	"github.com/sydlexius/albumlink/internal/page"
	"github.com/sydlexius/albumlink/internal/ratelimit"
	"github.com/sydlexius/albumlink/internal/resolve"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

// configPath returns --config, then AL_CONFIG_PATH, then "".
func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	return strings.TrimSpace(os.Getenv("AL_CONFIG_PATH"))
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

// logConfig applies --verbose over the configured logging section.
func (c *commandContext) logConfig(cfg *config.Config) logging.Config {
	lc := cfg.Logging
	if c.verboseFlag != nil && *c.verboseFlag {
		lc.Level = "debug"
	}
	return lc
}

// newLogger builds a logger for one-shot commands. Records go to the
// command's stderr so stdout stays machine readable.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Manager, *slog.Logger) {
	lc := c.logConfig(cfg)
	if c.verboseFlag == nil || !*c.verboseFlag {
		lc.Level = "warn"
	}
	lc.Format = "text"
	return logging.NewManagerWithWriter(lc, cmd.ErrOrStderr())
}

// services wires the identification pipeline from configuration.
type services struct {
	fetcher  *page.Fetcher
	catalog  *catalog.Client
	identify *identify.Service
}

func newServices(cfg *config.Config, logger *slog.Logger) *services {
	limiter := ratelimit.New(cfg.Fetch.RequestsPerSecond)
	limiter.Set(catalog.LimiterKey, cfg.Catalog.RequestsPerSecond)

	fetcher := page.NewFetcher(cfg.FetcherConfig(), limiter, logger)
	cat := catalog.New(cfg.CatalogClientConfig(), limiter, logger)
	resolver := resolve.New(cat, resolve.Options{AppLinks: cfg.Catalog.AppLinks}, logger)

	return &services{
		fetcher:  fetcher,
		catalog:  cat,
		identify: identify.NewService(fetcher, detect.New(logger), resolver, logger),
	}
}

// withServices loads config, builds a command logger and the pipeline,
// and runs fn.
func (c *commandContext) withServices(cmd *cobra.Command, fn func(*services) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	mgr, logger := c.newLogger(cmd, cfg)
	defer mgr.Close() //nolint:errcheck
	return fn(newServices(cfg, logger))
}
