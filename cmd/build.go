package cmd

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Vievek/zero-hunger-sub000/internal/assignment"
	"github.com/Vievek/zero-hunger-sub000/internal/embed"
	embedgemini "github.com/Vievek/zero-hunger-sub000/internal/embed/gemini"
	"github.com/Vievek/zero-hunger-sub000/internal/engine"
	"github.com/Vievek/zero-hunger-sub000/internal/geo"
	"github.com/Vievek/zero-hunger-sub000/internal/matching"
	"github.com/Vievek/zero-hunger-sub000/internal/metrics"
	"github.com/Vievek/zero-hunger-sub000/internal/notify"
	"github.com/Vievek/zero-hunger-sub000/internal/routing"
	"github.com/Vievek/zero-hunger-sub000/internal/scoring"
	"github.com/Vievek/zero-hunger-sub000/internal/secrets"
	"github.com/Vievek/zero-hunger-sub000/internal/store/sqlite"
)

// components bundles everything a command may need.
type components struct {
	store    *sqlite.Store
	engine   *engine.Engine
	selector *matching.Selector
	nc       *nats.Conn
	metrics  *metrics.Metrics
}

func (c *components) close() {
	if c.nc != nil {
		c.nc.Drain()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// buildComponents wires the engine from configuration. NATS is optional: the
// notification dispatcher degrades to log-only without it.
func buildComponents(ctx context.Context, config *Config, logger *zap.Logger) (*components, error) {
	st, err := sqlite.New(config.Database)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	c := &components{store: st, metrics: metrics.New(nil)}

	oracle := buildOracle(config, logger)

	var primary scoring.Strategy
	if embedder, err := buildEmbedder(ctx, config, logger); err != nil {
		logger.Warn("embedding oracle unavailable, starting on rule-based scoring", zap.Error(err))
	} else if embedder != nil {
		primary = scoring.NewEmbeddingStrategy(embedder)
	}

	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(logger)
	if config.NATS != nil && config.NATS.URL != "" {
		nc, err := nats.Connect(config.NATS.URL)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}
		c.nc = nc
		dispatcher = notify.NewNATSDispatcher(nc, "", logger)
	}

	scoringEngine := scoring.NewEngine(primary, scoring.NewRuleStrategy(), logger)
	c.selector = matching.NewSelector(st, scoringEngine, dispatcher, c.metrics, logger)
	resolver := matching.NewResolver(st, c.metrics, logger)

	fitness := assignment.NewFitnessModel(oracle, logger)
	planner := assignment.NewPlanner(fitness, 0, logger)
	controller := assignment.NewController(st, planner, fitness, dispatcher, c.metrics, assignmentConfig(config), logger)
	optimizer := routing.NewOptimizer(oracle, logger)

	c.engine = engine.New(st, c.selector, resolver, controller, optimizer, logger)

	return c, nil
}

func buildOracle(config *Config, logger *zap.Logger) geo.Oracle {
	var inner geo.Oracle = geo.NewEstimator()
	cacheTTL := geo.DefaultCacheTTL

	if config.Geo != nil {
		if config.Geo.ProviderURL != "" {
			inner = geo.NewProvider(config.Geo.ProviderURL, logger)
		}
		if config.Geo.CacheTTL > 0 {
			cacheTTL = config.Geo.CacheTTL
		}
	}

	return geo.NewCache(geo.NewDegrading(inner, logger), cacheTTL)
}

func buildEmbedder(ctx context.Context, config *Config, logger *zap.Logger) (embed.Embedder, error) {
	if config.Embedding == nil || !config.Embedding.Enabled {
		return nil, nil
	}
	if config.Embedding.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when embedding is enabled")
	}

	apiKey, err := secrets.Load("gemini api key", config.Embedding.Gemini.APIKeyFile, config.Embedding.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return embedgemini.NewClient(ctx, apiKey, config.Embedding.Gemini.Model, logger)
}

func assignmentConfig(config *Config) assignment.Config {
	cfg := assignment.DefaultConfig()
	if config.Assignment == nil {
		return cfg
	}

	if config.Assignment.RetryInitial > 0 {
		cfg.RetryInitial = config.Assignment.RetryInitial
	}
	if config.Assignment.RetryMax > 0 {
		cfg.RetryMax = config.Assignment.RetryMax
	}
	if config.Assignment.MaxAttempts > 0 {
		cfg.MaxAttempts = config.Assignment.MaxAttempts
	}
	if config.Assignment.EmergencyScanLimit > 0 {
		cfg.EmergencyScanLimit = config.Assignment.EmergencyScanLimit
	}
	if config.Assignment.EmergencyPolicy == string(assignment.EmergencyBestFit) {
		cfg.EmergencyPolicy = assignment.EmergencyBestFit
	}

	return cfg
}
