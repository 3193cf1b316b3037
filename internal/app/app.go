package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/baseball-stats/external/statsfeed"
	"github.com/riskibarqy/baseball-stats/external/textgen"
	"github.com/riskibarqy/baseball-stats/internal/config"
	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/infrastructure/eventstream"
	cacherepo "github.com/riskibarqy/baseball-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/baseball-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/baseball-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/baseball-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/baseball-stats/internal/platform/cache"
	"github.com/riskibarqy/baseball-stats/internal/platform/database"
	idgen "github.com/riskibarqy/baseball-stats/internal/platform/id"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

const cacheNamespace = "baseball-stats"

// Container owns every long-lived dependency built from Config.
type Container struct {
	Config      config.Config
	Logger      *logging.Logger
	PlayerStats *usecase.PlayerStatService
	Ingestion   *usecase.IngestionService
	Summary     *usecase.SummaryService

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	var redisClient redis.UniversalClient
	if cfg.RedisURL != "" {
		redisClient, err = c.openRedis(cfg.RedisURL)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	if cfg.CacheEnabled {
		var backend cache.Backend = cache.NewStore(cfg.CacheTTL)
		if redisClient != nil {
			backend = cache.NewRedisStore(redisClient, cacheNamespace, cfg.CacheTTL, logger.Named("cache"))
		}
		repo = cacherepo.NewPlayerStatRepository(repo, backend, logger.Named("cache"))
	}

	fetcher := statsfeed.NewClient(statsfeed.ClientConfig{
		URL:            cfg.UpstreamURL,
		Timeout:        cfg.UpstreamTimeout,
		MaxRetries:     cfg.UpstreamMaxRetries,
		Logger:         logger.Named("statsfeed"),
		CircuitBreaker: cfg.UpstreamCircuit,
	})

	var publisher usecase.RefreshPublisher
	if redisClient != nil && cfg.EventStream != "" {
		publisher = eventstream.NewRedisPublisher(redisClient, cfg.EventStream, 0)
	}

	var generator usecase.TextGenerator
	if cfg.TextGenEnabled() {
		client, err := textgen.NewClient(textgen.ClientConfig{
			BaseURL:        cfg.TextGenBaseURL,
			APIKey:         cfg.TextGenAPIKey,
			Model:          cfg.TextGenModel,
			MaxTokens:      cfg.TextGenMaxTokens,
			Temperature:    cfg.TextGenTemperature,
			Timeout:        cfg.TextGenTimeout,
			Logger:         logger.Named("textgen"),
			CircuitBreaker: cfg.TextGenCircuit,
		})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("build text generation client: %w", err)
		}
		generator = client
	} else {
		logger.Info("text generation disabled", "reason", "TEXTGEN_API_KEY empty")
	}

	c.PlayerStats = usecase.NewPlayerStatService(repo, logger)
	c.Ingestion = usecase.NewIngestionService(repo, fetcher, publisher, idgen.NewUUIDGenerator(), logger, usecase.IngestionConfig{
		Workers:      cfg.IngestWorkers,
		FetchTimeout: cfg.UpstreamTimeout,
	})
	c.Summary = usecase.NewSummaryService(repo, generator, logger, cfg.TextGenTimeout)

	return c, nil
}

func (c *Container) buildRepository(ctx context.Context) (playerstat.Repository, error) {
	if c.Config.StoreBackend == config.StoreBackendMemory {
		c.Logger.Info("player stat store selected", "backend", config.StoreBackendMemory)
		return memory.NewPlayerStatRepository(), nil
	}

	db, err := database.Open(ctx, database.Options{
		URL:                  c.Config.DBURL,
		DisableBinaryResults: c.Config.DBDisablePreparedBinary,
	})
	if err != nil {
		return nil, err
	}
	c.addCloser("postgres", db.Close)
	c.Logger.Info("player stat store selected",
		"backend", config.StoreBackendPostgres,
		"db_name", database.Name(c.Config.DBURL),
	)
	return postgres.NewPlayerStatRepository(db), nil
}

func (c *Container) openRedis(rawURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	c.addCloser("redis", client.Close)
	return client, nil
}

func (c *Container) addCloser(name string, fn func() error) {
	c.closers = append(c.closers, namedCloser{name: name, close: fn})
}

// Close releases every resource concurrently and joins their errors.
func (c *Container) Close() error {
	if len(c.closers) == 0 {
		return nil
	}

	p := pool.New().WithErrors()
	for _, closer := range c.closers {
		p.Go(func() error {
			if err := closer.close(); err != nil {
				return fmt.Errorf("close %s: %w", closer.name, err)
			}
			c.Logger.Debug("resource closed", "name", closer.name)
			return nil
		})
	}
	c.closers = nil
	return p.Wait()
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	handler := httpapi.NewHandler(c.PlayerStats, c.Ingestion, c.Summary, c.Logger, httpapi.HandlerConfig{
		MaxPageSize: c.Config.QueryMaxPageSize,
	})
	router := httpapi.NewRouter(handler, c.Logger, httpapi.RouterConfig{
		SwaggerEnabled:     c.Config.SwaggerEnabled,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
