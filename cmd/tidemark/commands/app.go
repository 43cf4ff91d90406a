package commands

import (
	"fmt"

	"github.com/wonny/tidemark/internal/analysis"
	"github.com/wonny/tidemark/internal/collector"
	"github.com/wonny/tidemark/internal/indicators"
	"github.com/wonny/tidemark/internal/patterns"
	"github.com/wonny/tidemark/internal/pipeline"
	"github.com/wonny/tidemark/internal/scoring"
	"github.com/wonny/tidemark/internal/store"
	"github.com/wonny/tidemark/pkg/config"
	"github.com/wonny/tidemark/pkg/database"
	"github.com/wonny/tidemark/pkg/httputil"
	"github.com/wonny/tidemark/pkg/logger"
	"github.com/wonny/tidemark/pkg/redis"
)

// app holds the wired dependency graph shared by the commands.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	priceRepo     *store.PriceRepository
	sentimentRepo *store.SentimentRepository
	analysisRepo  *store.AnalysisRepository

	service   *analysis.Service
	collector *collector.Collector
}

// newApp loads configuration and wires the full graph. Commands that run
// an API server attach the websocket hub afterwards via SetPublisher.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		redisClient = nil
	}

	priceRepo := store.NewPriceRepository(db.Pool)
	sentimentRepo := store.NewSentimentRepository(db.Pool)
	analysisRepo := store.NewAnalysisRepository(db.Pool)

	calc := indicators.NewCalculator(indicators.Config{
		ShortWindow:           cfg.Analysis.ShortWindow,
		LongWindow:            cfg.Analysis.LongWindow,
		VolumeWindow:          cfg.Analysis.VolumeWindow,
		VolumeTrendWindow:     cfg.Analysis.VolumeTrendWindow,
		BollingerK:            cfg.Analysis.BollingerK,
		RSIPeriod:             cfg.Analysis.RSIPeriod,
		MomentumPeriod:        cfg.Analysis.MomentumPeriod,
		SampleStdDev:          cfg.Analysis.SampleStdDev,
		MissingVolumeAsNormal: cfg.Analysis.MissingVolumeAsNormal,
	}, log)
	detector := patterns.NewDetector(patterns.Config{Lookback: cfg.Analysis.PatternLookback}, log)
	scorer := scoring.NewScorer(log)
	p := pipeline.New(pipeline.Config{
		Workers:       cfg.Analysis.Workers,
		OutputPeriods: cfg.Analysis.OutputPeriods,
	}, calc, detector, scorer, log)

	var cache *redis.Cache
	if redisClient != nil {
		cache = redis.NewCache(redisClient, "tidemark")
	}

	service := analysis.New(priceRepo, sentimentRepo, analysisRepo, p, cache, nil, log)

	httpClient := httputil.New(log, cfg.Collector.Timeout, cfg.Collector.RequestsPerSec)
	headlineClient := collector.NewClient(httpClient, cfg.Collector.BaseURL, log)
	col := collector.NewCollector(headlineClient, sentimentRepo, log)

	return &app{
		cfg:           cfg,
		log:           log,
		db:            db,
		redis:         redisClient,
		priceRepo:     priceRepo,
		sentimentRepo: sentimentRepo,
		analysisRepo:  analysisRepo,
		service:       service,
		collector:     col,
	}, nil
}

// Close releases the app's connections.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}
