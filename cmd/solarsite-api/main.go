// Command solarsite-api runs the solar site placement analysis service:
// HTTP front door, calibrator warm-up, and graceful shutdown, wired the
// way packages/llm-router/cmd/main.go wires its own server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/acquisition"
	"github.com/quantumlayer-dev/solar-placement/internal/calibrator"
	"github.com/quantumlayer-dev/solar-placement/internal/config"
	"github.com/quantumlayer-dev/solar-placement/internal/financial"
	"github.com/quantumlayer-dev/solar-placement/internal/history"
	"github.com/quantumlayer-dev/solar-placement/internal/httpapi"
	"github.com/quantumlayer-dev/solar-placement/internal/orchestrator"
	"github.com/quantumlayer-dev/solar-placement/internal/summarizer"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load("solarsite")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	redisClient := connectRedis(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	featureCache := acquisition.NewFeatureCache(redisClient, cfg.Redis.TTL, logger)

	acquirer := acquisition.New(cfg.Providers, featureCache, logger)

	cal := calibrator.New(calibrator.Params{
		Alpha:         cfg.Calibrator.Alpha,
		MinSamples:    cfg.Calibrator.MinSamples,
		MinDelta:      cfg.Calibrator.MinDelta,
		MaxAdjustment: cfg.Calibrator.MaxAdjustment,
		WarmupDays:    cfg.Calibrator.WarmupDays,
	}, logger)

	historyStore, err := history.Open(cfg.Database.DSN(), cfg.Database.MaxConnections, cfg.Database.MaxIdleConns, logger)
	if err != nil {
		logger.Warn("history store unavailable, persistence disabled", zap.Error(err))
		historyStore = nil
	} else {
		defer historyStore.Close()
	}

	warmedUp := warmupCalibrator(cal, historyStore, cfg.Calibrator.WarmupDays, logger)

	summarizerClient := buildSummarizer(cfg.Summarizer, logger)

	deadlines := orchestrator.Deadlines{
		Soft:              cfg.Server.SoftDeadline,
		Hard:              cfg.Server.HardDeadline,
		SummarizerTimeout: cfg.Summarizer.Timeout,
	}
	orch := orchestrator.New(acquirer, cal, financialParams(cfg.Financial), summarizerClient, historyStore, deadlines, logger)

	server := httpapi.NewServer(orch, logger, func() bool { return warmedUp() }, cfg.Server.Environment)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  70 * time.Second,
		WriteTimeout: 70 * time.Second,
	}

	go func() {
		logger.Info("starting solarsite-api", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownTimeout := time.Duration(cfg.Server.GracefulShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func connectRedis(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr(), DB: cfg.DB})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without cache", zap.Error(err))
		return nil
	}
	logger.Info("connected to redis")
	return client
}

// warmupCalibrator replays history asynchronously so the calibrator is
// ready under real warm-up volumes without delaying process start; the
// returned function reports completion for the readiness endpoint.
func warmupCalibrator(cal *calibrator.Calibrator, store *history.Store, warmupDays int, logger *zap.Logger) func() bool {
	if store == nil {
		logger.Info("no history store configured, calibrator starts cold")
		return func() bool { return true }
	}

	go func() {
		since := time.Now().AddDate(0, 0, -warmupDays)
		records, err := store.Replay(since)
		if err != nil {
			logger.Warn("calibrator warm-up replay failed", zap.Error(err))
			return
		}

		observations := make([]calibrator.Observation, 0, len(records))
		for _, r := range records {
			observations = append(observations, calibrator.Observation{
				Lat: r.Lat, Lng: r.Lng, Score: r.Score, CreatedAt: r.CreatedAt,
			})
		}
		cal.Warmup(observations)
	}()

	return cal.WarmedUp
}

func buildSummarizer(cfg config.SummarizerConfig, logger *zap.Logger) *summarizer.Client {
	var primary, fallback summarizer.Summarizer

	if cfg.OpenAIAPIKey != "" {
		primary = summarizer.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	}
	if cfg.BedrockRegion != "" {
		if client, err := summarizer.NewBedrockClient(context.Background(), cfg.BedrockRegion, cfg.BedrockModelID, logger); err != nil {
			logger.Warn("bedrock summarizer unavailable", zap.Error(err))
		} else {
			fallback = client
		}
	}

	return summarizer.New(primary, fallback, logger)
}

func financialParams(cfg config.FinancialConfig) financial.Params {
	return financial.Params{
		CostPerKW:        cfg.CostPerKW,
		LandAreaPerKW:    cfg.LandAreaPerKW,
		PerformanceRatio: cfg.PerformanceRatio,
		DegradationRate:  cfg.DegradationRate,
		LifetimeYears:    cfg.LifetimeYears,
	}
}
