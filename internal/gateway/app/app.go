// Package app wires the pipeline and its plumbing into a runnable server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"axon/internal/analytics"
	"axon/internal/gateway/config"
	"axon/internal/gateway/handler"
	artifactrepo "axon/internal/gateway/repository/artifact"
	keysrepo "axon/internal/gateway/repository/keys"
	"axon/internal/gateway/server"
	"axon/internal/intent"
	"axon/internal/llmclient"
	"axon/internal/nudge"
	"axon/internal/serp"
	"axon/internal/session"
	"axon/internal/synth"
)

type App struct {
	server *server.Server
	keys   *keysrepo.Store
	logger *zap.Logger
}

func New(ctx context.Context, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	monitor, err := llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.MonitorModel)
	if err != nil {
		return nil, fmt.Errorf("init monitor reasoner: %w", err)
	}
	synthesizerLLM, err := llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.SynthesizerModel)
	if err != nil {
		return nil, fmt.Errorf("init synthesizer reasoner: %w", err)
	}

	if cfg.SerpAPIKey == "" {
		logger.Warn("SERP_API_KEY not set, grounding and live product search disabled")
	}
	search := serp.NewClient(cfg.SerpAPIKey, logger.Named("serp"))

	analyzer := intent.NewAnalyzer(monitor, search, intent.Config{
		ConversionThreshold:    cfg.ConversionThreshold,
		RepeatedQueryThreshold: cfg.RepeatedQueryThreshold,
	}, logger.Named("intent"))
	resolver := nudge.NewResolver(search, logger.Named("nudge"))
	synthesizer := synth.New(synthesizerLLM, cfg.MinRelevance, logger.Named("synth"))

	keys, err := keysrepo.NewStore(cfg.RedisURL)
	if err != nil {
		logger.Warn("key store unavailable, admin endpoints degraded", zap.Error(err))
		keys = nil
	}

	var artifactStore artifactrepo.Store
	if cfg.Artifact.Enabled {
		s3, err := artifactrepo.NewS3Store(artifactrepo.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			logger.Warn("artifact store unavailable, image archiving disabled", zap.Error(err))
		} else {
			logger.Info("artifact store ready",
				zap.String("bucket", cfg.Artifact.Bucket),
				zap.String("endpoint", cfg.Artifact.Endpoint))
			artifactStore = s3
		}
	}

	h := handler.New(handler.Deps{
		Store:    session.NewStore(),
		Analyzer: analyzer,
		Resolver: resolver,
		Synth:    synthesizer,
		Probe:    monitor,
		Artifact: artifactStore,
		Keys:     keys,
		Hub:      analytics.NewHub(logger.Named("analytics")),
		Logger:   logger.Named("handler"),
	})

	srv := server.New(cfg.Port, server.NewMux(h), logger.Named("server"))

	return &App{server: srv, keys: keys, logger: logger}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.keys != nil {
		if err := a.keys.Close(); err != nil {
			a.logger.Warn("key store close failed", zap.Error(err))
		}
	}
	return a.server.Shutdown(ctx)
}
