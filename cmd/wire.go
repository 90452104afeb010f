package main

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/companion/internal/config"
	"github.com/Vovarama1992/companion/internal/domain"
	"github.com/Vovarama1992/companion/internal/domain/stations"
	"github.com/Vovarama1992/companion/internal/infra"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is everything both surfaces share: the turn pipeline and the asset ledger.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	pipeline *domain.Pipeline
	repo     ports.AssetRepository
	closeDB  func()
}

func bindFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	f.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "directory for fetched images")
	f.StringVar(&cfg.VideoDir, "video-dir", cfg.VideoDir, "directory for generated videos")
	f.StringVar(&cfg.UnsplashAccessKey, "unsplash-key", cfg.UnsplashAccessKey, "Unsplash access key")
	f.IntVar(&cfg.SummarySentences, "sentences", cfg.SummarySentences, "sentences per summary")
	f.DurationVar(&cfg.VideoDuration, "video-duration", cfg.VideoDuration, "length of generated clips")
	f.IntVar(&cfg.VideoFPS, "fps", cfg.VideoFPS, "frame rate of generated clips")
	f.DurationVar(&cfg.FarewellDelay, "farewell-delay", cfg.FarewellDelay, "pause between farewell and shutdown")
	f.IntVar(&cfg.MaxConcurrentTurns, "max-turns", cfg.MaxConcurrentTurns, "turns allowed to run at once")
	f.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres DSN for the asset ledger (memory if empty)")
}

func newLogger(cmd *cobra.Command, dev bool) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")

	var zc zap.Config
	if dev {
		zc = zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		if !debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	} else {
		zc = zap.NewProductionConfig()
		if debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
	}
	return zc.Build()
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	store, err := stations.NewArtifactStore(cfg.ImageDir, cfg.VideoDir)
	if err != nil {
		return nil, err
	}

	if cfg.UnsplashAccessKey == "" {
		log.Warn("UNSPLASH_ACCESS_KEY is not set; turns will come without images")
	}

	wiki := infra.NewWikipediaClient(cfg.WikipediaBaseURL, cfg.HTTPTimeout)
	unsplash := infra.NewUnsplashClient(cfg.UnsplashAccessKey, cfg.UnsplashBaseURL, cfg.HTTPTimeout)
	downloader := infra.NewHTTPDownloader(cfg.HTTPTimeout)
	encoder := infra.NewFFmpegEncoder(cfg.FFmpegPath, cfg.FFprobePath)

	s1 := stations.NewS1Lookup(wiki, cfg.SummarySentences, log)
	s2 := stations.NewS2FetchImage(unsplash, downloader, store, log)
	s3 := stations.NewS3SynthesizeVideo(encoder, store, cfg.VideoDuration, cfg.VideoFPS, log)

	a := &app{
		cfg:      cfg,
		log:      log,
		pipeline: domain.NewPipeline(s1, s2, s3, cfg.MaxConcurrentTurns, log),
		closeDB:  func() {},
	}

	if cfg.DatabaseURL == "" {
		a.repo = infra.NewMemoryAssetRepo()
		return a, nil
	}

	pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("asset ledger: %w", err)
	}
	a.repo = infra.NewPostgresAssetRepo(pool)
	a.closeDB = pool.Close
	return a, nil
}

func (a *app) options() domain.ConversationOptions {
	return domain.ConversationOptions{
		FarewellDelay: a.cfg.FarewellDelay,
		QueueSize:     a.cfg.QueueSize,
	}
}
