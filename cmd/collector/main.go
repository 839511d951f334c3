package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/config"
	"github.com/ad-tracker/youtube-comment-export/internal/metrics"
	"github.com/ad-tracker/youtube-comment-export/internal/report"
	"github.com/ad-tracker/youtube-comment-export/internal/service"
	"github.com/ad-tracker/youtube-comment-export/internal/service/quota"
	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Log.Error("invalid configuration", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Log.Error("collection failed", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	runID := uuid.New().String()
	log := logger.Log.With(zap.String("run_id", runID))

	log.Info("comment export starting",
		zap.String("channelId", cfg.YouTube.ChannelID),
		zap.String("channelHandle", cfg.YouTube.ChannelHandle),
		zap.Int("maxVideos", cfg.YouTube.MaxVideos),
		zap.Int("candidateVideos", cfg.YouTube.CandidateVideos),
		zap.Int("maxComments", cfg.YouTube.MaxComments),
		zap.String("output", cfg.Report.OutputPath),
	)

	runMetrics := metrics.New()

	quotaManager := quota.NewManager(cfg.YouTube.DailyQuota, cfg.YouTube.QuotaThreshold, log)
	quotaManager.OnRecord(runMetrics.RecordAPICall)

	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, youtube.Options{
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		Quota:             quotaManager,
		Logger:            log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize YouTube client: %w", err)
	}

	collector := service.NewCollector(client, log)
	summary, runErr := collector.Run(ctx, service.Options{
		ChannelID:           cfg.YouTube.ChannelID,
		ChannelHandle:       cfg.YouTube.ChannelHandle,
		CandidateVideos:     cfg.YouTube.CandidateVideos,
		MaxVideos:           cfg.YouTube.MaxVideos,
		MaxCommentsPerVideo: cfg.YouTube.MaxComments,
		OutputPath:          cfg.Report.OutputPath,
		Report:              report.Options{HeaderLocale: cfg.Report.HeaderLocale},
	})

	quotaInfo := quotaManager.GetQuotaInfo()
	log.Info("quota usage",
		zap.Int("used", quotaInfo.QuotaUsed),
		zap.Int("remaining", quotaInfo.QuotaRemaining),
		zap.Int("operations", quotaInfo.OperationsCount),
		zap.Float64("percent", quotaManager.GetQuotaUsagePercentage()),
	)
	if quotaManager.IsQuotaExhausted() {
		log.Warn("estimated quota threshold reached, later runs today may be rejected",
			zap.Int("belowThreshold", quotaManager.GetRemainingQuota()),
		)
	}

	if runErr == nil {
		runMetrics.RecordRun(summary)
		log.Info("comment export finished",
			zap.String("channelId", summary.ChannelID),
			zap.Int("videos", summary.Videos),
			zap.Int("shortsExcluded", summary.ShortsExcluded),
			zap.Int("commentsDisabled", summary.Comments.Disabled),
			zap.Int("commentsFailed", summary.Comments.Failed),
			zap.Int("rows", summary.Comments.Rows),
			zap.String("output", summary.OutputPath),
		)
	}

	if cfg.Metrics.PushgatewayURL != "" {
		// the run context may already be canceled; the push gets its own deadline
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := runMetrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName, runID); err != nil {
			log.Warn("metrics push failed", zap.Error(err))
		}
	}

	return runErr
}
