package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/report"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// DefaultCandidateVideos is how many uploads are enumerated before Shorts are filtered out.
const DefaultCandidateVideos = 200

// Options configures one collection run.
type Options struct {
	// ChannelID is used as-is when set; otherwise ChannelHandle is resolved.
	ChannelID     string
	ChannelHandle string

	CandidateVideos     int
	MaxVideos           int
	MaxCommentsPerVideo int

	OutputPath string
	Report     report.Options
}

// RunSummary describes what a run collected.
type RunSummary struct {
	ChannelID      string
	PlaylistID     string
	CandidateIDs   int
	ShortsExcluded int
	Videos         int
	Comments       AggregateSummary
	OutputPath     string
}

// Collector runs the full pipeline: channel, uploads playlist, long-form videos, top
// comments, CSV report.
type Collector struct {
	resolver   *ChannelResolver
	enumerator *PlaylistEnumerator
	details    *VideoDetailFetcher
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewCollector wires the pipeline stages around a single API client.
func NewCollector(api YouTubeAPI, log *zap.Logger) *Collector {
	log = logger.OrNop(log)
	return &Collector{
		resolver:   NewChannelResolver(api, log),
		enumerator: NewPlaylistEnumerator(api, log),
		details:    NewVideoDetailFetcher(api, log),
		aggregator: NewAggregator(NewCommentFetcher(api, log), log),
		logger:     log,
	}
}

// Run executes the pipeline and writes the report. Channel, playlist and video detail
// failures abort the run before any file is written; per-video comment failures do not.
func (c *Collector) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	opts = withDefaults(opts)
	summary := &RunSummary{OutputPath: opts.OutputPath}

	channelID := opts.ChannelID
	if channelID == "" {
		id, err := c.resolver.ResolveHandle(ctx, opts.ChannelHandle)
		if err != nil {
			return nil, fmt.Errorf("resolve channel: %w", err)
		}
		channelID = id
	}
	summary.ChannelID = channelID

	playlistID, err := c.resolver.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("find uploads playlist: %w", err)
	}
	summary.PlaylistID = playlistID

	ids, err := c.enumerator.ListVideoIDs(ctx, playlistID, opts.CandidateVideos)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	summary.CandidateIDs = len(ids)

	videos, excluded, err := c.details.FetchDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}
	summary.ShortsExcluded = excluded

	if len(videos) > opts.MaxVideos {
		videos = videos[:opts.MaxVideos]
	}
	summary.Videos = len(videos)

	c.logger.Info("long-form videos selected",
		zap.Int("videos", len(videos)),
		zap.Int("candidates", len(ids)),
		zap.Int("shortsExcluded", excluded),
	)

	rows, comments, err := c.aggregator.CollectComments(ctx, videos, opts.MaxCommentsPerVideo)
	if err != nil {
		return nil, fmt.Errorf("collect comments: %w", err)
	}
	summary.Comments = comments

	if err := report.WriteFile(opts.OutputPath, rows, opts.Report); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	c.logger.Info("report written",
		zap.String("path", opts.OutputPath),
		zap.Int("rows", comments.Rows),
	)

	return summary, nil
}

func withDefaults(opts Options) Options {
	if opts.MaxVideos <= 0 {
		opts.MaxVideos = DefaultMaxVideos
	}
	if opts.CandidateVideos <= 0 {
		opts.CandidateVideos = DefaultCandidateVideos
	}
	if opts.CandidateVideos < opts.MaxVideos {
		opts.CandidateVideos = opts.MaxVideos
	}
	if opts.MaxCommentsPerVideo <= 0 {
		opts.MaxCommentsPerVideo = DefaultMaxComments
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "nomadcoders_data.csv"
	}
	return opts
}
