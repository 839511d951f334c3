package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/model"
	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

const (
	// DefaultMaxComments is the per-video comment cap used when the caller passes none.
	DefaultMaxComments = 10

	progressEvery   = 10
	warnTitleLength = 50
)

// CommentStatus tells how a per-video comment fetch ended.
type CommentStatus int

const (
	CommentsFetched CommentStatus = iota
	CommentsDisabled
	CommentsFailed
)

func (s CommentStatus) String() string {
	switch s {
	case CommentsFetched:
		return "fetched"
	case CommentsDisabled:
		return "disabled"
	case CommentsFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommentResult is the outcome of fetching one video's comments. Comments is empty unless
// Status is CommentsFetched; Err is set only for CommentsFailed and CommentsDisabled.
type CommentResult struct {
	Status   CommentStatus
	Comments []model.CommentRecord
	Err      error
}

// CommentFetcher loads a video's top comments.
type CommentFetcher struct {
	api    YouTubeAPI
	logger *zap.Logger
}

// NewCommentFetcher creates a new comment fetcher
func NewCommentFetcher(api YouTubeAPI, log *zap.Logger) *CommentFetcher {
	return &CommentFetcher{
		api:    api,
		logger: logger.OrNop(log),
	}
}

// FetchComments returns up to maxComments top-level comments of video in relevance order.
// Errors are never returned: a 403 (comments disabled) and any other failure are logged and
// reported through the result status. A 403 for exhausted quota counts as a failure.
func (f *CommentFetcher) FetchComments(ctx context.Context, video model.VideoRecord, maxComments int) CommentResult {
	if maxComments <= 0 {
		maxComments = DefaultMaxComments
	}

	items, err := f.api.ListTopComments(ctx, video.VideoID, int64(maxComments))
	if err != nil {
		if youtube.IsQuotaExceeded(err) {
			f.logger.Warn("comment fetch rejected: quota exceeded",
				zap.String("videoId", video.VideoID),
				zap.Error(err),
			)
			return CommentResult{Status: CommentsFailed, Err: err}
		}
		if youtube.IsForbidden(err) {
			f.logger.Warn("comments unavailable (disabled)",
				zap.String("title", truncateTitle(video.Title, warnTitleLength)),
				zap.String("videoId", video.VideoID),
			)
			return CommentResult{Status: CommentsDisabled, Err: err}
		}
		f.logger.Warn("comment fetch failed",
			zap.String("videoId", video.VideoID),
			zap.Error(err),
		)
		return CommentResult{Status: CommentsFailed, Err: err}
	}

	comments := make([]model.CommentRecord, 0, len(items))
	for _, item := range items {
		comments = append(comments, model.NewCommentRecord(video, item.Text, item.Author, item.LikeCount, item.PublishedAt))
	}

	return CommentResult{Status: CommentsFetched, Comments: comments}
}

func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit]) + "..."
}

// AggregateSummary counts the per-video outcomes of a comment collection.
type AggregateSummary struct {
	Videos       int
	WithComments int
	Disabled     int
	Failed       int
	Rows         int
}

// Aggregator runs the comment fetcher over every video.
type Aggregator struct {
	fetcher *CommentFetcher
	logger  *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(fetcher *CommentFetcher, log *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger.OrNop(log),
	}
}

// CollectComments fetches comments for each video in order and concatenates the rows.
// Per-video failures are absorbed by the fetcher; the only error is context cancellation.
func (a *Aggregator) CollectComments(ctx context.Context, videos []model.VideoRecord, maxPerVideo int) ([]model.CommentRecord, AggregateSummary, error) {
	var rows []model.CommentRecord
	summary := AggregateSummary{Videos: len(videos)}

	a.logger.Info("collecting comments", zap.Int("videos", len(videos)))

	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		result := a.fetcher.FetchComments(ctx, video, maxPerVideo)
		switch result.Status {
		case CommentsDisabled:
			summary.Disabled++
		case CommentsFailed:
			summary.Failed++
		case CommentsFetched:
			if len(result.Comments) > 0 {
				summary.WithComments++
			}
		}
		rows = append(rows, result.Comments...)

		if processed := i + 1; processed%progressEvery == 0 {
			a.logger.Info("comment progress",
				zap.Int("processed", processed),
				zap.Int("total", len(videos)),
				zap.Int("rows", len(rows)),
			)
		}
	}

	summary.Rows = len(rows)
	a.logger.Info("comments collected", zap.Int("rows", summary.Rows))

	return rows, summary, nil
}
