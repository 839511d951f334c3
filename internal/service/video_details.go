package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/model"
	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// VideoDetailFetcher loads video metadata in batches and drops Shorts.
type VideoDetailFetcher struct {
	api    YouTubeAPI
	logger *zap.Logger
}

// NewVideoDetailFetcher creates a new video detail fetcher
func NewVideoDetailFetcher(api YouTubeAPI, log *zap.Logger) *VideoDetailFetcher {
	return &VideoDetailFetcher{
		api:    api,
		logger: logger.OrNop(log),
	}
}

// FetchDetails looks up videoIDs in batches of 50 and returns the long-form videos in input
// order, together with the number of Shorts that were excluded. The first failing batch
// aborts the whole lookup.
func (f *VideoDetailFetcher) FetchDetails(ctx context.Context, videoIDs []string) ([]model.VideoRecord, int, error) {
	videos := make([]model.VideoRecord, 0, len(videoIDs))
	excluded := 0

	for _, batch := range youtube.BatchVideoIDs(videoIDs, youtube.MaxBatchSize) {
		items, err := f.api.FetchVideos(ctx, batch)
		if err != nil {
			return nil, 0, err
		}

		for _, item := range items {
			if youtube.IsShortForm(f.durationSeconds(item)) {
				excluded++
				continue
			}
			videos = append(videos, model.VideoRecord{
				Title:       item.Title,
				ViewCount:   item.ViewCount,
				LikeCount:   item.LikeCount,
				PublishedAt: item.PublishedAt,
				VideoID:     item.ID,
			})
		}

		f.logger.Info("video details processed",
			zap.Int("kept", len(videos)),
			zap.Int("shortsExcluded", excluded),
		)
	}

	return videos, excluded, nil
}

// durationSeconds parses the item's duration. Unparseable durations count as zero, which
// classifies the video as a Short.
func (f *VideoDetailFetcher) durationSeconds(item youtube.VideoItem) int {
	seconds, err := youtube.ParseVideoDuration(item.Duration)
	if err != nil {
		f.logger.Warn("unparseable video duration, treating as short-form",
			zap.String("videoId", item.ID),
			zap.String("duration", item.Duration),
			zap.Error(err),
		)
		return 0
	}
	return seconds
}
