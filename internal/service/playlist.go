package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
	"github.com/ad-tracker/youtube-comment-export/internal/validation"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// DefaultMaxVideos is the enumeration cap used when the caller passes none.
const DefaultMaxVideos = 100

// PlaylistEnumerator pages through a playlist's members.
type PlaylistEnumerator struct {
	api    YouTubeAPI
	logger *zap.Logger
}

// NewPlaylistEnumerator creates a new playlist enumerator
func NewPlaylistEnumerator(api YouTubeAPI, log *zap.Logger) *PlaylistEnumerator {
	return &PlaylistEnumerator{
		api:    api,
		logger: logger.OrNop(log),
	}
}

// ListVideoIDs returns up to maxVideos video ids from the playlist, in playlist order.
// It stops when maxVideos ids are collected or the API reports no further page.
// Malformed ids are logged and skipped.
// Any page failure aborts the listing.
func (e *PlaylistEnumerator) ListVideoIDs(ctx context.Context, playlistID string, maxVideos int) ([]string, error) {
	if maxVideos <= 0 {
		maxVideos = DefaultMaxVideos
	}

	e.logger.Info("collecting video ids",
		zap.String("playlistId", playlistID),
		zap.Int("max", maxVideos),
	)

	videoIDs := make([]string, 0, maxVideos)
	pageToken := ""
	for len(videoIDs) < maxVideos {
		pageSize := maxVideos - len(videoIDs)
		if pageSize > youtube.MaxBatchSize {
			pageSize = youtube.MaxBatchSize
		}

		page, err := e.api.ListPlaylistPage(ctx, playlistID, pageToken, int64(pageSize))
		if err != nil {
			return nil, err
		}
		for _, id := range page.VideoIDs {
			if !validation.IsValidVideoID(id) {
				e.logger.Warn("skipping malformed video id", zap.String("videoId", id))
				continue
			}
			videoIDs = append(videoIDs, id)
		}

		e.logger.Debug("playlist page", zap.Int("collected", len(videoIDs)))

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(videoIDs) > maxVideos {
		videoIDs = videoIDs[:maxVideos]
	}

	e.logger.Info("video ids collected", zap.Int("count", len(videoIDs)))

	return videoIDs, nil
}
