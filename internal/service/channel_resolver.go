package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
	"github.com/ad-tracker/youtube-comment-export/internal/validation"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// handleSearchResults is how many channel search hits are considered for a handle.
const handleSearchResults = 5

// ChannelResolver maps handles to channel ids and channel ids to upload playlists.
type ChannelResolver struct {
	api    YouTubeAPI
	logger *zap.Logger
}

// NewChannelResolver creates a new channel resolver
func NewChannelResolver(api YouTubeAPI, log *zap.Logger) *ChannelResolver {
	return &ChannelResolver{
		api:    api,
		logger: logger.OrNop(log),
	}
}

// ResolveHandle resolves "@handle", "handle" or a youtube.com/@handle URL to a channel id.
// The handle is searched as given; format checks belong to configuration.
// The first search hit whose custom URL or title contains the handle wins (a custom URL
// ending with the handle is a special case of this); otherwise the top-ranked hit is used.
func (r *ChannelResolver) ResolveHandle(ctx context.Context, input string) (string, error) {
	handle := validation.TrimHandle(input)
	if handle == "" {
		return "", fmt.Errorf("empty channel handle: %w", ErrChannelNotFound)
	}

	matches, err := r.api.SearchChannels(ctx, handle, handleSearchResults)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("handle %q: %w", handle, ErrChannelNotFound)
	}

	chosen := matches[0]
	needle := strings.ToLower(handle)
	for _, m := range matches {
		customURL := strings.ToLower(m.CustomURL)
		title := strings.ToLower(m.Title)
		if strings.Contains(customURL, needle) || strings.Contains(title, needle) {
			chosen = m
			break
		}
	}

	r.logger.Info("channel resolved",
		zap.String("handle", handle),
		zap.String("title", chosen.Title),
		zap.String("channelId", chosen.ChannelID),
	)

	return chosen.ChannelID, nil
}

// UploadsPlaylistID returns the channel's uploads playlist. Ids with the "UC" prefix are
// converted locally ("UC..." -> "UU..."); anything else costs a channels.list call.
func (r *ChannelResolver) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	if playlistID, ok := youtube.UploadsPlaylistFromChannelID(channelID); ok {
		r.logger.Info("uploads playlist derived",
			zap.String("channelId", channelID),
			zap.String("playlistId", playlistID),
		)
		return playlistID, nil
	}

	playlistID, err := r.api.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		return "", err
	}
	if playlistID == "" {
		return "", fmt.Errorf("uploads playlist for %q: %w", channelID, ErrChannelNotFound)
	}

	r.logger.Info("uploads playlist found",
		zap.String("channelId", channelID),
		zap.String("playlistId", playlistID),
	)

	return playlistID, nil
}
