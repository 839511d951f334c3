package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
)

type mockYouTubeAPI struct {
	mock.Mock
}

func (m *mockYouTubeAPI) SearchChannels(ctx context.Context, query string, maxResults int64) ([]youtube.ChannelMatch, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.ChannelMatch), args.Error(1)
}

func (m *mockYouTubeAPI) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *mockYouTubeAPI) ListPlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) (*youtube.PlaylistPage, error) {
	args := m.Called(ctx, playlistID, pageToken, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youtube.PlaylistPage), args.Error(1)
}

func (m *mockYouTubeAPI) FetchVideos(ctx context.Context, videoIDs []string) ([]youtube.VideoItem, error) {
	args := m.Called(ctx, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.VideoItem), args.Error(1)
}

func (m *mockYouTubeAPI) ListTopComments(ctx context.Context, videoID string, maxResults int64) ([]youtube.CommentItem, error) {
	args := m.Called(ctx, videoID, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.CommentItem), args.Error(1)
}
