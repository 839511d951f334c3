// Package service implements the collection pipeline: channel resolution, playlist
// enumeration, video detail lookup, comment collection and the run that ties them together.
package service

import (
	"context"

	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube"
)

// YouTubeAPI is the subset of the Data API the pipeline calls. *youtube.Client implements it.
type YouTubeAPI interface {
	SearchChannels(ctx context.Context, query string, maxResults int64) ([]youtube.ChannelMatch, error)
	UploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	ListPlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) (*youtube.PlaylistPage, error)
	FetchVideos(ctx context.Context, videoIDs []string) ([]youtube.VideoItem, error)
	ListTopComments(ctx context.Context, videoID string, maxResults int64) ([]youtube.CommentItem, error)
}

var _ YouTubeAPI = (*youtube.Client)(nil)
