package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ad-tracker/youtube-comment-export/internal/service/quota"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// MaxBatchSize is the largest page or id batch the Data API accepts.
const MaxBatchSize = 50

// ChannelMatch is one channel search hit.
type ChannelMatch struct {
	ChannelID string
	Title     string
	CustomURL string // e.g. "@nomadcoders"; empty when the channel has none
}

// PlaylistPage is one page of a playlist membership listing.
type PlaylistPage struct {
	VideoIDs      []string
	NextPageToken string
}

// VideoItem carries the fields the collector reads from videos.list.
type VideoItem struct {
	ID          string
	Title       string
	PublishedAt string
	Duration    string // ISO 8601, e.g. "PT4M13S"
	ViewCount   uint64
	LikeCount   uint64
}

// CommentItem is a top-level comment from commentThreads.list.
type CommentItem struct {
	Text        string
	Author      string
	LikeCount   uint64
	PublishedAt string
}

// Options tunes a Client. The zero value is usable.
type Options struct {
	// RequestsPerSecond paces API calls; zero or less disables pacing.
	RequestsPerSecond float64
	Quota             *quota.Manager
	Logger            *zap.Logger
	// ClientOptions are appended after the API key, e.g. a test endpoint.
	ClientOptions []option.ClientOption
}

// Client wraps the YouTube Data API v3 client
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
	quota   *quota.Manager
	logger  *zap.Logger
}

// NewClient creates a new YouTube API client
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts.ClientOptions...)
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	quotaManager := opts.Quota
	if quotaManager == nil {
		quotaManager = quota.NewManager(0, 0, opts.Logger)
	}

	return &Client{
		service: service,
		limiter: rate.NewLimiter(limit, 1),
		quota:   quotaManager,
		logger:  logger.OrNop(opts.Logger),
	}, nil
}

// Quota returns the manager tracking this client's usage.
func (c *Client) Quota() *quota.Manager {
	return c.quota
}

// SearchChannels runs a channel search and returns up to maxResults matches in ranking order.
// Search results carry no custom URL, so the matched ids are looked up with channels.list.
// A search that would cross the quota threshold fails with ErrQuotaThreshold before any call.
func (c *Client) SearchChannels(ctx context.Context, query string, maxResults int64) ([]ChannelMatch, error) {
	if ok, info := c.quota.CheckQuotaAvailable(quota.CostSearch); !ok {
		return nil, fmt.Errorf("search.list needs %d units, %d of %d used: %w",
			quota.CostSearch, info.QuotaUsed, info.DailyLimit, ErrQuotaThreshold)
	}
	if err := c.before(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	c.quota.RecordQuotaUsage(quota.CostSearch, "search.list")
	if err != nil {
		return nil, wrapAPIError("search.list", err)
	}

	matches := make([]ChannelMatch, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		id := item.Snippet.ChannelId
		if id == "" && item.Id != nil {
			id = item.Id.ChannelId
		}
		if id == "" {
			continue
		}
		matches = append(matches, ChannelMatch{ChannelID: id, Title: item.Snippet.Title})
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return matches, nil
	}

	customURLs, err := c.channelCustomURLs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].CustomURL = customURLs[matches[i].ChannelID]
	}

	c.logger.Debug("channel search",
		zap.String("query", query),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

func (c *Client) channelCustomURLs(ctx context.Context, ids []string) (map[string]string, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Channels.List([]string{"snippet"}).
		Id(ids...).
		Context(ctx).
		Do()
	c.quota.RecordQuotaUsage(quota.CostChannels, "channels.list")
	if err != nil {
		return nil, wrapAPIError("channels.list", err)
	}

	out := make(map[string]string, len(resp.Items))
	for _, ch := range resp.Items {
		if ch.Snippet != nil {
			out[ch.Id] = ch.Snippet.CustomUrl
		}
	}
	return out, nil
}

// UploadsPlaylistID looks up a channel's uploads playlist. It returns "" when the channel
// does not exist or exposes no uploads playlist.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	if err := c.before(ctx); err != nil {
		return "", err
	}

	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	c.quota.RecordQuotaUsage(quota.CostChannels, "channels.list")
	if err != nil {
		return "", wrapAPIError("channels.list", err)
	}

	if len(resp.Items) == 0 {
		return "", nil
	}
	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil {
		return "", nil
	}
	return details.RelatedPlaylists.Uploads, nil
}

// ListPlaylistPage fetches one page of playlist members.
func (c *Client) ListPlaylistPage(ctx context.Context, playlistID, pageToken string, pageSize int64) (*PlaylistPage, error) {
	if pageSize <= 0 || pageSize > MaxBatchSize {
		pageSize = MaxBatchSize
	}
	if err := c.before(ctx); err != nil {
		return nil, err
	}

	call := c.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	c.quota.RecordQuotaUsage(quota.CostPlaylistItems, "playlistItems.list")
	if err != nil {
		return nil, wrapAPIError("playlistItems.list", err)
	}

	page := &PlaylistPage{
		VideoIDs:      make([]string, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		page.VideoIDs = append(page.VideoIDs, item.ContentDetails.VideoId)
	}

	return page, nil
}

// FetchVideos retrieves snippet, statistics and content details for up to 50 videos in a
// single batch. Items come back in the order the API returns them.
func (c *Client) FetchVideos(ctx context.Context, videoIDs []string) ([]VideoItem, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("no video IDs provided")
	}
	if len(videoIDs) > MaxBatchSize {
		return nil, fmt.Errorf("too many video IDs (max %d, got %d)", MaxBatchSize, len(videoIDs))
	}
	if err := c.before(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoIDs...).
		Context(ctx).
		Do()
	c.quota.RecordQuotaUsage(quota.CostVideos, "videos.list")
	if err != nil {
		return nil, wrapAPIError("videos.list", err)
	}

	items := make([]VideoItem, 0, len(resp.Items))
	for _, video := range resp.Items {
		items = append(items, mapVideo(video))
	}

	c.logger.Debug("fetched video batch",
		zap.Int("requested", len(videoIDs)),
		zap.Int("returned", len(items)),
	)

	return items, nil
}

// mapVideo converts a YouTube API video to a VideoItem; missing parts leave zero values.
func mapVideo(video *youtube.Video) VideoItem {
	item := VideoItem{ID: video.Id}

	if video.Snippet != nil {
		item.Title = video.Snippet.Title
		item.PublishedAt = video.Snippet.PublishedAt
	}
	if video.ContentDetails != nil {
		item.Duration = video.ContentDetails.Duration
	}
	if video.Statistics != nil {
		item.ViewCount = video.Statistics.ViewCount
		item.LikeCount = video.Statistics.LikeCount
	}

	return item
}

// ListTopComments returns up to maxResults top-level comments in relevance order, as plain text.
func (c *Client) ListTopComments(ctx context.Context, videoID string, maxResults int64) ([]CommentItem, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxResults).
		Order("relevance").
		TextFormat("plainText").
		Context(ctx).
		Do()
	c.quota.RecordQuotaUsage(quota.CostCommentThreads, "commentThreads.list")
	if err != nil {
		return nil, wrapAPIError("commentThreads.list", err)
	}

	comments := make([]CommentItem, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		s := thread.Snippet.TopLevelComment.Snippet
		comment := CommentItem{
			Text:        s.TextDisplay,
			Author:      s.AuthorDisplayName,
			PublishedAt: s.PublishedAt,
		}
		if s.LikeCount > 0 {
			comment.LikeCount = uint64(s.LikeCount)
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// before waits for the rate limiter.
func (c *Client) before(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// BatchVideoIDs splits a large list of video IDs into batches of at most batchSize (<= 50).
func BatchVideoIDs(videoIDs []string, batchSize int) [][]string {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	var batches [][]string
	for i := 0; i < len(videoIDs); i += batchSize {
		end := i + batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batches = append(batches, videoIDs[i:end])
	}

	return batches
}

// UploadsPlaylistFromChannelID derives the uploads playlist id ("UU...") from a channel id
// ("UC..."). ok is false when the id does not have the UC prefix.
func UploadsPlaylistFromChannelID(channelID string) (playlistID string, ok bool) {
	if !strings.HasPrefix(channelID, "UC") || len(channelID) <= 2 {
		return "", false
	}
	return "UU" + channelID[2:], true
}
