package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/ad-tracker/youtube-comment-export/internal/service/quota"
	"github.com/ad-tracker/youtube-comment-export/internal/service/youtube/youtubetest"
)

func newTestClient(t *testing.T, srv *youtubetest.Server) *Client {
	t.Helper()

	client, err := NewClient(context.Background(), "test-key", Options{
		Quota:         quota.NewManager(10000, 90, nil),
		ClientOptions: srv.ClientOptions(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", Options{})
	require.Error(t, err)
}

func TestClient_SearchChannels(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Channels = []youtubetest.Channel{
		{ID: "UCaaa", Title: "Some Other Channel", CustomURL: "@other"},
		{ID: "UCbbb", Title: "Nomad Coders", CustomURL: "@nomadcoders"},
	}
	client := newTestClient(t, srv)

	matches, err := client.SearchChannels(context.Background(), "nomadcoders", 5)
	require.NoError(t, err)

	assert.Equal(t, []ChannelMatch{
		{ChannelID: "UCaaa", Title: "Some Other Channel", CustomURL: "@other"},
		{ChannelID: "UCbbb", Title: "Nomad Coders", CustomURL: "@nomadcoders"},
	}, matches)
	assert.Equal(t, 1, srv.Calls("search"))
	assert.Equal(t, 1, srv.Calls("channels"))
	assert.Equal(t, 101, client.Quota().GetQuotaInfo().QuotaUsed)
}

func TestClient_SearchChannels_NoResultsSkipsLookup(t *testing.T) {
	srv := youtubetest.NewServer(t)
	client := newTestClient(t, srv)

	matches, err := client.SearchChannels(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, srv.Calls("channels"))
}

func TestClient_UploadsPlaylistID(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Channels = []youtubetest.Channel{{ID: "HCxyz", Title: "x", UploadsPlaylistID: "UUxyz"}}
	client := newTestClient(t, srv)

	got, err := client.UploadsPlaylistID(context.Background(), "HCxyz")
	require.NoError(t, err)
	assert.Equal(t, "UUxyz", got)

	got, err = client.UploadsPlaylistID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_ListPlaylistPage(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Playlists["UUx"] = []string{"v1", "v2", "v3"}
	client := newTestClient(t, srv)

	page, err := client.ListPlaylistPage(context.Background(), "UUx", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, page.VideoIDs)
	require.NotEmpty(t, page.NextPageToken)

	page, err = client.ListPlaylistPage(context.Background(), "UUx", page.NextPageToken, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"v3"}, page.VideoIDs)
	assert.Empty(t, page.NextPageToken)

	// out-of-range page sizes are clamped to the API maximum
	_, err = client.ListPlaylistPage(context.Background(), "UUx", "", 500)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2, 50}, srv.PageSizes())
}

func TestClient_FetchVideos(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Videos["v1"] = youtubetest.Video{ID: "v1", Title: "First", PublishedAt: "2024-01-01T00:00:00Z", Duration: "PT1M30S", Views: 1000, Likes: 50}
	srv.Videos["v2"] = youtubetest.Video{ID: "v2", Title: "No likes", PublishedAt: "2024-01-02T00:00:00Z", Duration: "PT10M", Views: 7}
	client := newTestClient(t, srv)

	items, err := client.FetchVideos(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)

	assert.Equal(t, []VideoItem{
		{ID: "v1", Title: "First", PublishedAt: "2024-01-01T00:00:00Z", Duration: "PT1M30S", ViewCount: 1000, LikeCount: 50},
		{ID: "v2", Title: "No likes", PublishedAt: "2024-01-02T00:00:00Z", Duration: "PT10M", ViewCount: 7, LikeCount: 0},
	}, items)
}

func TestClient_FetchVideos_BatchLimits(t *testing.T) {
	srv := youtubetest.NewServer(t)
	client := newTestClient(t, srv)

	_, err := client.FetchVideos(context.Background(), nil)
	require.Error(t, err)

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}
	_, err = client.FetchVideos(context.Background(), ids)
	require.Error(t, err)
	assert.Equal(t, 0, srv.Calls("videos"))
}

func TestClient_ListTopComments(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Videos["v1"] = youtubetest.Video{
		ID: "v1",
		Comments: []youtubetest.Comment{
			{Text: "great", Author: "kim", Likes: 12, PublishedAt: "2024-01-03T00:00:00Z"},
			{Text: "thanks", Author: "lee", PublishedAt: "2024-01-04T00:00:00Z"},
			{Text: "third", Author: "park", PublishedAt: "2024-01-05T00:00:00Z"},
		},
	}
	client := newTestClient(t, srv)

	comments, err := client.ListTopComments(context.Background(), "v1", 2)
	require.NoError(t, err)
	assert.Equal(t, []CommentItem{
		{Text: "great", Author: "kim", LikeCount: 12, PublishedAt: "2024-01-03T00:00:00Z"},
		{Text: "thanks", Author: "lee", LikeCount: 0, PublishedAt: "2024-01-04T00:00:00Z"},
	}, comments)
}

func TestClient_ErrorsAreUpstreamErrors(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Videos["v1"] = youtubetest.Video{ID: "v1", CommentsStatus: http.StatusForbidden}
	srv.Fail["videos"] = http.StatusInternalServerError
	client := newTestClient(t, srv)

	_, err := client.ListTopComments(context.Background(), "v1", 10)
	require.Error(t, err)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "commentThreads.list", upstream.Method)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Equal(t, "commentsDisabled", upstream.Reason)
	assert.True(t, IsForbidden(err))

	_, err = client.FetchVideos(context.Background(), []string{"v1"})
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.False(t, IsForbidden(err))

	// failed calls still consume quota
	assert.Equal(t, 2, client.Quota().GetQuotaInfo().OperationsCount)
}

func TestClient_CanceledContext(t *testing.T) {
	srv := youtubetest.NewServer(t)
	client, err := NewClient(context.Background(), "test-key", Options{
		RequestsPerSecond: 0.001,
		ClientOptions:     srv.ClientOptions(),
	})
	require.NoError(t, err)

	// the first call uses the initial burst token
	_, _ = client.UploadsPlaylistID(context.Background(), "UCx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.UploadsPlaylistID(ctx, "UCx")
	require.Error(t, err)
	assert.Equal(t, 1, srv.Calls("channels"))
}

func TestIsForbidden(t *testing.T) {
	assert.True(t, IsForbidden(&googleapi.Error{Code: http.StatusForbidden}))
	assert.True(t, IsForbidden(fmt.Errorf("wrapped: %w", &UpstreamError{StatusCode: http.StatusForbidden})))
	assert.False(t, IsForbidden(&UpstreamError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsForbidden(errors.New("boom")))
	assert.False(t, IsForbidden(nil))
}

func TestClient_SearchChannels_QuotaThreshold(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Channels = []youtubetest.Channel{{ID: "UCbbb", Title: "Nomad Coders"}}
	client, err := NewClient(context.Background(), "test-key", Options{
		Quota:         quota.NewManager(150, 90, nil),
		ClientOptions: srv.ClientOptions(),
	})
	require.NoError(t, err)

	// threshold is 135 units: one search fits, a second does not
	_, err = client.SearchChannels(context.Background(), "nomad", 5)
	require.NoError(t, err)

	_, err = client.SearchChannels(context.Background(), "nomad", 5)
	require.ErrorIs(t, err, ErrQuotaThreshold)
	assert.Equal(t, 1, srv.Calls("search"))
	assert.Equal(t, 101, client.Quota().GetQuotaInfo().QuotaUsed)
}

func TestIsQuotaExceeded(t *testing.T) {
	assert.True(t, IsQuotaExceeded(&UpstreamError{StatusCode: http.StatusForbidden, Reason: "quotaExceeded"}))
	assert.True(t, IsQuotaExceeded(fmt.Errorf("wrapped: %w", &UpstreamError{StatusCode: http.StatusForbidden, Reason: "dailyLimitExceeded"})))
	assert.True(t, IsQuotaExceeded(&googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}}))
	assert.False(t, IsQuotaExceeded(&UpstreamError{StatusCode: http.StatusForbidden, Reason: "commentsDisabled"}))
	assert.False(t, IsQuotaExceeded(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, IsQuotaExceeded(errors.New("boom")))
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{Method: "videos.list", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "youtube videos.list failed: dial tcp: refused", err.Error())

	err = &UpstreamError{Method: "videos.list", StatusCode: 500, Err: errors.New("backend")}
	assert.Equal(t, "youtube videos.list failed (status 500): backend", err.Error())
}

func TestBatchVideoIDs(t *testing.T) {
	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}

	batches := BatchVideoIDs(ids, 50)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 50)
	assert.Len(t, batches[2], 20)
	assert.Equal(t, "v119", batches[2][19])

	assert.Len(t, BatchVideoIDs(ids, 0), 3)
	assert.Len(t, BatchVideoIDs(ids, 100), 3)
	assert.Len(t, BatchVideoIDs(ids, 40), 3)
	assert.Empty(t, BatchVideoIDs(nil, 50))
}

func TestUploadsPlaylistFromChannelID(t *testing.T) {
	got, ok := UploadsPlaylistFromChannelID("UCUpJs89fSBXNolQGOYKn0YQ")
	assert.True(t, ok)
	assert.Equal(t, "UUUpJs89fSBXNolQGOYKn0YQ", got)

	_, ok = UploadsPlaylistFromChannelID("HCabc")
	assert.False(t, ok)
	_, ok = UploadsPlaylistFromChannelID("UC")
	assert.False(t, ok)
}
