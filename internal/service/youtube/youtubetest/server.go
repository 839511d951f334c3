// Package youtubetest serves a small in-memory imitation of the YouTube Data API v3 for tests.
package youtubetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

// Channel is a channel known to the fake API.
type Channel struct {
	ID                string
	Title             string
	CustomURL         string
	UploadsPlaylistID string
}

// Comment is a top-level comment.
type Comment struct {
	Text        string
	Author      string
	Likes       int64
	PublishedAt string
}

// Video is a video known to the fake API.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID          string
	Title       string
	PublishedAt string
	Duration    string
	Views       uint64
	Likes       uint64 // zero omits likeCount from the response
	Comments    []Comment
	// CommentsStatus, when non-zero, makes commentThreads.list fail with this HTTP status.
	CommentsStatus int
}

// Server is an httptest server speaking the subset of the Data API the collector uses.
// Populate the exported maps before issuing requests.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Server struct {
	*httptest.Server

	Channels  []Channel
	Playlists map[string][]string // playlist id -> ordered video ids
	Videos    map[string]Video
	// Fail maps a resource ("search", "channels", "playlistItems", "videos",
	// "commentThreads") to an HTTP status every call to it fails with.
	Fail map[string]int

	mu    sync.Mutex
	calls map[string]int
	pages []int64 // maxResults of every playlistItems call
}

// NewServer starts a fake API server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Playlists: make(map[string][]string),
		Videos:    make(map[string]Video),
		Fail:      make(map[string]int),
		calls:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// ClientOptions points a generated youtube.Service at this server.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.URL + "/"),
		option.WithHTTPClient(s.Client()),
	}
}

// Calls returns how many requests hit the given resource.
func (s *Server) Calls(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[resource]
}

// PageSizes returns the maxResults sent with each playlistItems call.
func (s *Server) PageSizes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.pages...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	s.mu.Lock()
	s.calls[resource]++
	failStatus := s.Fail[resource]
	s.mu.Unlock()

	if failStatus != 0 {
		writeError(w, failStatus, "backendError")
		return
	}

	q := r.URL.Query()
	switch resource {
	case "search":
		s.search(w, q)
	case "channels":
		s.channels(w, q)
	case "playlistItems":
		s.playlistItems(w, q)
	case "videos":
		s.videos(w, q)
	case "commentThreads":
		s.commentThreads(w, q)
	default:
		writeError(w, http.StatusNotFound, "notFound")
	}
}

func (s *Server) search(w http.ResponseWriter, q map[string][]string) {
	limit := intParam(q, "maxResults", 5)
	items := []map[string]any{}
	for _, ch := range s.Channels {
		if len(items) >= limit {
			break
		}
		items = append(items, map[string]any{
			"id":      map[string]any{"kind": "youtube#channel", "channelId": ch.ID},
			"snippet": map[string]any{"channelId": ch.ID, "title": ch.Title},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) channels(w http.ResponseWriter, q map[string][]string) {
	items := []map[string]any{}
	for _, id := range multiParam(q, "id") {
		for _, ch := range s.Channels {
			if ch.ID != id {
				continue
			}
			items = append(items, map[string]any{
				"id":      ch.ID,
				"snippet": map[string]any{"title": ch.Title, "customUrl": ch.CustomURL},
				"contentDetails": map[string]any{
					"relatedPlaylists": map[string]any{"uploads": ch.UploadsPlaylistID},
				},
			})
		}
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) playlistItems(w http.ResponseWriter, q map[string][]string) {
	ids, ok := s.Playlists[first(q, "playlistId")]
	if !ok {
		writeError(w, http.StatusNotFound, "playlistNotFound")
		return
	}

	size := intParam(q, "maxResults", 5)
	s.mu.Lock()
	s.pages = append(s.pages, int64(size))
	s.mu.Unlock()

	offset := intParam(q, "pageToken", 0)
	end := offset + size
	if end > len(ids) {
		end = len(ids)
	}

	items := []map[string]any{}
	for _, id := range ids[offset:end] {
		items = append(items, map[string]any{"contentDetails": map[string]any{"videoId": id}})
	}

	resp := map[string]any{"items": items}
	if end < len(ids) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

func (s *Server) videos(w http.ResponseWriter, q map[string][]string) {
	items := []map[string]any{}
	for _, id := range multiParam(q, "id") {
		v, ok := s.Videos[id]
		if !ok {
			continue
		}
		stats := map[string]any{"viewCount": strconv.FormatUint(v.Views, 10)}
		if v.Likes > 0 {
			stats["likeCount"] = strconv.FormatUint(v.Likes, 10)
		}
		items = append(items, map[string]any{
			"id":             v.ID,
			"snippet":        map[string]any{"title": v.Title, "publishedAt": v.PublishedAt},
			"contentDetails": map[string]any{"duration": v.Duration},
			"statistics":     stats,
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func (s *Server) commentThreads(w http.ResponseWriter, q map[string][]string) {
	v, ok := s.Videos[first(q, "videoId")]
	if !ok {
		writeError(w, http.StatusNotFound, "videoNotFound")
		return
	}
	if v.CommentsStatus != 0 {
		reason := "backendError"
		if v.CommentsStatus == http.StatusForbidden {
			reason = "commentsDisabled"
		}
		writeError(w, v.CommentsStatus, reason)
		return
	}

	limit := intParam(q, "maxResults", 20)
	items := []map[string]any{}
	for i, c := range v.Comments {
		if i >= limit {
			break
		}
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"videoId": v.ID,
				"topLevelComment": map[string]any{
					"snippet": map[string]any{
						"textDisplay":       c.Text,
						"authorDisplayName": c.Author,
						"likeCount":         c.Likes,
						"publishedAt":       c.PublishedAt,
					},
				},
			},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": reason,
			"errors":  []map[string]any{{"reason": reason, "message": reason}},
		},
	})
}

func first(q map[string][]string, key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// multiParam accepts both repeated parameters and comma-joined values.
func multiParam(q map[string][]string, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(q map[string][]string, key string, def int) int {
	n, err := strconv.Atoi(first(q, key))
	if err != nil {
		return def
	}
	return n
}
