package model

// VideoRecord is a long-form video kept for comment collection.
type VideoRecord struct {
	Title       string `json:"title"`
	ViewCount   uint64 `json:"view_count"`
	LikeCount   uint64 `json:"like_count"`
	PublishedAt string `json:"published_at"` // RFC 3339, as returned by the API

	// VideoID is used to fetch comments and never written to the report.
	VideoID string `json:"-"`
}

// CommentRecord is one report row: a top-level comment joined with its video's display fields.
type CommentRecord struct {
	VideoTitle       string `json:"video_title"`
	ViewCount        uint64 `json:"view_count"`
	LikeCount        uint64 `json:"like_count"`
	PublishedAt      string `json:"published_at"`
	Text             string `json:"comment_text"`
	Author           string `json:"comment_author"`
	CommentLikeCount uint64 `json:"comment_like_count"`
	CommentPublished string `json:"comment_published_at"`
}

// NewCommentRecord copies the parent video's display fields into a row for one comment.
func NewCommentRecord(video VideoRecord, text, author string, likes uint64, publishedAt string) CommentRecord {
	return CommentRecord{
		VideoTitle:       video.Title,
		ViewCount:        video.ViewCount,
		LikeCount:        video.LikeCount,
		PublishedAt:      video.PublishedAt,
		Text:             text,
		Author:           author,
		CommentLikeCount: likes,
		CommentPublished: publishedAt,
	}
}

// SameVideo reports whether two rows carry identical video display fields.
func (c CommentRecord) SameVideo(other CommentRecord) bool {
	return c.VideoTitle == other.VideoTitle &&
		c.ViewCount == other.ViewCount &&
		c.LikeCount == other.LikeCount &&
		c.PublishedAt == other.PublishedAt
}

// QuotaInfo is a snapshot of the estimated Data API quota for the current run.
type QuotaInfo struct {
	DailyLimit      int
	QuotaUsed       int
	QuotaRemaining  int
	OperationsCount int
	ByOperation     map[string]int
}
