// Package report writes collected comment rows as a spreadsheet-friendly CSV file.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ad-tracker/youtube-comment-export/internal/model"
)

// BOM is written first so spreadsheet tools detect UTF-8 regardless of system locale.
const BOM = "\ufeff"

// Header locales.
const (
	LocaleEnglish = "en"
	LocaleKorean  = "ko"
)

var headers = map[string][]string{
	LocaleEnglish: {
		"title", "view count", "like count", "publish date",
		"comment text", "comment author", "comment like count", "comment publish date",
	},
	LocaleKorean: {
		"동영상제목", "조회수", "좋아요수", "게시일",
		"댓글내용", "댓글작성자", "댓글좋아요수", "댓글작성일",
	},
}

// Options controls report formatting.
type Options struct {
	HeaderLocale string // LocaleEnglish (default) or LocaleKorean
}

// Header returns the column names for a locale, falling back to English.
func Header(locale string) []string {
	if h, ok := headers[locale]; ok {
		return append([]string(nil), h...)
	}
	return append([]string(nil), headers[LocaleEnglish]...)
}

// Rows flattens records into CSV rows. Within a run of consecutive records for the same
// video, the four video columns are left empty on every row after the first.
func Rows(records []model.CommentRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		row := []string{
			r.VideoTitle,
			strconv.FormatUint(r.ViewCount, 10),
			strconv.FormatUint(r.LikeCount, 10),
			r.PublishedAt,
			r.Text,
			r.Author,
			strconv.FormatUint(r.CommentLikeCount, 10),
			r.CommentPublished,
		}
		if i > 0 && r.SameVideo(records[i-1]) {
			for col := 0; col < 4; col++ {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Write encodes records as CSV (BOM, header row, no index column) to w.
func Write(w io.Writer, records []model.CommentRecord, opts Options) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(Header(opts.HeaderLocale)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(Rows(records)); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return bw.Flush()
}

// WriteFile writes the report to path. The file is written next to its destination and
// renamed into place, so a failed write leaves any previous report untouched.
func WriteFile(path string, records []model.CommentRecord, opts Options) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, records, opts); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}

	return nil
}
