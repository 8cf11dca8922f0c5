package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vidlens/backend/internal/analytics"
	"github.com/vidlens/backend/internal/models"
)

// csvHeader is the stable column order consumers of the export rely on.
var csvHeader = []string{
	"videoId", "title", "channel", "views", "likes", "comments",
	"engagementRate", "duration", "publishedAt", "category", "tags",
}

// BuildCSV renders the selected videos as a CSV document, one row per
// video. Tags are joined with a pipe so the cell stays a single field.
func BuildCSV(vids []models.Video) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, v := range vids {
		published := ""
		if !v.PublishedAt.IsZero() {
			published = v.PublishedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			v.VideoID,
			v.Title,
			v.ChannelTitle,
			strconv.FormatInt(v.ViewCount, 10),
			strconv.FormatInt(v.LikeCount, 10),
			strconv.FormatInt(v.CommentCount, 10),
			strconv.FormatFloat(analytics.EngagementRate(v), 'f', 2, 64),
			v.Duration,
			published,
			v.Category,
			strings.Join(v.Tags, "|"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", v.VideoID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the dated download name for an export of the given kind.
func Filename(kind string, now time.Time) string {
	ext := "csv"
	if kind == models.ExportKindPrint {
		ext = "html"
	}
	return fmt.Sprintf("youtube-analytics-%s.%s", now.UTC().Format("2006-01-02"), ext)
}
