package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/vidlens/backend/internal/analytics"
	"github.com/vidlens/backend/internal/models"
)

// printTemplate is a self-contained document that opens the browser print
// dialog as soon as it loads.
var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>YouTube Analytics Report</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 6px 8px; font-size: 0.85rem; text-align: left; }
th { background: #f4f4f4; }
.summary { margin-top: 1rem; font-size: 0.9rem; }
@media print { body { margin: 0.5rem; } }
</style>
</head>
<body onload="window.print()">
<h1>YouTube Analytics Report</h1>
<p>Generated {{.GeneratedAt}} &middot; {{.Summary.Count}} videos</p>
<div class="summary">
Total views: {{.Summary.TotalViews}} &middot;
Total likes: {{.Summary.TotalLikes}} &middot;
Total comments: {{.Summary.TotalComments}} &middot;
Average engagement: {{printf "%.2f" .Summary.AverageEngagement}}%
</div>
<table>
<thead>
<tr><th>Title</th><th>Channel</th><th>Views</th><th>Likes</th><th>Comments</th><th>Engagement</th><th>Published</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr><td>{{.Title}}</td><td>{{.Channel}}</td><td>{{.Views}}</td><td>{{.Likes}}</td><td>{{.Comments}}</td><td>{{.Engagement}}</td><td>{{.Published}}</td></tr>
{{end}}
</tbody>
</table>
</body>
</html>
`))

type printRow struct {
	Title      string
	Channel    string
	Views      int64
	Likes      int64
	Comments   int64
	Engagement string
	Published  string
}

// BuildPrintable renders the selected videos as a printable HTML report
// with an aggregate summary line. All video-supplied text is escaped by the
// template engine.
func BuildPrintable(vids []models.Video, now time.Time) ([]byte, error) {
	rows := make([]printRow, len(vids))
	for i, v := range vids {
		published := ""
		if !v.PublishedAt.IsZero() {
			published = v.PublishedAt.UTC().Format("2006-01-02")
		}
		rows[i] = printRow{
			Title:      v.Title,
			Channel:    v.ChannelTitle,
			Views:      v.ViewCount,
			Likes:      v.LikeCount,
			Comments:   v.CommentCount,
			Engagement: fmt.Sprintf("%.2f%%", analytics.EngagementRate(v)),
			Published:  published,
		}
	}

	data := struct {
		GeneratedAt string
		Summary     analytics.Summary
		Rows        []printRow
	}{
		GeneratedAt: now.UTC().Format("2006-01-02 15:04 UTC"),
		Summary:     analytics.Summarize(vids),
		Rows:        rows,
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render printable report: %w", err)
	}
	return buf.Bytes(), nil
}
