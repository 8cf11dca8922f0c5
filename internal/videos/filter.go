package videos

import (
	"strconv"
	"strings"
	"time"

	"github.com/vidlens/backend/internal/models"
)

// Duration classes follow the YouTube search convention.
const (
	DurationAny    = "any"
	DurationShort  = "short"  // under 4 minutes
	DurationMedium = "medium" // 4 to 20 minutes
	DurationLong   = "long"   // over 20 minutes
)

// ApplyFilters narrows a result set by the user's advanced filters. The
// input slice is never mutated.
func ApplyFilters(in []models.Video, f models.AdvancedFilters) []models.Video {
	out := make([]models.Video, 0, len(in))
	for _, v := range in {
		if !matches(v, f) {
			continue
		}
		out = append(out, v)
		if f.MaxResults > 0 && len(out) == f.MaxResults {
			break
		}
	}
	return out
}

func matches(v models.Video, f models.AdvancedFilters) bool {
	if v.ViewCount < f.MinViews || v.LikeCount < f.MinLikes || v.CommentCount < f.MinComments {
		return false
	}
	if !f.PublishedAfter.IsZero() && v.PublishedAt.Before(f.PublishedAfter) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
		return false
	}
	if f.Duration != "" && f.Duration != DurationAny {
		if !durationMatches(v.Duration, f.Duration) {
			return false
		}
	}
	return true
}

func durationMatches(iso, class string) bool {
	d, ok := ParseISODuration(iso)
	if !ok {
		// An unparsable length cannot satisfy a length constraint.
		return false
	}
	switch class {
	case DurationShort:
		return d < 4*time.Minute
	case DurationMedium:
		return d >= 4*time.Minute && d <= 20*time.Minute
	case DurationLong:
		return d > 20*time.Minute
	}
	return true
}

// ParseISODuration parses the ISO 8601 durations YouTube reports, for
// example "PT1H2M30S". Date components beyond days are not used by video
// lengths and are not supported.
func ParseISODuration(s string) (time.Duration, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "P") {
		return 0, false
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
		default:
			if num == "" {
				return 0, false
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, false
			}
			num = ""
			switch {
			case r == 'D' && !inTime:
				total += time.Duration(n) * 24 * time.Hour
			case r == 'H' && inTime:
				total += time.Duration(n) * time.Hour
			case r == 'M' && inTime:
				total += time.Duration(n) * time.Minute
			case r == 'S' && inTime:
				total += time.Duration(n) * time.Second
			default:
				return 0, false
			}
		}
	}
	if num != "" {
		return 0, false
	}
	return total, true
}
