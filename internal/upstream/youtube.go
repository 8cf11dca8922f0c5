package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vidlens/backend/internal/apiclient"
	"github.com/vidlens/backend/internal/models"
	"github.com/vidlens/backend/internal/videos"
)

// ErrEmptyResult indicates the upstream payload contained no usable records.
var ErrEmptyResult = errors.New("upstream returned no results")

// Catalog is the YouTube-facing read side of the upstream API: search,
// per-record lookups and the trending feed, all normalized into the flat
// dashboard model regardless of which payload shape the deployment speaks.
type Catalog struct {
	client *apiclient.Client
}

// NewCatalog wires the catalog to the shared request pipeline.
func NewCatalog(client *apiclient.Client) *Catalog {
	return &Catalog{client: client}
}

// Search runs a video or channel search. searchType is "video" or
// "channel"; maxResults caps the page size when positive.
func (c *Catalog) Search(ctx context.Context, query, searchType string, maxResults int) ([]models.Video, models.SearchMetadata, error) {
	params := url.Values{"q": {query}}
	if searchType != "" {
		params.Set("type", searchType)
	}
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}

	body, err := c.client.Do(ctx, "GET", "/youtube/search", params, nil)
	if err != nil {
		return nil, models.SearchMetadata{}, err
	}

	vids, total, err := decodeVideoList(body)
	if err != nil {
		return nil, models.SearchMetadata{}, fmt.Errorf("search %q: %w", query, err)
	}
	if total == 0 {
		total = int64(len(vids))
	}

	meta := models.SearchMetadata{Query: query, Type: searchType, TotalResults: total}
	return vids, meta, nil
}

// Video fetches one video's full record. It satisfies the detail-cache
// provider contract.
func (c *Catalog) Video(ctx context.Context, id string) (models.Video, error) {
	body, err := c.client.Do(ctx, "GET", "/youtube/videos/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return models.Video{}, err
	}

	payload := unwrapObject(body)
	if payload == nil {
		return models.Video{}, ErrEmptyResult
	}

	var raw videos.RawVideo
	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.Video{}, fmt.Errorf("decode video %s: %w", id, err)
	}
	v, ok := raw.Normalize()
	if !ok {
		return models.Video{}, ErrEmptyResult
	}
	return v, nil
}

// Channel fetches one channel's summary record.
func (c *Catalog) Channel(ctx context.Context, id string) (models.Channel, error) {
	body, err := c.client.Do(ctx, "GET", "/youtube/channels/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return models.Channel{}, err
	}

	payload := unwrapObject(body)
	if payload == nil {
		return models.Channel{}, ErrEmptyResult
	}

	var raw rawChannel
	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.Channel{}, fmt.Errorf("decode channel %s: %w", id, err)
	}
	ch, ok := raw.normalize()
	if !ok {
		return models.Channel{}, ErrEmptyResult
	}
	return ch, nil
}

// Trending fetches the trending feed, optionally narrowed by region and
// category.
func (c *Catalog) Trending(ctx context.Context, region, category string) ([]models.Video, error) {
	params := url.Values{}
	if region != "" {
		params.Set("regionCode", region)
	}
	if category != "" {
		params.Set("category", category)
	}

	body, err := c.client.Do(ctx, "GET", "/youtube/trending", params, nil)
	if err != nil {
		return nil, err
	}

	vids, _, err := decodeVideoList(body)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return vids, nil
}

// decodeVideoList extracts and normalizes a video list. A payload no
// extraction strategy recognizes yields an empty set, not an error; only
// array contents that fail to decode are reported.
func decodeVideoList(body []byte) ([]models.Video, int64, error) {
	list, total := unwrapList(body)
	if list == nil {
		return []models.Video{}, total, nil
	}

	var raws []videos.RawVideo
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, total, fmt.Errorf("decode result list: %w", err)
	}
	return videos.NormalizeAll(raws), total, nil
}

// rawChannel tolerates both the flat channel shape and the nested
// snippet/statistics shape, with string or numeric counts.
type rawChannel struct {
	ChannelID   string `json:"channelId"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subscribers flexCount
	ViewCount   flexCount `json:"viewCount"`
	VideoCount  flexCount `json:"videoCount"`
	Thumbnail   string    `json:"thumbnail"`

	Snippet *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnails  struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics *struct {
		SubscriberCount flexCount `json:"subscriberCount"`
		ViewCount       flexCount `json:"viewCount"`
		VideoCount      flexCount `json:"videoCount"`
	} `json:"statistics"`
}

func (raw *rawChannel) UnmarshalJSON(data []byte) error {
	type alias rawChannel
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	// subscriberCount arrives under two different key spellings.
	var subs struct {
		SubscriberCount flexCount `json:"subscriberCount"`
		Subscribers     flexCount `json:"subscribers"`
	}
	if err := json.Unmarshal(data, &subs); err == nil {
		if subs.SubscriberCount > 0 {
			a.Subscribers = subs.SubscriberCount
		} else {
			a.Subscribers = subs.Subscribers
		}
	}

	*raw = rawChannel(a)
	return nil
}

func (raw rawChannel) normalize() (models.Channel, bool) {
	id := raw.ChannelID
	if id == "" {
		id = raw.ID
	}
	if id == "" {
		return models.Channel{}, false
	}

	ch := models.Channel{
		ChannelID:   id,
		Title:       raw.Title,
		Description: raw.Description,
		Subscribers: int64(raw.Subscribers),
		ViewCount:   int64(raw.ViewCount),
		VideoCount:  int64(raw.VideoCount),
		Thumbnail:   raw.Thumbnail,
	}

	if s := raw.Snippet; s != nil {
		if ch.Title == "" {
			ch.Title = s.Title
		}
		if ch.Description == "" {
			ch.Description = s.Description
		}
		if ch.Thumbnail == "" {
			if s.Thumbnails.High.URL != "" {
				ch.Thumbnail = s.Thumbnails.High.URL
			} else {
				ch.Thumbnail = s.Thumbnails.Default.URL
			}
		}
	}
	if st := raw.Statistics; st != nil {
		if ch.Subscribers == 0 {
			ch.Subscribers = int64(st.SubscriberCount)
		}
		if ch.ViewCount == 0 {
			ch.ViewCount = int64(st.ViewCount)
		}
		if ch.VideoCount == 0 {
			ch.VideoCount = int64(st.VideoCount)
		}
	}

	return ch, true
}

// flexCount decodes a count that may arrive as a JSON number or a string.
type flexCount int64

func (f *flexCount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexCount(n)
	return nil
}
