package upstream

import (
	"encoding/json"
)

// Upstream deployments disagree about how deeply results are nested: some
// wrap twice ({data:{data:{results:[...]}}}), some once, some not at all,
// and a few return the bare array. unwrapList peels the payload down to the
// result list by trying the known shapes in order of specificity, returning
// nil when none matches.
func unwrapList(body []byte) (json.RawMessage, int64) {
	type layer struct {
		Data         json.RawMessage `json:"data"`
		Results      json.RawMessage `json:"results"`
		Items        json.RawMessage `json:"items"`
		Videos       json.RawMessage `json:"videos"`
		TotalResults int64           `json:"totalResults"`
		PageInfo     struct {
			TotalResults int64 `json:"totalResults"`
		} `json:"pageInfo"`
	}

	var total int64
	current := json.RawMessage(body)
	for depth := 0; depth < 3; depth++ {
		if isArray(current) {
			return current, total
		}

		var l layer
		if err := json.Unmarshal(current, &l); err != nil {
			return nil, total
		}
		if l.TotalResults > 0 {
			total = l.TotalResults
		}
		if l.PageInfo.TotalResults > 0 {
			total = l.PageInfo.TotalResults
		}

		switch {
		case isArray(l.Results):
			return l.Results, total
		case isArray(l.Items):
			return l.Items, total
		case isArray(l.Videos):
			return l.Videos, total
		case isArray(l.Data):
			return l.Data, total
		case len(l.Data) > 0:
			// Another wrapper layer; descend.
			current = l.Data
		default:
			return nil, total
		}
	}
	return nil, total
}

// unwrapObject peels a single-record payload out of its wrapper layers.
func unwrapObject(body []byte) json.RawMessage {
	type layer struct {
		Data json.RawMessage `json:"data"`
	}

	current := json.RawMessage(body)
	for depth := 0; depth < 3; depth++ {
		var l layer
		if err := json.Unmarshal(current, &l); err != nil {
			return nil
		}
		if len(l.Data) == 0 || isArray(l.Data) {
			return current
		}
		current = l.Data
	}
	return current
}

func isArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
