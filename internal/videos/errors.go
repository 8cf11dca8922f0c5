package videos

import "errors"

var (
	// ErrProviderUnavailable indicates the video detail provider is not configured.
	ErrProviderUnavailable = errors.New("video detail provider unavailable")
)
