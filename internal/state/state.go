package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys mirror the storage keys of the original dashboard so a reader of the
// state file can map entries back to the features that own them.
const (
	KeyAuthToken   = "auth_token"
	KeyTokenExpiry = "token_expiry"
	KeySelection   = "youtube_selected_videos"
	KeyHistory     = "searchHistory"
	KeyQuota       = "quotaUsed"
	KeyFilters     = "advancedFilters"
)

const formatVersion = 1

// ErrStoreUnavailable indicates the state file could not be written even
// after clearing it.
var ErrStoreUnavailable = errors.New("state store unavailable")

// document is the persisted envelope. Unknown keys survive round-trips so
// independent features never clobber each other's entries.
type document struct {
	Version int                        `json:"version"`
	Entries map[string]json.RawMessage `json:"entries"`
}

// File is a JSON state file holding the service's persisted client state:
// token material, selection snapshot, search history, filters and the quota
// counter. All access is serialized through a single mutex; the file is
// rewritten atomically on every change.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by the JSON document at path. The file and
// its parent directory are created lazily on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get unmarshals the entry for key into v. It returns false when the key is
// absent or when the stored document or entry cannot be decoded; malformed
// state is treated as missing, never surfaced as an error to callers.
func (f *File) Get(key string, v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	raw, ok := doc.Entries[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}

// Set marshals v and persists it under key. When the write fails (for
// example because the volume is full) the store is cleared and the write is
// retried once before giving up.
func (f *File) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state entry %s: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	doc.Entries[key] = raw

	if err := f.write(doc); err == nil {
		return nil
	}

	// One retry against a fresh file before reporting the store down.
	_ = os.Remove(f.path)
	doc = document{Version: formatVersion, Entries: map[string]json.RawMessage{key: raw}}
	if err := f.write(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	if _, ok := doc.Entries[key]; !ok {
		return nil
	}
	delete(doc.Entries, key)
	return f.write(doc)
}

// Clear removes the backing file entirely.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear state file: %w", err)
	}
	return nil
}

// load reads the current document, degrading to an empty one when the file
// is absent or malformed.
func (f *File) load() document {
	empty := document{Version: formatVersion, Entries: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return empty
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || doc.Entries == nil {
		return empty
	}
	doc.Version = formatVersion
	return doc
}

// write persists the document with a temp-file rename so readers never see a
// partially written file.
func (f *File) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
