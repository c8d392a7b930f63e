// Package media resolves media items to playable URLs and owns the blob-URL
// cache for locally uploaded assets.
package media

import "sync"

// ObjectURLCache hands out at most one live URL per media id for uploaded
// blobs. Whoever creates a media object acquires its URL; deletion releases
// it. This replaces the ambient global map the concern started life as —
// the cache is constructed once and passed to its consumers.
type ObjectURLCache struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	urls  map[string]string
}

// BlobURLPrefix is the path prefix of every cache-issued URL.
const BlobURLPrefix = "/media/blob/"

// BlobID extracts the media id from a cache-issued URL, "" for any other
// URL shape.
func BlobID(url string) string {
	if len(url) > len(BlobURLPrefix) && url[:len(BlobURLPrefix)] == BlobURLPrefix {
		return url[len(BlobURLPrefix):]
	}
	return ""
}

// NewObjectURLCache creates an empty cache.
func NewObjectURLCache() *ObjectURLCache {
	return &ObjectURLCache{
		blobs: make(map[string][]byte),
		urls:  make(map[string]string),
	}
}

// Acquire registers blob bytes for a media id and returns its URL. A second
// acquire for the same id returns the existing URL without replacing the
// blob, preserving the at-most-one-live-URL guarantee.
func (c *ObjectURLCache) Acquire(mediaID string, blob []byte) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if url, ok := c.urls[mediaID]; ok {
		return url
	}
	url := BlobURLPrefix + mediaID
	c.blobs[mediaID] = blob
	c.urls[mediaID] = url
	return url
}

// URLFor returns the live URL for a media id, or "" when none is held.
func (c *ObjectURLCache) URLFor(mediaID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.urls[mediaID]
}

// Blob returns the cached bytes for a media id.
func (c *ObjectURLCache) Blob(mediaID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	blob, ok := c.blobs[mediaID]
	return blob, ok
}

// Release drops the blob and its URL. Safe to call for ids that were never
// acquired.
func (c *ObjectURLCache) Release(mediaID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.blobs, mediaID)
	delete(c.urls, mediaID)
}

// Len reports how many live URLs the cache holds.
func (c *ObjectURLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.urls)
}
