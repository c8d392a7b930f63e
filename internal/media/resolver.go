package media

import "github.com/cutreel/api/internal/model"

// Resolver maps a media item to a playable URL. Resolution is synchronous
// and read-only: blob URLs are acquired when the upload is registered, the
// resolver only looks them up.
type Resolver struct {
	cache *ObjectURLCache
}

// NewResolver creates a resolver backed by the given blob-URL cache.
func NewResolver(cache *ObjectURLCache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve returns the playable URL for a media item, or "" when the item
// has nothing playable. The source is checked in order: an explicit URL on
// the item, the blob-URL cache for uploads, then the provider-specific
// output shapes.
func (r *Resolver) Resolve(item *model.MediaItem) string {
	if item == nil {
		return ""
	}

	if item.URL != "" {
		return item.URL
	}

	if item.Kind == model.MediaKindUploaded && item.BlobKey != "" {
		if url := r.cache.URLFor(item.ID); url != "" {
			return url
		}
	}

	// Generated output is only playable once the job completed.
	if item.Status != model.MediaStatusCompleted {
		return ""
	}

	switch {
	case item.Output.URL != "":
		return item.Output.URL
	case item.Output.VideoURL != "":
		return item.Output.VideoURL
	case len(item.Output.ImageURLs) > 0:
		return item.Output.ImageURLs[0]
	}
	return ""
}
