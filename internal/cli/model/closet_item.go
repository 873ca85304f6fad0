package model

// ClosetItem is one piece of clothing owned by a user.
type ClosetItem struct {
	ID             int64
	Owner          string
	Name           string
	Category       string
	ImageURI       string // local path or remote URL of the photo
	Color          string
	Season         string
	Style          string
	Scene          string
	IsFavorite     bool
	RemoteID       int64  // id assigned by the backend, 0 until synced
	RemoteImageURL string // public URL returned by the backend
	RemoteTagsJSON string // raw tag result returned by the backend
	CreatedAt      int64  // unix ms
}

// Synced reports whether the backend has acknowledged the item.
func (c ClosetItem) Synced() bool {
	return c.RemoteID != 0 || c.RemoteTagsJSON != ""
}
