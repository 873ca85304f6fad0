package repo

import (
	"context"

	"DressCode/internal/cli/model"
)

// ClosetRemotePatch carries what the backend returned for a synced closet item.
// Empty tag fields leave the stored value untouched.
type ClosetRemotePatch struct {
	RemoteID       int64
	RemoteImageURL string
	RemoteTagsJSON string
	Category       string
	Color          string
	Season         string
	Style          string
	Scene          string
	// Name replaces the stored name only while it still equals NameIf.
	Name   string
	NameIf string
}

// ClosetRepository is the port to the closet_items table of the current owner.
type ClosetRepository interface {
	// ObserveAll streams every item of the owner, newest first.
	ObserveAll(ctx context.Context) <-chan []model.ClosetItem
	// ObserveByCategory streams the owner's items of one category, newest first.
	ObserveByCategory(ctx context.Context, category string) <-chan []model.ClosetItem
	Get(ctx context.Context, id int64) (*model.ClosetItem, error)
	// Insert stores a new item and returns its id. The owner is always the repository owner.
	Insert(ctx context.Context, item model.ClosetItem) (int64, error)
	Update(ctx context.Context, item model.ClosetItem) error
	Delete(ctx context.Context, id int64) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	ApplyRemote(ctx context.Context, id int64, patch ClosetRemotePatch) error
	Count(ctx context.Context) (int, error)
}
