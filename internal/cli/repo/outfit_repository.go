package repo

import (
	"context"

	"DressCode/internal/cli/model"
)

// OutfitRepository is the port to the shared outfit catalog.
type OutfitRepository interface {
	// Observe streams outfit cards matching filter, newest first, with the owner's favorite flag.
	Observe(ctx context.Context, filter model.OutfitFilter) <-chan []model.OutfitCard
	Get(ctx context.Context, id int64) (*model.OutfitCard, error)
	List(ctx context.Context) ([]model.Outfit, error)
	Count(ctx context.Context) (int, error)
	// InsertAll inserts the given outfits in one transaction.
	InsertAll(ctx context.Context, outfits []model.Outfit) error
	UpdateTags(ctx context.Context, id int64, tags model.OutfitTags) error
}

// FavoriteRepository is the port to the favorites table of the current owner.
type FavoriteRepository interface {
	// ObserveFavorites streams favorite outfit cards, most recently favorited first.
	ObserveFavorites(ctx context.Context) <-chan []model.OutfitCard
	IsFavorite(ctx context.Context, outfitID int64) (bool, error)
	// Add is idempotent: adding an existing favorite is not an error.
	Add(ctx context.Context, outfitID int64) error
	// Remove is idempotent: removing a missing favorite is not an error.
	Remove(ctx context.Context, outfitID int64) error
	// Toggle flips the favorite state and returns the new one.
	Toggle(ctx context.Context, outfitID int64) (bool, error)
}
