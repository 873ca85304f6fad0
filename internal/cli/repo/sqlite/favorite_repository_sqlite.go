package sqlite

import (
	"context"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
)

// FavoriteRepositorySQLite stores the favorite outfits of one owner.
type FavoriteRepositorySQLite struct {
	*ownedTable
}

var _ repo.FavoriteRepository = (*FavoriteRepositorySQLite)(nil)

func NewFavoriteRepository(db *DB, owner string) (*FavoriteRepositorySQLite, error) {
	t, err := newOwnedTable(db, TableFavorites, owner)
	if err != nil {
		return nil, err
	}
	return &FavoriteRepositorySQLite{ownedTable: t}, nil
}

func (r *FavoriteRepositorySQLite) ObserveFavorites(ctx context.Context) <-chan []model.OutfitCard {
	return live.Query(ctx, r.db.tracker, r.log, func(ctx context.Context) ([]model.OutfitCard, error) {
		r.claimLegacy(ctx)
		rows, err := r.db.sql.QueryContext(ctx, `SELECT `+outfitColumns+`, 1, f.created_at
			FROM favorites f
			JOIN outfits o ON o.id = f.outfit_id
			WHERE f.owner = ?
			ORDER BY f.created_at DESC, f.id DESC`, r.owner)
		if err != nil {
			return nil, err
		}
		return scanOutfitCards(rows)
	}, TableFavorites, TableOutfits)
}

func (r *FavoriteRepositorySQLite) IsFavorite(ctx context.Context, outfitID int64) (bool, error) {
	r.claimLegacy(ctx)
	var n int
	err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE owner = ? AND outfit_id = ?`,
		r.owner, outfitID).Scan(&n)
	return n > 0, err
}

func (r *FavoriteRepositorySQLite) Add(ctx context.Context, outfitID int64) error {
	return r.write(ctx, func(ctx context.Context) error {
		_, err := r.db.sql.ExecContext(ctx, `INSERT OR IGNORE INTO favorites(owner, outfit_id, created_at) VALUES(?, ?, ?)`,
			r.owner, outfitID, nowMillis())
		return err
	})
}

func (r *FavoriteRepositorySQLite) Remove(ctx context.Context, outfitID int64) error {
	return r.write(ctx, func(ctx context.Context) error {
		_, err := r.db.sql.ExecContext(ctx, `DELETE FROM favorites WHERE owner = ? AND outfit_id = ?`, r.owner, outfitID)
		return err
	})
}

// Toggle reads and flips the state inside one queued task so concurrent toggles stay ordered.
func (r *FavoriteRepositorySQLite) Toggle(ctx context.Context, outfitID int64) (bool, error) {
	var now bool
	err := r.write(ctx, func(ctx context.Context) error {
		var n int
		if err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE owner = ? AND outfit_id = ?`,
			r.owner, outfitID).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			_, err := r.db.sql.ExecContext(ctx, `DELETE FROM favorites WHERE owner = ? AND outfit_id = ?`, r.owner, outfitID)
			return err
		}
		now = true
		_, err := r.db.sql.ExecContext(ctx, `INSERT OR IGNORE INTO favorites(owner, outfit_id, created_at) VALUES(?, ?, ?)`,
			r.owner, outfitID, nowMillis())
		return err
	})
	return now, err
}
