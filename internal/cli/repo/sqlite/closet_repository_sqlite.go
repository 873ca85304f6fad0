package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
)

// ClosetRepositorySQLite stores closet items of one owner.
type ClosetRepositorySQLite struct {
	*ownedTable
}

var _ repo.ClosetRepository = (*ClosetRepositorySQLite)(nil)

// NewClosetRepository opens the closet of owner on db.
func NewClosetRepository(db *DB, owner string) (*ClosetRepositorySQLite, error) {
	t, err := newOwnedTable(db, TableCloset, owner)
	if err != nil {
		return nil, err
	}
	return &ClosetRepositorySQLite{ownedTable: t}, nil
}

const closetColumns = `id, owner, name, category, image_uri, color, season, style, scene, is_favorite,
	remote_id, remote_image_url, remote_tags_json, created_at`

func scanClosetItem(s interface{ Scan(...any) error }) (model.ClosetItem, error) {
	var (
		it  model.ClosetItem
		fav int
	)
	err := s.Scan(&it.ID, &it.Owner, &it.Name, &it.Category, &it.ImageURI, &it.Color, &it.Season, &it.Style,
		&it.Scene, &fav, &it.RemoteID, &it.RemoteImageURL, &it.RemoteTagsJSON, &it.CreatedAt)
	it.IsFavorite = fav != 0
	return it, err
}

func (r *ClosetRepositorySQLite) list(ctx context.Context, category string) ([]model.ClosetItem, error) {
	r.claimLegacy(ctx)
	q := `SELECT ` + closetColumns + ` FROM closet_items WHERE owner = ?`
	args := []any{r.owner}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []model.ClosetItem{}
	for rows.Next() {
		it, err := scanClosetItem(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// ObserveAll streams every item of the owner, newest first.
func (r *ClosetRepositorySQLite) ObserveAll(ctx context.Context) <-chan []model.ClosetItem {
	return live.Query(ctx, r.db.tracker, r.log, func(ctx context.Context) ([]model.ClosetItem, error) {
		return r.list(ctx, "")
	}, TableCloset)
}

// ObserveByCategory streams items of one category.
func (r *ClosetRepositorySQLite) ObserveByCategory(ctx context.Context, category string) <-chan []model.ClosetItem {
	category = strings.TrimSpace(category)
	return live.Query(ctx, r.db.tracker, r.log, func(ctx context.Context) ([]model.ClosetItem, error) {
		return r.list(ctx, category)
	}, TableCloset)
}

func (r *ClosetRepositorySQLite) Get(ctx context.Context, id int64) (*model.ClosetItem, error) {
	r.claimLegacy(ctx)
	row := r.db.sql.QueryRowContext(ctx, `SELECT `+closetColumns+` FROM closet_items WHERE id = ? AND owner = ?`, id, r.owner)
	it, err := scanClosetItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *ClosetRepositorySQLite) Insert(ctx context.Context, item model.ClosetItem) (int64, error) {
	if strings.TrimSpace(item.Name) == "" {
		return 0, errors.New("name is required")
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = nowMillis()
	}
	var id int64
	err := r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `INSERT INTO closet_items(
			owner, name, category, image_uri, color, season, style, scene, is_favorite,
			remote_id, remote_image_url, remote_tags_json, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.owner, strings.TrimSpace(item.Name), item.Category, item.ImageURI, item.Color, item.Season, item.Style,
			item.Scene, boolInt(item.IsFavorite), item.RemoteID, item.RemoteImageURL, item.RemoteTagsJSON, item.CreatedAt,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (r *ClosetRepositorySQLite) Update(ctx context.Context, item model.ClosetItem) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `UPDATE closet_items
			SET name = ?, category = ?, image_uri = ?, color = ?, season = ?, style = ?, scene = ?, is_favorite = ?
			WHERE id = ? AND owner = ?`,
			strings.TrimSpace(item.Name), item.Category, item.ImageURI, item.Color, item.Season, item.Style, item.Scene,
			boolInt(item.IsFavorite), item.ID, r.owner,
		)
		return affectedOne(res, err)
	})
}

func (r *ClosetRepositorySQLite) Delete(ctx context.Context, id int64) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `DELETE FROM closet_items WHERE id = ? AND owner = ?`, id, r.owner)
		return affectedOne(res, err)
	})
}

func (r *ClosetRepositorySQLite) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `UPDATE closet_items SET is_favorite = ? WHERE id = ? AND owner = ?`,
			boolInt(favorite), id, r.owner)
		return affectedOne(res, err)
	})
}

// ApplyRemote records the sync result. Tag fields are written only where the stored value is empty.
func (r *ClosetRepositorySQLite) ApplyRemote(ctx context.Context, id int64, p repo.ClosetRemotePatch) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `UPDATE closet_items SET
			remote_id = CASE WHEN ? <> 0 THEN ? ELSE remote_id END,
			remote_image_url = CASE WHEN ? <> '' THEN ? ELSE remote_image_url END,
			remote_tags_json = CASE WHEN ? <> '' THEN ? ELSE remote_tags_json END,
			category = CASE WHEN category = '' THEN ? ELSE category END,
			color = CASE WHEN color = '' THEN ? ELSE color END,
			season = CASE WHEN season = '' THEN ? ELSE season END,
			style = CASE WHEN style = '' THEN ? ELSE style END,
			scene = CASE WHEN scene = '' THEN ? ELSE scene END,
			name = CASE WHEN ? <> '' AND name = ? THEN ? ELSE name END
			WHERE id = ? AND owner = ?`,
			p.RemoteID, p.RemoteID,
			p.RemoteImageURL, p.RemoteImageURL,
			p.RemoteTagsJSON, p.RemoteTagsJSON,
			p.Category, p.Color, p.Season, p.Style, p.Scene,
			p.Name, p.NameIf, p.Name,
			id, r.owner,
		)
		return affectedOne(res, err)
	})
}

func (r *ClosetRepositorySQLite) Count(ctx context.Context) (int, error) {
	r.claimLegacy(ctx)
	var n int
	err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM closet_items WHERE owner = ?`, r.owner).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// affectedOne maps "no row matched" to repo.ErrNotFound.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}
