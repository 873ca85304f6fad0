package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
	"DressCode/internal/cli/worker"

	"go.uber.org/zap"
)

// OutfitRepositorySQLite reads the shared outfit catalog as seen by one owner.
// The catalog has no owner column; the owner only selects whose favorites are joined in.
type OutfitRepositorySQLite struct {
	db    *DB
	owner string
	queue *worker.Queue
	log   *zap.SugaredLogger
}

var _ repo.OutfitRepository = (*OutfitRepositorySQLite)(nil)

func NewOutfitRepository(db *DB, owner string) (*OutfitRepositorySQLite, error) {
	if owner == "" {
		return nil, errors.New("empty owner")
	}
	log := db.log.With("table", TableOutfits, "owner", owner)
	return &OutfitRepositorySQLite{
		db:    db,
		owner: owner,
		queue: worker.NewQueue(TableOutfits, 64, log),
		log:   log,
	}, nil
}

const outfitColumns = `o.id, o.title, o.tags, o.gender, o.style, o.season, o.scene, o.weather, o.color_hex,
	o.cover_ref, o.tag_source, o.tag_model, o.ai_tags_json, o.tag_updated_at, o.created_at`

func scanOutfit(dst *model.Outfit) []any {
	return []any{&dst.ID, &dst.Title, &dst.Tags, &dst.Gender, &dst.Style, &dst.Season, &dst.Scene, &dst.Weather,
		&dst.ColorHex, &dst.CoverRef, &dst.TagSource, &dst.TagModel, &dst.AITagsJSON, &dst.TagUpdatedAt, &dst.CreatedAt}
}

func scanOutfitCards(rows *sql.Rows) ([]model.OutfitCard, error) {
	defer rows.Close()
	res := []model.OutfitCard{}
	for rows.Next() {
		var (
			c   model.OutfitCard
			fav int
		)
		dst := append(scanOutfit(&c.Outfit), &fav, &c.FavoritedAt)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		c.IsFavorite = fav != 0
		res = append(res, c)
	}
	return res, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape makes s match literally inside a LIKE pattern with ESCAPE '\'.
func likeEscape(s string) string { return likeEscaper.Replace(s) }

// query runs the card listing. Filter fields that are empty are ignored; a gender filter
// also matches UNISEX outfits.
func (r *OutfitRepositorySQLite) query(ctx context.Context, f model.OutfitFilter) ([]model.OutfitCard, error) {
	q := strings.TrimSpace(f.Query)
	rows, err := r.db.sql.QueryContext(ctx, `SELECT `+outfitColumns+`,
			CASE WHEN f.id IS NULL THEN 0 ELSE 1 END, COALESCE(f.created_at, 0)
		FROM outfits o
		LEFT JOIN favorites f ON f.outfit_id = o.id AND f.owner = ?
		WHERE (? = '' OR o.title LIKE '%' || ? || '%' ESCAPE '\' OR o.tags LIKE '%' || ? || '%' ESCAPE '\')
		  AND (? = '' OR o.gender = ? OR o.gender = 'UNISEX')
		  AND (? = '' OR o.style = ?)
		  AND (? = '' OR o.season = ?)
		  AND (? = '' OR o.scene = ?)
		  AND (? = '' OR o.weather = ?)
		ORDER BY o.created_at DESC, o.id DESC`,
		r.owner,
		q, likeEscape(q), likeEscape(q),
		f.Gender, f.Gender,
		f.Style, f.Style,
		f.Season, f.Season,
		f.Scene, f.Scene,
		f.Weather, f.Weather,
	)
	if err != nil {
		return nil, err
	}
	return scanOutfitCards(rows)
}

func (r *OutfitRepositorySQLite) Observe(ctx context.Context, filter model.OutfitFilter) <-chan []model.OutfitCard {
	return live.Query(ctx, r.db.tracker, r.log, func(ctx context.Context) ([]model.OutfitCard, error) {
		return r.query(ctx, filter)
	}, TableOutfits, TableFavorites)
}

func (r *OutfitRepositorySQLite) Get(ctx context.Context, id int64) (*model.OutfitCard, error) {
	rows, err := r.db.sql.QueryContext(ctx, `SELECT `+outfitColumns+`,
			CASE WHEN f.id IS NULL THEN 0 ELSE 1 END, COALESCE(f.created_at, 0)
		FROM outfits o
		LEFT JOIN favorites f ON f.outfit_id = o.id AND f.owner = ?
		WHERE o.id = ?`, r.owner, id)
	if err != nil {
		return nil, err
	}
	cards, err := scanOutfitCards(rows)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, repo.ErrNotFound
	}
	return &cards[0], nil
}

// List returns the whole catalog, newest first.
func (r *OutfitRepositorySQLite) List(ctx context.Context) ([]model.Outfit, error) {
	rows, err := r.db.sql.QueryContext(ctx, `SELECT `+outfitColumns+` FROM outfits o ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []model.Outfit{}
	for rows.Next() {
		var o model.Outfit
		if err := rows.Scan(scanOutfit(&o)...); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *OutfitRepositorySQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM outfits`).Scan(&n)
	return n, err
}

func (r *OutfitRepositorySQLite) InsertAll(ctx context.Context, outfits []model.Outfit) error {
	err := r.queue.Do(ctx, func() error {
		tx, err := r.db.sql.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO outfits(
			title, tags, gender, style, season, scene, weather, color_hex, cover_ref,
			tag_source, tag_model, ai_tags_json, tag_updated_at, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range outfits {
			if o.CreatedAt == 0 {
				o.CreatedAt = nowMillis()
			}
			if o.Gender == "" {
				o.Gender = model.GenderUnisex
			}
			if o.TagSource == "" {
				o.TagSource = model.TagSourceSeed
			}
			if _, err := stmt.ExecContext(ctx, o.Title, o.Tags, o.Gender, o.Style, o.Season, o.Scene, o.Weather,
				o.ColorHex, o.CoverRef, o.TagSource, o.TagModel, o.AITagsJSON, o.TagUpdatedAt, o.CreatedAt); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return err
	}
	r.db.tracker.Invalidate(TableOutfits)
	return nil
}

func (r *OutfitRepositorySQLite) UpdateTags(ctx context.Context, id int64, t model.OutfitTags) error {
	err := r.queue.Do(ctx, func() error {
		res, err := r.db.sql.ExecContext(ctx, `UPDATE outfits SET
			gender = ?, style = ?, season = ?, scene = ?, weather = ?, tags = ?,
			tag_source = ?, tag_model = ?, ai_tags_json = ?, tag_updated_at = ?
			WHERE id = ?`,
			t.Gender, t.Style, t.Season, t.Scene, t.Weather, t.Tags,
			t.TagSource, t.TagModel, t.AITagsJSON, t.UpdatedAt, id)
		return affectedOne(res, err)
	})
	if err != nil {
		return err
	}
	r.db.tracker.Invalidate(TableOutfits)
	return nil
}

// Close waits for queued writes to finish.
func (r *OutfitRepositorySQLite) Close() error {
	r.queue.Close()
	return nil
}
