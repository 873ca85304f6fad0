package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
)

// SwapJobRepositorySQLite stores the try-on history of one owner.
type SwapJobRepositorySQLite struct {
	*ownedTable
}

var _ repo.SwapJobRepository = (*SwapJobRepositorySQLite)(nil)

func NewSwapJobRepository(db *DB, owner string) (*SwapJobRepositorySQLite, error) {
	t, err := newOwnedTable(db, TableSwapJobs, owner)
	if err != nil {
		return nil, err
	}
	return &SwapJobRepositorySQLite{ownedTable: t}, nil
}

const swapColumns = `id, owner, outfit_id, source_type, source_ref_id, source_title, source_image_uri,
	person_image_uri, result_image_uri, status, created_at`

func scanSwapJob(s interface{ Scan(...any) error }) (model.SwapJob, error) {
	var j model.SwapJob
	err := s.Scan(&j.ID, &j.Owner, &j.OutfitID, &j.SourceType, &j.SourceRefID, &j.SourceTitle, &j.SourceImageURI,
		&j.PersonImageURI, &j.ResultImageURI, &j.Status, &j.CreatedAt)
	return j, err
}

func (r *SwapJobRepositorySQLite) ObserveHistory(ctx context.Context) <-chan []model.SwapJob {
	return live.Query(ctx, r.db.tracker, r.log, func(ctx context.Context) ([]model.SwapJob, error) {
		r.claimLegacy(ctx)
		rows, err := r.db.sql.QueryContext(ctx, `SELECT `+swapColumns+` FROM swap_jobs
			WHERE owner = ? ORDER BY created_at DESC, id DESC`, r.owner)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		res := []model.SwapJob{}
		for rows.Next() {
			j, err := scanSwapJob(rows)
			if err != nil {
				return nil, err
			}
			res = append(res, j)
		}
		return res, rows.Err()
	}, TableSwapJobs)
}

func (r *SwapJobRepositorySQLite) Get(ctx context.Context, id int64) (*model.SwapJob, error) {
	r.claimLegacy(ctx)
	j, err := scanSwapJob(r.db.sql.QueryRowContext(ctx, `SELECT `+swapColumns+` FROM swap_jobs WHERE id = ? AND owner = ?`,
		id, r.owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// Insert stores a job. A missing source type means the job was started from an outfit card;
// the outfit id is kept only for such jobs.
func (r *SwapJobRepositorySQLite) Insert(ctx context.Context, j model.SwapJob) (int64, error) {
	if j.SourceType == "" {
		j.SourceType = model.SourceOutfit
	}
	if j.SourceType == model.SourceOutfit {
		if j.SourceRefID == 0 {
			j.SourceRefID = j.OutfitID
		}
		j.OutfitID = j.SourceRefID
	} else {
		j.OutfitID = 0
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = nowMillis()
	}
	var id int64
	err := r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `INSERT INTO swap_jobs(
			owner, outfit_id, source_type, source_ref_id, source_title, source_image_uri,
			person_image_uri, result_image_uri, status, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.owner, j.OutfitID, j.SourceType, j.SourceRefID, j.SourceTitle, j.SourceImageURI,
			j.PersonImageURI, j.ResultImageURI, j.Status, j.CreatedAt)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (r *SwapJobRepositorySQLite) Finish(ctx context.Context, id int64, status, resultImageURI string) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `UPDATE swap_jobs SET status = ?, result_image_uri = ? WHERE id = ? AND owner = ?`,
			status, resultImageURI, id, r.owner)
		return affectedOne(res, err)
	})
}

func (r *SwapJobRepositorySQLite) Delete(ctx context.Context, id int64) error {
	return r.write(ctx, func(ctx context.Context) error {
		res, err := r.db.sql.ExecContext(ctx, `DELETE FROM swap_jobs WHERE id = ? AND owner = ?`, id, r.owner)
		return affectedOne(res, err)
	})
}
