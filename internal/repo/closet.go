package repo

import (
	"DressCode/internal/model"
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClosetRepository — вещи гардероба, всегда в разрезе пользователя.
// Чужие и отсутствующие записи одинаково дают gorm.ErrRecordNotFound.
type ClosetRepository interface {
	Create(ctx context.Context, it *model.ClosetItem) error
	ListByUser(ctx context.Context, userID int64, category string) ([]model.ClosetItem, error)
	Get(ctx context.Context, userID, id int64) (*model.ClosetItem, error)
	Update(ctx context.Context, userID, id int64, p model.ClosetPatch) (*model.ClosetItem, error)
	SetTags(ctx context.Context, userID, id int64, fields model.ClosetPatch, tags datatypes.JSON, tagModel string) (*model.ClosetItem, error)
	Delete(ctx context.Context, userID, id int64) (*model.ClosetItem, error)
}

type closetRepo struct {
	db *gorm.DB
}

// NewClosetRepository создаёт реализацию репозитория для ClosetItem.
func NewClosetRepository(db *gorm.DB) ClosetRepository {
	return &closetRepo{db: db}
}

func (r *closetRepo) Create(ctx context.Context, it *model.ClosetItem) error {
	return r.db.WithContext(ctx).Create(it).Error
}

// ListByUser возвращает вещи пользователя, новые первыми. Пустая категория — без фильтра.
func (r *closetRepo) ListByUser(ctx context.Context, userID int64, category string) ([]model.ClosetItem, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var items []model.ClosetItem
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *closetRepo) Get(ctx context.Context, userID, id int64) (*model.ClosetItem, error) {
	var it model.ClosetItem
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *closetRepo) Update(ctx context.Context, userID, id int64, p model.ClosetPatch) (*model.ClosetItem, error) {
	return r.update(ctx, userID, id, p.Columns())
}

// SetTags сохраняет ответ модели вместе с полями, которые из него получились.
func (r *closetRepo) SetTags(ctx context.Context, userID, id int64, fields model.ClosetPatch, tags datatypes.JSON, tagModel string) (*model.ClosetItem, error) {
	cols := fields.Columns()
	cols["tags"] = tags
	cols["tag_model"] = tagModel
	return r.update(ctx, userID, id, cols)
}

func (r *closetRepo) update(ctx context.Context, userID, id int64, cols map[string]any) (*model.ClosetItem, error) {
	var out *model.ClosetItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it model.ClosetItem
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&it).Error; err != nil {
			return err
		}
		if len(cols) > 0 {
			if err := tx.Model(&it).Updates(cols).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&it, it.ID).Error; err != nil {
			return err
		}
		out = &it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет вещь и возвращает удалённую запись, чтобы вызывающий мог убрать картинку.
func (r *closetRepo) Delete(ctx context.Context, userID, id int64) (*model.ClosetItem, error) {
	it, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.ClosetItem{}, it.ID).Error; err != nil {
		return nil, err
	}
	return it, nil
}
