package service

import (
	"DressCode/internal/imaging"
	"DressCode/internal/model"
	"DressCode/internal/repo"
	"DressCode/internal/storage"
	"DressCode/internal/tagging"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyImage = errors.New("image is empty")
)

// NewClosetItem — данные загрузки вещи.
type NewClosetItem struct {
	Owner       string
	Name        string
	Category    string
	Color       string
	Season      string
	Style       string
	Scene       string
	IsFavorite  bool
	AutoTag     bool
	Image       []byte
	ContentType string
}

// ClosetService — гардероб на сервере: метаданные в БД, фото в storage, теги от Tagger.
type ClosetService struct {
	repo   repo.ClosetRepository
	store  storage.Store
	tagger Tagger
	log    *zap.SugaredLogger
}

func NewClosetService(r repo.ClosetRepository, store storage.Store, tagger Tagger, log *zap.SugaredLogger) *ClosetService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ClosetService{repo: r, store: store, tagger: tagger, log: log}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// TagImage уменьшает фото и отдаёт его Tagger.
func TagImage(ctx context.Context, t Tagger, image []byte) (TagOutput, error) {
	if len(image) == 0 {
		return TagOutput{}, ErrEmptyImage
	}
	small, err := imaging.Shrink(image, 85)
	if err != nil {
		return TagOutput{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return t.Tag(ctx, small)
}

// Create сохраняет фото и запись. Ошибка тегирования не мешает созданию вещи.
func (s *ClosetService) Create(ctx context.Context, userID int64, in NewClosetItem) (*model.ClosetItem, error) {
	if len(in.Image) == 0 {
		return nil, ErrEmptyImage
	}
	key := storage.NewKey(in.ContentType)
	if err := s.store.Save(ctx, key, in.ContentType, in.Image); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	url, err := s.store.URL(ctx, key)
	if err != nil {
		return nil, err
	}

	it := &model.ClosetItem{
		UserID:     userID,
		Owner:      strings.TrimSpace(in.Owner),
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		Color:      strings.TrimSpace(in.Color),
		Season:     strings.TrimSpace(in.Season),
		Style:      strings.TrimSpace(in.Style),
		Scene:      strings.TrimSpace(in.Scene),
		IsFavorite: in.IsFavorite,
		ImageKey:   key,
		ImageURL:   url,
	}
	if in.AutoTag {
		out, err := TagImage(ctx, s.tagger, in.Image)
		if err != nil {
			s.log.Warnw("closet auto tag failed", "owner", it.Owner, "error", err)
		} else {
			applyPatch(it, fillEmpty(it, out.Result))
			it.Tags, it.TagModel = datatypes.JSON(out.Result), out.Model
		}
	}
	if it.Name == "" {
		it.Name = tagging.ClosetFields{Category: it.Category, Style: it.Style}.DefaultName()
	}
	if it.Name == "" {
		it.Name = "衣物"
	}

	if err := s.repo.Create(ctx, it); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Warnw("orphan image left", "key", key, "error", derr)
		}
		return nil, err
	}
	return it, nil
}

func (s *ClosetService) List(ctx context.Context, userID int64, category string) ([]model.ClosetItem, error) {
	return s.repo.ListByUser(ctx, userID, strings.TrimSpace(category))
}

func (s *ClosetService) Get(ctx context.Context, userID, id int64) (*model.ClosetItem, error) {
	it, err := s.repo.Get(ctx, userID, id)
	return it, notFound(err)
}

func (s *ClosetService) Update(ctx context.Context, userID, id int64, p model.ClosetPatch) (*model.ClosetItem, error) {
	it, err := s.repo.Update(ctx, userID, id, trimPatch(p))
	return it, notFound(err)
}

// Delete удаляет запись, затем фото. Фото, которое не удалось стереть, только логируется.
func (s *ClosetService) Delete(ctx context.Context, userID, id int64) error {
	it, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return notFound(err)
	}
	if it.ImageKey != "" {
		if err := s.store.Delete(ctx, it.ImageKey); err != nil {
			s.log.Warnw("failed to delete closet image", "key", it.ImageKey, "error", err)
		}
	}
	return nil
}

// Retag заново размечает сохранённое фото и дописывает пустые поля вещи.
func (s *ClosetService) Retag(ctx context.Context, userID, id int64) (*model.ClosetItem, TagOutput, error) {
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, TagOutput{}, notFound(err)
	}
	rc, err := s.store.Open(ctx, it.ImageKey)
	if err != nil {
		return nil, TagOutput{}, fmt.Errorf("open image: %w", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, TagOutput{}, err
	}
	out, err := TagImage(ctx, s.tagger, data)
	if err != nil {
		return nil, TagOutput{}, err
	}
	updated, err := s.repo.SetTags(ctx, userID, id, fillEmpty(it, out.Result), datatypes.JSON(out.Result), out.Model)
	if err != nil {
		return nil, TagOutput{}, notFound(err)
	}
	return updated, out, nil
}

// fillEmpty строит патч только для пустых полей вещи по ответу модели.
func fillEmpty(it *model.ClosetItem, raw []byte) model.ClosetPatch {
	var p model.ClosetPatch
	r, ok := tagging.ParseResult(string(raw))
	if !ok {
		return p
	}
	cur := tagging.ClosetFields{
		Name: it.Name, Category: it.Category, Color: it.Color,
		Season: it.Season, Style: it.Style, Scene: it.Scene,
	}
	got := r.Apply(cur, "")
	set := func(dst **string, was, now string) {
		if was == "" && now != "" {
			v := now
			*dst = &v
		}
	}
	set(&p.Category, cur.Category, got.Category)
	set(&p.Color, cur.Color, got.Color)
	set(&p.Season, cur.Season, got.Season)
	set(&p.Style, cur.Style, got.Style)
	set(&p.Scene, cur.Scene, got.Scene)
	return p
}

func applyPatch(it *model.ClosetItem, p model.ClosetPatch) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&it.Name, p.Name)
	apply(&it.Category, p.Category)
	apply(&it.Color, p.Color)
	apply(&it.Season, p.Season)
	apply(&it.Style, p.Style)
	apply(&it.Scene, p.Scene)
	if p.IsFavorite != nil {
		it.IsFavorite = *p.IsFavorite
	}
}

func trimPatch(p model.ClosetPatch) model.ClosetPatch {
	for _, f := range []**string{&p.Name, &p.Category, &p.Color, &p.Season, &p.Style, &p.Scene} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	return p
}
