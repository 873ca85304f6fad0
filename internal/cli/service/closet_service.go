package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
	"DressCode/internal/cli/worker"
	"DressCode/internal/tagging"
)

// ErrNoBackend is returned by operations that need the server when none is configured.
var ErrNoBackend = errors.New("server is not configured")

const defaultItemName = "衣物"

// ClosetDraft — данные новой вещи, введённые пользователем.
type ClosetDraft struct {
	Name      string
	Category  string
	Color     string
	Season    string
	Style     string
	Scene     string
	Favorite  bool
	ImagePath string // исходный файл, копируется в каталог данных
}

// ClosetService — гардероб текущего пользователя.
type ClosetService struct {
	repo     repo.ClosetRepository
	backend  *api.Backend
	syncQ    *worker.Queue
	owner    string
	imageDir string
	upload   bool
	log      *zap.SugaredLogger
}

// ClosetOptions configures NewClosetService.
type ClosetOptions struct {
	Owner    string
	ImageDir string
	// Upload sends new items to /api/closet/items; otherwise only /api/vl/tag is called.
	Upload bool
}

// NewClosetService создаёт сервис. backend может быть nil: тогда синхронизация пропускается.
func NewClosetService(r repo.ClosetRepository, backend *api.Backend, syncQ *worker.Queue, opts ClosetOptions, log *zap.SugaredLogger) *ClosetService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ClosetService{
		repo:     r,
		backend:  backend,
		syncQ:    syncQ,
		owner:    opts.Owner,
		imageDir: opts.ImageDir,
		upload:   opts.Upload,
		log:      log,
	}
}

func normalizeDraft(d ClosetDraft) (ClosetDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	raw := strings.TrimSpace(d.Category)
	d.Category = tagging.NormalizeCategory(raw, "")
	switch {
	case raw != "" && d.Category == "":
		return d, fmt.Errorf("unknown category %q: allowed %s", raw, strings.Join(tagging.Categories, ", "))
	case raw == "" && d.ImagePath == "":
		// без фото категорию некому определить
		return d, errors.New("category is required when no photo is given")
	}
	d.Color = tagging.NormalizeColor(d.Color, "")
	d.Season = tagging.NormalizeSeason(d.Season, "")
	d.Style = tagging.NormalizeStyle(d.Style, "")
	d.Scene = tagging.NormalizeScene(d.Scene, "")
	if d.Name == "" {
		d.Name = tagging.ClosetFields{Category: d.Category, Style: d.Style}.DefaultName()
	}
	if d.Name == "" {
		d.Name = defaultItemName
	}
	return d, nil
}

// Add сохраняет вещь локально и ставит синхронизацию в очередь.
// Ошибка синхронизации не влияет на результат Add.
func (s *ClosetService) Add(ctx context.Context, d ClosetDraft) (int64, error) {
	d, err := normalizeDraft(d)
	if err != nil {
		return 0, err
	}
	image := ""
	if d.ImagePath != "" {
		image, err = copyImage(d.ImagePath, s.imageDir)
		if err != nil {
			return 0, err
		}
	}
	id, err := s.repo.Insert(ctx, model.ClosetItem{
		Name:       d.Name,
		Category:   d.Category,
		ImageURI:   image,
		Color:      d.Color,
		Season:     d.Season,
		Style:      d.Style,
		Scene:      d.Scene,
		IsFavorite: d.Favorite,
	})
	if err != nil {
		_ = removeInside(image, s.imageDir)
		return 0, err
	}
	if image != "" && s.backend != nil {
		if err := s.syncQ.Submit(func() { s.syncLogged(id) }); err != nil {
			s.log.Warnw("closet sync not scheduled", "id", id, "error", err)
		}
	}
	return id, nil
}

func (s *ClosetService) syncLogged(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.sync(ctx, id); err != nil {
		s.log.Warnw("closet sync failed", "id", id, "error", err)
		return
	}
	s.log.Infow("closet item synced", "id", id)
}

// sync — одна попытка: загрузка на сервер либо только теги. Повторов нет.
func (s *ClosetService) sync(ctx context.Context, id int64) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	part, err := readImagePart(item.ImageURI)
	if err != nil {
		return err
	}

	var (
		patch  repo.ClosetRemotePatch
		result tagging.Result
		parsed bool
	)
	if s.upload {
		remote, err := s.backend.UploadClosetItem(ctx, api.ClosetUpload{
			Owner:      s.owner,
			Name:       item.Name,
			Category:   item.Category,
			Color:      item.Color,
			Season:     item.Season,
			Style:      item.Style,
			Scene:      item.Scene,
			IsFavorite: item.IsFavorite,
			AutoTag:    true,
			Image:      part,
		})
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		patch.RemoteID = remote.ID
		patch.RemoteImageURL = remote.ImageURL
		if len(remote.Tags) > 0 && string(remote.Tags) != "null" {
			patch.RemoteTagsJSON = string(remote.Tags)
		}
		result, parsed = remote.TagResult()
	} else {
		tr, err := s.backend.Tag(ctx, part)
		if err != nil {
			return fmt.Errorf("tag: %w", err)
		}
		patch.RemoteTagsJSON = tr.Raw
		result, parsed = tr.Result, tr.Parsed
	}

	if parsed {
		f := result.Apply(tagging.ClosetFields{}, "")
		patch.Category = f.Category
		patch.Color = f.Color
		patch.Season = f.Season
		patch.Style = f.Style
		patch.Scene = f.Scene
		if item.Name == defaultItemName {
			// имя-заглушку заменяем на "категория · стиль" с учётом уже заполненных полей
			named := tagging.ClosetFields{Category: orElse(item.Category, f.Category), Style: orElse(item.Style, f.Style)}
			patch.Name, patch.NameIf = named.DefaultName(), defaultItemName
		}
	} else {
		s.log.Debugw("tag result not parsed", "id", id)
	}
	return s.repo.ApplyRemote(ctx, id, patch)
}

// Retag синхронно повторяет синхронизацию одной вещи.
func (s *ClosetService) Retag(ctx context.Context, id int64) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	return s.syncQ.Do(ctx, func() error { return s.sync(ctx, id) })
}

// List streams the closet, optionally limited to one category.
func (s *ClosetService) List(ctx context.Context, category string) <-chan []model.ClosetItem {
	if category = strings.TrimSpace(category); category != "" {
		return s.repo.ObserveByCategory(ctx, tagging.NormalizeCategory(category, category))
	}
	return s.repo.ObserveAll(ctx)
}

// Get returns one item.
func (s *ClosetService) Get(ctx context.Context, id int64) (*model.ClosetItem, error) {
	return s.repo.Get(ctx, id)
}

// Update заменяет редактируемые поля. Поля с nil не меняются.
func (s *ClosetService) Update(ctx context.Context, id int64, edit ClosetEdit) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if edit.Name != nil {
		item.Name = strings.TrimSpace(*edit.Name)
	}
	if edit.Category != nil {
		c := tagging.NormalizeCategory(*edit.Category, "")
		if c == "" {
			return fmt.Errorf("unknown category %q", *edit.Category)
		}
		item.Category = c
	}
	if edit.Color != nil {
		item.Color = tagging.NormalizeColor(*edit.Color, "")
	}
	if edit.Season != nil {
		item.Season = tagging.NormalizeSeason(*edit.Season, "")
	}
	if edit.Style != nil {
		item.Style = tagging.NormalizeStyle(*edit.Style, "")
	}
	if edit.Scene != nil {
		item.Scene = tagging.NormalizeScene(*edit.Scene, "")
	}
	if item.Name == "" {
		item.Name = tagging.ClosetFields{Category: item.Category, Style: item.Style}.DefaultName()
	}
	return s.repo.Update(ctx, *item)
}

// ClosetEdit lists the fields to change.
type ClosetEdit struct {
	Name     *string
	Category *string
	Color    *string
	Season   *string
	Style    *string
	Scene    *string
}

// Delete удаляет вещь и её локальную копию фото.
func (s *ClosetService) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := removeInside(item.ImageURI, s.imageDir); err != nil {
		s.log.Warnw("closet image not removed", "path", item.ImageURI, "error", err)
	}
	return nil
}

// ToggleFavorite переключает флаг избранного и возвращает новое значение.
func (s *ClosetService) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	fav := !item.IsFavorite
	if err := s.repo.SetFavorite(ctx, id, fav); err != nil {
		return false, err
	}
	return fav, nil
}

func orElse(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
