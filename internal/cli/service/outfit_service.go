package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
	"DressCode/internal/cli/worker"
	"DressCode/internal/tagging"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogEntry struct {
	Title   string `yaml:"title"`
	Tags    string `yaml:"tags"`
	Gender  string `yaml:"gender"`
	Style   string `yaml:"style"`
	Season  string `yaml:"season"`
	Scene   string `yaml:"scene"`
	Weather string `yaml:"weather"`
	Color   string `yaml:"color"`
}

// Catalog разбирает встроенный каталог. created_at идёт по убыванию в порядке файла.
func Catalog(now time.Time) ([]model.Outfit, error) {
	var entries []catalogEntry
	if err := yaml.Unmarshal(catalogYAML, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	base := now.UnixMilli()
	out := make([]model.Outfit, 0, len(entries))
	for i, e := range entries {
		out = append(out, model.Outfit{
			Title:     e.Title,
			Tags:      e.Tags,
			Gender:    e.Gender,
			Style:     e.Style,
			Season:    e.Season,
			Scene:     e.Scene,
			Weather:   e.Weather,
			ColorHex:  e.Color,
			TagSource: model.TagSourceSeed,
			CreatedAt: base - int64(i+1)*1000,
		})
	}
	return out, nil
}

// OutfitService — каталог образов и избранное.
type OutfitService struct {
	outfits repo.OutfitRepository
	favs    repo.FavoriteRepository
	syncQ   *worker.Queue
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewOutfitService создаёт сервис. syncQ выполняет перетегирование.
func NewOutfitService(outfits repo.OutfitRepository, favs repo.FavoriteRepository, syncQ *worker.Queue, log *zap.SugaredLogger) *OutfitService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &OutfitService{outfits: outfits, favs: favs, syncQ: syncQ, log: log, now: time.Now}
}

// EnsureSeeded заливает каталог, если таблица пуста. Возвращает число вставленных образов.
func (s *OutfitService) EnsureSeeded(ctx context.Context) (int, error) {
	n, err := s.outfits.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	items, err := Catalog(s.now())
	if err != nil {
		return 0, err
	}
	if err := s.outfits.InsertAll(ctx, items); err != nil {
		return 0, fmt.Errorf("seed outfits: %w", err)
	}
	s.log.Infow("outfit catalog seeded", "count", len(items))
	return len(items), nil
}

// Browse streams outfit cards matching f.
func (s *OutfitService) Browse(ctx context.Context, f model.OutfitFilter) <-chan []model.OutfitCard {
	f.Query = strings.TrimSpace(f.Query)
	return s.outfits.Observe(ctx, f)
}

// Favorites streams the favorited cards.
func (s *OutfitService) Favorites(ctx context.Context) <-chan []model.OutfitCard {
	return s.favs.ObserveFavorites(ctx)
}

// Get returns one card.
func (s *OutfitService) Get(ctx context.Context, id int64) (*model.OutfitCard, error) {
	return s.outfits.Get(ctx, id)
}

// ToggleFavorite переключает избранное и возвращает новое состояние.
func (s *OutfitService) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	if _, err := s.outfits.Get(ctx, id); err != nil {
		return false, err
	}
	return s.favs.Toggle(ctx, id)
}

// Retag прогоняет эвристический теггер по всему каталогу на sync-очереди.
// overwrite заменяет уже заполненные поля. Возвращает число обновлённых образов.
func (s *OutfitService) Retag(ctx context.Context, overwrite bool) (int, error) {
	updated := 0
	err := s.syncQ.Do(ctx, func() error {
		list, err := s.outfits.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range list {
			t := tagging.TagOutfit(tagging.OutfitInput{
				Title:   o.Title,
				Tags:    o.Tags,
				Gender:  o.Gender,
				Style:   o.Style,
				Season:  o.Season,
				Scene:   o.Scene,
				Weather: o.Weather,
			}, overwrite)
			err := s.outfits.UpdateTags(ctx, o.ID, model.OutfitTags{
				Gender:     t.Gender,
				Style:      t.Style,
				Season:     t.Season,
				Scene:      t.Scene,
				Weather:    t.Weather,
				Tags:       t.Tags,
				TagSource:  model.TagSourceHeuristic,
				TagModel:   t.Model,
				AITagsJSON: t.AITagsJSON,
				UpdatedAt:  s.now().UnixMilli(),
			})
			if err != nil {
				return fmt.Errorf("retag outfit %d: %w", o.ID, err)
			}
			updated++
		}
		return nil
	})
	return updated, err
}
