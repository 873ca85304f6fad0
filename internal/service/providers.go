package service

import (
	"DressCode/internal/imaging"
	"DressCode/internal/tagging"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Модели локальных провайдеров, попадают в поле "model" ответа.
const (
	HeuristicModel = "heuristic-v1"
	MockTryOnModel = "mock"
)

// ErrBadImage — загруженный файл не декодируется как картинка.
var ErrBadImage = errors.New("unsupported or broken image")

// TagOutput — ответ модели тегирования. Result хранится как есть и уходит клиенту.
type TagOutput struct {
	Model  string
	Result json.RawMessage
}

// Tagger размечает фото одежды. На вход приходит уже уменьшенный JPEG.
type Tagger interface {
	Name() string
	Tag(ctx context.Context, image []byte) (TagOutput, error)
}

type RecommendWeather struct {
	City string `json:"city"`
	Temp string `json:"temp"`
	Desc string `json:"desc"`
}

type RecommendClosetItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Season   string `json:"season"`
	Style    string `json:"style"`
	Scene    string `json:"scene"`
}

// RecommendInput: тело /api/vl/recommend.
type RecommendInput struct {
	Weather     RecommendWeather      `json:"weather"`
	Gender      string                `json:"gender"`
	ClosetItems []RecommendClosetItem `json:"closet_items"`
}

type RecommendPick struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Recommendation — рекомендация на день.
type Recommendation struct {
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
	Items   []RecommendPick `json:"items"`
	Tips    []string        `json:"tips"`
}

// Recommender подбирает образ по погоде и гардеробу.
type Recommender interface {
	Name() string
	Recommend(ctx context.Context, in RecommendInput) (Recommendation, error)
}

type TryOnOutput struct {
	Image       []byte
	ContentType string
}

// TryOner совмещает фото человека и одежды.
type TryOner interface {
	Name() string
	TryOn(ctx context.Context, person, garment []byte) (TryOnOutput, error)
}

// Providers выбираются конфигурацией при старте.
type Providers struct {
	Tagger      Tagger
	Recommender Recommender
	TryOn       TryOner
}

// HeuristicTagger определяет только цвет: по среднему цвету центра кадра.
type HeuristicTagger struct{}

func (HeuristicTagger) Name() string { return HeuristicModel }

func (HeuristicTagger) Tag(_ context.Context, image []byte) (TagOutput, error) {
	img, err := imaging.Decode(image)
	if err != nil {
		return TagOutput{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	r, g, b := imaging.AverageColor(img)
	name, word := nearestColor(r, g, b)
	res := tagging.Result{
		Colors:     tagging.StringList{name},
		Keywords:   tagging.StringList{word},
		Confidence: 0.2,
		Source:     "HEURISTIC",
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return TagOutput{}, err
	}
	return TagOutput{Model: HeuristicModel, Result: raw}, nil
}

var palette = []struct {
	name, word string
	r, g, b    float64
}{
	{"黑", "black", 20, 20, 20},
	{"白", "white", 240, 240, 240},
	{"灰", "gray", 128, 128, 128},
	{"蓝", "blue", 40, 70, 180},
	{"红", "red", 200, 40, 40},
	{"绿", "green", 40, 150, 60},
	{"棕", "brown", 130, 85, 50},
}

func nearestColor(r, g, b uint8) (name, word string) {
	best := math.MaxFloat64
	for _, p := range palette {
		dr, dg, db := float64(r)-p.r, float64(g)-p.g, float64(b)-p.b
		if d := dr*dr + dg*dg + db*db; d < best {
			best, name, word = d, p.name, p.word
		}
	}
	return name, word
}

// MockTryOn склеивает фото без модели, см. imaging.Composite.
type MockTryOn struct{}

func (MockTryOn) Name() string { return MockTryOnModel }

func (MockTryOn) TryOn(_ context.Context, person, garment []byte) (TryOnOutput, error) {
	out, err := imaging.MockTryOn(person, garment)
	if err != nil {
		return TryOnOutput{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return TryOnOutput{Image: out, ContentType: "image/jpeg"}, nil
}

// NewProviders собирает провайдеров по названиям из конфига.
// gemini без ключа откатывается на локальные провайдеры с предупреждением.
// Возвращённый close нужно вызвать при остановке сервера.
func NewProviders(ctx context.Context, tagProvider, tryOnProvider, apiKey, modelName string, log *zap.SugaredLogger) (Providers, func() error, error) {
	p := Providers{
		Tagger:      HeuristicTagger{},
		Recommender: HeuristicRecommender{},
		TryOn:       MockTryOn{},
	}
	noop := func() error { return nil }

	wantTag := strings.EqualFold(tagProvider, "gemini")
	wantTry := strings.EqualFold(tryOnProvider, "gemini")
	if !wantTag && !wantTry {
		return p, noop, nil
	}
	if apiKey == "" {
		log.Warnw("GEMINI_API_KEY is empty, local providers are used",
			"tag_provider", tagProvider, "tryon_provider", tryOnProvider)
		return p, noop, nil
	}
	g, err := NewGemini(ctx, apiKey, modelName)
	if err != nil {
		return Providers{}, noop, err
	}
	if wantTag {
		p.Tagger, p.Recommender = g, g
	}
	if wantTry {
		p.TryOn = g
	}
	return p, g.Close, nil
}
