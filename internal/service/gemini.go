package service

import (
	"DressCode/internal/tagging"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	tagPrompt = "请根据图片内容生成穿搭/服饰标签，严格只输出 JSON，不要输出多余文本。" +
		"JSON 字段：category(上衣/下装/外套/连衣裙/鞋子/配饰), gender(MALE/FEMALE/UNISEX), " +
		"style, season, scene, weather, colors(array), keywords(array), confidence(0-1)。"
	recommendPrompt = "你是穿搭助手。根据输入的 weather、gender、closet_items（每件含 category/color/season/style/scene），" +
		"给出今日穿搭建议。请严格只输出 JSON：{title, summary, items(array of {category, reason}), tips(array)}。"
	tryOnPrompt = "Dress the person from the first image in the garment from the second image. " +
		"Keep the person's face, pose, body and background unchanged. Return only the edited image."
)

// ErrNoImage — модель ответила без картинки.
var ErrNoImage = errors.New("model returned no image")

// contentGenerator: то, что нужно от *genai.GenerativeModel.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini — провайдер тегов, рекомендаций и примерки поверх Gemini API.
type Gemini struct {
	client *genai.Client
	model  contentGenerator
	name   string
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(modelName), name: modelName}, nil
}

func (g *Gemini) Name() string { return g.name }

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, parts ...genai.Part) ([]genai.Part, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: no content generated")
	}
	return resp.Candidates[0].Content.Parts, nil
}

// generateJSON склеивает текстовые части ответа и вырезает из них JSON.
func (g *Gemini) generateJSON(ctx context.Context, parts ...genai.Part) (json.RawMessage, error) {
	out, err := g.generate(ctx, parts...)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, p := range out {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return extractJSON(sb.String())
}

// extractJSON убирает markdown-ограждение вокруг JSON.
func extractJSON(text string) (json.RawMessage, error) {
	txt := strings.TrimSpace(text)
	if strings.Contains(txt, "```") {
		txt = strings.ReplaceAll(txt, "```json", "")
		txt = strings.TrimSpace(strings.ReplaceAll(txt, "```", ""))
	}
	if !json.Valid([]byte(txt)) {
		return nil, fmt.Errorf("gemini: response is not JSON: %.80q", txt)
	}
	return json.RawMessage(txt), nil
}

func (g *Gemini) Tag(ctx context.Context, image []byte) (TagOutput, error) {
	raw, err := g.generateJSON(ctx, genai.ImageData("jpeg", image), genai.Text(tagPrompt))
	if err != nil {
		return TagOutput{}, err
	}
	if _, ok := tagging.ParseResult(string(raw)); !ok {
		return TagOutput{}, fmt.Errorf("gemini: unexpected tag format: %.80q", string(raw))
	}
	return TagOutput{Model: g.name, Result: raw}, nil
}

func (g *Gemini) Recommend(ctx context.Context, in RecommendInput) (Recommendation, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return Recommendation{}, err
	}
	raw, err := g.generateJSON(ctx, genai.Text(recommendPrompt+"\n输入："+string(payload)))
	if err != nil {
		return Recommendation{}, err
	}
	var out struct {
		Title   string             `json:"title"`
		Summary string             `json:"summary"`
		Items   []RecommendPick    `json:"items"`
		Tips    tagging.StringList `json:"tips"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Recommendation{}, fmt.Errorf("gemini: unexpected recommendation format: %w", err)
	}
	return Recommendation{Title: out.Title, Summary: out.Summary, Items: out.Items, Tips: out.Tips}, nil
}

func (g *Gemini) TryOn(ctx context.Context, person, garment []byte) (TryOnOutput, error) {
	parts, err := g.generate(ctx, genai.Text(tryOnPrompt), genai.ImageData("jpeg", person), genai.ImageData("jpeg", garment))
	if err != nil {
		return TryOnOutput{}, err
	}
	for _, p := range parts {
		if b, ok := p.(genai.Blob); ok && len(b.Data) > 0 {
			ct := b.MIMEType
			if ct == "" {
				ct = "image/jpeg"
			}
			return TryOnOutput{Image: b.Data, ContentType: ct}, nil
		}
	}
	return TryOnOutput{}, ErrNoImage
}
