package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"DressCode/internal/cli/model"
	"DressCode/internal/tagging"
)

// Backend is the typed client of the DressCode server.
type Backend struct {
	c *Client
}

// NewBackend wraps c.
func NewBackend(c *Client) *Backend {
	return &Backend{c: c}
}

// WithToken returns a backend authenticated with token.
func (b *Backend) WithToken(token string) *Backend {
	return &Backend{c: b.c.WithToken(token)}
}

type envelope struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms,omitempty"`
}

func (e envelope) err() error {
	if e.OK {
		return nil
	}
	if e.Error != "" {
		return errors.New(e.Error)
	}
	return errors.New("request failed")
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register creates the account on the server and returns the session token.
func (b *Backend) Register(ctx context.Context, login, password string) (string, error) {
	return b.auth(ctx, "/api/user/register", login, password)
}

// Login opens a server session and returns its token.
func (b *Backend) Login(ctx context.Context, login, password string) (string, error) {
	return b.auth(ctx, "/api/user/login", login, password)
}

func (b *Backend) auth(ctx context.Context, path, login, password string) (string, error) {
	resp, body, err := b.c.PostJSON(ctx, path, credentials{Login: login, Password: password})
	if err != nil {
		return "", err
	}
	if err := DecodeJSON(resp, body, nil); err != nil {
		return "", err
	}
	return AuthCookie(resp)
}

// TagResult is the answer of the tagging endpoint.
type TagResult struct {
	Model  string
	Raw    string         // the result object as sent by the server
	Result tagging.Result // decoded Raw; zero when Parsed is false
	Parsed bool
}

func decodeTags(raw json.RawMessage) (tagging.Result, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return tagging.Result{}, false
	}
	// some models return the JSON as a string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return tagging.ParseResult(s)
	}
	return tagging.ParseResult(string(raw))
}

// Tag sends one image to /api/vl/tag.
func (b *Backend) Tag(ctx context.Context, image FilePart) (TagResult, error) {
	image.Field = "image"
	resp, body, err := b.c.PostMultipart(ctx, "/api/vl/tag", nil, image)
	if err != nil {
		return TagResult{}, err
	}
	var out struct {
		envelope
		Model  string          `json:"model"`
		Result json.RawMessage `json:"result"`
	}
	if err := DecodeJSON(resp, body, &out); err != nil {
		return TagResult{}, err
	}
	if err := out.err(); err != nil {
		return TagResult{}, err
	}
	r, ok := decodeTags(out.Result)
	return TagResult{Model: out.Model, Raw: string(out.Result), Result: r, Parsed: ok}, nil
}

// ClosetUpload is a closet item sent to the server.
type ClosetUpload struct {
	Owner      string
	Name       string
	Category   string
	Color      string
	Season     string
	Style      string
	Scene      string
	IsFavorite bool
	AutoTag    bool
	Image      FilePart
}

// RemoteClosetItem is the server copy of a closet item.
type RemoteClosetItem struct {
	ID         int64           `json:"id"`
	Owner      string          `json:"owner"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Color      string          `json:"color"`
	Season     string          `json:"season"`
	Style      string          `json:"style"`
	Scene      string          `json:"scene"`
	IsFavorite bool            `json:"isFavorite"`
	ImageURL   string          `json:"imageUrl"`
	Tags       json.RawMessage `json:"tags"`
	TagModel   string          `json:"tagModel"`
	CreatedAt  int64           `json:"createdAt"`
}

// TagResult decodes the tags attached to the item.
func (r RemoteClosetItem) TagResult() (tagging.Result, bool) {
	return decodeTags(r.Tags)
}

// UploadClosetItem posts the item with its photo to /api/closet/items.
func (b *Backend) UploadClosetItem(ctx context.Context, u ClosetUpload) (RemoteClosetItem, error) {
	fields := map[string]string{
		"owner":      u.Owner,
		"name":       u.Name,
		"category":   u.Category,
		"color":      u.Color,
		"season":     u.Season,
		"style":      u.Style,
		"scene":      u.Scene,
		"isFavorite": strconv.FormatBool(u.IsFavorite),
		"autoTag":    strconv.FormatBool(u.AutoTag),
	}
	img := u.Image
	img.Field = "image"
	resp, body, err := b.c.PostMultipart(ctx, "/api/closet/items", fields, img)
	if err != nil {
		return RemoteClosetItem{}, err
	}
	var out struct {
		envelope
		Item RemoteClosetItem `json:"item"`
	}
	if err := DecodeJSON(resp, body, &out); err != nil {
		return RemoteClosetItem{}, err
	}
	if err := out.err(); err != nil {
		return RemoteClosetItem{}, err
	}
	if out.Item.ID == 0 {
		return RemoteClosetItem{}, fmt.Errorf("%w: item without id", ErrMalformed)
	}
	return out.Item, nil
}

// RecommendWeather is the weather part of a recommendation request.
type RecommendWeather struct {
	City string `json:"city"`
	Temp string `json:"temp"`
	Desc string `json:"desc"`
}

// RecommendClosetItem is one closet entry of a recommendation request.
type RecommendClosetItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Season   string `json:"season"`
	Style    string `json:"style"`
	Scene    string `json:"scene"`
}

// RecommendRequest is the body of /api/vl/recommend.
type RecommendRequest struct {
	Weather     RecommendWeather      `json:"weather"`
	Gender      string                `json:"gender"`
	ClosetItems []RecommendClosetItem `json:"closet_items"`
}

type recommendResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Items   []struct {
		Category string `json:"category"`
		Reason   string `json:"reason"`
	} `json:"items"`
	Tips tagging.StringList `json:"tips"`
}

// Recommend asks the server for a recommendation. A result with neither summary nor items
// is reported as ErrMalformed.
func (b *Backend) Recommend(ctx context.Context, req RecommendRequest) (*model.Recommendation, error) {
	resp, body, err := b.c.PostJSON(ctx, "/api/vl/recommend", req)
	if err != nil {
		return nil, err
	}
	var out struct {
		envelope
		Result json.RawMessage `json:"result"`
	}
	if err := DecodeJSON(resp, body, &out); err != nil {
		return nil, err
	}
	if err := out.err(); err != nil {
		return nil, err
	}
	var r recommendResult
	if err := json.Unmarshal(out.Result, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rec := &model.Recommendation{
		Title:   strings.TrimSpace(r.Title),
		Summary: strings.TrimSpace(r.Summary),
		Tips:    r.Tips,
		FromAI:  true,
	}
	for _, it := range r.Items {
		rec.Items = append(rec.Items, model.RecommendItem{
			Category: strings.TrimSpace(it.Category),
			Reason:   strings.TrimSpace(it.Reason),
		})
	}
	if rec.Summary == "" && len(rec.Items) == 0 {
		return nil, fmt.Errorf("%w: empty recommendation", ErrMalformed)
	}
	return rec, nil
}

// TryOnResult is a decoded try-on image.
type TryOnResult struct {
	Image       []byte
	ContentType string
}

type tryOnResponse struct {
	envelope
	ResultImageBase64    string `json:"result_image_base64"`
	ResultImageBase64Alt string `json:"resultImageBase64"`
	ContentType          string `json:"content_type"`
	ContentTypeAlt       string `json:"contentType"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// TryOn sends a person photo and a garment photo to /api/tryon.
func (b *Backend) TryOn(ctx context.Context, person, cloth FilePart) (TryOnResult, error) {
	person.Field = "personImage"
	cloth.Field = "clothImage"
	resp, body, err := b.c.PostMultipart(ctx, "/api/tryon", nil, person, cloth)
	if err != nil {
		return TryOnResult{}, err
	}
	var out tryOnResponse
	if err := DecodeJSON(resp, body, &out); err != nil {
		return TryOnResult{}, err
	}
	if err := out.err(); err != nil {
		return TryOnResult{}, err
	}
	b64 := firstNonEmpty(out.ResultImageBase64, out.ResultImageBase64Alt)
	if b64 == "" {
		return TryOnResult{}, fmt.Errorf("%w: empty result image", ErrMalformed)
	}
	img, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return TryOnResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ct := firstNonEmpty(out.ContentType, out.ContentTypeAlt)
	if ct == "" {
		ct = "image/jpeg"
	}
	return TryOnResult{Image: img, ContentType: ct}, nil
}

// Health пингует /health и возвращает время ответа сервера.
func (b *Backend) Health(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	resp, body, err := b.c.Get(ctx, "/health", nil)
	if err != nil {
		return 0, err
	}
	var out envelope
	if err := DecodeJSON(resp, body, &out); err != nil {
		return 0, err
	}
	if err := out.err(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
