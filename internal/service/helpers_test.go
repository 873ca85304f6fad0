package service

import (
	"DressCode/internal/model"
	"DressCode/internal/repo"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// мок для repo.ClosetRepository
type mockClosetRepo struct{ mock.Mock }

func (m *mockClosetRepo) Create(ctx context.Context, it *model.ClosetItem) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *mockClosetRepo) ListByUser(ctx context.Context, userID int64, category string) ([]model.ClosetItem, error) {
	args := m.Called(ctx, userID, category)
	if v, ok := args.Get(0).([]model.ClosetItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClosetRepo) Get(ctx context.Context, userID, id int64) (*model.ClosetItem, error) {
	args := m.Called(ctx, userID, id)
	if v, ok := args.Get(0).(*model.ClosetItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClosetRepo) Update(ctx context.Context, userID, id int64, p model.ClosetPatch) (*model.ClosetItem, error) {
	args := m.Called(ctx, userID, id, p)
	if v, ok := args.Get(0).(*model.ClosetItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClosetRepo) SetTags(ctx context.Context, userID, id int64, fields model.ClosetPatch, tags datatypes.JSON, tagModel string) (*model.ClosetItem, error) {
	args := m.Called(ctx, userID, id, fields, tags, tagModel)
	if v, ok := args.Get(0).(*model.ClosetItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClosetRepo) Delete(ctx context.Context, userID, id int64) (*model.ClosetItem, error) {
	args := m.Called(ctx, userID, id)
	if v, ok := args.Get(0).(*model.ClosetItem); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ClosetRepository = (*mockClosetRepo)(nil)

// мок для Tagger
type mockTagger struct{ mock.Mock }

func (m *mockTagger) Name() string { return "mock-tagger" }

func (m *mockTagger) Tag(ctx context.Context, image []byte) (TagOutput, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(TagOutput), args.Error(1)
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
