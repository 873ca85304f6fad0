package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"DressCode/internal/cli/model"
)

type tryOnMock struct{ mock.Mock }

func (m *tryOnMock) TryOn(ctx context.Context, person, cloth []byte, personName, clothName string) ([]byte, string, error) {
	args := m.Called(person, cloth, personName, clothName)
	img, _ := args.Get(0).([]byte)
	return img, args.String(1), args.Error(2)
}

func newSwap(t *testing.T, e *testEnv, tr TryOner) (*SwapService, string) {
	t.Helper()
	dir := filepath.Join(e.dir, ResultsDirName)
	s := NewSwapService(e.jobs, e.closet, e.outfits, tr, dir, nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, dir
}

func TestSwapService_ClosetItemSuccess(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	garment := writeFile(t, e.dir, "g.jpg", []byte("garment"))
	itemID, err := e.closet.Insert(ctx, model.ClosetItem{Name: "白衬衫", Category: "上衣", ImageURI: garment})
	require.NoError(t, err)
	person := writeFile(t, e.dir, "me.jpg", []byte("person"))

	m := &tryOnMock{}
	m.On("TryOn", []byte("person"), []byte("garment"), "me.jpg", "g.jpg").Return([]byte("result-png"), "image/png", nil).Once()
	s, dir := newSwap(t, e, m)

	job, err := s.Run(ctx, SwapRequest{PersonImage: person, SourceType: model.SourceCloset, SourceID: itemID})
	require.NoError(t, err)
	m.AssertExpectations(t)

	assert.Equal(t, model.StatusDone, job.Status)
	assert.Equal(t, filepath.Join(dir, "result_1700000000000.png"), job.ResultImageURI)
	assert.Equal(t, "白衬衫", job.SourceTitle)
	assert.Equal(t, int64(0), job.OutfitID)
	b, err := os.ReadFile(job.ResultImageURI)
	require.NoError(t, err)
	assert.Equal(t, "result-png", string(b))

	stored, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, stored.Status)

	require.NoError(t, s.Delete(ctx, job.ID))
	_, err = os.Stat(job.ResultImageURI)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(person)
	assert.NoError(t, err, "person photo is never removed")
}

func TestSwapService_FailureKeepsJob(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	person := writeFile(t, e.dir, "me.jpg", []byte("person"))
	cloth := writeFile(t, e.dir, "dress.jpg", []byte("dress"))

	m := &tryOnMock{}
	m.On("TryOn", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, "", errors.New("model busy"))
	s, _ := newSwap(t, e, m)

	job, err := s.Run(ctx, SwapRequest{PersonImage: person, SourceType: model.SourceCustom, GarmentImage: cloth})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model busy")
	require.NotNil(t, job)
	assert.Equal(t, model.StatusFailed, job.Status)
	assert.Equal(t, "dress", job.SourceTitle)

	hist := recv(t, s.History(ctx))
	require.Len(t, hist, 1)
	assert.Equal(t, model.StatusFailed, hist[0].Status)
	assert.Empty(t, hist[0].ResultImageURI)
}

func TestSwapService_OutfitPlaceholder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	outfits := NewOutfitService(e.outfits, e.favs, e.syncQ, nil)
	_, err := outfits.EnsureSeeded(ctx)
	require.NoError(t, err)
	cards := recv(t, outfits.Browse(ctx, model.OutfitFilter{Query: "法式"}))
	require.Len(t, cards, 1)

	person := writeFile(t, e.dir, "me.jpg", []byte("person"))
	m := &tryOnMock{}
	s, _ := newSwap(t, e, m)

	job, err := s.Run(ctx, SwapRequest{PersonImage: person, SourceType: model.SourceOutfit, SourceID: cards[0].ID})
	require.NoError(t, err)
	m.AssertNotCalled(t, "TryOn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.StatusPlaceholder, job.Status)
	assert.Equal(t, person, job.ResultImageURI)
	assert.Equal(t, cards[0].ID, job.OutfitID)
	assert.Equal(t, "法式连衣裙", job.SourceTitle)

	require.NoError(t, s.Delete(ctx, job.ID))
	_, err = s.Get(ctx, job.ID)
	assert.Error(t, err)
}

func TestSwapService_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	person := writeFile(t, e.dir, "me.jpg", []byte("person"))
	noPhoto, err := e.closet.Insert(ctx, model.ClosetItem{Name: "x", Category: "上衣"})
	require.NoError(t, err)

	s, _ := newSwap(t, e, nil)
	_, err = s.Run(ctx, SwapRequest{SourceType: model.SourceCustom, GarmentImage: person})
	assert.Error(t, err, "person photo required")
	_, err = s.Run(ctx, SwapRequest{PersonImage: filepath.Join(e.dir, "missing.jpg"), SourceType: model.SourceCustom, GarmentImage: person})
	assert.Error(t, err)
	_, err = s.Run(ctx, SwapRequest{PersonImage: person, SourceType: "PHOTO"})
	assert.Error(t, err)
	_, err = s.Run(ctx, SwapRequest{PersonImage: person, SourceType: model.SourceCloset, SourceID: noPhoto})
	assert.True(t, err != nil && strings.Contains(err.Error(), "no photo"))
	_, err = s.Run(ctx, SwapRequest{PersonImage: person, SourceType: model.SourceCustom, GarmentImage: person})
	assert.ErrorIs(t, err, ErrNoBackend)
}
