package handlers_test

import (
	"DressCode/internal/config"
	"DressCode/internal/handlers"
	"DressCode/internal/middleware"
	"DressCode/internal/model"
	"DressCode/internal/repo"
	"DressCode/internal/service"
	"DressCode/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

const testSecret = "test-secret"

type testEnv struct {
	router   http.Handler
	cfg      *config.Config
	users    *mockUserRepo
	dir      string
	pingErr  error
	provider service.Providers
}

type envOption func(*testEnv)

func withProviders(p service.Providers) envOption {
	return func(e *testEnv) { e.provider = p }
}

// newTestEnv собирает роутер на SQLite во временной папке и локальном хранилище.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AuthSecret:      testSecret,
		UploadMaxSizeMB: 1,
		PublicBaseURL:   "http://files.test",
		TagProvider:     "heuristic",
		TryOnProvider:   "mock",
	}
	logger := zap.NewNop().Sugar()

	db, err := repo.InitDB(dir + "/server.db")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := storage.NewLocalStore(dir+"/uploads", cfg.PublicBaseURL)
	require.NoError(t, err)

	env := &testEnv{
		cfg:   cfg,
		users: new(mockUserRepo),
		dir:   dir,
		provider: service.Providers{
			Tagger:      service.HeuristicTagger{},
			Recommender: service.HeuristicRecommender{},
			TryOn:       service.MockTryOn{},
		},
	}
	for _, o := range opts {
		o(env)
	}
	h := handlers.NewHandler(handlers.Deps{
		Users:     service.NewUserService(env.users),
		Closet:    service.NewClosetService(repo.NewClosetRepository(db), store, env.provider.Tagger, logger),
		Providers: env.provider,
		Store:     store,
		Ping: func(ctx context.Context) error {
			if env.pingErr != nil {
				return env.pingErr
			}
			return sqlDB.PingContext(ctx)
		},
	}, logger, cfg)
	env.router = h.Router
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func addAuth(t *testing.T, req *http.Request, userID int64) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, userID, testSecret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, _ = w.Write(f.data)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
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

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
