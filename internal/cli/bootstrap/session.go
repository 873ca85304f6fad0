// Package bootstrap wires the CLI: settings, the user's database, repositories and services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/prefs"
	fsrepo "DressCode/internal/cli/repo/fs"
	reposqlite "DressCode/internal/cli/repo/sqlite"
	"DressCode/internal/cli/service"
	"DressCode/internal/cli/weather"
	"DressCode/internal/cli/worker"
	"DressCode/internal/config"
)

// Каталоги внутри данных пользователя.
const (
	closetImagesDir = "closet_images"
	avatarDir       = "avatar"
)

// Backend returns the server client, or nil in offline mode.
func Backend(cfg *config.Config) *api.Backend {
	if cfg.Offline || cfg.ServerURL == "" {
		return nil
	}
	return api.NewBackend(api.NewClient(cfg.ServerURL, cfg.RequestTimeout))
}

// userDBPath — файл БД пользователя; cfg.ClientDBPath переопределяет базовый каталог.
func userDBPath(cfg *config.Config, login string) (string, error) {
	if cfg.ClientDBPath != "" {
		if login == "" {
			return "", errors.New("empty login for user store")
		}
		return filepath.Join(cfg.ClientDBPath, login, "dresscode.sqlite"), nil
	}
	return reposqlite.UserDBPath(login)
}

// KeyDir returns the directory holding the token key of login: the folder of its database.
func KeyDir(cfg *config.Config) func(login string) (string, error) {
	return func(login string) (string, error) {
		p, err := userDBPath(cfg, login)
		if err != nil {
			return "", err
		}
		return filepath.Dir(p), nil
	}
}

// OpenAuth открывает настройки и сервис аутентификации. Для login/register/logout БД не нужна.
func OpenAuth(cfg *config.Config, log *zap.SugaredLogger) (service.AuthService, *prefs.Prefs, error) {
	kv, err := fsrepo.OpenPrefs(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open settings: %w", err)
	}
	p, err := prefs.New(kv)
	if err != nil {
		return nil, nil, fmt.Errorf("migrate settings: %w", err)
	}
	return service.NewAuthService(p, Backend(cfg), KeyDir(cfg), log), p, nil
}

// Session — всё, что нужно командам для работы от имени текущего пользователя.
type Session struct {
	Login   string
	DataDir string
	Prefs   *prefs.Prefs
	Auth    service.AuthService
	DB      *reposqlite.DB

	Closet    *service.ClosetService
	Outfits   *service.OutfitService
	Swap      *service.SwapService
	Recommend *service.RecommendService
	Profile   *service.ProfileService

	syncQ   *worker.Queue
	closers []func() error
	log     *zap.SugaredLogger
}

// Open открывает сессию текущего пользователя: БД (с миграциями), репозитории и сервисы.
// Ошибка миграции фатальна для сессии.
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Session, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	auth, p, err := OpenAuth(cfg, log)
	if err != nil {
		return nil, err
	}
	login, err := auth.CurrentUser()
	if err != nil {
		return nil, err
	}
	log = log.With("user", login)

	path, err := userDBPath(cfg, login)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := reposqlite.Open(path, log)
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate user db: %w", err)
	}

	s := &Session{
		Login:   login,
		DataDir: filepath.Join(cfg.DataDir, "users", login),
		Prefs:   p,
		Auth:    auth,
		DB:      db,
		log:     log,
	}
	if err := s.wire(ctx, cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) wire(ctx context.Context, cfg *config.Config) error {
	closet, err := reposqlite.NewClosetRepository(s.DB, s.Login)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, closet.Close)
	outfits, err := reposqlite.NewOutfitRepository(s.DB, s.Login)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, outfits.Close)
	favs, err := reposqlite.NewFavoriteRepository(s.DB, s.Login)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, favs.Close)
	jobs, err := reposqlite.NewSwapJobRepository(s.DB, s.Login)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, jobs.Close)

	s.syncQ = worker.NewQueue("sync", 32, s.log)

	backend := Backend(cfg)
	var (
		tryOn       service.TryOner
		recommender service.Recommender
	)
	if backend != nil {
		tok, err := s.Auth.ServerToken(s.Login)
		if err != nil {
			s.log.Warnw("server token unreadable", "error", err)
		}
		backend = backend.WithToken(tok)
		tryOn = service.BackendTryOn{Backend: backend}
		recommender = backend
	}

	s.Closet = service.NewClosetService(closet, backend, s.syncQ, service.ClosetOptions{
		Owner:    s.Login,
		ImageDir: filepath.Join(s.DataDir, closetImagesDir),
		Upload:   cfg.SyncUpload,
	}, s.log)
	s.Outfits = service.NewOutfitService(outfits, favs, s.syncQ, s.log)
	s.Swap = service.NewSwapService(jobs, closet, outfits, tryOn, filepath.Join(s.DataDir, service.ResultsDirName), s.log)
	s.Recommend = service.NewRecommendService(recommender, s.log)
	s.Profile = service.NewProfileService(s.Prefs.User(s.Login), weather.NewService(cfg, s.log), filepath.Join(s.DataDir, avatarDir), s.log)

	if _, err := s.Outfits.EnsureSeeded(ctx); err != nil {
		return err
	}
	return nil
}

// Close дожидается фоновой синхронизации, затем закрывает репозитории и БД.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.syncQ != nil {
		s.syncQ.Close()
		s.syncQ = nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
		s.DB = nil
	}
	return errors.Join(errs...)
}
