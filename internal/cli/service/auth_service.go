package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/crypto"
	"DressCode/internal/cli/prefs"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUserExists         = errors.New("user already exists")
	ErrNotLoggedIn        = errors.New("not logged in: run login or register")
)

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Register создаёт локальный аккаунт и сразу входит в него.
	Register(ctx context.Context, login, password, nickname string) error

	// Login логирование пользователя.
	Login(ctx context.Context, login, password string) error

	// Logout очищает локальный контекст аутентификации.
	Logout() error

	// CurrentUser возвращает логин текущего пользователя, если он установлен.
	CurrentUser() (string, error)

	// ListUsers возвращает все локальные аккаунты.
	ListUsers() []string

	// ServerToken возвращает расшифрованный токен сервера или "".
	ServerToken(login string) (string, error)
}

// AuthServiceLocal хранит аккаунты в prefs. Сервер используется по возможности:
// его ошибки не мешают локальному входу.
type AuthServiceLocal struct {
	prefs   *prefs.Prefs
	backend *api.Backend
	// keyDir возвращает каталог с ключом шифрования токена пользователя.
	keyDir func(login string) (string, error)
	log    *zap.SugaredLogger
}

// NewAuthService создаёт сервис. backend может быть nil.
func NewAuthService(p *prefs.Prefs, backend *api.Backend, keyDir func(login string) (string, error), log *zap.SugaredLogger) AuthService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AuthServiceLocal{prefs: p, backend: backend, keyDir: keyDir, log: log}
}

// ValidateLogin checks the local account name.
func ValidateLogin(login string) error {
	if !loginPattern.MatchString(login) {
		return fmt.Errorf("login must be 3-32 letters, digits, '.', '_' or '-'")
	}
	return nil
}

func (s *AuthServiceLocal) Register(ctx context.Context, login, password, nickname string) error {
	login = strings.TrimSpace(login)
	if err := ValidateLogin(login); err != nil {
		return err
	}
	if len(password) < 4 {
		return errors.New("password must be at least 4 characters")
	}
	if s.prefs.HasUser(login) {
		return ErrUserExists
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	if strings.TrimSpace(nickname) == "" {
		nickname = login
	}
	if err := s.prefs.CreateUser(login, hash, nickname); err != nil {
		return err
	}
	s.log.Infow("local user registered", "login", login)

	if s.backend != nil {
		tok, err := s.backend.Register(ctx, login, password)
		if err != nil {
			s.log.Warnw("server register failed", "login", login, "error", err)
			return nil
		}
		s.storeToken(login, tok)
	}
	return nil
}

func (s *AuthServiceLocal) Login(ctx context.Context, login, password string) error {
	login = strings.TrimSpace(login)
	u := s.prefs.User(login)
	stored := u.PasswordHash()
	if !s.prefs.HasUser(login) || stored == "" {
		_ = s.prefs.SetSession("", false)
		return ErrInvalidCredentials
	}
	upgrade, err := crypto.CheckPassword(stored, password)
	if err != nil {
		_ = s.prefs.SetSession("", false)
		if errors.Is(err, crypto.ErrMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}
	if upgrade {
		hash, err := crypto.HashPassword(password)
		if err != nil {
			return err
		}
		if err := u.SetPasswordHash(hash); err != nil {
			return err
		}
		s.log.Infow("password hash upgraded", "login", login)
	}
	if err := s.prefs.SetSession(login, true); err != nil {
		return err
	}

	if s.backend != nil {
		tok, err := s.backend.Login(ctx, login, password)
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == 401 {
			// аккаунт мог появиться до подключения сервера
			tok, err = s.backend.Register(ctx, login, password)
		}
		if err != nil {
			s.log.Warnw("server login failed", "login", login, "error", err)
			return nil
		}
		s.storeToken(login, tok)
	}
	return nil
}

func (s *AuthServiceLocal) Logout() error {
	return s.prefs.SetSession("", false)
}

func (s *AuthServiceLocal) CurrentUser() (string, error) {
	login := s.prefs.CurrentUser()
	if login == "" || !s.prefs.LoggedIn() {
		return "", ErrNotLoggedIn
	}
	return login, nil
}

func (s *AuthServiceLocal) ListUsers() []string {
	return s.prefs.Usernames()
}

func (s *AuthServiceLocal) storeToken(login, token string) {
	if s.keyDir == nil || token == "" {
		return
	}
	dir, err := s.keyDir(login)
	if err == nil {
		var key []byte
		key, err = crypto.LoadOrCreateKey(dir)
		if err == nil {
			var sealed string
			sealed, err = crypto.Seal(token, key)
			if err == nil {
				err = s.prefs.User(login).SetServerToken(sealed)
			}
		}
	}
	if err != nil {
		s.log.Warnw("server token not saved", "login", login, "error", err)
	}
}

func (s *AuthServiceLocal) ServerToken(login string) (string, error) {
	sealed := s.prefs.User(login).ServerToken()
	if sealed == "" || s.keyDir == nil {
		return "", nil
	}
	dir, err := s.keyDir(login)
	if err != nil {
		return "", err
	}
	key, err := crypto.LoadOrCreateKey(dir)
	if err != nil {
		return "", err
	}
	return crypto.Open(sealed, key)
}
