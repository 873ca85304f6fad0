package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/prefs"
	"DressCode/internal/tagging"
)

// WeatherSource returns fresh weather.
type WeatherSource interface {
	ByCity(ctx context.Context, city string) (model.WeatherSnapshot, error)
	ByLocation(ctx context.Context, hint string, lat, lon float64) (model.WeatherSnapshot, error)
}

// ProfileService — профиль текущего пользователя: ник, аватар, пол, город и кэш погоды.
type ProfileService struct {
	user      prefs.User
	weather   WeatherSource
	avatarDir string
	log       *zap.SugaredLogger
}

// NewProfileService создаёт сервис. weather может быть nil.
func NewProfileService(user prefs.User, weather WeatherSource, avatarDir string, log *zap.SugaredLogger) *ProfileService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ProfileService{user: user, weather: weather, avatarDir: avatarDir, log: log}
}

// Profile is a read-only view of the settings.
type Profile struct {
	Login    string
	Nickname string
	Avatar   string
	Gender   string
	City     string
	Weather  model.WeatherSnapshot
}

func (s *ProfileService) Get() Profile {
	return Profile{
		Login:    s.user.Login(),
		Nickname: s.user.Nickname(),
		Avatar:   s.user.Avatar(),
		Gender:   s.user.Gender(),
		City:     s.user.City(),
		Weather:  s.user.Weather(),
	}
}

func (s *ProfileService) Gender() string { return s.user.Gender() }

func (s *ProfileService) SetNickname(nick string) error {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return fmt.Errorf("nickname is empty")
	}
	return s.user.SetNickname(nick)
}

// SetGender принимает MALE, FEMALE или пустую строку (не задан). UNISEX тоже означает «не задан».
func (s *ProfileService) SetGender(g string) error {
	g = strings.TrimSpace(g)
	if g == "" || strings.EqualFold(g, "unset") {
		return s.user.SetGender("")
	}
	norm := tagging.NormalizeGender(g, "")
	switch norm {
	case model.GenderMale, model.GenderFemale:
		return s.user.SetGender(norm)
	case model.GenderUnisex:
		return s.user.SetGender("")
	}
	return fmt.Errorf("unknown gender %q: use MALE, FEMALE or unset", g)
}

// SetAvatar копирует фото в каталог данных и удаляет прошлую копию.
func (s *ProfileService) SetAvatar(path string) error {
	old := s.user.Avatar()
	dst, err := copyImage(path, s.avatarDir)
	if err != nil {
		return err
	}
	if err := s.user.SetAvatar(dst); err != nil {
		_ = removeInside(dst, s.avatarDir)
		return err
	}
	if err := removeInside(old, s.avatarDir); err != nil {
		s.log.Warnw("old avatar not removed", "path", old, "error", err)
	}
	return nil
}

// CachedWeather returns the last stored snapshot.
func (s *ProfileService) CachedWeather() model.WeatherSnapshot {
	return s.user.Weather()
}

// RefreshWeather fetches the weather of city (the saved city when empty) and caches it.
// On failure the cached snapshot is returned with the error.
func (s *ProfileService) RefreshWeather(ctx context.Context, city string) (model.WeatherSnapshot, error) {
	if strings.TrimSpace(city) == "" {
		city = s.user.City()
	}
	if s.weather == nil {
		return s.user.Weather(), fmt.Errorf("weather is not configured")
	}
	w, err := s.weather.ByCity(ctx, city)
	return s.store(w, err)
}

// RefreshWeatherAt is RefreshWeather for coordinates; the saved city is the fallback hint.
func (s *ProfileService) RefreshWeatherAt(ctx context.Context, lat, lon float64) (model.WeatherSnapshot, error) {
	if s.weather == nil {
		return s.user.Weather(), fmt.Errorf("weather is not configured")
	}
	w, err := s.weather.ByLocation(ctx, s.user.City(), lat, lon)
	return s.store(w, err)
}

func (s *ProfileService) store(w model.WeatherSnapshot, err error) (model.WeatherSnapshot, error) {
	if err != nil {
		s.log.Warnw("weather refresh failed, cached value kept", "error", err)
		return s.user.Weather(), err
	}
	if err := s.user.SetWeather(w); err != nil {
		return w, err
	}
	if w.City != "" {
		if err := s.user.SetCity(w.City); err != nil {
			return w, err
		}
	}
	return w, nil
}
