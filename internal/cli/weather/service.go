package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
	"DressCode/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Provider names accepted by WEATHER_PROVIDER.
const (
	ProviderAMap      = "amap"
	ProviderQWeather  = "qweather"
	ProviderOpenMeteo = "openmeteo"
)

// ErrNoKey is returned when the selected provider needs an API key that is not configured.
var ErrNoKey = errors.New("weather provider key is not configured")

// ErrUnknownCity is returned when a city cannot be turned into coordinates.
var ErrUnknownCity = errors.New("unknown city")

// Service picks a provider and applies the city fallbacks.
type Service struct {
	provider string
	amap     *AMap
	amapKey  bool
	qweather *QWeather
	qwKey    bool
	meteo    *OpenMeteo
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewService builds the provider clients from cfg.
func NewService(cfg *config.Config, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	t := cfg.RequestTimeout
	return &Service{
		provider: strings.ToLower(strings.TrimSpace(cfg.WeatherProvider)),
		amap:     NewAMap(api.NewClient(cfg.AMapHost, t), cfg.AMapKey),
		amapKey:  cfg.AMapKey != "",
		qweather: NewQWeather(api.NewClient(cfg.QWeatherHost, t), api.NewClient(cfg.QWeatherGeoHost, t), cfg.QWeatherKey),
		qwKey:    cfg.QWeatherKey != "",
		meteo:    NewOpenMeteo(api.NewClient(cfg.OpenMeteoHost, t), api.NewClient(cfg.OpenMeteoAQHost, t)),
		log:      log.With("component", "weather"),
		now:      time.Now,
	}
}

// Provider returns the active provider name.
func (s *Service) Provider() string {
	switch s.provider {
	case ProviderQWeather, ProviderOpenMeteo:
		return s.provider
	}
	return ProviderAMap
}

func (s *Service) stamp(w model.WeatherSnapshot) model.WeatherSnapshot {
	w.UpdatedAt = s.now().UnixMilli()
	return w
}

// ByCity returns the weather of a city name or adcode. An empty name means DefaultCity.
func (s *Service) ByCity(ctx context.Context, city string) (model.WeatherSnapshot, error) {
	name := cityOrDefault(city)
	switch s.Provider() {
	case ProviderQWeather:
		if !s.qwKey {
			return model.WeatherSnapshot{}, ErrNoKey
		}
		lat, lon, display, err := s.resolve(ctx, name)
		if err != nil {
			return model.WeatherSnapshot{}, err
		}
		return s.byCoords(ctx, display, lat, lon)
	case ProviderOpenMeteo:
		lat, lon, display, err := s.resolve(ctx, name)
		if err != nil {
			return model.WeatherSnapshot{}, err
		}
		return s.byCoords(ctx, display, lat, lon)
	default:
		if !s.amapKey {
			return model.WeatherSnapshot{}, ErrNoKey
		}
		w, err := s.amap.Weather(ctx, CityParam(name))
		if err != nil {
			return model.WeatherSnapshot{}, err
		}
		return s.stamp(w), nil
	}
}

// resolve turns a city name into coordinates: the built-in list first, then QWeather lookup.
func (s *Service) resolve(ctx context.Context, name string) (float64, float64, string, error) {
	if c, ok := LookupCity(name); ok {
		return c.Lat, c.Lon, c.Name, nil
	}
	if !s.qwKey {
		return 0, 0, "", fmt.Errorf("%w: %s", ErrUnknownCity, name)
	}
	loc, err := s.qweather.Lookup(ctx, name)
	if err != nil {
		return 0, 0, "", err
	}
	return loc.Lat, loc.Lon, displayCity(loc.Name), nil
}

// ByLocation returns the weather at the coordinates. With AMap the city comes from reverse
// geocoding; any failure there falls back to ByCity(hint) or the geocoded city name.
func (s *Service) ByLocation(ctx context.Context, hint string, lat, lon float64) (model.WeatherSnapshot, error) {
	if s.Provider() != ProviderAMap {
		if s.Provider() == ProviderQWeather && !s.qwKey {
			return model.WeatherSnapshot{}, ErrNoKey
		}
		return s.byCoords(ctx, displayCity(hint), lat, lon)
	}
	if !s.amapKey {
		return model.WeatherSnapshot{}, ErrNoKey
	}
	place, err := s.amap.Regeo(ctx, lat, lon)
	if err != nil {
		s.log.Warnw("regeo failed, using city hint", "hint", hint, "error", err)
		return s.ByCity(ctx, hint)
	}
	if place.Adcode == "" {
		return s.ByCity(ctx, place.City)
	}
	w, err := s.amap.Weather(ctx, place.Adcode)
	if err != nil {
		s.log.Warnw("weather by adcode failed, using city name", "adcode", place.Adcode, "error", err)
		return s.ByCity(ctx, place.City)
	}
	w.City = place.City
	return s.stamp(w), nil
}

// byCoords fetches weather and air quality concurrently. Air quality is optional.
func (s *Service) byCoords(ctx context.Context, city string, lat, lon float64) (model.WeatherSnapshot, error) {
	var (
		w   model.WeatherSnapshot
		aqi string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if s.Provider() == ProviderQWeather {
			w, err = s.qweather.Now(gctx, lat, lon)
		} else {
			w, err = s.meteo.Current(gctx, lat, lon)
		}
		return err
	})
	g.Go(func() error {
		var (
			a   string
			err error
		)
		if s.Provider() == ProviderQWeather {
			a, err = s.qweather.AirQuality(gctx, lat, lon)
		} else {
			a, err = s.meteo.AirQuality(gctx, lat, lon)
		}
		if err != nil {
			s.log.Debugw("air quality unavailable", "error", err)
			return nil
		}
		aqi = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.WeatherSnapshot{}, err
	}
	w.City = city
	if aqi != "" {
		w.Extra = strings.Replace(w.Extra, "空气质量 --", "空气质量 "+aqi, 1)
	}
	return s.stamp(w), nil
}
