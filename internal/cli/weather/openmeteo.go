package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
)

// OpenMeteo is the keyless client of api.open-meteo.com and its air quality API.
type OpenMeteo struct {
	weather *api.Client
	air     *api.Client
}

func NewOpenMeteo(weather, air *api.Client) *OpenMeteo {
	return &OpenMeteo{weather: weather, air: air}
}

func latLon(lat, lon float64) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', 4, 64)},
	}
}

// Current returns the current temperature and WMO description. City is left empty.
func (o *OpenMeteo) Current(ctx context.Context, lat, lon float64) (model.WeatherSnapshot, error) {
	q := latLon(lat, lon)
	q.Set("current", "temperature_2m,weather_code,is_day")
	q.Set("timezone", "auto")
	resp, body, err := o.weather.Get(ctx, "v1/forecast", q)
	if err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("open-meteo forecast: %w", err)
	}
	var out struct {
		Current *struct {
			Temperature *float64 `json:"temperature_2m"`
			WeatherCode *int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := api.DecodeJSON(resp, body, &out); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("open-meteo forecast: %w", err)
	}
	if out.Current == nil || out.Current.Temperature == nil {
		return model.WeatherSnapshot{}, fmt.Errorf("open-meteo forecast: %w", api.ErrMalformed)
	}
	desc := "天气"
	if out.Current.WeatherCode != nil {
		desc = wmoText(*out.Current.WeatherCode)
	}
	return model.WeatherSnapshot{
		Temp:  formatTempFloat(*out.Current.Temperature),
		Desc:  desc,
		Extra: extra("", "", "", ""),
	}, nil
}

// AirQuality returns the US AQI as text.
func (o *OpenMeteo) AirQuality(ctx context.Context, lat, lon float64) (string, error) {
	q := latLon(lat, lon)
	q.Set("current", "us_aqi,pm2_5")
	resp, body, err := o.air.Get(ctx, "v1/air-quality", q)
	if err != nil {
		return "", fmt.Errorf("open-meteo air: %w", err)
	}
	var out struct {
		Current *struct {
			USAQI *int `json:"us_aqi"`
		} `json:"current"`
	}
	if err := api.DecodeJSON(resp, body, &out); err != nil {
		return "", fmt.Errorf("open-meteo air: %w", err)
	}
	if out.Current == nil || out.Current.USAQI == nil {
		return "", fmt.Errorf("open-meteo air: %w", api.ErrMalformed)
	}
	return strconv.Itoa(*out.Current.USAQI), nil
}
