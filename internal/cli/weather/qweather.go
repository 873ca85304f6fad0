package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
)

// QWeather is the client of the QWeather weather and geo APIs.
type QWeather struct {
	weather *api.Client
	geo     *api.Client
	key     string
}

func NewQWeather(weather, geo *api.Client, key string) *QWeather {
	return &QWeather{weather: weather, geo: geo, key: key}
}

func coords(lat, lon float64) string {
	return strconv.FormatFloat(lon, 'f', 2, 64) + "," + strconv.FormatFloat(lat, 'f', 2, 64)
}

func (q *QWeather) get(ctx context.Context, c *api.Client, path string, v url.Values, out any) error {
	v.Set("key", q.key)
	v.Set("lang", "zh")
	resp, body, err := c.Get(ctx, path, v)
	if err != nil {
		return err
	}
	return api.DecodeJSON(resp, body, out)
}

// Now returns current weather at the coordinates. City is left empty.
func (q *QWeather) Now(ctx context.Context, lat, lon float64) (model.WeatherSnapshot, error) {
	var out struct {
		Code string `json:"code"`
		Now  *struct {
			Temp      string `json:"temp"`
			Text      string `json:"text"`
			Humidity  string `json:"humidity"`
			WindDir   string `json:"windDir"`
			WindScale string `json:"windScale"`
		} `json:"now"`
	}
	if err := q.get(ctx, q.weather, "v7/weather/now", url.Values{"location": {coords(lat, lon)}, "unit": {"m"}}, &out); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("qweather now: %w", err)
	}
	if out.Code != "200" || out.Now == nil {
		return model.WeatherSnapshot{}, fmt.Errorf("qweather now failed: code=%s", out.Code)
	}
	return model.WeatherSnapshot{
		Temp:  formatTemp(out.Now.Temp),
		Desc:  descOrDefault(out.Now.Text),
		Extra: extra("", out.Now.Humidity, out.Now.WindDir, out.Now.WindScale),
	}, nil
}

// Location is a QWeather city lookup hit.
type Location struct {
	Name string
	ID   string
	Lat  float64
	Lon  float64
}

// Lookup resolves a city name into coordinates.
func (q *QWeather) Lookup(ctx context.Context, name string) (Location, error) {
	var out struct {
		Code     string `json:"code"`
		Location []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
			Lat  string `json:"lat"`
			Lon  string `json:"lon"`
		} `json:"location"`
	}
	if err := q.get(ctx, q.geo, "v2/city/lookup", url.Values{"location": {name}, "number": {"1"}}, &out); err != nil {
		return Location{}, fmt.Errorf("qweather lookup: %w", err)
	}
	if out.Code != "200" || len(out.Location) == 0 {
		return Location{}, fmt.Errorf("qweather lookup %q: code=%s", name, out.Code)
	}
	l := out.Location[0]
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(l.Lat), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(l.Lon), 64)
	if err1 != nil || err2 != nil {
		return Location{}, fmt.Errorf("qweather lookup %q: %w", name, api.ErrMalformed)
	}
	return Location{Name: l.Name, ID: l.ID, Lat: lat, Lon: lon}, nil
}

// AirQuality returns "AQI category", e.g. "42 优".
func (q *QWeather) AirQuality(ctx context.Context, lat, lon float64) (string, error) {
	var out struct {
		Code string `json:"code"`
		Now  *struct {
			AQI      string `json:"aqi"`
			Category string `json:"category"`
		} `json:"now"`
	}
	if err := q.get(ctx, q.weather, "v7/air/now", url.Values{"location": {coords(lat, lon)}}, &out); err != nil {
		return "", fmt.Errorf("qweather air: %w", err)
	}
	if out.Code != "200" || out.Now == nil {
		return "", fmt.Errorf("qweather air failed: code=%s", out.Code)
	}
	return strings.TrimSpace(out.Now.AQI + " " + out.Now.Category), nil
}
