package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"DressCode/internal/cli/api"
	"DressCode/internal/cli/model"
)

// AMap is the client of restapi.amap.com.
type AMap struct {
	c   *api.Client
	key string
}

func NewAMap(c *api.Client, key string) *AMap {
	return &AMap{c: c, key: key}
}

type amapWeatherResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	InfoCode string `json:"infocode"`
	Count    string `json:"count"`
	Lives    []struct {
		City          string `json:"city"`
		Weather       string `json:"weather"`
		Temperature   string `json:"temperature"`
		Humidity      string `json:"humidity"`
		WindDirection string `json:"winddirection"`
		WindPower     string `json:"windpower"`
		ReportTime    string `json:"reporttime"`
	} `json:"lives"`
}

// Weather returns live weather for an adcode or city name.
func (a *AMap) Weather(ctx context.Context, cityParam string) (model.WeatherSnapshot, error) {
	q := url.Values{"key": {a.key}, "city": {cityParam}, "extensions": {"base"}}
	resp, body, err := a.c.Get(ctx, "v3/weather/weatherInfo", q)
	if err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("amap weather: %w", err)
	}
	var out amapWeatherResponse
	if err := api.DecodeJSON(resp, body, &out); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("amap weather: %w", err)
	}
	if out.Status != "1" {
		msg := "amap weather failed"
		if out.Info != "" {
			msg += ": " + out.Info
		}
		if out.InfoCode != "" {
			msg += " (" + out.InfoCode + ")"
		}
		return model.WeatherSnapshot{}, errors.New(msg)
	}
	if len(out.Lives) == 0 {
		return model.WeatherSnapshot{}, fmt.Errorf("amap weather: no data for city=%s count=%s", cityParam, out.Count)
	}
	live := out.Lives[0]
	return model.WeatherSnapshot{
		City:  displayCity(live.City),
		Temp:  formatTemp(live.Temperature),
		Desc:  descOrDefault(live.Weather),
		Extra: extra("", live.Humidity, live.WindDirection, live.WindPower),
	}, nil
}

// flexString decodes a JSON string or the first element of a string array.
// AMap sends [] instead of "" for municipalities.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		if len(list) > 0 {
			*f = flexString(list[0])
		} else {
			*f = ""
		}
		return nil
	}
	*f = ""
	return nil
}

type amapRegeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode *struct {
		AddressComponent *struct {
			City     flexString `json:"city"`
			Province flexString `json:"province"`
			District flexString `json:"district"`
			Adcode   flexString `json:"adcode"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

// Place is a reverse geocoding result.
type Place struct {
	City   string
	Adcode string
}

// Regeo resolves coordinates into a city name and adcode.
func (a *AMap) Regeo(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{
		"key":        {a.key},
		"location":   {fmt.Sprintf("%.6f,%.6f", lon, lat)},
		"extensions": {"base"},
		"radius":     {"1000"},
	}
	resp, body, err := a.c.Get(ctx, "v3/geocode/regeo", q)
	if err != nil {
		return Place{}, fmt.Errorf("amap regeo: %w", err)
	}
	var out amapRegeoResponse
	if err := api.DecodeJSON(resp, body, &out); err != nil {
		return Place{}, fmt.Errorf("amap regeo: %w", err)
	}
	if out.Status != "1" || out.Regeocode == nil || out.Regeocode.AddressComponent == nil {
		return Place{}, fmt.Errorf("amap regeo failed: %s", out.Info)
	}
	ac := out.Regeocode.AddressComponent
	city := strings.TrimSpace(string(ac.City))
	if city == "" {
		city = strings.TrimSpace(string(ac.District))
	}
	if city == "" {
		city = strings.TrimSpace(string(ac.Province))
	}
	return Place{
		City:   strings.TrimSpace(strings.ReplaceAll(displayCity(city), "市", "")),
		Adcode: strings.TrimSpace(string(ac.Adcode)),
	}, nil
}
