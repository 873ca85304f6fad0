// Package weather fetches current weather and air quality from AMap, QWeather or Open-Meteo
// and condenses them into a model.WeatherSnapshot.
package weather

import (
	"regexp"
	"strings"
)

// DefaultCity is used when no city is given.
const DefaultCity = "杭州"

// CurrentLocation names a place the providers could not resolve.
const CurrentLocation = "当前位置"

// City is one entry of the built-in city list.
type City struct {
	Name   string
	Adcode string
	Lat    float64
	Lon    float64
}

// Cities are the cities offered for manual selection.
var Cities = []City{
	{Name: "北京", Adcode: "110000", Lat: 39.9042, Lon: 116.4074},
	{Name: "上海", Adcode: "310000", Lat: 31.2304, Lon: 121.4737},
	{Name: "广州", Adcode: "440100", Lat: 23.1291, Lon: 113.2644},
	{Name: "深圳", Adcode: "440300", Lat: 22.5431, Lon: 114.0579},
	{Name: "杭州", Adcode: "330100", Lat: 30.2741, Lon: 120.1551},
	{Name: "成都", Adcode: "510100", Lat: 30.5728, Lon: 104.0668},
}

var digitsRe = regexp.MustCompile(`^\d+$`)

// CityNames lists the names of Cities.
func CityNames() []string {
	out := make([]string, 0, len(Cities))
	for _, c := range Cities {
		out = append(out, c.Name)
	}
	return out
}

// NormalizeCityName trims spaces and a trailing "市".
func NormalizeCityName(city string) string {
	c := strings.TrimSpace(city)
	c = strings.TrimSuffix(c, "市")
	return strings.TrimSpace(c)
}

// LookupCity finds name in Cities.
func LookupCity(name string) (City, bool) {
	n := NormalizeCityName(name)
	for _, c := range Cities {
		if c.Name == n {
			return c, true
		}
	}
	return City{}, false
}

// CityParam turns a city name into the value AMap expects: numeric adcodes pass through,
// known names become their adcode, anything else is sent as the name.
func CityParam(city string) string {
	c := NormalizeCityName(city)
	if c == "" || digitsRe.MatchString(c) {
		return c
	}
	if known, ok := LookupCity(c); ok {
		return known.Adcode
	}
	return c
}

// cityOrDefault maps "" and CurrentLocation onto DefaultCity.
func cityOrDefault(city string) string {
	c := NormalizeCityName(city)
	if c == "" || c == CurrentLocation {
		return DefaultCity
	}
	return c
}

func displayCity(city string) string {
	c := NormalizeCityName(city)
	if c == "" {
		return CurrentLocation
	}
	return c
}
