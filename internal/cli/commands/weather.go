package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/viewstate"
	"DressCode/internal/config"
)

func printWeather(w model.WeatherSnapshot) {
	if w.Empty() {
		fmt.Fprintln(Out, "Погода: нет данных")
		return
	}
	fmt.Fprintf(Out, "%s %s · %s\n", w.City, w.Temp, w.Desc)
	if w.Extra != "" {
		fmt.Fprintf(Out, "  %s\n", w.Extra)
	}
	if w.UpdatedAt > 0 {
		fmt.Fprintf(Out, "  updated: %s\n", time.UnixMilli(w.UpdatedAt).Format("2006-01-02 15:04"))
	}
}

type weatherCmd struct{}

func (weatherCmd) Name() string { return "weather" }
func (weatherCmd) Description() string {
	return "Обновить погоду по городу или координатам"
}
func (weatherCmd) Usage() string { return "weather [--lat <lat> --lon <lon>] [city]" }

func (weatherCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("weather")
	lat := fs.Float64("lat", math.NaN(), "широта")
	lon := fs.Float64("lon", math.NaN(), "долгота")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}
	byCoords := !math.IsNaN(*lat) || !math.IsNaN(*lon)
	if byCoords && (math.IsNaN(*lat) || math.IsNaN(*lon) || fs.NArg() != 0) {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	var w model.WeatherSnapshot
	if byCoords {
		w, err = s.Profile.RefreshWeatherAt(ctx, *lat, *lon)
	} else {
		w, err = s.Profile.RefreshWeather(ctx, fs.Arg(0))
	}
	if err != nil {
		// показываем последнее сохранённое значение
		fmt.Fprintf(Out, "Не удалось обновить погоду: %v\n", err)
		if w.Empty() {
			return err
		}
	}
	printWeather(w)
	return nil
}

type homeCmd struct{}

func (homeCmd) Name() string { return "home" }
func (homeCmd) Description() string {
	return "Рекомендация на сегодня по погоде и гардеробу"
}
func (homeCmd) Usage() string { return "home [--refresh] [city]" }

func (homeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("home")
	refresh := fs.Bool("refresh", false, "сначала обновить погоду")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	w := s.Profile.CachedWeather()
	if *refresh || fs.NArg() == 1 || w.Empty() {
		fresh, err := s.Profile.RefreshWeather(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(Out, "Не удалось обновить погоду: %v\n", err)
		}
		w = fresh
	}

	st, err := viewstate.NewHome(s.Closet, s.Recommend, s.Profile.Gender()).Snapshot(ctx, w)
	if err != nil {
		return err
	}
	printWeather(st.Weather)
	fmt.Fprintln(Out)
	printRecommendation(st.Recommendation)
	if st.Err != nil {
		fmt.Fprintf(Out, "(сервер недоступен, показана локальная рекомендация: %v)\n", st.Err)
	}
	return nil
}

func printRecommendation(r model.Recommendation) {
	title := r.Title
	if r.FromAI {
		title += " (AI)"
	}
	fmt.Fprintln(Out, title)
	if r.Summary != "" {
		fmt.Fprintf(Out, "  %s\n", r.Summary)
	}
	for _, it := range r.Items {
		line := "  - " + it.Name
		if it.ItemID > 0 {
			line += fmt.Sprintf(" (#%d)", it.ItemID)
		}
		fmt.Fprintln(Out, line)
		if it.Reason != "" {
			fmt.Fprintf(Out, "      %s\n", it.Reason)
		}
	}
	if len(r.Tips) > 0 {
		fmt.Fprintf(Out, "  Tips: %s\n", strings.Join(r.Tips, "; "))
	}
}

func init() {
	RegisterCmd(weatherCmd{})
	RegisterCmd(homeCmd{})
}
