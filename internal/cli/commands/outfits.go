package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/viewstate"
	"DressCode/internal/config"
)

type outfitFlags struct {
	query, gender, style, season, scene, weather *string
	all                                          *bool
}

func bindOutfitFlags(fs *flag.FlagSet) outfitFlags {
	return outfitFlags{
		query:   fs.String("q", "", "поиск по названию и тегам"),
		gender:  fs.String("gender", "", "MALE, FEMALE или UNISEX"),
		style:   fs.String("style", "", "стиль"),
		season:  fs.String("season", "", "сезон"),
		scene:   fs.String("scene", "", "сценарий"),
		weather: fs.String("weather", "", "погода"),
		all:     fs.Bool("all", false, "не фильтровать по полу из профиля"),
	}
}

func (f outfitFlags) toQuery() viewstate.OutfitQuery {
	return viewstate.OutfitQuery{
		OutfitFilter: model.OutfitFilter{
			Query:   *f.query,
			Gender:  strings.ToUpper(strings.TrimSpace(*f.gender)),
			Style:   *f.style,
			Season:  *f.season,
			Scene:   *f.scene,
			Weather: *f.weather,
		},
		AllGenders: *f.all,
	}
}

type outfitsCmd struct{}

func (outfitsCmd) Name() string        { return "outfits" }
func (outfitsCmd) Description() string { return "Каталог образов с фильтрами" }
func (outfitsCmd) Usage() string {
	return "outfits [--q ..] [--gender ..] [--style ..] [--season ..] [--scene ..] [--weather ..] [--all]"
}

func (outfitsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("outfits")
	f := bindOutfitFlags(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	rows, err := viewstate.NewOutfitBrowser(s.Outfits, s.Profile.Gender()).Snapshot(ctx, f.toQuery())
	if err != nil {
		return err
	}
	printOutfitRows(rows)
	return nil
}

// parseQueryLine разбирает строку вида "style:休闲 season:春 белая рубашка".
// Токены key:value меняют фильтр, остальное становится текстом поиска.
func parseQueryLine(line string, base viewstate.OutfitQuery) viewstate.OutfitQuery {
	q := base
	var text []string
	for _, tok := range strings.Fields(line) {
		k, v, ok := strings.Cut(tok, ":")
		if !ok {
			text = append(text, tok)
			continue
		}
		switch strings.ToLower(k) {
		case "gender":
			q.Gender = strings.ToUpper(v)
		case "style":
			q.Style = v
		case "season":
			q.Season = v
		case "scene":
			q.Scene = v
		case "weather":
			q.Weather = v
		default:
			text = append(text, tok)
		}
	}
	q.Query = strings.Join(text, " ")
	return q
}

type browseCmd struct{}

func (browseCmd) Name() string { return "browse" }
func (browseCmd) Description() string {
	return "Интерактивный поиск: каждая строка ввода задаёт новый запрос"
}
func (browseCmd) Usage() string { return "browse [outfits flags]" }

func (browseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("browse")
	f := bindOutfitFlags(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	base := f.toQuery()
	queries := make(chan viewstate.OutfitQuery)
	rows := viewstate.NewOutfitBrowser(s.Outfits, s.Profile.Gender()).Rows(sub, queries)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-sub.Done():
				return
			}
		}
	}()

	send := func(q viewstate.OutfitQuery) bool {
		select {
		case queries <- q:
			return true
		case <-sub.Done():
			return false
		}
	}
	if !send(base) {
		return nil
	}
	// следующую строку читаем только после того, как напечатан ответ на предыдущий запрос
	pending := true
	for {
		var next <-chan string
		if !pending {
			next = lines
		}
		select {
		case <-sub.Done():
			return nil
		case line, ok := <-next:
			if !ok {
				return nil
			}
			if !send(parseQueryLine(line, base)) {
				return nil
			}
			pending = true
		case r, ok := <-rows:
			if !ok {
				return nil
			}
			fmt.Fprintln(Out, "---")
			printOutfitRows(r)
			pending = false
		}
	}
}

type outfitFavCmd struct{}

func (outfitFavCmd) Name() string        { return "outfit-fav" }
func (outfitFavCmd) Description() string { return "Переключить избранное для образа" }
func (outfitFavCmd) Usage() string       { return "outfit-fav <id>" }

func (outfitFavCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()
	fav, err := s.Outfits.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%d favorite: %t\n", id, fav)
	return nil
}

type favoritesCmd struct{}

func (favoritesCmd) Name() string        { return "favorites" }
func (favoritesCmd) Description() string { return "Избранные образы" }
func (favoritesCmd) Usage() string       { return "favorites" }

func (favoritesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()
	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	cards, err := live.First(sub, s.Outfits.Favorites(sub))
	if err != nil {
		return err
	}
	printOutfitRows(viewstate.OutfitRows(cards))
	return nil
}

type outfitsRetagCmd struct{}

func (outfitsRetagCmd) Name() string { return "outfits-retag" }
func (outfitsRetagCmd) Description() string {
	return "Перетегировать каталог эвристикой"
}
func (outfitsRetagCmd) Usage() string { return "outfits-retag [--overwrite]" }

func (outfitsRetagCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("outfits-retag")
	overwrite := fs.Bool("overwrite", false, "заменить уже заполненные поля")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()
	n, err := s.Outfits.Retag(ctx, *overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Retagged: %d\n", n)
	return nil
}

func init() {
	RegisterCmd(outfitsCmd{})
	RegisterCmd(browseCmd{})
	RegisterCmd(outfitFavCmd{})
	RegisterCmd(favoritesCmd{})
	RegisterCmd(outfitsRetagCmd{})
}
