package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/service"
	"DressCode/internal/cli/viewstate"
	"DressCode/internal/config"
)

type closetCmd struct{}

func (closetCmd) Name() string        { return "closet" }
func (closetCmd) Description() string { return "Показать гардероб" }
func (closetCmd) Usage() string       { return "closet [--category <категория>]" }

func (closetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("closet")
	category := fs.String("category", "", "только эта категория")
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
	items, err := live.First(sub, s.Closet.List(sub, *category))
	if err != nil {
		return err
	}
	printClosetRows(viewstate.ClosetRows(items))
	return nil
}

// closetFields регистрирует общие для add/edit флаги.
type closetFields struct {
	name, category, color, season, style, scene *string
}

func bindClosetFields(fs *flag.FlagSet) closetFields {
	return closetFields{
		name:     fs.String("name", "", "название"),
		category: fs.String("category", "", "категория: 上衣, 下装, 外套, 连衣裙, 鞋子, 配饰"),
		color:    fs.String("color", "", "цвет"),
		season:   fs.String("season", "", "сезон"),
		style:    fs.String("style", "", "стиль"),
		scene:    fs.String("scene", "", "сценарий"),
	}
}

type closetAddCmd struct{}

func (closetAddCmd) Name() string { return "closet-add" }
func (closetAddCmd) Description() string {
	return "Добавить вещь; фото отправляется на сервер для тегов"
}
func (closetAddCmd) Usage() string {
	return "closet-add [--name ..] [--category ..] [--color ..] [--season ..] [--style ..] [--scene ..] [--fav] [<photo>]"
}

func (closetAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("closet-add")
	f := bindClosetFields(fs)
	fav := fs.Bool("fav", false, "сразу в избранное")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}
	photo := fs.Arg(0)
	if photo == "" && *f.category == "" {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	id, err := s.Closet.Add(ctx, service.ClosetDraft{
		Name:      *f.name,
		Category:  *f.category,
		Color:     *f.color,
		Season:    *f.season,
		Style:     *f.style,
		Scene:     *f.scene,
		Favorite:  *fav,
		ImagePath: photo,
	})
	if err != nil {
		return err
	}
	it, err := s.Closet.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Added:")
	fmt.Fprintf(Out, "  id:       %d\n", it.ID)
	fmt.Fprintf(Out, "  name:     %s\n", it.Name)
	fmt.Fprintf(Out, "  category: %s\n", it.Category)
	if photo != "" && cfg.Offline {
		fmt.Fprintln(Out, "  offline: теги не запрошены, повторите closet-retag позже")
	}
	return nil
}

type closetEditCmd struct{}

func (closetEditCmd) Name() string        { return "closet-edit" }
func (closetEditCmd) Description() string { return "Изменить поля вещи" }
func (closetEditCmd) Usage() string {
	return "closet-edit [--name ..] [--category ..] [--color ..] [--season ..] [--style ..] [--scene ..] <id>"
}

func (closetEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("closet-edit")
	f := bindClosetFields(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	// меняем только явно переданные поля
	var edit service.ClosetEdit
	set := 0
	fs.Visit(func(fl *flag.Flag) {
		set++
		switch fl.Name {
		case "name":
			edit.Name = f.name
		case "category":
			edit.Category = f.category
		case "color":
			edit.Color = f.color
		case "season":
			edit.Season = f.season
		case "style":
			edit.Style = f.style
		case "scene":
			edit.Scene = f.scene
		}
	})
	if set == 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := s.Closet.Update(ctx, id, edit); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Updated: %d\n", id)
	return nil
}

type closetRmCmd struct{}

func (closetRmCmd) Name() string        { return "closet-rm" }
func (closetRmCmd) Description() string { return "Удалить вещь и её фото" }
func (closetRmCmd) Usage() string       { return "closet-rm <id>" }

func (closetRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if err := s.Closet.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted: %d\n", id)
	return nil
}

type closetFavCmd struct{}

func (closetFavCmd) Name() string        { return "closet-fav" }
func (closetFavCmd) Description() string { return "Переключить избранное для вещи" }
func (closetFavCmd) Usage() string       { return "closet-fav <id>" }

func (closetFavCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	fav, err := s.Closet.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%d favorite: %t\n", id, fav)
	return nil
}

type closetRetagCmd struct{}

func (closetRetagCmd) Name() string        { return "closet-retag" }
func (closetRetagCmd) Description() string { return "Повторить синхронизацию и теги вещи" }
func (closetRetagCmd) Usage() string       { return "closet-retag <id>" }

func (closetRetagCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if err := s.Closet.Retag(ctx, id); err != nil {
		if errors.Is(err, service.ErrNoBackend) {
			return fmt.Errorf("%w: remove --offline or set --base-url", err)
		}
		return err
	}
	it, err := s.Closet.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Retagged: %d  %s [%s] %s %s %s %s\n", it.ID, it.Name, it.Category, it.Color, it.Season, it.Style, it.Scene)
	return nil
}

func init() {
	RegisterCmd(closetCmd{})
	RegisterCmd(closetAddCmd{})
	RegisterCmd(closetEditCmd{})
	RegisterCmd(closetRmCmd{})
	RegisterCmd(closetFavCmd{})
	RegisterCmd(closetRetagCmd{})
}
