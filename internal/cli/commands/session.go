package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"DressCode/internal/cli/bootstrap"
	"DressCode/internal/cli/model/view"
	"DressCode/internal/config"
)

func newLogger(cfg *config.Config) *zap.SugaredLogger {
	log, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log
}

// openSession открывает сессию текущего пользователя. done закрывает её и сбрасывает логгер.
func openSession(ctx context.Context, cfg *config.Config) (*bootstrap.Session, func(), error) {
	log := newLogger(cfg)
	s, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	done := func() {
		if err := s.Close(); err != nil {
			log.Warnw("session close failed", "error", err)
		}
		_ = log.Sync()
	}
	return s, done, nil
}

// newFlagSet — флаги разбираются только перед позиционными аргументами.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUsage
	}
	return id, nil
}

func favMark(fav bool) string {
	if fav {
		return "★"
	}
	return " "
}

func printClosetRows(rows []view.ClosetRow) {
	if len(rows) == 0 {
		fmt.Fprintln(Out, "Гардероб пуст")
		return
	}
	for _, r := range rows {
		sync := ""
		if !r.Synced {
			sync = "  (not synced)"
		}
		fmt.Fprintf(Out, "%s %4d  %s  [%s]  %s%s\n", favMark(r.Favorite), r.ID, r.Name, r.Category, r.Meta, sync)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(rows))
}

func printOutfitRows(rows []view.OutfitRow) {
	if len(rows) == 0 {
		fmt.Fprintln(Out, "Ничего не найдено")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(Out, "%s %4d  %s\n", favMark(r.Favorite), r.ID, r.Title)
		if r.Meta != "" {
			fmt.Fprintf(Out, "        %s\n", r.Meta)
		}
		if r.Tags != "" {
			fmt.Fprintf(Out, "        %s\n", r.Tags)
		}
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(rows))
}
