package commands

import (
	"context"
	"fmt"

	"DressCode/internal/cli/live"
	"DressCode/internal/cli/model"
	"DressCode/internal/cli/service"
	"DressCode/internal/cli/viewstate"
	"DressCode/internal/config"
)

type tryOnCmd struct{}

func (tryOnCmd) Name() string { return "tryon" }
func (tryOnCmd) Description() string {
	return "Примерка: фото человека + вещь из гардероба, образ или своё фото одежды"
}
func (tryOnCmd) Usage() string {
	return "tryon --person <photo> (--closet <id> | --outfit <id> | --garment <photo>)"
}

func (tryOnCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("tryon")
	person := fs.String("person", "", "фото человека")
	closetID := fs.Int64("closet", 0, "id вещи из гардероба")
	outfitID := fs.Int64("outfit", 0, "id образа из каталога")
	garment := fs.String("garment", "", "своё фото одежды")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *person == "" {
		return ErrUsage
	}
	req := service.SwapRequest{PersonImage: *person}
	sources := 0
	if *closetID > 0 {
		req.SourceType, req.SourceID = model.SourceCloset, *closetID
		sources++
	}
	if *outfitID > 0 {
		req.SourceType, req.SourceID = model.SourceOutfit, *outfitID
		sources++
	}
	if *garment != "" {
		req.SourceType, req.GarmentImage = model.SourceCustom, *garment
		sources++
	}
	if sources != 1 {
		return ErrUsage
	}

	s, done, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	job, err := s.Swap.Run(ctx, req)
	if job != nil {
		fmt.Fprintf(Out, "Job %d: %s  %s\n", job.ID, job.SourceTitle, job.Status)
		if job.ResultImageURI != "" {
			fmt.Fprintf(Out, "  result: %s\n", job.ResultImageURI)
		}
	}
	return err
}

type historyCmd struct{}

func (historyCmd) Name() string        { return "history" }
func (historyCmd) Description() string { return "История примерок" }
func (historyCmd) Usage() string       { return "history" }

func (historyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	rows, err := live.First(sub, viewstate.SwapHistory(sub, s.Swap))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(Out, "История пуста")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(Out, "%4d  %s  [%s] %s  %s\n", r.ID, r.CreatedAt, r.SourceLabel, r.Title, r.Status)
		if r.HasResult {
			fmt.Fprintf(Out, "      %s\n", r.ResultPath)
		}
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(rows))
	return nil
}

type historyRmCmd struct{}

func (historyRmCmd) Name() string        { return "history-rm" }
func (historyRmCmd) Description() string { return "Удалить примерку и файл результата" }
func (historyRmCmd) Usage() string       { return "history-rm <id>" }

func (historyRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if err := s.Swap.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted: %d\n", id)
	return nil
}

func init() {
	RegisterCmd(tryOnCmd{})
	RegisterCmd(historyCmd{})
	RegisterCmd(historyRmCmd{})
}
