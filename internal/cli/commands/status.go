package commands

import (
	"context"
	"fmt"

	"DressCode/internal/cli/bootstrap"
	"DressCode/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Check the DressCode server" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	b := bootstrap.Backend(cfg)
	if b == nil {
		fmt.Fprintln(Out, "Status: offline")
		return nil
	}
	d, err := b.Health(ctx)
	if err != nil {
		return fmt.Errorf("server %s: %w", cfg.ServerURL, err)
	}
	fmt.Fprintf(Out, "Status: ok (%s, %d ms)\n", cfg.ServerURL, d.Milliseconds())
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
