package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DressCode/internal/cli/commands"
	"DressCode/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода: 0 успех, 1 ошибка команды, 2 неверный вызов.
func run() int {
	cfg := config.NewConfig()
	if cfg.Version {
		printVersion(cfg)
		return 0
	}

	// Ctrl+C прерывает сетевые запросы и browse
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, flag.Args())
}

func printVersion(cfg *config.Config) {
	fmt.Printf("DressCode CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
	backend := cfg.ServerURL
	if cfg.Offline {
		backend = "offline"
	}
	fmt.Printf("Backend: %s\nWeather: %s\n", backend, cfg.WeatherProvider)
}
