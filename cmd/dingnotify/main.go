package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dingnotify/internal/app"
	"dingnotify/internal/config"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config file (json or yaml); defaults to ~/.config/dingnotify/config.json")
	flag.Parse()

	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(cfgPath)
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		os.Exit(1)
	}
}
