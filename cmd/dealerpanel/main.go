package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/panelkit/dealerpanel/internal/cmd/dealerpanel"
	"github.com/panelkit/dealerpanel/internal/platform/config"
)

func main() {
	cfg, err := dealerpanel.ParseConfig(flag.CommandLine, os.Args[1:], func(key string) (string, bool) {
		value, ok := os.LookupEnv(key)
		return value, ok
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[PANEL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dealerpanel.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
