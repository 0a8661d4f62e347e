// Command tabled serves configured poker tables over WebSocket.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokervariants/internal/server"
)

type CLI struct {
	Config  string `default:"tables.hcl" help:"Table configuration file" type:"path"`
	Address string `help:"Override the listen address"`
	Port    int    `help:"Override the listen port"`
	Verbose bool   `short:"v" help:"Verbose logging"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("tabled"),
		kong.Description("Serve poker tables over WebSocket."))

	cfg, err := server.LoadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	if cli.Address != "" {
		cfg.Server.Address = cli.Address
	}
	if cli.Port != 0 {
		cfg.Server.Port = cli.Port
	}

	logger := log.New(os.Stderr)
	switch {
	case cli.Verbose:
		logger.SetLevel(log.DebugLevel)
	default:
		if lvl, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}
	}

	srv, err := server.NewServer(cfg, logger, quartz.NewReal())
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("server failed", "err", err)
	}
	logger.Info("shut down")
}
