package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/lox/svara/internal/server"
)

// ServerCmd runs the websocket server.
type ServerCmd struct {
	Config    string `short:"c" default:"svara.hcl" help:"Path to HCL config file"`
	AutoStart bool   `help:"Deal the first round on every table immediately, seating only bots"`
}

func (cmd *ServerCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	cfg, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cfg.Server.LogLevel == "debug" {
		logger.SetLevel(log.DebugLevel)
	}

	srv := server.NewServer(cfg, logger)
	if cmd.AutoStart {
		for _, tc := range cfg.Tables {
			if err := srv.StartTable(tc.Name); err != nil {
				return err
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
