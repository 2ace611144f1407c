package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/server"
	"github.com/yurifrl/contabilu/pkg/service"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "contabilu",
	})

	flags := pflag.NewFlagSet("contabilu-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("addr", "", "Listen address (default 0.0.0.0:3000)")
	flags.String("database-url", "", "Database URL (postgres://... or sqlite://path)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Int("batch-size", 0, "Rows per committed batch")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("config error", "err", err)
	}
	logger.SetLevel(cfg.Log.ParsedLevel())

	svc, err := service.Open(cfg, logger)
	if err != nil {
		logger.Fatal("database error", "err", err)
	}
	defer svc.Close()

	srv := server.New(cfg.Server, logger, svc)
	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
