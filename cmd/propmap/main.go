package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/gta-invest/propertymap/internal/business/finance"
	"github.com/gta-invest/propertymap/internal/cli"
	"github.com/gta-invest/propertymap/internal/platform/config"
	"github.com/gta-invest/propertymap/internal/platform/logger"
	"github.com/gta-invest/propertymap/internal/platform/propertyapi"
)

func main() {
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	plain := flag.Bool("plain", false, "Print raw Markdown")
	currency := flag.String("currency", finance.DefaultCurrency, "Currency used for amounts")

	client := propertyapi.New(nil, propertyapi.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	}, logger.NewWithWriter(cfg.AppEnv, os.Stderr))

	env := &cli.Env{
		Source: client,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(env) {
		commander.Register(c, "reports")
	}

	flag.Parse()
	env.Plain = *plain
	env.Currency = *currency

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
