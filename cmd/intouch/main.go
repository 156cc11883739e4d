package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"intouch/internal/app"
	"intouch/internal/config"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type options struct {
	configPath string
	mintToken  string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.StringVar(&opts.configPath, "config", os.Getenv("INTOUCH_CONFIG_FILE"), "path to a JSON configuration file")
	fs.StringVar(&opts.mintToken, "mint-token", "", "print an identity token for this user id and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intouch terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string, stdout io.Writer) (int, error) {
	_ = godotenv.Load()

	opts, err := parseFlags(flag.NewFlagSet("intouch", flag.ContinueOnError), args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, nil
		}
		return exitConfig, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(cfg.Log.Level)

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to create application: %w", err)
	}

	if opts.mintToken != "" {
		defer func() { _ = application.Stop(context.Background()) }()
		token, err := application.Tokens().GenerateToken(opts.mintToken)
		if err != nil {
			return exitConfig, fmt.Errorf("failed to mint token: %w", err)
		}
		fmt.Fprintln(stdout, token)
		return exitOK, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		_ = application.Stop(context.Background())
		return exitRuntime, fmt.Errorf("failed to start: %w", err)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := application.Stop(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown error: %w", err)
	}
	return exitOK, nil
}
