package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/config"
)

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintf(out, "Usage: bucketfs [flags] <command> [args]\n\nCommands:\n")
	_, _ = fmt.Fprintf(out, "  init [-force]\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "  %s\n", commands[name].usage)
	}

	_, _ = fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/bucketfs/config.yaml)")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if args[0] == "init" {
		if err := runInit(*configPath, args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := configureLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, args)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run builds the adapter from cfg and executes one command.
func run(ctx context.Context, cfg *config.Config, args []string) error {
	metricsResult := config.InitializeMetrics(cfg)
	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsResult.Server.Stop(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown error: %v", err)
			}
		}()
	}

	adapter, err := config.CreateAdapter(ctx, &cfg.Storage, metricsResult.AdapterMetrics)
	if err != nil {
		return err
	}

	return execute(ctx, adapter, os.Stdout, args[0], args[1:])
}

func runInit(configPath string, args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	force := flags.Bool("force", false, "Overwrite an existing config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if configPath == "" {
		path, err := config.InitConfig(*force)
		if err != nil {
			return err
		}
		configPath = path
	} else if err := config.InitConfigToPath(configPath, *force); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", configPath)
	return nil
}

// configureLogger applies the logging section of the configuration.
func configureLogger(cfg config.LoggingConfig) error {
	logger.SetLevel(cfg.Level)
	if err := logger.SetFormat(cfg.Format); err != nil {
		return err
	}
	return logger.SetOutput(cfg.Output)
}
