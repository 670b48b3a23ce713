package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lisanmuaddib/zaim-export/internal/exportconfig"
	"github.com/lisanmuaddib/zaim-export/pkg/browser"
	"github.com/lisanmuaddib/zaim-export/pkg/exporter"
	"github.com/lisanmuaddib/zaim-export/pkg/history"
	"github.com/lisanmuaddib/zaim-export/pkg/logging"
	"github.com/lisanmuaddib/zaim-export/pkg/zaim"
	"github.com/sirupsen/logrus"
)

// newLauncher is replaced in tests
var newLauncher = func(log *logrus.Logger) browser.Launcher {
	return browser.NewChromeLauncher(log)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := exportconfig.Parse(argv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	log := logging.New(os.Stderr, args.LogFormat, args.Verbose)

	// Credentials are checked before anything touches the filesystem or network
	zaimConfig, err := zaim.NewConfig(log)
	if err != nil {
		log.WithError(err).Error("Failed to create Zaim config")
		return 1
	}

	file, err := exportconfig.LoadFile(args.ConfigFile)
	if err != nil {
		log.WithError(err).WithField("config_file", args.ConfigFile).Error("Failed to load config file")
		return 1
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.WithError(err).Error("Failed to resolve home directory")
		return 1
	}

	resolved, err := exportconfig.Resolve(args, file, home, exportconfig.SurveyPasscodePrompter)
	if err != nil {
		log.WithError(err).Error("Invalid arguments")
		return 1
	}

	site := zaimConfig.Site
	if os.Getenv(zaim.EnvLoginURL) == "" && resolved.LoginURL != "" {
		site.LoginURL = resolved.LoginURL
	}
	if os.Getenv(zaim.EnvMoneyURL) == "" && resolved.MoneyURL != "" {
		site.MoneyURL = resolved.MoneyURL
	}

	var recorder exporter.RunRecorder
	if historyConfig := history.NewConfigFromEnv(); historyConfig.Enabled() {
		store, err := history.Open(historyConfig, log)
		if err != nil {
			log.WithError(err).Warn("History database unavailable, continuing without recording")
		} else {
			defer store.Close()
			recorder = store
		}
	}

	exp, err := exporter.New(exporter.Config{
		Launcher:    newLauncher(log),
		Credentials: zaimConfig.Credentials,
		Site:        site,
		Timeouts:    resolved.Timeouts,
		Recorder:    recorder,
		Logger:      log,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create exporter")
		return 1
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the run on interrupt so cleanup still happens
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.WithFields(logrus.Fields{
		"start":      resolved.Run.Range.Start(),
		"end":        resolved.Run.Range.End(),
		"charset":    resolved.Run.Charset,
		"output_dir": resolved.Run.OutputDir,
	}).Info("Starting Zaim export")

	result, err := exp.Export(ctx, resolved.Run)
	if err != nil {
		return 1
	}

	if result.MoveErr != nil {
		log.WithField("rescue_path", result.RescuedPath).Warn("Export finished but the file was not moved")
		return 0
	}
	log.WithField("output_path", result.OutputPath).Info("Export complete")
	return 0
}
