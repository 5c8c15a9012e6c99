package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/peregrinescode/keithley2614B/cmd/ivsweep/app"
	"github.com/peregrinescode/keithley2614B/logger"
)

func main() {
	var (
		configPath string
		listRuns   bool
		showRun    int64
	)
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.BoolVar(&listRuns, "list", false, "List stored sweep runs and exit")
	flag.Int64Var(&showRun, "records", 0, "Print the records of the given run ID and exit")
	flag.Parse()

	log := logger.GetLogger()

	if configPath == "" {
		log.Error("no configuration file provided")
		os.Exit(1)
	}

	config, err := app.LoadConfig(configPath)
	if err != nil {
		log.Error("failed to load configuration file", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger.SetLevel(config.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case listRuns:
		err = app.ListRuns(ctx, config, os.Stdout)
	case showRun > 0:
		err = app.ShowRecords(ctx, config, showRun, os.Stdout)
	default:
		err = app.Run(ctx, config, log)
	}

	if err != nil {
		log.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
