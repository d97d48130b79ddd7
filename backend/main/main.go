package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/cli"
	"mangrovewatch/backend/config"
	"mangrovewatch/backend/geo"
	"mangrovewatch/backend/report"
	"mangrovewatch/backend/store"
	"mangrovewatch/common"

	"github.com/apex/log"
)

var (
	storeBackend = flag.String("store", "", "Session store backend: memory, file, mysql or redis. Overrides STORE_BACKEND.")
	storePath    = flag.String("store_path", "", "File store location. Overrides STORE_PATH.")
	logLevel     = flag.String("log_level", "", "Log level. Overrides LOG_LEVEL.")
)

func main() {
	flag.Parse()
	cfg := config.Load()
	if *storeBackend != "" {
		cfg.StoreBackend = *storeBackend
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	common.SetupLogging(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	code := 0
	if err := cli.New(cfg, st, os.Stdout).Run(ctx, flag.Args()); err != nil {
		code = exitCode(err)
	}
	if err := closeStore(); err != nil {
		log.Warnf("Failed to close session store: %v", err)
	}
	stop()
	os.Exit(code)
}

// exitCode prints err for the user. Messages already shown by the command
// are not repeated.
func exitCode(err error) int {
	var (
		verr *api.ValidationError
		lerr *geo.LocationError
		serr *report.SubmissionError
	)
	switch {
	case errors.Is(err, cli.ErrUsage), errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, report.ErrNotAuthenticated), errors.As(err, &serr):
		return 1
	case errors.As(err, &verr):
		fmt.Fprintln(os.Stderr, verr.Message)
		return 1
	case errors.As(err, &lerr):
		fmt.Fprintln(os.Stderr, lerr.Message())
		return 1
	}
	log.Errorf("%v", err)
	return 1
}
