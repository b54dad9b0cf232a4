package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/autotestx/prioritizer"
)

func main() {
	s := prioritizer.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := s.ShutdownOnCancel(ctx)

	if err := s.Run(os.Args); errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	// Run returns as soon as the listener is closed, in-flight requests
	// are still being drained.
	<-shutdown
}
