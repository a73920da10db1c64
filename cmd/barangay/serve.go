package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barangay/internal/server"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPortal(ctx, cCtx, &logrus.JSONFormatter{})
	if err != nil {
		return err
	}
	defer p.Close()

	srv, err := server.New(
		p.config,
		p.logger,
		p.store,
		p.sessions,
		p.complaints,
		p.records,
		p.metrics,
	)
	if err != nil {
		return err
	}

	go func() {
		p.logger.WithField("port", p.config.ServerPort).Infof("server starting http://localhost:%d", p.config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	p.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
