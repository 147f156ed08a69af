package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	activityform "github.com/goliatone/go-activityform"
	"github.com/goliatone/go-activityform/internal/config"
	"github.com/goliatone/go-activityform/internal/httpapi"
	"github.com/goliatone/go-activityform/internal/logger"
	"github.com/goliatone/go-activityform/internal/metrics"
	"github.com/goliatone/go-activityform/pkg/backend"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/invalidate"
	"github.com/goliatone/go-activityform/pkg/submission"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the activity submission and image upload endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.readConfig(true)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Service, cfg.Env)
			if err != nil {
				return err
			}
			defer log.SafeSync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, cfg, log)
		},
	}
}

func serve(ctx context.Context, a *app, cfg config.Config, log *logger.Logger) error {
	client, err := backend.New(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout.Std()))
	if err != nil {
		return err
	}
	validator, err := newValidator(ctx, a.fs, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collectors := metrics.NewCollectors(reg)

	publisher, err := newPublisher(ctx, cfg.Invalidate, log)
	if err != nil {
		return err
	}
	dispatcher := invalidate.NewDispatcher(publisher,
		invalidate.WithTimeout(cfg.Invalidate.Timeout.Std()),
		invalidate.WithLogger(log),
		invalidate.WithObserver(collectors.ObserveInvalidation),
	)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Warnw("close invalidation publisher", "error", err)
		}
	}()

	orch, err := activityform.NewOrchestrator(validator, client, submissionOptions(cfg,
		submission.WithNotifier(dispatcher),
		submission.WithObserver(collectors),
		submission.WithLogger(log),
	)...)
	if err != nil {
		return err
	}
	uploader, err := submission.NewUploader(client,
		submission.WithMaxImageBytes(cfg.Upload.MaxImageBytes),
		submission.WithUploadLogger(log),
	)
	if err != nil {
		return err
	}
	view, err := httpapi.NewView(nil, map[string]any{
		"action":        httpapi.ActivitiesRoute,
		"activity_path": cfg.Invalidate.Path,
	})
	if err != nil {
		return err
	}
	api, err := httpapi.New[activityform.Record](orch, uploader,
		httpapi.WithView(view),
		httpapi.WithLogger(log),
		httpapi.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		httpapi.WithMultipartLimits(formdata.MultipartLimits{
			MaxFieldBytes: cfg.Server.MaxFieldBytes,
			MaxFileBytes:  cfg.Server.MaxFileBytes,
		}),
		httpapi.WithUploadObserver(collectors.ObserveUpload),
	)
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}}
	if cfg.Server.MetricsAddr != "" {
		handler, _ := metrics.Handler(metrics.Options{Registry: reg})
		servers = append(servers, &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			return runServer(gctx, srv, cfg.Server.ShutdownTimeout.Std(), log)
		})
	}
	return g.Wait()
}

// runServer serves until ctx is done, then shuts down within timeout.
func runServer(ctx context.Context, srv *http.Server, timeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Infow("http server stopping", "addr", srv.Addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	return nil
}
