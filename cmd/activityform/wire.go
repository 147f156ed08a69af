package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/goliatone/go-activityform/internal/config"
	"github.com/goliatone/go-activityform/internal/logger"
	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/invalidate"
	"github.com/goliatone/go-activityform/pkg/submission"
	"github.com/goliatone/go-activityform/pkg/validation"
)

func buildOptions(cfg config.Config) []formdata.Option {
	opts := []formdata.Option{formdata.WithSplitFields(cfg.Form.SplitFields...)}
	if cfg.Form.MaxIndex > 0 {
		opts = append(opts, formdata.WithMaxIndex(cfg.Form.MaxIndex))
	}
	return opts
}

func collapseOptions(cfg config.Config) validation.CollapseOptions {
	return validation.CollapseOptions{
		AggregateFields: cfg.Form.AggregateFields,
		MessagePrefix:   cfg.Form.MessagePrefix,
	}
}

func newValidator(ctx context.Context, fs afero.Fs, cfg config.Config) (*activity.Validator, error) {
	var opts []activity.Option

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("form.timezone: %w", err)
	}
	opts = append(opts, activity.WithLocation(loc))

	if cfg.Form.SchemaFile != "" {
		raw, err := afero.ReadFile(fs, cfg.Form.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", cfg.Form.SchemaFile, err)
		}
		opts = append(opts, activity.WithSchemaDocument(raw, activity.SchemaName))
	}
	return activity.NewValidator(ctx, opts...)
}

// newPublisher connects every configured invalidation transport. With none
// configured signals are dropped.
func newPublisher(ctx context.Context, cfg config.InvalidateConfig, log *logger.Logger) (invalidate.Publisher, error) {
	var pubs invalidate.Multi

	if len(cfg.Redis.Addrs) > 0 {
		pub, err := invalidate.NewRedisPublisher(ctx, invalidate.RedisConfig{
			Addrs:          cfg.Redis.Addrs,
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			Channel:        cfg.Redis.Channel,
			DialTimeout:    cfg.Redis.DialTimeout.Std(),
			ConnectTimeout: cfg.Redis.ConnectTimeout.Std(),
		})
		if err != nil {
			return nil, err
		}
		log.Infow("invalidation via redis enabled", "addrs", cfg.Redis.Addrs)
		pubs = append(pubs, pub)
	}

	if cfg.NATS.URL != "" {
		pub, err := invalidate.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			_ = pubs.Close()
			return nil, err
		}
		log.Infow("invalidation via nats enabled", "url", cfg.NATS.URL)
		pubs = append(pubs, pub)
	}

	switch len(pubs) {
	case 0:
		log.Infow("invalidation disabled")
		return invalidate.Noop{}, nil
	case 1:
		return pubs[0], nil
	default:
		return pubs, nil
	}
}

func submissionOptions(cfg config.Config, extra ...submission.Option) []submission.Option {
	opts := []submission.Option{
		submission.WithBuildOptions(buildOptions(cfg)...),
		submission.WithCollapseOptions(collapseOptions(cfg)),
		submission.WithInvalidatePath(cfg.Invalidate.Path),
	}
	return append(opts, extra...)
}
