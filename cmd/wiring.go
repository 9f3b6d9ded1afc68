package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/pkg/errors"

	"movie-awards/handler"
	"movie-awards/internal/config"
	"movie-awards/internal/integrations/paramstore"
	"movie-awards/internal/repository"
	"movie-awards/internal/usecase"
)

// buildHandler wires the store, use case and handler once per process. The
// returned close function releases the store.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*handler.Handler, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger.With("component", "usecase")),
		usecase.WithApplyMinFilter(cfg.ApplyMinFilter),
	}
	closeFn := func() error { return nil }

	var store usecase.AwardStore
	if cfg.LocalDBPath != "" {
		local, err := repository.NewLevelDBStore(cfg.LocalDBPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open local store")
		}
		logger.Info("using local store", "path", cfg.LocalDBPath)
		store = local
		closeFn = local.Close
	}

	if store == nil || cfg.ParamPrefix != "" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		if store == nil {
			client, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.TableName)
			if err != nil {
				return nil, nil, errors.Wrap(err, "failed to create award store")
			}
			store = client
		}
		if cfg.ParamPrefix != "" {
			flags, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				_ = closeFn()
				return nil, nil, errors.Wrap(err, "failed to create SSM client")
			}
			opts = append(opts, usecase.WithFlagStore(flags, cfg.ParamPrefix))
		}
	}

	svc, err := usecase.NewLookupService(store, opts...)
	if err != nil {
		_ = closeFn()
		return nil, nil, errors.Wrap(err, "failed to create lookup service")
	}
	h, err := handler.NewHandler(svc, logger.With("component", "handler"))
	if err != nil {
		_ = closeFn()
		return nil, nil, errors.Wrap(err, "failed to create handler")
	}
	return h, closeFn, nil
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}
	return awsCfg, nil
}
