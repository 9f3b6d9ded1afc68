package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve lookups as an API Gateway HTTP API Lambda function",
		RunE:  runLambda,
	}
}

func runLambda(cmd *cobra.Command, _ []string) error {
	h, closeFn, err := buildHandler(cmd.Context(), cfg, logger)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}
	defer closeFn()

	logger.Info("lambda starting...", "table", cfg.TableName)
	lambda.StartWithOptions(h.Handle, lambda.WithContext(cmd.Context()))
	return nil
}
