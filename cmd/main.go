package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"movie-awards/internal/config"
)

var (
	configFilePath string
	cfg            *config.Config
	logger         *slog.Logger
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "movie-awards",
		Short:         "Look up movie award records by movie and awarding body",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load(viper.New(), configFilePath)
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			lvl, err := loaded.Level()
			if err != nil {
				return errors.Wrap(err, "invalid configuration")
			}
			cfg = loaded
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
			slog.SetDefault(logger)
			return nil
		},
		// The Lambda runtime starts the binary without arguments.
		RunE: runLambda,
	}

	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "path to an optional YAML configuration file")

	cmd.AddCommand(
		cmdLambda(),
		cmdServe(),
		cmdSeed(),
	)
	return cmd
}
