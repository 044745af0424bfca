package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	webform "github.com/goliatone/go-webform"
	"github.com/goliatone/go-webform/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webformd",
		Short:         "Serve embeddable webform themes and fields",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML config file (WEBFORM_* variables override it)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCSSCmd())
	root.AddCommand(newLintThemesCmd())
	root.AddCommand(newSiteKeyCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// openServer assembles the components without serving them.
func openServer(ctx context.Context, cmd *cobra.Command, logger *zap.Logger) (*webform.Server, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return webform.NewServer(ctx, cfg, webform.WithLogger(logger))
}
