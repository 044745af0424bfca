package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/apikeys"
)

func newSiteKeyCmd() *cobra.Command {
	var id, key, token, prefix string
	cmd := &cobra.Command{
		Use:   "site-key",
		Short: "Store the credentials of a linked site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id == "" || key == "" {
				return errors.New("--id and --key are required")
			}
			srv, err := openServer(cmd.Context(), cmd, zap.NewNop())
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			if err := srv.Store.PutSiteKey(cmd.Context(), prefix, apikeys.Key{ID: id, Key: key, Token: token}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s\n", prefix, id)
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "site id")
	cmd.Flags().StringVar(&key, "key", "", "shared secret")
	cmd.Flags().StringVar(&token, "token", "", "static token accepted besides the rotating one")
	cmd.Flags().StringVar(&prefix, "prefix", apikeys.DefaultPrefix, "key prefix")
	return cmd
}
