package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-webform/pkg/theme"
)

// askTheme prompts for a built-in theme when --theme is omitted.
var askTheme = func() (string, error) {
	var name string
	prompt := &survey.Select{
		Message: "Theme:",
		Options: theme.Names(),
		Default: theme.NameWideHeavy,
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		return "", err
	}
	return name, nil
}

func newCSSCmd() *cobra.Command {
	var token, name string
	var customOnly bool
	cmd := &cobra.Command{
		Use:   "css",
		Short: "Print the stylesheet of a form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			if customOnly {
				return printCustomCSS(cmd, token)
			}
			if !cmd.Flags().Changed("theme") {
				picked, err := askTheme()
				if err != nil {
					return fmt.Errorf("select theme: %w", err)
				}
				name = picked
			}

			srv, err := openServer(cmd.Context(), cmd, zap.NewNop())
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			css, err := srv.Themes.Resolve(cmd.Context(), name, token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), css)
			return err
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "form token")
	cmd.Flags().StringVar(&name, "theme", "", "theme name; prompts when omitted")
	cmd.Flags().BoolVar(&customOnly, "custom", false, "print only the form's custom CSS")
	return cmd
}

func printCustomCSS(cmd *cobra.Command, token string) error {
	srv, err := openServer(cmd.Context(), cmd, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	css, ok, err := srv.Meta.CustomCSS(cmd.Context(), token)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no form for token %q", token)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), css)
	return err
}
