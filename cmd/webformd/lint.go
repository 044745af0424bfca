package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-webform/pkg/theme"
)

func newLintThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint-themes",
		Short: "Check the embedded stylesheets for selectors browsers drop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := theme.NewCatalog(theme.DefaultAssetPrefix)
			if err != nil {
				return err
			}
			report, err := theme.LintCatalog(catalog)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(report))
			for name := range report {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			total := 0
			for _, name := range names {
				for _, issue := range report[name] {
					fmt.Fprintf(out, "%s: %s\n", name, issue)
					total++
				}
			}
			if total > 0 {
				return fmt.Errorf("%d stylesheet issue(s)", total)
			}
			fmt.Fprintf(out, "%d stylesheets clean\n", len(catalog.Manifests())+1)
			return nil
		},
	}
}
