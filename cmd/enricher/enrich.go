package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shpitdev/vc-enricher/internal/app"
	"github.com/shpitdev/vc-enricher/internal/enrich"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

func newEnrichCmd(gf *globalFlags) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "enrich <website>",
		Short: "Enrich one website and print the profile as JSON",
		Long: `Enrich one website and print the profile as JSON.

Passing --name or --description supplies company context and enables thesis
scoring. Exit status is 2 for invalid input and 1 for any other failure.

Examples:
  enricher enrich https://example.com
  enricher enrich https://example.com --name Example --description "Devtools for AI teams"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(gf)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			svc, err := app.NewService(cmd.Context(), cfg, log)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("setup failed: %s", err)}
			}

			req := enrich.Request{Website: args[0]}
			if cmd.Flags().Changed("name") || cmd.Flags().Changed("description") {
				req.Company = &profile.Company{Name: name, Description: description, Website: args[0]}
			}
			p, err := svc.Enrich(cmd.Context(), req)
			if err != nil {
				code := 1
				if kind, ok := enrich.KindOf(err); ok && kind.BadInput() {
					code = 2
				}
				return &exitError{code: code, msg: "error: " + enrich.UserMessage(err)}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Company name (enables thesis scoring)")
	cmd.Flags().StringVar(&description, "description", "", "Company description (enables thesis scoring)")
	return cmd
}
