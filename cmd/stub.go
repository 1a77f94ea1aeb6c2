// File: cmd/stub.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/lispico-e2e/internal/observability"
	"github.com/xkilldash9x/lispico-e2e/internal/panelstub"
)

func newStubCmd() *cobra.Command {
	var addr string
	stubCmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local stub of the admin panel for dry runs",
		Long: `Serves an in-memory admin panel that follows the same page contract as
Lispico. Point target.base_url at it to try the suite without the real panel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			stub := panelstub.New(panelstub.Options{
				Email:    cfg.Target().Email,
				Password: cfg.Target().Password,
			}, observability.GetLogger())
			return stub.Serve(cmd.Context(), addr)
		},
	}
	stubCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return stubCmd
}
