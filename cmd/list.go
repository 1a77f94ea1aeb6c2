// File: cmd/list.go
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/lispico-e2e/internal/observability"
	"github.com/xkilldash9x/lispico-e2e/internal/suite"
)

func newListCmd() *cobra.Command {
	var showSteps bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered scenario groups and their scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			env, err := newSuiteEnv(cfg, observability.GetLogger())
			if err != nil {
				return err
			}
			printRegistry(cmd.OutOrStdout(), env.registry, showSteps)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&showSteps, "steps", false, "print the steps of each scenario")
	listCmd.Flags().StringSlice("groups", nil, "scenario groups to list, in order")
	bindFlag(listCmd.Flags(), "groups", "suite.groups")
	return listCmd
}

func printRegistry(w io.Writer, reg *suite.Registry, showSteps bool) {
	for _, g := range reg.Groups() {
		fmt.Fprintf(w, "%s\n", g.Name)
		for _, e := range g.Entries {
			line := "  " + e.Name
			if len(e.DependsOn) > 0 {
				line += " (after " + strings.Join(e.DependsOn, ", ") + ")"
			}
			fmt.Fprintln(w, line)
			if !showSteps {
				continue
			}
			for i, step := range e.Sequence.Steps {
				fmt.Fprintf(w, "    %2d. %s\n", i+1, step.Name)
			}
		}
	}
}
