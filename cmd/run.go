// File: cmd/run.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/browser"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
	"github.com/xkilldash9x/lispico-e2e/internal/fixtures"
	"github.com/xkilldash9x/lispico-e2e/internal/observability"
	"github.com/xkilldash9x/lispico-e2e/internal/reporting"
	"github.com/xkilldash9x/lispico-e2e/internal/scenario"
	"github.com/xkilldash9x/lispico-e2e/internal/suite"
	"github.com/xkilldash9x/lispico-e2e/internal/waiter"
)

// suiteFailedError is returned by run when at least one scenario did not pass.
type suiteFailedError struct {
	failed, skipped, total int
}

func (e *suiteFailedError) Error() string {
	return fmt.Sprintf("%d of %d scenarios failed, %d skipped", e.failed, e.total, e.skipped)
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite against the admin panel",
		Long: `Runs the registered scenario groups against the panel at target.base_url,
writes the report and exits non-zero when any scenario fails or is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			env, err := newSuiteEnv(cfg, logger)
			if err != nil {
				return err
			}

			mgr := browser.NewManager(cfg, logger)
			opts := suite.OptionsFromConfig(cfg, env.login, logger)
			report, err := suite.NewRunner(mgr, env.registry, opts, logger).Run(ctx)
			if err != nil {
				return err
			}

			if err := writeReport(cfg, report); err != nil {
				return err
			}

			if !report.Succeeded() {
				_, failed, skipped := report.Counts()
				return &suiteFailedError{failed: failed, skipped: skipped, total: len(report.Results)}
			}
			return nil
		},
	}

	flags := runCmd.Flags()
	flags.String("base-url", "", "admin panel base URL")
	flags.StringSlice("groups", nil, "scenario groups to run, in order")
	flags.String("auth", "", "auth strategy: shared or per_sequence")
	flags.Bool("parallel", false, "run scenario groups concurrently")
	flags.Bool("headless", true, "run the browser without a window")
	flags.String("fixtures", "", "YAML file overriding the built-in fixtures")
	flags.StringP("format", "f", "", "report format: text, json or junit")
	flags.StringP("output", "o", "", "report destination (default stdout)")

	bindFlag(flags, "base-url", "target.base_url")
	bindFlag(flags, "groups", "suite.groups")
	bindFlag(flags, "auth", "auth.strategy")
	bindFlag(flags, "parallel", "suite.parallel_groups")
	bindFlag(flags, "headless", "browser.headless")
	bindFlag(flags, "fixtures", "fixtures.file")
	bindFlag(flags, "format", "report.format")
	bindFlag(flags, "output", "report.output")
	return runCmd
}

// suiteEnv is everything derived from configuration that run and list share.
type suiteEnv struct {
	catalog  *fixtures.Catalog
	builder  *scenario.Builder
	registry *suite.Registry
	login    scenario.Sequence
}

func newSuiteEnv(cfg *config.Config, logger *zap.Logger) (*suiteEnv, error) {
	catalog, err := fixtures.Load(cfg.Fixtures().File)
	if err != nil {
		return nil, err
	}
	w := waiter.New(cfg.Wait(), logger)
	navTimeout := cfg.Wait().NavigationTimeout
	if cfg.Wait().Unbounded {
		navTimeout = waiter.Unbounded
	}
	builder := scenario.NewBuilder(cfg.Target().BaseURL, catalog, w, navTimeout)

	registry, err := suite.DefaultRegistry(builder, catalog, cfg)
	if err != nil {
		return nil, err
	}
	target := cfg.Target()
	return &suiteEnv{
		catalog:  catalog,
		builder:  builder,
		registry: registry,
		login:    builder.Login(schemas.Credential{Email: target.Email, Password: target.Password}),
	}, nil
}

func writeReport(cfg config.Interface, report *schemas.RunReport) error {
	r, err := reporting.New(cfg.Report().Format, cfg.Report().Output, Version)
	if err != nil {
		return err
	}
	if err := r.Write(report); err != nil {
		r.Close()
		return err
	}
	return r.Close()
}
