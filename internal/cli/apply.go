package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <project_path>",
	Short: "Run the setup scripts of a project",
	Long: `Apply plans the setup run like 'cksetup plan', then executes every step
against PostgreSQL. Each executed script is journaled in cksetup_script_journal
and reached versions are recorded in cksetup_item_version once every step has
succeeded. A failing script stops the run; scripts control their own
transactions.

Examples:
  cksetup apply ./db --connection postgresql://app@localhost/app
  CKSETUP_CONNECTION_STRING=postgresql://app@localhost/app cksetup apply ./db --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var applyFlags setupFlagValues

func init() {
	rootCmd.AddCommand(applyCmd)
	addSetupFlags(applyCmd, &applyFlags)
}

func runApply(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd, args[0], applyFlags)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	result, err := newSetupService(getVerboseFlag(cmd)).Apply(ctx, req)
	if result != nil {
		renderPlan(cmd.OutOrStdout(), result.Plan)
	}
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	renderRun(cmd.OutOrStdout(), result.Run)
	return nil
}
