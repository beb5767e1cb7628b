package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <project_path>",
	Short: "Show the scripts a setup run would execute",
	Long: `Plan loads cksetup.yaml, discovers the scripts of every source and prints the
ordered steps of a setup run without executing anything.

Installed versions are read from the database when a connection is available,
otherwise every item is planned as a fresh install.

Examples:
  cksetup plan ./db
  cksetup plan ./db --connection postgresql://app@localhost/app --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var planFlags setupFlagValues

func init() {
	rootCmd.AddCommand(planCmd)
	addSetupFlags(planCmd, &planFlags)
}

func runPlan(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd, args[0], planFlags)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	plan, err := newSetupService(getVerboseFlag(cmd)).Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	renderPlan(cmd.OutOrStdout(), plan)
	return nil
}
