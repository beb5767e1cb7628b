package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cksetup",
	Short: "Versioned setup scripts for PostgreSQL",
	Long: `cksetup discovers versioned setup scripts, resolves the shortest chain of
migrations from each item's installed version to its desired version and runs
them in Init, Install and Settle order.

Script names:
  <Target>[.<Step>[Content]][.<From>.to]<.Version>.<ext>
  CK.tUser.1.0.0.sql                full install at 1.0.0
  CK.tUser.1.0.0.to.1.1.0.sql       migration from 1.0.0 to 1.1.0
  CK.tUser.Settle.sql               runs whenever the Settle step runs

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or script name
  11 - Database connection failed
  12 - Script registration conflict
  13 - Script execution failed
  14 - Desired version not reachable in strict mode`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	flag := cmd.Flag("verbose")
	if flag == nil {
		return false
	}
	verbose, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
