package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/signature-opensource/cksetup/internal/naming"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <name>...",
	Short: "Show how script names are parsed",
	Long: `Parse prints the target, step, phase and versions read from each script
name, or the reason it is rejected. Names are parsed as file names: the last
dotted segment is the extension.

Examples:
  cksetup parse CK.tUser.1.0.0.to.1.1.0.sql
  cksetup parse CK.tUser.SettleContent.sql CK.vUser.2.0.0.sql`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var errs []error
	for _, raw := range args {
		name, err := naming.TryParse(raw, raw, true)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n  error: %v\n", raw, err)
			errs = append(errs, err)
			continue
		}
		writeParsedName(cmd.OutOrStdout(), raw, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d name(s) rejected: %w", len(errs), len(args), errors.Join(errs...))
	}
	return nil
}

func writeParsedName(w io.Writer, raw string, n cksetup.ParsedName) {
	kind := "unconditional"
	switch {
	case n.IsUpgradeScript():
		kind = "migration"
	case n.IsDowngradeScript():
		kind = "downgrade (ignored)"
	case n.IsFullInstall():
		kind = "full install"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", raw)
	fmt.Fprintf(&b, "  target:    %s\n", n.TargetFullName)
	fmt.Fprintf(&b, "  step:      %s\n", n.Step)
	fmt.Fprintf(&b, "  phase:     %s\n", n.Phase())
	fmt.Fprintf(&b, "  kind:      %s\n", kind)
	if n.FromVersion != nil {
		fmt.Fprintf(&b, "  from:      %s\n", n.FromVersion)
	}
	if n.Version != nil {
		fmt.Fprintf(&b, "  version:   %s\n", n.Version)
	}
	fmt.Fprintf(&b, "  extension: %s\n", n.Extension)
	fmt.Fprint(w, b.String())
}
