package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionCheck string

func init() {
	versionCmd.Flags().StringVar(&versionCheck, "check", "", "Fail unless the version satisfies this constraint (defaults to required_version)")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(ui.Out, version.Get().FullString())

	constraint := versionCheck
	if constraint == "" {
		constraint = cfg.RequiredVersion
	}
	if constraint == "" {
		return nil
	}
	if err := version.Check(version.Version, constraint); err != nil {
		return err
	}
	ui.PrintSuccess("Satisfies %q", constraint)
	return nil
}
