package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema-path]",
	Short: "Validate a schema file",
	Long: `Parse a schema file, check it for duplicate models, tables and columns,
and print the resulting name mapping.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.SchemaPath
	if len(args) > 0 {
		path = args[0]
	}

	reg, err := schema.LoadFile(config.AppFs, path)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Schema is valid: %s", path)

	rows := make([][]string, 0)
	for _, m := range reg.Models() {
		rows = append(rows, []string{
			m.Name,
			m.Table,
			strconv.Itoa(len(m.Fields)),
			orDash(m.SoftDelete),
			orDash(m.UpdatedAt),
		})
	}
	if len(rows) == 0 {
		ui.PrintWarning("Schema defines no models")
		return nil
	}
	fmt.Fprintln(ui.Out)
	return ui.PrintTable([]string{"Model", "Table", "Fields", "Soft delete", "Updated at"}, rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
