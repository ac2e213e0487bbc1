package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/cli/internal/version"
	"github.com/satishbabariya/sqlorm/internal/debug"
)

var (
	// cfg is loaded before every command runs.
	cfg *config.Config

	debugFlag    bool
	providerFlag string
	schemaFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "sqlorm",
	Short: "Compile and run query documents against SQL databases",
	Long: `sqlorm compiles declarative query documents into parameterized SQL for
MySQL, PostgreSQL and SQLite, and can run them against a database.

Configuration is read from .sqlorm.yaml, .env files and SQLORM_* environment
variables.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log compiled statements and driver errors")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "Database provider (mysql, postgres, sqlite)")
	rootCmd.PersistentFlags().StringVarP(&schemaFlag, "schema", "s", "", "Path to schema file")
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if debugFlag {
		c.Debug = true
	}
	if providerFlag != "" {
		c.Provider = providerFlag
	}
	if schemaFlag != "" {
		c.SchemaPath = schemaFlag
	}
	debug.Init(c.Debug)
	cfg = c

	if cmd.Name() == versionCmd.Name() {
		return nil
	}
	return version.Check(version.Version, c.RequiredVersion)
}

// Execute is the main entry point for the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
