package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/query/document"
	"github.com/satishbabariya/sqlorm/runtime/client"
)

var execCmd = &cobra.Command{
	Use:   "exec <query.yaml>",
	Short: "Run a query document against the database",
	Long: `Compile a query document and run it against database_url. Selects print
the matching rows, counts print the count and writes print the number of rows
affected.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

var execTimeout time.Duration

func init() {
	execCmd.Flags().DurationVarP(&execTimeout, "timeout", "t", 30*time.Second, "Statement timeout")

	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is not set (use .sqlorm.yaml, SQLORM_DATABASE_URL or DATABASE_URL)")
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	q, rec, err := doc.Build()
	if err != nil {
		return err
	}

	resolver, err := loadRegistry()
	if err != nil {
		return err
	}
	c, err := client.NewClient(cfg.Provider, cfg.DatabaseURL, resolver,
		client.WithCompileOptions(compileOptions()...))
	if err != nil {
		return err
	}
	defer c.Close()
	c.Use(client.LoggingMiddleware())

	ctx, cancel := context.WithTimeout(cmd.Context(), execTimeout)
	defer cancel()

	switch doc.Operation {
	case document.OpCount:
		n, err := c.Count(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out, n)
		return nil

	case document.OpInsert, document.OpUpdate, document.OpDelete:
		var n int64
		switch doc.Operation {
		case document.OpInsert:
			n, err = c.Insert(ctx, q.Model(), rec)
		case document.OpUpdate:
			n, err = c.Update(ctx, q, rec)
		default:
			n, err = c.Delete(ctx, q)
		}
		if err != nil {
			return err
		}
		ui.PrintSuccess("%d row(s) affected", n)
		return nil
	}

	rows, err := c.Find(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	rs, err := client.ScanAll(rows)
	if err != nil {
		return err
	}
	if len(rs.Rows) == 0 {
		ui.PrintInfo("No rows")
		return nil
	}
	out := make([][]string, len(rs.Rows))
	for i, r := range rs.Rows {
		out[i] = make([]string, len(r))
		for j, v := range r {
			if v == nil {
				out[i][j] = "NULL"
			} else {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return ui.PrintTable(rs.Columns, out)
}
