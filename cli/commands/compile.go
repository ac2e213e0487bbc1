package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
	"github.com/satishbabariya/sqlorm/cli/internal/watch"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
)

var compileCmd = &cobra.Command{
	Use:   "compile <query.yaml>",
	Short: "Compile a query document to SQL",
	Long: `Compile a YAML or JSON query document into SQL for the configured
provider and print the statement with its parameters.

Formats:
  table     statement followed by a parameter table (default)
  markdown  rendered markdown
  json      {"sql": ..., "args": [...]}
  sql       statement and a parameter comment`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var (
	compileFormat string
	compileWatch  bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileFormat, "format", "f", "table", "Output format (table, markdown, json, sql)")
	compileCmd.Flags().BoolVarP(&compileWatch, "watch", "w", false, "Recompile when the document or schema changes")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !compileWatch {
		return compileOnce(path)
	}

	files := []string{path}
	if ok, _ := afero.Exists(config.AppFs, cfg.SchemaPath); ok {
		files = append(files, cfg.SchemaPath)
	}
	w, err := watch.NewWatcher(files, func() error {
		return compileOnce(path)
	}, func(err error) {
		ui.PrintError("%v", err)
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	ui.PrintInfo("Watching %s (press Ctrl+C to stop)", strings.Join(files, ", "))
	if err := w.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func compileOnce(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	c, err := newCompiler()
	if err != nil {
		return err
	}
	st, err := doc.Compile(c)
	if err != nil {
		return err
	}
	return render(compileFormat, st)
}

func render(format string, st *sqlgen.Statement) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			SQL  string `json:"sql"`
			Args []any  `json:"args"`
		}{st.SQL, st.Args})
	case "sql":
		ui.PrintSQL(st.SQL, st.Args)
		return nil
	case "markdown", "md":
		return ui.PrintMarkdown(markdown(st))
	case "table", "":
		ui.PrintSQL(st.SQL, nil)
		if len(st.Args) == 0 {
			return nil
		}
		fmt.Fprintln(ui.Out)
		return ui.PrintTable([]string{"#", "Value", "Type"}, argRows(st.Args))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func argRows(args []any) [][]string {
	rows := make([][]string, len(args))
	for i, a := range args {
		rows[i] = []string{strconv.Itoa(i + 1), fmt.Sprint(a), fmt.Sprintf("%T", a)}
	}
	return rows
}

func markdown(st *sqlgen.Statement) string {
	var b strings.Builder
	b.WriteString("```sql\n")
	b.WriteString(st.SQL)
	b.WriteString("\n```\n")
	if len(st.Args) > 0 {
		b.WriteString("\n| # | Value | Type |\n|---|---|---|\n")
		for _, r := range argRows(st.Args) {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", r[0], strings.ReplaceAll(r[1], "|", `\|`), r[2])
		}
	}
	return b.String()
}
