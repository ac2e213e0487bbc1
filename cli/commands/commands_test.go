package commands

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/cli/internal/ui"
)

const testSchema = `
model Account {
  id        Int       @id
  ownerName String
  deletedAt DateTime? @softDelete
  @@map("accounts")
}
`

// run executes the root command with a fresh in-memory filesystem view and
// returns what was written to stdout.
func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	debugFlag, providerFlag, schemaFlag = false, "", ""
	compileFormat, compileWatch = "table", false
	initYes, versionCheck = false, ""

	origFs, origOut := config.AppFs, ui.Out
	var out bytes.Buffer
	config.AppFs, ui.Out = fs, &out
	t.Cleanup(func() { config.AppFs, ui.Out = origFs, origOut })

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func TestValidateCommand(t *testing.T) {
	fs := memFs(t, map[string]string{"schema.sqlorm": testSchema})

	out, err := run(t, fs, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is valid: schema.sqlorm")
	assert.Contains(t, out, "accounts")
	assert.Contains(t, out, "deleted_at")

	fs = memFs(t, map[string]string{"bad.sqlorm": "model {"})
	_, err = run(t, fs, "validate", "bad.sqlorm")
	assert.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	fs := memFs(t, map[string]string{
		"schema.sqlorm": testSchema,
		"q.yaml": `
model: Account
where:
  - {column: ownerName, op: IN, values: [ann, bob]}
offset: 5
`,
	})

	out, err := run(t, fs, "compile", "q.yaml", "--provider", "postgres", "--format", "json")
	require.NoError(t, err)

	var got struct {
		SQL  string `json:"sql"`
		Args []any  `json:"args"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t,
		`SELECT * FROM "accounts" WHERE ("deleted_at" IS NULL AND "owner_name" IN ($1,$2)) OFFSET $3 LIMIT $4`,
		got.SQL)
	assert.Equal(t, []any{"ann", "bob", float64(5), float64(9223372036854775807)}, got.Args)

	out, err = run(t, fs, "compile", "q.yaml", "-p", "mysql", "-f", "sql")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM `accounts` WHERE (`deleted_at` IS NULL AND `owner_name` IN (?,?)) LIMIT ?,?")
	assert.Contains(t, out, "-- 1: ann, 2: bob, 3: 5")

	out, err = run(t, fs, "compile", "q.yaml", "-p", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "string")

	_, err = run(t, fs, "compile", "q.yaml", "-f", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, err = run(t, fs, "compile", "q.yaml", "-s", "missing.sqlorm")
	assert.ErrorContains(t, err, "schema file not found")
}

func TestInitCommand(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "init", "proj", "--yes", "--provider", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "Next steps")

	for _, name := range []string{".sqlorm.yaml", "schema.sqlorm", "queries/users.yaml", ".env.example"} {
		ok, err := afero.Exists(fs, filepath.Join("proj", name))
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
	conf, err := afero.ReadFile(fs, filepath.Join("proj", ".sqlorm.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "provider: mysql")

	// the starter files compile against each other
	out, err = run(t, fs, "compile", "proj/queries/users.yaml", "-s", "proj/schema.sqlorm", "-p", "mysql", "-f", "sql")
	require.NoError(t, err)
	assert.Contains(t, out, "EXISTS (SELECT * FROM `posts` WHERE (`posts`.`author_id` = `users`.`id`) LIMIT ?)")

	out, err = run(t, fs, "init", "proj", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestExecCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE accounts (id INTEGER PRIMARY KEY, owner_name TEXT, deleted_at DATETIME)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	t.Setenv("SQLORM_DATABASE_URL", dbPath)

	fs := memFs(t, map[string]string{
		"schema.sqlorm": testSchema,
		"insert.yaml":   "{operation: insert, model: Account, values: {id: 1, ownerName: ann}}",
		"count.yaml":    "{operation: count, model: Account}",
		"find.yaml":     "{model: Account, where: [{column: id, value: 1}]}",
		"delete.yaml":   "{operation: delete, model: Account}",
	})

	out, err := run(t, fs, "exec", "insert.yaml", "-p", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "1 row(s) affected")

	out, err = run(t, fs, "exec", "count.yaml", "-p", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, fs, "exec", "find.yaml", "-p", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "owner_name")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "NULL")

	out, err = run(t, fs, "exec", "delete.yaml", "-p", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "1 row(s) affected")
}

func TestExecRequiresDatabaseURL(t *testing.T) {
	t.Setenv("SQLORM_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	fs := memFs(t, map[string]string{"count.yaml": "{operation: count, model: accounts}"})

	_, err := run(t, fs, "exec", "count.yaml")
	assert.ErrorContains(t, err, "database_url is not set")
}

func TestVersionCommand(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlorm version")

	_, err = run(t, fs, "version", "--check", ">= 99.0")
	assert.ErrorContains(t, err, "does not satisfy")

	t.Setenv("SQLORM_REQUIRED_VERSION", ">= 99.0")
	_, err = run(t, fs, "validate")
	assert.ErrorContains(t, err, "does not satisfy")
}
