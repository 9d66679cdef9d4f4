package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/store"
	"github.com/efaps/efql/internal/testutil"
)

const fixtureModel = "../testutil/model.cue"

const openTickets = `
types: [Ticket]
select:
  - attribute[Title]
  - status.label
where:
  - attribute: Status
    value: Open
`

// execute runs the root command with args and returns stdout and the
// command error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), ".env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// seededDB creates a database holding the fixture tables and rows.
func seededDB(t *testing.T) string {
	t.Helper()
	reg, err := admin.Load(fixtureModel)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "efql.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.ApplySchema(ctx, reg.DDL()))
	for _, stmt := range testutil.Seed {
		_, err := st.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return path
}

func TestCompile_Text(t *testing.T) {
	q := writeFile(t, "tickets.yaml", openTickets)

	out, err := execute(t, "", "--model", fixtureModel, "compile", q)
	require.NoError(t, err)
	assert.Contains(t, out, "[0] Ticket\n")
	assert.Contains(t, out, "SELECT T0.ID, T0.TITLE, T0.STATUSID FROM T_TICKET T0 WHERE T0.STATUSID = 42 ORDER BY T0.ID")
	assert.Contains(t, out, "aliases: T0\n")
}

func TestCompile_JSONWithOutputFile(t *testing.T) {
	q := writeFile(t, "docs.yaml", `
types: [Document]
select:
  - attribute[Name]
  - linkfrom[Position#DocumentLink].attribute[Quantity]
`)
	planFile := filepath.Join(t.TempDir(), "plan.json")

	out, err := execute(t, "", "--model", fixtureModel, "--format", "json", "compile", q, "-o", planFile)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	statements := data["statements"].([]any)
	require.Len(t, statements, 1)
	st := statements[0].(map[string]any)
	assert.Equal(t, "SELECT T0.ID, T0.TYPEID, T0.NAME FROM T_DOC T0 WHERE T0.TYPEID IN (301,302) ORDER BY T0.ID", st["sql"])
	fanOuts := st["fan_outs"].([]any)
	require.Len(t, fanOuts, 1)
	assert.Equal(t, "Position", fanOuts[0].(map[string]any)["type"])

	written, err := os.ReadFile(planFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"fingerprint"`)
	assert.Contains(t, string(written), data["id"].(string))
}

func TestCompile_Stdin(t *testing.T) {
	out, err := execute(t, openTickets, "--model", fixtureModel, "compile", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "WHERE T0.STATUSID = 42")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		exitCode int
		code     string
	}{
		{
			name: "missing model",
			args: func(t *testing.T) []string {
				return []string{"--model", filepath.Join(t.TempDir(), "nope"), "compile", writeFile(t, "q.yaml", openTickets)}
			},
			exitCode: ExitCommandError,
			code:     ErrCodeModelNotFound,
		},
		{
			name: "invalid model",
			args: func(t *testing.T) []string {
				model := writeFile(t, "model.cue", "types: Broken: {table: \"T_NOPE\"}\n")
				return []string{"--model", model, "compile", writeFile(t, "q.yaml", openTickets)}
			},
			exitCode: ExitCommandError,
			code:     ErrCodeModelInvalid,
		},
		{
			name: "missing query file",
			args: func(t *testing.T) []string {
				return []string{"--model", fixtureModel, "compile", filepath.Join(t.TempDir(), "q.yaml")}
			},
			exitCode: ExitCommandError,
			code:     ErrCodeQueryRead,
		},
		{
			name: "bad selection",
			args: func(t *testing.T) []string {
				return []string{"--model", fixtureModel, "compile", writeFile(t, "q.yaml", "types: [Ticket]\nselect:\n  - attribute[Title\n")}
			},
			exitCode: ExitFailure,
			code:     ErrCodeQueryInvalid,
		},
		{
			name: "unknown types",
			args: func(t *testing.T) []string {
				return []string{"--model", fixtureModel, "compile", writeFile(t, "q.yaml", "types: [Nope]\n")}
			},
			exitCode: ExitFailure,
			code:     ErrCodeCompile,
		},
		{
			name: "bad dialect",
			args: func(t *testing.T) []string {
				return []string{"--model", fixtureModel, "--dialect", "oracle", "compile", writeFile(t, "q.yaml", openTickets)}
			},
			exitCode: ExitCommandError,
			code:     ErrCodeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", append([]string{"--format", "json"}, tt.args(t)...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			resp := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.yaml", openTickets)
	bad := writeFile(t, "bad.yaml", "types: [Ticket]\nwhere:\n  - attribute: Title\n    op: between\n")

	out, err := execute(t, "", "--model", fixtureModel, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good)

	out, err = execute(t, "", "--model", fixtureModel, "validate", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 query file(s) invalid")
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
}

func TestValidate_JSON(t *testing.T) {
	good := writeFile(t, "good.yaml", openTickets)
	unknown := writeFile(t, "unknown.yaml", "types: [Nope]\n")

	out, err := execute(t, "", "--model", fixtureModel, "--format", "json", "validate", good, unknown)
	require.Error(t, err)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["valid"])
	files := data["files"].([]any)
	require.Len(t, files, 2)
	assert.Equal(t, true, files[0].(map[string]any)["valid"])
	assert.Equal(t, ErrCodeCompile, files[1].(map[string]any)["code"])
}

func TestRun_JSON(t *testing.T) {
	db := seededDB(t)
	q := writeFile(t, "tickets.yaml", openTickets)

	out, err := execute(t, "", "--model", fixtureModel, "--db", db, "--format", "json", "run", q)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	rows := data["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "200.10", first["oid"])
	assert.Equal(t, []any{"Broken printer", "Open"}, first["values"])
	assert.Equal(t, "200.12", rows[1].(map[string]any)["oid"])
	assert.Equal(t, []any{"attribute[Title]", "status.label"}, data["selects"])
}

func TestRun_Text(t *testing.T) {
	db := seededDB(t)
	q := writeFile(t, "people.yaml", `
types: [Person]
select:
  - attribute[Name]
  - attribute[Birthday]
`)

	out, err := execute(t, "", "--model", fixtureModel, "--db", db, "run", q)
	require.NoError(t, err)
	assert.Contains(t, out, "OID")
	assert.Contains(t, out, "attribute[Name]")
	assert.Contains(t, out, "1990-01-02")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "3 row(s)")
}

func TestRun_ApplySchemaOnEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	q := writeFile(t, "tickets.yaml", openTickets)

	out, err := execute(t, "", "--model", fixtureModel, "--db", db, "run", q)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeExecute)

	out, err = execute(t, "", "--model", fixtureModel, "--db", db, "run", "--apply-schema", q)
	require.NoError(t, err)
	assert.Contains(t, out, "0 row(s)")
}

func TestSchema(t *testing.T) {
	out, err := execute(t, "", "--model", fixtureModel, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS T_TICKET (")
	assert.Contains(t, out, "FOREIGN KEY (ID) REFERENCES T_PERSON (ID)")

	db := filepath.Join(t.TempDir(), "schema.db")
	out, err = execute(t, "", "--model", fixtureModel, "--db", db, "--format", "json", "schema", "--apply")
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, true, data["applied"])

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	rows, err := st.QueryContext(context.Background(), "SELECT COUNT(*) FROM T_DOCPOS")
	require.NoError(t, err)
	scanned, err := store.ScanRows(rows)
	require.NoError(t, err)
	assert.Equal(t, int64(0), scanned[0][0])
}

func TestTypes(t *testing.T) {
	out, err := execute(t, "", "--model", fixtureModel, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Document (abstract)")
	assert.Contains(t, out, "Employee")
	assert.Contains(t, out, "T_PRODCLASS")

	out, err = execute(t, "", "--model", fixtureModel, "--format", "json", "types", "Employee")
	require.NoError(t, err)
	infos := decodeResponse(t, out).Data.([]any)
	require.Len(t, infos, 1)
	emp := infos[0].(map[string]any)
	assert.Equal(t, "Employee", emp["name"])
	assert.Equal(t, "Person", emp["parent"])
	assert.Equal(t, "T_PERSON", emp["table"])
	assert.Contains(t, emp["attributes"], "Salary")
	assert.Contains(t, emp["attributes"], "Name")

	_, err = execute(t, "", "--model", fixtureModel, "types", "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTest_HarnessScenarios(t *testing.T) {
	out, err := execute(t, "", "test", "../harness/testdata/scenarios")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ ticket_status")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_FailureAndUpdate(t *testing.T) {
	model, err := filepath.Abs(fixtureModel)
	require.NoError(t, err)
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "products.yaml"), []byte(`
name: products
description: products compile without a type discriminator
model: `+model+`
query:
  types: [Product]
assertions:
  - type: sql_contains
    value: "FROM T_PRODUCT T0"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "wrong.yaml"), []byte(`
name: wrong
description: expects a join that is not there
model: `+model+`
query:
  types: [Product]
assertions:
  - type: join_count
    count: 1
`), 0644))

	out, err := execute(t, "", "--format", "json", "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, float64(1), data["passed"])
	assert.Equal(t, float64(1), data["failed"])

	out, err = execute(t, "", "test", scenarios, "--filter", "prod*", "--update")
	require.NoError(t, err, out)
	golden, err := os.ReadFile(filepath.Join(root, "golden", "products.golden"))
	require.NoError(t, err)
	assert.Equal(t, "scenario: products\nstatement 0:\n  sql: SELECT T0.ID FROM T_PRODUCT T0 ORDER BY T0.ID\n  aliases: T0\n", string(golden))

	require.NoError(t, os.WriteFile(filepath.Join(root, "golden", "products.golden"), []byte("stale\n"), 0644))
	out, err = execute(t, "", "test", scenarios, "--filter", "prod*")
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")

	out, err = execute(t, "", "test", scenarios, "--filter", "zzz*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
