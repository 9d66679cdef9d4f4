package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/query"
	"github.com/efaps/efql/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ApplySchema bool
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	PlanID  string      `json:"plan_id"`
	SQL     []string    `json:"sql"`
	Selects []string    `json:"selects"`
	Rows    []RowOutput `json:"rows"`
}

// RowOutput is one result instance.
type RowOutput struct {
	OID    string `json:"oid"`
	Values []any  `json:"values"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Execute a query against a database",
		Long: `Compile a YAML query and execute it against the configured database.
Local paths open SQLite files; libsql://, https:// and wss:// URLs use
the libsql client.

Example:
  efql run --model ./model --db ./efaps.db tickets.yaml
  efql run --db libsql://demo.turso.io?authToken=... tickets.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ApplySchema, "apply-schema", false, "create missing model tables before running")

	return cmd
}

func runQuery(opts *RunOptions, queryFile string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	reg, err := loadModel(opts.RootOptions, f)
	if err != nil {
		return err
	}
	q, err := readQuery(cmd, queryFile)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeQueryRead, "query could not be read", err)
	}
	exec, err := newExecutor(opts.RootOptions, cmd, reg, f)
	if err != nil {
		return err
	}
	if _, err := exec.Compile(cmd.Context(), q); err != nil {
		return f.Fail(ExitFailure, compileErrorCode(err), "compilation failed", err)
	}

	f.VerboseLog("Opening database %s", opts.Config.DB)
	st, err := store.Open(opts.Config.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	if opts.ApplySchema {
		if err := st.ApplySchema(cmd.Context(), reg.DDL()); err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to apply schema", err)
		}
	}

	res, err := exec.Execute(cmd.Context(), st, q)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeExecute, "query failed", err)
	}
	f.VerboseLog("Plan %s returned %d row(s)", res.PlanID, len(res.Rows))

	if f.IsJSON() {
		return f.Success(newRunResult(res))
	}
	return writeRowsText(f, res)
}

func newRunResult(res *query.Result) RunResult {
	out := RunResult{PlanID: res.PlanID, SQL: res.SQL, Selects: res.Selects, Rows: []RowOutput{}}
	for _, r := range res.Rows {
		out.Rows = append(out.Rows, RowOutput{OID: r.OID(), Values: r.Values})
	}
	return out
}

// writeRowsText prints one tab-aligned line per row with a header of the
// selection strings.
func writeRowsText(f *OutputFormatter, res *query.Result) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OID\t"+strings.Join(res.Selects, "\t"))
	for _, r := range res.Rows {
		cells := make([]string, len(r.Values))
		for i, v := range r.Values {
			cells[i] = cell(v)
		}
		fmt.Fprintln(tw, r.OID()+"\t"+strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "\n%d row(s)\n", len(res.Rows))
	return nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.DateTime)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = cell(e)
		}
		return strings.Join(parts, ", ")
	default:
		return cast.ToString(v)
	}
}
