package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/query"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // plan output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a query to SQL",
		Long: `Compile a YAML query against the admin model and print the plan:
one SELECT statement per main table, its table aliases and the linkfrom
fan-outs that run per batch of result rows.

Use "-" to read the query from stdin.

Examples:
  efql compile --model ./model tickets.yaml
  efql compile --model ./model tickets.yaml -o plan.json
  cat tickets.yaml | efql compile --format json -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the plan as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, queryFile string, cmd *cobra.Command) error {
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

	plan, err := exec.Compile(cmd.Context(), q)
	if err != nil {
		return f.Fail(ExitFailure, compileErrorCode(err), "compilation failed", err)
	}
	f.VerboseLog("Compiled plan %s with %d statement(s)", plan.ID, len(plan.Statements))

	if opts.Output != "" {
		if err := writePlan(plan, opts.Output); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "writing plan failed", err)
		}
	}

	if f.IsJSON() {
		return f.Success(plan)
	}
	writePlanText(f, plan)
	if opts.Output != "" {
		fmt.Fprintf(f.Writer, "Wrote plan to %s\n", opts.Output)
	}
	return nil
}

func writePlanText(f *OutputFormatter, plan *query.Plan) {
	fmt.Fprintf(f.Writer, "Plan %s (%d statement(s))\n", plan.ID, len(plan.Statements))
	for i, st := range plan.Statements {
		fmt.Fprintf(f.Writer, "\n[%d] %s\n", i, strings.Join(st.Types, ", "))
		fmt.Fprintf(f.Writer, "  %s\n", st.SQL)
		fmt.Fprintf(f.Writer, "  aliases: %s\n", strings.Join(st.Aliases, " "))
		for _, fo := range st.FanOuts {
			fmt.Fprintf(f.Writer, "  fan-out: %s (%s)\n", fo.Key, fo.Type)
		}
	}
}

// writePlan writes the plan as indented JSON.
func writePlan(plan *query.Plan, filename string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
