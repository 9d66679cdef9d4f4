package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Apply bool
}

// SchemaResult is the JSON payload of the schema command.
type SchemaResult struct {
	Statements []string `json:"statements"`
	Applied    bool     `json:"applied"`
	DB         string   `json:"db,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or apply the model's table DDL",
		Long: `Print the CREATE TABLE statements for every SQL table of the admin
model. With --apply the statements run against the configured database;
existing tables are left alone.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "create the tables in the configured database")

	return cmd
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	reg, err := loadModel(opts.RootOptions, f)
	if err != nil {
		return err
	}
	result := SchemaResult{Statements: reg.DDL()}

	if opts.Apply {
		if err := applySchema(opts.RootOptions, cmd, result.Statements); err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to apply schema", err)
		}
		result.Applied = true
		result.DB = opts.Config.DB
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	for _, stmt := range result.Statements {
		fmt.Fprintln(f.Writer, strings.TrimRight(stmt, ";")+";")
	}
	if result.Applied {
		fmt.Fprintf(f.Writer, "\nApplied %d statement(s) to %s\n", len(result.Statements), result.DB)
	}
	return nil
}

func applySchema(opts *RootOptions, cmd *cobra.Command, ddl []string) error {
	st, err := store.Open(opts.Config.DB)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ApplySchema(cmd.Context(), ddl)
}
