package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/query"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
)

// Run executes a scenario and evaluates its assertions.
//
// Compile and execution errors are kept in Result.Err so error_contains
// assertions can check them. A scenario that fails without such an
// assertion is a failed result, not an error. The returned error is for
// problems with the scenario itself: an unloadable model or a bad seed.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	reg, err := admin.Load(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	opts, err := scenario.Options.queryOptions()
	if err != nil {
		return nil, err
	}
	exec := query.NewExecutor(reg, opts)

	result := NewResult()
	plan, err := exec.Compile(ctx, scenario.Query)
	if err != nil {
		result.Err = err
	} else {
		for _, st := range plan.Statements {
			result.SQL = append(result.SQL, st.SQL)
			result.Aliases = append(result.Aliases, st.Aliases)
		}
	}

	if result.Err == nil && len(scenario.Seed) > 0 {
		rows, err := execute(ctx, reg, exec, scenario)
		if err != nil {
			return nil, err
		}
		result.Rows = rows.Rows
		result.Err = rows.Err
	}

	expectsError := false
	for _, a := range scenario.Assertions {
		if a.Type == AssertErrorContains {
			expectsError = true
		}
		if err := evaluateAssertion(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	if result.Err != nil && !expectsError {
		result.AddError(fmt.Sprintf("unexpected error: %v", result.Err))
	}
	return result, nil
}

type executed struct {
	Rows []query.Row
	Err  error
}

// execute runs the query against a fresh in-memory database holding the
// model tables and the scenario's seed rows.
func execute(ctx context.Context, reg *admin.Registry, exec *query.Executor, scenario *Scenario) (executed, error) {
	db, err := store.Open(":memory:")
	if err != nil {
		return executed{}, err
	}
	defer db.Close()

	if err := db.ApplySchema(ctx, reg.DDL()); err != nil {
		return executed{}, fmt.Errorf("failed to create model tables: %w", err)
	}
	for i, stmt := range scenario.Seed {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return executed{}, fmt.Errorf("seed[%d]: %w", i, err)
		}
	}

	res, err := exec.Execute(ctx, db, scenario.Query)
	if err != nil {
		return executed{Err: err}, nil
	}
	return executed{Rows: res.Rows}, nil
}

func (o Options) queryOptions() (querysql.Options, error) {
	opts := querysql.Options{
		MaxDepth: o.MaxDepth,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if o.Dialect != "" {
		d, err := querysql.ParseDialect(o.Dialect)
		if err != nil {
			return opts, fmt.Errorf("options: %w", err)
		}
		opts.Dialect = d
	}
	if o.Ambiguity != "" {
		a, err := querysql.ParseAmbiguity(o.Ambiguity)
		if err != nil {
			return opts, fmt.Errorf("options: %w", err)
		}
		opts.Ambiguity = a
	}
	return opts, nil
}
