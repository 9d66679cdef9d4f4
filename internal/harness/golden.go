package harness

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as plain text: the scenario name, each
// statement with its aliases, the rows and the error.
func Snapshot(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	for i, sql := range result.SQL {
		fmt.Fprintf(&buf, "statement %d:\n", i)
		fmt.Fprintf(&buf, "  sql: %s\n", sql)
		fmt.Fprintf(&buf, "  aliases: %s\n", strings.Join(result.Aliases[i], " "))
	}
	if len(result.Rows) > 0 {
		buf.WriteString("rows:\n")
		for _, r := range result.Rows {
			values := make([]string, len(r.Values))
			for i, v := range r.Values {
				values[i] = formatValue(v)
			}
			fmt.Fprintf(&buf, "  %s: %s\n", r.OID(), strings.Join(values, " | "))
		}
	}
	if result.Err != nil {
		fmt.Fprintf(&buf, "error: %s\n", result.Err)
	}
	return []byte(buf.String())
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
