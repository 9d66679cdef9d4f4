package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string

	// SQL is the statement the assertion looked at, if any.
	SQL string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
	}
	return buf.String()
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertSQLContains:
		return assertSQL(result, a, true)
	case AssertSQLNotContains:
		return assertSQL(result, a, false)
	case AssertAliasCount:
		return assertAliasCount(result, a)
	case AssertJoinCount:
		return assertJoinCount(result, a)
	case AssertErrorContains:
		return assertErrorContains(result, a)
	case AssertRowCount:
		return assertRowCount(result, a)
	case AssertRows:
		return assertRows(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func statementSQL(result *Result, a Assertion) (string, error) {
	if a.Statement >= len(result.SQL) {
		return "", &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("statement %d", a.Statement),
			Actual:   fmt.Sprintf("%d statements compiled", len(result.SQL)),
		}
	}
	return result.SQL[a.Statement], nil
}

func assertSQL(result *Result, a Assertion, contains bool) error {
	sql, err := statementSQL(result, a)
	if err != nil {
		return err
	}
	if strings.Contains(sql, a.Value) == contains {
		return nil
	}
	expected := fmt.Sprintf("SQL contains %q", a.Value)
	if !contains {
		expected = fmt.Sprintf("SQL does not contain %q", a.Value)
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: "mismatch", SQL: sql}
}

func assertAliasCount(result *Result, a Assertion) error {
	sql, err := statementSQL(result, a)
	if err != nil {
		return err
	}
	if got := len(result.Aliases[a.Statement]); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d aliases", a.Count),
			Actual:   fmt.Sprintf("%d aliases %v", got, result.Aliases[a.Statement]),
			SQL:      sql,
		}
	}
	return nil
}

func assertJoinCount(result *Result, a Assertion) error {
	sql, err := statementSQL(result, a)
	if err != nil {
		return err
	}
	if got := strings.Count(sql, "LEFT JOIN"); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d joins", a.Count),
			Actual:   fmt.Sprintf("%d joins", got),
			SQL:      sql,
		}
	}
	return nil
}

func assertErrorContains(result *Result, a Assertion) error {
	if result.Err == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("error containing %q", a.Value),
			Actual:   "no error",
		}
	}
	if !strings.Contains(result.Err.Error(), a.Value) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("error containing %q", a.Value),
			Actual:   result.Err.Error(),
		}
	}
	return nil
}

func assertRowCount(result *Result, a Assertion) error {
	if got := len(result.Rows); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", got),
		}
	}
	return nil
}

func assertRows(result *Result, a Assertion) error {
	got := make([]string, len(result.Rows))
	for i, r := range result.Rows {
		got[i] = r.OID()
	}
	if strings.Join(got, ",") != strings.Join(a.OIDs, ",") {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("rows %v", a.OIDs),
			Actual:   fmt.Sprintf("rows %v", got),
		}
	}
	return nil
}
