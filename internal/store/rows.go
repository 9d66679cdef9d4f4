package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Row is one scanned result row in select-list order.
//
// Values are normalized: TEXT and BLOB arrive as string, integers as int64,
// reals as float64, NULL as nil. Columns declared DATE, DATETIME or
// TIMESTAMP always hold a sql.NullTime.
type Row []any

// IsTemporal reports whether a declared column type holds dates or
// timestamps.
func IsTemporal(declType string) bool {
	switch strings.ToUpper(declType) {
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return true
	}
	return false
}

// ScanRows reads every remaining row and closes rows.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	temporal := make([]bool, len(types))
	for i, ct := range types {
		temporal[i] = IsTemporal(ct.DatabaseTypeName())
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(types))
		dest := make([]any, len(types))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(raw))
		for i, v := range raw {
			if temporal[i] {
				t, err := toNullTime(v)
				if err != nil {
					return nil, fmt.Errorf("column %s: %w", types[i].Name(), err)
				}
				row[i] = t
				continue
			}
			row[i] = normalize(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toNullTime(v any) (sql.NullTime, error) {
	switch val := v.(type) {
	case nil:
		return sql.NullTime{}, nil
	case time.Time:
		return sql.NullTime{Time: val, Valid: true}, nil
	case []byte:
		v = string(val)
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("not a timestamp: %v", v)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// Int64 converts a scanned id column to int64. NULL reports false.
func Int64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
