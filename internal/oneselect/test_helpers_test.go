package oneselect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
	"github.com/efaps/efql/internal/testutil"
)

// seededStore opens a fixture database with the model tables and seed rows.
func seededStore(t *testing.T, reg *admin.Registry) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "efql.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.ApplySchema(ctx, reg.DDL()))
	for _, stmt := range testutil.Seed {
		_, err := s.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return s
}

// newQuery starts a query over the named fixture types and their children.
func newQuery(t *testing.T, reg *admin.Registry, opts querysql.Options, names ...string) *Query {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.DiscardLogger()
	}
	types := querysql.ExpandTypes(querysql.ResolveTypes(reg, names, opts.Logger), true)
	q, err := NewQuery(reg, types, opts)
	require.NoError(t, err)
	return q
}

// run adds selections, executes the query and returns the selects.
func run(t *testing.T, names []string, selections ...string) (*Query, []*OneSelect) {
	t.Helper()
	reg := testutil.Registry(t)
	db := seededStore(t, reg)
	q := newQuery(t, reg, querysql.Options{}, names...)
	sels := make([]*OneSelect, len(selections))
	for i, s := range selections {
		sel, err := q.AddSelect(s)
		require.NoError(t, err)
		sels[i] = sel
	}
	require.NoError(t, q.Execute(context.Background(), db))
	return q, sels
}
