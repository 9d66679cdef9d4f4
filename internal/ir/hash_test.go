package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementID_Deterministic(t *testing.T) {
	id1, err := StatementID("SELECT T0.ID FROM T_PERSON T0", []string{"T0"})
	require.NoError(t, err)
	id2, err := StatementID("SELECT T0.ID FROM T_PERSON T0", []string{"T0"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestStatementID_DependsOnAliases(t *testing.T) {
	a := MustStatementID("SELECT 1", []string{"T0"})
	b := MustStatementID("SELECT 1", []string{"T0", "T1"})
	assert.NotEqual(t, a, b)
}

func TestPlanID_DomainSeparated(t *testing.T) {
	plan := IRObject{"sql": IRString("SELECT 1"), "aliases": IRArray{}}

	planID, err := PlanID(plan)
	require.NoError(t, err)
	stmtID := MustStatementID("SELECT 1", nil)

	assert.NotEqual(t, planID, stmtID, "same payload under different domains must not collide")
}
