package testutil

import (
	_ "embed"
	"io"
	"log/slog"
	"testing"

	"github.com/efaps/efql/internal/admin"
)

// ModelCUE is the fixture admin model shared by package tests.
//
// Storage layout:
//   - Person/Employee share T_PERSON (TYPEID) with child table T_PERSON_EXT
//   - Ticket lives alone in T_TICKET with a TicketStatus status
//   - Document (abstract), Invoice and Receipt share T_DOC (TYPEID)
//   - ProductClass/ProductClassTextile classify Product through T_PRODCLASS
//   - PersonPhone rows form the Person.Phones attribute set
//
//go:embed model.cue
var ModelCUE string

// Registry builds the fixture model, failing the test on error.
func Registry(t testing.TB) *admin.Registry {
	t.Helper()
	reg, err := admin.LoadString(ModelCUE, "model.cue")
	if err != nil {
		t.Fatalf("load fixture model: %v", err)
	}
	return reg
}

// MustType returns a fixture type by name, failing the test when missing.
func MustType(t testing.TB, reg *admin.Registry, name string) *admin.Type {
	t.Helper()
	typ, ok := reg.Type(name)
	if !ok {
		t.Fatalf("fixture type %q not found", name)
	}
	return typ
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
