package admin

import (
	"sort"

	"github.com/google/uuid"
)

// StatusGroup is a named set of statuses, e.g. the life cycle of a ticket.
type StatusGroup struct {
	name     string
	id       int64
	uuid     uuid.UUID
	byKey    map[string]*Status
	statuses []*Status
}

// Status is one member of a status group.
type Status struct {
	id    int64
	key   string
	label string
	uuid  uuid.UUID
	group *StatusGroup
}

// Name returns the group name.
func (g *StatusGroup) Name() string { return g.name }

// ID returns the group id.
func (g *StatusGroup) ID() int64 { return g.id }

// UUID returns the group UUID.
func (g *StatusGroup) UUID() uuid.UUID { return g.uuid }

// Status looks up a status by key.
func (g *StatusGroup) Status(key string) (*Status, bool) {
	s, ok := g.byKey[key]
	return s, ok
}

// Statuses returns the statuses ordered by id.
func (g *StatusGroup) Statuses() []*Status { return g.statuses }

func (g *StatusGroup) add(s *Status) {
	s.group = g
	g.byKey[s.key] = s
	g.statuses = append(g.statuses, s)
	sort.Slice(g.statuses, func(i, j int) bool { return g.statuses[i].id < g.statuses[j].id })
}

// ID returns the numeric status id stored in status columns.
func (s *Status) ID() int64 { return s.id }

// Key returns the status key used in query literals.
func (s *Status) Key() string { return s.key }

// Label returns the display label, falling back to the key.
func (s *Status) Label() string {
	if s.label == "" {
		return s.key
	}
	return s.label
}

// UUID returns the status UUID.
func (s *Status) UUID() uuid.UUID { return s.uuid }

// Group returns the owning status group.
func (s *Status) Group() *StatusGroup { return s.group }

func (s *Status) String() string { return s.group.name + "." + s.key }
