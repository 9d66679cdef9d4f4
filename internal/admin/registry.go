package admin

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// TableSpec declares a physical table.
type TableSpec struct {
	Name       string `json:"name,omitempty"`
	TypeColumn string `json:"typeColumn,omitempty"`
	MainTable  string `json:"mainTable,omitempty"`
}

// AttributeSpec declares an attribute of a type.
type AttributeSpec struct {
	Name        string   `json:"name,omitempty"`
	Table       string   `json:"table,omitempty"`
	Column      string   `json:"column,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Link        string   `json:"link,omitempty"`
	StatusGroup string   `json:"statusGroup,omitempty"`
	SetType     string   `json:"setType,omitempty"`
	SetLink     string   `json:"setLink,omitempty"`
}

// TypeSpec declares a type.
type TypeSpec struct {
	Name       string                   `json:"name,omitempty"`
	ID         int64                    `json:"id"`
	UUID       string                   `json:"uuid,omitempty"`
	Label      string                   `json:"label,omitempty"`
	Parent     string                   `json:"parent,omitempty"`
	Abstract   bool                     `json:"abstract,omitempty"`
	Table      string                   `json:"table,omitempty"`
	Status     string                   `json:"status,omitempty"`
	Classifies string                   `json:"classifies,omitempty"`
	ClassLink  string                   `json:"classLink,omitempty"`
	Attributes map[string]AttributeSpec `json:"attributes,omitempty"`
}

// StatusSpec declares one status of a group.
type StatusSpec struct {
	Key   string `json:"key,omitempty"`
	ID    int64  `json:"id"`
	Label string `json:"label,omitempty"`
	UUID  string `json:"uuid,omitempty"`
}

// StatusGroupSpec declares a status group.
type StatusGroupSpec struct {
	Name     string                `json:"name,omitempty"`
	ID       int64                 `json:"id"`
	UUID     string                `json:"uuid,omitempty"`
	Statuses map[string]StatusSpec `json:"statuses,omitempty"`
}

// Registry is an immutable snapshot of the admin model.
type Registry struct {
	types        map[string]*Type
	typesByID    map[int64]*Type
	typesByUUID  map[uuid.UUID]*Type
	tables       map[string]*SQLTable
	statusGroups map[string]*StatusGroup
	statusByID   map[int64]*Status
}

// Type looks up a type by name.
func (r *Registry) Type(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// TypeByID looks up a type by its numeric id.
func (r *Registry) TypeByID(id int64) (*Type, bool) {
	t, ok := r.typesByID[id]
	return t, ok
}

// TypeByUUID looks up a type by UUID.
func (r *Registry) TypeByUUID(id uuid.UUID) (*Type, bool) {
	t, ok := r.typesByUUID[id]
	return t, ok
}

// Types returns all types ordered by name.
func (r *Registry) Types() []*Type {
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Roots returns the types without parent ordered by name.
func (r *Registry) Roots() []*Type {
	var out []*Type
	for _, t := range r.Types() {
		if t.parent == nil {
			out = append(out, t)
		}
	}
	return out
}

// Table looks up a table by name.
func (r *Registry) Table(name string) (*SQLTable, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all tables ordered by name.
func (r *Registry) Tables() []*SQLTable {
	out := make([]*SQLTable, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// StatusGroup looks up a status group by name.
func (r *Registry) StatusGroup(name string) (*StatusGroup, bool) {
	g, ok := r.statusGroups[name]
	return g, ok
}

// StatusByID looks up a status by its numeric id.
func (r *Registry) StatusByID(id int64) (*Status, bool) {
	s, ok := r.statusByID[id]
	return s, ok
}

// StatusID resolves a status key within a group to its numeric id.
func (r *Registry) StatusID(group *StatusGroup, key string) (int64, bool) {
	if group == nil {
		return 0, false
	}
	s, ok := group.Status(key)
	if !ok {
		return 0, false
	}
	return s.id, true
}

// Instance resolves an object identifier to an instance.
func (r *Registry) Instance(oid string) (Instance, error) {
	typeID, id, err := ParseOID(oid)
	if err != nil {
		return Instance{}, err
	}
	t, ok := r.typesByID[typeID]
	if !ok {
		return Instance{}, fmt.Errorf("invalid oid %q: %w", oid, ErrUnknownType.New(fmt.Sprint(typeID)))
	}
	return Instance{Type: t, ID: id}, nil
}

// Builder accumulates specs and resolves them into a Registry.
type Builder struct {
	tables       []TableSpec
	types        []TypeSpec
	statusGroups []StatusGroupSpec
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Table adds a table declaration.
func (b *Builder) Table(spec TableSpec) *Builder {
	b.tables = append(b.tables, spec)
	return b
}

// Type adds a type declaration.
func (b *Builder) Type(spec TypeSpec) *Builder {
	b.types = append(b.types, spec)
	return b
}

// StatusGroup adds a status group declaration.
func (b *Builder) StatusGroup(spec StatusGroupSpec) *Builder {
	b.statusGroups = append(b.statusGroups, spec)
	return b
}

// Build resolves all references and returns the immutable Registry.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		types:        make(map[string]*Type),
		typesByID:    make(map[int64]*Type),
		typesByUUID:  make(map[uuid.UUID]*Type),
		tables:       make(map[string]*SQLTable),
		statusGroups: make(map[string]*StatusGroup),
		statusByID:   make(map[int64]*Status),
	}

	if err := b.buildTables(r); err != nil {
		return nil, err
	}
	if err := b.buildStatusGroups(r); err != nil {
		return nil, err
	}
	if err := b.buildTypes(r); err != nil {
		return nil, err
	}
	buildColumns(r)
	return r, nil
}

func (b *Builder) buildTables(r *Registry) error {
	for _, spec := range b.tables {
		if spec.Name == "" {
			return fmt.Errorf("table declared without name")
		}
		r.tables[spec.Name] = &SQLTable{name: spec.Name, typeColumn: spec.TypeColumn}
	}
	for _, spec := range b.tables {
		if spec.MainTable == "" {
			continue
		}
		main, ok := r.tables[spec.MainTable]
		if !ok {
			return ErrUnknownTable.New("table "+spec.Name, spec.MainTable)
		}
		r.tables[spec.Name].mainTable = main
	}
	return nil
}

func (b *Builder) buildStatusGroups(r *Registry) error {
	for _, spec := range b.statusGroups {
		id, err := parseOrDeriveUUID(spec.UUID, "status-group:"+spec.Name)
		if err != nil {
			return fmt.Errorf("status group %s: %w", spec.Name, err)
		}
		g := &StatusGroup{name: spec.Name, id: spec.ID, uuid: id, byKey: make(map[string]*Status)}
		for key, sspec := range spec.Statuses {
			if sspec.Key != "" {
				key = sspec.Key
			}
			sid, err := parseOrDeriveUUID(sspec.UUID, "status:"+spec.Name+"."+key)
			if err != nil {
				return fmt.Errorf("status %s.%s: %w", spec.Name, key, err)
			}
			s := &Status{id: sspec.ID, key: key, label: sspec.Label, uuid: sid}
			if prev, dup := r.statusByID[s.id]; dup {
				return fmt.Errorf("status id %d is used by %s and %s.%s", s.id, prev, spec.Name, key)
			}
			g.add(s)
			r.statusByID[s.id] = s
		}
		r.statusGroups[spec.Name] = g
	}
	return nil
}

func (b *Builder) buildTypes(r *Registry) error {
	for _, spec := range b.types {
		id, err := parseOrDeriveUUID(spec.UUID, "type:"+spec.Name)
		if err != nil {
			return fmt.Errorf("type %s: %w", spec.Name, err)
		}
		t := &Type{
			id:         spec.ID,
			uuid:       id,
			name:       spec.Name,
			label:      spec.Label,
			abstract:   spec.Abstract,
			attributes: make(map[string]*Attribute),
			statusAttr: spec.Status,
			classLink:  spec.ClassLink,
		}
		if prev, dup := r.typesByID[t.id]; dup {
			return ErrDuplicateID.New(t.id, prev.name, t.name)
		}
		r.types[t.name] = t
		r.typesByID[t.id] = t
		r.typesByUUID[t.uuid] = t
	}

	specs := make(map[string]TypeSpec, len(b.types))
	for _, spec := range b.types {
		specs[spec.Name] = spec
		t := r.types[spec.Name]
		if spec.Parent != "" {
			parent, ok := r.types[spec.Parent]
			if !ok {
				return ErrUnknownType.New(spec.Parent)
			}
			t.parent = parent
			parent.children = append(parent.children, t)
		}
		if spec.Classifies != "" {
			classified, ok := r.types[spec.Classifies]
			if !ok {
				return ErrUnknownType.New(spec.Classifies)
			}
			t.classifies = classified
			classified.classifiers = append(classified.classifiers, t)
		}
	}
	for _, t := range r.types {
		sortTypes(t.children)
		sortTypes(t.classifiers)
		if err := checkCycle(t); err != nil {
			return err
		}
	}

	// Parents first, so inherited tables and implicit attributes resolve.
	for _, t := range topoOrder(r) {
		if err := resolveMainTable(r, t, specs[t.name]); err != nil {
			return err
		}
		if err := resolveAttributes(r, t, specs[t.name]); err != nil {
			return err
		}
		addImplicitAttributes(t)
	}
	for _, t := range r.types {
		if t.classifies != nil && t.ClassLinkAttribute() == nil {
			return ErrInvalidAttribute.New(t.name+"/"+t.classLink, "classification link attribute not found")
		}
	}
	return nil
}

func resolveMainTable(r *Registry, t *Type, spec TypeSpec) error {
	if spec.Table != "" {
		table, ok := r.tables[spec.Table]
		if !ok {
			return ErrUnknownTable.New("type "+t.name, spec.Table)
		}
		if table.IsChild() {
			return ErrChildAsMain.New(t.name, table.name)
		}
		t.mainTable = table
	} else if t.parent != nil {
		t.mainTable = t.parent.mainTable
	}
	if t.mainTable == nil && !t.abstract {
		return ErrNoMainTable.New(t.name)
	}
	return nil
}

func resolveAttributes(r *Registry, t *Type, spec TypeSpec) error {
	for name, aspec := range spec.Attributes {
		if aspec.Name != "" {
			name = aspec.Name
		}
		attr := &Attribute{name: name, owner: t}
		label := t.name + "/" + name

		kind, err := ParseKind(aspec.Kind)
		if err != nil {
			return ErrInvalidAttribute.New(label, err.Error())
		}
		attr.kind = kind

		switch {
		case aspec.Table != "":
			table, ok := r.tables[aspec.Table]
			if !ok {
				return ErrUnknownTable.New("attribute "+label, aspec.Table)
			}
			attr.table = table
		default:
			attr.table = t.mainTable
		}

		attr.columns = append(attr.columns, aspec.Columns...)
		if aspec.Column != "" {
			attr.columns = append([]string{aspec.Column}, attr.columns...)
		}

		switch kind {
		case KindLink:
			target, ok := r.types[aspec.Link]
			if !ok {
				return ErrInvalidAttribute.New(label, fmt.Sprintf("unknown link target %q", aspec.Link))
			}
			attr.link = target
		case KindStatus:
			group, ok := r.statusGroups[aspec.StatusGroup]
			if !ok {
				return ErrInvalidAttribute.New(label, fmt.Sprintf("unknown status group %q", aspec.StatusGroup))
			}
			attr.statusGroup = group
		case KindAttributeSet:
			setType, ok := r.types[aspec.SetType]
			if !ok {
				return ErrInvalidAttribute.New(label, fmt.Sprintf("unknown set type %q", aspec.SetType))
			}
			if aspec.SetLink == "" {
				return ErrInvalidAttribute.New(label, "attribute set requires setLink")
			}
			attr.setType = setType
			attr.setLink = aspec.SetLink
			attr.table = nil
			attr.columns = nil
		}

		if kind != KindAttributeSet {
			if attr.table == nil {
				return ErrInvalidAttribute.New(label, "no table")
			}
			if len(attr.columns) == 0 {
				return ErrInvalidAttribute.New(label, "no column")
			}
		}
		t.attributes[name] = attr
	}
	return nil
}

// addImplicitAttributes gives a type its own ID and Type attributes whenever
// the inherited ones live in another table.
func addImplicitAttributes(t *Type) {
	if t.mainTable == nil {
		return
	}
	if id := t.Attribute(AttrID); id == nil || id.table != t.mainTable {
		t.attributes[AttrID] = &Attribute{
			name: AttrID, owner: t, table: t.mainTable, columns: []string{"ID"}, kind: KindLong,
		}
	}
	if !t.mainTable.HasTypeColumn() {
		return
	}
	if typ := t.Attribute(AttrType); typ == nil || typ.table != t.mainTable {
		t.attributes[AttrType] = &Attribute{
			name: AttrType, owner: t, table: t.mainTable, columns: []string{t.mainTable.typeColumn}, kind: KindType,
		}
	}
}

func checkCycle(t *Type) error {
	seen := map[*Type]bool{}
	for cur := t; cur != nil; cur = cur.parent {
		if seen[cur] {
			return ErrInheritanceCycle.New(t.name)
		}
		seen[cur] = true
	}
	return nil
}

func topoOrder(r *Registry) []*Type {
	var out []*Type
	for _, root := range r.Roots() {
		out = append(out, root.Descendants(true)...)
	}
	return out
}

func sortTypes(ts []*Type) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].name < ts[j].name })
}

// parseOrDeriveUUID parses an explicit UUID or derives a stable one from the
// element name so models without UUIDs still get reproducible ids.
func parseOrDeriveUUID(raw, name string) (uuid.UUID, error) {
	if raw != "" {
		return uuid.Parse(raw)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("efql:"+name)), nil
}
