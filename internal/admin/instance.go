package admin

import (
	"fmt"
	"strconv"
	"strings"
)

// Instance identifies one row of one type.
type Instance struct {
	Type *Type
	ID   int64
}

// OID renders the object identifier "<typeID>.<rowID>".
func (i Instance) OID() string {
	if i.Type == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d", i.Type.id, i.ID)
}

// IsValid reports whether the instance references a type and a row.
func (i Instance) IsValid() bool {
	return i.Type != nil && i.ID > 0
}

func (i Instance) String() string {
	if i.Type == nil {
		return fmt.Sprintf("?.%d", i.ID)
	}
	return i.Type.name + ":" + i.OID()
}

// ParseOID splits an object identifier into type id and row id.
func ParseOID(oid string) (typeID, id int64, err error) {
	head, tail, ok := strings.Cut(strings.TrimSpace(oid), ".")
	if !ok {
		return 0, 0, fmt.Errorf("invalid oid %q: expected <type>.<id>", oid)
	}
	typeID, err = strconv.ParseInt(head, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid oid %q: type part: %w", oid, err)
	}
	id, err = strconv.ParseInt(tail, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid oid %q: id part: %w", oid, err)
	}
	if typeID <= 0 || id <= 0 {
		return 0, 0, fmt.Errorf("invalid oid %q: ids must be positive", oid)
	}
	return typeID, id, nil
}
