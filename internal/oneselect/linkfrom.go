package oneselect

import (
	"context"
	"sort"
	"strconv"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/querysql"
	"github.com/efaps/efql/internal/store"
)

// LinkFromSelect is a 1:n fan-out: a child Query over the instances whose
// link attribute points at the parent's current instance. Every OneSelect
// sharing the same chain prefix shares one LinkFromSelect and thus one child
// statement.
type LinkFromSelect struct {
	key      string
	linkType *admin.Type
	linkAttr *admin.Attribute
	query    *Query

	parents []*OneSelect
	byRel   map[int64][]int
}

func newLinkFromSelect(parent *Query, key string, linkType *admin.Type, linkAttr *admin.Attribute) (*LinkFromSelect, error) {
	opts := parent.st.Options()
	types := querysql.ExpandTypes([]*admin.Type{linkType}, !opts.ExcludeChildTypes)
	child, err := NewQuery(parent.res, types, opts)
	if err != nil {
		return nil, err
	}

	st := child.st
	relAlias := st.AttributeAlias(st.MainAlias(linkType), linkType, linkAttr)
	child.relAlias, child.relColumn = relAlias, linkAttr.Column()
	child.relCol = st.Select().Column(relAlias, linkAttr.Column())

	return &LinkFromSelect{key: key, linkType: linkType, linkAttr: linkAttr, query: child}, nil
}

// Key returns the selection prefix the fan-out is registered under, e.g.
// "linkfrom[Position#DocumentLink]".
func (lf *LinkFromSelect) Key() string { return lf.key }

// LinkType returns the type whose instances are fanned out.
func (lf *LinkFromSelect) LinkType() *admin.Type { return lf.linkType }

// LinkAttribute returns the link attribute pointing back at the parent.
func (lf *LinkFromSelect) LinkAttribute() *admin.Attribute { return lf.linkAttr }

// Query returns the child query.
func (lf *LinkFromSelect) Query() *Query { return lf.query }

// execute runs the child query restricted to the ids captured by the parent
// selections. Without parent ids nothing is queried.
func (lf *LinkFromSelect) execute(ctx context.Context, db store.Querier) error {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range lf.parents {
		for _, id := range p.linkIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	lf.byRel = make(map[int64][]int)
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = strconv.FormatInt(id, 10)
	}
	lf.query.st.Select().Where().Add(querysql.Criteria{
		Alias:      lf.query.relAlias,
		Column:     lf.query.relColumn,
		Comparison: querysql.CompIn,
		Values:     values,
	})

	if err := lf.query.Execute(ctx, db); err != nil {
		return err
	}
	for i, rel := range lf.query.relIDs {
		lf.byRel[rel] = append(lf.byRel[rel], i)
	}
	return nil
}

// valuesFor returns the values of child selection sel for the child rows
// linked to parent id, in child row order.
func (lf *LinkFromSelect) valuesFor(sel *OneSelect, id int64) []any {
	rows := lf.byRel[id]
	all := sel.Values()
	out := make([]any, 0, len(rows))
	for _, i := range rows {
		out = append(out, all[i])
	}
	return out
}
