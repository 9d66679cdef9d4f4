package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/admin"
)

// TypeInfo describes one admin type.
type TypeInfo struct {
	Name       string   `json:"name"`
	ID         int64    `json:"id"`
	UUID       string   `json:"uuid,omitempty"`
	Parent     string   `json:"parent,omitempty"`
	Table      string   `json:"table,omitempty"`
	Abstract   bool     `json:"abstract,omitempty"`
	Classifies string   `json:"classifies,omitempty"`
	Attributes []string `json:"attributes"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [type-name]...",
		Short: "List the model's types",
		Long: `List the types of the admin model with their ids, parents, main
tables and attributes. Name types to restrict the listing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runTypes(opts *RootOptions, names []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	reg, err := loadModel(opts, f)
	if err != nil {
		return err
	}

	types := reg.Types()
	if len(names) > 0 {
		types = types[:0:0]
		for _, n := range names {
			t, ok := reg.Type(n)
			if !ok {
				return f.Fail(ExitFailure, ErrCodeGeneric, admin.ErrUnknownType.New(n).Error(), nil)
			}
			types = append(types, t)
		}
	}

	infos := make([]TypeInfo, len(types))
	for i, t := range types {
		infos[i] = typeInfo(t)
	}

	if f.IsJSON() {
		return f.Success(infos)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tPARENT\tTABLE\tATTRIBUTES")
	for _, info := range infos {
		name := info.Name
		if info.Abstract {
			name += " (abstract)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n", name, info.ID, info.Parent, info.Table, len(info.Attributes))
	}
	return tw.Flush()
}

func typeInfo(t *admin.Type) TypeInfo {
	info := TypeInfo{Name: t.Name(), ID: t.ID(), Abstract: t.IsAbstract()}
	if id := t.UUID(); id != uuid.Nil {
		info.UUID = id.String()
	}
	if p := t.Parent(); p != nil {
		info.Parent = p.Name()
	}
	if table := t.MainTable(); table != nil {
		info.Table = table.Name()
	}
	if c := t.Classifies(); c != nil {
		info.Classifies = c.Name()
	}
	for _, a := range t.Attributes() {
		info.Attributes = append(info.Attributes, a.Name())
	}
	return info
}
