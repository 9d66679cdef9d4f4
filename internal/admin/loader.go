package admin

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// LoadString compiles a single CUE model document.
//
// The document has three optional top-level structs keyed by name:
//
//	tables: T_PERSON: {typeColumn: "TYPEID"}
//	statusGroups: TicketStatus: {id: 900, statuses: Open: {id: 42}}
//	types: Person: {id: 100, table: "T_PERSON", attributes: Name: {column: "NAME"}}
func LoadString(src, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return fromValue(v)
}

// LoadDir unifies all CUE files of a directory and builds the model from
// the result.
func LoadDir(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("model directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("scanning %s: %v", dir, err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileString("{}")
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, &LoadError{Field: "model", Message: fmt.Sprintf("reading %s: %v", file, err)}
		}
		fv := ctx.CompileBytes(src, cue.Filename(file))
		if err := fv.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		value = value.Unify(fv)
	}
	if err := value.Validate(); err != nil {
		return nil, formatCUEError(err)
	}
	return fromValue(value)
}

// Load builds the model from a directory of CUE files or a single .cue
// file.
func Load(path string) (*Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("model path: %v", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Field: "model", Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return LoadString(string(src), path)
}

// FindCUEFiles returns the .cue files directly inside dir.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func fromValue(v cue.Value) (*Registry, error) {
	b := NewBuilder()

	err := eachField(v, "tables", func(name string, fv cue.Value) error {
		var spec TableSpec
		if err := fv.Decode(&spec); err != nil {
			return decodeError("tables."+name, fv, err)
		}
		spec.Name = name
		b.Table(spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "statusGroups", func(name string, fv cue.Value) error {
		var spec StatusGroupSpec
		if err := fv.Decode(&spec); err != nil {
			return decodeError("statusGroups."+name, fv, err)
		}
		spec.Name = name
		b.StatusGroup(spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "types", func(name string, fv cue.Value) error {
		var spec TypeSpec
		if err := fv.Decode(&spec); err != nil {
			return decodeError("types."+name, fv, err)
		}
		if !fv.LookupPath(cue.ParsePath("id")).Exists() {
			return &LoadError{Field: "types." + name + ".id", Message: "id is required", Pos: fv.Pos()}
		}
		spec.Name = name
		b.Type(spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return b.Build()
}

// eachField calls fn for every regular field of the struct at path.
// A missing path is not an error.
func eachField(v cue.Value, path string, fn func(name string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func decodeError(field string, v cue.Value, err error) error {
	if le := formatCUEError(err); le != err {
		return le
	}
	return &LoadError{Field: field, Message: err.Error(), Pos: v.Pos()}
}

// formatCUEError extracts the first error with position info.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
