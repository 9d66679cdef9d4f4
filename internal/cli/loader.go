package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/admin"
	"github.com/efaps/efql/internal/eql"
	"github.com/efaps/efql/internal/query"
)

// loadModel reads the configured admin model and reports failures through
// f.
func loadModel(opts *RootOptions, f *OutputFormatter) (*admin.Registry, error) {
	path := opts.Config.Model
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeModelNotFound,
			fmt.Sprintf("model not found: %s", path), nil)
	}
	f.VerboseLog("Loading model from %s", path)

	reg, err := admin.Load(path)
	if err != nil {
		var loadErr *admin.LoadError
		if errors.As(err, &loadErr) {
			return nil, f.Fail(ExitCommandError, ErrCodeModelInvalid, loadErr.Error(), nil)
		}
		return nil, f.Fail(ExitCommandError, ErrCodeModelInvalid, "model failed to load", err)
	}
	f.VerboseLog("Loaded %d type(s), %d table(s)", len(reg.Types()), len(reg.Tables()))
	return reg, nil
}

// readQuery decodes a query document from path, or from stdin when path
// is "-".
func readQuery(cmd *cobra.Command, path string) (*eql.Query, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	return eql.DecodeYAML(r)
}

// newExecutor builds an executor over reg from the resolved configuration.
func newExecutor(opts *RootOptions, cmd *cobra.Command, reg *admin.Registry, f *OutputFormatter) (*query.Executor, error) {
	log := opts.logger(cmd)
	qopts, err := opts.Config.QueryOptions(log)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	return query.NewExecutor(reg, qopts, query.WithLogger(log)), nil
}

// compileErrorCode maps a compilation failure to its error code.
func compileErrorCode(err error) string {
	if eql.ErrInvalidQuery.Is(err) || eql.ErrInvalidSelection.Is(err) {
		return ErrCodeQueryInvalid
	}
	return ErrCodeCompile
}
