package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/eql"
)

// ValidationResult holds the outcome for every query file.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// FileValidation is the outcome for one query file.
type FileValidation struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file>...",
		Short: "Check queries against the model",
		Long: `Check that query files decode, pass structural validation and
compile against the admin model. Every file is checked; the command fails
if any of them is invalid.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	reg, err := loadModel(opts, f)
	if err != nil {
		return err
	}
	exec, err := newExecutor(opts, cmd, reg, f)
	if err != nil {
		return err
	}

	result := ValidationResult{Valid: true}
	for _, file := range files {
		f.VerboseLog("Validating %s", file)
		fv := FileValidation{File: file, Valid: true}

		if q, err := readQuery(cmd, file); err != nil {
			fv.Code, fv.Message = ErrCodeQueryRead, err.Error()
		} else if err := eql.Validate(q); err != nil {
			fv.Code, fv.Message = ErrCodeQueryInvalid, err.Error()
		} else if _, err := exec.Compile(cmd.Context(), q); err != nil {
			fv.Code, fv.Message = compileErrorCode(err), err.Error()
		}
		if fv.Code != "" {
			fv.Valid = false
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if f.IsJSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(f.Writer, "✓ %s\n", fv.File)
				continue
			}
			fmt.Fprintf(f.Writer, "✗ %s\n  %s: %s\n", fv.File, fv.Code, fv.Message)
		}
	}

	if !result.Valid {
		invalid := 0
		for _, fv := range result.Files {
			if !fv.Valid {
				invalid++
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d query file(s) invalid", invalid, len(files)))
	}
	return nil
}
