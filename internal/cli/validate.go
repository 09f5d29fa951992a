package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/harness"
	"github.com/roach88/strata/internal/schema"
)

// FileValidation holds the validation result of one scenario file.
type FileValidation struct {
	File   string                   `json:"file"`
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the scenario schema.

Every schema violation in a file is reported with its line. Files that
match the schema are then loaded as the harness would load them, which
catches problems the schema cannot see (duplicate object IDs, for one).
Directories are searched for .yaml and .yml files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := expandScenarioPaths(paths)
	if err != nil {
		return outputValidateError(formatter, schema.ErrCodeRead, err.Error())
	}
	if len(files) == 0 {
		return outputValidateError(formatter, schema.ErrCodeRead, "no scenario files found")
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := ValidateScenarioFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

// ValidateScenarioFile checks one file against the schema, then loads it.
func ValidateScenarioFile(file string) FileValidation {
	fv := FileValidation{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		fv.Errors = []schema.ValidationError{{Field: "file", Message: err.Error(), Code: schema.ErrCodeRead}}
		return fv
	}

	fv.Errors = schema.ValidateScenario(file, data)
	if len(fv.Errors) == 0 {
		if _, err := harness.ParseScenario(data); err != nil {
			fv.Errors = []schema.ValidationError{{Field: "scenario", Message: err.Error(), Code: schema.ErrCodeLoad}}
		}
	}
	fv.Valid = len(fv.Errors) == 0
	return fv
}

// expandScenarioPaths replaces directories with the scenario files they hold.
func expandScenarioPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("path not found: %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := harness.FindScenarios(p, "")
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All scenarios valid (%d file(s))\n", len(result.Files))
	return nil
}

// outputValidateError reports a command-level failure (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors reports invalid files (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	invalid := 0
	var first schema.ValidationError
	for _, fv := range result.Files {
		if fv.Valid {
			continue
		}
		if invalid == 0 {
			first = fv.Errors[0]
		}
		invalid++
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: first.Code, Message: first.Message},
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed in %d file(s)", invalid))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, fv := range result.Files {
		if fv.Valid {
			continue
		}
		fmt.Fprintln(formatter.Writer, fv.File)
		for _, e := range fv.Errors {
			if e.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d\n", e.Line)
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed in %d file(s)", invalid))
}
