package schema

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/yaml"
)

//go:embed scenario.cue
var scenarioSchema []byte

// Validation error codes.
const (
	ErrCodeParse  = "E201" // document is not valid YAML
	ErrCodeSchema = "E202" // document does not match the scenario schema
	ErrCodeLoad   = "E203" // document matches the schema but the scenario loader rejects it
	ErrCodeRead   = "E204" // file cannot be read
)

// ValidationError is one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	compileOnce sync.Once
	compiled    cue.Value
	compileErr  error
)

// scenarioDef compiles the embedded schema once and returns #Scenario.
// A cue.Context is not safe for concurrent use, so the shared value is only
// read after compilation.
func scenarioDef() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileBytes(scenarioSchema, cue.Filename("scenario.cue"))
		if err := v.Err(); err != nil {
			compileErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		compiled = v.LookupPath(cue.ParsePath("#Scenario"))
		compileErr = compiled.Err()
	})
	return compiled, compileErr
}

var validateMu sync.Mutex

// ValidateScenario checks a scenario YAML document against the scenario
// schema and returns every violation found. filename is used in positions.
func ValidateScenario(filename string, data []byte) []ValidationError {
	def, err := scenarioDef()
	if err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrCodeSchema}}
	}

	validateMu.Lock()
	defer validateMu.Unlock()

	file, err := yaml.Extract(filename, data)
	if err != nil {
		return toValidationErrors(err, filename, ErrCodeParse)
	}
	doc := def.Context().BuildFile(file)
	if err := doc.Err(); err != nil {
		return toValidationErrors(err, filename, ErrCodeParse)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err, filename, ErrCodeSchema)
	}
	return nil
}

// toValidationErrors flattens a CUE error list, keeping the position that
// falls in the validated document.
func toValidationErrors(err error, filename, code string) []ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []ValidationError{{Field: "document", Message: err.Error(), Code: code}}
	}

	out := make([]ValidationError, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		field := pathString(e.Path())
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		key := field + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ValidationError{
			Field:   field,
			Message: msg,
			Code:    code,
			Line:    lineIn(cueerrors.Positions(e), filename),
		})
	}
	return out
}

// pathString renders an error path relative to the document, dropping the
// schema definition the document was unified with.
func pathString(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	if len(path) == 0 {
		return "document"
	}
	return cue.MakePath(selectors(path)...).String()
}

func selectors(path []string) []cue.Selector {
	sels := make([]cue.Selector, len(path))
	for i, p := range path {
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			sels[i] = cue.Index(n)
			continue
		}
		sels[i] = cue.Str(p)
	}
	return sels
}

func lineIn(positions []token.Pos, filename string) int {
	for _, pos := range positions {
		if pos.IsValid() && pos.Filename() == filename {
			return pos.Line()
		}
	}
	return 0
}
