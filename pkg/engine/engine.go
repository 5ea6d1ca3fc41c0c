// Package engine evaluates .shelf sources. A source is a small zygomys
// program whose (shelf ...) call describes one shelving unit; evaluation
// runs in a fresh sandbox and yields a normalized shelf.Configuration.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/shelfwright/pkg/shelf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a rejected
// configuration.
type EvalError struct {
	Line    int
	Field   string // configuration field, for rejected configurations
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	base       shelf.Configuration
	materials  shelf.MaterialTable
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithBase sets the configuration that (shelf ...) starts from. Sources
// only need to name the fields they change.
func WithBase(cfg shelf.Configuration) Option {
	return func(e *Engine) { e.base = cfg }
}

// WithMaterials sets the table whose board presets :material may name.
func WithMaterials(t shelf.MaterialTable) Option {
	return func(e *Engine) { e.materials = t }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:   EvalTimeout,
		base:      shelf.DefaultConfiguration(),
		materials: shelf.DefaultMaterials(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate runs source and returns the configuration it describes.
// A source without a (shelf ...) call describes the base configuration.
//
// Return semantics:
//   - On success: returns configuration + nil errors + nil error
//   - On parse/eval failure or a rejected configuration: returns nil + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*shelf.Configuration, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		cfg, evalErrs, err := e.evaluate(source)
		ch <- evalResult{config: cfg, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*shelf.Configuration, []EvalError, error) {
	b := &builder{cfg: e.base, materials: e.materials}

	if strings.TrimSpace(source) != "" {
		// Sandbox mode prevents user code from accessing the filesystem or syscalls.
		env := zygo.NewZlispSandbox()
		defer env.Stop()
		registerBuiltins(env, b)

		if err := env.LoadString(preprocessSource(source)); err != nil {
			return nil, parseZygomysError(err), nil
		}
		if _, err := env.Run(); err != nil {
			return nil, parseZygomysError(err), nil
		}
	}

	cfg, err := shelf.NormalizeWith(b.cfg, e.materials)
	if err != nil {
		return nil, configErrors(err), nil
	}
	return &cfg, nil, nil
}

// configErrors flattens a Normalize error into one EvalError per problem.
func configErrors(err error) []EvalError {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]EvalError, 0, len(errs))
	for _, e := range errs {
		ee := EvalError{Message: e.Error()}
		var ce *shelf.ConfigError
		if errors.As(e, &ce) {
			ee.Field = ce.Field
		}
		out = append(out, ee)
	}
	return out
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
