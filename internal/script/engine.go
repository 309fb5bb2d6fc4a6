package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Script variables shared between the host and a condition script.
const (
	varContext = "ctx"
	varVisible = "visible"
	varToast   = "toast"
)

// SecurityLimits defines resource constraints for script execution
type SecurityLimits struct {
	MaxExecutionTime time.Duration
	MaxAllocs        int64
	AllowedModules   []string
}

// DefaultSecurityLimits returns the constraints applied to action scripts.
func DefaultSecurityLimits() SecurityLimits {
	return SecurityLimits{
		MaxExecutionTime: 50 * time.Millisecond,
		MaxAllocs:        10_000,
		AllowedModules:   []string{"text", "math", "times", "fmt"},
	}
}

// Engine compiles tengo condition scripts under a fixed set of limits.
type Engine struct {
	limits SecurityLimits
}

// NewEngine creates an engine with the given limits.
func NewEngine(limits SecurityLimits) *Engine {
	return &Engine{limits: limits}
}

func (e *Engine) modules() *tengo.ModuleMap {
	modules := tengo.NewModuleMap()
	for _, name := range e.limits.AllowedModules {
		if mod, ok := stdlib.BuiltinModules[name]; ok {
			modules.AddBuiltinModule(name, mod)
		}
	}
	return modules
}

// Program is a compiled script. Each run works on a clone, so a Program is
// safe for concurrent use.
type Program struct {
	actionID string
	name     string
	compiled *tengo.Compiled
	timeout  time.Duration
}

// Outcome is what a script left behind after running.
type Outcome struct {
	Visible bool
	Toast   string
}

// Compile prepares a script. The script reads the evaluation context from
// `ctx` and sets `visible` and optionally `toast`.
func (e *Engine) Compile(actionID, name string, src []byte) (*Program, error) {
	s := tengo.NewScript(src)
	s.SetImports(e.modules())
	if e.limits.MaxAllocs > 0 {
		s.SetMaxAllocs(e.limits.MaxAllocs)
	}
	if err := s.Add(varContext, map[string]interface{}{}); err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, actionID, name, "failed to declare context", err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, actionID, name, "failed to compile", err)
	}
	return &Program{
		actionID: actionID,
		name:     name,
		compiled: compiled,
		timeout:  e.limits.MaxExecutionTime,
	}, nil
}

// Run executes the program against input, which is converted to plain maps
// through its JSON form.
func (p *Program) Run(ctx context.Context, input any) (Outcome, error) {
	value, err := toPlain(input)
	if err != nil {
		return Outcome{}, NewScriptError(ErrorTypeExecution, p.actionID, p.name, "failed to convert input", err)
	}

	c := p.compiled.Clone()
	if err := c.Set(varContext, value); err != nil {
		return Outcome{}, NewScriptError(ErrorTypeExecution, p.actionID, p.name, "failed to set context", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := c.RunContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{}, NewScriptError(ErrorTypeTimeout, p.actionID, p.name, "script timed out", err)
		}
		return Outcome{}, NewScriptError(ErrorTypeExecution, p.actionID, p.name, "script failed", err)
	}

	if !c.IsDefined(varVisible) {
		return Outcome{}, NewScriptError(ErrorTypeResult, p.actionID, p.name, "script did not set `visible`", nil)
	}
	out := Outcome{Visible: c.Get(varVisible).Bool()}
	if c.IsDefined(varToast) {
		out.Toast = c.Get(varToast).String()
	}
	return out, nil
}

func toPlain(input any) (interface{}, error) {
	if input == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return value, nil
}
