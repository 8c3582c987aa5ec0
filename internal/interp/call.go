package interp

import (
	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/object"
)

// callNamed resolves `name` as either a user-defined function or a
// builtin and evaluates a call to it. User functions run in an
// isolated [global, local] environment per spec.md's no-closure
// invariant; builtins run directly against the evaluated arguments.
func (ip *Interpreter) callNamed(line int, name string, argExprs []ast.Expr, env *Environment) (object.Object, error) {
	args := make([]object.Object, 0, len(argExprs))
	for _, a := range argExprs {
		v, err := ip.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if fn, ok := ip.Functions[name]; ok {
		return ip.callUserFunction(line, fn, args)
	}
	if b, ok := ip.Builtins[name]; ok {
		return b.Fn(line, args)
	}
	return nil, diag.NewRuntimeError(line, diag.UndefinedName, "I don't know of anything called '%s'.", name)
}

func (ip *Interpreter) callUserFunction(line int, fn *object.Function, args []object.Object) (object.Object, error) {
	if len(args) != len(fn.Params) {
		return nil, diag.NewRuntimeError(line, diag.ArityMismatch,
			"'%s' takes %d parameter(s), but %d were given.", fn.Name, len(fn.Params), len(args))
	}

	callEnv := NewCallEnv(ip.Env.Global())
	for i, p := range fn.Params {
		callEnv.SetLocal(p, args[i])
	}

	sig, err := ip.execBlock(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	switch sig.kind {
	case sigReturn:
		return sig.value, nil
	case sigBreak:
		return nil, diag.NewRuntimeError(sig.line, diag.LoopCtrlOutside, "I found 'stop' outside of a loop in '%s'.", fn.Name)
	case sigContinue:
		return nil, diag.NewRuntimeError(sig.line, diag.LoopCtrlOutside, "I found 'skip' outside of a loop in '%s'.", fn.Name)
	default:
		return &object.Nothing{}, nil
	}
}
