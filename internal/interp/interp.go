// Package interp is the tree-walking evaluator over the ast package,
// grounded on babyman-slug-lang/internal/evaluator's Eval-dispatch
// shape, generalized from a single Object-return value to the
// statement/expression split spec.md §4.3 describes. Control flow
// (return/break/continue) is realized as a distinct signal value
// threaded back up through block execution, the same technique
// babyman-slug-lang's evaluator uses for object.ReturnValue, rather
// than panics or Go errors.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/object"
)

// DefaultMaxLoopIterations is the runaway-loop safety ceiling from
// spec.md §5, overridable via --max-loop-iterations or config.
const DefaultMaxLoopIterations = 100000

type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
)

type signal struct {
	kind  signalKind
	value object.Object
	line  int
}

// TraceRecorder receives one event per executed statement. It is
// satisfied by internal/trace.Sink without interp needing to import
// the sqlite driver directly; nil means no tracing.
type TraceRecorder interface {
	Record(line int, kind, detail string) error
}

// Interpreter executes a parsed program against an Environment. Out
// and In are the say/ask I/O streams; they default to stdout/stdin in
// cmd/epp but are swappable for tests and the REPL.
type Interpreter struct {
	Env          *Environment
	Functions    map[string]*object.Function
	Builtins     map[string]*object.Builtin
	MaxLoopIters int
	Out          io.Writer
	In           io.Reader
	Trace        TraceRecorder

	inReader *bufio.Reader
}

func New(out io.Writer, in io.Reader) *Interpreter {
	ip := &Interpreter{
		Env:          NewGlobal(),
		Functions:    map[string]*object.Function{},
		Builtins:     map[string]*object.Builtin{},
		MaxLoopIters: DefaultMaxLoopIterations,
		Out:          out,
		In:           in,
	}
	RegisterBuiltins(ip)
	return ip
}

// Run executes a full program top to bottom. A return/break/continue
// signal escaping to the top level is a RuntimeError per spec.md §4.3.
func (ip *Interpreter) Run(prog *ast.Program) error {
	sig, err := ip.execBlock(prog.Statements, ip.Env)
	if err != nil {
		return err
	}
	return ip.signalEscaped(sig)
}

func (ip *Interpreter) signalEscaped(sig signal) error {
	switch sig.kind {
	case sigReturn:
		return diag.NewRuntimeError(sig.line, diag.ReturnOutsideFn, "I found 'return' outside of any function.")
	case sigBreak:
		return diag.NewRuntimeError(sig.line, diag.LoopCtrlOutside, "I found 'stop' outside of a loop.")
	case sigContinue:
		return diag.NewRuntimeError(sig.line, diag.LoopCtrlOutside, "I found 'skip' outside of a loop.")
	default:
		return nil
	}
}

func (ip *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (signal, error) {
	for _, s := range stmts {
		sig, err := ip.execStmt(s, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (ip *Interpreter) execStmt(s ast.Stmt, env *Environment) (signal, error) {
	if ip.Trace != nil {
		if err := ip.Trace.Record(s.Line(), stmtTraceKind(s), ""); err != nil {
			slog.Warn("trace record failed", slog.Int("line", s.Line()), slog.String("error", err.Error()))
		}
	}
	switch n := s.(type) {
	case *ast.Assign:
		v, err := ip.eval(n.Value, env)
		if err != nil {
			return signal{}, err
		}
		env.Set(n.Name, v)
		return signal{}, nil

	case *ast.Say:
		v, err := ip.eval(n.Value, env)
		if err != nil {
			return signal{}, err
		}
		fmt.Fprintln(ip.Out, v.Inspect())
		return signal{}, nil

	case *ast.Ask:
		prompt, err := ip.eval(n.Prompt, env)
		if err != nil {
			return signal{}, err
		}
		fmt.Fprint(ip.Out, prompt.Inspect()+" ")
		env.Set(n.Name, coerceInput(ip.readLine()))
		return signal{}, nil

	case *ast.MathMut:
		return signal{}, ip.execMathMut(n, env)

	case *ast.ListCreate:
		env.Set(n.Name, &object.List{})
		return signal{}, nil

	case *ast.ListRemove:
		return signal{}, ip.execListRemove(n, env)

	case *ast.If:
		return ip.execIf(n, env)

	case *ast.RepeatCount:
		return ip.execRepeatCount(n, env)

	case *ast.RepeatWhile:
		return ip.execRepeatWhile(n, env)

	case *ast.ForEach:
		return ip.execForEach(n, env)

	case *ast.DefineFn:
		ip.Functions[n.Name] = &object.Function{Name: n.Name, Params: n.Params, Body: n.Body}
		return signal{}, nil

	case *ast.CallStmt:
		_, err := ip.callNamed(n.LineNo, n.Name, n.Args, env)
		return signal{}, err

	case *ast.Return:
		var v object.Object = &object.Nothing{}
		if n.Value != nil {
			var err error
			v, err = ip.eval(n.Value, env)
			if err != nil {
				return signal{}, err
			}
		}
		return signal{kind: sigReturn, value: v, line: n.LineNo}, nil

	case *ast.LoopCtrl:
		if n.Kind == ast.LoopBreak {
			return signal{kind: sigBreak, line: n.LineNo}, nil
		}
		return signal{kind: sigContinue, line: n.LineNo}, nil

	case *ast.ExprStmt:
		_, err := ip.eval(n.Value, env)
		return signal{}, err

	default:
		return signal{}, diag.NewRuntimeError(s.Line(), diag.TypeMismatch, "I don't know how to run this statement.")
	}
}

// readLine reads one whole line of input for `ask`, mirroring
// original_source/epp_interpreter.py's use of Python's input() (which
// reads to the end of the line, not just the first token). The
// bufio.Reader is created once and reused so a second `ask` doesn't
// lose bytes the first one's read buffered past the newline.
func (ip *Interpreter) readLine() string {
	if ip.In == nil {
		return ""
	}
	if ip.inReader == nil {
		ip.inReader = bufio.NewReader(ip.In)
	}
	line, err := ip.inReader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func (ip *Interpreter) execMathMut(n *ast.MathMut, env *Environment) error {
	cur, ok := env.Get(n.Name)
	if !ok {
		return diag.NewRuntimeError(n.LineNo, diag.UndefinedVariable, "'%s' hasn't been set yet.", n.Name)
	}
	operand, err := ip.eval(n.Operand, env)
	if err != nil {
		return err
	}
	// `add E to L` appends to a list rather than performing arithmetic,
	// symmetric with ListRemove's `remove E from L`.
	if list, ok := cur.(*object.List); ok && n.Op == ast.MathAdd {
		list.Elements = append(list.Elements, operand)
		return nil
	}
	result, err := arithmetic(n.LineNo, mathOpSymbol(n.Op), cur, operand)
	if err != nil {
		return err
	}
	env.Set(n.Name, result)
	return nil
}

// stmtTraceKind names the trace_events.kind for one executed
// statement, per the "record each executed statement (line, kind)"
// contract of the optional --trace-db sink.
func stmtTraceKind(s ast.Stmt) string {
	switch s.(type) {
	case *ast.Assign:
		return "assign"
	case *ast.Say:
		return "say"
	case *ast.Ask:
		return "ask"
	case *ast.MathMut:
		return "math_mut"
	case *ast.ListCreate:
		return "list_create"
	case *ast.ListRemove:
		return "list_remove"
	case *ast.If:
		return "if"
	case *ast.RepeatCount:
		return "repeat_count"
	case *ast.RepeatWhile:
		return "repeat_while"
	case *ast.ForEach:
		return "for_each"
	case *ast.DefineFn:
		return "define_fn"
	case *ast.CallStmt:
		return "call"
	case *ast.Return:
		return "return"
	case *ast.LoopCtrl:
		return "loop_ctrl"
	case *ast.ExprStmt:
		return "expr"
	default:
		return "unknown"
	}
}

func mathOpSymbol(op ast.MathOp) string {
	switch op {
	case ast.MathAdd:
		return "+"
	case ast.MathSub:
		return "-"
	case ast.MathMul:
		return "*"
	default:
		return "/"
	}
}

func (ip *Interpreter) execListRemove(n *ast.ListRemove, env *Environment) error {
	cur, ok := env.Get(n.Name)
	if !ok {
		return diag.NewRuntimeError(n.LineNo, diag.UndefinedVariable, "'%s' hasn't been set yet.", n.Name)
	}
	list, ok := cur.(*object.List)
	if !ok {
		return diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' is not a list.", n.Name)
	}
	target, err := ip.eval(n.Value, env)
	if err != nil {
		return err
	}
	for i, el := range list.Elements {
		if object.Equal(el, target) {
			list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
			return nil
		}
	}
	return diag.NewRuntimeError(n.LineNo, diag.ListRemoveMissing, "%s is not in the list '%s'.", target.Inspect(), n.Name)
}

func (ip *Interpreter) execIf(n *ast.If, env *Environment) (signal, error) {
	for _, branch := range n.Branches {
		v, err := ip.eval(branch.Condition, env)
		if err != nil {
			return signal{}, err
		}
		if object.Truthy(v) {
			return ip.execBlock(branch.Body, env)
		}
	}
	if n.Else != nil {
		return ip.execBlock(n.Else, env)
	}
	return signal{}, nil
}

func (ip *Interpreter) execRepeatCount(n *ast.RepeatCount, env *Environment) (signal, error) {
	countObj, err := ip.eval(n.Count, env)
	if err != nil {
		return signal{}, err
	}
	count, ok := asInt(countObj)
	if !ok {
		return signal{}, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "I need a number of times to repeat, not %s.", countObj.Inspect())
	}
	for i := int64(0); i < count; i++ {
		if i >= int64(ip.MaxLoopIters) {
			return signal{}, diag.NewRuntimeError(n.LineNo, diag.RunawayLoop, "this loop ran past %d iterations; I stopped it.", ip.MaxLoopIters)
		}
		sig, err := ip.execBlock(n.Body, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind == sigBreak {
			break
		}
		if sig.kind == sigReturn {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (ip *Interpreter) execRepeatWhile(n *ast.RepeatWhile, env *Environment) (signal, error) {
	for i := 0; ; i++ {
		if i >= ip.MaxLoopIters {
			return signal{}, diag.NewRuntimeError(n.LineNo, diag.RunawayLoop, "this loop ran past %d iterations; I stopped it.", ip.MaxLoopIters)
		}
		cond, err := ip.eval(n.Condition, env)
		if err != nil {
			return signal{}, err
		}
		if !object.Truthy(cond) {
			break
		}
		sig, err := ip.execBlock(n.Body, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind == sigBreak {
			break
		}
		if sig.kind == sigReturn {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (ip *Interpreter) execForEach(n *ast.ForEach, env *Environment) (signal, error) {
	iterObj, err := ip.eval(n.Iterable, env)
	if err != nil {
		return signal{}, err
	}
	var items []object.Object
	switch v := iterObj.(type) {
	case *object.List:
		items = v.Elements
	case *object.String:
		for _, r := range v.Value {
			items = append(items, &object.String{Value: string(r)})
		}
	default:
		return signal{}, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' is not something I can loop over.", iterObj.Inspect())
	}
	for i, item := range items {
		if i >= ip.MaxLoopIters {
			return signal{}, diag.NewRuntimeError(n.LineNo, diag.RunawayLoop, "this loop ran past %d iterations; I stopped it.", ip.MaxLoopIters)
		}
		env.Set(n.VarName, item)
		sig, err := ip.execBlock(n.Body, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind == sigBreak {
			break
		}
		if sig.kind == sigReturn {
			return sig, nil
		}
	}
	return signal{}, nil
}
