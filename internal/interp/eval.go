package interp

import (
	"strconv"
	"strings"

	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/object"
)

func (ip *Interpreter) eval(e ast.Expr, env *Environment) (object.Object, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return &object.Integer{Value: n.Value}, nil
	case *ast.FloatLit:
		return &object.Float{Value: n.Value}, nil
	case *ast.StringLit:
		return &object.String{Value: n.Value}, nil
	case *ast.BoolLit:
		return &object.Boolean{Value: n.Value}, nil
	case *ast.NothingLit:
		return &object.Nothing{}, nil

	case *ast.Ident:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, diag.NewRuntimeError(n.LineNo, diag.UndefinedVariable, "'%s' hasn't been set yet.", n.Name)
		}
		return v, nil

	case *ast.ListLit:
		elems := make([]object.Object, 0, len(n.Elements))
		for _, el := range n.Elements {
			v, err := ip.eval(el, env)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return &object.List{Elements: elems}, nil

	case *ast.Unary:
		right, err := ip.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.LineNo, n.Op, right)

	case *ast.Binary:
		return ip.evalBinary(n, env)

	case *ast.Contains:
		return ip.evalContains(n, env)

	case *ast.Index:
		return ip.evalIndex(n, env)

	case *ast.Slice:
		return ip.evalSlice(n, env)

	case *ast.Call:
		return ip.callNamed(n.LineNo, n.Name, n.Args, env)

	default:
		return nil, diag.NewRuntimeError(e.Line(), diag.TypeMismatch, "I don't know how to evaluate this expression.")
	}
}

func evalUnary(line int, op string, right object.Object) (object.Object, error) {
	switch op {
	case "-":
		switch v := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -v.Value}, nil
		case *object.Float:
			return &object.Float{Value: -v.Value}, nil
		}
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't negate %s.", right.Inspect())
	case "not":
		return &object.Boolean{Value: !object.Truthy(right)}, nil
	default:
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "unknown unary operator '%s'.", op)
	}
}

func (ip *Interpreter) evalBinary(n *ast.Binary, env *Environment) (object.Object, error) {
	if n.Op == "and" || n.Op == "or" {
		left, err := ip.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		leftTruthy := object.Truthy(left)
		if n.Op == "and" && !leftTruthy {
			return &object.Boolean{Value: false}, nil
		}
		if n.Op == "or" && leftTruthy {
			return &object.Boolean{Value: true}, nil
		}
		right, err := ip.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return &object.Boolean{Value: object.Truthy(right)}, nil
	}

	left, err := ip.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ip.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return &object.Boolean{Value: object.Equal(left, right)}, nil
	case "!=":
		return &object.Boolean{Value: !object.Equal(left, right)}, nil
	case "<", "<=", ">", ">=":
		return compare(n.LineNo, n.Op, left, right)
	default:
		return arithmetic(n.LineNo, n.Op, left, right)
	}
}

func compare(line int, op string, left, right object.Object) (object.Object, error) {
	ln, lok := asFloat(left)
	rn, rok := asFloat(right)
	if lok && rok {
		var result bool
		switch op {
		case "<":
			result = ln < rn
		case "<=":
			result = ln <= rn
		case ">":
			result = ln > rn
		case ">=":
			result = ln >= rn
		}
		return &object.Boolean{Value: result}, nil
	}
	ls, lsok := left.(*object.String)
	rs, rsok := right.(*object.String)
	if lsok && rsok {
		var result bool
		switch op {
		case "<":
			result = ls.Value < rs.Value
		case "<=":
			result = ls.Value <= rs.Value
		case ">":
			result = ls.Value > rs.Value
		case ">=":
			result = ls.Value >= rs.Value
		}
		return &object.Boolean{Value: result}, nil
	}
	return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't compare %s and %s.", left.Inspect(), right.Inspect())
}

// arithmetic implements `+ - * /` for numbers, plus the `+` string/list
// concatenation sugar spec.md §4.3 calls out as an Open Question,
// resolved in DESIGN.md: string+string concatenates, list+list
// concatenates, otherwise both operands must be numeric.
func arithmetic(line int, op string, left, right object.Object) (object.Object, error) {
	if op == "+" {
		if ls, ok := left.(*object.String); ok {
			if rs, ok := right.(*object.String); ok {
				return &object.String{Value: ls.Value + rs.Value}, nil
			}
		}
		if ll, ok := left.(*object.List); ok {
			if rl, ok := right.(*object.List); ok {
				elems := make([]object.Object, 0, len(ll.Elements)+len(rl.Elements))
				elems = append(elems, ll.Elements...)
				elems = append(elems, rl.Elements...)
				return &object.List{Elements: elems}, nil
			}
		}
	}

	li, liok := left.(*object.Integer)
	ri, riok := right.(*object.Integer)
	if liok && riok && op != "/" {
		switch op {
		case "+":
			return &object.Integer{Value: li.Value + ri.Value}, nil
		case "-":
			return &object.Integer{Value: li.Value - ri.Value}, nil
		case "*":
			return &object.Integer{Value: li.Value * ri.Value}, nil
		case "%":
			if ri.Value == 0 {
				return nil, diag.NewRuntimeError(line, diag.DivisionByZero, "I can't divide by zero.")
			}
			return &object.Integer{Value: li.Value % ri.Value}, nil
		}
	}

	lf, lfok := asFloat(left)
	rf, rfok := asFloat(right)
	if !lfok || !rfok {
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't do arithmetic with %s and %s.", left.Inspect(), right.Inspect())
	}
	switch op {
	case "+":
		return &object.Float{Value: lf + rf}, nil
	case "-":
		return &object.Float{Value: lf - rf}, nil
	case "*":
		return &object.Float{Value: lf * rf}, nil
	case "/":
		if rf == 0 {
			return nil, diag.NewRuntimeError(line, diag.DivisionByZero, "I can't divide by zero.")
		}
		return &object.Float{Value: lf / rf}, nil
	case "%":
		if rf == 0 {
			return nil, diag.NewRuntimeError(line, diag.DivisionByZero, "I can't divide by zero.")
		}
		return &object.Float{Value: float64(int64(lf) % int64(rf))}, nil
	default:
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "unknown operator '%s'.", op)
	}
}

func (ip *Interpreter) evalContains(n *ast.Contains, env *Environment) (object.Object, error) {
	haystack, err := ip.eval(n.Haystack, env)
	if err != nil {
		return nil, err
	}
	needle, err := ip.eval(n.Needle, env)
	if err != nil {
		return nil, err
	}
	var found bool
	switch h := haystack.(type) {
	case *object.List:
		for _, el := range h.Elements {
			if object.Equal(el, needle) {
				found = true
				break
			}
		}
	case *object.String:
		ns, ok := needle.(*object.String)
		if !ok {
			return nil, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "I can only check whether a piece of text contains other text.")
		}
		found = strings.Contains(h.Value, ns.Value)
	default:
		return nil, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' is not something I can search inside.", haystack.Inspect())
	}
	if n.Negate {
		found = !found
	}
	return &object.Boolean{Value: found}, nil
}

func (ip *Interpreter) evalIndex(n *ast.Index, env *Environment) (object.Object, error) {
	target, err := ip.eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	idxObj, err := ip.eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	idx, ok := asInt(idxObj)
	if !ok {
		return nil, diag.NewRuntimeError(n.LineNo, diag.BadIndex, "'%s' is not a valid index.", idxObj.Inspect())
	}
	switch v := target.(type) {
	case *object.List:
		i := normalizeIndex(int(idx), len(v.Elements))
		if i < 0 || i >= len(v.Elements) {
			return nil, diag.NewRuntimeError(n.LineNo, diag.BadIndex, "index %d is out of range for this list.", idx)
		}
		return v.Elements[i], nil
	case *object.String:
		runes := []rune(v.Value)
		i := normalizeIndex(int(idx), len(runes))
		if i < 0 || i >= len(runes) {
			return nil, diag.NewRuntimeError(n.LineNo, diag.BadIndex, "index %d is out of range for this text.", idx)
		}
		return &object.String{Value: string(runes[i])}, nil
	default:
		return nil, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' can't be indexed.", target.Inspect())
	}
}

func (ip *Interpreter) evalSlice(n *ast.Slice, env *Environment) (object.Object, error) {
	target, err := ip.eval(n.Target, env)
	if err != nil {
		return nil, err
	}

	length := 0
	switch v := target.(type) {
	case *object.List:
		length = len(v.Elements)
	case *object.String:
		length = len([]rune(v.Value))
	default:
		return nil, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' can't be sliced.", target.Inspect())
	}

	start, end := 0, length
	if n.Start != nil {
		v, err := ip.eval(n.Start, env)
		if err != nil {
			return nil, err
		}
		i, ok := asInt(v)
		if !ok {
			return nil, diag.NewRuntimeError(n.LineNo, diag.BadIndex, "'%s' is not a valid slice index.", v.Inspect())
		}
		start = clampIndex(normalizeIndex(int(i), length), length)
	}
	if n.End != nil {
		v, err := ip.eval(n.End, env)
		if err != nil {
			return nil, err
		}
		i, ok := asInt(v)
		if !ok {
			return nil, diag.NewRuntimeError(n.LineNo, diag.BadIndex, "'%s' is not a valid slice index.", v.Inspect())
		}
		end = clampIndex(normalizeIndex(int(i), length), length)
	}
	if end < start {
		end = start
	}

	switch v := target.(type) {
	case *object.List:
		elems := make([]object.Object, end-start)
		copy(elems, v.Elements[start:end])
		return &object.List{Elements: elems}, nil
	case *object.String:
		runes := []rune(v.Value)
		return &object.String{Value: string(runes[start:end])}, nil
	}
	return nil, diag.NewRuntimeError(n.LineNo, diag.TypeMismatch, "'%s' can't be sliced.", target.Inspect())
}

func normalizeIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func asInt(o object.Object) (int64, bool) {
	switch v := o.(type) {
	case *object.Integer:
		return v.Value, true
	case *object.Float:
		return int64(v.Value), true
	default:
		return 0, false
	}
}

func asFloat(o object.Object) (float64, bool) {
	switch v := o.(type) {
	case *object.Integer:
		return float64(v.Value), true
	case *object.Float:
		return v.Value, true
	default:
		return 0, false
	}
}

// coerceInput implements `ask`'s numeric auto-coercion: a line that
// parses cleanly as an integer or float is stored as such, otherwise
// it is kept as text, matching original_source/epp_interpreter.py's
// input-coercion behavior.
func coerceInput(s string) object.Object {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &object.Integer{Value: i}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &object.Float{Value: f}
	}
	return &object.String{Value: s}
}
