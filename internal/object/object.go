// Package object defines the runtime value representation EPP
// programs operate on: a small tagged-variant Object interface, mirrored
// after babyman-slug-lang/internal/object/object.go's Type()/Inspect()
// shape but scaled to the six value kinds spec.md §3 names.
package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/liam13141/epp/internal/ast"
)

type Type string

const (
	INTEGER_OBJ  Type = "INTEGER"
	FLOAT_OBJ    Type = "FLOAT"
	STRING_OBJ   Type = "STRING"
	BOOLEAN_OBJ  Type = "BOOLEAN"
	NOTHING_OBJ  Type = "NOTHING"
	LIST_OBJ     Type = "LIST"
	FUNCTION_OBJ Type = "FUNCTION"
	BUILTIN_OBJ  Type = "BUILTIN"
)

// Object is the tagged-variant interface every EPP runtime value
// implements.
type Object interface {
	Type() Type
	Inspect() string
}

type Integer struct{ Value int64 }

func (i *Integer) Type() Type      { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (f *Float) Type() Type      { return FLOAT_OBJ }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct{ Value string }

func (s *String) Type() Type      { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

type Boolean struct{ Value bool }

func (b *Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Nothing struct{}

func (n *Nothing) Type() Type      { return NOTHING_OBJ }
func (n *Nothing) Inspect() string { return "nothing" }

// List is a single shared, mutable container: mutation operations
// modify in place and are visible through any alias, per spec.md §3.
type List struct {
	Elements []Object
}

func (l *List) Type() Type { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		if s, ok := el.(*String); ok {
			parts[i] = fmt.Sprintf("%q", s.Value)
		} else {
			parts[i] = el.Inspect()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Function is a user-defined callable: `define` registers one of
// these in the interpreter's function table. It is not bound as a
// variable, so a function name cannot be read or passed as a value.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Stmt
}

func (f *Function) Type() Type      { return FUNCTION_OBJ }
func (f *Function) Inspect() string { return "<function " + f.Name + ">" }

// BuiltinFn is the signature every host-provided callable implements.
// It receives the call's source line for error attribution.
type BuiltinFn func(line int, args []Object) (Object, error)

// Builtin wraps a host-provided callable — a pure value function
// (len, str, round, ...) or an opaque host collaborator (the web/pixel
// functions), all invoked through the same call path per spec.md §4.3.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

func (b *Builtin) Type() Type      { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "<builtin " + b.Name + ">" }

// Truthy implements spec.md §4.3's truthiness rule: numeric nonzero /
// non-empty string / non-empty list / boolean-true / not-nothing.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case *Integer:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Boolean:
		return v.Value
	case *Nothing:
		return false
	case *List:
		return len(v.Elements) > 0
	default:
		return true
	}
}

// Equal implements EPP's `==` / `equals` semantics: numeric values
// compare across int/float, other kinds compare by value/identity.
func Equal(a, b Object) bool {
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
		return false
	}
	switch av := a.(type) {
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Nothing:
		_, ok := b.(*Nothing)
		return ok
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func asNumber(o Object) (float64, bool) {
	switch v := o.(type) {
	case *Integer:
		return float64(v.Value), true
	case *Float:
		return v.Value, true
	default:
		return 0, false
	}
}
