package exprparser

import (
	"testing"

	"github.com/liam13141/epp/internal/ast"
)

func TestPrecedence(t *testing.T) {
	expr, err := Parse("1 + 2 * 3", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("got %#v, want top-level '+'", expr)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Fatalf("got %#v, want right-hand '*' grouping", bin.Right)
	}
}

func TestCallAndIndex(t *testing.T) {
	expr, err := Parse(`greet("Alice")[0]`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, ok := expr.(*ast.Index)
	if !ok {
		t.Fatalf("got %#v, want *ast.Index", expr)
	}
	call, ok := idx.Target.(*ast.Call)
	if !ok || call.Name != "greet" || len(call.Args) != 1 {
		t.Fatalf("got %#v, want call to greet/1", idx.Target)
	}
}

func TestSliceOpenEnded(t *testing.T) {
	expr, err := Parse("mylist[:3]", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sl, ok := expr.(*ast.Slice)
	if !ok {
		t.Fatalf("got %#v, want *ast.Slice", expr)
	}
	if sl.Start != nil {
		t.Errorf("expected nil Start for an open-ended slice")
	}
	if sl.End == nil {
		t.Errorf("expected non-nil End")
	}
}

func TestEmptyExpressionErrors(t *testing.T) {
	if _, err := Parse("", 1); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestTrailingTokensError(t *testing.T) {
	if _, err := Parse("1 2", 1); err == nil {
		t.Fatal("expected an error for trailing tokens")
	}
}

func TestNaturalCallWithArgs(t *testing.T) {
	expr, err := Parse("call square with 12", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "square" || len(call.Args) != 1 {
		t.Fatalf("got %#v, want a call to square/1", expr)
	}
	num, ok := call.Args[0].(*ast.NumberLit)
	if !ok || num.Value != 12 {
		t.Fatalf("got %#v, want argument 12", call.Args[0])
	}
}

func TestNaturalRunWithMultipleArgs(t *testing.T) {
	expr, err := Parse("run add with 1, 2", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("got %#v, want a call to add/2", expr)
	}
}

func TestNaturalCallWithNoArgs(t *testing.T) {
	expr, err := Parse("call greet", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "greet" || len(call.Args) != 0 {
		t.Fatalf("got %#v, want a zero-arg call to greet", expr)
	}
}
