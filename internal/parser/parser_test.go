package parser

import (
	"reflect"
	"testing"

	"github.com/liam13141/epp/internal/ast"
	"github.com/liam13141/epp/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

// stripLine zeroes LineNo fields recursively isn't practical for every
// node kind here; instead the alias-equivalence test below compares
// the statement TYPE and the folded canonical text shape indirectly,
// by asserting both forms produce an *ast.Assign with the same Name.
func TestAliasEquivalenceSetPutLet(t *testing.T) {
	forms := []string{
		"set total to 10",
		"put 10 into total",
		"let total be 10",
	}
	for _, src := range forms {
		prog := mustParse(t, src)
		if len(prog.Statements) != 1 {
			t.Fatalf("%q: got %d statements, want 1", src, len(prog.Statements))
		}
		assign, ok := prog.Statements[0].(*ast.Assign)
		if !ok {
			t.Fatalf("%q: got %T, want *ast.Assign", src, prog.Statements[0])
		}
		if assign.Name != "total" {
			t.Errorf("%q: got name %q, want 'total'", src, assign.Name)
		}
	}
}

func TestAliasEquivalenceSayPrintShow(t *testing.T) {
	for _, src := range []string{`say "hi"`, `print "hi"`, `show "hi"`} {
		prog := mustParse(t, src)
		if _, ok := prog.Statements[0].(*ast.Say); !ok {
			t.Errorf("%q: got %T, want *ast.Say", src, prog.Statements[0])
		}
	}
}

func TestAliasEquivalenceAddIncrease(t *testing.T) {
	a := mustParse(t, "add 5 to score")
	b := mustParse(t, "increase score by 5")
	am := a.Statements[0].(*ast.MathMut)
	bm := b.Statements[0].(*ast.MathMut)
	if am.Op != bm.Op || am.Name != bm.Name {
		t.Errorf("got %+v and %+v, want matching op/name", am, bm)
	}
}

func TestIfElifElseBlock(t *testing.T) {
	src := `if x is greater than 10 then
say "big"
otherwise if x is greater than 5 then
say "medium"
otherwise
say "small"
end if`
	prog := mustParse(t, src)
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("got %T, want *ast.If", prog.Statements[0])
	}
	if len(ifStmt.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(ifStmt.Branches))
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected an otherwise body")
	}
}

func TestRepeatTimesBlock(t *testing.T) {
	src := "repeat 3 times\nsay \"hi\"\nend repeat"
	prog := mustParse(t, src)
	rep, ok := prog.Statements[0].(*ast.RepeatCount)
	if !ok {
		t.Fatalf("got %T, want *ast.RepeatCount", prog.Statements[0])
	}
	if len(rep.Body) != 1 {
		t.Fatalf("got %d body statements, want 1", len(rep.Body))
	}
}

func TestMissingCloserIsReported(t *testing.T) {
	tokens, err := lexer.Lex("repeat 3 times\nsay \"hi\"")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, err := Parse(tokens); err == nil {
		t.Fatal("expected a missing-closer parse error")
	}
}

func TestDefineAndCall(t *testing.T) {
	src := `define greet with name
say name
end define
call greet with "Alice"`
	prog := mustParse(t, src)
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	def, ok := prog.Statements[0].(*ast.DefineFn)
	if !ok {
		t.Fatalf("got %T, want *ast.DefineFn", prog.Statements[0])
	}
	if !reflect.DeepEqual(def.Params, []string{"name"}) {
		t.Errorf("got params %v, want [name]", def.Params)
	}
	callStmt, ok := prog.Statements[1].(*ast.CallStmt)
	if !ok || callStmt.Name != "greet" {
		t.Fatalf("got %#v, want call to greet", prog.Statements[1])
	}
}

func TestUnknownStatementSuggestsClosest(t *testing.T) {
	tokens, err := lexer.Lex("sey \"hi\"")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = Parse(tokens)
	if err == nil {
		t.Fatal("expected an unknown-statement error")
	}
}

func TestHostCallSugarVisitRoute(t *testing.T) {
	src := `create a website called "Demo" and store in site
when someone visits "/" on site show "hello"`
	prog := mustParse(t, src)
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.Assign); !ok {
		t.Fatalf("got %T, want *ast.Assign for the website binding", prog.Statements[0])
	}
	call, ok := prog.Statements[1].(*ast.CallStmt)
	if !ok || call.Name != "when_someone_visits" {
		t.Fatalf("got %#v, want a when_someone_visits call", prog.Statements[1])
	}
}
