package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/liam13141/epp/internal/lexer"
	"github.com/liam13141/epp/internal/parser"
)

func run(t *testing.T, src string) string {
	t.Helper()
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	ip := New(&out, nil)
	if err := ip.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return out.String()
}

func TestSetAndSay(t *testing.T) {
	got := run(t, "set x to 10\nsay x")
	if strings.TrimSpace(got) != "10" {
		t.Errorf("got %q, want \"10\"", got)
	}
}

func TestIfElseChooses(t *testing.T) {
	src := `set score to 3
if score is at least 5 then
say "pass"
otherwise
say "fail"
end if`
	got := strings.TrimSpace(run(t, src))
	if got != "fail" {
		t.Errorf("got %q, want \"fail\"", got)
	}
}

func TestRepeatTimesCountsCorrectly(t *testing.T) {
	src := `set total to 0
repeat 5 times
add 1 to total
end repeat
say total`
	got := strings.TrimSpace(run(t, src))
	if got != "5" {
		t.Errorf("got %q, want \"5\"", got)
	}
}

func TestFunctionSeesGlobalVariables(t *testing.T) {
	src := `define show_secret
say secret
end define
set secret to "leaked"
call show_secret`
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	ip := New(&out, nil)
	// "secret" is bound in the top-level (global) frame, so a user
	// function SHOULD see it: functions see globals, just not the
	// caller's transient locals. This exercises the positive half of
	// the no-closure invariant.
	if err := ip.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "leaked" {
		t.Errorf("got %q, want function to see the global 'secret'", out.String())
	}
}

func TestScopeChainAwareSet(t *testing.T) {
	src := `set counter to 0
repeat 3 times
set counter to counter + 1
end repeat
say counter`
	got := strings.TrimSpace(run(t, src))
	if got != "3" {
		t.Errorf("got %q, want \"3\" (set must update the existing binding, not shadow it)", got)
	}
}

func TestRunawayLoopIsStopped(t *testing.T) {
	tokens, err := lexer.Lex("repeat while true\nend repeat")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ip := New(&bytes.Buffer{}, nil)
	ip.MaxLoopIters = 100
	if err := ip.Run(prog); err == nil {
		t.Fatal("expected a runaway-loop error")
	}
}

func TestBreakExitsLoop(t *testing.T) {
	src := `set total to 0
repeat 10 times
add 1 to total
if total is at least 3 then
stop
end if
end repeat
say total`
	got := strings.TrimSpace(run(t, src))
	if got != "3" {
		t.Errorf("got %q, want \"3\"", got)
	}
}

func TestCallExpressionInsideSay(t *testing.T) {
	src := `define square with n
return n * n
end define
say call square with 12`
	got := strings.TrimSpace(run(t, src))
	if got != "144" {
		t.Errorf("got %q, want \"144\"", got)
	}
}

func TestCallExpressionInsideSet(t *testing.T) {
	src := `define square with n
return n * n
end define
set result to call square with 5
say result`
	got := strings.TrimSpace(run(t, src))
	if got != "25" {
		t.Errorf("got %q, want \"25\"", got)
	}
}

func TestAskReadsTheWholeLine(t *testing.T) {
	src := `ask "What is your name?" and store in name
say name`
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	ip := New(&out, strings.NewReader("John Smith\n"))
	if err := ip.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	got := strings.TrimSpace(out.String())
	if !strings.HasSuffix(got, "John Smith") {
		t.Errorf("got %q, want the full line \"John Smith\" to be stored, not just the first token", got)
	}
}

func TestAskDoesNotDropInputBetweenCalls(t *testing.T) {
	src := `ask "first?" and store in a
ask "second?" and store in b
say a
say b`
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	ip := New(&out, strings.NewReader("alpha\nbeta\n"))
	if err := ip.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 || lines[len(lines)-2] != "alpha" || lines[len(lines)-1] != "beta" {
		t.Errorf("got %v, want the second ask to see \"beta\", not leftover/empty input", lines)
	}
}

func TestStopOutsideLoopNamesStopAndLine(t *testing.T) {
	src := `say "before"
stop`
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ip := New(&bytes.Buffer{}, nil)
	err = ip.Run(prog)
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "stop") || !strings.Contains(msg, "outside") {
		t.Errorf("got %q, want a message mentioning 'stop' and 'outside'", msg)
	}
	if !strings.Contains(msg, "line 2") {
		t.Errorf("got %q, want the error to name line 2", msg)
	}
}

func TestSkipOutsideLoopNamesSkip(t *testing.T) {
	got := runExpectError(t, "skip")
	if !strings.Contains(got, "skip") {
		t.Errorf("got %q, want a message mentioning 'skip'", got)
	}
}

func TestReturnOutsideFunctionNamesReturn(t *testing.T) {
	got := runExpectError(t, "return 1")
	if !strings.Contains(got, "return") {
		t.Errorf("got %q, want a message mentioning 'return'", got)
	}
}

func runExpectError(t *testing.T, src string) string {
	t.Helper()
	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ip := New(&bytes.Buffer{}, nil)
	err = ip.Run(prog)
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	return err.Error()
}

func TestListCreateAndContains(t *testing.T) {
	src := `create list fruits
add 1 to fruits
if fruits contains 1 then
say "found"
end if`
	got := strings.TrimSpace(run(t, src))
	if got != "found" {
		t.Errorf("got %q, want \"found\"", got)
	}
}
