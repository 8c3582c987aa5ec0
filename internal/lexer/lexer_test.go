package lexer

import (
	"testing"

	"github.com/liam13141/epp/internal/diag"
)

func TestLexClassifiesLines(t *testing.T) {
	src := "set x to 10\n# a comment\n\nsay x"
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Kind{STATEMENT, COMMENT, BLANK, STATEMENT}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, tok := range tokens {
		if tok.Kind != want[i] {
			t.Errorf("token %d: got kind %v, want %v", i, tok.Kind, want[i])
		}
		if tok.Line != i+1 {
			t.Errorf("token %d: got line %d, want %d", i, tok.Line, i+1)
		}
	}
}

func TestLexStripsBOMAndCR(t *testing.T) {
	src := "\ufeffsay 1\r\nsay 2\r\n"
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Text != "say 1" {
		t.Errorf("got %q, want no BOM prefix", tokens[0].Text)
	}
	for _, tok := range tokens {
		if len(tok.Text) > 0 && tok.Text[len(tok.Text)-1] == '\r' {
			t.Errorf("token %q retains trailing CR", tok.Text)
		}
	}
}

func TestLexRejectsNullByte(t *testing.T) {
	_, err := Lex("say 1\nsay \x00 2")
	if err == nil {
		t.Fatal("expected an error for an embedded null character")
	}
	lexErr, ok := err.(*diag.LexicalError)
	if !ok {
		t.Fatalf("got %T, want *diag.LexicalError", err)
	}
	if lexErr.Line != 2 {
		t.Errorf("got line %d, want 2", lexErr.Line)
	}
}
