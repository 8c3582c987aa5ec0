package hostweb

import (
	"testing"

	"github.com/liam13141/epp/internal/object"
)

func TestTestRequestMatchesRegisteredRoute(t *testing.T) {
	app := NewApp("Demo")
	app.Visit("/", "hello")
	app.Post("/submit", "thanks")

	if body, ok := app.TestRequest("GET", "/"); !ok || body != "hello" {
		t.Errorf("GET /: got (%q, %v), want (\"hello\", true)", body, ok)
	}
	if body, ok := app.TestRequest("POST", "/submit"); !ok || body != "thanks" {
		t.Errorf("POST /submit: got (%q, %v), want (\"thanks\", true)", body, ok)
	}
	if _, ok := app.TestRequest("GET", "/missing"); ok {
		t.Error("expected no match for an unregistered route")
	}
}

func TestMatchRouteIgnoresLeadingAndTrailingSlashes(t *testing.T) {
	if !matchRoute("/about/", "about") {
		t.Error("expected slash-trimmed patterns to match")
	}
}

func TestServeHeadlessDoesNotBindAPort(t *testing.T) {
	app := NewApp("Demo")
	status := app.Serve("", "")
	if status == "" {
		t.Error("expected a non-empty status line")
	}
	again := app.Serve("", "")
	if again == status {
		t.Error("expected the already-running message to differ once started")
	}
}

func TestToObjectConvertsJSONShapes(t *testing.T) {
	list, ok := ToObject([]any{float64(1), "two", true, nil}).(*object.List)
	if !ok {
		t.Fatalf("got %T, want *object.List", ToObject([]any{}))
	}
	if len(list.Elements) != 4 {
		t.Fatalf("got %d elements, want 4", len(list.Elements))
	}
	if _, ok := list.Elements[0].(*object.Integer); !ok {
		t.Errorf("got %T for whole float64, want *object.Integer", list.Elements[0])
	}

	obj := ToObject(map[string]any{"name": "Ada"})
	pairs, ok := obj.(*object.List)
	if !ok || len(pairs.Elements) != 1 {
		t.Fatalf("got %#v, want a single-pair list", obj)
	}
	pair, ok := pairs.Elements[0].(*object.List)
	if !ok || len(pair.Elements) != 2 {
		t.Fatalf("got %#v, want a [key, value] pair", pairs.Elements[0])
	}
}
