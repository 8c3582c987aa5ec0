// Package hostweb backs the §4.6 website sugar statements
// ("create a website", "when someone visits ... show ...", "start the
// web server for ..."). It is a headless, in-process simulation of a
// tiny route table grounded on original_source's MiniFlaskApp: no
// sockets are opened by default, so EPP programs stay deterministic
// and testable; start_web_server only binds a real listener when it
// is given a host and port, and even then it does not block.
package hostweb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/liam13141/epp/internal/object"
)

const AppType object.Type = "WEBAPP"

type route struct {
	pattern  string
	response string
}

// App is a named collection of GET/POST routes. It implements
// object.Object directly so it can be assigned to an EPP variable the
// same way any other value can.
type App struct {
	Name    string
	gets    []route
	posts   []route
	started bool
}

func (a *App) Type() object.Type { return AppType }
func (a *App) Inspect() string   { return fmt.Sprintf("<website %q>", a.Name) }

func NewApp(name string) *App { return &App{Name: name} }

func (a *App) Visit(pattern, response string) { a.gets = append(a.gets, route{pattern, response}) }
func (a *App) Post(pattern, response string)  { a.posts = append(a.posts, route{pattern, response}) }

// TestRequest simulates a single request against the route table
// without any network I/O, used by the test_web_request builtin and
// by test harnesses.
func (a *App) TestRequest(method, path string) (string, bool) {
	routes := a.gets
	if strings.EqualFold(method, "POST") {
		routes = a.posts
	}
	for _, r := range routes {
		if matchRoute(r.pattern, path) {
			return r.response, true
		}
	}
	return "", false
}

func matchRoute(pattern, path string) bool {
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")
	path = strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/")
	return pattern == path
}

// Serve starts a real HTTP listener bound to addr ("" = headless, no
// listener), returning a human-readable status line. It never blocks:
// ListenAndServe runs in its own goroutine so the interpreter can
// continue (or, for a CLI one-shot script, exit immediately after).
func (a *App) Serve(host, port string) string {
	if a.started {
		return fmt.Sprintf("%s is already running.", a.Name)
	}
	a.started = true
	if host == "" && port == "" {
		return fmt.Sprintf("%s is ready (no port bound; use test_web_request to exercise it).", a.Name)
	}
	addr := host + ":" + port
	mux := http.NewServeMux()
	for _, r := range a.gets {
		resp := r.response
		mux.HandleFunc("GET /"+strings.TrimPrefix(r.pattern, "/"), func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, resp)
		})
	}
	for _, r := range a.posts {
		resp := r.response
		mux.HandleFunc("POST /"+strings.TrimPrefix(r.pattern, "/"), func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, resp)
		})
	}
	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe()
	return fmt.Sprintf("%s is listening on %s.", a.Name, addr)
}

// MakeHTMLPage wraps a body fragment in a minimal HTML document.
func MakeHTMLPage(title, body string) string {
	return fmt.Sprintf("<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// FetchText performs a GET request and returns the response body as
// plain text.
func FetchText(url string) (string, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON performs a GET request and decodes the response body into
// an EPP object tree (lists, and a list of [key, value] pairs for
// objects, since EPP has no map/dict value kind).
func FetchJSON(url string) (object.Object, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return ToObject(decoded), nil
}

// ToObject converts a decoded JSON value into the nearest EPP Object.
// JSON objects become two-element [key, value] pair lists (EPP has no
// map type), mirroring how original_source exposes parsed JSON as
// plain Python dicts/lists/scalars without a dedicated wrapper.
func ToObject(v any) object.Object {
	switch val := v.(type) {
	case nil:
		return &object.Nothing{}
	case bool:
		return &object.Boolean{Value: val}
	case float64:
		if val == float64(int64(val)) {
			return &object.Integer{Value: int64(val)}
		}
		return &object.Float{Value: val}
	case string:
		return &object.String{Value: val}
	case []any:
		elems := make([]object.Object, 0, len(val))
		for _, e := range val {
			elems = append(elems, ToObject(e))
		}
		return &object.List{Elements: elems}
	case map[string]any:
		pairs := make([]object.Object, 0, len(val))
		for k, e := range val {
			pairs = append(pairs, &object.List{Elements: []object.Object{&object.String{Value: k}, ToObject(e)}})
		}
		return &object.List{Elements: pairs}
	default:
		return &object.Nothing{}
	}
}
