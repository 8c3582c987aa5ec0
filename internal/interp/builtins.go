package interp

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/liam13141/epp/internal/diag"
	"github.com/liam13141/epp/internal/hostweb"
	"github.com/liam13141/epp/internal/hostwindow"
	"github.com/liam13141/epp/internal/object"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

func builtin(name string, fn object.BuiltinFn) *object.Builtin {
	return &object.Builtin{Name: name, Fn: fn}
}

func arityErr(line int, name string, want int, got int) error {
	return diag.NewRuntimeError(line, diag.ArityMismatch, "'%s' takes %d argument(s), but %d were given.", name, want, got)
}

// RegisterBuiltins installs the value builtins spec.md §4.3 names
// plus the §4.6 host-call sugar targets (website/window/fetch), all
// invoked through the same object.Builtin call path.
func RegisterBuiltins(ip *Interpreter) {
	reg := func(name string, fn object.BuiltinFn) { ip.Builtins[name] = builtin(name, fn) }

	reg("len", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "len", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.List:
			return &object.Integer{Value: int64(len(v.Elements))}, nil
		case *object.String:
			return &object.Integer{Value: int64(len([]rune(v.Value)))}, nil
		default:
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' doesn't have a length.", v.Inspect())
		}
	})

	reg("str", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "str", 1, len(args))
		}
		return &object.String{Value: args[0].Inspect()}, nil
	})

	reg("int", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "int", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.Integer:
			return v, nil
		case *object.Float:
			return &object.Integer{Value: int64(v.Value)}, nil
		case *object.String:
			i, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64)
			if err != nil {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' is not a whole number.", v.Value)
			}
			return &object.Integer{Value: i}, nil
		case *object.Boolean:
			if v.Value {
				return &object.Integer{Value: 1}, nil
			}
			return &object.Integer{Value: 0}, nil
		default:
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't make a number from %s.", v.Inspect())
		}
	})

	reg("float", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "float", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.Integer:
			return &object.Float{Value: float64(v.Value)}, nil
		case *object.Float:
			return v, nil
		case *object.String:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
			if err != nil {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' is not a decimal number.", v.Value)
			}
			return &object.Float{Value: f}, nil
		default:
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't make a decimal number from %s.", v.Inspect())
		}
	})

	reg("bool", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "bool", 1, len(args))
		}
		return &object.Boolean{Value: object.Truthy(args[0])}, nil
	})

	reg("range", func(line int, args []object.Object) (object.Object, error) {
		var start, end, step int64 = 0, 0, 1
		switch len(args) {
		case 1:
			v, ok := asInt(args[0])
			if !ok {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'range' needs numbers.")
			}
			end = v
		case 2, 3:
			s, ok1 := asInt(args[0])
			e, ok2 := asInt(args[1])
			if !ok1 || !ok2 {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'range' needs numbers.")
			}
			start, end = s, e
			if len(args) == 3 {
				st, ok := asInt(args[2])
				if !ok || st == 0 {
					return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'range' step must be a nonzero number.")
				}
				step = st
			}
		default:
			return nil, arityErr(line, "range", 1, len(args))
		}
		var elems []object.Object
		if step > 0 {
			for i := start; i < end; i += step {
				elems = append(elems, &object.Integer{Value: i})
			}
		} else {
			for i := start; i > end; i += step {
				elems = append(elems, &object.Integer{Value: i})
			}
		}
		return &object.List{Elements: elems}, nil
	})

	reg("list", func(line int, args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return &object.List{}, nil
		}
		if len(args) != 1 {
			return nil, arityErr(line, "list", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.List:
			elems := make([]object.Object, len(v.Elements))
			copy(elems, v.Elements)
			return &object.List{Elements: elems}, nil
		case *object.String:
			var elems []object.Object
			for _, r := range v.Value {
				elems = append(elems, &object.String{Value: string(r)})
			}
			return &object.List{Elements: elems}, nil
		default:
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I can't make a list from %s.", v.Inspect())
		}
	})

	reg("abs", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "abs", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.Integer:
			if v.Value < 0 {
				return &object.Integer{Value: -v.Value}, nil
			}
			return v, nil
		case *object.Float:
			return &object.Float{Value: math.Abs(v.Value)}, nil
		default:
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'abs' needs a number.")
		}
	})

	reg("round", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "round", 1, len(args))
		}
		f, ok := asFloat(args[0])
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'round' needs a number.")
		}
		return &object.Integer{Value: int64(math.Round(f))}, nil
	})

	reg("min", func(line int, args []object.Object) (object.Object, error) { return minMax(line, "min", args, true) })
	reg("max", func(line int, args []object.Object) (object.Object, error) { return minMax(line, "max", args, false) })

	reg("sum", func(line int, args []object.Object) (object.Object, error) {
		elems, err := singleListArg(line, "sum", args)
		if err != nil {
			return nil, err
		}
		var total float64
		allInt := true
		for _, el := range elems {
			f, ok := asFloat(el)
			if !ok {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'sum' needs a list of numbers.")
			}
			if _, ok := el.(*object.Float); ok {
				allInt = false
			}
			total += f
		}
		if allInt {
			return &object.Integer{Value: int64(total)}, nil
		}
		return &object.Float{Value: total}, nil
	})

	reg("sorted", func(line int, args []object.Object) (object.Object, error) {
		elems, err := singleListArg(line, "sorted", args)
		if err != nil {
			return nil, err
		}
		out := make([]object.Object, len(elems))
		copy(out, elems)
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			less, err := lessThan(out[i], out[j])
			if err != nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return &object.List{Elements: out}, nil
	})

	reg("choice", func(line int, args []object.Object) (object.Object, error) {
		elems, err := singleListArg(line, "choice", args)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'choice' needs a non-empty list.")
		}
		return elems[rng.Intn(len(elems))], nil
	})

	reg("random", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 0 {
			return nil, arityErr(line, "random", 0, len(args))
		}
		return &object.Float{Value: rng.Float64()}, nil
	})

	reg("random_int", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, arityErr(line, "random_int", 2, len(args))
		}
		lo, ok1 := asInt(args[0])
		hi, ok2 := asInt(args[1])
		if !ok1 || !ok2 || hi < lo {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'random_int' needs a low and high whole number, low <= high.")
		}
		return &object.Integer{Value: lo + rng.Int63n(hi-lo+1)}, nil
	})

	reg("random_float", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, arityErr(line, "random_float", 2, len(args))
		}
		lo, ok1 := asFloat(args[0])
		hi, ok2 := asFloat(args[1])
		if !ok1 || !ok2 || hi < lo {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'random_float' needs a low and high number, low <= high.")
		}
		return &object.Float{Value: lo + rng.Float64()*(hi-lo)}, nil
	})

	reg("sleep", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, arityErr(line, "sleep", 1, len(args))
		}
		secs, ok := asFloat(args[0])
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'sleep' needs a number of seconds.")
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return &object.Nothing{}, nil
	})

	registerWebBuiltins(reg)
	registerWindowBuiltins(reg)
}

func singleListArg(line int, name string, args []object.Object) ([]object.Object, error) {
	if len(args) != 1 {
		return nil, arityErr(line, name, 1, len(args))
	}
	l, ok := args[0].(*object.List)
	if !ok {
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' needs a list.", name)
	}
	return l.Elements, nil
}

func lessThan(a, b object.Object) (bool, error) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af < bf, nil
		}
	}
	if as, aok := a.(*object.String); aok {
		if bs, bok := b.(*object.String); bok {
			return as.Value < bs.Value, nil
		}
	}
	return false, diag.NewRuntimeError(0, diag.TypeMismatch, "I can't compare %s and %s.", a.Inspect(), b.Inspect())
}

func minMax(line int, name string, args []object.Object, wantMin bool) (object.Object, error) {
	var elems []object.Object
	if len(args) == 1 {
		if l, ok := args[0].(*object.List); ok {
			elems = l.Elements
		} else {
			elems = args
		}
	} else {
		elems = args
	}
	if len(elems) == 0 {
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' needs at least one value.", name)
	}
	best := elems[0]
	for _, el := range elems[1:] {
		less, err := lessThan(el, best)
		if err != nil {
			return nil, err
		}
		if less == wantMin {
			best = el
		}
	}
	return best, nil
}

// ---- host-call sugar builtins (§4.6) --------------------------------------

func registerWebBuiltins(reg func(string, object.BuiltinFn)) {
	reg("create_web_app", func(line int, args []object.Object) (object.Object, error) {
		name := "EPP Website"
		if len(args) == 1 {
			s, ok := args[0].(*object.String)
			if !ok {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "a website name must be text.")
			}
			name = s.Value
		}
		return hostweb.NewApp(name), nil
	})

	reg("when_someone_visits", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 3 {
			return nil, arityErr(line, "when_someone_visits", 3, len(args))
		}
		app, pattern, response, err := webRouteArgs(line, args)
		if err != nil {
			return nil, err
		}
		app.Visit(pattern, response)
		return &object.Nothing{}, nil
	})

	reg("when_someone_posts", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 3 {
			return nil, arityErr(line, "when_someone_posts", 3, len(args))
		}
		app, pattern, response, err := webRouteArgs(line, args)
		if err != nil {
			return nil, err
		}
		app.Post(pattern, response)
		return &object.Nothing{}, nil
	})

	reg("start_web_server", func(line int, args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return nil, arityErr(line, "start_web_server", 1, len(args))
		}
		app, ok := args[0].(*hostweb.App)
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "that is not a website.")
		}
		var host, port string
		if len(args) == 3 {
			hs, ok1 := args[1].(*object.String)
			ps, ok2 := args[2].(*object.String)
			if !ok1 || !ok2 {
				return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "host and port must be text.")
			}
			host, port = hs.Value, ps.Value
		}
		return &object.String{Value: app.Serve(host, port)}, nil
	})

	reg("test_web_request", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 3 {
			return nil, arityErr(line, "test_web_request", 3, len(args))
		}
		app, ok := args[0].(*hostweb.App)
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "that is not a website.")
		}
		method, ok1 := args[1].(*object.String)
		path, ok2 := args[2].(*object.String)
		if !ok1 || !ok2 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "method and path must be text.")
		}
		if body, found := app.TestRequest(method.Value, path.Value); found {
			return &object.String{Value: body}, nil
		}
		return &object.Nothing{}, nil
	})

	reg("make_html_page", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, arityErr(line, "make_html_page", 2, len(args))
		}
		title, ok1 := args[0].(*object.String)
		body, ok2 := args[1].(*object.String)
		if !ok1 || !ok2 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "a page title and body must be text.")
		}
		return &object.String{Value: hostweb.MakeHTMLPage(title.Value, body.Value)}, nil
	})

	reg("fetch_from_api", func(line int, args []object.Object) (object.Object, error) {
		url, err := singleStringArg(line, "fetch_from_api", args)
		if err != nil {
			return nil, err
		}
		body, ferr := hostweb.FetchText(url)
		if ferr != nil {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I couldn't fetch %s: %s", url, ferr.Error())
		}
		return &object.String{Value: body}, nil
	})

	reg("fetch_json_from_api", func(line int, args []object.Object) (object.Object, error) {
		url, err := singleStringArg(line, "fetch_json_from_api", args)
		if err != nil {
			return nil, err
		}
		obj, ferr := hostweb.FetchJSON(url)
		if ferr != nil {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "I couldn't fetch JSON from %s: %s", url, ferr.Error())
		}
		return obj, nil
	})
}

func singleStringArg(line int, name string, args []object.Object) (string, error) {
	if len(args) != 1 {
		return "", arityErr(line, name, 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return "", diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' needs text.", name)
	}
	return s.Value, nil
}

func webRouteArgs(line int, args []object.Object) (*hostweb.App, string, string, error) {
	app, ok := args[0].(*hostweb.App)
	if !ok {
		return nil, "", "", diag.NewRuntimeError(line, diag.TypeMismatch, "that is not a website.")
	}
	pattern, ok1 := args[1].(*object.String)
	response, ok2 := args[2].(*object.String)
	if !ok1 || !ok2 {
		return nil, "", "", diag.NewRuntimeError(line, diag.TypeMismatch, "a route and response must be text.")
	}
	return app, pattern.Value, response.Value, nil
}

// ---- pixel-window builtins --------------------------------------------

func registerWindowBuiltins(reg func(string, object.BuiltinFn)) {
	reg("open_window", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 3 {
			return nil, arityErr(line, "open_window", 3, len(args))
		}
		title, ok0 := args[0].(*object.String)
		w, ok1 := asInt(args[1])
		h, ok2 := asInt(args[2])
		if !ok0 || !ok1 || !ok2 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'open_window' needs a title, a width, and a height.")
		}
		return hostwindow.Open(title.Value, int(w), int(h)), nil
	})

	reg("close_window", func(line int, args []object.Object) (object.Object, error) {
		win, err := windowArg(line, "close_window", args)
		if err != nil {
			return nil, err
		}
		win.Close()
		return &object.Nothing{}, nil
	})

	reg("window_is_open", func(line int, args []object.Object) (object.Object, error) {
		win, err := windowArg(line, "window_is_open", args)
		if err != nil {
			return nil, err
		}
		return &object.Boolean{Value: win.IsOpen()}, nil
	})

	reg("poll_window", func(line int, args []object.Object) (object.Object, error) {
		win, err := windowArg(line, "poll_window", args)
		if err != nil {
			return nil, err
		}
		return &object.Boolean{Value: win.Poll()}, nil
	})

	reg("present", func(line int, args []object.Object) (object.Object, error) {
		win, err := windowArg(line, "present", args)
		if err != nil {
			return nil, err
		}
		win.Present()
		return &object.Nothing{}, nil
	})

	reg("clear_screen", func(line int, args []object.Object) (object.Object, error) {
		win, err := windowArg(line, "clear_screen", args)
		if err != nil {
			return nil, err
		}
		win.Clear()
		return &object.Nothing{}, nil
	})

	reg("draw_pixel", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 4 {
			return nil, arityErr(line, "draw_pixel", 4, len(args))
		}
		win, x, y, color, err := pixelArgs(line, "draw_pixel", args)
		if err != nil {
			return nil, err
		}
		win.DrawPixel(x, y, color)
		return &object.Nothing{}, nil
	})

	reg("draw_rect", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 6 {
			return nil, arityErr(line, "draw_rect", 6, len(args))
		}
		win, err := windowArg(line, "draw_rect", args[:1])
		if err != nil {
			return nil, err
		}
		x, ok1 := asInt(args[1])
		y, ok2 := asInt(args[2])
		w, ok3 := asInt(args[3])
		h, ok4 := asInt(args[4])
		color, ok5 := args[5].(*object.String)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'draw_rect' needs x, y, width, height, and a color.")
		}
		win.DrawRect(int(x), int(y), int(w), int(h), color.Value)
		return &object.Nothing{}, nil
	})

	reg("draw_text", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 4 {
			return nil, arityErr(line, "draw_text", 4, len(args))
		}
		win, err := windowArg(line, "draw_text", args[:1])
		if err != nil {
			return nil, err
		}
		x, ok1 := asInt(args[1])
		text, ok2 := args[2].(*object.String)
		color, ok3 := args[3].(*object.String)
		if !ok1 || !ok2 || !ok3 {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'draw_text' needs x, text, and a color.")
		}
		win.DrawText(int(x), 0, text.Value, color.Value)
		return &object.Nothing{}, nil
	})

	reg("key_down", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, arityErr(line, "key_down", 2, len(args))
		}
		win, err := windowArg(line, "key_down", args[:1])
		if err != nil {
			return nil, err
		}
		key, ok := args[1].(*object.String)
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'key_down' needs a key name.")
		}
		return &object.Boolean{Value: win.KeyDown(key.Value)}, nil
	})

	reg("set_window_title", func(line int, args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, arityErr(line, "set_window_title", 2, len(args))
		}
		win, err := windowArg(line, "set_window_title", args[:1])
		if err != nil {
			return nil, err
		}
		title, ok := args[1].(*object.String)
		if !ok {
			return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'set_window_title' needs text.")
		}
		win.SetTitle(title.Value)
		return &object.Nothing{}, nil
	})
}

func windowArg(line int, name string, args []object.Object) (*hostwindow.Window, error) {
	if len(args) != 1 {
		return nil, arityErr(line, name, 1, len(args))
	}
	win, ok := args[0].(*hostwindow.Window)
	if !ok {
		return nil, diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' needs a window.", name)
	}
	return win, nil
}

func pixelArgs(line int, name string, args []object.Object) (*hostwindow.Window, int, int, string, error) {
	win, err := windowArg(line, name, args[:1])
	if err != nil {
		return nil, 0, 0, "", err
	}
	x, ok1 := asInt(args[1])
	y, ok2 := asInt(args[2])
	color, ok3 := args[3].(*object.String)
	if !ok1 || !ok2 || !ok3 {
		return nil, 0, 0, "", diag.NewRuntimeError(line, diag.TypeMismatch, "'%s' needs x, y, and a color.", name)
	}
	return win, int(x), int(y), color.Value, nil
}
