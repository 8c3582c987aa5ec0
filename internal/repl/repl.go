// Package repl is an interactive line-editing shell over the EPP
// pipeline, grounded on daios-ai-msg/mindscript/cmd/main.go's
// liner-based REPL: history persisted to a dotfile, a parse-probe loop
// that keeps prompting with a continuation prompt until a whole block
// parses, and a handful of ':' meta-commands.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/liam13141/epp/internal/interp"
	"github.com/liam13141/epp/internal/lexer"
	"github.com/liam13141/epp/internal/parser"
)

const (
	historyFile = ".epp_history"
	promptMain  = ">>> "
	promptCont  = "... "
	helpText    = `
REPL commands:
  :help            Show this help
  :vars            List the current global variable names
  :reset           Start a fresh interpreter (clears all variables)
  :load <file>     Load and run a file into the current session
  exit / quit      Leave the REPL
`
)

type REPL struct {
	ip  *interp.Interpreter
	out io.Writer
}

func New(out io.Writer, in io.Reader) *REPL {
	return &REPL{ip: interp.New(out, in), out: out}
}

func (r *REPL) Run() int {
	fmt.Fprintln(r.out, "EPP interactive mode. Type 'exit' or Ctrl+D to leave.")

	histPath := historyPath()
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}

	for {
		source, ok := r.readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(r.out)
			break
		}
		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}
		if strings.HasPrefix(trimmed, ":") {
			if r.handleMeta(ln, trimmed) {
				break
			}
			continue
		}

		r.evalSource(source)
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " \\ "))
	}

	if f, err := os.Create(histPath); err == nil {
		ln.WriteHistory(f)
		f.Close()
	}
	return 0
}

func (r *REPL) evalSource(source string) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	if err := r.ip.Run(prog); err != nil {
		fmt.Fprintln(r.out, err)
	}
}

func (r *REPL) handleMeta(ln *liner.State, line string) (exit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprint(r.out, helpText)
	case ":vars":
		for name := range r.ip.Env.Global() {
			fmt.Fprintln(r.out, name)
		}
	case ":reset":
		r.ip = interp.New(r.out, nil)
		fmt.Fprintln(r.out, "interpreter reset.")
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: :load <file>")
			return false
		}
		src, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "cannot read %s: %v\n", fields[1], err)
			return false
		}
		r.evalSource(string(src))
		ln.AppendHistory(line)
	default:
		fmt.Fprintln(r.out, "unknown command. Type :help for help.")
	}
	return false
}

// readByParseProbe accumulates lines until the line-based parser
// accepts the buffer as a complete, self-contained block (no dangling
// "end if"/"end repeat"/"end define" expected), mirroring the
// grounding source's parser-probe multiline technique.
func (r *REPL) readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(promptMain)
		} else {
			line, err = ln.Prompt(promptCont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		tokens, lexErr := lexer.Lex(src)
		if lexErr != nil {
			return src, true
		}
		_, perr := parser.Parse(tokens)
		if perr == nil {
			return src, true
		}
		// An unterminated block ("waiting for end if/end repeat/...")
		// means: keep reading more lines. Any other parse error is
		// reported immediately so the user sees the mistake right away.
		if !strings.Contains(perr.Error(), "waiting for") {
			return src, true
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
