// Command epp runs EPP ("Every Plain-english Program") source files.
// Its flag layout and logging setup follow
// babyman-slug-lang/cmd/app/main.go.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/liam13141/epp/internal/config"
	"github.com/liam13141/epp/internal/interp"
	"github.com/liam13141/epp/internal/lexer"
	"github.com/liam13141/epp/internal/parser"
	"github.com/liam13141/epp/internal/repl"
	"github.com/liam13141/epp/internal/trace"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

var (
	help              bool
	version           bool
	check             bool
	maxLoopIterations int
	logLevel          string
	logFile           string
	configPath        string
	traceDBPath       string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.BoolVar(&check, "check", false, "Parse the program and report errors without running it")
	flag.IntVar(&maxLoopIterations, "max-loop-iterations", 0, "Runaway-loop safety ceiling (0 uses the config/default)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	flag.StringVar(&configPath, "config", ".epp.toml", "Path to a TOML config file")
	flag.StringVar(&traceDBPath, "trace-db", "", "Optional sqlite path to record a statement-level execution trace")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if maxLoopIterations > 0 {
		settings.MaxLoopIterations = maxLoopIterations
	}
	if logLevel == "" {
		logLevel = settings.LogLevel
	}
	if traceDBPath == "" {
		traceDBPath = settings.TraceDB
	}

	loggerOptions := &slog.HandlerOptions{Level: logLevelFromString(logLevel)}
	slog.SetDefault(slog.New(slog.NewJSONHandler(configureLogWriter(), loggerOptions)))

	filename := flag.Arg(0)
	if filename == "" {
		os.Exit(repl.New(os.Stdout, os.Stdin).Run())
	}

	os.Exit(runFile(filename, settings.MaxLoopIterations))
}

func runFile(filename string, maxLoopIterations int) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Oops! I couldn't read '%s': %v\n", filename, err)
		return 2
	}

	tokens, err := lexer.Lex(string(src))
	if err != nil {
		reportError(err)
		return 1
	}

	prog, err := parser.Parse(tokens)
	if err != nil {
		reportError(err)
		return 1
	}

	if check {
		fmt.Println("No problems found.")
		return 0
	}

	ip := interp.New(os.Stdout, os.Stdin)
	ip.MaxLoopIters = maxLoopIterations

	if traceDBPath != "" {
		sink, err := trace.Open(traceDBPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer sink.Close()
		sink.Record(0, "run_start", filename)
		defer sink.Record(0, "run_end", filename)
		ip.Trace = sink
	}

	if err := ip.Run(prog); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func reportError(err error) {
	fmt.Fprintln(os.Stderr, err)
	slog.Error("epp run failed", slog.String("error", err.Error()))
}

func configureLogWriter() *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return f
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

func printVersion() {
	fmt.Printf("epp version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: epp [options] [filename]

Options:
  -check                    Parse without running; report errors and exit.
  -max-loop-iterations <n>  Runaway-loop safety ceiling (default 100000).
  -config <path>            Path to a TOML config file (default '.epp.toml').
  -trace-db <path>          Record a statement-level execution trace to a sqlite file.
  -log-level <level>        debug, info, warn, error. Default 'error'.
  -log-file <path>          Specify a log file to write logs. Default stderr.
  -help                     Display this help information and exit.
  -version                  Display version information and exit.

Details:
EPP is a small, line-oriented, plain-English programming language.

Examples:
  epp                      Start the interactive REPL
  epp greet.epp             Run a program
  epp -check greet.epp       Check a program for errors without running it

Version Information: %s %s %s
`, Version, BuildDate, Commit)
}
