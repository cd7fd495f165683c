package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"

	"golang.org/x/term"
)

// Config declares how a process logger is built.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Output string // stderr|stdout|null
}

// ApplyConfig builds a Logger from cfg. Empty values fall back to
// info/text/stderr.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var output Output
	var file *os.File
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output, file = NewConsoleOutput(), os.Stderr
	case "stdout":
		output, file = NewWriterOutput(os.Stdout), os.Stdout
	case "null":
		output = NullOutput{}
	default:
		return nil, fmt.Errorf("log: unknown output %q", cfg.Output)
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{Colors: file != nil && isTerminal(file)}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	return NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(output)), nil
}

// isTerminal is swapped in tests.
var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

type stdWriter struct {
	logger Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// RedirectStdLog routes the standard library logger through logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{logger: logger.WithComponent("stdlog")})
}
