package main

import (
	"fmt"
	"io"
	"minijava/internal/check"
	"minijava/internal/diag"
	"minijava/internal/driver"
	"minijava/internal/output"
	"minijava/internal/runtime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

const (
	promptMain = colorGreen + "minijava> " + colorReset
	promptMore = colorGray + "...       " + colorReset
)

// ---- repl command ----

func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".minijava_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptMain,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%sminijava REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	// one interpreter for the session, so declarations carry over between inputs
	sink := output.NewSink(rl.Stdout())
	interp := runtime.New(sink)
	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(promptMore)
		} else {
			rl.SetPrompt(promptMain)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		evalInput(rl, interp, sink, source)
	}
}

// evalInput parses, checks and runs one complete input against the session interpreter.
func evalInput(rl *readline.Instance, interp *runtime.Interpreter, sink *output.Sink, source string) {
	file, diags := driver.Parse(source, "<repl>")
	if diag.HasErrors(diags) {
		printDiagsColored(rl.Stderr(), diags)
		return
	}

	diags = check.File(file, interp.Env().Names()...)
	printDiagsColored(rl.Stderr(), diags)
	if diag.HasErrors(diags) {
		return
	}

	err := interp.Run(file)
	sink.Flush()
	if err != nil {
		fmt.Fprintf(rl.Stderr(), "%serror: %s%s\n", colorRed, err, colorReset)
	}
}

// printDiagsColored prints errors in red and warnings in yellow.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		color := colorRed
		if d.Severity == diag.Warning {
			color = colorYellow
		}
		fmt.Fprintf(w, "%s%s%s\n", color, d.String(), colorReset)
	}
}
