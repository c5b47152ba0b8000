package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

// repl reads one statement per line and prints the value of each. State
// accumulates in the engine's globals across lines.
func (a *app) repl() int {
	if err := a.newEngine("(repl)"); err != nil {
		return a.fail(err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.cfg.Prompt,
		HistoryFile:     historyPath(),
		Stdout:          a.stdout,
		Stderr:          a.stderr,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return a.fail(err)
	}
	defer rl.Close()

	fmt.Fprintf(a.stdout, "soli %s (%s backend, :quit to exit)\n", version, a.engine.Backend())

	valueColor := color.New(color.FgGreen)
	errColor := color.New(color.FgRed)

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			rl.SetPrompt(a.cfg.Prompt)
			continue
		}
		if err == io.EOF {
			return 0
		}
		if err != nil {
			return a.fail(err)
		}

		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":quit", ":q":
				return 0
			}
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		src := pending.String()

		// An unbalanced line keeps collecting input, like a block typed
		// over several lines.
		if openBrackets(src) > 0 {
			rl.SetPrompt("  ... ")
			continue
		}
		pending.Reset()
		rl.SetPrompt(a.cfg.Prompt)

		result, err := a.engine.RunSource(src)
		if err != nil {
			errColor.Fprintln(a.stderr, err.Error())
			continue
		}
		if result != nil && result != evaluator.NULL {
			valueColor.Fprintln(a.stdout, result.Inspect())
		}
	}
}

// openBrackets counts unclosed braces, brackets and parens outside of
// string literals. A negative count means a syntax error; the parser
// reports it.
func openBrackets(src string) int {
	depth := 0
	inString := false
	escaped := false
	for _, ch := range src {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".soli_history")
}
