package hostlib

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

// registerIO wires print and log. print writes display strings to stdout;
// log prefixes a timestamp and writes to stderr.
func registerIO(reg *native.Registry, opts Options) {
	stamp := func(s string) string { return s }
	if opts.Color {
		c := color.New(color.FgCyan)
		stamp = func(s string) string { return c.Sprint(s) }
	}

	reg.Register("print", native.Variadic(0), func(args ...evaluator.Object) evaluator.Object {
		fmt.Fprintln(opts.Stdout, displayJoin(args))
		return evaluator.NULL
	})

	reg.Register("log", native.Variadic(1), func(args ...evaluator.Object) evaluator.Object {
		ts := time.Now().Format("15:04:05.000")
		fmt.Fprintf(opts.Stderr, "%s %s\n", stamp(ts), displayJoin(args))
		return evaluator.NULL
	})
}

func displayJoin(args []evaluator.Object) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = evaluator.DisplayString(evaluator.Force(arg))
	}
	return strings.Join(parts, " ")
}
