// Package cli implements the soli command: script runner, bundle
// builder and REPL.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/solisoft/soli-lang-sub002/internal/config"
	"github.com/solisoft/soli-lang-sub002/internal/native"
	"github.com/solisoft/soli-lang-sub002/internal/vm"
	"github.com/solisoft/soli-lang-sub002/pkg/embed"
	"github.com/solisoft/soli-lang-sub002/pkg/hostlib"
)

const version = "0.1.0"

const helpMessage = `soli is the Soli language runtime.

Usage:
  soli                     start a REPL (or run piped stdin)
  soli <file>.soli         run a script
  soli <file>.solib        run a compiled bundle
  soli build <file>.soli   compile to a bundle
  soli disasm <file>       print bytecode
  soli version             print the version
`

type app struct {
	cfg    config.Config
	engine *embed.Engine
	host   *hostlib.Host
	stdout io.Writer
	stderr io.Writer
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	flags := flag.NewFlagSet("soli", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, helpMessage)
		flags.PrintDefaults()
	}
	backendFlag := flags.String("backend", "", "execution backend: vm or treewalk")
	noColor := flags.Bool("no-color", false, "disable colored output")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadIfPresent()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *backendFlag != "" {
		cfg.Backend = *backendFlag
	}
	if *noColor {
		cfg.NoColor = true
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if cfg.NoColor || !interactive {
		color.NoColor = true
	}

	a := &app{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
	defer a.close()

	rest := flags.Args()
	switch {
	case len(rest) == 0:
		if interactive {
			return a.repl()
		}
		return a.runStdin()
	case rest[0] == "version":
		fmt.Fprintf(a.stdout, "soli %s\n", version)
		return 0
	case rest[0] == "repl":
		return a.repl()
	case rest[0] == "build":
		return a.build(rest[1:])
	case rest[0] == "disasm":
		return a.disasm(rest[1:])
	default:
		return a.runFile(rest[0])
	}
}

func (a *app) close() {
	if a.host != nil {
		a.host.Close()
	}
}

// newEngine builds the engine lazily so that build/disasm/version never
// open the database.
func (a *app) newEngine(file string) error {
	if a.engine != nil {
		return nil
	}
	reg := native.NewRegistry()
	host, err := hostlib.Install(reg, hostlib.Options{
		Stdout:   a.stdout,
		Stderr:   a.stderr,
		Color:    !color.NoColor,
		Database: a.cfg.Database,
	})
	if err != nil {
		return err
	}
	a.host = host
	engine, err := embed.New(
		embed.WithRegistry(reg),
		embed.WithBackend(a.cfg.Backend),
		embed.WithFileName(file),
	)
	if err != nil {
		return err
	}
	a.engine = engine
	return nil
}

func (a *app) fail(err error) int {
	color.New(color.FgRed).Fprintln(a.stderr, err.Error())
	return 1
}

func (a *app) runFile(path string) int {
	if strings.HasSuffix(path, config.BundleExt) {
		return a.runBundle(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return a.fail(err)
	}
	if err := a.newEngine(path); err != nil {
		return a.fail(err)
	}
	if _, err := a.engine.RunSource(string(src)); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) runBundle(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return a.fail(err)
	}
	fn, err := vm.DecodeBundle(data)
	if err != nil {
		return a.fail(err)
	}
	if err := a.newEngine(path); err != nil {
		return a.fail(err)
	}
	if _, err := a.engine.RunChunk(fn); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) runStdin() int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return a.fail(err)
	}
	if err := a.newEngine("(stdin)"); err != nil {
		return a.fail(err)
	}
	if _, err := a.engine.RunSource(string(src)); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) build(args []string) int {
	flags := flag.NewFlagSet("soli build", flag.ContinueOnError)
	out := flags.String("o", "", "output path (default: input with "+config.BundleExt+")")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(a.stderr, "usage: soli build <file>.soli [-o out"+config.BundleExt+"]")
		return 2
	}
	path := flags.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return a.fail(err)
	}

	engine, err := embed.New(embed.WithFileName(path))
	if err != nil {
		return a.fail(err)
	}
	fn, err := engine.Compile(string(src))
	if err != nil {
		return a.fail(err)
	}
	data, err := vm.EncodeBundle(fn)
	if err != nil {
		return a.fail(err)
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(path, config.SourceExt) + config.BundleExt
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "wrote %s (%d bytes)\n", target, len(data))
	return 0
}

func (a *app) disasm(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "usage: soli disasm <file>")
		return 2
	}
	path := args[0]
	var fn *vm.CompiledFunction
	if strings.HasSuffix(path, config.BundleExt) {
		data, err := os.ReadFile(path)
		if err != nil {
			return a.fail(err)
		}
		decoded, err := vm.DecodeBundle(data)
		if err != nil {
			return a.fail(err)
		}
		fn = decoded
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			return a.fail(err)
		}
		engine, err := embed.New(embed.WithFileName(path))
		if err != nil {
			return a.fail(err)
		}
		fn, err = engine.Compile(string(src))
		if err != nil {
			return a.fail(err)
		}
	}
	fmt.Fprint(a.stdout, vm.Disassemble(fn.Chunk, path))
	return 0
}
