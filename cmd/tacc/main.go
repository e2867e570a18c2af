package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xplshn/tacc/pkg/cli"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/util"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// newApp builds the command. Nothing is written to the output until translation has
// succeeded, so a failed run leaves an existing -o file as it was.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp("tacc")
	app.Synopsis = "[options] [input]"
	app.Description = "A single-pass translator from a small block-structured language to three-address code. Reads standard input when no input file is given."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/tacc>"
	app.Stdout, app.Stderr = stdout, stderr

	var (
		outFile    string
		std        string
		emit       string
		pedantic   bool
		dumpTokens bool
		noColor    bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file> instead of standard output.", "file")
	fs.String(&std, "std", "", "ext", "Specify language standard (dragon, ext)", "std")
	fs.String(&emit, "emit", "", "tac", "Output format (tac, listing)", "format")
	fs.Bool(&dumpTokens, "dump-tokens", "d", false, "Print the token stream and exit.")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue every warning.")
	fs.Bool(&noColor, "no-color", "", false, "Do not color diagnostics.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(args []string) error {
		if pedantic {
			cfg.SetWarning(config.WarnPedantic, true)
		}
		rep := util.NewReporter(stderr, nil)
		if noColor {
			rep.Color = false
		}
		fail := func(err error) error {
			rep.Error(err)
			return err
		}

		if err := cfg.ApplyStd(std); err != nil {
			return fail(err)
		}
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		backend, err := codegen.NewBackend(emit)
		if err != nil {
			return fail(err)
		}

		record, err := readSource(args, stdin)
		if err != nil {
			return fail(err)
		}
		rep.Files = []util.SourceFileRecord{record}

		var buf *bytes.Buffer
		if dumpTokens {
			buf = &bytes.Buffer{}
			if err := compiler.DumpTokens(buf, record.Content, 0, cfg); err != nil {
				return fail(err)
			}
		} else {
			res, err := compiler.Compile(record.Content, 0, cfg)
			for _, w := range res.Warnings {
				rep.Warn(cfg, w.Type, w.Tok, "%s", w.Msg)
			}
			if err != nil {
				return fail(err)
			}
			if buf, err = backend.Generate(res.Prog); err != nil {
				return fail(err)
			}
			if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
				buf.WriteByte('\n')
			}
		}

		if err := writeOutput(outFile, stdout, buf.Bytes()); err != nil {
			return fail(err)
		}
		return nil
	}
	return app
}

func readSource(args []string, stdin io.Reader) (util.SourceFileRecord, error) {
	if len(args) > 1 {
		return util.SourceFileRecord{}, errors.New("only one input file may be given")
	}
	var (
		name    = "<stdin>"
		content []byte
		err     error
	)
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		name = args[0]
		content, err = os.ReadFile(name)
	}
	if err != nil {
		return util.SourceFileRecord{}, fmt.Errorf("could not read '%s': %w", name, err)
	}
	return util.SourceFileRecord{Name: name, Content: []rune(string(content))}, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create '%s': %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing '%s': %w", path, err)
	}
	return nil
}
