package golden

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/diag"
)

// Config builds the configuration a case asks for, in the order the command line
// applies it: --pedantic, then the standard, then -W/-F flags.
func (c *Case) Config() (*config.Config, error) {
	cfg := config.NewConfig()
	for _, f := range c.Flags {
		if f == "--pedantic" {
			cfg.SetWarning(config.WarnPedantic, true)
		}
	}
	std := c.Std()
	if std == "" {
		std = cfg.StdName
	}
	if err := cfg.ApplyStd(std); err != nil {
		return nil, err
	}
	cfg.ProcessFlags(c.ConfigFlags())
	return cfg, nil
}

// Check compiles the case in process and reports the first expectation it breaks.
func Check(c *Case) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	res, compileErr := compiler.Compile([]rune(c.Source), 0, cfg)

	var gotWarnings []string
	for _, w := range res.Warnings {
		gotWarnings = append(gotWarnings, cfg.Warnings[w.Type].Name)
	}
	if c.Warnings != nil {
		if diff := cmp.Diff(c.Warnings, gotWarnings, cmpopts.EquateEmpty()); diff != "" {
			return fmt.Errorf("warnings mismatch (-want +got):\n%s", diff)
		}
	}

	if c.Error != nil {
		if compileErr == nil {
			return fmt.Errorf("expected %s error, compiled to:\n%s", c.Error.Kind, res.Prog)
		}
		return c.Error.Match(compileErr)
	}
	if compileErr != nil {
		return fmt.Errorf("unexpected error: %w", compileErr)
	}
	if diff := cmp.Diff(c.TAC, res.Prog.String()); diff != "" {
		return fmt.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	return nil
}

// Match reports whether err has the expected kind and, if one is given, message.
func (e *ExpectedError) Match(err error) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return fmt.Errorf("expected %s error, got %v", e.Kind, err)
	}
	if de.Kind.Tag() != e.Kind {
		return fmt.Errorf("expected %s error, got %s: %s", e.Kind, de.Kind.Tag(), de.Msg)
	}
	if e.Message != "" && de.Msg != e.Message {
		return fmt.Errorf("expected message %q, got %q", e.Message, de.Msg)
	}
	return nil
}
