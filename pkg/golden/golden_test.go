package golden

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/xplshn/tacc/pkg/config"
)

func TestCorpus(t *testing.T) {
	files, err := filepath.Glob("../../testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	for _, file := range files {
		data, err := os.ReadFile(file)
		be.Err(t, err, nil)
		cases, err := Extract(data)
		if err != nil {
			t.Fatalf("%s: %v", file, err)
		}
		base := filepath.Base(file)
		for _, c := range cases {
			t.Run(base+"/"+c.Name, func(t *testing.T) {
				if err := Check(&c); err != nil {
					t.Errorf("%s:%d: %v", base, c.Line, err)
				}
			})
		}
	}
}

const sample = "# Sample\n\n" +
	"## Test: output\n\n" +
	"```source\n{int i; i = 1;}\n```\n\n" +
	"```tac\nL1:\ti = 1\nL2:\n```\n\n" +
	"## Test: failure\n\n" +
	"```source\n{ x = 1; }\n```\n\n" +
	"```error\nscope: x undeclared\n```\n\n" +
	"```flags\n--std=dragon -Wshadow\n--pedantic\n```\n\n" +
	"```warnings\nnone\n```\n"

func TestExtract(t *testing.T) {
	cases, err := Extract([]byte(sample))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	out := cases[0]
	be.Equal(t, out.Name, "output")
	be.Equal(t, out.Source, "{int i; i = 1;}\n")
	be.True(t, out.HasTAC)
	be.Equal(t, out.TAC, "L1:\ti = 1\nL2:")
	be.True(t, out.Error == nil)
	be.True(t, out.Warnings == nil)

	fail := cases[1]
	be.Equal(t, fail.Name, "failure")
	be.Equal(t, *fail.Error, ExpectedError{Kind: "scope", Message: "x undeclared"})
	be.Equal(t, fail.Flags, []string{"--std=dragon", "-Wshadow", "--pedantic"})
	be.Equal(t, fail.Std(), "dragon")
	be.Equal(t, fail.ConfigFlags(), []string{"-Wshadow"})
	be.True(t, fail.Warnings != nil)
	be.Equal(t, len(fail.Warnings), 0)
}

func TestExtractRejectsMalformedCases(t *testing.T) {
	tests := map[string]string{
		"no source":        "## Test: a\n\n```tac\nL1:L2:\n```\n",
		"no expectation":   "## Test: a\n\n```source\n{}\n```\n",
		"both":             "## Test: a\n\n```source\n{}\n```\n\n```tac\nL1:L2:\n```\n\n```error\nsyntax\n```\n",
		"unknown fence":    "## Test: a\n\n```source\n{}\n```\n\n```output\nL1:L2:\n```\n",
		"outside a case":   "```source\n{}\n```\n",
		"duplicate source": "## Test: a\n\n```source\n{}\n```\n\n```source\n{}\n```\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(doc))
			be.True(t, err != nil)
		})
	}
}

func TestPlainFencesAreIgnored(t *testing.T) {
	doc := "Some prose.\n\n```\nnot a case\n```\n\n## Notes\n\nNothing here.\n"
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestCheckReportsMismatch(t *testing.T) {
	c := &Case{Name: "wrong", Source: "{int i; i = 2;}", TAC: "L1:\ti = 1\nL2:", HasTAC: true}
	err := Check(c)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "output mismatch"))

	c = &Case{Name: "kind", Source: "{ x = 1; }", Error: &ExpectedError{Kind: "type"}}
	err = Check(c)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "got scope"))
}

func TestConfigOrder(t *testing.T) {
	c := &Case{Flags: []string{"--pedantic", "-Wno-shadow"}}
	cfg, err := c.Config()
	be.Err(t, err, nil)
	be.Equal(t, cfg.StdName, "ext")
	be.True(t, !cfg.IsWarningEnabled(config.WarnShadow))
	be.True(t, cfg.IsWarningEnabled(config.WarnNarrowing))
	be.True(t, !cfg.IsFeatureEnabled(config.FeatRedeclare))
}
