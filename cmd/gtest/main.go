// gtest runs the translator binary over Markdown corpus files and checks every case
// they contain: exact output for tac cases, exit status and diagnostic for error cases.
// Each case is translated several times so that unstable numbering shows up.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/tacc/pkg/golden"
)

// Execution is one run of the translator.
type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
	Unstable bool          `json:"unstable_output,omitempty"`
}

type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

type CaseResult struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Diff    string `json:"diff,omitempty"`
}

type FileResult struct {
	File    string       `json:"file"`
	Hash    string       `json:"hash,omitempty"`
	Status  Status       `json:"status"`
	Message string       `json:"message,omitempty"`
	Cases   []CaseResult `json:"cases,omitempty"`
}

var (
	targetCompiler = flag.String("target-compiler", "./tacc", "Path to the translator to test.")
	targetArgs     = flag.String("target-args", "--no-color", "Arguments for the translator (space-separated).")
	testFiles      = flag.String("test-files", "testdata/*.md", "Glob pattern(s) for corpus files (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each translator run.")
	jobs           = flag.Int("j", 4, "Number of files tested in parallel.")
	runs           = flag.Int("runs", 3, "Number of runs per case used to detect unstable output.")
	verbose        = flag.Bool("v", false, "List passing cases too.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	*runs = max(*runs, 1)

	if _, err := exec.LookPath(*targetCompiler); err != nil {
		log.Fatalf("%s[ERROR]%s translator '%s' not found: %v", cRed, cNone, *targetCompiler, err)
	}
	tempDir, err := os.MkdirTemp("", "gtest-*")
	if err != nil {
		log.Fatalf("%s[ERROR]%s cannot create temp directory: %v", cRed, cNone, err)
	}
	defer os.RemoveAll(tempDir)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		os.RemoveAll(tempDir)
		fmt.Printf("\n%s[INTERRUPT]%s test run cancelled\n", cYellow, cNone)
		os.Exit(1)
	}()

	files, err := expandGlobs(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s %v", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No corpus files match the pattern(s).")
		return
	}

	results := runSuite(files, tempDir)
	printSummary(results)
	writeReport(results)
	if slices.ContainsFunc(results, func(r *FileResult) bool {
		return r.Status == StatusFail || r.Status == StatusError
	}) {
		os.Exit(1)
	}
}

// runSuite tests files on a pool of -j workers. Files whose content hashes equal an
// earlier file's are skipped.
func runSuite(files []string, tempDir string) []*FileResult {
	skip := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skip[f] = true
	}

	pending := make(chan *FileResult, len(files))
	done := make(chan *FileResult, len(files))
	var wg sync.WaitGroup
	for range *jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for res := range pending {
				done <- testFile(res, tempDir)
			}
		}()
	}

	seen := make(map[uint64]string)
	for _, file := range files {
		if skip[file] || skip[filepath.Base(file)] {
			done <- &FileResult{File: file, Status: StatusSkip, Message: "skipped on request"}
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			done <- &FileResult{File: file, Status: StatusError, Message: err.Error()}
			continue
		}
		sum := xxhash.Sum64(data)
		if first, dup := seen[sum]; dup {
			done <- &FileResult{File: file, Status: StatusSkip, Message: "same content as " + first}
			continue
		}
		seen[sum] = file
		pending <- &FileResult{File: file, Hash: fmt.Sprintf("%016x", sum)}
	}
	close(pending)
	wg.Wait()
	close(done)

	var results []*FileResult
	for r := range done {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b *FileResult) int { return strings.Compare(a.File, b.File) })
	return results
}

func testFile(res *FileResult, tempDir string) *FileResult {
	data, err := os.ReadFile(res.File)
	if err != nil {
		res.Status, res.Message = StatusError, err.Error()
		return res
	}
	cases, err := golden.Extract(data)
	if err != nil {
		res.Status, res.Message = StatusError, err.Error()
		return res
	}

	failed := 0
	for i := range cases {
		c := &cases[i]
		src := filepath.Join(tempDir, fmt.Sprintf("%s-%d.t", res.Hash, i))
		cr := CaseResult{Name: c.Name, Line: c.Line}
		if err := os.WriteFile(src, []byte(c.Source), 0o644); err != nil {
			cr.Status, cr.Message = StatusError, err.Error()
		} else {
			args := append(strings.Fields(*targetArgs), c.Flags...)
			cr = judge(c, translate(append(args, src)))
			os.Remove(src)
		}
		if cr.Status != StatusPass {
			failed++
		}
		res.Cases = append(res.Cases, cr)
	}
	if failed > 0 {
		res.Status, res.Message = StatusFail, fmt.Sprintf("%d of %d cases failed", failed, len(cases))
		return res
	}
	res.Status, res.Message = StatusPass, fmt.Sprintf("all %d cases passed", len(cases))
	return res
}

// judge compares one translator run with what its case expects.
func judge(c *golden.Case, got Execution) CaseResult {
	cr := CaseResult{Name: c.Name, Line: c.Line, Status: StatusFail}
	switch {
	case got.TimedOut:
		cr.Message = "timed out"
	case got.Unstable:
		cr.Message = "output differs between runs"
	case c.Error != nil:
		tag := "[" + c.Error.Kind + "]"
		switch {
		case got.ExitCode == 0:
			cr.Message = "expected a " + tag + " failure, translation succeeded"
		case !strings.Contains(got.Stderr, tag) || !strings.Contains(got.Stderr, c.Error.Message):
			cr.Message = "diagnostic mismatch"
			cr.Diff = fmt.Sprintf("want %s %s\ngot:\n%s", tag, c.Error.Message, got.Stderr)
		default:
			cr.Status = StatusPass
		}
	default:
		if got.ExitCode != 0 {
			cr.Message, cr.Diff = fmt.Sprintf("exit code %d", got.ExitCode), got.Stderr
		} else if diff := cmp.Diff(c.TAC+"\n", got.Stdout); diff != "" {
			cr.Message, cr.Diff = "output mismatch (-want +got)", diff
		} else {
			cr.Status = StatusPass
		}
	}
	return cr
}

// translate runs the translator -runs times, keeping the fastest duration. Any
// difference between runs marks the result unstable.
func translate(args []string) Execution {
	var first Execution
	for i := range *runs {
		run := execute(*targetCompiler, args)
		if i == 0 {
			first = run
			if run.TimedOut {
				break
			}
			continue
		}
		if run.ExitCode != first.ExitCode || run.Stdout != first.Stdout || run.Stderr != first.Stderr {
			first.Unstable = true
			break
		}
		first.Duration = min(first.Duration, run.Duration)
	}
	if *verbose {
		log.Printf("%s: exit %d in %s", strings.Join(args, " "), first.ExitCode, first.Duration)
	}
	return first
}

func execute(command string, args []string) Execution {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	start := time.Now()
	err := cmd.Run()

	ex := Execution{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ex.TimedOut, ex.ExitCode = true, -1
	case errors.As(err, &exitErr):
		ex.ExitCode = exitErr.ExitCode()
	case err != nil:
		ex.ExitCode = -2
		ex.Stderr += "\nexecution error: " + err.Error()
	}
	return ex
}

func printSummary(results []*FileResult) {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("%s%s%s: [%s] %s\n", cCyan, r.File, cNone, paintStatus(r.Status), r.Message)
		for _, cr := range r.Cases {
			if cr.Status == StatusPass && !*verbose {
				continue
			}
			fmt.Printf("    [%s] line %d, %s", paintStatus(cr.Status), cr.Line, cr.Name)
			if cr.Message != "" {
				fmt.Printf(": %s", cr.Message)
			}
			fmt.Println()
			fmt.Print(indentDiff(cr.Diff))
		}
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("%sSummary:%s %d passed, %d failed, %d skipped, %d errored, %d files\n",
		cBold, cNone, counts[StatusPass], counts[StatusFail], counts[StatusSkip], counts[StatusError], len(results))
}

func paintStatus(s Status) string {
	color := cRed
	switch s {
	case StatusPass:
		color = cGreen
	case StatusSkip:
		color = cYellow
	}
	return color + string(s) + cNone
}

func indentDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		color := ""
		switch trimmed := strings.TrimSpace(line); {
		case strings.HasPrefix(trimmed, "-"):
			color = cRed
		case strings.HasPrefix(trimmed, "+"):
			color = cGreen
		}
		sb.WriteString("        " + color + line + cNone + "\n")
	}
	return sb.String()
}

func writeReport(results []*FileResult) {
	report := make(map[string]*FileResult, len(results))
	for _, r := range results {
		report[r.File] = r
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s cannot encode report: %v", cRed, cNone, err)
		return
	}
	if err := os.WriteFile(*outputJSON, data, 0o644); err != nil {
		log.Printf("%s[ERROR]%s cannot write report %s: %v", cRed, cNone, *outputJSON, err)
		return
	}
	fmt.Printf("Full report saved to %s\n", *outputJSON)
}

func expandGlobs(patterns string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil || seen[abs] {
				continue
			}
			if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
				files = append(files, abs)
				seen[abs] = true
			}
		}
	}
	return files, nil
}
