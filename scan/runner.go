package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/screenerhq/scan-server/internal/errors"
)

const diagnosticTailLines = 10

// ProgressFunc receives incremental progress from a running scan.
type ProgressFunc func(pct int, task string)

// Runner launches and supervises one external scanner execution. The
// scanner is a black box: the runner derives its arguments and credential
// environment, watches its combined output for progress signals and
// classifies its exit.
type Runner struct {
	bin       string
	workDir   string
	reportDir string
}

func NewRunner(bin, workDir, reportDir string) *Runner {
	return &Runner{bin: bin, workDir: workDir, reportDir: reportDir}
}

// Run executes one scan to completion and returns the produced report path.
// The process handle and the credential-bearing environment are scoped to
// this call; cancelling ctx kills the child on host shutdown. A failed scan
// is never retried here; a new job must be created to retry.
func (r *Runner) Run(ctx context.Context, params Params, creds Credentials, progress ProgressFunc) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, buildArgs(params)...)
	cmd.Dir = r.workDir
	cmd.Env = buildEnv(os.Environ(), creds)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	defer pr.Close()

	progress(5, "Preparing scan...")

	if err := cmd.Start(); err != nil {
		pw.Close()
		return "", errors.Wrapf(errors.ErrScanLaunchFailed, "%s: %v", r.bin, err)
	}

	progress(10, fmt.Sprintf("Scanning %d services in %d regions...", len(params.Services), len(params.Regions)))

	tail := newTailBuffer(diagnosticTailLines)
	trk := newTracker(len(params.Services))

	var g errgroup.Group
	g.Go(func() error {
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			line := scanner.Text()
			tail.Add(line)
			log.Debug().Str("scanner", r.bin).Msg(line)
			if pct, task, ok := trk.Observe(line); ok {
				progress(pct, task)
			}
		}
		return scanner.Err()
	})

	err := cmd.Wait()
	pw.Close()
	if readErr := g.Wait(); readErr != nil {
		log.Warn().Err(readErr).Msg("reading scanner output")
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("scan failed (exit code %d), last output:\n%s", exitErr.ExitCode(), tail.String())
		}
		return "", fmt.Errorf("scan failed: %w, last output:\n%s", err, tail.String())
	}

	reportPath, ok := r.findReport()
	if !ok {
		return "", fmt.Errorf("scan finished but produced no report under %s", r.reportDir)
	}
	return reportPath, nil
}

func buildArgs(params Params) []string {
	args := []string{
		"--regions", strings.Join(params.Regions, ","),
		"--services", strings.Join(params.Services, ","),
	}
	if len(params.Frameworks) > 0 {
		args = append(args, "--frameworks", strings.Join(params.Frameworks, ","))
	}
	return args
}

// buildEnv derives the child environment. Temporary keys replace any
// profile selection; a profile leaves any ambient keys untouched apart from
// selecting the profile.
func buildEnv(base []string, creds Credentials) []string {
	env := make([]string, 0, len(base)+4)
	for _, kv := range base {
		if creds.HasKeys() && hasAnyPrefix(kv, "AWS_PROFILE=", "AWS_ACCESS_KEY_ID=", "AWS_SECRET_ACCESS_KEY=", "AWS_SESSION_TOKEN=") {
			continue
		}
		if creds.Profile != "" && strings.HasPrefix(kv, "AWS_PROFILE=") {
			continue
		}
		env = append(env, kv)
	}

	switch {
	case creds.HasKeys():
		env = append(env,
			"AWS_ACCESS_KEY_ID="+creds.AccessKeyID,
			"AWS_SECRET_ACCESS_KEY="+creds.SecretAccessKey,
		)
		if creds.SessionToken != "" {
			env = append(env, "AWS_SESSION_TOKEN="+creds.SessionToken)
		}
	case creds.Profile != "":
		env = append(env, "AWS_PROFILE="+creds.Profile)
	}
	return env
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// findReport locates the newest account-ID report directory containing an
// index.html, the shape the scanner writes its artifacts in.
func (r *Runner) findReport() (string, bool) {
	entries, err := os.ReadDir(r.reportDir)
	if err != nil {
		return "", false
	}

	var (
		newestAccount string
		newestTime    time.Time
	)
	for _, entry := range entries {
		if !entry.IsDir() || !isDigits(entry.Name()) {
			continue
		}
		index := filepath.Join(r.reportDir, entry.Name(), "index.html")
		info, err := os.Stat(index)
		if err != nil {
			continue
		}
		if newestAccount == "" || info.ModTime().After(newestTime) {
			newestAccount = entry.Name()
			newestTime = info.ModTime()
		}
	}
	if newestAccount == "" {
		return "", false
	}
	return fmt.Sprintf("/reports/%s/index.html", newestAccount), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tailBuffer keeps the last n lines of output for failure diagnostics.
type tailBuffer struct {
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Add(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[1:]
	}
}

func (b *tailBuffer) String() string {
	if len(b.lines) == 0 {
		return "no output"
	}
	return strings.Join(b.lines, "\n")
}
