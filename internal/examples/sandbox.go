package examples

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kluctl/go-embed-python/python"
)

// maxCapturedOutput bounds how much stdout a fragment may produce
// before the rest is discarded.
const maxCapturedOutput = 64 * 1024

// Launcher builds the interpreter command for a script. Split out so
// tests can substitute a plain system interpreter for the embedded one.
type Launcher interface {
	Command(script string) (*exec.Cmd, error)
}

// EmbeddedLauncher runs scripts on the embedded CPython distribution,
// so example execution needs no interpreter on the host. The runtime
// is extracted lazily on first use and reused afterwards.
type EmbeddedLauncher struct {
	once sync.Once
	ep   *python.EmbeddedPython
	err  error
}

// NewEmbeddedLauncher creates the embedded-interpreter launcher.
func NewEmbeddedLauncher() *EmbeddedLauncher {
	return &EmbeddedLauncher{}
}

func (l *EmbeddedLauncher) Command(script string) (*exec.Cmd, error) {
	l.once.Do(func() {
		l.ep, l.err = python.NewEmbeddedPython("pkgchew-sandbox")
	})
	if l.err != nil {
		return nil, fmt.Errorf("failed to set up embedded python: %w", l.err)
	}
	// -I: isolated mode, no site-packages, no user environment.
	return l.ep.PythonCmd("-I", script)
}

// Sandbox executes example fragments in a subprocess with a scrubbed
// environment, a throwaway working directory, and a hard wall-clock
// timeout. The process boundary is the trust boundary: nothing from
// the fragment runs inside this process.
type Sandbox struct {
	launcher Launcher
	timeout  time.Duration
}

// NewSandbox creates a sandbox with the given execution timeout.
func NewSandbox(launcher Launcher, timeout time.Duration) *Sandbox {
	return &Sandbox{launcher: launcher, timeout: timeout}
}

// Run executes the fragment and returns captured stdout. A run that
// exceeds the timeout is killed and reported as ErrTimeout; a run cut
// short by the caller's context is killed and reports the context
// error, so cancellation never masquerades as a timeout.
func (s *Sandbox) Run(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scratch, err := os.MkdirTemp("", "pkgchew-sandbox-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	script := filepath.Join(scratch, "fragment.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return "", fmt.Errorf("failed to write fragment: %w", err)
	}

	cmd, err := s.launcher.Command(script)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Dir = scratch
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// The fragment sees nothing of the host environment beyond a
	// writable scratch HOME and TMPDIR.
	cmd.Env = []string{
		"HOME=" + scratch,
		"TMPDIR=" + scratch,
		"PATH=",
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start sandbox: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("%s: %s", err, firstLine(stderr.String()))
		}
	}

	out := stdout.String()
	if len(out) > maxCapturedOutput {
		out = out[:maxCapturedOutput]
	}
	return out, nil
}

// firstLine trims stderr down to the most useful part: the final
// traceback line carries the exception message.
func firstLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
