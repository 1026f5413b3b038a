package bedesktop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yusufsyaifudin/mailmerge/backend"
)

const (
	ComposerThunderbird = "thunderbird"
	ComposerXDGEmail    = "xdg-email"
)

// Launcher opens a pre-filled compose window. The returned cleanup must be
// called once the user is done with the window.
type Launcher interface {
	Launch(ctx context.Context, msg backend.Email) (cleanup func(), err error)
}

// RunFunc starts an external program. It returns once the program runs, or
// with an error when it could not start or exited with a failure right away.
type RunFunc func(ctx context.Context, name string, args ...string) error

// startGrace is how long runCommand watches a started program for an early failure.
var startGrace = 500 * time.Millisecond

// NewLauncher returns the launcher for composer, Thunderbird when empty.
func NewLauncher(composer string, run RunFunc) (Launcher, error) {
	if run == nil {
		run = runCommand
	}

	switch strings.TrimSpace(composer) {
	case "", ComposerThunderbird:
		return &Thunderbird{Binary: ComposerThunderbird, Run: run}, nil
	case ComposerXDGEmail:
		return &XDGEmail{Binary: ComposerXDGEmail, Run: run}, nil
	default:
		return nil, fmt.Errorf("unsupported desktop composer '%s'", composer)
	}
}

// Thunderbird uses `thunderbird -compose`. The body goes through a temporary
// file because the compose argument cannot carry arbitrary text.
type Thunderbird struct {
	Binary string
	Run    RunFunc
}

var _ Launcher = (*Thunderbird)(nil)

func (l *Thunderbird) Launch(ctx context.Context, msg backend.Email) (cleanup func(), err error) {
	f, err := os.CreateTemp("", "mailmerge-body-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create body file: %w", err)
	}

	cleanup = func() {
		_ = os.Remove(f.Name())
	}

	_, err = f.WriteString(msg.Body)
	if _err := f.Close(); err == nil {
		err = _err
	}

	if err != nil {
		cleanup()
		return nil, fmt.Errorf("write body file: %w", err)
	}

	err = l.Run(ctx, l.Binary, "-compose", ComposeArgument(msg, f.Name()))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("run %s: %w", l.Binary, err)
	}

	return cleanup, nil
}

// ComposeArgument builds the comma separated key='value' list of `thunderbird -compose`.
// format=2 asks for a plain text window.
func ComposeArgument(msg backend.Email, bodyFile string) string {
	fields := []string{
		fmt.Sprintf("to='%s'", quoteValue(msg.To.String())),
		fmt.Sprintf("from='%s'", quoteValue(msg.From.String())),
		fmt.Sprintf("subject='%s'", quoteValue(msg.Subject)),
		fmt.Sprintf("message='%s'", quoteValue(bodyFile)),
		"format=2",
	}

	return strings.Join(fields, ",")
}

// quoteValue drops the single quote, it would end the value early.
func quoteValue(s string) string {
	return strings.ReplaceAll(s, "'", "’")
}

// XDGEmail uses the freedesktop xdg-email helper. It cannot set the sender,
// the default account of the desktop mail client is used.
type XDGEmail struct {
	Binary string
	Run    RunFunc
}

var _ Launcher = (*XDGEmail)(nil)

func (l *XDGEmail) Launch(ctx context.Context, msg backend.Email) (cleanup func(), err error) {
	err = l.Run(ctx, l.Binary, "--utf8", "--subject", msg.Subject, "--body", msg.Body, msg.To.Email)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", l.Binary, err)
	}

	return func() {}, nil
}

// runCommand does not wait for the program to exit, a Thunderbird started by
// -compose keeps running as the main window until the user quits it.
func runCommand(_ context.Context, name string, args ...string) error {
	var stderr bytes.Buffer

	// not bound to ctx, cancelling the run must not close the user's mail client
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
	case <-time.After(startGrace):
	}

	return nil
}
