package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/mitchellh/cli"
	"github.com/satori/uuid"

	"github.com/yusufsyaifudin/mailmerge/config"
	"github.com/yusufsyaifudin/mailmerge/container"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

// Meta is shared by every sub-command.
type Meta struct {
	AppName    string
	AppVersion string
	Ui         cli.Ui

	// Stderr receives logs and traces.
	Stderr io.Writer

	envFile string
}

// FlagSet returns a flag set with the flags every sub-command understands.
func (m *Meta) FlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&m.envFile, "env", ".env", "Optional env file with MAILMERGE_ variables")
	return flags
}

// Bootstrap loads the app config, installs the global logger and prepares the container.
// The caller must Close the returned container.
func (m *Meta) Bootstrap(command, recordsPath string) (context.Context, *container.DefaultContainerImpl, error) {
	cfg, err := config.Load(m.envFile)
	if err != nil {
		return nil, nil, err
	}

	zapLog, err := config.Setup(cfg, m.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("error setup logger: %w", err)
	}

	logger.SetGlobalLogger(logger.NewZap(zapLog))

	ctx := logger.Inject(context.Background(), logger.Tracer{
		RunID:   uuid.NewV4().String(),
		Command: command,
		Records: recordsPath,
	})

	logger.Debug(ctx, "~ setup container")
	app, err := container.Setup(ctx, container.Config{
		App:         cfg,
		AppVersion:  m.AppVersion,
		TraceOutput: m.Stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error setup container: %w", err)
	}

	return ctx, app, nil
}

// Fail writes err to the error stream and returns ExitErr.
func (m *Meta) Fail(err error) int {
	m.Ui.Error(fmt.Sprintf("Error: %s", err))
	return ExitErr
}

// CloseContainer closes app and reports a failure on the error stream.
func (m *Meta) CloseContainer(ctx context.Context, app *container.DefaultContainerImpl) {
	logger.Debug(ctx, "~ closing container")
	if err := app.Close(); err != nil {
		logger.Error(ctx, "~ error close container", logger.KV("error", err))
	}
}
