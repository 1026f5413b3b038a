package bedesktop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
	"github.com/yusufsyaifudin/mailmerge/pkg/tracer"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

var (
	ErrUserDeclined    = errors.New("user declined to send the mail")
	ErrUnexpectedInput = errors.New("unexpected confirmation input")
)

// UnexpectedInputError is returned when the confirmation answer is neither yes nor no.
type UnexpectedInputError struct {
	Answer string
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnexpectedInput, e.Answer)
}

func (e *UnexpectedInputError) Unwrap() error {
	return ErrUnexpectedInput
}

type Config struct {
	Sender   backend.DisplayAddress
	Prompter backend.Prompter `validate:"required"`
	Launcher Launcher         `validate:"required"`
}

// Transport hands every message to a desktop mail client and waits for a
// human to confirm it was sent.
type Transport struct {
	Config Config
}

var _ backend.Transport = (*Transport)(nil)

// New is the backend.Factory of the "desktop" provider.
func New(_ context.Context, params backend.Params) (backend.Transport, error) {
	launcher, err := NewLauncher(params.Composer, nil)
	if err != nil {
		return nil, err
	}

	return NewTransport(Config{
		Sender:   params.Sender,
		Prompter: params.Prompter,
		Launcher: launcher,
	})
}

func NewTransport(cfg Config) (*Transport, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &Transport{Config: cfg}, nil
}

// Login has nothing to authenticate against.
func (t *Transport) Login(_ context.Context) error {
	return nil
}

// SendMessage opens the composer and blocks until the user answers the confirmation prompt.
func (t *Transport) SendMessage(ctx context.Context, msg backend.Email) (err error) {
	ctx, span := tracer.StartSpan(ctx, "bedesktop.SendMessage")
	defer func() { tracer.EndSpan(span, err) }()

	cleanup, err := t.Config.Launcher.Launch(ctx, msg)
	if err != nil {
		err = fmt.Errorf("open desktop composer: %w", err)
		return
	}

	defer cleanup()

	answer, err := t.Config.Prompter.Ask(fmt.Sprintf("Did you send the mail to %s? [Y/n]", msg.To))
	if err != nil {
		err = fmt.Errorf("read confirmation: %w", err)
		return
	}

	err = parseConfirmation(answer)
	if err != nil {
		return
	}

	logger.Debug(ctx, "desktop send confirmed", logger.KV("to", msg.To.Email))
	return
}

func (t *Transport) Quit(_ context.Context) error {
	return nil
}

func (t *Transport) SenderAddress() backend.DisplayAddress {
	return t.Config.Sender
}

func parseConfirmation(answer string) error {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y":
		return nil
	case "n":
		return ErrUserDeclined
	default:
		return &UnexpectedInputError{Answer: answer}
	}
}
