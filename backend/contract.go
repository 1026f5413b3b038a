package backend

import (
	"context"
	"fmt"
)

var (
	ErrProviderAlreadyRegistered = fmt.Errorf("provider already registered")
	ErrProviderNotRegistered     = fmt.Errorf("provider not registered")
)

// Transport delivers composed emails one at a time.
// Implementations are not safe for concurrent use.
type Transport interface {
	// Login opens the session. It may block on an interactive prompt.
	Login(ctx context.Context) error

	// SendMessage delivers msg. Any error means the message must be treated as not sent.
	SendMessage(ctx context.Context, msg Email) error

	// Quit closes the session. Calling Quit on a transport that never logged in is a no-op.
	Quit(ctx context.Context) error

	// SenderAddress is the identity used as the From of every composed email.
	SenderAddress() DisplayAddress
}

// Prompter asks the human running the command for input. mitchellh/cli Ui satisfies it.
type Prompter interface {
	Ask(query string) (string, error)
	AskSecret(query string) (string, error)
}

// Params is everything a Factory may need to build a Transport.
type Params struct {
	Sender DisplayAddress

	SMTPServer string
	SMTPPort   int
	SMTPUser   string

	// Composer names the desktop mail client used by the interactive transport.
	Composer string

	Prompter Prompter `validate:"required"`
}

// Factory builds a Transport without opening it.
type Factory func(ctx context.Context, params Params) (Transport, error)

// DisplayAddress is an email address with an optional human readable name.
type DisplayAddress struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name,omitempty"`
}

func (a DisplayAddress) String() string {
	if a.Name == "" {
		return a.Email
	}

	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Email is a composed plain text message. The Message-ID is assigned when the
// message is encoded for the wire, not here.
type Email struct {
	Subject string
	Body    string
	From    DisplayAddress
	To      DisplayAddress
}
