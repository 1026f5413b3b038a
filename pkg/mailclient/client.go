package mailclient

import (
	"context"
	"crypto/tls"
	"io"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Client is one authenticated SMTP session.
type Client interface {
	io.Closer
	Open(ctx context.Context, password string) error
	Send(ctx context.Context, msg Message) error
}

// Session is the subset of *smtp.Client used by SmtpMailer.
type Session interface {
	StartTLS(config *tls.Config) error
	Auth(a sasl.Client) error
	Noop() error
	Reset() error
	Mail(from string, opts *smtp.MailOptions) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

var _ Session = (*smtp.Client)(nil)

// DialFunc opens a plain text connection to the server described by cred.
type DialFunc func(ctx context.Context, cred EmailCredential) (Session, error)
