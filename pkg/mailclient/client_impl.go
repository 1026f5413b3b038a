package mailclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

type SmtpMailerConfig struct {
	EmailCredential EmailCredential `validate:"required"`

	// Dial defaults to a TCP dial of ServerHost:ServerPort.
	Dial DialFunc `validate:"-"`

	// TLSConfig defaults to verifying the certificate against ServerHost.
	TLSConfig *tls.Config `validate:"-"`
}

type SmtpMailer struct {
	Config SmtpMailerConfig
	smtp   Session
}

var _ Client = (*SmtpMailer)(nil)

// NewSmtp will return new smtp client without any real connection is made.
// Open must be called before Send.
func NewSmtp(cfg SmtpMailerConfig) (*SmtpMailer, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("validation error: %w", err)
		return nil, err
	}

	if cfg.Dial == nil {
		cfg.Dial = dialTCP
	}

	if cfg.TLSConfig == nil {
		cfg.TLSConfig = &tls.Config{ServerName: cfg.EmailCredential.ServerHost}
	}

	client := &SmtpMailer{
		Config: cfg,
	}

	return client, nil
}

// Open connects, upgrades the connection with STARTTLS and authenticates using SASL PLAIN.
func (m *SmtpMailer) Open(ctx context.Context, password string) (err error) {
	if m.smtp != nil {
		return fmt.Errorf("smtp session already open")
	}

	cred := m.Config.EmailCredential
	c, err := m.Config.Dial(ctx, cred)
	if err != nil {
		err = fmt.Errorf("dial %s: %w", net.JoinHostPort(cred.ServerHost, strconv.Itoa(cred.ServerPort)), err)
		return
	}

	defer func() {
		if err == nil {
			return
		}

		if _err := c.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close after failed open: %w", _err))
		}
	}()

	err = c.StartTLS(m.Config.TLSConfig)
	if err != nil {
		err = fmt.Errorf("error start tls: %w", err)
		return
	}

	err = c.Auth(sasl.NewPlainClient(cred.AuthIdentity, cred.Username, password))
	if err != nil {
		err = fmt.Errorf("error auth as %s: %w", cred.Username, err)
		return
	}

	err = c.Noop()
	if err != nil {
		err = fmt.Errorf("check smtp is not ok: %w", err)
		return
	}

	m.smtp = c
	return
}

// Send runs one MAIL/RCPT/DATA transaction for msg.
func (m *SmtpMailer) Send(_ context.Context, msg Message) (err error) {
	if m.smtp == nil {
		return fmt.Errorf("smtp session is not open")
	}

	buf := bytes.NewBuffer(nil)
	err = Encode(buf, msg)
	if err != nil {
		return
	}

	// RSET command is for aborting already started mail transaction (tools.ietf.org/html/rfc5321#section-4.1.1.5).
	err = m.smtp.Reset()
	if err != nil {
		err = fmt.Errorf("RSET cmd failed: %w", err)
		return
	}

	// New transaction is initiated using the MAIL command (tools.ietf.org/html/rfc5321#section-4.1.1.2).
	err = m.smtp.Mail(msg.From.Email, nil)
	if err != nil {
		err = fmt.Errorf("MAIL cmd failed: %w", err)
		return
	}

	err = m.smtp.Rcpt(msg.To.Email)
	if err != nil {
		err = fmt.Errorf("error recipient %s: %w", msg.To.Email, err)
		return
	}

	var wc io.WriteCloser
	wc, err = m.smtp.Data()
	if err != nil {
		err = fmt.Errorf("error data writer: %w", err)
		return
	}

	_, err = io.Copy(wc, buf)
	if err != nil {
		err = multierr.Append(fmt.Errorf("error data copy: %w", err), wc.Close())
		return
	}

	err = wc.Close()
	if err != nil {
		err = fmt.Errorf("error data close: %w", err)
		return
	}

	return
}

// Close sends QUIT and falls back to closing the connection when QUIT fails.
// https://stackoverflow.com/questions/2468851/when-should-i-send-quit-to-smtp-server-and-how-long-should-i-keep-a-session
func (m *SmtpMailer) Close() error {
	if m.smtp == nil {
		return nil
	}

	c := m.smtp
	m.smtp = nil

	var err error
	_err := c.Quit()
	if _err == nil {
		return nil
	}

	err = multierr.Append(err, fmt.Errorf("quit command error: %w", _err))
	_err = c.Close()
	if _err != nil {
		err = multierr.Append(err, fmt.Errorf("close command error: %w", _err))
	}

	return err
}

func dialTCP(ctx context.Context, cred EmailCredential) (Session, error) {
	smtpAddr := net.JoinHostPort(cred.ServerHost, strconv.Itoa(cred.ServerPort))

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", smtpAddr)
	if err != nil {
		err = fmt.Errorf("tcp dial error: %w", err)
		return nil, err
	}

	c, err := smtp.NewClient(conn, cred.ServerHost)
	if err != nil {
		_ = conn.Close()
		err = fmt.Errorf("error new smtp client: %w", err)
		return nil, err
	}

	return c, nil
}
