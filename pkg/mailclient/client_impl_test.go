package mailclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	calls   []string
	authErr error
	rcptErr error
	quitErr error
	data    bytes.Buffer
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (f *fakeSession) StartTLS(config *tls.Config) error {
	f.calls = append(f.calls, "STARTTLS "+config.ServerName)
	return nil
}

func (f *fakeSession) Auth(a sasl.Client) error {
	mech, ir, err := a.Start()
	if err != nil {
		return err
	}

	f.calls = append(f.calls, "AUTH "+mech+" "+string(bytes.ReplaceAll(ir, []byte{0}, []byte{'|'})))
	return f.authErr
}

func (f *fakeSession) Noop() error {
	f.calls = append(f.calls, "NOOP")
	return nil
}

func (f *fakeSession) Reset() error {
	f.calls = append(f.calls, "RSET")
	return nil
}

func (f *fakeSession) Mail(from string, _ *smtp.MailOptions) error {
	f.calls = append(f.calls, "MAIL "+from)
	return nil
}

func (f *fakeSession) Rcpt(to string) error {
	f.calls = append(f.calls, "RCPT "+to)
	return f.rcptErr
}

func (f *fakeSession) Data() (io.WriteCloser, error) {
	f.calls = append(f.calls, "DATA")
	return nopWriteCloser{&f.data}, nil
}

func (f *fakeSession) Quit() error {
	f.calls = append(f.calls, "QUIT")
	return f.quitErr
}

func (f *fakeSession) Close() error {
	f.calls = append(f.calls, "CLOSE")
	return nil
}

func newTestMailer(t *testing.T, session *fakeSession) *SmtpMailer {
	t.Helper()

	client, err := NewSmtp(SmtpMailerConfig{
		EmailCredential: EmailCredential{
			ServerHost: "smtp.example.com",
			ServerPort: 587,
			Username:   "me@example.com",
		},
		Dial: func(ctx context.Context, cred EmailCredential) (Session, error) {
			return session, nil
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewSmtp(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		client, err := NewSmtp(SmtpMailerConfig{})
		assert.Nil(t, client)
		assert.Error(t, err)
	})

	t.Run("ok", func(t *testing.T) {
		client := newTestMailer(t, &fakeSession{})
		assert.Equal(t, "smtp.example.com", client.Config.TLSConfig.ServerName)
	})
}

func TestSmtpMailer_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		session := &fakeSession{}
		client := newTestMailer(t, session)

		require.NoError(t, client.Open(ctx, "secret"))
		assert.Equal(t, []string{
			"STARTTLS smtp.example.com",
			"AUTH PLAIN |me@example.com|secret",
			"NOOP",
		}, session.calls)

		assert.Error(t, client.Open(ctx, "secret"), "second open must fail")
	})

	t.Run("auth failure closes connection", func(t *testing.T) {
		authErr := errors.New("535 bad credentials")
		session := &fakeSession{authErr: authErr}
		client := newTestMailer(t, session)

		err := client.Open(ctx, "wrong")
		assert.ErrorIs(t, err, authErr)
		assert.Equal(t, "CLOSE", session.calls[len(session.calls)-1])

		assert.Error(t, client.Send(ctx, Message{}), "send without session")
	})

	t.Run("dial failure", func(t *testing.T) {
		dialErr := errors.New("connection refused")
		client, err := NewSmtp(SmtpMailerConfig{
			EmailCredential: EmailCredential{ServerHost: "smtp.example.com", ServerPort: 587, Username: "me"},
			Dial: func(ctx context.Context, cred EmailCredential) (Session, error) {
				return nil, dialErr
			},
		})
		require.NoError(t, err)

		err = client.Open(ctx, "secret")
		assert.ErrorIs(t, err, dialErr)
		assert.Contains(t, err.Error(), "smtp.example.com:587")
	})
}

func TestSmtpMailer_Send(t *testing.T) {
	ctx := context.Background()
	msg := Message{
		From:      Address{Name: "Me", Email: "me@example.com"},
		To:        Address{Name: "Ada Lovelace", Email: "ada@example.com"},
		Subject:   "Hi",
		Body:      "Hello ada@example.com",
		MessageID: "abc@example.com",
	}

	t.Run("ok", func(t *testing.T) {
		session := &fakeSession{}
		client := newTestMailer(t, session)
		require.NoError(t, client.Open(ctx, "secret"))
		session.calls = nil

		require.NoError(t, client.Send(ctx, msg))
		assert.Equal(t, []string{"RSET", "MAIL me@example.com", "RCPT ada@example.com", "DATA"}, session.calls)
		assert.Contains(t, session.data.String(), "Message-Id: <abc@example.com>")
		assert.Contains(t, session.data.String(), "Hello ada@example.com")
	})

	t.Run("protocol error propagates", func(t *testing.T) {
		rcptErr := errors.New("550 no such user")
		session := &fakeSession{rcptErr: rcptErr}
		client := newTestMailer(t, session)
		require.NoError(t, client.Open(ctx, "secret"))

		err := client.Send(ctx, msg)
		assert.ErrorIs(t, err, rcptErr)
	})
}

func TestSmtpMailer_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("not open", func(t *testing.T) {
		client := newTestMailer(t, &fakeSession{})
		assert.NoError(t, client.Close())
	})

	t.Run("quit", func(t *testing.T) {
		session := &fakeSession{}
		client := newTestMailer(t, session)
		require.NoError(t, client.Open(ctx, "secret"))

		assert.NoError(t, client.Close())
		assert.Equal(t, "QUIT", session.calls[len(session.calls)-1])
		assert.NoError(t, client.Close(), "second close is a no-op")
	})

	t.Run("quit failure falls back to close", func(t *testing.T) {
		quitErr := errors.New("connection reset")
		session := &fakeSession{quitErr: quitErr}
		client := newTestMailer(t, session)
		require.NoError(t, client.Open(ctx, "secret"))

		err := client.Close()
		assert.ErrorIs(t, err, quitErr)
		assert.Equal(t, "CLOSE", session.calls[len(session.calls)-1])
	})
}
