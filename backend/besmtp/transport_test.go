package besmtp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/pkg/mailclient"
)

type fakeClient struct {
	password string
	openErr  error
	sendErr  error
	sent     []mailclient.Message
	closed   int
}

func (f *fakeClient) Open(_ context.Context, password string) error {
	f.password = password
	return f.openErr
}

func (f *fakeClient) Send(_ context.Context, msg mailclient.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}

	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func newTestTransport(t *testing.T, client *fakeClient, input string) (*Transport, *cli.MockUi) {
	t.Helper()

	ui := cli.NewMockUi()
	ui.InputReader = strings.NewReader(input)

	tr, err := NewTransport(Config{
		Sender:   backend.DisplayAddress{Name: "Felix", Email: "felix@example.org"},
		Prompter: ui,
		Client:   client,
		Now: func() time.Time {
			return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	return tr, ui
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("no server", func(t *testing.T) {
		_, err := New(ctx, backend.Params{Sender: backend.DisplayAddress{Email: "felix@example.org"}, Prompter: cli.NewMockUi()})
		assert.Error(t, err)
	})

	t.Run("ok", func(t *testing.T) {
		tr, err := New(ctx, backend.Params{
			Sender:     backend.DisplayAddress{Name: "Felix", Email: "felix@example.org"},
			SMTPServer: "smtp.example.org",
			SMTPPort:   587,
			Prompter:   cli.NewMockUi(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Felix <felix@example.org>", tr.SenderAddress().String())

		smtpTransport, ok := tr.(*Transport)
		require.True(t, ok)
		mailer, ok := smtpTransport.Config.Client.(*mailclient.SmtpMailer)
		require.True(t, ok)
		assert.Equal(t, "felix@example.org", mailer.Config.EmailCredential.Username, "smtp user defaults to sender email")
	})
}

func TestTransport_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("prompts password", func(t *testing.T) {
		client := &fakeClient{}
		tr, ui := newTestTransport(t, client, "s3cret\n")

		require.NoError(t, tr.Login(ctx))
		assert.Equal(t, "s3cret", client.password)
		assert.Contains(t, ui.OutputWriter.String(), "Password for felix@example.org:")
	})

	t.Run("auth failure", func(t *testing.T) {
		authErr := errors.New("535 authentication failed")
		client := &fakeClient{openErr: authErr}
		tr, _ := newTestTransport(t, client, "wrong\n")

		assert.ErrorIs(t, tr.Login(ctx), authErr)
	})
}

func TestTransport_SendMessage(t *testing.T) {
	ctx := context.Background()
	msg := backend.Email{
		Subject: "Hi",
		Body:    "Hello",
		From:    backend.DisplayAddress{Name: "Felix", Email: "felix@example.org"},
		To:      backend.DisplayAddress{Name: "Ada Lovelace", Email: "ada@example.com"},
	}

	t.Run("ok", func(t *testing.T) {
		client := &fakeClient{}
		tr, _ := newTestTransport(t, client, "")

		require.NoError(t, tr.SendMessage(ctx, msg))
		require.NoError(t, tr.SendMessage(ctx, msg))
		require.Len(t, client.sent, 2)

		first := client.sent[0]
		assert.Equal(t, mailclient.Address{Name: "Ada Lovelace", Email: "ada@example.com"}, first.To)
		assert.Equal(t, "Hi", first.Subject)
		assert.True(t, strings.HasSuffix(first.MessageID, "@example.org"))
		assert.NotEqual(t, first.MessageID, client.sent[1].MessageID)
		assert.Equal(t, 2024, first.Date.Year())
	})

	t.Run("protocol failure propagates", func(t *testing.T) {
		sendErr := errors.New("451 try again later")
		tr, _ := newTestTransport(t, &fakeClient{sendErr: sendErr}, "")

		assert.ErrorIs(t, tr.SendMessage(ctx, msg), sendErr)
	})
}

func TestTransport_Quit(t *testing.T) {
	client := &fakeClient{}
	tr, _ := newTestTransport(t, client, "")

	assert.NoError(t, tr.Quit(context.Background()))
	assert.Equal(t, 1, client.closed)
}
