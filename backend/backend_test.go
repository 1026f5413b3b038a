package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	loginErr error
	quitErr  error
	calls    []string
}

func (f *fakeTransport) Login(_ context.Context) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakeTransport) SendMessage(_ context.Context, msg Email) error {
	f.calls = append(f.calls, "send:"+msg.To.Email)
	return nil
}

func (f *fakeTransport) Quit(_ context.Context) error {
	f.calls = append(f.calls, "quit")
	return f.quitErr
}

func (f *fakeTransport) SenderAddress() DisplayAddress {
	return DisplayAddress{Email: "me@example.com"}
}

type fakePrompter struct{}

func (fakePrompter) Ask(string) (string, error)       { return "", nil }
func (fakePrompter) AskSecret(string) (string, error) { return "", nil }

func TestDisplayAddress_String(t *testing.T) {
	assert.Equal(t, "Ada Lovelace <ada@example.com>", DisplayAddress{Email: "ada@example.com", Name: "Ada Lovelace"}.String())
	assert.Equal(t, "ada@example.com", DisplayAddress{Email: "ada@example.com"}.String())
}

func TestUse(t *testing.T) {
	ctx := context.Background()

	t.Run("quit after success", func(t *testing.T) {
		tr := &fakeTransport{}
		err := Use(ctx, tr, func(ctx context.Context, t Transport) error {
			return t.SendMessage(ctx, Email{To: DisplayAddress{Email: "a@x"}})
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"login", "send:a@x", "quit"}, tr.calls)
	})

	t.Run("quit after failure", func(t *testing.T) {
		tr := &fakeTransport{}
		sendErr := errors.New("send failed")
		err := Use(ctx, tr, func(ctx context.Context, t Transport) error {
			return sendErr
		})

		assert.ErrorIs(t, err, sendErr)
		assert.Equal(t, []string{"login", "quit"}, tr.calls)
	})

	t.Run("quit after panic", func(t *testing.T) {
		tr := &fakeTransport{}
		assert.Panics(t, func() {
			_ = Use(ctx, tr, func(ctx context.Context, t Transport) error {
				panic("boom")
			})
		})

		assert.Equal(t, []string{"login", "quit"}, tr.calls)
	})

	t.Run("login failure skips fn", func(t *testing.T) {
		loginErr := errors.New("bad password")
		tr := &fakeTransport{loginErr: loginErr}
		called := false
		err := Use(ctx, tr, func(ctx context.Context, t Transport) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, loginErr)
		assert.False(t, called)
		assert.Equal(t, []string{"login", "quit"}, tr.calls)
	})

	t.Run("quit error is joined", func(t *testing.T) {
		sendErr := errors.New("send failed")
		quitErr := errors.New("quit failed")
		tr := &fakeTransport{quitErr: quitErr}
		err := Use(ctx, tr, func(ctx context.Context, t Transport) error {
			return sendErr
		})

		assert.ErrorIs(t, err, sendErr)
		assert.ErrorIs(t, err, quitErr)
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	factory := func(ctx context.Context, params Params) (Transport, error) {
		return &fakeTransport{}, nil
	}

	t.Run("invalid names", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register("", factory))
		assert.Error(t, r.Register("SMTP", factory))
		assert.Error(t, r.Register("smtp", nil))
	})

	t.Run("duplicate", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("fake", factory))
		assert.ErrorIs(t, r.Register("fake", factory), ErrProviderAlreadyRegistered)
		assert.Equal(t, []string{"fake"}, r.Providers())
	})

	t.Run("new", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("fake", factory))

		params := Params{
			Sender:   DisplayAddress{Email: "me@example.com"},
			Prompter: fakePrompter{},
		}

		tr, err := r.New(ctx, "fake", params)
		assert.NoError(t, err)
		assert.NotNil(t, tr)

		_, err = r.New(ctx, "other", params)
		assert.ErrorIs(t, err, ErrProviderNotRegistered)

		_, err = r.New(ctx, "fake", Params{})
		assert.Error(t, err)
	})
}

func TestSelectProvider(t *testing.T) {
	assert.Equal(t, ProviderSMTP, SelectProvider("smtp.example.com"))
	assert.Equal(t, ProviderDesktop, SelectProvider(""))
	assert.Equal(t, ProviderDesktop, SelectProvider("   "))
}
