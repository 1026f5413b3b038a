package mailmerge_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/require"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/internal/logic/mailmerge"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/templaterepo"
)

var (
	testSender = backend.DisplayAddress{Email: "host@example.com", Name: "Party Host"}

	errConnectionReset = errors.New("connection reset by peer")
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"welcome": {Data: []byte("Subject: Welcome ${firstname}\n\nHello $firstname,\nsee you at the party.\n")},
		"plain":   {Data: []byte("Subject: Hi\r\nThanks for joining, it costs $$5.\n")},
		"broken":  {Data: []byte("Dear ${firstname},\nno subject here\n")},
		"company": {Data: []byte("Subject: Offer for ${company}\nHi ${firstname}\n")},
		"dollar":  {Data: []byte("Subject: Sale\nNow $ 5 only\n")},
	}
}

func newService(t *testing.T, fsys fstest.MapFS) (*mailmerge.DefaultService, *cli.MockUi) {
	t.Helper()

	ui := cli.NewMockUi()
	svc, err := mailmerge.New(mailmerge.DefaultServiceConfig{
		Templates: templaterepo.NewFromFS(fsys),
		Console:   ui,
	})
	require.NoError(t, err)

	return svc, ui
}

func parseRecords(t *testing.T, csv string) *recordrepo.Records {
	t.Helper()

	records, err := recordrepo.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	records.Path = "party.csv"
	return records
}

type fakeTransport struct {
	loginErr error
	failOn   map[string]error

	logins int
	quits  int
	sent   []backend.Email
}

var _ backend.Transport = (*fakeTransport)(nil)

func (f *fakeTransport) Login(_ context.Context) error {
	f.logins++
	return f.loginErr
}

func (f *fakeTransport) SendMessage(_ context.Context, msg backend.Email) error {
	if err, fail := f.failOn[msg.To.Email]; fail {
		return err
	}

	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Quit(_ context.Context) error {
	f.quits++
	return nil
}

func (f *fakeTransport) SenderAddress() backend.DisplayAddress {
	return testSender
}

func (f *fakeTransport) recipients() []string {
	out := make([]string, 0, len(f.sent))
	for _, msg := range f.sent {
		out = append(out, msg.To.Email)
	}

	return out
}
