package besmtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
	"github.com/yusufsyaifudin/mailmerge/pkg/mailclient"
	"github.com/yusufsyaifudin/mailmerge/pkg/tracer"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

type Config struct {
	Sender   backend.DisplayAddress
	Prompter backend.Prompter  `validate:"required"`
	Client   mailclient.Client `validate:"required"`

	// Now stamps the Date header, defaults to time.Now.
	Now func() time.Time `validate:"-"`
}

// Transport sends every message over one authenticated SMTP session.
type Transport struct {
	Config Config
}

var _ backend.Transport = (*Transport)(nil)

// New is the backend.Factory of the "smtp" provider.
func New(_ context.Context, params backend.Params) (backend.Transport, error) {
	if strings.TrimSpace(params.SMTPServer) == "" {
		return nil, fmt.Errorf("smtp server is not configured")
	}

	user := params.SMTPUser
	if user == "" {
		user = params.Sender.Email
	}

	client, err := mailclient.NewSmtp(mailclient.SmtpMailerConfig{
		EmailCredential: mailclient.EmailCredential{
			ServerHost: params.SMTPServer,
			ServerPort: params.SMTPPort,
			Username:   user,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return NewTransport(Config{
		Sender:   params.Sender,
		Prompter: params.Prompter,
		Client:   client,
	})
}

func NewTransport(cfg Config) (*Transport, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Transport{Config: cfg}, nil
}

// Login asks for the password, then connects and authenticates.
func (t *Transport) Login(ctx context.Context) (err error) {
	ctx, span := tracer.StartSpan(ctx, "besmtp.Login")
	defer func() { tracer.EndSpan(span, err) }()

	password, err := t.Config.Prompter.AskSecret(fmt.Sprintf("Password for %s:", t.Config.Sender.Email))
	if err != nil {
		err = fmt.Errorf("read password: %w", err)
		return
	}

	err = t.Config.Client.Open(ctx, password)
	if err != nil {
		return
	}

	logger.Debug(ctx, "smtp session opened", logger.KV("sender", t.Config.Sender.Email))
	return
}

func (t *Transport) SendMessage(ctx context.Context, msg backend.Email) (err error) {
	ctx, span := tracer.StartSpan(ctx, "besmtp.SendMessage")
	defer func() { tracer.EndSpan(span, err) }()

	messageID := mailclient.GenerateMessageID(msg.From.Email)
	err = t.Config.Client.Send(ctx, mailclient.Message{
		From:      mailclient.Address{Name: msg.From.Name, Email: msg.From.Email},
		To:        mailclient.Address{Name: msg.To.Name, Email: msg.To.Email},
		Subject:   msg.Subject,
		Body:      msg.Body,
		MessageID: messageID,
		Date:      t.Config.Now(),
	})
	if err != nil {
		return
	}

	logger.Debug(ctx, "smtp message accepted", logger.KV("to", msg.To.Email), logger.KV("message_id", messageID))
	return
}

func (t *Transport) Quit(_ context.Context) error {
	return t.Config.Client.Close()
}

func (t *Transport) SenderAddress() backend.DisplayAddress {
	return t.Config.Sender
}
