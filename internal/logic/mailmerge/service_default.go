package mailmerge

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/sendlog"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/templaterepo"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
	"github.com/yusufsyaifudin/mailmerge/pkg/mailclient"
	"github.com/yusufsyaifudin/mailmerge/pkg/tracer"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

type DefaultServiceConfig struct {
	Templates templaterepo.Repo `validate:"required"`
	Console   Console           `validate:"required"`
}

type DefaultService struct {
	conf     DefaultServiceConfig
	composer *Composer
}

var _ Service = (*DefaultService)(nil)

func New(conf DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(conf); err != nil {
		return nil, err
	}

	return &DefaultService{
		conf:     conf,
		composer: NewComposer(conf.Templates),
	}, nil
}

// Check reports every problem of the records file and its templates at once.
func (d *DefaultService) Check(ctx context.Context, input CheckInput) (out CheckOutput, err error) {
	ctx, span := tracer.StartSpan(ctx, "mailmerge.Check")
	defer func() { tracer.EndSpan(span, err) }()

	if err = validator.Validate(input); err != nil {
		return
	}

	emailCount := map[string]int{}
	duplicates := make([]string, 0)
	templates := make([]string, 0)
	seenTemplate := map[string]struct{}{}
	for _, rec := range input.Records.Items {
		emailCount[rec.Email()]++
		if emailCount[rec.Email()] == 2 {
			duplicates = append(duplicates, rec.Email())
		}

		if _, seen := seenTemplate[rec.Template()]; !seen {
			seenTemplate[rec.Template()] = struct{}{}
			templates = append(templates, rec.Template())
		}
	}

	if len(duplicates) > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrDuplicateEmails, strings.Join(duplicates, ", ")))
	}

	unknown := make([]string, 0)
	found := make([]templaterepo.Template, 0, len(templates))
	for _, name := range templates {
		if !d.conf.Templates.Exists(ctx, name) {
			unknown = append(unknown, name)
			continue
		}

		tmpl, _err := d.conf.Templates.Get(ctx, name)
		if _err != nil {
			err = multierr.Append(err, _err)
			continue
		}

		found = append(found, tmpl)
	}

	if len(unknown) > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: used in %s: %s", ErrUnknownTemplates, input.Records.Path, strings.Join(unknown, ", ")))
	}

	for _, tmpl := range found {
		err = multierr.Append(err, checkTemplate(tmpl, input.Records))
	}

	if err != nil {
		return
	}

	out = CheckOutput{
		Records:   len(input.Records.Items),
		Templates: templates,
	}
	return
}

func checkTemplate(tmpl templaterepo.Template, records *recordrepo.Records) (err error) {
	if !strings.HasPrefix(tmpl.Text, subjectPrefix) {
		err = multierr.Append(err, fmt.Errorf("%w: %s does not start with %q", ErrMalformedTemplate, tmpl.Name, subjectPrefix))
	}

	if _err := tmpl.Validate(); _err != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrMalformedTemplate, _err))
	}

	for _, field := range tmpl.Identifiers {
		if !records.HasColumn(field) {
			err = multierr.Append(err, &MissingFieldError{Template: tmpl.Name, Field: field})
		}
	}

	return
}

// Print renders the message the first record addressed to input.Email would receive.
func (d *DefaultService) Print(ctx context.Context, input PrintInput) (out PrintOutput, err error) {
	ctx, span := tracer.StartSpan(ctx, "mailmerge.Print")
	defer func() { tracer.EndSpan(span, err) }()

	if err = validator.Validate(input); err != nil {
		return
	}

	rec, found := input.Records.Find(input.Email)
	if !found {
		err = fmt.Errorf("%w: %s not found in %s", ErrRecipientNotFound, input.Email, input.Records.Path)
		return
	}

	email, err := d.composer.Compose(ctx, rec.Template(), rec, input.Sender)
	if err != nil {
		return
	}

	var buf strings.Builder
	err = mailclient.Encode(&buf, mailclient.Message{
		From:    mailclient.Address{Name: email.From.Name, Email: email.From.Email},
		To:      mailclient.Address{Name: email.To.Name, Email: email.To.Email},
		Subject: email.Subject,
		Body:    email.Body,
	})
	if err != nil {
		return
	}

	out = PrintOutput{
		Message: strings.ReplaceAll(buf.String(), "\r\n", "\n"),
	}
	return
}

// SendAll delivers every record not yet sent according to the send log and
// stops at the first failure, which is logged before it is returned.
func (d *DefaultService) SendAll(ctx context.Context, input SendAllInput) (out SendAllOutput, err error) {
	ctx, span := tracer.StartSpan(ctx, "mailmerge.SendAll")
	defer func() {
		span.SetAttributes(attribute.Int("sent", out.Sent), attribute.Int("skipped", out.Skipped))
		tracer.EndSpan(span, err)
	}()

	if err = validator.Validate(input); err != nil {
		return
	}

	state, err := sendlog.Load(input.LogPath)
	if err != nil {
		return
	}

	logWriter, err := sendlog.Open(input.LogPath)
	if err != nil {
		return
	}

	defer func() {
		if _err := logWriter.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close send log: %w", _err))
		}
	}()

	err = backend.Use(ctx, input.Transport, func(ctx context.Context, t backend.Transport) error {
		for _, rec := range input.Records.Items {
			if state.IsAlreadySent(rec.Email()) {
				out.Skipped++
				logger.Debug(ctx, "skip recipient, already sent", logger.KV("email", rec.Email()))
				continue
			}

			if _err := d.sendOne(ctx, t, logWriter, rec); _err != nil {
				return _err
			}

			out.Sent++
		}

		return nil
	})

	logger.Info(ctx, "send all finished",
		logger.KV("sent", out.Sent),
		logger.KV("skipped", out.Skipped),
		logger.KV("error", err),
	)
	return
}

func (d *DefaultService) sendOne(ctx context.Context, t backend.Transport, logWriter *sendlog.Writer, rec recordrepo.Record) (err error) {
	ctx, span := tracer.StartSpan(ctx, "mailmerge.sendOne", trace.WithAttributes(
		attribute.String("email", rec.Email()),
		attribute.String("template", rec.Template()),
		attribute.Int("row", rec.Row),
	))
	defer func() { tracer.EndSpan(span, err) }()

	email, err := d.composer.Compose(ctx, rec.Template(), rec, t.SenderAddress())
	if err == nil {
		err = t.SendMessage(ctx, email)
	}

	if err != nil {
		logger.Error(ctx, "send failed", logger.KV("email", rec.Email()), logger.KV("row", rec.Row), logger.KV("error", err))

		if _err := logWriter.Append(sendlog.Failure(rec.Email(), err.Error())); _err != nil {
			err = multierr.Append(err, fmt.Errorf("record failure of %s: %w", rec.Email(), _err))
		}

		return fmt.Errorf("send to %s: %w", rec.Email(), err)
	}

	if err = logWriter.Append(sendlog.Sent(rec.Email())); err != nil {
		return fmt.Errorf("record delivery to %s: %w", rec.Email(), err)
	}

	logger.Info(ctx, "sent", logger.KV("email", rec.Email()), logger.KV("row", rec.Row))
	d.conf.Console.Output(fmt.Sprintf("Sent to %s", rec.Email()))
	return nil
}
