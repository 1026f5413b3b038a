package mailmerge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/templaterepo"
)

const subjectPrefix = "Subject: "

// Composer fills templates with record fields.
type Composer struct {
	Templates templaterepo.Repo
}

func NewComposer(templates templaterepo.Repo) *Composer {
	return &Composer{Templates: templates}
}

// Compose builds the email for record from the named template.
// The first line of the filled text is the subject, the rest is the body.
func (c *Composer) Compose(ctx context.Context, templateName string, record recordrepo.Record, from backend.DisplayAddress) (backend.Email, error) {
	toEmail, err := record.Get(recordrepo.FieldEmail)
	if err != nil {
		return backend.Email{}, err
	}

	to := backend.DisplayAddress{
		Email: toEmail,
		Name:  record.FullName(),
	}

	tmpl, err := c.Templates.Get(ctx, templateName)
	if err != nil {
		return backend.Email{}, err
	}

	text, err := tmpl.Substitute(record.Fields)
	if errors.Is(err, templaterepo.ErrInvalidPlaceholder) {
		return backend.Email{}, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}

	if err != nil {
		return backend.Email{}, err
	}

	if !strings.HasPrefix(text, subjectPrefix) {
		return backend.Email{}, fmt.Errorf("%w: %s does not start with %q", ErrMalformedTemplate, templateName, subjectPrefix)
	}

	subject, body, _ := strings.Cut(strings.TrimPrefix(text, subjectPrefix), "\n")

	return backend.Email{
		Subject: strings.TrimSuffix(subject, "\r"),
		Body:    strings.TrimLeftFunc(body, unicode.IsSpace),
		From:    from,
		To:      to,
	}, nil
}
