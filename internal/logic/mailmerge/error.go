package mailmerge

import (
	"errors"

	"github.com/yusufsyaifudin/mailmerge/internal/storage/templaterepo"
)

var (
	ErrMalformedTemplate = errors.New("malformed template")
	ErrDuplicateEmails   = errors.New("email addresses appear in more than one row")
	ErrUnknownTemplates  = errors.New("templates do not exist")
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrMissingField is matched by every *templaterepo.MissingFieldError.
	ErrMissingField = templaterepo.ErrMissingField
)

type MissingFieldError = templaterepo.MissingFieldError
