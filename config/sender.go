package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
	"github.com/yusufsyaifudin/mailmerge/pkg/validator"
)

const (
	SenderSection   = "sender"
	DefaultSMTPPort = 587
)

var (
	ErrSenderNotConfigured = errors.New("sender is not configured")
)

// Sender is the [sender] section of <stem>-sender.ini.
type Sender struct {
	Name       string `ini:"name" validate:"required"`
	Email      string `ini:"email" validate:"required,email"`
	SMTPServer string `ini:"smtpserver"`
	SMTPUser   string `ini:"smtpuser"`
	SMTPPort   int    `ini:"smtpport" validate:"min=1,max=65535"`

	// Composer is the desktop mail client used when SMTPServer is empty.
	Composer string `ini:"composer"`
}

// SenderPath is <dir>/<stem>-sender.ini for the records file at recordsPath.
func SenderPath(recordsPath string) string {
	return recordrepo.SiblingPath(recordsPath, "-sender.ini")
}

// LoadSender reads the sender config belonging to recordsPath.
// A missing file is ErrSenderNotConfigured.
func LoadSender(recordsPath string) (*Sender, error) {
	path := SenderPath(recordsPath)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: please configure sender in file %s", ErrSenderNotConfigured, path)
		}

		return nil, fmt.Errorf("error stat sender config %s: %w", path, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error read sender config %s: %w", path, err)
	}

	if !file.HasSection(SenderSection) {
		return nil, fmt.Errorf("%w: missing [%s] section in %s", ErrSenderNotConfigured, SenderSection, path)
	}

	sender := &Sender{
		SMTPPort: DefaultSMTPPort,
	}

	err = file.Section(SenderSection).StrictMapTo(sender)
	if err != nil {
		return nil, fmt.Errorf("error parse [%s] in %s: %w", SenderSection, path, err)
	}

	sender.SMTPServer = strings.TrimSpace(sender.SMTPServer)
	if sender.SMTPUser == "" {
		sender.SMTPUser = sender.Email
	}

	err = validator.Validate(sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender config %s: %w", path, err)
	}

	return sender, nil
}
