package mailclient

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/mail"
	"github.com/satori/uuid"
)

// maxLineLength is the RFC 5322 limit for a line without its CRLF.
const maxLineLength = 998

// Encode writes msg as a single part text/plain RFC 5322 message.
func Encode(w io.Writer, msg Message) error {
	var h mail.Header
	if !msg.Date.IsZero() {
		h.SetDate(msg.Date)
	}

	h.SetAddressList("From", []*mail.Address{{Name: msg.From.Name, Address: msg.From.Email}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.To.Name, Address: msg.To.Email}})
	h.SetSubject(msg.Subject)
	if msg.MessageID != "" {
		h.SetMessageID(msg.MessageID)
	}

	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", transferEncoding(msg.Body))

	wc, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("cannot create message writer: %w", err)
	}

	if _, err = io.WriteString(wc, msg.Body); err != nil {
		_ = wc.Close()
		return fmt.Errorf("cannot write message body: %w", err)
	}

	if err = wc.Close(); err != nil {
		return fmt.Errorf("cannot finish message: %w", err)
	}

	return nil
}

// GenerateMessageID returns a globally unique id (without angle brackets) in
// the domain of senderEmail. The host name is used when the address has no domain.
func GenerateMessageID(senderEmail string) string {
	domain := ""
	if at := strings.LastIndex(senderEmail, "@"); at >= 0 {
		domain = strings.TrimSpace(senderEmail[at+1:])
	}

	if domain == "" {
		domain, _ = os.Hostname()
	}

	if domain == "" {
		domain = "localhost"
	}

	return fmt.Sprintf("%s@%s", strings.ReplaceAll(uuid.NewV4().String(), "-", ""), domain)
}

func transferEncoding(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if len(line) > maxLineLength {
			return "quoted-printable"
		}
	}

	for i := 0; i < len(body); i++ {
		if body[i] >= utf8.RuneSelf {
			return "quoted-printable"
		}
	}

	return "7bit"
}
