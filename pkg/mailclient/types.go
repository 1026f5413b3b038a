package mailclient

import (
	"time"
)

type EmailCredential struct {
	ServerHost   string `json:"server_host" validate:"required,hostname_rfc1123|ip"`
	ServerPort   int    `json:"server_port" validate:"required,min=1,max=65535"`
	AuthIdentity string `json:"auth_identity" validate:"-"` //  Authorization identity may be left blank to indicate that it is the same as the username.
	Username     string `json:"username" validate:"required"`
}

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// Message is a single plain text email ready to be encoded.
type Message struct {
	From    Address
	To      Address
	Subject string
	Body    string

	// MessageID without angle brackets, omitted from the header when empty.
	MessageID string

	// Date is omitted from the header when zero.
	Date time.Time
}
