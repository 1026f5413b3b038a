package mailmerge

import (
	"context"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
)

// Service is the mail merge use cases. It does not know whether it is driven by a CLI or anything else.
type Service interface {
	Check(ctx context.Context, input CheckInput) (out CheckOutput, err error)
	Print(ctx context.Context, input PrintInput) (out PrintOutput, err error)
	SendAll(ctx context.Context, input SendAllInput) (out SendAllOutput, err error)
}

// Console receives the human readable progress lines. mitchellh/cli Ui satisfies it.
type Console interface {
	Output(string)
}

type CheckInput struct {
	Records *recordrepo.Records `validate:"required"`
}

type CheckOutput struct {
	Records   int      `json:"records"`
	Templates []string `json:"templates"`
}

type PrintInput struct {
	Records *recordrepo.Records `validate:"required"`
	Sender  backend.DisplayAddress
	Email   string `validate:"required"`
}

type PrintOutput struct {
	Message string `json:"message"`
}

type SendAllInput struct {
	Records   *recordrepo.Records `validate:"required"`
	Transport backend.Transport   `validate:"required"`

	// LogPath is the send log of Records, created when missing.
	LogPath string `validate:"required"`
}

type SendAllOutput struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}
