package printmail

import (
	"strings"

	"github.com/mitchellh/cli"

	"github.com/yusufsyaifudin/mailmerge/backend"
	"github.com/yusufsyaifudin/mailmerge/cmd"
	"github.com/yusufsyaifudin/mailmerge/config"
	"github.com/yusufsyaifudin/mailmerge/internal/logic/mailmerge"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
)

type Cmd struct {
	*cmd.Meta
}

func NewCmd(meta *cmd.Meta) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &Cmd{Meta: meta}, nil
	}
}

var _ cli.Command = (*Cmd)(nil)

func (c *Cmd) Synopsis() string {
	return "Print the email a recipient would receive"
}

func (c *Cmd) Help() string {
	return strings.TrimSpace(`
Usage: mailmerge print [-env=.env] <records.csv> <email>

  Composes the message for the first row addressed to <email> and prints it
  with its headers. Nothing is sent and the send log is not touched.
`)
}

func (c *Cmd) Run(args []string) int {
	flags := c.FlagSet("print")
	if err := flags.Parse(args); err != nil || flags.NArg() != 2 {
		c.Ui.Error(c.Help())
		return cmd.ExitErr
	}

	recordsPath, email := flags.Arg(0), flags.Arg(1)
	ctx, app, err := c.Bootstrap("print", recordsPath)
	if err != nil {
		return c.Fail(err)
	}

	defer c.CloseContainer(ctx, app)

	sender, err := config.LoadSender(recordsPath)
	if err != nil {
		return c.Fail(err)
	}

	records, err := recordrepo.Load(recordsPath)
	if err != nil {
		return c.Fail(err)
	}

	svc, err := app.MailMerge(recordsPath, c.Ui)
	if err != nil {
		return c.Fail(err)
	}

	out, err := svc.Print(ctx, mailmerge.PrintInput{
		Records: records,
		Sender:  backend.DisplayAddress{Email: sender.Email, Name: sender.Name},
		Email:   email,
	})
	if err != nil {
		return c.Fail(err)
	}

	c.Ui.Output(out.Message)
	return cmd.ExitSuccess
}
