package sendall

import (
	"strings"

	"github.com/mitchellh/cli"

	"github.com/yusufsyaifudin/mailmerge/cmd"
	"github.com/yusufsyaifudin/mailmerge/config"
	"github.com/yusufsyaifudin/mailmerge/internal/logic/mailmerge"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
	"github.com/yusufsyaifudin/mailmerge/internal/storage/sendlog"
	"github.com/yusufsyaifudin/mailmerge/pkg/logger"
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
	return "Send the email of every row not sent yet"
}

func (c *Cmd) Help() string {
	return strings.TrimSpace(`
Usage: mailmerge send-all [-env=.env] <records.csv>

  Sends one email per row through SMTP when <stem>-sender.ini names an
  smtpserver, or through the desktop mail client otherwise. Each attempt is
  appended to <stem>-sent.log. Rows already sent are skipped, so running the
  command again after a failure resumes where it stopped.
`)
}

func (c *Cmd) Run(args []string) int {
	flags := c.FlagSet("send-all")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		c.Ui.Error(c.Help())
		return cmd.ExitErr
	}

	recordsPath := flags.Arg(0)
	ctx, app, err := c.Bootstrap("send-all", recordsPath)
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

	transport, err := app.Transport(ctx, sender, c.Ui)
	if err != nil {
		return c.Fail(err)
	}

	svc, err := app.MailMerge(recordsPath, c.Ui)
	if err != nil {
		return c.Fail(err)
	}

	out, err := svc.SendAll(ctx, mailmerge.SendAllInput{
		Records:   records,
		Transport: transport,
		LogPath:   sendlog.Path(recordsPath),
	})
	if err != nil {
		return c.Fail(err)
	}

	logger.Info(ctx, "done", logger.KV("sent", out.Sent), logger.KV("skipped", out.Skipped))
	return cmd.ExitSuccess
}
