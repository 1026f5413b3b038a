package check

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
	"go.uber.org/multierr"

	"github.com/yusufsyaifudin/mailmerge/cmd"
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
	return "Check a records file and the templates it uses"
}

func (c *Cmd) Help() string {
	return strings.TrimSpace(`
Usage: mailmerge check [-env=.env] <records.csv>

  Reports every problem found at once: missing required columns, email
  addresses used by more than one row, templates that do not exist, and
  templates without a "Subject: " first line, with invalid placeholders or
  with placeholders that are not columns of the records file.
`)
}

func (c *Cmd) Run(args []string) int {
	flags := c.FlagSet("check")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		c.Ui.Error(c.Help())
		return cmd.ExitErr
	}

	recordsPath := flags.Arg(0)
	ctx, app, err := c.Bootstrap("check", recordsPath)
	if err != nil {
		return c.Fail(err)
	}

	defer c.CloseContainer(ctx, app)

	records, err := recordrepo.Load(recordsPath)
	if err != nil {
		return c.Fail(err)
	}

	svc, err := app.MailMerge(recordsPath, c.Ui)
	if err != nil {
		return c.Fail(err)
	}

	out, err := svc.Check(ctx, mailmerge.CheckInput{Records: records})
	if err != nil {
		for _, e := range multierr.Errors(err) {
			c.Ui.Error(fmt.Sprintf("Error: %s", e))
		}

		return cmd.ExitErr
	}

	c.Ui.Info(fmt.Sprintf("%s: %d records using %d templates look fine", recordsPath, out.Records, len(out.Templates)))
	return cmd.ExitSuccess
}
