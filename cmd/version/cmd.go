package version

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/yusufsyaifudin/mailmerge/cmd"
)

type Cmd struct {
	*cmd.Meta
}

func NewCmd(meta *cmd.Meta) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &Cmd{Meta: meta}, nil
	}
}

func (c *Cmd) Synopsis() string {
	return "Print the version"
}

func (c *Cmd) Help() string {
	return "Usage: mailmerge version"
}

func (c *Cmd) Run(_ []string) int {
	c.Ui.Output(fmt.Sprintf("%s v%s", c.AppName, c.AppVersion))
	return cmd.ExitSuccess
}
