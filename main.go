package main

import (
	"os"

	"github.com/mitchellh/cli"

	"github.com/yusufsyaifudin/mailmerge/cmd"
	"github.com/yusufsyaifudin/mailmerge/cmd/check"
	"github.com/yusufsyaifudin/mailmerge/cmd/printmail"
	"github.com/yusufsyaifudin/mailmerge/cmd/sendall"
	"github.com/yusufsyaifudin/mailmerge/cmd/version"
)

func main() {
	const appName, appVersion = "mailmerge", "1.0.0"

	meta := &cmd.Meta{
		AppName:    appName,
		AppVersion: appVersion,
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		Stderr: os.Stderr,
	}

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"check":    check.NewCmd(meta),
		"print":    printmail.NewCmd(meta),
		"send-all": sendall.NewCmd(meta),
		"version":  version.NewCmd(meta),
	}

	exitStatus, err := c.Run()
	if err != nil {
		meta.Ui.Error(err.Error())
		exitStatus = cmd.ExitErr
	}

	os.Exit(exitStatus)
}
