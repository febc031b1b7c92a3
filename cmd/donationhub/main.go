package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "donationhub",
		Usage: "Donation intake and review API",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			exportCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
