// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/jcharaoui/puppet/internal/commands/bootstrap"
	"github.com/jcharaoui/puppet/internal/commands/status"
	"github.com/jcharaoui/puppet/internal/common"
	"github.com/jcharaoui/puppet/internal/version"
	versioncmd "github.com/jcharaoui/puppet/subcommand/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Both UI streams are wrapped so that writes made through ui are
	// serialized. Loggers created by the commands write to os.Stderr
	// directly, not through these wrappers.
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      common.SynchronizeWriter(os.Stdout),
		ErrorWriter: common.SynchronizeWriter(os.Stderr),
	}

	c := cli.NewCLI("puppet", version.GetHumanVersion())
	c.Args = args
	c.Commands = initializeCommands(ui)

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

func initializeCommands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"bootstrap": func() (cli.Command, error) {
			return bootstrap.New(ui), nil
		},
		"status": func() (cli.Command, error) {
			return status.New(ui), nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{UI: ui, Version: version.GetHumanVersion()}, nil
		},
	}
}
