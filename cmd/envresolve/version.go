package main

import "flag"

const version = "0.1.0"

type versionCommand struct{}

func (versionCommand) Name() string      { return "version" }
func (versionCommand) Args() string      { return "" }
func (versionCommand) ShortHelp() string { return "Print the envresolve version" }
func (versionCommand) LongHelp() string  { return "Print the envresolve version and exit." }
func (versionCommand) Register(*flag.FlagSet) {}

func (versionCommand) Run(loggers *Loggers, args []string) error {
	loggers.Out.Println("envresolve", version)
	return nil
}
