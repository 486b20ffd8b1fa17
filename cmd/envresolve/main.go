// Command envresolve drives a single package resolution from the command
// line, using the fsrepo and vcsrepo gateways, a boltcache-backed cache, and
// the in-memory fakesolver as the constraint engine.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
)

type command interface {
	Name() string           // "solve"
	Args() string           // "<name>[@<range>] [...]"
	ShortHelp() string      // "Resolve a set of package requests"
	LongHelp() string       // full usage text
	Register(*flag.FlagSet) // command-specific flags
	Run(*Loggers, []string) error
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory", err)
		os.Exit(1)
	}
	c := &Config{
		Args:       os.Args,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		WorkingDir: wd,
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for an envresolve execution.
type Config struct {
	WorkingDir     string
	Args           []string
	Stdout, Stderr io.Writer
}

// Run executes a configuration and returns an exit code.
func (c *Config) Run() (exitCode int) {
	commands := []command{
		&solveCommand{},
		&versionCommand{},
	}

	outLogger := log.New(c.Stdout, "", 0)
	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Println("envresolve resolves package requests against one or more repositories")
		errLogger.Println()
		errLogger.Println("Usage: envresolve <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "envresolve help <command>" for more information about a command.`)
	}

	cmdName, printCmdHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		exitCode = 1
		return
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")

		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCmdHelp {
			fs.Usage()
			exitCode = 1
			return
		}

		if err := fs.Parse(c.Args[2:]); err != nil {
			exitCode = 1
			return
		}

		loggers := &Loggers{Out: outLogger, Err: errLogger, Verbose: *verbose}

		if err := cmd.Run(loggers, fs.Args()); err != nil {
			errLogger.Printf("%v\n", err)
			exitCode = 1
			return
		}
		return
	}

	errLogger.Printf("envresolve: %s: no such command\n", cmdName)
	usage()
	exitCode = 1
	return
}

// displayDefault renders a flag's default value for help text, swapping in
// a readable placeholder for the zero-value string default.
func displayDefault(v string) string {
	if v == "" {
		return "<none>"
	}
	return v
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var flagBlock bytes.Buffer
	flagWriter := tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)

	var flagCount int
	fs.VisitAll(func(f *flag.Flag) {
		flagCount++
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, displayDefault(f.DefValue))
	})
	flagWriter.Flush()

	fs.Usage = func() {
		logger.Printf("Usage: envresolve %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		if flagCount == 0 {
			return
		}
		logger.Println()
		logger.Println("Flags:")
		logger.Println()
		logger.Println(flagBlock.String())
	}
}

// parseArgs determines the name of the envresolve command the caller asked
// for and whether they asked for help rather than to run it.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	if len(args) < 2 {
		return "", false, true
	}

	looksLikeHelp := func(a string) bool {
		lower := strings.ToLower(a)
		return lower == "-h" || strings.Contains(lower, "help")
	}

	if len(args) == 2 {
		return args[1], false, looksLikeHelp(args[1])
	}

	if looksLikeHelp(args[1]) {
		return args[2], true, false
	}
	return args[1], false, false
}
