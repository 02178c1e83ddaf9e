package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/guilherme-santos/linearcalendar/file"
)

type command interface {
	Run(ctx context.Context, cfg *file.Config, args []string) error
}

var commands = []struct {
	name, description string
	cmd               command
}{
	{ServeCommand.Name, ServeCommand.Description, ServeCommand},
	{ConfigureCommand.Name, ConfigureCommand.Description, ConfigureCommand},
	{AgendaCommand.Name, AgendaCommand.Description, AgendaCommand},
}

func main() {
	var (
		cfgFile string
		verbose bool
	)
	flag.StringVar(&cfgFile, "config", "linearcal.yaml", "configuration file, created on first run")
	flag.BoolVar(&verbose, "verbose", false, "log every remote call")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	cfg, err := file.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to load config:", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.cmd.Run(ctx, cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
	flag.Usage()
	os.Exit(2)
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage of %s [options] <command> [command options]:\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage of %s %s:\n", os.Args[0], fs.Name())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
	return fs
}
