package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the tool and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scopestress", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	fs.IntVar(&cfg.producers, "producers", 8, "Goroutines adding resources")
	fs.IntVar(&cfg.drainers, "drainers", 4, "Goroutines draining the scope concurrently")
	fs.IntVar(&cfg.ops, "ops", 10000, "Resources added by each producer")
	fs.Float64Var(&cfg.reentrant, "reentrant", 0.1, "Fraction of releases that add a child resource")
	fs.Float64Var(&cfg.remove, "remove", 0.05, "Fraction of resources removed before a drain")
	fs.Float64Var(&cfg.rate, "rate", 0, "Adds per second per producer (0 = unlimited)")
	fs.BoolVar(&cfg.verbose, "v", false, "Log scope activity to stderr")
	fs.BoolVar(&cfg.interactive, "i", false, "Interactive mode with TUI")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return 2
	}

	log := zap.NewNop()
	if cfg.verbose && !cfg.interactive {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		log = dev
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := newWorkload(cfg, log)

	var (
		res result
		err error
	)
	if cfg.interactive {
		res, err = runInteractive(ctx, w)
	} else {
		res, err = w.run(ctx)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	f, ok := stdout.(*os.File)
	report(stdout, cfg, res, ok && isTerminal(f))
	if len(res.violations) > 0 {
		return 1
	}
	return 0
}
