package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wrnrlr/svg2hass"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("svg2hass", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := svg2hass.ParseConfig(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		// Usage has already been printed.
		return nil
	}
	if err != nil {
		return err
	}
	conv := svg2hass.NewConverter(cfg, log.New(stdout, "", 0))
	return conv.Run(ctx)
}

// fatal reports a conversion error and exits immediately.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
