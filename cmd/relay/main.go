// Command relay switches one WR-LEN power relay wired to a Raspberry Pi
// GPIO pin (BCM numbering).
//
// Usage:
//
//	relay [--config FILE] <pin> <on|off>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"wrcheck/internal/config"
	"wrcheck/internal/logger"
	"wrcheck/internal/relay"

	"github.com/spf13/pflag"
)

const (
	exitHardware = 1
	exitUsage    = 2
)

type bank interface {
	Set(pin int, on bool) error
	Close() error
}

// openBank is replaced in tests; the real one needs /dev/gpiomem.
var openBank = func(pins []int) (bank, error) {
	b, err := relay.Open(pins)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgFile := fs.String("config", "", "config file (default configs/config.yml if present)")

	cfg, err := parseArgs(fs, args, cfgFile)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	pins := cfg.Relay.Pins
	log := logger.New(cfg.Log.Level, stderr)
	defer func() { _ = log.Sync() }()

	pin, on, err := parseCommand(fs.Args(), pins)
	if err != nil {
		fmt.Fprint(stderr, usage(pins))
		log.Debugw("bad_arguments", "args", fs.Args(), "err", err)
		return exitUsage
	}

	b, err := openBank(pins)
	if err != nil {
		log.Errorw("gpio_open_failed", "err", err)
		return exitHardware
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			log.Errorw("gpio_close_failed", "err", cerr)
		}
	}()

	if err := b.Set(pin, on); err != nil {
		log.Errorw("relay_set_failed", "pin", pin, "on", on, "err", err)
		return exitHardware
	}
	fmt.Fprintf(stdout, "pin %d %s\n", pin, levelName(on))
	return 0
}

func parseArgs(fs *pflag.FlagSet, args []string, cfgFile *string) (config.Config, error) {
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	return config.Load(*cfgFile, nil, nil)
}

// parseCommand validates "<pin> <on|off>" against the configured pins.
func parseCommand(args []string, pins []int) (int, bool, error) {
	if len(args) != 2 {
		return 0, false, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	pin, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false, fmt.Errorf("pin %q: %w", args[0], err)
	}
	if !slices.Contains(pins, pin) {
		return 0, false, fmt.Errorf("%w: %d", relay.ErrUnknownPin, pin)
	}
	on, err := relay.ParseLevel(args[1])
	if err != nil {
		return 0, false, err
	}
	return pin, on, nil
}

func usage(pins []int) string {
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = strconv.Itoa(p)
	}
	return "usage: relay [--config FILE] <pin> <on|off>\n\nwhere:\n" +
		"\t-pin is one of " + strings.Join(names, ", ") + "\n" +
		"\t-level is on or off\n"
}

func levelName(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
