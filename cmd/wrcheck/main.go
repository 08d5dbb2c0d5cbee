// Command wrcheck checks a WR-Core stat dump for lost sync and
// out-of-range board temperature.
//
// Usage:
//
//	wrcheck [-s] [-t min,max] [-v] [--state NAME] [--format text|json|yaml] [--config FILE] INPUT
//
// INPUT "-" reads the dump from stdin. The exit status is the number of
// failures found, capped at 125.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"wrcheck/internal/config"
	"wrcheck/internal/logger"
	"wrcheck/internal/models"
	"wrcheck/internal/scanner"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	exitOpen  = 1
	exitUsage = 2

	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	stdinInput = "-"
)

// flagKeys binds config keys to the flags that override them.
var flagKeys = map[string]string{
	"scan.expected_state": "state",
	"scan.temp_range":     "temp",
	"log.level":           "log-level",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("wrcheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: wrcheck [flags] INPUT")
		fs.PrintDefaults()
	}

	syncCheck := fs.BoolP("sync", "s", false, "check sync (servo state)")
	fs.StringP("temp", "t", "", `check temperature range: -t 30,50, -t "30 50" or -t 30 50`)
	verbose := fs.BoolP("verbose", "v", false, "enable verbose mode")
	fs.String("state", scanner.DefaultState, "expected servo state")
	format := fs.String("format", formatText, "output format: text, json or yaml")
	cfgFile := fs.String("config", "", "config file (default configs/config.yml if present)")
	fs.String("log-level", logger.InfoLevel, "log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	args = joinSplitRange(fs)
	if len(args) != 1 {
		fs.Usage()
		return exitUsage
	}
	switch *format {
	case formatText, formatJSON, formatYAML:
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return exitUsage
	}

	cfg, err := config.Load(*cfgFile, fs, flagKeys)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log := logger.New(cfg.Log.Level, stderr)
	defer func() { _ = log.Sync() }()

	input := args[0]
	sc, err := load(input, stdin)
	if err != nil {
		fmt.Fprintf(stdout, "The file %s could not be opened\n", input)
		log.Debugw("load_failed", "input", input, "err", err)
		return exitOpen
	}

	opts := scanner.Options{
		Sync:          *syncCheck,
		ExpectedState: cfg.Scan.ExpectedState,
		Temp:          cfg.Scan.TempRange,
		Verbose:       *verbose,
	}
	rep := models.ScanReport{
		ID:        uuid.NewString(),
		Source:    input,
		ScannedAt: time.Now().UTC(),
		Report:    scanner.Run(sc, opts),
	}
	log.Debugw("scan_done", "input", input, "lines", rep.Lines,
		"sync_mismatches", rep.SyncMismatches, "out_of_range", rep.OutOfRange)

	if err := write(stdout, *format, rep); err != nil {
		log.Errorw("write_report_failed", "err", err)
		return exitOpen
	}
	return rep.ExitCode()
}

// joinSplitRange folds "-t 30 50 INPUT" into "-t 30,50 INPUT" and returns
// the remaining positional arguments.
func joinSplitRange(fs *pflag.FlagSet) []string {
	args := fs.Args()
	if !fs.Changed("temp") || len(args) != 2 {
		return args
	}
	temp, _ := fs.GetString("temp")
	if len(strings.FieldsFunc(temp, isRangeSep)) != 1 {
		return args
	}
	if _, err := strconv.ParseFloat(args[0], 64); err != nil {
		return args
	}
	if err := fs.Set("temp", temp+","+args[0]); err != nil {
		return args
	}
	return args[1:]
}

func isRangeSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

func load(input string, stdin io.Reader) (*scanner.Scanner, error) {
	if input == stdinInput {
		return scanner.New(stdin)
	}
	return scanner.Load(input)
}

func write(w io.Writer, format string, rep models.ScanReport) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(rep.Messages) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, strings.Join(rep.Messages, "\n"))
		return err
	}
}
