package scanner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// maxExitCode keeps large failure counts from wrapping to 0 in the shell.
const maxExitCode = 125

// Console messages.
const (
	msgSyncOK        = "The WR synchronization is OK"
	msgSyncLost      = "WR sync is lost"
	msgTempOK        = "The temperature was in range"
	msgTempOut       = "Temperature was out of range:"
	msgNoReadings    = "No temperature readings found"
	msgRangeArgCount = "Error: Temp checking needs 2 parameters: min, max"
)

// Options selects which checks Run performs.
type Options struct {
	Sync          bool
	ExpectedState string
	// Temp is the raw range argument, e.g. "30,50". Empty disables the check.
	Temp    string
	Verbose bool
}

// Report is the outcome of one Run.
type Report struct {
	Lines int `json:"lines" yaml:"lines"`

	SyncChecked    bool           `json:"sync_checked" yaml:"sync_checked"`
	ExpectedState  string         `json:"expected_state,omitempty" yaml:"expected_state,omitempty"`
	SyncMismatches int            `json:"sync_mismatches" yaml:"sync_mismatches"`
	Mismatches     []SyncMismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`

	TempChecked bool     `json:"temp_checked" yaml:"temp_checked"`
	TempMin     float64  `json:"temp_min,omitempty" yaml:"temp_min,omitempty"`
	TempMax     float64  `json:"temp_max,omitempty" yaml:"temp_max,omitempty"`
	OutOfRange  int      `json:"out_of_range" yaml:"out_of_range"`
	Readings    int      `json:"readings" yaml:"readings"`
	MeanTempC   *float64 `json:"mean_temp_c,omitempty" yaml:"mean_temp_c,omitempty"`

	Failures int      `json:"failures" yaml:"failures"`
	Messages []string `json:"messages" yaml:"messages"`
	// ArgError is set when the temperature range could not be used.
	ArgError string `json:"arg_error,omitempty" yaml:"arg_error,omitempty"`
}

// ExitCode is the process status for the report: 0 when nominal.
func (r Report) ExitCode() int {
	if r.Failures > maxExitCode {
		return maxExitCode
	}
	return r.Failures
}

// ParseRange reads "min,max", "min max" or "min, max". Values after the
// second are ignored.
func ParseRange(s string) (float64, float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) < 2 {
		return 0, 0, ErrMalformedRange
	}

	var bounds [2]float64
	for i := range bounds {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w %q", ErrInvalidBound, fields[i])
		}
		bounds[i] = v
	}
	return bounds[0], bounds[1], nil
}

// Run performs the checks selected in opts. A bad temperature range skips
// that check and is reported in Messages and ArgError; it never counts as
// a failure.
func Run(s *Scanner, opts Options) Report {
	rep := Report{Lines: s.Len()}

	if opts.Sync {
		runSync(s, opts, &rep)
	}
	if opts.Temp != "" {
		runTemp(s, opts, &rep)
	}

	rep.Failures = rep.SyncMismatches + rep.OutOfRange
	return rep
}

func runSync(s *Scanner, opts Options, rep *Report) {
	expected := opts.ExpectedState
	if expected == "" {
		expected = DefaultState
	}
	mismatches := s.SyncMismatches(expected)

	rep.SyncChecked = true
	rep.ExpectedState = expected
	rep.SyncMismatches = len(mismatches)
	if len(mismatches) == 0 {
		rep.Messages = append(rep.Messages, msgSyncOK)
		return
	}

	rep.Messages = append(rep.Messages, msgSyncLost)
	if opts.Verbose {
		rep.Mismatches = mismatches
		for _, m := range mismatches {
			rep.Messages = append(rep.Messages,
				fmt.Sprintf("line %d: ss='%s' (expected %s)", m.Line, m.State, expected))
		}
	}
}

func runTemp(s *Scanner, opts Options, rep *Report) {
	min, max, err := ParseRange(opts.Temp)
	if err != nil {
		rep.ArgError = err.Error()
		if errors.Is(err, ErrMalformedRange) {
			rep.Messages = append(rep.Messages, msgRangeArgCount)
		} else {
			rep.Messages = append(rep.Messages, "Error: "+err.Error())
		}
		return
	}

	res := s.TempStats(min, max)
	rep.TempChecked = true
	rep.TempMin, rep.TempMax = min, max
	rep.OutOfRange = res.OutOfRange
	rep.Readings = res.Readings
	if res.Readings > 0 {
		mean := res.Mean
		rep.MeanTempC = &mean
	}

	switch {
	case opts.Verbose && res.Readings == 0:
		rep.Messages = append(rep.Messages, msgNoReadings)
	case res.OutOfRange == 0 && !opts.Verbose:
		rep.Messages = append(rep.Messages, msgTempOK)
	case res.OutOfRange == 0:
		rep.Messages = append(rep.Messages, fmt.Sprintf("%s : %f", msgTempOK, res.Mean))
	default:
		rep.Messages = append(rep.Messages, msgTempOut)
		if opts.Verbose {
			rep.Messages = append(rep.Messages,
				fmt.Sprintf("Mean temperature : %.2f ºC (range=[%.2f,%.2f])", res.Mean, min, max))
		}
	}
}
