package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultState is the servo state of a node that tracks its master.
const DefaultState = "TRACK_PHASE"

const (
	syncPattern = `ss:'(\w+)'`
	tempPattern = `\d{1,3}\.\d{4}`
)

var (
	syncRegex = regexp.MustCompile(syncPattern)
	tempRegex = regexp.MustCompile(tempPattern)
)

// Errors returned while loading input and evaluating checks.
var (
	ErrOpen           = errors.New("open input")
	ErrRead           = errors.New("read input")
	ErrMalformedRange = errors.New("temperature range needs 2 values: min, max")
	ErrInvalidBound   = errors.New("invalid temperature bound")
	ErrNoReadings     = errors.New("no temperature readings")
)

// SyncMismatch describes one stat line whose servo state was not the expected one.
type SyncMismatch struct {
	Line  int    `json:"line" yaml:"line"` // 1-based
	State string `json:"state" yaml:"state"`
	Text  string `json:"text" yaml:"text"`
}

// TempResult aggregates the temperature check.
type TempResult struct {
	OutOfRange int
	Readings   int
	Mean       float64 // 0 when Readings == 0
}

// Scanner holds the lines of one WR-Core stat dump.
// Checks never mutate it, so they can be repeated.
type Scanner struct {
	lines []string
}

// Load reads the whole file at path. The file is closed before Load returns.
func Load(path string) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpen, path, err)
	}
	defer f.Close()

	return New(f)
}

// New reads every line from r. Lines have no length limit: a dump captured
// without a terminal may be one huge line. A trailing "\r" is dropped.
func New(r io.Reader) (*Scanner, error) {
	br := bufio.NewReader(r)

	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
	}
	return &Scanner{lines: lines}, nil
}

// FromLines wraps lines that were already split.
func FromLines(lines []string) *Scanner {
	return &Scanner{lines: append([]string(nil), lines...)}
}

// Len returns the number of lines scanned.
func (s *Scanner) Len() int { return len(s.lines) }

// CheckSync returns how many lines carry a servo state different from expected.
// Lines without an ss:'...' token are not judged.
func (s *Scanner) CheckSync(expected string) int {
	return len(s.SyncMismatches(expected))
}

// SyncMismatches lists the lines counted by CheckSync.
func (s *Scanner) SyncMismatches(expected string) []SyncMismatch {
	if expected == "" {
		expected = DefaultState
	}

	var out []SyncMismatch
	for i, line := range s.lines {
		state, ok := syncToken(line)
		if !ok || state == expected {
			continue
		}
		out = append(out, SyncMismatch{Line: i + 1, State: state, Text: line})
	}
	return out
}

// CheckTemp returns how many readings fall outside the open interval (min, max).
func (s *Scanner) CheckTemp(min, max float64) int {
	return s.TempStats(min, max).OutOfRange
}

// CheckTempVerbose returns the out-of-range count together with the mean of
// all readings. With no readings it returns ErrNoReadings and a zero mean.
func (s *Scanner) CheckTempVerbose(min, max float64) (int, float64, error) {
	res := s.TempStats(min, max)
	if res.Readings == 0 {
		return res.OutOfRange, 0, ErrNoReadings
	}
	return res.OutOfRange, res.Mean, nil
}

// TempStats runs the temperature check. Only lines holding a reading of
// their own are judged; nothing carries over from previous lines.
func (s *Scanner) TempStats(min, max float64) TempResult {
	var (
		res TempResult
		sum float64
	)
	for _, line := range s.lines {
		t, ok := temperature(line)
		if !ok {
			continue
		}
		sum += t
		res.Readings++
		if !(min < t && t < max) {
			res.OutOfRange++
		}
	}
	if res.Readings > 0 {
		res.Mean = sum / float64(res.Readings)
	}
	return res
}

func syncToken(line string) (string, bool) {
	m := syncRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func temperature(line string) (float64, bool) {
	m := tempRegex.FindString(line)
	if m == "" {
		return 0, false
	}
	// The pattern only admits digits and one dot, so this cannot fail.
	t, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return t, true
}
