package models

import (
	"time"

	"wrcheck/internal/scanner"
)

// ScanReport is the result of checking one WR-Core stat dump.
type ScanReport struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"` // file path or upload name
	ScannedAt time.Time `json:"scanned_at" yaml:"scanned_at"`

	scanner.Report `yaml:",inline"`
}
