package models

import "time"

// RelayState is the last commanded level of one WR-LEN power relay.
type RelayState struct {
	Pin       int       `json:"pin"`
	On        bool      `json:"on"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// BenchState is what the monitoring endpoints stream.
type BenchState struct {
	Relays     []RelayState `json:"relays"`
	LastReport *ScanReport  `json:"last_report,omitempty"`
}
