package service

import "time"

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "SCAN", "SYNC_LOST", "TEMP_OUT_OF_RANGE", "RELAY_ON", "RELAY_OFF", "ERROR"
}
