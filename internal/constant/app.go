package constant

import "time"

const (
	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"

	QUERY_TIMEOUT_DURATION = 10 * time.Second

	// Listing endpoints never return more than this many rows.
	DefaultListLimit = 100
	MaxListLimit     = 100
)
