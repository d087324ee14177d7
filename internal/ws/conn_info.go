package ws

import "time"

// ConnInfo carries per-connection identity and correlation data.
type ConnInfo struct {
	ConnID      string
	AccountID   string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
