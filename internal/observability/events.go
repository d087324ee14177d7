package observability

// EventEnvelope wraps service events published to the broker.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSEventPayload describes one websocket lifecycle event.
type WSEventPayload struct {
	Channel      string `json:"channel"`
	Conversation string `json:"conversation,omitempty"`
	Event        string `json:"event"`
	ConnID       string `json:"conn_id"`
	DurationMS   int64  `json:"duration_ms"`
	Reason       string `json:"reason,omitempty"`
	AccountID    string `json:"account_id,omitempty"`
	IP           string `json:"ip,omitempty"`
}

// BuildHeaders assembles AMQP headers for correlation.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
