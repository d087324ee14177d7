package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"market-chat-service/internal/observability"
)

func newConnInfo(r *http.Request, accountID, traceID string) ConnInfo {
	return ConnInfo{
		ConnID:      uuid.NewString(),
		AccountID:   accountID,
		IP:          observability.IPFromRequest(r),
		RequestID:   observability.RequestIDFromRequest(r),
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

func publishLifecycleEvent(channel, conversation, event, reason string, info ConnInfo) {
	observability.IncWSEvent(channel, event)
	_ = observability.PublishEvent(context.Background(), "ws_events."+channel+"s", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: observability.WSEventPayload{
			Channel:      channel,
			Conversation: conversation,
			Event:        event,
			ConnID:       info.ConnID,
			DurationMS:   durationSince(info, event),
			Reason:       reason,
			AccountID:    info.AccountID,
			IP:           info.IP,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func durationSince(info ConnInfo, event string) int64 {
	if event == "ws_connect" {
		return 0
	}
	return time.Since(info.ConnectedAt).Milliseconds()
}
