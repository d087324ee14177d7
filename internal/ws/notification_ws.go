package ws

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"market-chat-service/internal/auth"
	"market-chat-service/internal/observability"
)

// NotificationWSHandler serves the per-account private notification channel.
type NotificationWSHandler struct {
	hub      Broker
	verifier auth.Verifier
	notifier *Notifier
}

// NewNotificationWSHandler constructs a NotificationWSHandler.
func NewNotificationWSHandler(hub Broker, verifier auth.Verifier, notifier *Notifier) *NotificationWSHandler {
	return &NotificationWSHandler{hub: hub, verifier: verifier, notifier: notifier}
}

// Handle upgrades the connection, subscribes the account's private topic and
// pushes the current unread count. Unauthenticated callers get the same
// silent inert session as on the conversation channel.
func (h *NotificationWSHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("market-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	accountID, err := h.verifier.Resolve(ctx, bearerToken(c))
	if err != nil {
		go drainUntilClose(conn)
		return
	}

	topic := NotificationTopic(accountID)
	info := newConnInfo(c.Request, accountID, span.SpanContext().TraceID().String())
	h.hub.Subscribe(topic, conn, info)

	observability.IncWSActive("notification")
	publishLifecycleEvent("notification", "", "ws_connect", "", info)

	if err := h.notifier.PushUnreadCount(ctx, accountID); err != nil {
		log.Printf("unread push failed account=%s: %v", accountID, err)
	}

	go h.readLoop(conn, topic, info)
}

func (h *NotificationWSHandler) readLoop(conn *websocket.Conn, topic string, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.Unsubscribe(topic, conn)
		observability.DecWSActive("notification")
		publishLifecycleEvent("notification", "", "ws_disconnect", closeReason, info)
		conn.Close()
	}()

	// The notification channel is push-only; inbound frames are discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			return
		}
	}
}
