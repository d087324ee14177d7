package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"market-chat-service/internal/auth"
	"market-chat-service/internal/models"
	"market-chat-service/internal/observability"
	"market-chat-service/internal/presence"
	"market-chat-service/internal/repositories"
	"market-chat-service/internal/views"
)

const (
	// snapshotLimit is the page size of the connect-time snapshot.
	snapshotLimit = 10
	// hasMoreThreshold is what the total message count is compared against
	// for the has_more flag. It is intentionally lower than snapshotLimit;
	// the mismatch is long-standing observed behavior.
	hasMoreThreshold = 5

	snapshotEventType = "last_10_messages"
)

// RouterOptions are the explicit behavior choices of the channel router.
type RouterOptions struct {
	// NotifyRecipientOnMessage pushes a fresh unread count to the recipient's
	// notification topic on every send. Off by default: historically only the
	// sender's topic received an event.
	NotifyRecipientOnMessage bool
	// PresenceLeaveOnDisconnect removes the account from the online set when
	// the socket closes. Off reproduces the legacy stale-presence behavior.
	PresenceLeaveOnDisconnect bool
}

// ConversationWSHandler serves the per-conversation realtime channel.
type ConversationWSHandler struct {
	hub           Broker
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	presence      presence.Tracker
	verifier      auth.Verifier
	views         *views.Builder
	notifier      *Notifier
	opts          RouterOptions
}

// NewConversationWSHandler constructs a ConversationWSHandler.
func NewConversationWSHandler(
	hub Broker,
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	tracker presence.Tracker,
	verifier auth.Verifier,
	viewBuilder *views.Builder,
	notifier *Notifier,
	opts RouterOptions,
) *ConversationWSHandler {
	return &ConversationWSHandler{
		hub:           hub,
		conversations: conversations,
		messages:      messages,
		presence:      tracker,
		verifier:      verifier,
		views:         viewBuilder,
		notifier:      notifier,
		opts:          opts,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundEvent struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	StatementID string `json:"statement_id"`
}

// Handle upgrades the connection and runs the session.
//
// An unauthenticated caller is accepted at the transport level but the session
// stays inert: no presence join, no subscription, no outbound events, inbound
// frames silently dropped. This is a deliberate no-op rather than an error so
// anonymous probes learn nothing.
func (h *ConversationWSHandler) Handle(c *gin.Context) {
	name := c.Param("conversation_name")

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

	peer, err := repositories.OtherParticipant(name, accountID)
	if err != nil {
		conn.Close()
		return
	}

	if _, err := h.conversations.GetOrCreate(ctx, accountID, peer); err != nil {
		log.Printf("websocket conversation bootstrap failed: %v", err)
		conn.Close()
		return
	}

	if err := h.presence.Join(ctx, name, accountID); err != nil {
		log.Printf("presence join failed conversation=%s account=%s: %v", name, accountID, err)
	}

	info := newConnInfo(c.Request, accountID, span.SpanContext().TraceID().String())
	h.hub.Subscribe(name, conn, info)

	observability.IncWSActive("conversation")
	publishLifecycleEvent("conversation", name, "ws_connect", "", info)

	h.sendSnapshot(ctx, conn, name)

	go h.readLoop(conn, name, accountID, peer, info)
}

// sendSnapshot pushes the most recent messages plus the has_more flag.
// The flag compares the total count against hasMoreThreshold, not against
// the page size; both readings of that comparison are pinned in tests.
func (h *ConversationWSHandler) sendSnapshot(ctx context.Context, conn *websocket.Conn, name string) {
	msgs, err := h.messages.Recent(ctx, name, snapshotLimit)
	if err != nil {
		log.Printf("snapshot load failed conversation=%s: %v", name, err)
		return
	}
	count, err := h.messages.Count(ctx, name)
	if err != nil {
		log.Printf("snapshot count failed conversation=%s: %v", name, err)
		return
	}
	messageViews, err := h.views.MessageViews(ctx, msgs)
	if err != nil {
		log.Printf("snapshot views failed conversation=%s: %v", name, err)
		return
	}

	if err := h.hub.Send(conn, models.SnapshotEvent{
		Type:     snapshotEventType,
		Messages: messageViews,
		HasMore:  count > hasMoreThreshold,
	}); err != nil {
		log.Printf("snapshot write failed conversation=%s: %v", name, err)
	}
}

func (h *ConversationWSHandler) readLoop(conn *websocket.Conn, name, accountID, peer string, info ConnInfo) {
	// The handshake context ends when the HTTP handler returns; session work
	// runs on its own context.
	ctx := context.Background()

	var closeReason string
	defer func() {
		h.hub.Broadcast(name, models.ChatEvent{Type: "user_leave", User: accountID})
		if h.opts.PresenceLeaveOnDisconnect {
			if err := h.presence.Leave(ctx, name, accountID); err != nil {
				log.Printf("presence leave failed conversation=%s account=%s: %v", name, accountID, err)
			}
		}
		h.hub.Unsubscribe(name, conn)
		observability.DecWSActive("conversation")
		publishLifecycleEvent("conversation", name, "ws_disconnect", closeReason, info)
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishLifecycleEvent("conversation", name, "ws_error", closeReason, info)
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.writeSessionError(conn, "malformed event")
			continue
		}

		switch event.Type {
		case "chat_message", "sendMessage":
			h.handleSend(ctx, conn, name, accountID, peer, event)
		default:
			// Unknown event types are dropped without breaking the session.
		}
	}
}

// handleSend appends the message, then fans out. The append must succeed
// before anything is broadcast; a failed append ends the send with no echo.
func (h *ConversationWSHandler) handleSend(ctx context.Context, conn *websocket.Conn, name, from, to string, event inboundEvent) {
	var statementID *string
	if event.StatementID != "" {
		statementID = &event.StatementID
	}

	msg, err := h.messages.Append(ctx, name, from, to, event.Message, statementID)
	if err != nil {
		if errors.Is(err, repositories.ErrEmptyContent) || errors.Is(err, repositories.ErrContentTooLong) {
			h.writeSessionError(conn, err.Error())
			return
		}
		log.Printf("message append failed conversation=%s: %v", name, err)
		return
	}
	observability.IncMessageAppended()

	view, err := h.views.MessageView(ctx, msg)
	if err != nil {
		// Message is durable; a reconnect surfaces it through the snapshot.
		log.Printf("message view failed conversation=%s message=%s: %v", name, msg.ID, err)
		return
	}

	h.hub.Broadcast(name, models.ChatEvent{
		Type:    "chat_message_echo",
		Name:    from,
		Message: &view,
	})
	h.notifier.NotifyNewMessage(from, view)

	if h.opts.NotifyRecipientOnMessage {
		if err := h.notifier.PushUnreadCount(ctx, to); err != nil {
			log.Printf("unread push failed account=%s: %v", to, err)
		}
	}
}

// writeSessionError reports a validation failure to the originating session
// only; it is never broadcast.
func (h *ConversationWSHandler) writeSessionError(conn *websocket.Conn, message string) {
	if err := h.hub.Send(conn, models.ChatEvent{Type: "error", Error: message}); err != nil {
		log.Printf("websocket error write failed: %v", err)
	}
}

func drainUntilClose(conn *websocket.Conn) {
	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
