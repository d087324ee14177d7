package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-chat-service/internal/models"
	"market-chat-service/internal/repositories"
	"market-chat-service/internal/telemetry"
	"market-chat-service/internal/views"
	"market-chat-service/internal/ws"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ConversationHandler serves the REST surface of the conversation engine.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	accounts      repositories.AccountRepository
	statements    repositories.StatementRepository
	views         *views.Builder
	notifier      *ws.Notifier
	audit         *telemetry.AuditEmitter
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	accounts repositories.AccountRepository,
	statements repositories.StatementRepository,
	viewBuilder *views.Builder,
	notifier *ws.Notifier,
	audit *telemetry.AuditEmitter,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		accounts:      accounts,
		statements:    statements,
		views:         viewBuilder,
		notifier:      notifier,
		audit:         audit,
	}
}

// ListConversations returns the caller's conversations with peer summaries
// and the latest message of each.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	accountID := c.GetString("accountID")

	convs, err := h.conversations.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := models.ConversationSummary{Name: conv.Name}

		if peerID, err := repositories.OtherParticipant(conv.Name, accountID); err == nil {
			if peer, err := h.accounts.Get(c.Request.Context(), peerID); err == nil {
				peerSummary := peer.Summary()
				summary.OtherUser = &peerSummary
			}
		}

		last, err := h.messages.LastMessage(c.Request.Context(), conv.Name)
		if err == nil {
			if view, err := h.views.MessageView(c.Request.Context(), last); err == nil {
				summary.LastMessage = &view
			}
		} else if !errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
			return
		}

		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// StartConversation derives (and lazily creates) the conversation with
// another account, optionally appending an opening statement-linked message.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		AccountID   string `json:"account_id" binding:"required"`
		StatementID string `json:"statement_id"`
		Message     string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountID := c.GetString("accountID")

	exists, err := h.accounts.Exists(c.Request.Context(), req.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify account"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	var statementID *string
	if req.StatementID != "" {
		if _, err := h.statements.Get(c.Request.Context(), req.StatementID); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, repositories.ErrStatementNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": "statement not found"})
			return
		}
		statementID = &req.StatementID
	}

	conv, err := h.conversations.GetOrCreate(c.Request.Context(), accountID, req.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participants"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	if req.Message != "" {
		msg, err := h.messages.Append(c.Request.Context(), conv.Name, accountID, req.AccountID, req.Message, statementID)
		if err != nil {
			if errors.Is(err, repositories.ErrEmptyContent) || errors.Is(err, repositories.ErrContentTooLong) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
			return
		}
		if view, err := h.views.MessageView(c.Request.Context(), msg); err == nil {
			h.notifier.NotifyNewMessage(accountID, view)
		}
	}

	h.audit.Emit(c.Request.Context(), "INFO", "conversation started", requestIDFromContext(c), &accountID)
	c.JSON(http.StatusOK, gin.H{"conversation_name": conv.Name})
}

// GetMessages returns a page of conversation history, newest first.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	name := c.Param("conversation_name")
	accountID := c.GetString("accountID")

	if _, err := repositories.OtherParticipant(name, accountID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	if _, err := h.conversations.GetByName(c.Request.Context(), name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}

	limit := parseQueryInt(c, "limit", defaultHistoryLimit)
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := parseQueryInt(c, "offset", 0)

	msgs, err := h.messages.History(c.Request.Context(), name, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	messageViews, err := h.views.MessageViews(c.Request.Context(), msgs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message views"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messageViews})
}

// MarkRead flips the read flag on everything addressed to the caller in the
// conversation, then pushes the fresh unread count to the caller's
// notification topic.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	name := c.Param("conversation_name")
	accountID := c.GetString("accountID")

	if _, err := repositories.OtherParticipant(name, accountID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), name, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	if err := h.notifier.PushUnreadCount(c.Request.Context(), accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to push unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetUnreadCount returns the caller's unread message count.
func (h *ConversationHandler) GetUnreadCount(c *gin.Context) {
	accountID := c.GetString("accountID")

	count, err := h.messages.CountUnread(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
