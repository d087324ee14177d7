package ws

import (
	"context"

	"market-chat-service/internal/models"
	"market-chat-service/internal/observability"
	"market-chat-service/internal/repositories"
)

const notificationSuffix = "__notifications"

// NotificationTopic returns the private topic for one account.
func NotificationTopic(accountID string) string {
	return accountID + notificationSuffix
}

// Notifier pushes unread counts and new-message alerts to an account's
// private notification topic.
type Notifier struct {
	broker   Broker
	messages repositories.MessageRepository
}

// NewNotifier constructs a Notifier.
func NewNotifier(broker Broker, messages repositories.MessageRepository) *Notifier {
	return &Notifier{broker: broker, messages: messages}
}

// PushUnreadCount recomputes and publishes the account's unread count.
func (n *Notifier) PushUnreadCount(ctx context.Context, accountID string) error {
	count, err := n.messages.CountUnread(ctx, accountID)
	if err != nil {
		return err
	}

	n.broker.Broadcast(NotificationTopic(accountID), models.NotificationEvent{
		Type:        "unread_count",
		UnreadCount: &count,
	})
	observability.IncUnreadPush()
	return nil
}

// NotifyNewMessage publishes a new-message event on the account's topic.
func (n *Notifier) NotifyNewMessage(accountID string, view models.MessageView) {
	n.broker.Broadcast(NotificationTopic(accountID), models.NotificationEvent{
		Type:    "new_message_notification",
		Name:    view.FromUser.ID,
		Message: &view,
	})
}
