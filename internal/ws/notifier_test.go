package ws

import (
	"context"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-chat-service/internal/mocks"
	"market-chat-service/internal/models"
)

type recordedEvent struct {
	topic string
	event interface{}
}

// recordingBroker captures broadcasts instead of fanning them out.
type recordingBroker struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroker) Subscribe(topic string, conn *websocket.Conn, info ConnInfo) {}
func (b *recordingBroker) Unsubscribe(topic string, conn *websocket.Conn)             {}
func (b *recordingBroker) Send(conn *websocket.Conn, event interface{}) error         { return nil }

func (b *recordingBroker) Broadcast(topic string, event interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{topic: topic, event: event})
}

func (b *recordingBroker) recorded() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedEvent(nil), b.events...)
}

func TestNotificationTopic(t *testing.T) {
	require.Equal(t, "acc-1__notifications", NotificationTopic("acc-1"))
}

func TestPushUnreadCount(t *testing.T) {
	broker := &recordingBroker{}
	messageRepo := new(mocks.MessageRepositoryMock)
	notifier := NewNotifier(broker, messageRepo)

	messageRepo.On("CountUnread", mock.Anything, "acc-1").Return(3, nil).Once()

	require.NoError(t, notifier.PushUnreadCount(context.Background(), "acc-1"))

	events := broker.recorded()
	require.Len(t, events, 1)
	require.Equal(t, "acc-1__notifications", events[0].topic)

	event := events[0].event.(models.NotificationEvent)
	require.Equal(t, "unread_count", event.Type)
	require.NotNil(t, event.UnreadCount)
	require.Equal(t, 3, *event.UnreadCount)

	messageRepo.AssertExpectations(t)
}

func TestPushUnreadCountStoreError(t *testing.T) {
	broker := &recordingBroker{}
	messageRepo := new(mocks.MessageRepositoryMock)
	notifier := NewNotifier(broker, messageRepo)

	messageRepo.On("CountUnread", mock.Anything, "acc-1").Return(0, context.DeadlineExceeded).Once()

	require.Error(t, notifier.PushUnreadCount(context.Background(), "acc-1"))
	require.Empty(t, broker.recorded())
}

func TestNotifyNewMessage(t *testing.T) {
	broker := &recordingBroker{}
	notifier := NewNotifier(broker, new(mocks.MessageRepositoryMock))

	view := models.MessageView{
		ID:       "msg-1",
		FromUser: models.AccountSummary{ID: "acc-1"},
		ToUser:   models.AccountSummary{ID: "acc-2"},
		Content:  "hello",
	}
	notifier.NotifyNewMessage("acc-1", view)

	events := broker.recorded()
	require.Len(t, events, 1)
	require.Equal(t, "acc-1__notifications", events[0].topic)

	event := events[0].event.(models.NotificationEvent)
	require.Equal(t, "new_message_notification", event.Type)
	require.Equal(t, "acc-1", event.Name)
	require.NotNil(t, event.Message)
	require.Equal(t, "msg-1", event.Message.ID)
}
