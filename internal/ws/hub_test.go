package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"market-chat-service/internal/models"
)

func TestHubSubscribeAndUnsubscribe(t *testing.T) {
	hub := NewHub()

	hub.Subscribe("a__b", nil, ConnInfo{})
	if len(hub.topics) != 1 {
		t.Fatalf("expected topic to be created")
	}

	hub.Unsubscribe("a__b", nil)
	if len(hub.topics) != 0 {
		t.Fatalf("expected topic to be removed")
	}
}

func TestHubTopicsAreIndependent(t *testing.T) {
	hub := NewHub()

	hub.Subscribe("a__b", nil, ConnInfo{})
	hub.Subscribe("a__c", nil, ConnInfo{})
	require.Equal(t, 1, hub.SubscriberCount("a__b"))
	require.Equal(t, 1, hub.SubscriberCount("a__c"))

	hub.Unsubscribe("a__b", nil)
	require.Equal(t, 0, hub.SubscriberCount("a__b"))
	require.Equal(t, 1, hub.SubscriberCount("a__c"))
}

// dialSubscribed connects a client websocket whose server side is subscribed
// to the topic, returning both ends.
func dialSubscribed(t *testing.T, hub *Hub, topic string) (client, server *websocket.Conn) {
	t.Helper()

	ready := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Subscribe(topic, conn, ConnInfo{})
		server = conn
		close(ready)
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("server did not subscribe in time")
	}
	return client, server
}

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	client, _ := dialSubscribed(t, hub, "a__b")

	hub.Broadcast("a__b", models.ChatEvent{Type: "user_leave", User: "a"})

	client.SetReadDeadline(time.Now().Add(time.Second))
	var event models.ChatEvent
	require.NoError(t, client.ReadJSON(&event))
	require.Equal(t, "user_leave", event.Type)
	require.Equal(t, "a", event.User)
}

func TestHubBroadcastDoesNotCrossTopics(t *testing.T) {
	hub := NewHub()
	member, _ := dialSubscribed(t, hub, "a__b")
	outsider, _ := dialSubscribed(t, hub, "a__c")

	hub.Broadcast("a__b", models.ChatEvent{Type: "user_leave", User: "a"})

	member.SetReadDeadline(time.Now().Add(time.Second))
	var event models.ChatEvent
	require.NoError(t, member.ReadJSON(&event))
	require.Equal(t, "user_leave", event.Type)

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := outsider.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got %v", err)
}

func TestHubSendReachesOneConnection(t *testing.T) {
	hub := NewHub()
	client, server := dialSubscribed(t, hub, "a__b")
	other, _ := dialSubscribed(t, hub, "a__b")

	require.NoError(t, hub.Send(server, models.ChatEvent{Type: "error", Error: "bad event"}))

	client.SetReadDeadline(time.Now().Add(time.Second))
	var event models.ChatEvent
	require.NoError(t, client.ReadJSON(&event))
	require.Equal(t, "error", event.Type)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got %v", err)
}

func TestHubSerializesWritesToOneConnection(t *testing.T) {
	hub := NewHub()
	client, server := dialSubscribed(t, hub, "a__b")

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.Broadcast("a__b", models.ChatEvent{Type: "chat_message_echo", Name: "a"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = hub.Send(server, models.ChatEvent{Type: "error", Error: "bad event"})
		}
	}()

	for i := 0; i < 2*rounds; i++ {
		client.SetReadDeadline(time.Now().Add(time.Second))
		var event models.ChatEvent
		require.NoError(t, client.ReadJSON(&event))
		require.Contains(t, []string{"chat_message_echo", "error"}, event.Type)
	}
	wg.Wait()
}
