package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func dialTestSocket(t *testing.T, hub *Hub, userID primitive.ObjectID) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, userID)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleWebSocketGreetsAndDelivers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()
	conn := dialTestSocket(t, hub, userID)

	var greeting Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if greeting.Type != "connected" {
		t.Errorf("greeting type = %q, want connected", greeting.Type)
	}
	if greeting.UserID != userID.Hex() {
		t.Errorf("greeting userID = %q, want %s", greeting.UserID, userID.Hex())
	}

	// Registration runs through the hub's event loop; retry briefly.
	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		if err = hub.SendToUser(userID, Event{Type: "cashback", Message: "Cashback received"}); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("SendToUser: %v", err)
	}

	var pushed Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read push: %v", err)
	}
	if pushed.Type != "cashback" {
		t.Errorf("push type = %q, want cashback", pushed.Type)
	}
}

// A client whose connection has died must not linger in the hub; sends to
// that user fail instead of writing into a dead socket.
func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()
	conn := dialTestSocket(t, hub, userID)

	var greeting Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}

	conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, registered := hub.clients[userID]
		hub.mu.RUnlock()
		if !registered {
			if err := hub.SendToUser(userID, Event{Type: "commission"}); err == nil {
				t.Fatal("send to an unregistered user succeeded")
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client not unregistered after its connection closed")
}
