package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client still registered after unregister")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)
	client3 := mockClient(hub)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(EventOrderStatusChanged, map[string]string{"status": "ready"})

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderStatusChanged {
				t.Errorf("client%d: expected type %q, got %q", i+1, EventOrderStatusChanged, received.Type)
			}
			var payload map[string]string
			if err := json.Unmarshal(received.Payload, &payload); err != nil {
				t.Fatalf("client%d: unmarshal payload: %v", i+1, err)
			}
			if payload["status"] != "ready" {
				t.Errorf("client%d: payload status: got %q, want ready", i+1, payload["status"])
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not block or panic with nobody listening.
	hub.Broadcast(EventOrderCreated, map[string]string{"id": "abc"})
	time.Sleep(10 * time.Millisecond)
}

func TestEventSerialization(t *testing.T) {
	event := Event{
		Type:    EventOrderCreated,
		Payload: json.RawMessage(`{"id":"abc","total":"1750.00"}`),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Type != event.Type {
		t.Errorf("type mismatch: got %s, want %s", decoded.Type, event.Type)
	}
	if string(decoded.Payload) != string(event.Payload) {
		t.Errorf("payload mismatch: got %s, want %s", decoded.Payload, event.Payload)
	}
}
