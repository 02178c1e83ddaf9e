package websocket

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/guilherme-santos/linearcalendar/internal/store"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send():
		if !ok {
			t.Fatalf("client channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a message")
	}
	return Message{}
}

func TestBroadcasterForwardsStoreChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	client := NewClient(hub)
	hub.Register(client)

	st := store.New(store.WithOutput(io.Discard))
	detach := NewBroadcaster(hub, st).Attach()
	defer detach()

	st.SetYear(2030)

	msg := receive(t, client)
	if msg.Type != TypeStoreChanged {
		t.Fatalf("expected %s, got %s", TypeStoreChanged, msg.Type)
	}
	payload := msg.Payload.(map[string]any)
	if payload["kind"] != string(store.YearChanged) || payload["year"] != float64(2030) {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub)
	hub.Register(client)
	cancel()
	<-done

	if _, ok := <-client.Send(); ok {
		t.Fatalf("expected the client channel to be closed")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients left")
	}
}

func TestRegisterAfterShutdownClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	cancel()
	hub.Run(ctx)

	client := NewClient(hub)
	hub.Register(client)
	if _, ok := <-client.Send(); ok {
		t.Fatalf("expected the client channel to be closed")
	}
	hub.Unregister(client)
}
