package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/guilherme-santos/linearcalendar/internal/store"
)

type MessageType string

const (
	TypeStoreChanged MessageType = "store.changed"
	TypeSyncError    MessageType = "sync.error"
)

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

type StoreChangedPayload struct {
	Kind store.ChangeKind `json:"kind"`
	Year int              `json:"year"`
}

type SyncErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Broadcaster turns store changes into hub messages.
type Broadcaster struct {
	hub   *Hub
	store *store.Store
}

func NewBroadcaster(hub *Hub, st *store.Store) *Broadcaster {
	return &Broadcaster{hub: hub, store: st}
}

// Attach subscribes to the store and returns the unsubscribe func.
func (b *Broadcaster) Attach() func() {
	return b.store.Subscribe(func(c store.Change) {
		b.broadcast(NewMessage(TypeStoreChanged, StoreChangedPayload{
			Kind: c.Kind,
			Year: b.store.Year(),
		}))
	})
}

func (b *Broadcaster) SyncError(err error) {
	b.broadcast(NewMessage(TypeSyncError, SyncErrorPayload{
		Error:   "sync_error",
		Message: err.Error(),
	}))
}

func (b *Broadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
