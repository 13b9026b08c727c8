package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/rl1809/warehouse-ledger/internal/adapter/storage"
	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestAppendEntry_Movement(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisher(writer)

	entry := domain.AuditEntry{
		ID:          uuid.New(),
		Time:        time.Now(),
		Kind:        domain.AuditKindMovement,
		ProductID:   42,
		ProductName: "milk",
		Quantity:    3,
		Source:      domain.SupplyLabel,
		Destination: "#2 (Cold)",
		Message:     "moved 3 x milk",
	}
	if err := publisher.AppendEntry(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "42" {
		t.Errorf("expected key 42, got %s", msg.Key)
	}

	var rec storage.EntryRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if rec.ID != entry.ID.String() || rec.Quantity != 3 || rec.Destination != "#2 (Cold)" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestAppendEntry_NoteKey(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisher(writer)

	publisher.AppendEntry(context.Background(), domain.AuditEntry{ID: uuid.New(), Kind: domain.AuditKindNote, Message: "x"})
	if string(writer.messages[0].Key) != "note" {
		t.Errorf("expected note key, got %s", writer.messages[0].Key)
	}

	publisher.Close()
	if !writer.closed {
		t.Error("expected writer closed")
	}
}
