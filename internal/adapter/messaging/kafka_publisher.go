package messaging

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/warehouse-ledger/internal/adapter/storage"
	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

const (
	batchTimeout = 10 * time.Millisecond
	batchSize    = 100
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher exports audit entries as JSON messages keyed by product id,
// so movements of one product stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		BatchSize:    batchSize,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(storage.NewEntryRecord(entry))
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   messageKey(entry),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(entry.Kind)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func messageKey(entry domain.AuditEntry) []byte {
	if entry.Kind == domain.AuditKindMovement {
		return []byte(strconv.FormatInt(int64(entry.ProductID), 10))
	}
	return []byte(string(domain.AuditKindNote))
}
