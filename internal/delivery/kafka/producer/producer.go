package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

type Producer interface {
	PublishOrderCompleted(ctx context.Context, event kafka.OrderCompletedEvent) error
	PublishSettlementFailed(ctx context.Context, event kafka.SettlementFailedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishOrderCompleted(ctx context.Context, event kafka.OrderCompletedEvent) error {
	event.Timestamp = time.Now()
	return p.send(ctx, kafka.TopicOrderCompleted, event.EventID, event)
}

func (p *implProducer) PublishSettlementFailed(ctx context.Context, event kafka.SettlementFailedEvent) error {
	event.Timestamp = time.Now()
	return p.send(ctx, kafka.TopicSettlementFailed, event.PaymentID, event)
}

func (p *implProducer) send(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.send: %s: %v", topic, err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	partition, offset, err := p.prod.SendMessage(msg)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.send: %s: %v", topic, err)
		return err
	}

	p.l.Debugf(ctx, "Published %s key=%s partition=%d offset=%d", topic, key, partition, offset)
	return nil
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
