package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/service"
)

// HandlePaymentCaptured settles a relayed capture. Undecodable messages and
// terminal settlement failures are consumed; anything else is retried.
func (c *Consumer) HandlePaymentCaptured(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.PaymentCapturedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCaptured: offset=%d: %v", message.Offset, err)
		return nil
	}

	res, err := c.stlSvc.HandleCapturedPayment(ctx, service.SourceKafka, service.CapturedPayment{
		PaymentID: e.PaymentID,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Email:     e.Email,
		Contact:   e.Contact,
		Notes:     e.Notes,
	})
	if err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCaptured: payment_id=%s: %v", e.PaymentID, err)
		return err
	}

	c.l.Infof(ctx, "Payment captured handled: payment_id=%s status=%s", e.PaymentID, res.Status)
	return nil
}
