package kafka

const (
	TopicOrderCompleted   = "order.completed"
	TopicSettlementFailed = "order.settlement_failed"
	TopicPaymentCaptured  = "payment.captured"
)
