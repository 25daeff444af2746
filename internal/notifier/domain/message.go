package domain

// CompletionMessage is a completion event as consumed from RabbitMQ.
// DeliveryTag and Redelivered come from the AMQP delivery, not the body.
type CompletionMessage struct {
	EventID     string `json:"event_id"`
	JobCardID   int64  `json:"job_card_id"`
	Done        int    `json:"done"`
	Planned     int    `json:"planned"`
	Text        string `json:"text"`
	DeliveryTag uint64 `json:"-"`
	Redelivered bool   `json:"-"`
}
