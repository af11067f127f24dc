package order

type Status string

const (
	// StatusPending is used for cash-on-delivery orders awaiting payment.
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)
