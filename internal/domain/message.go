package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MessageComponent = "mod_paypal"

	MessagePaymentCompleted = "payment_completed"
	MessagePaymentPending   = "payment_pending"
	MessagePaymentError     = "payment_error"
)

// Message is an outbound notification persisted to the outbox.
type Message struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	UserFrom    int64             `gorm:"column:user_from;not null" json:"user_from"`
	UserTo      int64             `gorm:"column:user_to;not null;index" json:"user_to"`
	Component   string            `gorm:"type:varchar(100);not null" json:"component"`
	Name        string            `gorm:"type:varchar(100);not null" json:"name"`
	Subject     string            `gorm:"type:varchar(255)" json:"subject"`
	FullMessage string            `gorm:"column:full_message;type:text" json:"full_message"`
	Data        datatypes.JSONMap `gorm:"type:json" json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
