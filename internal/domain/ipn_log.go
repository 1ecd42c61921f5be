package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IPNOutcome string

const (
	IPNOutcomeReceived IPNOutcome = "received"
	IPNOutcomeRecorded IPNOutcome = "recorded"
	IPNOutcomeRejected IPNOutcome = "rejected"
	IPNOutcomeInvalid  IPNOutcome = "invalid"
	IPNOutcomeFailed   IPNOutcome = "failed"
)

// IPNLog journals every notification PayPal delivered, with what became of it.
type IPNLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TxnID        string         `gorm:"column:txn_id;type:varchar(255);index" json:"txn_id"`
	RawBody      string         `gorm:"column:raw_body;type:text" json:"raw_body"`
	Payload      datatypes.JSON `gorm:"type:json" json:"payload"`
	Verification string         `gorm:"type:varchar(32)" json:"verification"`
	Outcome      IPNOutcome     `gorm:"type:varchar(20);not null;default:'received';index" json:"outcome"`
	Reason       string         `gorm:"type:text" json:"reason"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (IPNLog) TableName() string { return "paypal_ipn_log" }

func (l *IPNLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
