package domain

import "errors"

const (
	PaymentStatusCompleted = "Completed"
	PaymentStatusPending   = "Pending"

	PendingReasonEcheck = "echeck"
)

// ErrTransactionExists is returned by storage when a valid transaction with
// the same txn_id is already recorded.
var ErrTransactionExists = errors.New("transaction already exists")

// Transaction mirrors a PayPal notification that was accepted or flagged invalid.
// Rows are never updated.
type Transaction struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	TxnID           string `gorm:"column:txn_id;type:varchar(255);not null;uniqueIndex:ux_paypal_transactions_txn_id,where:invalid = false" json:"txn_id"`
	UserID          int64  `gorm:"column:userid;not null;index:idx_paypal_transactions_user_instance,priority:1" json:"userid"`
	CourseID        int64  `gorm:"column:courseid;not null" json:"courseid"`
	InstanceID      int64  `gorm:"column:instanceid;not null;index:idx_paypal_transactions_user_instance,priority:2" json:"instanceid"`
	PaymentStatus   string `gorm:"column:payment_status;type:varchar(64)" json:"payment_status"`
	PaymentGross    string `gorm:"column:payment_gross;type:varchar(32)" json:"payment_gross"`
	PaymentCurrency string `gorm:"column:payment_currency;type:varchar(3)" json:"payment_currency"`
	PendingReason   string `gorm:"column:pending_reason;type:varchar(64)" json:"pending_reason"`
	Business        string `gorm:"column:business;type:varchar(255)" json:"business"`
	Invalid         bool   `gorm:"column:invalid;not null;default:false" json:"invalid"`
	TimeUpdated     int64  `gorm:"column:timeupdated;not null" json:"timeupdated"`
}

func (Transaction) TableName() string { return "paypal_transactions" }

func (t *Transaction) IsCompleted() bool {
	return !t.Invalid && t.PaymentStatus == PaymentStatusCompleted
}

func (t *Transaction) IsPending() bool {
	return !t.Invalid && t.PaymentStatus == PaymentStatusPending
}
