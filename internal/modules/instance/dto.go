package instance

import (
	"github.com/shopspring/decimal"
)

// SettingsRequest is the activity settings form.
type SettingsRequest struct {
	Name                     string          `json:"name" validate:"required,max=255"`
	Intro                    string          `json:"intro"`
	BusinessEmail            string          `json:"businessemail" validate:"required,email,max=255"`
	Cost                     decimal.Decimal `json:"cost"`
	Currency                 string          `json:"currency" validate:"omitempty,oneof=AUD BRL CAD CHF CZK DKK EUR GBP HKD HUF ILS JPY MXN MYR NOK NZD PHP PLN RUB SEK SGD THB TRY TWD USD"`
	ItemName                 string          `json:"itemname" validate:"required,max=255"`
	ItemNumber               string          `json:"itemnumber" validate:"required,max=255"`
	MailAdmins               bool            `json:"mailadmins"`
	MailStudents             bool            `json:"mailstudents"`
	MailTeachers             bool            `json:"mailteachers"`
	PaymentCompletionEnabled bool            `json:"paymentcompletionenabled"`
}
