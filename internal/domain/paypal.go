package domain

import (
	"github.com/shopspring/decimal"
)

// Currencies accepted by PayPal for the checkout form, ISO-4217.
var Currencies = []string{
	"AUD", "BRL", "CAD", "CHF", "CZK", "DKK", "EUR", "GBP", "HKD", "HUF", "ILS", "JPY",
	"MXN", "MYR", "NOK", "NZD", "PHP", "PLN", "RUB", "SEK", "SGD", "THB", "TRY", "TWD", "USD",
}

const DefaultCurrency = "BRL"

// Instance is one configured PayPal activity inside a course.
type Instance struct {
	ID                       int64           `gorm:"primaryKey" json:"id"`
	CourseID                 int64           `gorm:"column:course;index;not null" json:"course"`
	Name                     string          `gorm:"type:varchar(255);not null" json:"name"`
	Intro                    string          `gorm:"type:text" json:"intro"`
	BusinessEmail            string          `gorm:"column:businessemail;type:varchar(255);not null" json:"businessemail"`
	Cost                     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"cost"`
	Currency                 string          `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	ItemName                 string          `gorm:"column:itemname;type:varchar(255)" json:"itemname"`
	ItemNumber               string          `gorm:"column:itemnumber;type:varchar(255)" json:"itemnumber"`
	MailAdmins               bool            `gorm:"column:mailadmins;not null;default:false" json:"mailadmins"`
	MailStudents             bool            `gorm:"column:mailstudents;not null;default:false" json:"mailstudents"`
	MailTeachers             bool            `gorm:"column:mailteachers;not null;default:false" json:"mailteachers"`
	PaymentCompletionEnabled bool            `gorm:"column:paymentcompletionenabled;not null;default:false" json:"paymentcompletionenabled"`
	TimeCreated              int64           `gorm:"column:timecreated;autoCreateTime" json:"timecreated"`
	TimeModified             int64           `gorm:"column:timemodified;autoUpdateTime" json:"timemodified"`
}

func (Instance) TableName() string { return "paypal" }

// RequiredAmount is the configured cost floored at zero and rounded to cents,
// matching what the settings form displays.
func (i *Instance) RequiredAmount() decimal.Decimal {
	if i.Cost.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return i.Cost.Round(2)
}

func IsSupportedCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}
