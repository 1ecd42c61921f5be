package backup

import (
	"encoding/xml"
	"fmt"
	"io"

	"modpaypal/internal/domain"

	"github.com/shopspring/decimal"
)

const ModuleName = "paypal"

type activityXML struct {
	XMLName    xml.Name  `xml:"activity"`
	ID         int64     `xml:"id,attr"`
	ModuleID   int64     `xml:"moduleid,attr"`
	ModuleName string    `xml:"modulename,attr"`
	ContextID  int64     `xml:"contextid,attr"`
	PayPal     paypalXML `xml:"paypal"`
}

type paypalXML struct {
	ID                       int64  `xml:"id,attr"`
	Course                   int64  `xml:"course"`
	Name                     string `xml:"name"`
	Intro                    string `xml:"intro"`
	BusinessEmail            string `xml:"businessemail"`
	Cost                     string `xml:"cost"`
	Currency                 string `xml:"currency"`
	ItemName                 string `xml:"itemname"`
	ItemNumber               string `xml:"itemnumber"`
	MailAdmins               int    `xml:"mailadmins"`
	MailStudents             int    `xml:"mailstudents"`
	MailTeachers             int    `xml:"mailteachers"`
	PaymentCompletionEnabled int    `xml:"paymentcompletionenabled"`
	TimeCreated              int64  `xml:"timecreated"`
	TimeModified             int64  `xml:"timemodified"`
}

// Export writes the paypal.xml document for one instance. Links to the site
// inside the intro are encoded so the restore can rewrite them.
func Export(w io.Writer, inst *domain.Instance, moduleID, contextID int64, wwwRoot string) error {
	doc := activityXML{
		ID:         inst.ID,
		ModuleID:   moduleID,
		ModuleName: ModuleName,
		ContextID:  contextID,
		PayPal: paypalXML{
			ID:                       inst.ID,
			Course:                   inst.CourseID,
			Name:                     inst.Name,
			Intro:                    EncodeContentLinks(inst.Intro, wwwRoot),
			BusinessEmail:            inst.BusinessEmail,
			Cost:                     inst.Cost.StringFixed(2),
			Currency:                 inst.Currency,
			ItemName:                 inst.ItemName,
			ItemNumber:               inst.ItemNumber,
			MailAdmins:               boolInt(inst.MailAdmins),
			MailStudents:             boolInt(inst.MailStudents),
			MailTeachers:             boolInt(inst.MailTeachers),
			PaymentCompletionEnabled: boolInt(inst.PaymentCompletionEnabled),
			TimeCreated:              inst.TimeCreated,
			TimeModified:             inst.TimeModified,
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode paypal.xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Import parses a paypal.xml document back into an instance. Content links
// stay encoded; the caller decides how to map them.
func Import(r io.Reader) (*domain.Instance, error) {
	var doc activityXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode paypal.xml: %w", err)
	}
	if doc.ModuleName != ModuleName {
		return nil, fmt.Errorf("decode paypal.xml: unexpected module %q", doc.ModuleName)
	}

	p := doc.PayPal
	cost, err := decimal.NewFromString(p.Cost)
	if err != nil {
		return nil, fmt.Errorf("decode paypal.xml: cost %q: %w", p.Cost, err)
	}
	return &domain.Instance{
		ID:                       p.ID,
		CourseID:                 p.Course,
		Name:                     p.Name,
		Intro:                    p.Intro,
		BusinessEmail:            p.BusinessEmail,
		Cost:                     cost,
		Currency:                 p.Currency,
		ItemName:                 p.ItemName,
		ItemNumber:               p.ItemNumber,
		MailAdmins:               p.MailAdmins != 0,
		MailStudents:             p.MailStudents != 0,
		MailTeachers:             p.MailTeachers != 0,
		PaymentCompletionEnabled: p.PaymentCompletionEnabled != 0,
		TimeCreated:              p.TimeCreated,
		TimeModified:             p.TimeModified,
	}, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
