package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusRequired  = "required"
)

var (
	ErrInstanceNotFound = errors.New("paypal instance not found")
	ErrUserNotFound     = errors.New("user not found")
)

type Options struct {
	WWWRoot   string
	PayPalURL string
}

type FormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CheckoutForm is the hidden-field form that sends the student to PayPal.
type CheckoutForm struct {
	Action string      `json:"action"`
	Fields []FormField `json:"fields"`
}

// Page is everything the view needs for one user and instance.
type Page struct {
	Instance *domain.Instance `json:"instance"`
	Course   *domain.Course   `json:"course"`
	User     *domain.User     `json:"-"`
	Status   string           `json:"status"`
	Form     *CheckoutForm    `json:"form,omitempty"`
}

type Service struct {
	users     userReader
	courses   courseReader
	instances instanceReader
	txns      transactionReader
	opts      Options
}

func NewService(users userReader, courses courseReader, instances instanceReader, txns transactionReader, opts Options) *Service {
	return &Service{users: users, courses: courses, instances: instances, txns: txns, opts: opts}
}

// Page decides between the completed, pending and payment-required states.
func (s *Service) Page(ctx context.Context, userID, instanceID int64) (*Page, error) {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("load instance: %w", err)
	}
	course, err := s.courses.GetByID(ctx, inst.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	page := &Page{Instance: inst, Course: course, User: user}

	t, err := s.txns.LatestForUser(ctx, userID, instanceID)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	switch {
	case t != nil && t.IsCompleted():
		page.Status = StatusCompleted
	case t != nil && t.IsPending():
		page.Status = StatusPending
	default:
		page.Status = StatusRequired
		page.Form = s.checkoutForm(inst, user)
	}
	return page, nil
}

func (s *Service) ViewURL(instanceID int64) string {
	return fmt.Sprintf("%s/mod/paypal/view?n=%d", s.opts.WWWRoot, instanceID)
}

func (s *Service) checkoutForm(inst *domain.Instance, user *domain.User) *CheckoutForm {
	ref := domain.PaymentRef{UserID: user.ID, CourseID: inst.CourseID, InstanceID: inst.ID}
	viewURL := s.ViewURL(inst.ID)

	return &CheckoutForm{
		Action: s.opts.PayPalURL,
		Fields: []FormField{
			{"cmd", "_xclick"},
			{"charset", "utf-8"},
			{"business", inst.BusinessEmail},
			{"item_name", inst.ItemName},
			{"item_number", inst.ItemNumber},
			{"quantity", "1"},
			{"on0", "User"},
			{"os0", user.FullName()},
			{"custom", ref.Encode()},
			{"currency_code", inst.Currency},
			{"amount", inst.RequiredAmount().StringFixed(2)},
			{"for_auction", "false"},
			{"no_note", "1"},
			{"no_shipping", "1"},
			{"notify_url", s.opts.WWWRoot + "/mod/paypal/ipn"},
			{"return", viewURL},
			{"cancel_return", viewURL},
			{"rm", "2"},
			{"cbt", "Continue to " + inst.Name},
			{"first_name", user.FirstName},
			{"last_name", user.LastName},
			{"email", user.Email},
		},
	}
}

// Field returns the value of a form field, or "" when absent.
func (f *CheckoutForm) Field(name string) string {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
