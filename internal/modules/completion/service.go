package completion

import (
	"context"
	"errors"
	"fmt"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

var ErrInstanceNotFound = errors.New("paypal instance not found")

type instanceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Instance, error)
}

type paymentChecker interface {
	HasCompleted(ctx context.Context, userID, instanceID int64) (bool, error)
}

type Service struct {
	instances instanceReader
	payments  paymentChecker
}

func NewService(instances instanceReader, payments paymentChecker) *Service {
	return &Service{instances: instances, payments: payments}
}

// State reports whether the user completed the activity. When completion by
// payment is off the caller's default stands.
func (s *Service) State(ctx context.Context, instanceID, userID int64, def bool) (bool, error) {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrInstanceNotFound
		}
		return false, fmt.Errorf("load instance: %w", err)
	}
	if !inst.PaymentCompletionEnabled {
		return def, nil
	}
	return s.payments.HasCompleted(ctx, userID, instanceID)
}
