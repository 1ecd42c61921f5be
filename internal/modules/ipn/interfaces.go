package ipn

import (
	"context"

	"modpaypal/internal/domain"

	"github.com/google/uuid"
)

// Verifier posts a notification back to PayPal and returns its answer.
type Verifier interface {
	Verify(ctx context.Context, body string) (string, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

type courseReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	PrimaryTeacher(ctx context.Context, courseID int64) (*domain.User, error)
}

type instanceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Instance, error)
}

type transactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) error
	ExistsByTxnID(ctx context.Context, txnID string) (bool, error)
}

type completionWriter interface {
	SetState(ctx context.Context, instanceID, userID int64, state domain.CompletionState) error
}

type journal interface {
	Create(ctx context.Context, l *domain.IPNLog) error
	Finish(ctx context.Context, id uuid.UUID, verification string, outcome domain.IPNOutcome, reason string) error
}

// notifier must not block; delivery is best effort.
type notifier interface {
	Notify(m domain.Message)
}

type statusPublisher interface {
	PublishStatus(userID, instanceID int64, status string)
}
