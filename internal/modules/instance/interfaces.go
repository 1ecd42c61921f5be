package instance

import (
	"context"

	"modpaypal/internal/domain"
)

type instanceRepo interface {
	Create(ctx context.Context, inst *domain.Instance) error
	GetByID(ctx context.Context, id int64) (*domain.Instance, error)
	ListByCourse(ctx context.Context, courseID int64) ([]domain.Instance, error)
	Update(ctx context.Context, inst *domain.Instance) error
	Delete(ctx context.Context, id int64) error
}

type courseReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
}
