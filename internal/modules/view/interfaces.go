package view

import (
	"context"

	"modpaypal/internal/domain"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type courseReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
}

type instanceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Instance, error)
}

type transactionReader interface {
	LatestForUser(ctx context.Context, userID, instanceID int64) (*domain.Transaction, error)
}
