package repository

import (
	"context"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []domain.Message
	err := r.db.WithContext(ctx).
		Where("user_to = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
