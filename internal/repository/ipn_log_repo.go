package repository

import (
	"context"
	"time"

	"modpaypal/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IPNLogRepository struct {
	db *gorm.DB
}

func NewIPNLogRepository(db *gorm.DB) *IPNLogRepository {
	return &IPNLogRepository{db: db}
}

func (r *IPNLogRepository) Create(ctx context.Context, l *domain.IPNLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *IPNLogRepository) Finish(ctx context.Context, id uuid.UUID, verification string, outcome domain.IPNOutcome, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.IPNLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification": verification,
			"outcome":      outcome,
			"reason":       reason,
		}).Error
}

func (r *IPNLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IPNLog, error) {
	var l domain.IPNLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *IPNLogRepository) ListByTxnID(ctx context.Context, txnID string) ([]domain.IPNLog, error) {
	var list []domain.IPNLog
	err := r.db.WithContext(ctx).Where("txn_id = ?", txnID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// PurgeBefore deletes journal entries created before the cutoff.
func (r *IPNLogRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.IPNLog{})
	return res.RowsAffected, res.Error
}
