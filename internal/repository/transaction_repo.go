package repository

import (
	"context"
	"errors"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create maps a unique violation on txn_id to domain.ErrTransactionExists so
// concurrent deliveries of the same notification cannot both be recorded.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if err != nil && !t.Invalid && isUniqueConstraintError(err) {
		return domain.ErrTransactionExists
	}
	return err
}

func (r *TransactionRepository) ExistsByTxnID(ctx context.Context, txnID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("txn_id = ? AND invalid = ?", txnID, false).
		Count(&count).Error
	return count > 0, err
}

// LatestForUser returns nil without error when the user has not paid yet.
func (r *TransactionRepository) LatestForUser(ctx context.Context, userID, instanceID int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Where("userid = ? AND instanceid = ? AND invalid = ?", userID, instanceID, false).
		Order("timeupdated DESC, id DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) HasCompleted(ctx context.Context, userID, instanceID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("userid = ? AND instanceid = ? AND payment_status = ? AND invalid = ?",
			userID, instanceID, domain.PaymentStatusCompleted, false).
		Count(&count).Error
	return count > 0, err
}

func (r *TransactionRepository) ListByInstance(ctx context.Context, instanceID int64) ([]domain.Transaction, error) {
	var list []domain.Transaction
	err := r.db.WithContext(ctx).Where("instanceid = ?", instanceID).Order("id ASC").Find(&list).Error
	return list, err
}
