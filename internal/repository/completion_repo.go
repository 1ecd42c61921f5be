package repository

import (
	"context"
	"errors"
	"time"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) SetState(ctx context.Context, instanceID, userID int64, state domain.CompletionState) error {
	row := domain.ActivityCompletion{
		InstanceID:   instanceID,
		UserID:       userID,
		State:        state,
		TimeModified: time.Now().Unix(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instance_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "time_modified"}),
	}).Create(&row).Error
}

// GetState reports CompletionIncomplete when no row exists.
func (r *CompletionRepository) GetState(ctx context.Context, instanceID, userID int64) (domain.CompletionState, error) {
	var row domain.ActivityCompletion
	err := r.db.WithContext(ctx).
		Where("instance_id = ? AND user_id = ?", instanceID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CompletionIncomplete, nil
	}
	if err != nil {
		return domain.CompletionIncomplete, err
	}
	return row.State, nil
}
