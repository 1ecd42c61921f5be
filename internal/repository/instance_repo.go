package repository

import (
	"context"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

type InstanceRepository struct {
	db *gorm.DB
}

func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

func (r *InstanceRepository) Create(ctx context.Context, inst *domain.Instance) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *InstanceRepository) GetByID(ctx context.Context, id int64) (*domain.Instance, error) {
	var inst domain.Instance
	if err := r.db.WithContext(ctx).First(&inst, id).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.Instance, error) {
	var list []domain.Instance
	err := r.db.WithContext(ctx).Where("course = ?", courseID).Order("id ASC").Find(&list).Error
	return list, err
}

// Update saves every settings column, including false booleans.
func (r *InstanceRepository) Update(ctx context.Context, inst *domain.Instance) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Instance{}).
		Where("id = ?", inst.ID).
		Select("name", "intro", "businessemail", "cost", "currency", "itemname", "itemnumber",
			"mailadmins", "mailstudents", "mailteachers", "paymentcompletionenabled", "timemodified").
		Updates(inst)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the instance and the completion rows that depend on it.
// Transactions stay for audit.
func (r *InstanceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Instance{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("instance_id = ?", id).Delete(&domain.ActivityCompletion{}).Error
	})
}
