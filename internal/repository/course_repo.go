package repository

import (
	"context"
	"errors"

	"modpaypal/internal/domain"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	var c domain.Course
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) AddTeacher(ctx context.Context, courseID, userID int64, sortOrder int) error {
	return r.db.WithContext(ctx).Create(&domain.CourseTeacher{CourseID: courseID, UserID: userID, SortOrder: sortOrder}).Error
}

func (r *CourseRepository) IsTeacher(ctx context.Context, courseID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CourseTeacher{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

// PrimaryTeacher returns nil without error when the course has no active teacher.
func (r *CourseRepository) PrimaryTeacher(ctx context.Context, courseID int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN course_teachers ct ON ct.user_id = users.id").
		Where("ct.course_id = ? AND users.suspended = ?", courseID, false).
		Order("ct.sort_order ASC, users.id ASC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
