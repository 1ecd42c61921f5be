package instance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"modpaypal/internal/domain"
	"modpaypal/internal/pkg/validator"

	"gorm.io/gorm"
)

type Service struct {
	instances instanceRepo
	courses   courseReader
}

func NewService(instances instanceRepo, courses courseReader) *Service {
	return &Service{instances: instances, courses: courses}
}

func (s *Service) Create(ctx context.Context, courseID int64, req SettingsRequest) (*domain.Instance, error) {
	if err := validateSettings(&req); err != nil {
		return nil, err
	}
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("load course: %w", err)
	}

	inst := &domain.Instance{CourseID: courseID}
	apply(inst, req)
	if err := s.instances.Create(ctx, inst); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return inst, nil
}

func (s *Service) Update(ctx context.Context, courseID, id int64, req SettingsRequest) (*domain.Instance, error) {
	if err := validateSettings(&req); err != nil {
		return nil, err
	}
	inst, err := s.Get(ctx, courseID, id)
	if err != nil {
		return nil, err
	}
	apply(inst, req)
	if err := s.instances.Update(ctx, inst); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update instance: %w", err)
	}
	return inst, nil
}

// Get hides instances of other courses behind ErrNotFound.
func (s *Service) Get(ctx context.Context, courseID, id int64) (*domain.Instance, error) {
	inst, err := s.instances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load instance: %w", err)
	}
	if inst.CourseID != courseID {
		return nil, ErrNotFound
	}
	return inst, nil
}

func (s *Service) List(ctx context.Context, courseID int64) ([]domain.Instance, error) {
	return s.instances.ListByCourse(ctx, courseID)
}

func (s *Service) Delete(ctx context.Context, courseID, id int64) error {
	if _, err := s.Get(ctx, courseID, id); err != nil {
		return err
	}
	if err := s.instances.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete instance: %w", err)
	}
	return nil
}

func validateSettings(req *SettingsRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.BusinessEmail = strings.TrimSpace(req.BusinessEmail)
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.ItemNumber = strings.TrimSpace(req.ItemNumber)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = domain.DefaultCurrency
	}

	fields := validator.Validate(req)
	if !req.Cost.IsPositive() {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["cost"] = "gt"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func apply(inst *domain.Instance, req SettingsRequest) {
	inst.Name = req.Name
	inst.Intro = req.Intro
	inst.BusinessEmail = req.BusinessEmail
	inst.Cost = req.Cost.Round(2)
	inst.Currency = req.Currency
	inst.ItemName = req.ItemName
	inst.ItemNumber = req.ItemNumber
	inst.MailAdmins = req.MailAdmins
	inst.MailStudents = req.MailStudents
	inst.MailTeachers = req.MailTeachers
	inst.PaymentCompletionEnabled = req.PaymentCompletionEnabled
}
