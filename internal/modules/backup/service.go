package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"modpaypal/internal/domain"
)

type instanceLister interface {
	ListByCourse(ctx context.Context, courseID int64) ([]domain.Instance, error)
}

type Service struct {
	instances instanceLister
	wwwRoot   string
	loggerf   func(format string, args ...interface{})
}

func NewService(instances instanceLister, wwwRoot string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{instances: instances, wwwRoot: wwwRoot, loggerf: loggerf}
}

// ExportCourse writes activities/paypal_<id>/paypal.xml under dir for every
// instance of the course and returns the written paths.
func (s *Service) ExportCourse(ctx context.Context, courseID int64, dir string) ([]string, error) {
	list, err := s.instances.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	paths := make([]string, 0, len(list))
	for i := range list {
		inst := &list[i]
		activityDir := filepath.Join(dir, "activities", fmt.Sprintf("paypal_%d", inst.ID))
		if err := os.MkdirAll(activityDir, 0o755); err != nil {
			return paths, err
		}
		path := filepath.Join(activityDir, "paypal.xml")
		if err := s.writeFile(path, inst); err != nil {
			return paths, err
		}
		s.loggerf("level=info msg=paypal activity exported course_id=%d instance_id=%d path=%s", courseID, inst.ID, path)
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Service) writeFile(path string, inst *domain.Instance) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, inst, inst.ID, 0, s.wwwRoot); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
