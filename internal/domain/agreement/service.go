package agreement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"marina/internal/domain/employee"
)

var ErrNoAgreement = errors.New("employee has no agreement")

const ContentType = "application/pdf"

// Document is a loaded agreement ready to be sent to a client.
type Document struct {
	FileName string
	Content  []byte
}

type Service struct {
	employees *employee.Service
	files     *Files
}

func NewService(employees *employee.Service, files *Files) *Service {
	return &Service{employees: employees, files: files}
}

// Upload stores src as the agreement of the employee with employeeID and
// links the stored file to the employee record.
func (s *Service) Upload(ctx context.Context, employeeID int64, src io.Reader) (*employee.Employee, error) {
	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, employee.ErrNotFound
	}

	path, err := s.files.Replace(emp.Username, src)
	if err != nil {
		return nil, err
	}
	if err := s.employees.AttachAgreement(ctx, emp, path); err != nil {
		return nil, err
	}
	return emp, nil
}

// Load reads the agreement attached to emp.
func (s *Service) Load(emp *employee.Employee) (*Document, error) {
	if emp == nil {
		return nil, employee.ErrNotFound
	}
	if emp.Agreement == nil {
		return nil, ErrNoAgreement
	}
	content, err := s.files.Read(emp.Agreement.AgreementPDFPath)
	if err != nil {
		return nil, fmt.Errorf("read agreement %d: %w", emp.Agreement.ID, err)
	}
	return &Document{FileName: filepath.Base(emp.Agreement.AgreementPDFPath), Content: content}, nil
}

// Discard removes the stored PDF of a deleted employee. Failures are logged.
func (s *Service) Discard(emp *employee.Employee) {
	if emp == nil || emp.Agreement == nil {
		return
	}
	if err := s.files.Remove(emp.Agreement.AgreementPDFPath); err != nil {
		slog.Warn("agreement file removal failed", "employeeId", emp.ID, "err", err)
	}
}
