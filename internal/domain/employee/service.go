package employee

import (
	"context"
	"fmt"

	"marina/internal/domain/auth"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	return s.store.FindByEmail(ctx, email)
}

// Create persists emp under a freshly assigned id. Any id or agreement in
// the payload is discarded.
func (s *Service) Create(ctx context.Context, emp Employee) (*Employee, error) {
	emp.ID = 0
	emp.Agreement = nil
	if err := s.store.Save(ctx, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Service) CreateFromUser(ctx context.Context, user auth.User) (*Employee, error) {
	return s.Create(ctx, FromUser(user))
}

// Update replaces the employee stored under id with emp. The stored
// agreement link is kept.
func (s *Service) Update(ctx context.Context, id int64, emp Employee) (*Employee, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	emp.ID = id
	emp.Agreement = existing.Agreement
	if err := s.store.Save(ctx, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// AttachAgreement points the employee's agreement at path, creating the
// agreement on first upload.
func (s *Service) AttachAgreement(ctx context.Context, emp *Employee, path string) error {
	if emp.Agreement == nil {
		emp.Agreement = &Agreement{}
	}
	emp.Agreement.EmployeeID = emp.ID
	emp.Agreement.AgreementPDFPath = path
	if err := s.store.Save(ctx, emp); err != nil {
		return fmt.Errorf("attach agreement: %w", err)
	}
	return nil
}

// Delete removes the employee and returns the record as it was before
// removal, or nil when there was none.
func (s *Service) Delete(ctx context.Context, id int64) (*Employee, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return nil, err
	}
	return existing, nil
}
