package payout

import (
	"context"
	"fmt"
	"time"

	"marina/internal/domain/employee"
)

type Service struct {
	store     StoreAPI
	employees EmployeeFinder
	now       func() time.Time
}

func NewService(store StoreAPI, employees EmployeeFinder) *Service {
	return &Service{store: store, employees: employees, now: time.Now}
}

// WithClock replaces the wall clock used to stamp new payouts.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record stamps and persists a batch of payouts. The batch is rejected as a
// whole when any input references an employee that does not exist.
func (s *Service) Record(ctx context.Context, inputs []Input) ([]MonthlyPayout, error) {
	paidAt := s.now()
	payouts := make([]MonthlyPayout, 0, len(inputs))
	for _, in := range inputs {
		emp, err := s.employees.FindByID(ctx, in.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("lookup employee %d: %w", in.EmployeeID, err)
		}
		if emp == nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEmployee, in.EmployeeID)
		}
		payouts = append(payouts, newPayout(emp, in, paidAt))
	}
	if len(payouts) == 0 {
		return payouts, nil
	}
	if err := s.store.SaveAll(ctx, payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

func newPayout(emp *employee.Employee, in Input, paidAt time.Time) MonthlyPayout {
	return MonthlyPayout{
		EmployeeID:    emp.ID,
		Year:          paidAt.Year(),
		Month:         int(paidAt.Month()),
		AmountChf:     in.AmountChf.Decimal,
		AmountBtc:     in.AmountBtc.Decimal,
		RateChf:       in.RateChf.Decimal,
		PublicAddress: in.PublicAddress,
		PaymentDate:   paidAt,
	}
}

// ForEmployee lists the payouts of an existing employee, newest first.
func (s *Service) ForEmployee(ctx context.Context, employeeID int64) ([]MonthlyPayout, error) {
	return s.store.FindByEmployee(ctx, employeeID)
}

// Receipt loads a payout together with its employee and renders it as PDF.
func (s *Service) Receipt(ctx context.Context, payoutID int64) (*MonthlyPayout, []byte, error) {
	p, err := s.store.FindByID(ctx, payoutID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, ErrNotFound
	}
	emp, err := s.employees.FindByID(ctx, p.EmployeeID)
	if err != nil {
		return nil, nil, err
	}
	if emp == nil {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownEmployee, p.EmployeeID)
	}
	pdf, err := RenderReceipt(*p, *emp)
	if err != nil {
		return nil, nil, err
	}
	return p, pdf, nil
}
