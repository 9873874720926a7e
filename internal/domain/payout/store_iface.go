package payout

import (
	"context"

	"marina/internal/domain/employee"
)

type StoreAPI interface {
	// SaveAll persists every payout or none of them, filling in IDs.
	SaveAll(ctx context.Context, payouts []MonthlyPayout) error
	FindByID(ctx context.Context, id int64) (*MonthlyPayout, error)
	FindByEmployee(ctx context.Context, employeeID int64) ([]MonthlyPayout, error)
}

type EmployeeFinder interface {
	FindByID(ctx context.Context, id int64) (*employee.Employee, error)
}
