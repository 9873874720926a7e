package employee

import (
	"time"

	"github.com/shopspring/decimal"

	"marina/internal/domain/auth"
)

type Employee struct {
	ID           int64               `json:"id"`
	FirstName    string              `json:"firstName" validate:"required,max=255"`
	LastName     string              `json:"lastName" validate:"required,max=255"`
	Email        string              `json:"email" validate:"required,email,max=255"`
	Username     string              `json:"username" validate:"required,max=255"`
	BruttoSalary decimal.NullDecimal `json:"bruttoSalary"`
	CreatedDate  time.Time           `json:"createdDate"`
	ModifiedDate time.Time           `json:"modifiedDate"`
	Agreement    *Agreement          `json:"agreement,omitempty"`
}

// Agreement references the signed contract PDF of its owning employee.
type Agreement struct {
	ID               int64  `json:"id"`
	EmployeeID       int64  `json:"employeeId"`
	AgreementPDFPath string `json:"-"`
}

// FromUser projects an authenticated identity into a new, unsalaried employee.
func FromUser(user auth.User) Employee {
	return Employee{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Username:  user.Username,
	}
}
