package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const selectEmployee = `
    SELECT e.id, e.first_name, e.last_name, e.email, e.username,
           e.brutto_salary::text, e.created_date, e.modified_date,
           a.id, a.agreement_pdf_path
    FROM employees e
    LEFT JOIN agreements a ON a.employee_id = e.id
`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindAll(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, selectEmployee+" ORDER BY e.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) FindByID(ctx context.Context, id int64) (*Employee, error) {
	return s.findOne(ctx, selectEmployee+" WHERE e.id = $1", id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	return s.findOne(ctx, selectEmployee+" WHERE e.email = $1", email)
}

func (s *Store) findOne(ctx context.Context, query string, arg any) (*Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return emp, err
}

func (s *Store) Save(ctx context.Context, emp *Employee) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if emp.ID == 0 {
		err = tx.QueryRow(ctx, `
      INSERT INTO employees (first_name, last_name, email, username, brutto_salary)
      VALUES ($1,$2,$3,$4,$5::numeric)
      RETURNING id, created_date, modified_date
    `, emp.FirstName, emp.LastName, emp.Email, emp.Username, nullDecimal(emp.BruttoSalary)).
			Scan(&emp.ID, &emp.CreatedDate, &emp.ModifiedDate)
	} else {
		err = tx.QueryRow(ctx, `
      UPDATE employees
      SET first_name = $1,
          last_name = $2,
          email = $3,
          username = $4,
          brutto_salary = $5::numeric,
          modified_date = now()
      WHERE id = $6
      RETURNING created_date, modified_date
    `, emp.FirstName, emp.LastName, emp.Email, emp.Username, nullDecimal(emp.BruttoSalary), emp.ID).
			Scan(&emp.CreatedDate, &emp.ModifiedDate)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
	}
	if err != nil {
		return mapWriteError(err)
	}

	if emp.Agreement != nil {
		emp.Agreement.EmployeeID = emp.ID
		if err := tx.QueryRow(ctx, `
      INSERT INTO agreements (employee_id, agreement_pdf_path)
      VALUES ($1,$2)
      ON CONFLICT (employee_id) DO UPDATE SET agreement_pdf_path = EXCLUDED.agreement_pdf_path
      RETURNING id
    `, emp.ID, emp.Agreement.AgreementPDFPath).Scan(&emp.Agreement.ID); err != nil {
			return fmt.Errorf("save agreement: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var salary, agreementPath *string
	var agreementID *int64
	if err := row.Scan(
		&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Username,
		&salary, &emp.CreatedDate, &emp.ModifiedDate,
		&agreementID, &agreementPath,
	); err != nil {
		return nil, err
	}
	if salary != nil {
		parsed, err := decimal.NewFromString(*salary)
		if err != nil {
			return nil, fmt.Errorf("parse brutto_salary: %w", err)
		}
		emp.BruttoSalary = decimal.NewNullDecimal(parsed)
	}
	if agreementID != nil && agreementPath != nil {
		emp.Agreement = &Agreement{ID: *agreementID, EmployeeID: emp.ID, AgreementPDFPath: *agreementPath}
	}
	return &emp, nil
}

func nullDecimal(value decimal.NullDecimal) any {
	if !value.Valid {
		return nil
	}
	return value.Decimal.String()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrInUse
		}
	}
	return err
}
