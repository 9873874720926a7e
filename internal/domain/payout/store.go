package payout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const selectPayout = `
    SELECT id, employee_id, year, month,
           amount_chf::text, amount_btc::text, rate_chf::text,
           public_address, payment_date
    FROM monthly_payouts
`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) SaveAll(ctx context.Context, payouts []MonthlyPayout) error {
	if len(payouts) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range payouts {
		p := &payouts[i]
		err := tx.QueryRow(ctx, `
      INSERT INTO monthly_payouts (employee_id, year, month, amount_chf, amount_btc, rate_chf, public_address, payment_date)
      VALUES ($1,$2,$3,$4::numeric,$5::numeric,$6::numeric,$7,$8)
      RETURNING id
    `, p.EmployeeID, p.Year, p.Month, p.AmountChf.String(), p.AmountBtc.String(), p.RateChf.String(), p.PublicAddress, p.PaymentDate).Scan(&p.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: %d", ErrUnknownEmployee, p.EmployeeID)
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*MonthlyPayout, error) {
	p, err := scanPayout(s.DB.QueryRow(ctx, selectPayout+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *Store) FindByEmployee(ctx context.Context, employeeID int64) ([]MonthlyPayout, error) {
	rows, err := s.DB.Query(ctx, selectPayout+" WHERE employee_id = $1 ORDER BY payment_date DESC, id DESC", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthlyPayout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPayout(row pgx.Row) (*MonthlyPayout, error) {
	var p MonthlyPayout
	var chf, btc, rate string
	if err := row.Scan(&p.ID, &p.EmployeeID, &p.Year, &p.Month, &chf, &btc, &rate, &p.PublicAddress, &p.PaymentDate); err != nil {
		return nil, err
	}
	var err error
	if p.AmountChf, err = decimal.NewFromString(chf); err != nil {
		return nil, fmt.Errorf("parse amount_chf: %w", err)
	}
	if p.AmountBtc, err = decimal.NewFromString(btc); err != nil {
		return nil, fmt.Errorf("parse amount_btc: %w", err)
	}
	if p.RateChf, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("parse rate_chf: %w", err)
	}
	return &p, nil
}
