// Package testutil holds in-memory stores and token helpers for HTTP tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/domain/payout"
)

// Memory backs both repositories with one lock so that the employee to
// payout reference behaves like the Postgres foreign key.
type Memory struct {
	mu           sync.Mutex
	employees    map[int64]employee.Employee
	payouts      map[int64]payout.MonthlyPayout
	nextEmployee int64
	nextPayout   int64
	nextAgree    int64

	Employees *EmployeeStore
	Payouts   *PayoutStore
}

type EmployeeStore struct{ m *Memory }

type PayoutStore struct{ m *Memory }

func NewMemory() *Memory {
	m := &Memory{
		employees: map[int64]employee.Employee{},
		payouts:   map[int64]payout.MonthlyPayout{},
	}
	m.Employees = &EmployeeStore{m: m}
	m.Payouts = &PayoutStore{m: m}
	return m
}

// PayoutCount reports how many payouts are stored.
func (m *Memory) PayoutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payouts)
}

func cloneEmployee(emp employee.Employee) *employee.Employee {
	if emp.Agreement != nil {
		a := *emp.Agreement
		emp.Agreement = &a
	}
	return &emp
}

func (s *EmployeeStore) FindAll(_ context.Context) ([]employee.Employee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]employee.Employee, 0, len(s.m.employees))
	for _, emp := range s.m.employees {
		out = append(out, *cloneEmployee(emp))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EmployeeStore) FindByID(_ context.Context, id int64) (*employee.Employee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	emp, ok := s.m.employees[id]
	if !ok {
		return nil, nil
	}
	return cloneEmployee(emp), nil
}

func (s *EmployeeStore) FindByEmail(_ context.Context, email string) (*employee.Employee, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, emp := range s.m.employees {
		if emp.Email == email {
			return cloneEmployee(emp), nil
		}
	}
	return nil, nil
}

func (s *EmployeeStore) Save(_ context.Context, emp *employee.Employee) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for id, other := range s.m.employees {
		if id == emp.ID {
			continue
		}
		if other.Email == emp.Email || other.Username == emp.Username {
			return employee.ErrConflict
		}
	}

	now := time.Now().UTC()
	if emp.ID == 0 {
		s.m.nextEmployee++
		emp.ID = s.m.nextEmployee
		emp.CreatedDate = now
	} else {
		existing, ok := s.m.employees[emp.ID]
		if !ok {
			return employee.ErrNotFound
		}
		emp.CreatedDate = existing.CreatedDate
	}
	emp.ModifiedDate = now

	if emp.Agreement != nil {
		emp.Agreement.EmployeeID = emp.ID
		if emp.Agreement.ID == 0 {
			if stored, ok := s.m.employees[emp.ID]; ok && stored.Agreement != nil {
				emp.Agreement.ID = stored.Agreement.ID
			} else {
				s.m.nextAgree++
				emp.Agreement.ID = s.m.nextAgree
			}
		}
	}
	s.m.employees[emp.ID] = *cloneEmployee(*emp)
	return nil
}

func (s *EmployeeStore) DeleteByID(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.payouts {
		if p.EmployeeID == id {
			return employee.ErrInUse
		}
	}
	delete(s.m.employees, id)
	return nil
}

func (s *PayoutStore) SaveAll(_ context.Context, payouts []payout.MonthlyPayout) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range payouts {
		if _, ok := s.m.employees[p.EmployeeID]; !ok {
			return payout.ErrUnknownEmployee
		}
	}
	for i := range payouts {
		s.m.nextPayout++
		payouts[i].ID = s.m.nextPayout
		s.m.payouts[payouts[i].ID] = payouts[i]
	}
	return nil
}

func (s *PayoutStore) FindByID(_ context.Context, id int64) (*payout.MonthlyPayout, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.payouts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *PayoutStore) FindByEmployee(_ context.Context, employeeID int64) ([]payout.MonthlyPayout, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []payout.MonthlyPayout{}
	for _, p := range s.m.payouts {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].PaymentDate.After(out[j].PaymentDate)
	})
	return out, nil
}

// Accounts is an in-memory auth.AccountStore.
type Accounts struct {
	mu       sync.Mutex
	accounts []auth.Account
}

func (a *Accounts) Add(user auth.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return a.Upsert(context.Background(), user, hash)
}

func (a *Accounts) Upsert(_ context.Context, user auth.User, passwordHash string) error {
	if err := auth.CheckRoles(user.Roles); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, acct := range a.accounts {
		if acct.User.Username == user.Username {
			a.accounts[i].User = user
			a.accounts[i].PasswordHash = passwordHash
			return nil
		}
	}
	a.accounts = append(a.accounts, auth.Account{ID: int64(len(a.accounts) + 1), User: user, PasswordHash: passwordHash})
	return nil
}

func (a *Accounts) FindByLogin(_ context.Context, login string) (*auth.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acct := range a.accounts {
		if strings.EqualFold(acct.User.Username, login) || strings.EqualFold(acct.User.Email, login) {
			found := acct
			return &found, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}
