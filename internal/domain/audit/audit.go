package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionEmployeeCreate    = "employee.create"
	ActionEmployeeRegister  = "employee.register"
	ActionEmployeeUpdate    = "employee.update"
	ActionEmployeeDelete    = "employee.delete"
	ActionAgreementUpload   = "agreement.upload"
	ActionPayoutBatchRecord = "payout.batch"
)

type Event struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
}

// Recorder appends audit events.
type Recorder interface {
	Record(ctx context.Context, evt Event, after any) error
}

// Entry is a stored audit event.
type Entry struct {
	ID         int64           `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      string
}

// Matches reports whether e satisfies every non-empty field of f.
func (f Filter) Matches(e Entry) bool {
	return (f.Action == "" || f.Action == e.Action) &&
		(f.EntityType == "" || f.EntityType == e.EntityType) &&
		(f.EntityID == "" || f.EntityID == e.EntityID) &&
		(f.Actor == "" || f.Actor == e.Actor)
}

// Reader lists audit events, newest first.
type Reader interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event, after any) error {
	var afterJSON []byte
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor, action, entity_type, entity_id, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, evt.Actor, evt.Action, evt.EntityType, evt.EntityID, afterJSON, evt.RequestID, evt.IP)
	return err
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildQuery(filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &e.IP, &e.CreatedAt, &e.After); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildQuery(filter Filter) (string, []any) {
	query := "SELECT id, actor, action, entity_type, entity_id, request_id, ip, created_at, after_json FROM audit_events WHERE 1=1"
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	add("action", filter.Action)
	add("entity_type", filter.EntityType)
	add("entity_id", filter.EntityID)
	add("actor", filter.Actor)
	return query, args
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event, any) error { return nil }
