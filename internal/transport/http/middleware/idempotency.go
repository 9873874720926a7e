package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marina/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

// reservationTTL bounds how long an unfinished reservation blocks its key,
// so a crashed request does not pin the key forever.
const reservationTTL = 5 * time.Minute

var (
	ErrIdempotencyConflict   = errors.New("idempotency key conflicts with existing request")
	ErrIdempotencyInProgress = errors.New("idempotency key is held by a request in progress")
)

// StoredResponse is the replayable outcome of a completed request.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore claims keys before the handler runs. Reserve returns
// (nil, nil) when the caller now owns the key, the stored response when the
// key already completed, ErrIdempotencyInProgress while another request owns
// it and ErrIdempotencyConflict when the payload differs.
type IdempotencyStore interface {
	Reserve(ctx context.Context, actor, endpoint, key, requestHash string) (*StoredResponse, error)
	Complete(ctx context.Context, actor, endpoint, key, requestHash string, resp StoredResponse) error
	Release(ctx context.Context, actor, endpoint, key string) error
}

type PgIdempotencyStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewIdempotencyStore(db *pgxpool.Pool) *PgIdempotencyStore {
	return &PgIdempotencyStore{db: db, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Reserve inserts a pending row (status 0). The insert and the takeover of an
// expired reservation are one statement, so two requests cannot both win.
func (s *PgIdempotencyStore) Reserve(ctx context.Context, actor, endpoint, key, requestHash string) (*StoredResponse, error) {
	var owned bool
	err := s.db.QueryRow(ctx, `
    INSERT INTO idempotency_keys (actor, endpoint, key, request_hash, status)
    VALUES ($1, $2, $3, $4, 0)
    ON CONFLICT (actor, endpoint, key)
    DO UPDATE SET request_hash = EXCLUDED.request_hash, created_at = now()
    WHERE idempotency_keys.status = 0 AND idempotency_keys.created_at < $5
    RETURNING true
  `, actor, endpoint, key, requestHash, s.now().Add(-reservationTTL)).Scan(&owned)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var storedHash string
	var stored StoredResponse
	err = s.db.QueryRow(ctx, `
    SELECT request_hash, status, response_body
    FROM idempotency_keys
    WHERE actor = $1 AND endpoint = $2 AND key = $3
  `, actor, endpoint, key).Scan(&storedHash, &stored.Status, &stored.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		// Released between the two statements.
		return nil, ErrIdempotencyInProgress
	}
	if err != nil {
		return nil, err
	}
	return resolveReservation(storedHash, requestHash, stored)
}

func resolveReservation(storedHash, requestHash string, stored StoredResponse) (*StoredResponse, error) {
	if storedHash != requestHash {
		return nil, ErrIdempotencyConflict
	}
	if stored.Status == 0 {
		return nil, ErrIdempotencyInProgress
	}
	return &stored, nil
}

func (s *PgIdempotencyStore) Complete(ctx context.Context, actor, endpoint, key, requestHash string, resp StoredResponse) error {
	tag, err := s.db.Exec(ctx, `
    UPDATE idempotency_keys
    SET status = $5, response_body = $6
    WHERE actor = $1 AND endpoint = $2 AND key = $3 AND request_hash = $4
  `, actor, endpoint, key, requestHash, resp.Status, resp.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release drops a pending reservation so the key can be retried.
func (s *PgIdempotencyStore) Release(ctx context.Context, actor, endpoint, key string) error {
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE actor = $1 AND endpoint = $2 AND key = $3 AND status = 0
  `, actor, endpoint, key)
	return err
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotent replays the stored response for a repeated Idempotency-Key
// from the same caller. The key is reserved before next runs, so a
// concurrent duplicate gets 409 instead of running twice. Only 2xx responses
// are stored; any other outcome releases the key. A nil store or a request
// without the header passes straight through.
func Idempotent(store IdempotencyStore, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			actor := actorOrIPKey(r)

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_body", "unable to read request body", reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			hash := RequestHash(raw)

			stored, err := store.Reserve(r.Context(), actor, endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", reqID)
				return
			}
			if errors.Is(err, ErrIdempotencyInProgress) {
				api.Fail(w, http.StatusConflict, "idempotency_in_progress", "a request with this idempotency key is still running", reqID)
				return
			}
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "internal_error", "idempotency lookup failed", reqID)
				return
			}
			if stored != nil {
				w.Header().Set("Idempotent-Replayed", "true")
				if len(stored.Body) > 0 {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			succeeded := false
			defer func() {
				if succeeded {
					return
				}
				if err := store.Release(context.WithoutCancel(r.Context()), actor, endpoint, key); err != nil {
					slog.Warn("idempotency release failed", "err", err, "endpoint", endpoint, "requestId", reqID)
				}
			}()

			capture := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 {
				return
			}
			// A successful run keeps its reservation even if storing the
			// response fails; the key then expires after reservationTTL.
			succeeded = true
			resp := StoredResponse{Status: capture.status, Body: capture.body.Bytes()}
			if err := store.Complete(context.WithoutCancel(r.Context()), actor, endpoint, key, hash, resp); err != nil {
				slog.Warn("idempotency save failed", "err", err, "endpoint", endpoint, "requestId", reqID)
			}
		})
	}
}
