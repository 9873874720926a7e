package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marina/internal/domain/audit"
)

// AuditLog is an in-memory audit.Recorder and audit.Reader.
type AuditLog struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (l *AuditLog) Record(_ context.Context, evt audit.Event, after any) error {
	var raw json.RawMessage
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		raw = payload
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, audit.Entry{
		ID:         int64(len(l.entries) + 1),
		Actor:      evt.Actor,
		Action:     evt.Action,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		RequestID:  evt.RequestID,
		IP:         evt.IP,
		CreatedAt:  time.Now().UTC(),
		After:      raw,
	})
	return nil
}

func (l *AuditLog) List(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []audit.Entry{}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if filter.Matches(l.entries[i]) {
			out = append(out, l.entries[i])
		}
	}
	if offset >= len(out) {
		return []audit.Entry{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
