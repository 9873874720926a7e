package shared

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Count int64  `json:"count" validate:"gt=0"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	v.Struct("[0].", sample{Email: "nope"})

	issues := v.Issues()
	want := map[string]bool{"[0].count": true, "[0].email": true, "[0].name": true}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), issues)
	}
	for _, issue := range issues {
		if !want[issue.Field] {
			t.Fatalf("unexpected issue field %q", issue.Field)
		}
	}
}

func TestValidatorRequiresPresentDecimal(t *testing.T) {
	type amount struct {
		Value decimal.NullDecimal `json:"value" validate:"required"`
	}
	v := NewValidator()
	v.Struct("[0].", amount{})
	if issues := v.Issues(); len(issues) != 1 || issues[0].Field != "[0].value" || issues[0].Reason != "is required" {
		t.Fatalf("expected missing value issue, got %+v", issues)
	}

	v = NewValidator()
	v.Struct("", amount{Value: decimal.NewNullDecimal(decimal.Zero)})
	if v.HasIssues() {
		t.Fatalf("explicit zero must pass, got %+v", v.Issues())
	}
}

func TestValidatorRejectWritesBadRequest(t *testing.T) {
	v := NewValidator()
	v.Add("email", "is required")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["requestId"] != "req-1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestValidatorPassesValidStruct(t *testing.T) {
	v := NewValidator()
	v.Struct("", sample{Name: "a", Email: "a@b.ch", Count: 1})
	if v.HasIssues() {
		t.Fatalf("unexpected issues %+v", v.Issues())
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: "42", want: 42, ok: true},
		{raw: "0"},
		{raw: "-1"},
		{raw: "abc"},
	}
	for _, tc := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tc.raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		got, ok := PathID(req, "id")
		if got != tc.want || ok != tc.ok {
			t.Fatalf("PathID(%q) = %d,%v want %d,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://marina.local/employees", nil)
	if got := AbsoluteURL(req, "/employees/7"); got != "http://marina.local/employees/7" {
		t.Fatalf("unexpected url %q", got)
	}
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := AbsoluteURL(req, "/employees/7"); got != "https://marina.local/employees/7" {
		t.Fatalf("unexpected forwarded url %q", got)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if ClientIP(req) != "192.0.2.1" {
		t.Fatalf("unexpected ip %q", ClientIP(req))
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ClientIP(req) != "203.0.113.9" {
		t.Fatalf("unexpected forwarded ip %q", ClientIP(req))
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{query: "", limit: 100, offset: 0},
		{query: "limit=10&offset=20", limit: 10, offset: 20},
		{query: "limit=9999", limit: 500, offset: 0},
		{query: "limit=0&offset=-1", limit: 100, offset: 0},
		{query: "limit=abc", limit: 100, offset: 0},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/audit/events?"+tc.query, nil)
			page := ParsePagination(r, 100, 500)
			if page.Limit != tc.limit || page.Offset != tc.offset {
				t.Fatalf("expected %d/%d, got %d/%d", tc.limit, tc.offset, page.Limit, page.Offset)
			}
		})
	}
}
