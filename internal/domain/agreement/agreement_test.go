package agreement_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marina/internal/domain/agreement"
	"marina/internal/domain/employee"
	"marina/internal/testutil"
)

func TestFilesReplaceCreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "agreements")
	files := agreement.NewFiles(dir)

	path, err := files.Replace("hmousi", strings.NewReader("%PDF-1"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if path != filepath.Join(dir, "hmousi.pdf") {
		t.Fatalf("unexpected path %q", path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		t.Fatalf("expected regular file at %s: %v", path, err)
	}

	if _, err := files.Replace("hmousi", strings.NewReader("%PDF-2")); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	content, _ := files.Read(path)
	if string(content) != "%PDF-2" {
		t.Fatalf("expected replaced content, got %q", content)
	}

	if err := files.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := files.Remove(path); err != nil {
		t.Fatalf("second remove should ignore missing file: %v", err)
	}
}

func TestServiceUploadLoadDiscard(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	employees := employee.NewService(testutil.NewMemory().Employees)
	svc := agreement.NewService(employees, agreement.NewFiles(dir))

	if _, err := svc.Upload(ctx, 1, strings.NewReader("%PDF")); !errors.Is(err, employee.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown employee, got %v", err)
	}

	created, err := employees.Create(ctx, employee.Employee{FirstName: "Housi", LastName: "Mousi", Email: "housi.mousi@marina.ch", Username: "hmousi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Load(created); !errors.Is(err, agreement.ErrNoAgreement) {
		t.Fatalf("expected ErrNoAgreement, got %v", err)
	}
	if _, err := svc.Load(nil); !errors.Is(err, employee.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for nil employee, got %v", err)
	}

	if _, err := svc.Upload(ctx, created.ID, strings.NewReader("%PDF")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	stored, _ := employees.Get(ctx, created.ID)
	doc, err := svc.Load(stored)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.FileName != "hmousi.pdf" || string(doc.Content) != "%PDF" {
		t.Fatalf("unexpected document %q %q", doc.FileName, doc.Content)
	}

	svc.Discard(stored)
	if _, err := os.Stat(filepath.Join(dir, "hmousi.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
	if _, err := svc.Load(stored); err == nil {
		t.Fatal("expected read error once the file is gone")
	}
}
