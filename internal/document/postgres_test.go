package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreUpdateRFPVersionMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update rfp_documents").
		WithArgs("doc-1", "text", "processed", "", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	store := NewPGStore(db)
	now := time.Now().UTC()
	doc := &RFPDocument{ID: "doc-1", Status: StatusProcessed, Content: "text", ProcessedAt: &now}
	if err := store.UpdateRFP(context.Background(), doc, 3); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreUpdateRFPMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update rfp_documents").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	store := NewPGStore(db)
	doc := &RFPDocument{ID: "gone", Status: StatusFailed}
	if err := store.UpdateRFP(context.Background(), doc, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPGStoreFindRFPRejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "title", "client_name", "file_name", "file_size", "file_type",
		"content", "status", "failure_reason", "version", "uploaded_at", "processed_at",
	}).AddRow("doc-1", "t", "c", "f.pdf", int64(10), "pdf", "", "archived", "", int64(1), time.Now(), nil)
	mock.ExpectQuery("select (.+) from rfp_documents where id=").
		WithArgs("doc-1").
		WillReturnRows(rows)

	store := NewPGStore(db)
	if _, err := store.FindRFP(context.Background(), "doc-1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation for unknown status, got %v", err)
	}
}
