package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresStore_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	country := "Thailand"
	lead := &Lead{
		ID:             "7d8b3c9e-1111-4c1a-9a55-000000000001",
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Country:        "Thailand",
		Message:        "We are planning to retire within two years.",
		SpamScore:      0.05,
		SpamSignals:    []string{SignalShort},
		VisitorCountry: &country,
		IPAddress:      "203.0.113.7",
	}
	createdAt := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(
			lead.ID, lead.Name, lead.Email,
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			lead.Message, lead.SpamScore, lead.SpamSignals, lead.VisitorCountry,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	if err := store.Insert(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lead.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at from database, got %v", lead.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	dbErr := errors.New("connection refused")
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(dbErr)

	err = store.Insert(context.Background(), &Lead{ID: "x", Name: "n", Email: "e@x.io", Message: "m"})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped database error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	mock.ExpectQuery("SELECT id, name, email").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPostgresStore_InsertNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	if err := newPostgresStoreWithQuerier(mock).Insert(context.Background(), nil); !errors.Is(err, ErrNilLead) {
		t.Fatalf("expected ErrNilLead, got %v", err)
	}
}
