package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores leads in the relational database.
type PostgresStore struct {
	pool rowQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q rowQuerier) *PostgresStore {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresStore{pool: q}
}

// Insert writes a new row and records the database timestamp on lead.
func (s *PostgresStore) Insert(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	query := `
		INSERT INTO leads (id, name, email, phone, country, message, spam_score, spam_signals, visitor_country, ip_address, user_agent, commentary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	signals := lead.SpamSignals
	if signals == nil {
		signals = []string{}
	}
	var createdAt time.Time
	if err := s.pool.QueryRow(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullable(lead.Phone),
		nullable(lead.Country),
		lead.Message,
		lead.SpamScore,
		signals,
		lead.VisitorCountry,
		nullable(lead.IPAddress),
		nullable(lead.UserAgent),
		nullable(lead.Commentary),
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	lead.CreatedAt = createdAt
	return nil
}

// GetByID fetches a single lead.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `
		SELECT id, name, email, COALESCE(phone, ''), COALESCE(country, ''), message, spam_score,
		       spam_signals, visitor_country, COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       COALESCE(commentary, ''), created_at
		FROM leads
		WHERE id = $1
	`
	var lead Lead
	if err := s.pool.QueryRow(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Country,
		&lead.Message,
		&lead.SpamScore,
		&lead.SpamSignals,
		&lead.VisitorCountry,
		&lead.IPAddress,
		&lead.UserAgent,
		&lead.Commentary,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
