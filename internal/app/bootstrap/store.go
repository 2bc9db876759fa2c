package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/iglloo/lead-intake/internal/config"
	"github.com/iglloo/lead-intake/internal/leads"
	"github.com/iglloo/lead-intake/pkg/logging"
)

// Lead store backends accepted by LEAD_STORE.
const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreNone     = "none"
)

// BuildStore wires optional lead persistence. The returned closer is never
// nil. A nil store means persistence is disabled.
func BuildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (leads.Store, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch backend := strings.ToLower(strings.TrimSpace(cfg.LeadStore)); backend {
	case StoreSupabase:
		store, err := leads.NewSupabaseStore(leads.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceRoleKey,
			Table:      cfg.SupabaseLeadsTable,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: supabase store: %w", err)
		}
		logger.Info("lead persistence enabled", "backend", backend, "table", cfg.SupabaseLeadsTable)
		return store, noop, nil
	case StorePostgres:
		pool, err := connectPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("lead persistence enabled", "backend", backend)
		return leads.NewPostgresStore(pool), pool.Close, nil
	case StoreMemory:
		logger.Info("lead persistence enabled", "backend", backend)
		return leads.NewInMemoryStore(), noop, nil
	case "", StoreNone:
		logger.Info("lead persistence disabled")
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown lead store %q", backend)
	}
}

func connectPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("bootstrap: DATABASE_URL is required for the postgres lead store")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}
