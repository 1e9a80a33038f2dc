package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultQuery reads the whole stamp table in identifier order.
const DefaultQuery = "SELECT * FROM stamp_rows ORDER BY 1"

// PostgresLoader runs a read-only query and stringifies every value.
// The pool is opened on first Load and kept for later reloads.
type PostgresLoader struct {
	dsn     string
	query   string
	timeout time.Duration

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgresLoader validates cfg and returns a PostgresLoader.
func NewPostgresLoader(cfg Config) (*PostgresLoader, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("postgres source: database url is required")
	}
	if _, err := pgxpool.ParseConfig(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("postgres source: parse database url: %w", err)
	}

	query := cfg.Query
	if query == "" {
		query = DefaultQuery
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &PostgresLoader{dsn: cfg.DatabaseURL, query: query, timeout: timeout}, nil
}

// Name identifies the loader without credentials.
func (l *PostgresLoader) Name() string {
	cfg, err := pgxpool.ParseConfig(l.dsn)
	if err != nil {
		return "postgres"
	}
	return "postgres:" + cfg.ConnConfig.Database
}

// Load runs the query and returns one row per result row.
func (l *PostgresLoader) Load(ctx context.Context) (core.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	pool, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, l.query)
	if err != nil {
		return nil, fmt.Errorf("query stamp rows: %w", err)
	}
	defer rows.Close()

	var table core.Table
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(core.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return table, nil
}

// Close releases the pool, if one was opened.
func (l *PostgresLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool != nil {
		l.pool.Close()
		l.pool = nil
	}
}

func (l *PostgresLoader) connect(ctx context.Context) (*pgxpool.Pool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		return l.pool, nil
	}

	poolConfig, err := pgxpool.ParseConfig(l.dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	l.pool = pool
	return pool, nil
}

// formatValue renders a scanned value the way it would appear in a CSV cell.
// NULL becomes "" so that it reads as a blank payload position.
func formatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("2006-01-02")
	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		if val.NaN {
			return "nan"
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String
	default:
		return fmt.Sprintf("%v", v)
	}
}
