// Package store loads colexification graphs into a SQL database for ad-hoc
// querying. SQLite (modernc.org/sqlite) and PostgreSQL (pgx) are supported;
// the schema is managed by embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/palasimi/colexification-graphs/internal/config"
	"github.com/palasimi/colexification-graphs/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is a SQL-backed graph store.
type Store struct {
	db        *sql.DB
	driver    string
	sb        sq.StatementBuilderType
	batchSize int
	log       *slog.Logger
	// nodeID keys stored nodes.
	nodeID    func(domain.SenseNode) string
}

// Open connects to the database described by cfg, pings it for fail-fast
// validation and applies pending migrations.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	var (
		dialect     goose.Dialect
		placeholder sq.PlaceholderFormat
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		dialect, placeholder = goose.DialectSQLite3, sq.Question
	case config.DriverPostgres:
		dialect, placeholder = goose.DialectPostgres, sq.Dollar
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	dsn := cfg.DSN
	if cfg.Driver == config.DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}

	// Fail early if connection is bad
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{
		db:        db,
		driver:    cfg.Driver,
		sb:        sq.StatementBuilder.PlaceholderFormat(placeholder),
		batchSize: max(cfg.BatchSize, 1),
		log:       log,
		nodeID:    domain.ConceptID,
	}
	if err := s.migrate(ctx, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context, dialect goose.Dialect) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, s.db, migrations)
	if err != nil {
		return fmt.Errorf("store: goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: goose up: %w", err)
	}
	for _, r := range results {
		s.log.Debug("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// sqliteDSN adds the connection pragmas to a SQLite DSN. They go in the
// DSN because database/sql may open several connections and PRAGMAs are
// per connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
