package stash

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/segmentio/ksuid"

	"github.com/udisondev/itemcode/internal/stash/migrations"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps the stash in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL. Run Migrate first on a fresh database.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Put inserts an entry.
func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO stash_entries (id, name, code, game, fingerprint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID.String(), e.Name, e.Code, e.Game, e.Fingerprint[:], e.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}
	return nil
}

const selectEntry = `SELECT id, name, code, game, fingerprint, created_at FROM stash_entries`

// Get loads an entry by ID.
func (s *PostgresStore) Get(ctx context.Context, id ksuid.KSUID) (Entry, error) {
	e, err := scanEntry(s.pool.QueryRow(ctx, selectEntry+` WHERE id = $1`, id.String()))
	if err != nil {
		return Entry{}, fmt.Errorf("querying entry %s: %w", id, err)
	}
	return e, nil
}

// FindByFingerprint loads the entry holding a fingerprint.
func (s *PostgresStore) FindByFingerprint(ctx context.Context, fp Fingerprint) (Entry, error) {
	e, err := scanEntry(s.pool.QueryRow(ctx, selectEntry+` WHERE fingerprint = $1`, fp[:]))
	if err != nil {
		return Entry{}, fmt.Errorf("querying fingerprint %s: %w", fp, err)
	}
	return e, nil
}

// List returns all entries oldest first.
func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, selectEntry+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// Delete removes an entry.
func (s *PostgresStore) Delete(ctx context.Context, id ksuid.KSUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM stash_entries WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deleting entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e  Entry
		id string
		fp []byte
	)
	err := row.Scan(&id, &e.Name, &e.Code, &e.Game, &fp, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	if e.ID, err = ksuid.Parse(id); err != nil {
		return Entry{}, fmt.Errorf("parsing id %q: %w", id, err)
	}
	if len(fp) != len(e.Fingerprint) {
		return Entry{}, fmt.Errorf("fingerprint of %s is %d bytes", id, len(fp))
	}
	copy(e.Fingerprint[:], fp)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
