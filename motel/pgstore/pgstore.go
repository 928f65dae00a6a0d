// Package pgstore keeps the motel tables in PostgreSQL using bun.
package pgstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/errs"
)

//go:embed schema.sql
var schemaSQL string

type Config struct {
	URL          string        `envconfig:"URL" split_words:"true" required:"true"`
	MaxOpenConns int           `split_words:"true" default:"10"`
	DialTimeout  time.Duration `split_words:"true" default:"5s"`
	LockTimeout  time.Duration `split_words:"true" default:"5s"`
	MaxRetries   int           `split_words:"true" default:"3"`
	RetryBackoff time.Duration `split_words:"true" default:"50ms"`
	AutoMigrate  bool          `split_words:"true" default:"true"`
	Debug        bool          `split_words:"true" default:"false"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("database url is required")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries must be >= 0")
	}
	if c.LockTimeout <= 0 {
		return errors.New("lock timeout must be > 0")
	}
	return nil
}

type Store struct {
	db         *bun.DB
	lockSQL    string
	maxRetries int
	backoff    time.Duration

	migrateMu   sync.Mutex
	autoMigrate bool
	migrated    bool
}

// Open never fails because the database is unreachable: the connection is made
// lazily and a failed startup ping is only logged. Schema creation is retried
// on the next call until it succeeds.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.URL),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	)
	sqldb := sql.OpenDB(connector)
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(queryLogger{})
	}

	s := &Store{
		db:          db,
		lockSQL:     fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", cfg.LockTimeout.Milliseconds()),
		maxRetries:  cfg.MaxRetries,
		backoff:     cfg.RetryBackoff,
		autoMigrate: cfg.AutoMigrate,
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("postgres not reachable at startup, will retry on next use")
	} else if err := s.ready(pingCtx); err != nil {
		log.Warn().Err(err).Msg("postgres schema not ready, will retry on next use")
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx), "ping")
}

// ready pings and, when enabled, creates the schema once.
func (s *Store) ready(ctx context.Context) error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()
	if s.migrated || !s.autoMigrate {
		return nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err, "ping")
	}
	if err := s.migrate(ctx); err != nil {
		return err
	}
	s.migrated = true
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return classify(err, "apply schema")
		}
	}
	if err := s.ensureOverlapConstraint(ctx); err != nil {
		log.Warn().Err(err).Msg("booking overlap constraint not installed, relying on row locks")
	}
	return nil
}

// ensureOverlapConstraint adds an exclusion constraint so the database itself
// rejects overlapping stays. It needs btree_gist, which may not be installable.
func (s *Store) ensureOverlapConstraint(ctx context.Context) error {
	exists, err := s.db.NewSelect().
		TableExpr("pg_constraint").
		Where("conname = ?", "bookings_no_overlap").
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS btree_gist"); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (room_number WITH =, daterange(check_in_date, check_out_date, '[)') WITH &&)`)
	return err
}

// SeedCatalog inserts rooms and room types that do not exist yet, then any
// bookings in c.
func (s *Store) SeedCatalog(ctx context.Context, c motel.Catalog) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rt := range c.RoomTypes {
			row := roomTypeRow{RoomType: rt.Name, RatePerNight: rt.RatePerNight}
			if _, err := tx.NewInsert().Model(&row).On("CONFLICT (room_type) DO NOTHING").Exec(ctx); err != nil {
				return classify(err, "seed room type "+rt.Name)
			}
		}
		for _, r := range c.Rooms {
			status := r.Status
			if status == "" {
				status = "available"
			}
			row := roomRow{RoomNumber: r.Number, RoomType: r.Type, Status: status}
			if _, err := tx.NewInsert().Model(&row).On("CONFLICT (room_number) DO NOTHING").Exec(ctx); err != nil {
				return classify(err, "seed room "+r.Number)
			}
		}
		for i := range c.Bookings {
			if err := insertBooking(ctx, tx, &c.Bookings[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

type txKey struct{}

func (s *Store) idb(ctx context.Context) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return tx
	}
	return s.db
}

// WithinTx runs fn in a SERIALIZABLE transaction with a bounded lock wait.
// Serialization failures and deadlocks are retried with backoff; when retries
// run out the error is ErrBusy.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return fn(ctx)
	}
	if err := s.ready(ctx); err != nil {
		return err
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err = s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, s.lockSQL); err != nil {
				return err
			}
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == s.maxRetries {
			break
		}

		wait := backoff(attempt, s.backoff)
		zerolog.Ctx(ctx).Warn().Err(err).
			Int("attempt", attempt+1).
			Int64("wait_ms", wait.Milliseconds()).
			Msg("retrying booking transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if isRetryable(err) {
		return errs.Classify(errs.Wrapf(err, "booking transaction gave up after %d attempts", s.maxRetries+1), motel.ErrBusy)
	}
	return classify(err, "booking transaction")
}

func backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	wait := time.Duration(1<<attempt) * base
	return wait + time.Duration(rand.Int63n(int64(wait/5)+1))
}

type queryLogger struct{}

func (queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	zerolog.Ctx(ctx).Debug().
		Str("query", event.Query).
		Dur("took", time.Since(event.StartTime)).
		Err(event.Err).
		Msg("sql")
}
