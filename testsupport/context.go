// Package testsupport provides a recorded SQLite database for tests which
// assert SQL baselines.
package testsupport

import (
	"context"
	"testing"

	"github.com/estuary/sql-baseline/baseline"
	"github.com/estuary/sql-baseline/sqllog"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Context is a per-test database whose statements are recorded. It embeds
// the Verifier of its recorded statements, so tests may call AssertBaseline
// and ClearLog directly.
type Context struct {
	*baseline.Verifier

	// DB is the recorded database handle.
	DB *sqlx.DB
	// Recorder holds the statements issued through DB.
	Recorder *sqllog.Recorder
	// Name of the in-memory database, unique to this Context.
	Name string
}

type options struct {
	driverOpts   []sqllog.DriverOption
	verifierOpts []baseline.Option
	seed         bool
}

// Option customizes a Context.
type Option func(*options)

// WithDriverOptions passes options through to the recording driver.
func WithDriverOptions(opts ...sqllog.DriverOption) Option {
	return func(o *options) { o.driverOpts = append(o.driverOpts, opts...) }
}

// WithVerifierOptions passes options through to the Context's Verifier.
func WithVerifierOptions(opts ...baseline.Option) Option {
	return func(o *options) { o.verifierOpts = append(o.verifierOpts, opts...) }
}

// WithoutSeed skips creating and populating the Customers and Orders tables.
func WithoutSeed() Option {
	return func(o *options) { o.seed = false }
}

// NewContext opens a fresh in-memory database for the test. Unless
// WithoutSeed is given it's seeded with the Customers and Orders dataset.
// Statements issued while seeding are cleared from the log before NewContext
// returns. The Context is disposed of when the test completes.
func NewContext(t testing.TB, opts ...Option) *Context {
	t.Helper()

	var o = options{seed: true}
	for _, opt := range opts {
		opt(&o)
	}

	var name = uuid.NewString()
	var rec = sqllog.NewRecorder()
	var dsn = "file:" + name + "?mode=memory&cache=shared"

	// The database lives only as long as a connection to it remains open, so
	// pin a single connection for the lifetime of the Context.
	var db = sqlx.NewDb(sqllog.OpenDB(&sqlite3.SQLiteDriver{}, dsn, rec, o.driverOpts...), "sqlite3")
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	var c = &Context{
		Verifier: baseline.New(rec, o.verifierOpts...),
		DB:       db,
		Recorder: rec,
		Name:     name,
	}
	t.Cleanup(func() { c.dispose(t) })

	if o.seed {
		require.NoError(t, Seed(context.Background(), db), "seeding test database")
	}
	c.ClearLog()

	log.WithFields(log.Fields{
		"database": name,
		"recorder": rec.ID(),
		"seeded":   o.seed,
	}).Debug("opened baseline test context")

	return c
}

func (c *Context) dispose(t testing.TB) {
	if err := c.DB.Close(); err != nil {
		t.Errorf("closing test database %s: %v", c.Name, err)
	}
	if err := c.Recorder.Close(); err != nil {
		t.Errorf("closing recorder of %s: %v", c.Name, err)
	}
}
