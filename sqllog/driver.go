package sqllog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// DriverOption customizes a recording driver.
type DriverOption func(*recordingDriver)

// WithDescriber replaces DescribeParameter as the means of rendering bound
// arguments into Parameters.
func WithDescriber(fn Describer) DriverOption {
	return func(d *recordingDriver) { d.describe = fn }
}

// WrapDriver returns a driver.Driver which delegates to `parent` and records
// every statement executed through it into `rec`. Each command is recorded
// once, whether it's executed directly or through a prepared statement.
// Preparing a statement, or beginning and ending transactions, records nothing.
func WrapDriver(parent driver.Driver, rec *Recorder, opts ...DriverOption) driver.Driver {
	return newRecordingDriver(parent, rec, opts)
}

// NewConnector returns a driver.Connector opening `dsn` through a recording
// wrapper of `parent`.
func NewConnector(parent driver.Driver, dsn string, rec *Recorder, opts ...DriverOption) driver.Connector {
	return &connector{dsn: dsn, d: newRecordingDriver(parent, rec, opts)}
}

// OpenDB is a convenience for sql.OpenDB over NewConnector.
func OpenDB(parent driver.Driver, dsn string, rec *Recorder, opts ...DriverOption) *sql.DB {
	return sql.OpenDB(NewConnector(parent, dsn, rec, opts...))
}

type recordingDriver struct {
	parent   driver.Driver
	rec      *Recorder
	describe Describer
}

func newRecordingDriver(parent driver.Driver, rec *Recorder, opts []DriverOption) *recordingDriver {
	var d = &recordingDriver{parent: parent, rec: rec, describe: DescribeParameter}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *recordingDriver) Open(name string) (driver.Conn, error) {
	c, err := d.parent.Open(name)
	if err != nil {
		return nil, err
	}
	return &conn{parent: c, d: d}, nil
}

func (d *recordingDriver) record(query string, args []driver.NamedValue) {
	d.rec.Record(NewStatement(query, describeAll(d.describe, args)...))
}

type connector struct {
	dsn string
	d   *recordingDriver
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.d.Open(c.dsn)
}

func (c *connector) Driver() driver.Driver { return c.d }

type conn struct {
	parent driver.Conn
	d      *recordingDriver
}

var (
	_ driver.Conn               = &conn{}
	_ driver.ConnPrepareContext = &conn{}
	_ driver.ConnBeginTx        = &conn{}
	_ driver.ExecerContext      = &conn{}
	_ driver.QueryerContext     = &conn{}
	_ driver.Pinger             = &conn{}
	_ driver.SessionResetter    = &conn{}
	_ driver.Validator          = &conn{}
	_ driver.NamedValueChecker  = &conn{}
)

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var s driver.Stmt
	var err error

	if pc, ok := c.parent.(driver.ConnPrepareContext); ok {
		s, err = pc.PrepareContext(ctx, query)
	} else {
		s, err = c.parent.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &stmt{parent: s, query: query, d: c.d}, nil
}

func (c *conn) Close() error { return c.parent.Close() }

//nolint:staticcheck // Required by driver.Conn.
func (c *conn) Begin() (driver.Tx, error) { return c.parent.Begin() }

func (c *conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if bc, ok := c.parent.(driver.ConnBeginTx); ok {
		return bc.BeginTx(ctx, opts)
	}

	// Mirror database/sql's handling of drivers without BeginTx.
	if opts.ReadOnly {
		return nil, errors.New("sql: driver does not support read-only transactions")
	} else if opts.Isolation != driver.IsolationLevel(sql.LevelDefault) {
		return nil, errors.New("sql: driver does not support non-default isolation level")
	}
	//nolint:staticcheck
	return c.parent.Begin()
}

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ec, ok := c.parent.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}

	res, err := ec.ExecContext(ctx, query, args)
	if errors.Is(err, driver.ErrSkip) {
		// database/sql will retry through a prepared statement, which records.
		return nil, err
	}
	c.d.record(query, args)
	return res, err
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	qc, ok := c.parent.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}

	rows, err := qc.QueryContext(ctx, query, args)
	if errors.Is(err, driver.ErrSkip) {
		return nil, err
	}
	c.d.record(query, args)
	return rows, err
}

func (c *conn) Ping(ctx context.Context) error {
	if p, ok := c.parent.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *conn) ResetSession(ctx context.Context) error {
	if r, ok := c.parent.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *conn) IsValid() bool {
	if v, ok := c.parent.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

func (c *conn) CheckNamedValue(nv *driver.NamedValue) error {
	if nc, ok := c.parent.(driver.NamedValueChecker); ok {
		return nc.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}

type stmt struct {
	parent driver.Stmt
	query  string
	d      *recordingDriver
}

var (
	_ driver.Stmt             = &stmt{}
	_ driver.StmtExecContext  = &stmt{}
	_ driver.StmtQueryContext = &stmt{}
)

func (s *stmt) Close() error  { return s.parent.Close() }
func (s *stmt) NumInput() int { return s.parent.NumInput() }

//nolint:staticcheck // Required by driver.Stmt.
func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	res, err := s.parent.Exec(args)
	s.d.record(s.query, namedValues(args))
	return res, err
}

//nolint:staticcheck // Required by driver.Stmt.
func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	rows, err := s.parent.Query(args)
	s.d.record(s.query, namedValues(args))
	return rows, err
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	var res driver.Result
	var err error

	if c, ok := s.parent.(driver.StmtExecContext); ok {
		res, err = c.ExecContext(ctx, args)
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, convErr := plainValues(args)
		if convErr != nil {
			return nil, convErr
		}
		//nolint:staticcheck
		res, err = s.parent.Exec(values)
	}
	s.d.record(s.query, args)
	return res, err
}

func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	var rows driver.Rows
	var err error

	if c, ok := s.parent.(driver.StmtQueryContext); ok {
		rows, err = c.QueryContext(ctx, args)
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, convErr := plainValues(args)
		if convErr != nil {
			return nil, convErr
		}
		//nolint:staticcheck
		rows, err = s.parent.Query(values)
	}
	s.d.record(s.query, args)
	return rows, err
}
