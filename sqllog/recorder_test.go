package sqllog

import (
	"bytes"
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestRecorderLifecycle(t *testing.T) {
	var rec = NewRecorder()
	require.NotEmpty(t, rec.ID())
	require.Empty(t, rec.Statements())

	// Clearing an empty log is fine, as is clearing twice.
	rec.Clear()
	rec.Clear()
	require.Equal(t, 0, rec.Len())

	rec.Record(NewStatement("A"))
	rec.Record(NewStatement("B"))
	require.Equal(t, 2, rec.Len())
	require.Equal(t, []string{"A", "B"}, Texts(rec.Statements()))

	// Statements returns a copy.
	var got = rec.Statements()
	got[0].SQL = "mutated"
	require.Equal(t, "A", rec.Statements()[0].SQL)

	rec.Clear()
	require.Empty(t, rec.Statements())
	rec.Record(NewStatement("X"))
	require.Equal(t, []string{"X"}, Texts(rec.Statements()))

	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	rec.Record(NewStatement("dropped"))
	require.Empty(t, rec.Statements())
}

func TestRecorderHook(t *testing.T) {
	var rec = NewRecorder()
	var logger = log.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(rec.Hook())
	require.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.WithField(SQLField, "SELECT 1").Info("executed statement")
	logger.WithField("other", "ignored").Info("not a statement")
	logger.WithFields(log.Fields{
		SQLField:    "SELECT * FROM t WHERE id = @p0",
		ParamsField: []Parameter{{Name: "p0", Value: "3"}},
	}).Warn("executed statement")

	require.Equal(t, []string{
		"SELECT 1",
		"@p0='3'\n\nSELECT * FROM t WHERE id = @p0",
	}, Texts(rec.Statements()))
}

// useStandardLogger resets the standard logger to its defaults for the test.
func useStandardLogger(t *testing.T, level log.Level) *log.Logger {
	var std = log.StandardLogger()
	var prevLevel, prevHooks, prevOut = std.GetLevel(), std.ReplaceHooks(make(log.LevelHooks)), std.Out
	std.SetLevel(level)
	std.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() {
		std.SetLevel(prevLevel)
		std.ReplaceHooks(prevHooks)
		std.SetOutput(prevOut)
	})
	return std
}

func TestExecStatementsThroughHook(t *testing.T) {
	var rec = NewRecorder()
	var db = openFakeDB(t, NewRecorder())
	useStandardLogger(t, log.InfoLevel).AddHook(rec.Hook())

	require.NoError(t, ExecStatements(context.Background(), db, []string{
		"CREATE TABLE t (id INT)",
		"INSERT INTO t VALUES (1)",
	}))
	require.Equal(t, []string{
		"CREATE TABLE t (id INT)",
		"INSERT INTO t VALUES (1)",
	}, Texts(rec.Statements()))
}

func TestCaptureLogger(t *testing.T) {
	var rec = NewRecorder()
	var db = openFakeDB(t, NewRecorder())
	var std = useStandardLogger(t, log.WarnLevel)

	var release = rec.CaptureLogger(std)
	require.Equal(t, log.InfoLevel, std.GetLevel())
	require.NoError(t, ExecStatements(context.Background(), db, []string{"CREATE TABLE t (id INT)"}))
	require.Equal(t, 1, rec.Len())

	// Released loggers no longer record, and regain their level.
	release()
	require.Equal(t, log.WarnLevel, std.GetLevel())
	require.Empty(t, std.Hooks)
	require.NoError(t, ExecStatements(context.Background(), db, []string{"DROP TABLE t"}))
	require.Equal(t, 1, rec.Len())

	// A logger at Debug is left at Debug.
	var debug = log.New()
	debug.SetOutput(&bytes.Buffer{})
	debug.SetLevel(log.DebugLevel)
	rec.CaptureLogger(debug)()
	require.Equal(t, log.DebugLevel, debug.GetLevel())
}
