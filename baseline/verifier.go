// Package baseline verifies the SQL statements recorded during a test against
// an expected, ordered baseline.
package baseline

import (
	"fmt"
	"io"
	"strings"

	"github.com/estuary/sql-baseline/sqllog"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Log is the statement log consulted by a Verifier. *sqllog.Recorder is the
// usual implementation.
type Log interface {
	Statements() []sqllog.Statement
	Clear()
}

// TestingT is the subset of *testing.T used to report failures.
type TestingT interface {
	require.TestingT
	Helper()
	Logf(format string, args ...any)
}

// FeatureFlagDefaults are the default settings of flags understood by
// WithFeatureFlags, and by baseline-tool.
var FeatureFlagDefaults = map[string]bool{
	// Compare statement bodies only, ignoring parameter preambles.
	"ignore_parameters": false,
	// Colorize diffs written to a terminal.
	"colorize_diff": true,
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithOutput directs diagnostic output to `w` instead of the test log.
func WithOutput(w io.Writer) Option {
	return func(v *Verifier) { v.out = w }
}

// IgnoreParameters compares statement bodies only.
func IgnoreParameters() Option {
	return func(v *Verifier) { v.ignoreParameters = true }
}

// WithFeatureFlags applies parsed feature flags, as returned by
// common.ParseFeatureFlags over FeatureFlagDefaults.
func WithFeatureFlags(flags map[string]bool) Option {
	return func(v *Verifier) { v.ignoreParameters = flags["ignore_parameters"] }
}

// Verifier compares the statements of a Log against expected baselines.
// A Verifier is owned by a single test and is not safe for concurrent use.
type Verifier struct {
	log              Log
	out              io.Writer
	ignoreParameters bool
}

// New returns a Verifier of the statements recorded in `l`.
func New(l Log, opts ...Option) *Verifier {
	var v = &Verifier{log: l}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ClearLog empties the underlying log, so that a following assertion covers
// only statements issued afterwards. It's idempotent.
func (v *Verifier) ClearLog() { v.log.Clear() }

// Actual renders the currently recorded statements in baseline form.
func (v *Verifier) Actual() []string {
	var statements = v.log.Statements()
	var out = make([]string, len(statements))
	for i, s := range statements {
		if v.ignoreParameters {
			out[i] = s.SQL
		} else {
			out[i] = s.Text()
		}
	}
	return out
}

// Check compares the recorded statements with `expected`. It returns a
// *CountMismatchError or *ContentMismatchError if they differ.
func (v *Verifier) Check(expected ...string) error {
	return v.compare(expected, v.Actual())
}

// AssertBaseline fails the test unless the recorded statements equal
// `expected`, in order and count. With no `expected` statements it asserts
// that nothing was recorded. On failure the actual statements are written as
// paste-ready Go literals to the diagnostic output.
func (v *Verifier) AssertBaseline(t TestingT, expected ...string) {
	t.Helper()

	var actual = v.Actual()
	var err = v.compare(expected, actual)
	if err == nil {
		log.WithField("statements", len(actual)).Debug("SQL baseline matched")
		return
	}

	v.diagnose(t, "Actual SQL baseline:\n"+GoLiterals(actual))
	log.WithField("err", err).Info("SQL baseline mismatch")
	require.FailNow(t, err.Error())
}

// Expected renders `expected` statements the way Check compares them against
// Actual: normalized, and without parameter preambles when parameters are
// ignored.
func (v *Verifier) Expected(expected ...string) []string {
	var out = normalizeAll(expected)
	if v.ignoreParameters {
		for i := range out {
			out[i] = stripPreamble(out[i])
		}
	}
	return out
}

func (v *Verifier) compare(expected, actual []string) error {
	return Compare(v.Expected(expected...), actual)
}

func (v *Verifier) diagnose(t TestingT, text string) {
	if v.out == nil {
		t.Logf("%s", text)
	} else if _, err := io.WriteString(v.out, text+"\n"); err != nil {
		log.WithField("err", err).Warn("failed to write SQL baseline diagnostics")
	}
}

// Compare positionally compares normalized `expected` and `actual` statement
// texts.
func Compare(expected, actual []string) error {
	var exp, act = normalizeAll(expected), normalizeAll(actual)

	var first = -1
	for i := 0; i < len(exp) && i < len(act); i++ {
		if exp[i] != act[i] {
			first = i
			break
		}
	}

	if len(exp) != len(act) {
		return &CountMismatchError{Expected: len(exp), Actual: len(act), FirstDifference: first}
	} else if first != -1 {
		return &ContentMismatchError{Index: first, Expected: exp[first], Actual: act[first]}
	}
	return nil
}

func normalizeAll(texts []string) []string {
	var out = make([]string, len(texts))
	for i, s := range texts {
		out[i] = sqllog.Normalize(s)
	}
	return out
}

// stripPreamble removes leading parameter lines and the blank line which
// follows them.
func stripPreamble(text string) string {
	var lines = strings.Split(sqllog.Normalize(text), "\n")
	var i = 0
	for i < len(lines) && strings.HasPrefix(lines[i], "@") {
		i++
	}
	if i != 0 && i < len(lines) && lines[i] == "" {
		return strings.Join(lines[i+1:], "\n")
	}
	return text
}

// GoLiterals renders statements as a Go argument list which can be pasted
// into a call to AssertBaseline. Each line becomes one double-quoted string,
// as Jet SQL is full of backticks.
func GoLiterals(statements []string) string {
	var b strings.Builder
	for _, s := range statements {
		var lines = strings.Split(sqllog.Normalize(s), "\n")
		for i, line := range lines {
			b.WriteByte('\t')
			if i == len(lines)-1 {
				fmt.Fprintf(&b, "%q,\n", line)
			} else {
				fmt.Fprintf(&b, "%q +\n", line+"\n")
			}
		}
	}
	return b.String()
}
