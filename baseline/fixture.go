package baseline

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/estuary/sql-baseline/sqllog"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// UpdateEnvVar names the environment variable which, when set to a true
// value, makes AssertFixture rewrite mismatched fixture files.
const UpdateEnvVar = "UPDATE_BASELINES"

const (
	beginPrefix = "--- Begin statement "
	endPrefix   = "--- End statement "
	frameSuffix = " ---"
)

// FormatFixture renders statements in fixture file form:
//
//	--- Begin statement 0 ---
//	SELECT 1
//	--- End statement 0 ---
//
// Blocks are numbered from zero and separated by a blank line.
func FormatFixture(statements []string) string {
	var b strings.Builder
	for i, s := range statements {
		if i != 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s%d%s\n", beginPrefix, i, frameSuffix)
		if s = sqllog.Normalize(s); s != "" {
			b.WriteString(s)
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s%d%s\n", endPrefix, i, frameSuffix)
	}
	return b.String()
}

// ParseFixture parses the output of FormatFixture. Blank lines between blocks
// are ignored. Any other text outside of a block, or blocks which are
// mis-numbered or unterminated, are errors.
func ParseFixture(text string) ([]string, error) {
	var out []string
	var body []string
	var inBlock bool

	var scanner = bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lineNo = 0
	for scanner.Scan() {
		lineNo++
		var line = strings.TrimRight(scanner.Text(), " \t\r")

		if !inBlock {
			if line == "" {
				continue
			}
			n, ok := frameIndex(line, beginPrefix)
			if !ok {
				return nil, fmt.Errorf("line %d: expected %q, got %q", lineNo, fmt.Sprintf("%s%d%s", beginPrefix, len(out), frameSuffix), line)
			} else if n != len(out) {
				return nil, fmt.Errorf("line %d: statement %d is out of order (expected statement %d)", lineNo, n, len(out))
			}
			inBlock, body = true, body[:0]
			continue
		}

		if n, ok := frameIndex(line, endPrefix); ok {
			if n != len(out) {
				return nil, fmt.Errorf("line %d: statement %d closed by end of statement %d", lineNo, len(out), n)
			}
			out = append(out, sqllog.Normalize(strings.Join(body, "\n")))
			inBlock = false
			continue
		} else if _, ok := frameIndex(line, beginPrefix); ok {
			return nil, fmt.Errorf("line %d: statement %d is not terminated", lineNo, len(out))
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	if inBlock {
		return nil, fmt.Errorf("line %d: statement %d is not terminated", lineNo, len(out))
	}
	return out, nil
}

func frameIndex(line, prefix string) (int, bool) {
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, frameSuffix) {
		return 0, false
	}
	var n, err = strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, prefix), frameSuffix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) ([]string, error) {
	var b, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	statements, err := ParseFixture(string(b))
	if err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return statements, nil
}

// WriteFixture writes statements to a fixture file, creating its directory if
// needed.
func WriteFixture(path string, statements []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating fixture directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(FormatFixture(statements)), 0o644); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	return nil
}

// UpdateRequested reports whether UpdateEnvVar asks for fixtures to be
// rewritten.
func UpdateRequested() bool {
	var ok, _ = strconv.ParseBool(os.Getenv(UpdateEnvVar))
	return ok
}

// AssertFixture is AssertBaseline with the expected statements read from the
// fixture file at `path`. When UpdateRequested and the fixture is missing or
// doesn't match, the file is rewritten with the recorded statements and the
// test still fails, so that the new baseline is reviewed before it's trusted.
func (v *Verifier) AssertFixture(t TestingT, path string) {
	t.Helper()

	var actual = v.Actual()
	var expected, err = LoadFixture(path)
	var missing = errors.Is(err, fs.ErrNotExist)

	if err != nil && !missing {
		require.FailNow(t, err.Error())
		return
	} else if !missing {
		if err = v.compare(expected, actual); err == nil {
			log.WithFields(log.Fields{"fixture": path, "statements": len(actual)}).Debug("SQL baseline matched")
			return
		}
	}

	if UpdateRequested() {
		if err := WriteFixture(path, actual); err != nil {
			require.FailNow(t, err.Error())
			return
		}
		log.WithFields(log.Fields{"fixture": path, "statements": len(actual)}).Info("updated SQL baseline")
		require.FailNow(t, fmt.Sprintf("SQL baseline %s updated with %d statement(s); re-run without %s", path, len(actual), UpdateEnvVar))
		return
	}

	v.diagnose(t, "Actual SQL baseline:\n"+FormatFixture(actual))
	if missing {
		require.FailNow(t, fmt.Sprintf("SQL baseline %s does not exist; run with %s=true to create it", path, UpdateEnvVar))
		return
	}
	log.WithFields(log.Fields{"fixture": path, "err": err}).Info("SQL baseline mismatch")
	require.FailNow(t, fmt.Sprintf("%s: %s", path, err))
}
