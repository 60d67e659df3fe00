package sqllog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
)

// WriteJSONL writes each statement as one JSON document per line. This is the
// captured-log format read back by ReadJSONL and by baseline-tool.
func WriteJSONL(w io.Writer, statements []Statement) error {
	var bw = bufio.NewWriter(w)
	var enc = json.NewEncoder(bw)
	for i, s := range statements {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding statement %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL reads statements written by WriteJSONL. Blank lines are skipped.
// SQL text is normalized as it's read.
func ReadJSONL(r io.Reader) ([]Statement, error) {
	var out []Statement
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for line := 1; scanner.Scan(); line++ {
		var b = bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var s Statement
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		s.SQL = Normalize(s.SQL)
		out = append(out, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading statement log: %w", err)
	}
	return out, nil
}
