package baseline

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// CountMismatchError is returned when the number of recorded statements
// differs from the number of expected ones.
type CountMismatchError struct {
	Expected int
	Actual   int
	// FirstDifference is the index of the first statement which differs within
	// the common prefix of both lists, or -1 if that prefix is identical.
	FirstDifference int
}

func (e *CountMismatchError) Error() string {
	var b strings.Builder
	var verb = "were"
	if e.Actual == 1 {
		verb = "was"
	}
	if e.Expected == 0 {
		fmt.Fprintf(&b, "expected no SQL statements, but %d %s recorded", e.Actual, verb)
	} else {
		fmt.Fprintf(&b, "expected %d SQL statement(s), but %d %s recorded", e.Expected, e.Actual, verb)
	}
	if e.FirstDifference >= 0 {
		fmt.Fprintf(&b, " (statements also differ from index %d)", e.FirstDifference)
	}
	return b.String()
}

// ContentMismatchError is returned for the first recorded statement whose
// normalized text differs from its expected baseline.
type ContentMismatchError struct {
	Index    int
	Expected string
	Actual   string
}

func (e *ContentMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SQL statement %d differs from its baseline\n", e.Index)
	b.WriteString("--- expected ---\n")
	b.WriteString(e.Expected)
	b.WriteString("\n--- actual ---\n")
	b.WriteString(e.Actual)
	if diff := e.Diff(); diff != "" {
		b.WriteString("\n--- diff ---\n")
		b.WriteString(diff)
	}
	return b.String()
}

// Diff is a unified diff from the expected to the actual statement text.
func (e *ContentMismatchError) Diff() string {
	var diff, err = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e.Expected),
		B:        difflib.SplitLines(e.Actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return strings.TrimRight(diff, "\n")
}
