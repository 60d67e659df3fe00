package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/estuary/sql-baseline/baseline"
	"github.com/estuary/sql-baseline/sqllog"
	"github.com/pmezard/go-difflib/difflib"
	log "github.com/sirupsen/logrus"
)

// recordedLog is a fixed baseline.Log read from a suite's statement log.
type recordedLog []sqllog.Statement

func (l recordedLog) Statements() []sqllog.Statement { return l }

func (recordedLog) Clear() {}

func readLog(path string) (recordedLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement log: %w", err)
	}
	defer f.Close()

	statements, err := sqllog.ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("reading statement log %s: %w", path, err)
	}
	return recordedLog(statements), nil
}

// checkSuite verifies the log of suite `s` against its fixture. If they
// differ, a diff of the fixture and its would-be replacement is written to `w`.
func checkSuite(w io.Writer, s suite, featureFlags map[string]bool) error {
	statements, err := readLog(s.Log)
	if err != nil {
		return err
	}
	expected, err := baseline.LoadFixture(s.Fixture)
	if err != nil {
		return err
	}

	var v = baseline.New(statements, baseline.WithFeatureFlags(featureFlags))
	if err = v.Check(expected...); err == nil {
		log.WithFields(log.Fields{
			"suite":      s.Name,
			"statements": len(statements),
		}).Info("suite matches its baseline")
		return nil
	}

	if diffErr := printDiff(w, s, v.Expected(expected...), v.Actual(), featureFlags["colorize_diff"]); diffErr != nil {
		return diffErr
	}
	return err
}

// acceptSuite writes the log of suite `s` as its fixture. It reports whether
// the fixture changed.
func acceptSuite(s suite, featureFlags map[string]bool) (bool, error) {
	statements, err := readLog(s.Log)
	if err != nil {
		return false, err
	}
	var actual = baseline.New(statements, baseline.WithFeatureFlags(featureFlags)).Actual()

	if existing, err := baseline.LoadFixture(s.Fixture); err == nil && baseline.Compare(existing, actual) == nil {
		return false, nil
	}
	if err := baseline.WriteFixture(s.Fixture, actual); err != nil {
		return false, err
	}
	return true, nil
}

func printDiff(w io.Writer, s suite, expected, actual []string, colorize bool) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(baseline.FormatFixture(expected)),
		B:        difflib.SplitLines(baseline.FormatFixture(actual)),
		FromFile: fmt.Sprintf("%s (baseline)", s.Fixture),
		ToFile:   fmt.Sprintf("%s (recorded)", s.Log),
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diffing suite %s: %w", s.Name, err)
	}

	var diffLines = strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if len(diffLines) == 1 && diffLines[0] == "" {
		diffLines = nil
	}
	for _, diffLine := range diffLines {
		var colorCode, resetCode = "", ""
		if colorize {
			resetCode = "\033[0m"
			if strings.HasPrefix(diffLine, "-") {
				colorCode = "\033[1;31m"
			} else if strings.HasPrefix(diffLine, "+") {
				colorCode = "\033[1;32m"
			}
		}
		fmt.Fprintf(w, "%s%s%s\n", colorCode, diffLine, resetCode)
	}
	if len(diffLines) == 0 {
		fmt.Fprintf(w, "%s (no diff)\n", s.Name)
	}
	return nil
}
